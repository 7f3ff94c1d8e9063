package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/wire"
)

// BackendClient описывает клиент REST-бэкенда бронирования. Консоль не хранит
// данные сама: каждая операция тут один HTTP-вызов плюс адаптация провода.
type BackendClient interface {
	// Пользователи
	ListUsers(ctx context.Context, session *domain.Session) ([]domain.User, error)
	UpdateUser(ctx context.Context, session *domain.Session, userID string, payload wire.UserUpdatePayload) error
	RegisterUser(ctx context.Context, payload wire.RegistrationPayload) error

	// Ресурсы
	ListResources(ctx context.Context, session *domain.Session) ([]domain.Resource, error)
	GetResource(ctx context.Context, session *domain.Session, resourceID string) (domain.Resource, error)
	CreateResource(ctx context.Context, session *domain.Session, payload wire.ResourcePayload) error
	UpdateResource(ctx context.Context, session *domain.Session, resourceID string, payload wire.ResourcePayload) error
	DeleteResource(ctx context.Context, session *domain.Session, resourceID string) error

	// Брони
	ListReservations(ctx context.Context, session *domain.Session) ([]domain.Reservation, error)
	GetReservation(ctx context.Context, session *domain.Session, reservationID string) (domain.Reservation, error)
	CreateReservation(ctx context.Context, session *domain.Session, payload wire.ReservationPayload) error
	UpdateReservation(ctx context.Context, session *domain.Session, reservationID string, payload wire.ReservationPayload) error
	CancelReservation(ctx context.Context, session *domain.Session, reservationID string) error
	Availability(ctx context.Context, session *domain.Session, resourceID string, date time.Time) ([]string, error)

	// Аутентификация
	ExchangeToken(ctx context.Context, idToken string) (string, error)
	Me(ctx context.Context, session *domain.Session) (string, domain.Role, error)
}

type backendClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewBackendClient создает клиент бэкенда бронирования.
func NewBackendClient(baseURL string, timeout time.Duration, logger *zap.Logger) (BackendClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for booking backend: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &backendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout, // Таймаут на весь запрос
		},
		logger: logger.Named("BackendClient"),
	}, nil
}

// do выполняет запрос к бэкенду: сериализует тело, подкладывает сессионную
// куку и возвращает статус с прочитанным телом. Ошибка возвращается только
// для транспортных сбоев, статусы разбирают вызывающие методы.
func (c *backendClient) do(ctx context.Context, session *domain.Session, method, path string, payload interface{}) (int, []byte, error) {
	reqURL := c.baseURL + path
	log := c.logger.With(zap.String("method", method), zap.String("url", reqURL))

	var body io.Reader
	if payload != nil {
		reqBody, err := json.Marshal(payload)
		if err != nil {
			log.Error("Failed to marshal request payload", zap.Error(err))
			return 0, nil, fmt.Errorf("internal error marshalling request: %w", err)
		}
		body = bytes.NewBuffer(reqBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		log.Error("Failed to create HTTP request", zap.Error(err))
		return 0, nil, fmt.Errorf("internal error creating request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")
	// Сессия приходит явным аргументом, не глобальным состоянием: кука
	// бэкенда подкладывается здесь и только здесь.
	if session != nil && session.BackendCookie != "" {
		httpReq.Header.Set("Cookie", session.BackendCookie)
	}

	log.Debug("Sending request to booking backend")
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("HTTP request to booking backend failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return 0, nil, fmt.Errorf("request to booking backend timed out: %w", err)
		}
		return 0, nil, fmt.Errorf("failed to communicate with booking backend: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		log.Error("Failed to read backend response body", zap.Int("status", httpResp.StatusCode), zap.Error(err))
		return httpResp.StatusCode, nil, fmt.Errorf("failed to read backend response: %w", err)
	}
	return httpResp.StatusCode, respBody, nil
}

// statusError сопоставляет не-2xx статус с типизированной ошибкой.
// Тело ответа подмешивается в текст для 400, где бэкенд присылает детали.
func statusError(status int, body []byte) error {
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest:
		detail := parseErrorDetail(body)
		if detail != "" {
			return fmt.Errorf("%w: %s", domain.ErrValidation, detail)
		}
		return domain.ErrValidation
	default:
		return fmt.Errorf("received unexpected status %d from booking backend", status)
	}
}

// parseErrorDetail пытается вытащить сообщение из тела ошибки бэкенда.
// Формат плавает между {"error": "..."} и {"errors": {...}}.
func parseErrorDetail(body []byte) string {
	var withError struct {
		Error  string          `json:"error"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &withError); err != nil {
		return ""
	}
	if withError.Error != "" {
		return withError.Error
	}
	if len(withError.Errors) > 0 {
		return string(withError.Errors)
	}
	return ""
}

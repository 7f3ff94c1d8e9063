package client

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/wire"
)

// ListReservations вызывает GET /reservations.
func (c *backendClient) ListReservations(ctx context.Context, session *domain.Session) ([]domain.Reservation, error) {
	status, body, err := c.do(ctx, session, http.MethodGet, "/reservations", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.logger.Debug("Reservation list returned 404, treating as empty collection")
		return []domain.Reservation{}, nil
	}
	if status != http.StatusOK {
		c.logger.Warn("Received non-OK status for reservation list", zap.Int("status", status), zap.ByteString("body", body))
		return nil, statusError(status, body)
	}
	reservations, err := wire.DecodeReservations(body, time.Now())
	if err != nil {
		c.logger.Error("Failed to decode reservation list response", zap.ByteString("body", body), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("Reservation list retrieved", zap.Int("reservationCount", len(reservations)))
	return reservations, nil
}

// GetReservation вызывает GET /reservations/{id}. Форма ответа отличается
// от списочной, разбор держит wire.DecodeReservation.
func (c *backendClient) GetReservation(ctx context.Context, session *domain.Session, reservationID string) (domain.Reservation, error) {
	status, body, err := c.do(ctx, session, http.MethodGet, "/reservations/"+reservationID, nil)
	if err != nil {
		return domain.Reservation{}, err
	}
	if status != http.StatusOK {
		c.logger.Warn("Received non-OK status for reservation fetch",
			zap.String("reservationID", reservationID), zap.Int("status", status), zap.ByteString("body", body))
		return domain.Reservation{}, statusError(status, body)
	}
	reservation, err := wire.DecodeReservation(body, time.Now())
	if err != nil {
		c.logger.Error("Failed to decode reservation response", zap.ByteString("body", body), zap.Error(err))
		return domain.Reservation{}, err
	}
	return reservation, nil
}

// CreateReservation вызывает POST /reservations.
func (c *backendClient) CreateReservation(ctx context.Context, session *domain.Session, payload wire.ReservationPayload) error {
	status, body, err := c.do(ctx, session, http.MethodPost, "/reservations", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		c.logger.Warn("Received non-OK status for reservation create",
			zap.Int("status", status), zap.ByteString("body", body))
		return statusError(status, body)
	}
	c.logger.Info("Reservation created", zap.String("resourceID", payload.ResourceID), zap.String("date", payload.Date))
	return nil
}

// UpdateReservation вызывает PUT /reservations/{id}.
func (c *backendClient) UpdateReservation(ctx context.Context, session *domain.Session, reservationID string, payload wire.ReservationPayload) error {
	status, body, err := c.do(ctx, session, http.MethodPut, "/reservations/"+reservationID, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		c.logger.Warn("Received non-OK status for reservation update",
			zap.String("reservationID", reservationID), zap.Int("status", status), zap.ByteString("body", body))
		return statusError(status, body)
	}
	c.logger.Info("Reservation updated", zap.String("reservationID", reservationID))
	return nil
}

// CancelReservation переводит активную бронь в "cancelada" через
// PUT /reservations/{id} с телом {"state": "cancelada"}.
func (c *backendClient) CancelReservation(ctx context.Context, session *domain.Session, reservationID string) error {
	payload := map[string]domain.ReservationState{"state": domain.StateCancelled}
	status, body, err := c.do(ctx, session, http.MethodPut, "/reservations/"+reservationID, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		c.logger.Warn("Received non-OK status for reservation cancel",
			zap.String("reservationID", reservationID), zap.Int("status", status), zap.ByteString("body", body))
		return statusError(status, body)
	}
	c.logger.Info("Reservation cancelled", zap.String("reservationID", reservationID))
	return nil
}

type availabilityRequest struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
}

// Availability вызывает POST /reservations/availability и возвращает
// упорядоченный список токенов слотов для пары (ресурс, дата). Окно
// доступности эфемерно: оно валидно на момент запроса и нигде не хранится.
func (c *backendClient) Availability(ctx context.Context, session *domain.Session, resourceID string, date time.Time) ([]string, error) {
	payload := availabilityRequest{
		ResourceID: resourceID,
		Date:       date.Format("2006-01-02"),
	}
	status, body, err := c.do(ctx, session, http.MethodPost, "/reservations/availability", payload)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		c.logger.Warn("Received non-OK status for availability",
			zap.String("resourceID", resourceID), zap.String("date", payload.Date),
			zap.Int("status", status), zap.ByteString("body", body))
		return nil, statusError(status, body)
	}
	hours, err := wire.DecodeAvailableHours(body)
	if err != nil {
		c.logger.Error("Failed to decode availability response", zap.ByteString("body", body), zap.Error(err))
		return nil, err
	}
	return hours, nil
}

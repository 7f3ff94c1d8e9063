package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"gym-admin/internal/domain"
)

type exchangeTokenRequest struct {
	IDToken string `json:"idToken"`
}

// ExchangeToken обменивает короткоживущий токен провайдера идентичности на
// серверную сессию (POST /auth/). Возвращает сессионную куку бэкенда в виде
// "name=value", дальше она ходит в каждом аутентифицированном вызове.
func (c *backendClient) ExchangeToken(ctx context.Context, idToken string) (string, error) {
	exchangeURL := c.baseURL + "/auth/"
	log := c.logger.With(zap.String("url", exchangeURL))

	reqBody, err := json.Marshal(exchangeTokenRequest{IDToken: idToken})
	if err != nil {
		return "", fmt.Errorf("internal error marshalling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, exchangeURL, bytes.NewBuffer(reqBody))
	if err != nil {
		log.Error("Failed to create token exchange HTTP request", zap.Error(err))
		return "", fmt.Errorf("internal error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Debug("Sending token exchange request to booking backend")
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("HTTP request for token exchange failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("request to booking backend timed out: %w", err)
		}
		return "", fmt.Errorf("failed to communicate with booking backend: %w", err)
	}
	defer httpResp.Body.Close()
	respBody, _ := io.ReadAll(httpResp.Body)

	if httpResp.StatusCode != http.StatusOK && httpResp.StatusCode != http.StatusCreated {
		log.Warn("Received non-OK status for token exchange", zap.Int("status", httpResp.StatusCode), zap.ByteString("body", respBody))
		if httpResp.StatusCode == http.StatusUnauthorized || httpResp.StatusCode == http.StatusForbidden {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("received unexpected status %d from booking backend for token exchange", httpResp.StatusCode)
	}

	// Сессию бэкенд выдает через Set-Cookie, тело ответа не интересно.
	for _, cookie := range httpResp.Cookies() {
		if cookie.Value != "" {
			log.Info("Backend session established", zap.String("cookie", cookie.Name))
			return cookie.Name + "=" + cookie.Value, nil
		}
	}
	log.Error("Token exchange succeeded but no session cookie was set")
	return "", fmt.Errorf("backend did not set a session cookie")
}

type meResponse struct {
	UID  string `json:"uid"`
	Role bool   `json:"role"` // true значит админ
}

// Me вызывает GET /auth/me и резолвит текущую сессию в (uid, роль).
func (c *backendClient) Me(ctx context.Context, session *domain.Session) (string, domain.Role, error) {
	status, body, err := c.do(ctx, session, http.MethodGet, "/auth/me", nil)
	if err != nil {
		return "", "", err
	}
	if status != http.StatusOK {
		c.logger.Debug("Session check failed", zap.Int("status", status))
		return "", "", statusError(status, body)
	}
	var resp meResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("Failed to decode /auth/me response", zap.ByteString("body", body), zap.Error(err))
		return "", "", fmt.Errorf("invalid /auth/me response format: %w", err)
	}
	role := domain.RoleUser
	if resp.Role {
		role = domain.RoleAdmin
	}
	return resp.UID, role, nil
}

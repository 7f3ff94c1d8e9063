package client

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/wire"
)

// ListUsers вызывает GET /users. 404 здесь валидный пустой результат
// (бэкенд так отвечает на пустую коллекцию), любой другой не-2xx считается ошибкой.
func (c *backendClient) ListUsers(ctx context.Context, session *domain.Session) ([]domain.User, error) {
	status, body, err := c.do(ctx, session, http.MethodGet, "/users", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.logger.Debug("User list returned 404, treating as empty collection")
		return []domain.User{}, nil
	}
	if status != http.StatusOK {
		c.logger.Warn("Received non-OK status for user list", zap.Int("status", status), zap.ByteString("body", body))
		return nil, statusError(status, body)
	}
	users, err := wire.DecodeUsers(body)
	if err != nil {
		c.logger.Error("Failed to decode user list response", zap.ByteString("body", body), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("User list retrieved", zap.Int("userCount", len(users)))
	return users, nil
}

// UpdateUser вызывает PUT /users/{id} с одним переключаемым полем
// (admin либо banned).
func (c *backendClient) UpdateUser(ctx context.Context, session *domain.Session, userID string, payload wire.UserUpdatePayload) error {
	status, body, err := c.do(ctx, session, http.MethodPut, "/users/"+userID, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		c.logger.Warn("Received non-OK status for user update",
			zap.String("userID", userID), zap.Int("status", status), zap.ByteString("body", body))
		return statusError(status, body)
	}
	c.logger.Info("User updated", zap.String("userID", userID))
	return nil
}

// RegisterUser вызывает POST /users после создания аккаунта у провайдера
// идентичности. Запрос не аутентифицирован: регистрация доступна до входа.
func (c *backendClient) RegisterUser(ctx context.Context, payload wire.RegistrationPayload) error {
	status, body, err := c.do(ctx, nil, http.MethodPost, "/users", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		c.logger.Warn("Received non-OK status for user registration",
			zap.String("uid", payload.ID), zap.Int("status", status), zap.ByteString("body", body))
		return statusError(status, body)
	}
	c.logger.Info("Registration record created", zap.String("uid", payload.ID))
	return nil
}

package client

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/wire"
)

// ListResources вызывает GET /resources.
func (c *backendClient) ListResources(ctx context.Context, session *domain.Session) ([]domain.Resource, error) {
	status, body, err := c.do(ctx, session, http.MethodGet, "/resources", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		c.logger.Debug("Resource list returned 404, treating as empty collection")
		return []domain.Resource{}, nil
	}
	if status != http.StatusOK {
		c.logger.Warn("Received non-OK status for resource list", zap.Int("status", status), zap.ByteString("body", body))
		return nil, statusError(status, body)
	}
	resources, err := wire.DecodeResources(body)
	if err != nil {
		c.logger.Error("Failed to decode resource list response", zap.ByteString("body", body), zap.Error(err))
		return nil, err
	}
	c.logger.Debug("Resource list retrieved", zap.Int("resourceCount", len(resources)))
	return resources, nil
}

// GetResource вызывает GET /resources/{id}.
func (c *backendClient) GetResource(ctx context.Context, session *domain.Session, resourceID string) (domain.Resource, error) {
	status, body, err := c.do(ctx, session, http.MethodGet, "/resources/"+resourceID, nil)
	if err != nil {
		return domain.Resource{}, err
	}
	if status != http.StatusOK {
		c.logger.Warn("Received non-OK status for resource fetch",
			zap.String("resourceID", resourceID), zap.Int("status", status), zap.ByteString("body", body))
		return domain.Resource{}, statusError(status, body)
	}
	resource, err := wire.DecodeResource(body)
	if err != nil {
		c.logger.Error("Failed to decode resource response", zap.ByteString("body", body), zap.Error(err))
		return domain.Resource{}, err
	}
	return resource, nil
}

// CreateResource вызывает POST /resources.
func (c *backendClient) CreateResource(ctx context.Context, session *domain.Session, payload wire.ResourcePayload) error {
	status, body, err := c.do(ctx, session, http.MethodPost, "/resources", payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		c.logger.Warn("Received non-OK status for resource create",
			zap.String("name", payload.Name), zap.Int("status", status), zap.ByteString("body", body))
		return statusError(status, body)
	}
	c.logger.Info("Resource created", zap.String("name", payload.Name))
	return nil
}

// UpdateResource вызывает PUT /resources/{id}.
func (c *backendClient) UpdateResource(ctx context.Context, session *domain.Session, resourceID string, payload wire.ResourcePayload) error {
	status, body, err := c.do(ctx, session, http.MethodPut, "/resources/"+resourceID, payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		c.logger.Warn("Received non-OK status for resource update",
			zap.String("resourceID", resourceID), zap.Int("status", status), zap.ByteString("body", body))
		return statusError(status, body)
	}
	c.logger.Info("Resource updated", zap.String("resourceID", resourceID))
	return nil
}

// DeleteResource вызывает DELETE /resources/{id}. Структурное удаление
// существует в API, хотя обычный путь это деактивация флага active.
func (c *backendClient) DeleteResource(ctx context.Context, session *domain.Session, resourceID string) error {
	status, body, err := c.do(ctx, session, http.MethodDelete, "/resources/"+resourceID, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNoContent {
		c.logger.Warn("Received non-OK status for resource delete",
			zap.String("resourceID", resourceID), zap.Int("status", status), zap.ByteString("body", body))
		return statusError(status, body)
	}
	c.logger.Info("Resource deleted", zap.String("resourceID", resourceID))
	return nil
}

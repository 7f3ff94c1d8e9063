package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/guard"
)

// userMessage переводит ошибку клиента в короткое сообщение для тоста.
// Таксономия: сеть, авторизация, не найдено, валидация бэкенда, прочее.
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return "No se pudo conectar con el servidor"
	case errors.Is(err, domain.ErrUnauthorized):
		return "La sesion ha expirado, vuelve a iniciar sesion"
	case errors.Is(err, domain.ErrForbidden):
		return "No tienes permisos para esta accion"
	case errors.Is(err, domain.ErrNotFound):
		return "El elemento solicitado no existe"
	case errors.Is(err, domain.ErrValidation):
		return "Los datos enviados no son validos"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Credenciales incorrectas"
	default:
		return "Ha ocurrido un error inesperado"
	}
}

// sessionOrAbort достает сессию из контекста. Отсутствие сессии за guard'ом
// означает ошибку конфигурации маршрутов.
func (h *AdminHandler) sessionOrAbort(c *gin.Context) (*domain.Session, bool) {
	session, ok := guard.SessionFromContext(c)
	if !ok {
		h.logger.Error("Session missing in guarded handler",
			zap.String("path", c.Request.URL.Path))
		c.Redirect(302, "/login")
		c.Abort()
		return nil, false
	}
	return session, true
}

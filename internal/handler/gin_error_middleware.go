package handler

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CustomErrorMiddleware создает Gin middleware для кастомной обработки ошибок.
// Логирует ошибки сервера и отдает кастомную страницу 404.
func CustomErrorMiddleware(logger *zap.Logger, custom404Path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors {
				logger.Error("Handler error",
					zap.Error(ginErr.Err),
					zap.Int("type", int(ginErr.Type)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
			}
			if !c.Writer.Written() {
				c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
			return
		}

		status := c.Writer.Status()

		// Обработка 404 - отдаем кастомную страницу
		if status == http.StatusNotFound && !c.Writer.Written() {
			content, readErr := os.ReadFile(custom404Path)
			if readErr != nil {
				logger.Error("Could not read custom 404 page", zap.Error(readErr), zap.String("path", custom404Path))
				c.String(http.StatusNotFound, http.StatusText(http.StatusNotFound))
			} else {
				c.Data(http.StatusNotFound, "text/html; charset=utf-8", content)
			}
			return
		}

		if status >= http.StatusInternalServerError {
			logger.Warn("Request resulted in server error status",
				zap.Int("status", status),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
		}
	}
}

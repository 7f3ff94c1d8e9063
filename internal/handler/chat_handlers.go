package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *AdminHandler) showChatPage(c *gin.Context) {
	c.HTML(http.StatusOK, "chat.html", gin.H{
		"ActivePage": "chat",
		"Enabled":    h.assistant != nil,
	})
}

// handleChatQuery пересылает запрос помощнику. Ответ уходит в JSON, страница
// дорисовывает сообщение без перезагрузки.
func (h *AdminHandler) handleChatQuery(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "El asistente no esta disponible"})
		return
	}

	var req struct {
		Input string `json:"input" form:"input"`
	}
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.Input) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Escribe un mensaje"})
		return
	}

	output, err := h.assistant.Query(c.Request.Context(), session.BackendCookie, req.Input)
	if err != nil {
		assistantRequestsTotal.WithLabelValues("query", "error").Inc()
		h.logger.Warn("Assistant query failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "El asistente no ha podido responder"})
		return
	}

	assistantRequestsTotal.WithLabelValues("query", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"output": output})
}

func (h *AdminHandler) handleChatReport(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "El asistente no esta disponible"})
		return
	}

	output, err := h.assistant.Report(c.Request.Context(), session.BackendCookie)
	if err != nil {
		assistantRequestsTotal.WithLabelValues("report", "error").Inc()
		h.logger.Warn("Assistant report failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "No se pudo generar el informe"})
		return
	}

	assistantRequestsTotal.WithLabelValues("report", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"output": output})
}

// handleChatTranscribe принимает аудиофайл из формы и возвращает текст.
func (h *AdminHandler) handleChatTranscribe(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}
	if h.assistant == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "El asistente no esta disponible"})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Adjunta un archivo de audio"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Warn("Failed to open uploaded audio", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No se pudo leer el archivo"})
		return
	}
	defer file.Close()

	text, err := h.assistant.Transcribe(c.Request.Context(), session.BackendCookie, fileHeader.Filename, file)
	if err != nil {
		assistantRequestsTotal.WithLabelValues("transcribe", "error").Inc()
		h.logger.Warn("Transcription failed", zap.String("filename", fileHeader.Filename), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "No se pudo transcribir el audio"})
		return
	}

	assistantRequestsTotal.WithLabelValues("transcribe", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"text": text})
}

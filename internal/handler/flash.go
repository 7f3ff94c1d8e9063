package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	flashCookieName = "flash_message"
	flashCookieTTL  = 5 * time.Second // Короткое время жизни куки
)

// FlashMessage хранит тип и текст сообщения для пользователя.
type FlashMessage struct {
	Type    string `json:"type"` // "success", "error", "info"
	Message string `json:"message"`
}

// setFlashMessage устанавливает подписанную куку с flash-сообщением.
// Использует HMAC-SHA256 для подписи и Base64 для кодирования.
func setFlashMessage(c *gin.Context, msgType, message string, secret []byte) error {
	flash := FlashMessage{Type: msgType, Message: message}
	jsonData, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("failed to marshal flash message: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(jsonData)
	signature := mac.Sum(nil)

	signedData := append(signature, jsonData...)
	encodedValue := base64.URLEncoding.EncodeToString(signedData)

	c.SetCookie(flashCookieName,
		encodedValue,
		int(flashCookieTTL.Seconds()),
		"/",
		"",
		false,
		true,
	)
	return nil
}

// getFlashMessage читает, проверяет и удаляет куку с flash-сообщением.
// Возвращает сообщение, если оно валидно, иначе nil.
func getFlashMessage(c *gin.Context, secret []byte) (*FlashMessage, error) {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil // Нет куки - нет сообщения
		}
		return nil, fmt.Errorf("failed to get flash cookie: %w", err)
	}

	// Удаляем куку сразу после чтения
	c.SetCookie(flashCookieName, "", -1, "/", "", false, true)

	signedData, err := base64.URLEncoding.DecodeString(cookie)
	if err != nil {
		return nil, fmt.Errorf("failed to decode flash cookie: %w", err)
	}
	if len(signedData) < sha256.Size {
		return nil, fmt.Errorf("invalid flash cookie length")
	}

	receivedSig := signedData[:sha256.Size]
	jsonData := signedData[sha256.Size:]

	mac := hmac.New(sha256.New, secret)
	mac.Write(jsonData)
	expectedSig := mac.Sum(nil)

	if !hmac.Equal(receivedSig, expectedSig) {
		return nil, fmt.Errorf("invalid flash cookie signature")
	}

	var flash FlashMessage
	if err := json.Unmarshal(jsonData, &flash); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flash message: %w", err)
	}
	return &flash, nil
}

// flashOrLog ставит flash-сообщение и логирует провал установки.
func (h *AdminHandler) flashOrLog(c *gin.Context, msgType, message string) {
	if err := setFlashMessage(c, msgType, message, h.flashSecret); err != nil {
		h.logger.Warn("Failed to set flash message", zap.Error(err))
	}
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// AssistantClient описывает клиент сервиса помощника: диалоговые запросы,
// генерация отчета и расшифровка аудио.
type AssistantClient interface {
	// Query отправляет текст пользователя и возвращает ответ помощника.
	Query(ctx context.Context, session string, input string) (string, error)
	// Report запрашивает сводный отчет по текущему состоянию броней.
	Report(ctx context.Context, session string) (string, error)
	// Transcribe расшифровывает аудиозапись в текст.
	Transcribe(ctx context.Context, session string, filename string, audio io.Reader) (string, error)
}

type assistantClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewAssistantClient(baseURL string, timeout time.Duration, logger *zap.Logger) (AssistantClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid assistant service URL: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &assistantClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("AssistantClient"),
	}, nil
}

type assistantQueryRequest struct {
	Input string `json:"input"`
}

type assistantQueryResponse struct {
	Response struct {
		Output string `json:"output"`
	} `json:"response"`
}

type transcribeResponse struct {
	Text string `json:"text"`
}

func (c *assistantClient) post(ctx context.Context, session, path, contentType string, body io.Reader) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("internal error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	if session != "" {
		httpReq.Header.Set("Cookie", session)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("HTTP request to assistant service failed", zap.String("path", path), zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("request to assistant service timed out: %w", err)
		}
		return nil, fmt.Errorf("failed to communicate with assistant service: %w", err)
	}
	defer httpResp.Body.Close()
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read assistant response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		c.logger.Warn("Assistant service returned non-OK status",
			zap.String("path", path),
			zap.Int("status", httpResp.StatusCode))
		return nil, statusError(httpResp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *assistantClient) Query(ctx context.Context, session string, input string) (string, error) {
	reqBody, err := json.Marshal(assistantQueryRequest{Input: input})
	if err != nil {
		return "", fmt.Errorf("internal error marshalling request: %w", err)
	}
	respBody, err := c.post(ctx, session, "/query/", "application/json", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", err
	}
	var resp assistantQueryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("invalid assistant response format: %w", err)
	}
	c.logger.Info("Assistant query completed", zap.Int("output_len", len(resp.Response.Output)))
	return resp.Response.Output, nil
}

func (c *assistantClient) Report(ctx context.Context, session string) (string, error) {
	respBody, err := c.post(ctx, session, "/inform/", "application/json", bytes.NewBufferString("{}"))
	if err != nil {
		return "", err
	}
	var resp assistantQueryResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("invalid assistant response format: %w", err)
	}
	c.logger.Info("Assistant report generated")
	return resp.Response.Output, nil
}

func (c *assistantClient) Transcribe(ctx context.Context, session string, filename string, audio io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", filename)
	if err != nil {
		return "", fmt.Errorf("internal error building multipart body: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("failed to read audio payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("internal error building multipart body: %w", err)
	}

	respBody, err := c.post(ctx, session, "/transcribe/", mw.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	var resp transcribeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("invalid transcription response format: %w", err)
	}
	c.logger.Info("Audio transcription completed", zap.Int("text_len", len(resp.Text)))
	return resp.Text, nil
}

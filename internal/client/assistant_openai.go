package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const assistantSystemPrompt = "Eres el asistente del panel de administracion de un gimnasio. " +
	"Respondes en espanol, de forma breve y concreta, sobre reservas, recursos y usuarios."

const assistantReportPrompt = "Genera un informe breve del estado actual de las reservas del gimnasio " +
	"para el administrador. Si no dispones de datos, indica que pasos seguir para obtenerlos."

// openAIAssistant реализует прямой режим помощника: когда отдельный сервис
// помощника не развернут, ходим в OpenAI напрямую (чат и Whisper).
type openAIAssistant struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIAssistant(apiKey, model string, timeout time.Duration, logger *zap.Logger) (AssistantClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for direct assistant mode")
	}
	if model == "" {
		model = openaigo.GPT4oMini
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := openaigo.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return &openAIAssistant{
		client: openaigo.NewClientWithConfig(cfg),
		model:  model,
		logger: logger.Named("OpenAIAssistant"),
	}, nil
}

func (a *openAIAssistant) complete(ctx context.Context, userInput string) (string, error) {
	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: assistantSystemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleUser,
			Content: userInput,
		})
	}

	startTime := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:    a.model,
		Messages: messages,
	})
	duration := time.Since(startTime)
	if err != nil {
		a.logger.Error("AI completion request failed", zap.Duration("duration", duration), zap.Error(err))
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		a.logger.Warn("AI returned empty completion", zap.Duration("duration", duration))
		return "", fmt.Errorf("assistant returned an empty response")
	}
	a.logger.Info("AI completion received",
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens))
	return resp.Choices[0].Message.Content, nil
}

func (a *openAIAssistant) Query(ctx context.Context, _ string, input string) (string, error) {
	return a.complete(ctx, input)
}

func (a *openAIAssistant) Report(ctx context.Context, _ string) (string, error) {
	return a.complete(ctx, assistantReportPrompt)
}

func (a *openAIAssistant) Transcribe(ctx context.Context, _ string, filename string, audio io.Reader) (string, error) {
	startTime := time.Now()
	resp, err := a.client.CreateTranscription(ctx, openaigo.AudioRequest{
		Model:    openaigo.Whisper1,
		FilePath: filename,
		Reader:   audio,
	})
	duration := time.Since(startTime)
	if err != nil {
		a.logger.Error("Whisper transcription failed", zap.Duration("duration", duration), zap.Error(err))
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	a.logger.Info("Whisper transcription completed",
		zap.Duration("duration", duration),
		zap.Int("text_len", len(resp.Text)))
	return resp.Text, nil
}

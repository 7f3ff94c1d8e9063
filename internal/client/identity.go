package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"gym-admin/internal/domain"
)

// IdentityClient описывает клиент провайдера идентичности (Firebase). Вход
// идет через REST identitytoolkit (проверка пары email/пароль доступна только
// там), создание аккаунтов через Admin SDK.
type IdentityClient interface {
	// SignIn обменивает email/пароль на короткоживущий ID-токен.
	SignIn(ctx context.Context, email, password string) (string, error)
	// CreateAccount заводит аккаунт у провайдера и возвращает uid.
	CreateAccount(ctx context.Context, email, password, displayName string) (string, error)
}

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

type identityClient struct {
	apiKey     string
	signInURL  string
	httpClient *http.Client
	authClient *fbauth.Client
	logger     *zap.Logger
}

// NewIdentityClient создает клиент Firebase. credentialsFile может быть пустым:
// тогда Admin SDK берет Application Default Credentials.
func NewIdentityClient(ctx context.Context, apiKey, credentialsFile string, timeout time.Duration, logger *zap.Logger) (IdentityClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("firebase API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
	}

	return &identityClient{
		apiKey:     apiKey,
		signInURL:  signInEndpoint,
		httpClient: &http.Client{Timeout: timeout},
		authClient: authClient,
		logger:     logger.Named("IdentityClient"),
	}, nil
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	IDToken string `json:"idToken"`
}

func (c *identityClient) SignIn(ctx context.Context, email, password string) (string, error) {
	log := c.logger.With(zap.String("email", email))

	reqBody, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return "", fmt.Errorf("internal error marshalling request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.signInURL+"?key="+c.apiKey, bytes.NewBuffer(reqBody))
	if err != nil {
		log.Error("Failed to create sign-in HTTP request", zap.Error(err))
		return "", fmt.Errorf("internal error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	log.Debug("Sending sign-in request to identity provider")
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Error("HTTP request to identity provider failed", zap.Error(err))
		if errors.Is(err, context.DeadlineExceeded) {
			return "", fmt.Errorf("request to identity provider timed out: %w", err)
		}
		return "", fmt.Errorf("failed to communicate with identity provider: %w", err)
	}
	defer httpResp.Body.Close()
	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read identity provider response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		// identitytoolkit отвечает 400 и на неверный пароль, и на
		// несуществующий аккаунт, наружу это одна и та же ошибка.
		log.Warn("Sign-in rejected by identity provider", zap.Int("status", httpResp.StatusCode))
		return "", domain.ErrInvalidCredentials
	}

	var resp signInResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		log.Error("Failed to decode sign-in response", zap.Error(err))
		return "", fmt.Errorf("invalid sign-in response format: %w", err)
	}
	if resp.IDToken == "" {
		return "", fmt.Errorf("identity provider returned empty ID token")
	}
	log.Info("Sign-in successful via identity provider")
	return resp.IDToken, nil
}

func (c *identityClient) CreateAccount(ctx context.Context, email, password, displayName string) (string, error) {
	log := c.logger.With(zap.String("email", email))

	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)
	record, err := c.authClient.CreateUser(ctx, params)
	if err != nil {
		log.Warn("Failed to create account at identity provider", zap.Error(err))
		return "", fmt.Errorf("failed to create identity account: %w", err)
	}
	log.Info("Identity account created", zap.String("uid", record.UID))
	return record.UID, nil
}

package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"gym-admin/internal/domain"
)

// SessionCookieName задает имя куки локальной сессии админки.
const SessionCookieName = "gym_admin_session"

// SessionContextKey задает ключ, под которым middleware кладет domain.Session в gin-контекст.
const SessionContextKey = "session"

// sessionClaims описывает конверт локальной сессии: uid и роль пользователя
// плюс кука бэкенда, которую клиент подставляет в исходящие запросы.
type sessionClaims struct {
	UID           string `json:"uid"`
	Role          string `json:"role"`
	BackendCookie string `json:"bck"`
	jwt.RegisteredClaims
}

// SessionVerifier подтверждает сессию на бэкенде и возвращает актуальные
// uid и роль.
type SessionVerifier interface {
	Me(ctx context.Context, session *domain.Session) (string, domain.Role, error)
}

// Guard выпускает и проверяет локальные сессии админки.
type Guard struct {
	secret   []byte
	ttl      time.Duration
	verifier SessionVerifier
	logger   *zap.Logger
}

func New(secret string, ttl time.Duration, verifier SessionVerifier, logger *zap.Logger) (*Guard, error) {
	if secret == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		secret:   []byte(secret),
		ttl:      ttl,
		verifier: verifier,
		logger:   logger.Named("Guard"),
	}, nil
}

// TTL возвращает срок жизни сессии (для установки куки).
func (g *Guard) TTL() time.Duration {
	return g.ttl
}

// IssueSession подписывает сессию в JWT для куки.
func (g *Guard) IssueSession(session domain.Session) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		UID:           session.UID,
		Role:          string(session.Role),
		BackendCookie: session.BackendCookie,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseSession проверяет подпись и срок и восстанавливает сессию из JWT.
func (g *Guard) ParseSession(tokenString string) (*domain.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return g.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	role := domain.Role(claims.Role)
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrUnauthorized, claims.Role)
	}
	return &domain.Session{
		UID:           claims.UID,
		Role:          role,
		BackendCookie: claims.BackendCookie,
	}, nil
}

// Allowed выполняет чистую проверку роли против списка разрешенных.
func Allowed(role domain.Role, allowed []domain.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

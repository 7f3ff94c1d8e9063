package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-admin/internal/domain"
)

type stubVerifier struct {
	uid  string
	role domain.Role
	err  error
}

func (s *stubVerifier) Me(context.Context, *domain.Session) (string, domain.Role, error) {
	return s.uid, s.role, s.err
}

func newGuard(t *testing.T, verifier SessionVerifier) *Guard {
	t.Helper()
	g, err := New("test-secret", time.Hour, verifier, nil)
	require.NoError(t, err)
	return g
}

func TestNewRequiresSecret(t *testing.T) {
	_, err := New("", time.Hour, nil, nil)
	assert.Error(t, err, "empty secret must be rejected")
}

func TestIssueParseRoundTrip(t *testing.T) {
	g := newGuard(t, nil)
	session := domain.Session{
		UID:           "uid-42",
		Role:          domain.RoleAdmin,
		BackendCookie: "session=backend-value",
	}

	token, err := g.IssueSession(session)
	require.NoError(t, err)

	got, err := g.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, session.UID, got.UID)
	assert.Equal(t, session.Role, got.Role)
	assert.Equal(t, session.BackendCookie, got.BackendCookie, "backend cookie must survive the round trip")
}

func TestParseSessionRejectsTampering(t *testing.T) {
	g := newGuard(t, nil)
	token, err := g.IssueSession(domain.Session{UID: "uid-1", Role: domain.RoleUser})
	require.NoError(t, err)

	// Портим подпись
	tampered := token[:len(token)-2] + "xx"
	_, err = g.ParseSession(tampered)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestParseSessionRejectsForeignSecret(t *testing.T) {
	other, err := New("another-secret", time.Hour, nil, nil)
	require.NoError(t, err)
	token, err := other.IssueSession(domain.Session{UID: "uid-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	g := newGuard(t, nil)
	_, err = g.ParseSession(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestParseSessionRejectsExpired(t *testing.T) {
	g, err := New("test-secret", -time.Minute, nil, nil)
	require.NoError(t, err)
	token, err := g.IssueSession(domain.Session{UID: "uid-1", Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = g.ParseSession(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "expired token must be unauthorized")
}

func TestParseSessionRejectsUnknownRole(t *testing.T) {
	g := newGuard(t, nil)
	claims := sessionClaims{
		UID:  "uid-1",
		Role: "superuser",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = g.ParseSession(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestParseSessionRejectsNoneAlgorithm(t *testing.T) {
	g := newGuard(t, nil)
	claims := sessionClaims{UID: "uid-1", Role: string(domain.RoleAdmin)}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = g.ParseSession(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAllowed(t *testing.T) {
	assert.True(t, Allowed(domain.RoleUser, nil), "empty list allows any role")
	assert.True(t, Allowed(domain.RoleAdmin, []domain.Role{domain.RoleAdmin}))
	assert.False(t, Allowed(domain.RoleUser, []domain.Role{domain.RoleAdmin}))
}

func performGuarded(t *testing.T, g *Guard, cookie string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()

	reached := false
	router.GET("/admin/dashboard", g.RequireRoles(domain.RoleAdmin), func(c *gin.Context) {
		reached = true
		session, ok := SessionFromContext(c)
		require.True(t, ok, "session must be in context past the guard")
		assert.NotEmpty(t, session.UID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w, reached
}

func TestRequireRolesPassesValidAdmin(t *testing.T) {
	verifier := &stubVerifier{uid: "uid-1", role: domain.RoleAdmin}
	g := newGuard(t, verifier)
	token, err := g.IssueSession(domain.Session{UID: "uid-1", Role: domain.RoleAdmin, BackendCookie: "session=x"})
	require.NoError(t, err)

	w, reached := performGuarded(t, g, token)
	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRolesRedirectsWithoutCookie(t *testing.T) {
	g := newGuard(t, &stubVerifier{})

	w, reached := performGuarded(t, g, "")
	assert.False(t, reached, "handler must not run without a session")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

// Бэкенд больше не признает сессию: кука валидна локально, но /auth/me
// вернул отказ.
func TestRequireRolesRedirectsWhenBackendRejects(t *testing.T) {
	verifier := &stubVerifier{err: domain.ErrUnauthorized}
	g := newGuard(t, verifier)
	token, err := g.IssueSession(domain.Session{UID: "uid-1", Role: domain.RoleAdmin, BackendCookie: "session=x"})
	require.NoError(t, err)

	w, reached := performGuarded(t, g, token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// Кука сессии сбрасывается
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie must be cleared on rejection")
}

func TestRequireRolesRejectsInsufficientRole(t *testing.T) {
	verifier := &stubVerifier{uid: "uid-1", role: domain.RoleUser}
	g := newGuard(t, verifier)
	token, err := g.IssueSession(domain.Session{UID: "uid-1", Role: domain.RoleUser, BackendCookie: "session=x"})
	require.NoError(t, err)

	w, reached := performGuarded(t, g, token)
	assert.False(t, reached, "regular user must not reach admin pages")
	assert.Equal(t, http.StatusFound, w.Code)
}

// Роль берется из свежего ответа /auth/me, а не из куки.
func TestRequireRolesUsesFreshRole(t *testing.T) {
	verifier := &stubVerifier{uid: "uid-1", role: domain.RoleUser}
	g := newGuard(t, verifier)
	// В куке еще admin, но бэкенд уже разжаловал
	token, err := g.IssueSession(domain.Session{UID: "uid-1", Role: domain.RoleAdmin, BackendCookie: "session=x"})
	require.NoError(t, err)

	w, reached := performGuarded(t, g, token)
	assert.False(t, reached)
	assert.Equal(t, http.StatusFound, w.Code)
	if loc := w.Header().Get("Location"); loc != "" {
		assert.True(t, strings.HasPrefix(loc, "/login"))
	}
}

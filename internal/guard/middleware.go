package guard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gym-admin/internal/domain"
)

// RequireRoles проверяет локальную сессию, подтверждает ее на бэкенде через
// /auth/me и сверяет роль со списком разрешенных. При любом провале сессия
// сбрасывается и пользователь уходит на страницу входа.
func (g *Guard) RequireRoles(allowed ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := g.logger.With(zap.String("middleware", "RequireRoles"), zap.String("path", c.Request.URL.Path))

		cookie, err := c.Cookie(SessionCookieName)
		if err != nil {
			if errors.Is(err, http.ErrNoCookie) {
				log.Debug("Session cookie not found, redirecting to login")
			} else {
				log.Error("Error reading session cookie, redirecting to login", zap.Error(err))
			}
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		session, err := g.ParseSession(cookie)
		if err != nil {
			log.Warn("Session token invalid, redirecting to login", zap.Error(err))
			g.ClearSessionCookie(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// Локальная кука могла пережить сессию бэкенда: подтверждаем ее
		// и заодно подхватываем актуальную роль.
		uid, role, err := g.verifier.Me(c.Request.Context(), session)
		if err != nil {
			log.Warn("Backend session confirmation failed, redirecting to login",
				zap.String("uid", session.UID), zap.Error(err))
			g.ClearSessionCookie(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		session.UID = uid
		session.Role = role

		if !Allowed(session.Role, allowed) {
			log.Warn("Role not allowed for this area, redirecting to login",
				zap.String("uid", session.UID), zap.String("role", string(session.Role)))
			g.ClearSessionCookie(c)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(SessionContextKey, session)
		log.Debug("Session guard passed", zap.String("uid", session.UID))
		c.Next()
	}
}

// ClearSessionCookie сбрасывает куку локальной сессии.
func (g *Guard) ClearSessionCookie(c *gin.Context) {
	c.SetCookie(SessionCookieName, "", -1, "/", "", false, true)
}

// SetSessionCookie выпускает JWT для сессии и ставит куку.
func (g *Guard) SetSessionCookie(c *gin.Context, session domain.Session) error {
	token, err := g.IssueSession(session)
	if err != nil {
		return err
	}
	c.SetCookie(SessionCookieName, token, int(g.ttl.Seconds()), "/", "", false, true)
	return nil
}

// SessionFromContext достает сессию, положенную RequireRoles.
func SessionFromContext(c *gin.Context) (*domain.Session, bool) {
	value, exists := c.Get(SessionContextKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*domain.Session)
	return session, ok
}

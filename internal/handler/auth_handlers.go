package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/forms"
	"gym-admin/internal/guard"
	"gym-admin/internal/wire"
)

func (h *AdminHandler) showLoginPage(c *gin.Context) {
	// Если сессия уже есть и живая, сразу в консоль.
	cookie, err := c.Cookie(guard.SessionCookieName)
	if err == nil && cookie != "" {
		if session, parseErr := h.guard.ParseSession(cookie); parseErr == nil {
			if _, _, meErr := h.backend.Me(c.Request.Context(), session); meErr == nil {
				c.Redirect(http.StatusSeeOther, "/admin/dashboard")
				return
			}
		}
		h.guard.ClearSessionCookie(c)
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"IsLoginPage": true,
		"Error":       c.Query("error"),
	})
}

func (h *AdminHandler) handleLogin(c *gin.Context) {
	var form forms.LoginForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("Failed to bind login form", zap.Error(err))
		c.HTML(http.StatusOK, "login.html", gin.H{
			"IsLoginPage": true,
			"Error":       "Revisa los datos introducidos",
		})
		return
	}
	if fieldErrors, err := forms.Validate(form); err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"IsLoginPage": true,
			"Email":       form.Email,
			"Error":       firstMessage(fieldErrors),
			"FieldErrors": fieldErrors,
		})
		return
	}

	log := h.logger.With(zap.String("email", form.Email))
	log.Info("Login attempt")

	// Шаг 1: пара email/пароль на короткоживущий токен провайдера.
	idToken, err := h.identity.SignIn(c.Request.Context(), form.Email, form.Password)
	if err != nil {
		log.Warn("Identity sign-in failed", zap.Error(err))
		userFacingError := "Credenciales incorrectas"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			userFacingError = "No se pudo conectar con el proveedor de identidad"
		} else if !errors.Is(err, domain.ErrInvalidCredentials) {
			userFacingError = "Ha ocurrido un error al iniciar sesion"
		}
		c.HTML(http.StatusOK, "login.html", gin.H{
			"IsLoginPage": true,
			"Email":       form.Email,
			"Error":       userFacingError,
		})
		return
	}

	// Шаг 2: токен на сессионную куку бэкенда.
	backendCookie, err := h.backend.ExchangeToken(c.Request.Context(), idToken)
	if err != nil {
		log.Error("Token exchange with backend failed", zap.Error(err))
		c.HTML(http.StatusOK, "login.html", gin.H{
			"IsLoginPage": true,
			"Email":       form.Email,
			"Error":       userMessage(err),
		})
		return
	}

	// Шаг 3: подтверждаем сессию и узнаем роль.
	session := domain.Session{BackendCookie: backendCookie}
	uid, role, err := h.backend.Me(c.Request.Context(), &session)
	if err != nil {
		log.Error("Session confirmation failed right after login", zap.Error(err))
		c.HTML(http.StatusOK, "login.html", gin.H{
			"IsLoginPage": true,
			"Email":       form.Email,
			"Error":       "Credenciales incorrectas",
		})
		return
	}
	session.UID = uid
	session.Role = role

	if !session.IsAdmin() {
		log.Warn("Login rejected: user is not an administrator", zap.String("uid", uid))
		c.HTML(http.StatusOK, "login.html", gin.H{
			"IsLoginPage": true,
			"Email":       form.Email,
			"Error":       "Credenciales incorrectas",
		})
		return
	}

	if err := h.guard.SetSessionCookie(c, session); err != nil {
		log.Error("Failed to issue local session cookie", zap.Error(err))
		c.HTML(http.StatusOK, "login.html", gin.H{
			"IsLoginPage": true,
			"Email":       form.Email,
			"Error":       "Ha ocurrido un error al iniciar sesion",
		})
		return
	}

	loginsTotal.Inc()
	log.Info("Administrator logged in", zap.String("uid", uid))
	c.Redirect(http.StatusSeeOther, "/admin/dashboard")
}

func (h *AdminHandler) showRegisterPage(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{
		"IsLoginPage": true,
	})
}

func (h *AdminHandler) handleRegister(c *gin.Context) {
	var form forms.RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("Failed to bind register form", zap.Error(err))
		c.HTML(http.StatusOK, "register.html", gin.H{
			"IsLoginPage": true,
			"Error":       "Revisa los datos introducidos",
		})
		return
	}
	if fieldErrors, err := forms.Validate(form); err != nil {
		c.HTML(http.StatusOK, "register.html", gin.H{
			"IsLoginPage": true,
			"Name":        form.Name,
			"Email":       form.Email,
			"Error":       firstMessage(fieldErrors),
			"FieldErrors": fieldErrors,
		})
		return
	}

	log := h.logger.With(zap.String("email", form.Email))

	uid, err := h.identity.CreateAccount(c.Request.Context(), form.Email, form.Password, form.Name)
	if err != nil {
		log.Warn("Account creation at identity provider failed", zap.Error(err))
		c.HTML(http.StatusOK, "register.html", gin.H{
			"IsLoginPage": true,
			"Name":        form.Name,
			"Email":       form.Email,
			"Error":       "No se pudo crear la cuenta",
		})
		return
	}

	// Запись пользователя на бэкенде. Аккаунт у провайдера уже есть,
	// провал здесь оставляем на повторную попытку входа.
	payload := wire.RegistrationPayload{
		ID:     uid,
		Name:   form.Name,
		Email:  form.Email,
		Admin:  false,
		Banned: false,
	}
	if err := h.backend.RegisterUser(c.Request.Context(), payload); err != nil {
		log.Error("Backend registration record creation failed", zap.String("uid", uid), zap.Error(err))
		c.HTML(http.StatusOK, "register.html", gin.H{
			"IsLoginPage": true,
			"Name":        form.Name,
			"Email":       form.Email,
			"Error":       userMessage(err),
		})
		return
	}

	registrationsTotal.Inc()
	log.Info("User registered", zap.String("uid", uid))
	h.flashOrLog(c, "success", "Cuenta creada, ya puedes iniciar sesion")
	c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AdminHandler) handleLogout(c *gin.Context) {
	h.guard.ClearSessionCookie(c)
	h.logger.Info("User logged out")
	c.Redirect(http.StatusSeeOther, "/login")
}

// firstMessage возвращает любое из сообщений валидации для заголовка формы.
func firstMessage(fieldErrors map[string]string) string {
	for _, msg := range fieldErrors {
		return msg
	}
	return "Revisa los datos introducidos"
}

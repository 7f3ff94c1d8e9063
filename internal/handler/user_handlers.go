package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/wire"
)

func (h *AdminHandler) listUsers(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	users, err := h.backend.ListUsers(c.Request.Context(), session)
	if err != nil {
		h.logger.Warn("Failed to list users", zap.Error(err))
		c.HTML(http.StatusOK, "users.html", gin.H{
			"ActivePage": "users",
			"Error":      userMessage(err),
		})
		return
	}

	search := strings.TrimSpace(c.Query("search"))
	filtered := filterUsers(users, search)

	flash, _ := getFlashMessage(c, h.flashSecret)
	c.HTML(http.StatusOK, "users.html", gin.H{
		"ActivePage": "users",
		"Users":      filtered,
		"Search":     search,
		"Total":      len(users),
		"Flash":      flash,
	})
}

// filterUsers ищет по имени и почте без учета регистра.
func filterUsers(users []domain.User, search string) []domain.User {
	if search == "" {
		return users
	}
	needle := strings.ToLower(search)
	filtered := make([]domain.User, 0, len(users))
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func (h *AdminHandler) handleToggleAdmin(c *gin.Context) {
	h.toggleUserFlag(c, "admin")
}

func (h *AdminHandler) handleToggleBanned(c *gin.Context) {
	h.toggleUserFlag(c, "banned")
}

// toggleUserFlag переключает флаг пользователя. Желаемое значение приходит
// из формы; при провале список просто перечитывается и показывает прежнее
// состояние, оптимистичных локальных правок нет.
func (h *AdminHandler) toggleUserFlag(c *gin.Context, flag string) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	userID := c.Param("user_id")
	desired := c.PostForm("value") == "true"
	log := h.logger.With(zap.String("user_id", userID), zap.String("flag", flag), zap.Bool("value", desired))

	payload := wire.UserUpdatePayload{}
	if flag == "admin" {
		payload.Admin = &desired
	} else {
		payload.Banned = &desired
	}

	if err := h.backend.UpdateUser(c.Request.Context(), session, userID, payload); err != nil {
		log.Warn("Failed to toggle user flag", zap.Error(err))
		h.flashOrLog(c, "error", userMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/users")
		return
	}

	userTogglesTotal.Inc()
	log.Info("User flag toggled")
	h.flashOrLog(c, "success", "Usuario actualizado")
	c.Redirect(http.StatusSeeOther, "/admin/users")
}

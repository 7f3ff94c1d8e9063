package handler

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gym-admin/internal/domain"
)

// showDashboard собирает счетчики по трем коллекциям параллельно.
// Провал одного источника не валит страницу: вместо числа показывается -1.
func (h *AdminHandler) showDashboard(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	var (
		wg                sync.WaitGroup
		userCount         = -1
		resourceCount     = -1
		activeCount       = -1
		reservationsTotal = -1
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		users, err := h.backend.ListUsers(c.Request.Context(), session)
		if err != nil {
			h.logger.Warn("Dashboard: failed to count users", zap.Error(err))
			return
		}
		userCount = len(users)
	}()
	go func() {
		defer wg.Done()
		resources, err := h.backend.ListResources(c.Request.Context(), session)
		if err != nil {
			h.logger.Warn("Dashboard: failed to count resources", zap.Error(err))
			return
		}
		resourceCount = len(resources)
	}()
	go func() {
		defer wg.Done()
		reservations, err := h.backend.ListReservations(c.Request.Context(), session)
		if err != nil {
			h.logger.Warn("Dashboard: failed to count reservations", zap.Error(err))
			return
		}
		reservationsTotal = len(reservations)
		active := 0
		for _, r := range reservations {
			if r.State == domain.StateActive {
				active++
			}
		}
		activeCount = active
	}()
	wg.Wait()

	flash, _ := getFlashMessage(c, h.flashSecret)
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"ActivePage":         "dashboard",
		"UserCount":          userCount,
		"ResourceCount":      resourceCount,
		"ReservationCount":   reservationsTotal,
		"ActiveReservations": activeCount,
		"Flash":              flash,
	})
}

package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gym-admin/internal/booking"
	"gym-admin/internal/domain"
	"gym-admin/internal/forms"
)

// Вкладки списка броней.
var reservationTabs = map[string]domain.ReservationState{
	"activas":    domain.StateActive,
	"completas":  domain.StateCompleted,
	"canceladas": domain.StateCancelled,
}

func (h *AdminHandler) listReservations(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	reservations, err := h.backend.ListReservations(c.Request.Context(), session)
	if err != nil {
		h.logger.Warn("Failed to list reservations", zap.Error(err))
		c.HTML(http.StatusOK, "reservations.html", gin.H{
			"ActivePage": "reservations",
			"Error":      userMessage(err),
		})
		return
	}

	tab := c.DefaultQuery("tab", "activas")
	state, known := reservationTabs[tab]
	if !known {
		tab = "activas"
		state = domain.StateActive
	}

	search := strings.TrimSpace(c.Query("search"))
	filtered := filterReservations(reservations, state, search)

	flash, _ := getFlashMessage(c, h.flashSecret)
	c.HTML(http.StatusOK, "reservations.html", gin.H{
		"ActivePage":   "reservations",
		"Reservations": filtered,
		"Tab":          tab,
		"Search":       search,
		"Total":        len(reservations),
		"Flash":        flash,
	})
}

// filterReservations отбирает брони по состоянию вкладки и строке поиска
// (имя пользователя или ресурса).
func filterReservations(reservations []domain.Reservation, state domain.ReservationState, search string) []domain.Reservation {
	needle := strings.ToLower(search)
	filtered := make([]domain.Reservation, 0, len(reservations))
	for _, r := range reservations {
		if r.State != state {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(r.ReservedByName), needle) &&
			!strings.Contains(strings.ToLower(r.ResourceName), needle) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func (h *AdminHandler) handleCancelReservation(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	reservationID := c.Param("reservation_id")
	log := h.logger.With(zap.String("reservation_id", reservationID))

	// Отменять можно только активную бронь.
	reservation, err := h.backend.GetReservation(c.Request.Context(), session, reservationID)
	if err != nil {
		log.Warn("Failed to load reservation before cancel", zap.Error(err))
		h.flashOrLog(c, "error", userMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/reservations")
		return
	}
	if !reservation.CanModify() {
		log.Warn("Cancel rejected: reservation is not active", zap.String("state", string(reservation.State)))
		h.flashOrLog(c, "error", "Solo se pueden cancelar reservas activas")
		c.Redirect(http.StatusSeeOther, "/admin/reservations")
		return
	}

	if err := h.backend.CancelReservation(c.Request.Context(), session, reservationID); err != nil {
		log.Warn("Failed to cancel reservation", zap.Error(err))
		h.flashOrLog(c, "error", userMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/reservations")
		return
	}

	reservationMutationsTotal.WithLabelValues("cancel").Inc()
	log.Info("Reservation cancelled")
	h.flashOrLog(c, "success", "Reserva cancelada")
	c.Redirect(http.StatusSeeOther, "/admin/reservations")
}

// showReservationForm отдает форму брони, собранную координатором:
// справочные данные, черновик и доступные слоты.
func (h *AdminHandler) showReservationForm(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	reservationID := c.Param("reservation_id")
	coordinator := h.newCoordinator(reservationID)

	if err := coordinator.LoadReferenceData(c.Request.Context(), session); err != nil {
		state := coordinator.Snapshot()
		c.HTML(http.StatusOK, "reservation_form.html", gin.H{
			"ActivePage": "reservations",
			"IsEdit":     reservationID != "",
			"State":      state,
			"Error":      state.Error,
		})
		return
	}

	if reservationID != "" {
		if err := coordinator.LoadExistingReservation(c.Request.Context(), session); err != nil {
			h.flashOrLog(c, "error", userMessage(err))
			c.Redirect(http.StatusSeeOther, "/admin/reservations")
			return
		}
	}

	state := coordinator.Snapshot()
	c.HTML(http.StatusOK, "reservation_form.html", gin.H{
		"ActivePage":   "reservations",
		"IsEdit":       reservationID != "",
		"State":        state,
		"Participants": coordinator.ParticipantPool(),
	})
}

// handleSubmitReservation принимает отправку формы брони. Провал любого
// рода возвращает форму с сохраненным черновиком.
func (h *AdminHandler) handleSubmitReservation(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	reservationID := c.Param("reservation_id")
	coordinator := h.newCoordinator(reservationID)

	var draft forms.ReservationDraft
	if err := c.ShouldBind(&draft); err != nil {
		h.logger.Warn("Failed to bind reservation draft", zap.Error(err))
		h.flashOrLog(c, "error", "Revisa los datos introducidos")
		formPath := "/admin/reservations/new"
		if reservationID != "" {
			formPath = "/admin/reservations/" + reservationID + "/edit"
		}
		c.Redirect(http.StatusSeeOther, formPath)
		return
	}
	coordinator.ApplyDraft(draft)

	fieldErrors, err := coordinator.Submit(c.Request.Context(), session)
	if err != nil {
		// Черновик не теряется: справочники перечитываются, введенное
		// остается в форме.
		if refErr := coordinator.LoadReferenceData(c.Request.Context(), session); refErr != nil {
			h.logger.Warn("Failed to reload reference data after submit failure", zap.Error(refErr))
		}
		if avErr := coordinator.LoadAvailability(c.Request.Context(), session); avErr != nil {
			h.logger.Debug("Availability reload after submit failure failed", zap.Error(avErr))
		}
		state := coordinator.Snapshot()
		message := userMessage(err)
		if len(fieldErrors) > 0 {
			message = firstMessage(fieldErrors)
		}
		c.HTML(http.StatusOK, "reservation_form.html", gin.H{
			"ActivePage":   "reservations",
			"IsEdit":       reservationID != "",
			"State":        state,
			"Participants": coordinator.ParticipantPool(),
			"Error":        message,
			"FieldErrors":  fieldErrors,
		})
		return
	}

	action := "create"
	message := "Reserva creada"
	if reservationID != "" {
		action = "update"
		message = "Reserva actualizada"
	}
	reservationMutationsTotal.WithLabelValues(action).Inc()
	h.flashOrLog(c, "success", message)
	c.Redirect(http.StatusSeeOther, "/admin/reservations")
}

// handleAvailability отдает JSON для формы: слоты по паре (ресурс, дата).
// Провал бэкенда вырождается в пустой список.
func (h *AdminHandler) handleAvailability(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	var req struct {
		ResourceID string `json:"resource_id" form:"resource_id"`
		Date       string `json:"date" form:"date"`
	}
	if err := c.ShouldBind(&req); err != nil || req.ResourceID == "" || req.Date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource_id y date son obligatorios"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "La fecha no es valida"})
		return
	}

	slots, err := h.backend.Availability(c.Request.Context(), session, req.ResourceID, date)
	if err != nil {
		h.logger.Warn("Availability lookup failed",
			zap.String("resource_id", req.ResourceID), zap.String("date", req.Date), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"available_hours": []string{}})
		return
	}
	if slots == nil {
		slots = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"available_hours": slots})
}

func (h *AdminHandler) newCoordinator(reservationID string) *booking.Coordinator {
	if reservationID != "" {
		return booking.NewEditCoordinator(reservationID, h.backend, h.logger)
	}
	return booking.NewCoordinator(h.backend, h.logger)
}

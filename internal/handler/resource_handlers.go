package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gym-admin/internal/domain"
	"gym-admin/internal/forms"
	"gym-admin/internal/wire"
)

func (h *AdminHandler) listResources(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	resources, err := h.backend.ListResources(c.Request.Context(), session)
	if err != nil {
		h.logger.Warn("Failed to list resources", zap.Error(err))
		c.HTML(http.StatusOK, "resources.html", gin.H{
			"ActivePage": "resources",
			"Error":      userMessage(err),
		})
		return
	}

	search := strings.TrimSpace(c.Query("search"))
	filtered := filterResources(resources, search)

	flash, _ := getFlashMessage(c, h.flashSecret)
	c.HTML(http.StatusOK, "resources.html", gin.H{
		"ActivePage": "resources",
		"Resources":  filtered,
		"Search":     search,
		"Total":      len(resources),
		"Flash":      flash,
	})
}

func filterResources(resources []domain.Resource, search string) []domain.Resource {
	if search == "" {
		return resources
	}
	needle := strings.ToLower(search)
	filtered := make([]domain.Resource, 0, len(resources))
	for _, r := range resources {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Description), needle) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// showResourceForm отдает форму ресурса: пустую для создания, заполненную
// для редактирования.
func (h *AdminHandler) showResourceForm(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	resourceID := c.Param("resource_id")
	data := gin.H{
		"ActivePage": "resources",
		"IsEdit":     resourceID != "",
	}

	if resourceID != "" {
		resource, err := h.backend.GetResource(c.Request.Context(), session, resourceID)
		if err != nil {
			h.logger.Warn("Failed to load resource for editing",
				zap.String("resource_id", resourceID), zap.Error(err))
			h.flashOrLog(c, "error", userMessage(err))
			c.Redirect(http.StatusSeeOther, "/admin/resources")
			return
		}
		data["Form"] = forms.ResourceForm{
			Name:        resource.Name,
			Description: resource.Description,
			Capacity:    resource.Capacity,
			OpeningTime: resource.OpeningTime,
			ClosingTime: resource.ClosingTime,
			Active:      resource.Active,
		}
		data["ResourceID"] = resourceID
	}

	c.HTML(http.StatusOK, "resource_form.html", data)
}

func (h *AdminHandler) handleCreateResource(c *gin.Context) {
	h.submitResourceForm(c, "")
}

func (h *AdminHandler) handleUpdateResource(c *gin.Context) {
	h.submitResourceForm(c, c.Param("resource_id"))
}

// submitResourceForm валидирует и отправляет форму ресурса. Провал не
// стирает введенные значения, форма возвращается заполненной.
func (h *AdminHandler) submitResourceForm(c *gin.Context, resourceID string) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	var form forms.ResourceForm
	if err := c.ShouldBind(&form); err != nil {
		h.logger.Warn("Failed to bind resource form", zap.Error(err))
		c.HTML(http.StatusOK, "resource_form.html", gin.H{
			"ActivePage": "resources",
			"IsEdit":     resourceID != "",
			"ResourceID": resourceID,
			"Form":       form,
			"Error":      "Revisa los datos introducidos",
		})
		return
	}

	isEdit := resourceID != ""
	if fieldErrors, err := forms.Validate(form); err != nil {
		c.HTML(http.StatusOK, "resource_form.html", gin.H{
			"ActivePage":  "resources",
			"IsEdit":      isEdit,
			"ResourceID":  resourceID,
			"Form":        form,
			"Error":       firstMessage(fieldErrors),
			"FieldErrors": fieldErrors,
		})
		return
	}

	payload := wire.ResourcePayload{
		Name:        form.Name,
		Description: form.Description,
		Capacity:    form.Capacity,
		OpeningTime: form.OpeningTime,
		ClosingTime: form.ClosingTime,
		Active:      form.Active,
	}

	var err error
	if isEdit {
		err = h.backend.UpdateResource(c.Request.Context(), session, resourceID, payload)
	} else {
		err = h.backend.CreateResource(c.Request.Context(), session, payload)
	}
	if err != nil {
		h.logger.Warn("Failed to save resource",
			zap.String("resource_id", resourceID), zap.Error(err))
		c.HTML(http.StatusOK, "resource_form.html", gin.H{
			"ActivePage":  "resources",
			"IsEdit":      isEdit,
			"ResourceID":  resourceID,
			"Form":        form,
			"Error":       userMessage(err),
			"FieldErrors": map[string]string{},
		})
		return
	}

	action := "create"
	message := "Recurso creado"
	if isEdit {
		action = "update"
		message = "Recurso actualizado"
	}
	resourceMutationsTotal.WithLabelValues(action).Inc()
	h.logger.Info("Resource saved", zap.String("resource_id", resourceID), zap.String("action", action))
	h.flashOrLog(c, "success", message)
	c.Redirect(http.StatusSeeOther, "/admin/resources")
}

func (h *AdminHandler) handleDeleteResource(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	resourceID := c.Param("resource_id")
	if err := h.backend.DeleteResource(c.Request.Context(), session, resourceID); err != nil {
		h.logger.Warn("Failed to delete resource", zap.String("resource_id", resourceID), zap.Error(err))
		h.flashOrLog(c, "error", userMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/resources")
		return
	}

	resourceMutationsTotal.WithLabelValues("delete").Inc()
	h.logger.Info("Resource deleted", zap.String("resource_id", resourceID))
	h.flashOrLog(c, "success", "Recurso eliminado")
	c.Redirect(http.StatusSeeOther, "/admin/resources")
}

// handleToggleResourceActive деактивирует или активирует ресурс. Это
// предпочтительный способ вывода ресурса из оборота вместо удаления.
func (h *AdminHandler) handleToggleResourceActive(c *gin.Context) {
	session, ok := h.sessionOrAbort(c)
	if !ok {
		return
	}

	resourceID := c.Param("resource_id")
	resource, err := h.backend.GetResource(c.Request.Context(), session, resourceID)
	if err != nil {
		h.logger.Warn("Failed to load resource for toggle", zap.String("resource_id", resourceID), zap.Error(err))
		h.flashOrLog(c, "error", userMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/resources")
		return
	}

	payload := wire.ResourcePayload{
		Name:        resource.Name,
		Description: resource.Description,
		Capacity:    resource.Capacity,
		OpeningTime: resource.OpeningTime,
		ClosingTime: resource.ClosingTime,
		Active:      !resource.Active,
	}
	if err := h.backend.UpdateResource(c.Request.Context(), session, resourceID, payload); err != nil {
		h.logger.Warn("Failed to toggle resource active flag", zap.String("resource_id", resourceID), zap.Error(err))
		h.flashOrLog(c, "error", userMessage(err))
		c.Redirect(http.StatusSeeOther, "/admin/resources")
		return
	}

	resourceMutationsTotal.WithLabelValues("toggle_active").Inc()
	h.logger.Info("Resource active flag toggled",
		zap.String("resource_id", resourceID), zap.Bool("active", !resource.Active))
	h.flashOrLog(c, "success", "Recurso actualizado")
	c.Redirect(http.StatusSeeOther, "/admin/resources")
}

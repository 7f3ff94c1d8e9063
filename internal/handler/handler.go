package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gym-admin/internal/client"
	"gym-admin/internal/config"
	"gym-admin/internal/domain"
	"gym-admin/internal/guard"
)

// AdminHandler обслуживает все страницы консоли администратора.
type AdminHandler struct {
	logger      *zap.Logger
	cfg         *config.Config
	backend     client.BackendClient
	identity    client.IdentityClient
	assistant   client.AssistantClient
	guard       *guard.Guard
	flashSecret []byte
}

func NewAdminHandler(
	cfg *config.Config,
	logger *zap.Logger,
	backend client.BackendClient,
	identity client.IdentityClient,
	assistant client.AssistantClient,
	sessionGuard *guard.Guard,
) *AdminHandler {
	if cfg == nil {
		logger.Fatal("Config is nil during AdminHandler initialization")
	}
	if backend == nil {
		logger.Fatal("Backend client is nil during AdminHandler initialization")
	}
	if sessionGuard == nil {
		logger.Fatal("Session guard is nil during AdminHandler initialization")
	}
	if assistant == nil {
		logger.Warn("Assistant client is nil during AdminHandler initialization, chat panel disabled")
	}
	return &AdminHandler{
		logger:      logger.Named("AdminHandler"),
		cfg:         cfg,
		backend:     backend,
		identity:    identity,
		assistant:   assistant,
		guard:       sessionGuard,
		flashSecret: []byte(cfg.FlashSecret),
	}
}

func (h *AdminHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.healthCheck)

	// Корень уводит в консоль; guard сам отправит на логин без сессии
	router.GET("/", func(c *gin.Context) {
		c.Redirect(302, "/admin/dashboard")
	})

	router.GET("/login", h.showLoginPage)
	router.POST("/login", h.handleLogin)
	router.GET("/register", h.showRegisterPage)
	router.POST("/register", h.handleRegister)
	router.GET("/logout", h.handleLogout)

	adminGroup := router.Group("/admin", h.guard.RequireRoles(domain.RoleAdmin))
	{
		adminGroup.GET("/dashboard", h.showDashboard)

		adminGroup.GET("/users", h.listUsers)
		userGroup := adminGroup.Group("/users/:user_id")
		{
			userGroup.POST("/toggle-admin", h.handleToggleAdmin)
			userGroup.POST("/toggle-banned", h.handleToggleBanned)
		}

		adminGroup.GET("/resources", h.listResources)
		adminGroup.GET("/resources/new", h.showResourceForm)
		adminGroup.POST("/resources", h.handleCreateResource)
		resourceGroup := adminGroup.Group("/resources/:resource_id")
		{
			resourceGroup.GET("/edit", h.showResourceForm)
			resourceGroup.POST("", h.handleUpdateResource)
			resourceGroup.POST("/delete", h.handleDeleteResource)
			resourceGroup.POST("/toggle-active", h.handleToggleResourceActive)
		}

		adminGroup.GET("/reservations", h.listReservations)
		adminGroup.GET("/reservations/new", h.showReservationForm)
		adminGroup.POST("/reservations", h.handleSubmitReservation)
		adminGroup.POST("/reservations/availability", h.handleAvailability)
		reservationGroup := adminGroup.Group("/reservations/:reservation_id")
		{
			reservationGroup.GET("/edit", h.showReservationForm)
			reservationGroup.POST("", h.handleSubmitReservation)
			reservationGroup.POST("/cancel", h.handleCancelReservation)
		}

		chatGroup := adminGroup.Group("/chat")
		{
			chatGroup.GET("", h.showChatPage)
			chatGroup.POST("/query", h.handleChatQuery)
			chatGroup.POST("/report", h.handleChatReport)
			chatGroup.POST("/transcribe", h.handleChatTranscribe)
		}
	}
}

func (h *AdminHandler) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"

	"gym-admin/internal/client"
	"gym-admin/internal/config"
	"gym-admin/internal/guard"
	"gym-admin/internal/handler"
	sharedLogger "gym-admin/shared/logger"
	sharedMiddleware "gym-admin/shared/middleware"
)

func main() {
	// Стандартный log для самых ранних ошибок, до инициализации zap
	log.Println("Запуск Gym Admin...")

	cfg, err := config.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}
	log.Println("Конфигурация загружена")

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:      cfg.LogLevel,
		Encoding:   "json",
		OutputPath: "",
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("Логгер инициализирован", "logLevel", cfg.LogLevel)

	// --- Инициализация клиентов внешних сервисов ---
	backendClient, err := client.NewBackendClient(cfg.BackendURL, cfg.ClientTimeout, logger)
	if err != nil {
		sugar.Fatalf("Не удалось создать BackendClient: %v", err)
	}

	identityClient, err := client.NewIdentityClient(context.Background(),
		cfg.FirebaseAPIKey, cfg.FirebaseCredentialsFile, cfg.ClientTimeout, logger)
	if err != nil {
		sugar.Fatalf("Не удалось создать IdentityClient: %v", err)
	}

	var assistantClient client.AssistantClient
	if cfg.DirectAssistantMode() {
		assistantClient, err = client.NewOpenAIAssistant(cfg.OpenAIAPIKey, cfg.AssistantModel, cfg.TranscribeTimeout, logger)
		if err != nil {
			sugar.Fatalf("Не удалось создать OpenAI-помощника: %v", err)
		}
		sugar.Info("Помощник работает в прямом режиме через OpenAI")
	} else {
		assistantClient, err = client.NewAssistantClient(cfg.AssistantURL, cfg.TranscribeTimeout, logger)
		if err != nil {
			sugar.Fatalf("Не удалось создать AssistantClient: %v", err)
		}
		sugar.Infof("Помощник работает через сервис %s", cfg.AssistantURL)
	}

	sessionGuard, err := guard.New(cfg.JWTSecret, cfg.SessionTTL, backendClient, logger)
	if err != nil {
		sugar.Fatalf("Не удалось создать session guard: %v", err)
	}

	h := handler.NewAdminHandler(cfg, logger, backendClient, identityClient, assistantClient, sessionGuard)

	// --- Настройка Gin ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(sharedMiddleware.GinZapLogger(logger))

	custom404Path := "./web/static/404.html"
	router.Use(handler.CustomErrorMiddleware(logger, custom404Path))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	prom := ginprometheus.NewPrometheus("gym_admin")
	prom.Use(router)

	router.LoadHTMLGlob("./web/templates/*")
	router.Static("/static", "./web/static")

	h.RegisterRoutes(router)

	// --- Запуск HTTP сервера ---
	serverAddr := ":" + cfg.ServerPort
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		sugar.Infof("Gym Admin запускается на порту %s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalf("Ошибка запуска HTTP сервера: %v", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	sugar.Info("Получен сигнал завершения, начинаем остановку сервера...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Fatalf("Ошибка при остановке сервера: %v", err)
	}

	sugar.Info("Сервер успешно остановлен")
}

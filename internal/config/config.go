package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"gym-admin/shared/utils"
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"development"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"debug"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8090"`

	// Адреса внешних сервисов
	BackendURL    string        `envconfig:"BACKEND_URL" required:"true"`
	AssistantURL  string        `envconfig:"ASSISTANT_URL" default:""` // пусто = прямой режим через OpenAI
	ClientTimeout time.Duration `envconfig:"CLIENT_TIMEOUT" default:"15s"`
	// Расшифровка аудио идет дольше обычного запроса
	TranscribeTimeout time.Duration `envconfig:"TRANSCRIBE_TIMEOUT" default:"60s"`

	// Firebase
	FirebaseCredentialsFile string `envconfig:"FIREBASE_CREDENTIALS_FILE" default:""`
	// Секретное поле БЕЗ envconfig тега
	FirebaseAPIKey string

	// Сессия админки
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"12h"`
	// Секретные поля БЕЗ envconfig тегов
	JWTSecret   string
	FlashSecret string

	// OpenAI (только для прямого режима помощника)
	AssistantModel string `envconfig:"ASSISTANT_MODEL" default:""`
	OpenAIAPIKey   string

	// CORS Settings
	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:8090"`
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// DirectAssistantMode reports whether the assistant runs against OpenAI
// directly instead of a dedicated assistant service.
func (c *Config) DirectAssistantMode() bool {
	return c.AssistantURL == ""
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if _, err := os.Stat(envFilePath); err == nil {
		if err := godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		} else {
			log.Printf("Loaded configuration from %s", envFilePath)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Обязательные секреты
	var loadErr error
	cfg.JWTSecret, loadErr = utils.ReadSecret("jwt_secret")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.FlashSecret, loadErr = utils.ReadSecret("flash_secret")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.FirebaseAPIKey, loadErr = utils.ReadSecret("firebase_api_key")
	if loadErr != nil {
		return nil, loadErr
	}

	// Ключ OpenAI обязателен только в прямом режиме помощника
	openAIKey, err := utils.ReadSecret("openai_api_key")
	if err == nil {
		cfg.OpenAIAPIKey = openAIKey
	} else if cfg.DirectAssistantMode() {
		return nil, fmt.Errorf("direct assistant mode requires the openai_api_key secret: %w", err)
	} else {
		log.Printf("Optional secret 'openai_api_key' not found: %v. Assistant service mode assumed.", err)
	}

	log.Println("Configuration loaded successfully (secrets read from files).")
	return &cfg, nil
}

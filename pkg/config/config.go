package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Auth      AuthConfig
	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Quota     QuotaConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
}

type DatabaseConfig struct {
	Path string
}

type StorageConfig struct {
	BasePath string
}

type AuthConfig struct {
	Secret        string
	TokenTTLHours int
}

type AnthropicConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

type OpenAIConfig struct {
	APIKey         string
	EmbeddingModel string
}

type QuotaConfig struct {
	ProjectsPerDay int
	MessagesPerDay int
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	AppConfig = &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./codelens.db"),
		},
		Storage: StorageConfig{
			BasePath: getEnv("STORAGE_PATH", "./storage"),
		},
		Auth: AuthConfig{
			Secret:        getEnv("AUTH_SECRET", "default-secret-key"),
			TokenTTLHours: getEnvAsInt("TOKEN_TTL_HOURS", 72),
		},
		Anthropic: AnthropicConfig{
			APIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			Model:     getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			MaxTokens: getEnvAsInt("ANTHROPIC_MAX_TOKENS", 4096),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			EmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		},
		Quota: QuotaConfig{
			ProjectsPerDay: getEnvAsInt("QUOTA_PROJECTS_PER_DAY", 3),
			MessagesPerDay: getEnvAsInt("QUOTA_MESSAGES_PER_DAY", 5),
		},
	}

	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

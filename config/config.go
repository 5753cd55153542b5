package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	AppName   string
	Port      string
	JWTKey    string
	JWTExpiry int // hours
	SaltRound int

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	// LLM providers
	OpenAIKey       string
	OpenAIModel     string
	GeminiKey       string
	GeminiModel     string
	DefaultProvider string // "openai" or "gemini"

	// Agent pipeline knobs
	AgentMaxRetries   int
	AgentTimeoutSec   int
	AgentStagePauseMs int

	// Knowledge base / vector store
	KnowledgeBasePath string
	VectorIndexPath   string
	VectorDimensions  int

	CORSOrigins string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		AppName:   getEnv("APP_NAME", "EduSynapse"),
		Port:      getEnv("PORT", "8000"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		JWTExpiry: getEnvInt("JWT_EXPIRY_HOURS", 24),
		SaltRound: getEnvInt("SALT_ROUND", 10),

		DBHost:     getEnv("DB_HOST", ""),
		DBUser:     getEnv("DB_USER", "edusynapse"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "edusynapse.db"),
		DBPort:     getEnv("DB_PORT", "5432"),

		OpenAIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:     getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:       getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "openai"),

		AgentMaxRetries:   getEnvInt("AGENT_MAX_RETRIES", 3),
		AgentTimeoutSec:   getEnvInt("AGENT_TIMEOUT", 120),
		AgentStagePauseMs: getEnvInt("AGENT_STAGE_PAUSE_MS", 1500),

		KnowledgeBasePath: getEnv("KNOWLEDGE_BASE_PATH", "./data/knowledge_base"),
		VectorIndexPath:   getEnv("VECTOR_INDEX_PATH", "./data/vector_index.json"),
		VectorDimensions:  getEnvInt("VECTOR_DIMENSIONS", 384),

		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:8080,http://localhost:3000"),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.OpenAIKey == "" && AppConfig.GeminiKey == "" {
		log.Println("Warning: No LLM API key configured. Agents will run in fallback mode.")
	}
}

// ErrNoProvider is returned when no LLM API key is configured.
var ErrNoProvider = errors.New("no LLM API key configured")

// ActiveProvider returns the usable LLM provider name, preferring the
// configured default and falling back to whichever key is present.
func (c *Config) ActiveProvider() (string, error) {
	if c.DefaultProvider == "gemini" && c.GeminiKey != "" {
		return "gemini", nil
	}
	if c.OpenAIKey != "" {
		return "openai", nil
	}
	if c.GeminiKey != "" {
		return "gemini", nil
	}
	return "", ErrNoProvider
}

// CORSOriginList splits the configured origins into a slice.
func (c *Config) CORSOriginList() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}

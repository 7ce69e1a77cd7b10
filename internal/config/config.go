package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Audit failure policies.
const (
	AuditPolicyDeliver = "deliver" // log the persistence error, still return the explanation
	AuditPolicyFail    = "fail"    // treat the persistence error as a failed request
)

// Accepted GENERATION_TEMPERATURE range, shared by both providers.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Config holds all configuration for our application
type Config struct {
	Port             string
	Origin           string
	Environment      string
	LogMode          string
	AuditingEnabled  bool
	AuditPolicy      string
	HistoryJWTSecret string
	GuidelineFile    string
	Database         DatabaseConfig
	Generation       GenerationConfig
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver   string
	Path     string
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// GenerationConfig holds text-generation provider settings
type GenerationConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	genConfig, err := loadGenerationConfig()
	if err != nil {
		return nil, err
	}

	auditingEnabled, err := strconv.ParseBool(getEnv("AUDITING_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid AUDITING_ENABLED: %w", err)
	}

	policy := strings.ToLower(getEnv("AUDIT_FAILURE_POLICY", AuditPolicyDeliver))
	if policy != AuditPolicyDeliver && policy != AuditPolicyFail {
		return nil, fmt.Errorf("invalid AUDIT_FAILURE_POLICY %q: want %q or %q", policy, AuditPolicyDeliver, AuditPolicyFail)
	}

	return &Config{
		Port:             getEnv("PORT", "3000"),
		Origin:           getEnv("ORIGIN", "http://localhost:3000"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogMode:          getEnv("LOG_MODE", "development"),
		AuditingEnabled:  auditingEnabled,
		AuditPolicy:      policy,
		HistoryJWTSecret: getEnv("HISTORY_JWT_SECRET", ""),
		GuidelineFile:    getEnv("GUIDELINE_FILE", ""),
		Database:         dbConfig,
		Generation:       genConfig,
	}, nil
}

func loadDatabaseConfig() (DatabaseConfig, error) {
	dbConfig := DatabaseConfig{
		Driver:   strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		Path:     getEnv("DB_PATH", "kdigo_history.db"),
		Host:     getEnv("DB_HOST", "localhost"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "kdigo"),
	}

	// Build DSN (Data Source Name) for the selected driver
	switch dbConfig.Driver {
	case "sqlite":
		dbConfig.DSN = dbConfig.Path
	case "mysql":
		dbConfig.Port = getEnv("DB_PORT", "3306")
		dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	case "postgres":
		dbConfig.Port = getEnv("DB_PORT", "5432")
		dbConfig.DSN = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)
	default:
		return DatabaseConfig{}, fmt.Errorf("invalid DB_DRIVER %q: want sqlite, mysql or postgres", dbConfig.Driver)
	}
	if dsn := getEnv("DB_DSN", ""); dsn != "" {
		dbConfig.DSN = dsn
	}
	return dbConfig, nil
}

func loadGenerationConfig() (GenerationConfig, error) {
	temperature, err := strconv.ParseFloat(getEnv("GENERATION_TEMPERATURE", "0.1"), 32)
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("invalid GENERATION_TEMPERATURE: %w", err)
	}
	if math.IsNaN(temperature) || temperature < MinTemperature || temperature > MaxTemperature {
		return GenerationConfig{}, fmt.Errorf("invalid GENERATION_TEMPERATURE %v: want a value between %v and %v", temperature, MinTemperature, MaxTemperature)
	}

	timeoutSeconds, err := strconv.Atoi(getEnv("GENERATION_TIMEOUT_SECONDS", "60"))
	if err != nil {
		return GenerationConfig{}, fmt.Errorf("invalid GENERATION_TIMEOUT_SECONDS: %w", err)
	}

	genConfig := GenerationConfig{
		Provider:    strings.ToLower(getEnv("GENERATION_PROVIDER", "openai")),
		Temperature: float32(temperature),
		Timeout:     time.Duration(timeoutSeconds) * time.Second,
	}
	switch genConfig.Provider {
	case "openai":
		genConfig.APIKey = getEnv("OPENAI_API_KEY", "")
		genConfig.BaseURL = getEnv("OPENAI_BASE_URL", "")
		genConfig.Model = getEnv("OPENAI_MODEL", "gpt-4o")
	case "gemini":
		genConfig.APIKey = getEnv("GEMINI_API_KEY", "")
		genConfig.Model = getEnv("GEMINI_MODEL", "gemini-2.5-flash")
	default:
		return GenerationConfig{}, fmt.Errorf("invalid GENERATION_PROVIDER %q: want openai or gemini", genConfig.Provider)
	}
	return genConfig, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

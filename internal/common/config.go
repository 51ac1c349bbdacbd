package common

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/joseph-ayodele/statement-parser/constants"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"SERVER"`
	Database   DatabaseConfig   `mapstructure:"DATABASE"`
	Redis      RedisConfig      `mapstructure:"REDIS"`
	OCR        OCRConfig        `mapstructure:"OCR"`
	LLM        LLMConfig        `mapstructure:"LLM"`
	Validation ValidationConfig `mapstructure:"VALIDATION"`
	Batch      BatchConfig      `mapstructure:"BATCH"`
	LogLevel   string           `mapstructure:"LOG_LEVEL"`
	LogFormat  string           `mapstructure:"LOG_FORMAT"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Host           string        `mapstructure:"HOST"`
	Port           int           `mapstructure:"PORT"`
	APIKey         string        `mapstructure:"API_KEY"`
	AllowedOrigins []string      `mapstructure:"ALLOWED_ORIGINS"`
	GRPCHealthAddr string        `mapstructure:"GRPC_HEALTH_ADDR"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	MaxFileSize    int64         `mapstructure:"MAX_FILE_SIZE"`
	Version        string        `mapstructure:"VERSION"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database-related configuration. An empty URL disables job persistence.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"DRIVER"`
	URL             string        `mapstructure:"URL"`
	MaxConns        int           `mapstructure:"MAX_CONNS"`
	MaxConnLifetime time.Duration `mapstructure:"MAX_CONN_LIFETIME"`
	DialTimeout     time.Duration `mapstructure:"DIAL_TIMEOUT"`
}

// RedisConfig holds result-cache configuration. An empty Address disables the cache.
type RedisConfig struct {
	Address  string        `mapstructure:"ADDRESS"`
	Password string        `mapstructure:"PASSWORD"`
	DB       int           `mapstructure:"DB"`
	TTL      time.Duration `mapstructure:"TTL"`
}

// OCRConfig holds text acquisition configuration
type OCRConfig struct {
	Lang          string   `mapstructure:"LANG"`
	DPI           int      `mapstructure:"DPI"`
	PSM           int      `mapstructure:"PSM"`
	MaxPages      int      `mapstructure:"MAX_PAGES"`
	TessdataDir   string   `mapstructure:"TESSDATA_DIR"`
	TempDir       string   `mapstructure:"TEMP_DIR"`
	DirectEngines []string `mapstructure:"DIRECT_ENGINES"`
}

// LLMConfig holds generator configuration
type LLMConfig struct {
	Provider      string        `mapstructure:"PROVIDER"`
	BaseURL       string        `mapstructure:"BASE_URL"`
	APIKey        string        `mapstructure:"API_KEY"`
	Model         string        `mapstructure:"MODEL"`
	GeminiAPIKey  string        `mapstructure:"GEMINI_API_KEY"`
	MaxInputChars int           `mapstructure:"MAX_INPUT_CHARS"`
	MaxNewTokens  int           `mapstructure:"MAX_NEW_TOKENS"`
	Temperature   float32       `mapstructure:"TEMPERATURE"`
	Timeout       time.Duration `mapstructure:"TIMEOUT"`
	Serialize     bool          `mapstructure:"SERIALIZE"`
}

type ValidationConfig struct {
	Strictness string `mapstructure:"STRICTNESS"`
}

type BatchConfig struct {
	Workers        int           `mapstructure:"WORKERS"`
	QueueSize      int           `mapstructure:"QUEUE_SIZE"`
	ProcessTimeout time.Duration `mapstructure:"PROCESS_TIMEOUT"`
}

// bindEnvVars binds config keys to environment variables. Format: []{configKey, envVar}
func bindEnvVars(v *viper.Viper, bindings [][2]string) error {
	for _, b := range bindings {
		if err := v.BindEnv(b[0], b[1]); err != nil {
			return fmt.Errorf("failed to bind %s: %w", b[0], err)
		}
	}
	return nil
}

// LoadConfig loads configuration from environment variables, applies defaults and validates it.
func LoadConfig() (*Config, error) {
	v := viper.New()

	v.SetDefault("SERVER.HOST", "0.0.0.0")
	v.SetDefault("SERVER.PORT", 7079)
	v.SetDefault("SERVER.API_KEY", "")
	v.SetDefault("SERVER.ALLOWED_ORIGINS", []string{"http://localhost"})
	v.SetDefault("SERVER.GRPC_HEALTH_ADDR", ":7080")
	v.SetDefault("SERVER.REQUEST_TIMEOUT", "10m")
	v.SetDefault("SERVER.MAX_FILE_SIZE", constants.MaxFileSizeDefault)
	v.SetDefault("SERVER.VERSION", "1.0.0")
	v.SetDefault("DATABASE.DRIVER", "sqlite")
	v.SetDefault("DATABASE.URL", "file:statements.db?_pragma=busy_timeout(5000)")
	v.SetDefault("DATABASE.MAX_CONNS", 10)
	v.SetDefault("DATABASE.MAX_CONN_LIFETIME", "30m")
	v.SetDefault("DATABASE.DIAL_TIMEOUT", "3s")
	v.SetDefault("REDIS.ADDRESS", "")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.TTL", "24h")
	v.SetDefault("OCR.LANG", "eng")
	v.SetDefault("OCR.DPI", 300)
	v.SetDefault("OCR.PSM", 4)
	v.SetDefault("OCR.MAX_PAGES", 0)
	v.SetDefault("OCR.TESSDATA_DIR", "")
	v.SetDefault("OCR.TEMP_DIR", "")
	v.SetDefault("OCR.DIRECT_ENGINES", []string{constants.EngineNative, constants.EnginePdftotext})
	v.SetDefault("LLM.PROVIDER", "openai")
	v.SetDefault("LLM.BASE_URL", "http://localhost:8000/v1")
	v.SetDefault("LLM.MODEL", "openchat/openchat_3.5")
	v.SetDefault("LLM.MAX_INPUT_CHARS", 8000)
	v.SetDefault("LLM.MAX_NEW_TOKENS", 2048)
	v.SetDefault("LLM.TEMPERATURE", 0.0)
	v.SetDefault("LLM.TIMEOUT", "5m")
	v.SetDefault("LLM.SERIALIZE", true)
	v.SetDefault("VALIDATION.STRICTNESS", string(constants.StrictnessStructural))
	v.SetDefault("BATCH.WORKERS", 2)
	v.SetDefault("BATCH.QUEUE_SIZE", 64)
	v.SetDefault("BATCH.PROCESS_TIMEOUT", "10m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envBindings := [][2]string{
		{"SERVER.HOST", "API_HOST"},
		{"SERVER.PORT", "API_PORT"},
		{"SERVER.API_KEY", "API_KEY"},
		{"SERVER.ALLOWED_ORIGINS", "ALLOWED_ORIGINS"},
		{"SERVER.GRPC_HEALTH_ADDR", "GRPC_HEALTH_ADDR"},
		{"SERVER.REQUEST_TIMEOUT", "REQUEST_TIMEOUT"},
		{"SERVER.MAX_FILE_SIZE", "MAX_FILE_SIZE"},
		{"SERVER.VERSION", "API_VERSION"},
		{"DATABASE.DRIVER", "DB_DRIVER"},
		{"DATABASE.URL", "DB_URL"},
		{"DATABASE.MAX_CONNS", "DB_MAX_CONNS"},
		{"DATABASE.MAX_CONN_LIFETIME", "DB_MAX_CONN_LIFETIME"},
		{"DATABASE.DIAL_TIMEOUT", "DB_DIAL_TIMEOUT"},
		{"REDIS.ADDRESS", "REDIS_ADDRESS"},
		{"REDIS.PASSWORD", "REDIS_PASSWORD"},
		{"REDIS.DB", "REDIS_DB"},
		{"REDIS.TTL", "CACHE_TTL"},
		{"OCR.LANG", "OCR_LANG"},
		{"OCR.DPI", "OCR_DPI"},
		{"OCR.PSM", "OCR_PSM"},
		{"OCR.MAX_PAGES", "OCR_MAX_PAGES"},
		{"OCR.TESSDATA_DIR", "TESSDATA_PREFIX"},
		{"OCR.TEMP_DIR", "STATEMENT_TMP_DIR"},
		{"OCR.DIRECT_ENGINES", "PDF_DIRECT_ENGINES"},
		{"LLM.PROVIDER", "LLM_PROVIDER"},
		{"LLM.BASE_URL", "LLM_BASE_URL"},
		{"LLM.API_KEY", "LLM_API_KEY"},
		{"LLM.MODEL", "BASE_MODEL"},
		{"LLM.GEMINI_API_KEY", "GEMINI_API_KEY"},
		{"LLM.MAX_INPUT_CHARS", "LLM_MAX_INPUT_CHARS"},
		{"LLM.MAX_NEW_TOKENS", "LLM_MAX_NEW_TOKENS"},
		{"LLM.TEMPERATURE", "LLM_TEMPERATURE"},
		{"LLM.TIMEOUT", "LLM_TIMEOUT"},
		{"LLM.SERIALIZE", "LLM_SERIALIZE"},
		{"VALIDATION.STRICTNESS", "VALIDATION_STRICTNESS"},
		{"BATCH.WORKERS", "BATCH_WORKERS"},
		{"BATCH.QUEUE_SIZE", "BATCH_QUEUE_SIZE"},
		{"BATCH.PROCESS_TIMEOUT", "BATCH_PROCESS_TIMEOUT"},
	}
	if err := bindEnvVars(v, envBindings); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config unmarshal failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return NewAppError(KindInvalidInput, fmt.Sprintf("API_PORT out of range: %d", c.Server.Port), ErrInvalidInput)
	}
	if c.Server.MaxFileSize <= 0 {
		return NewAppError(KindInvalidInput, "MAX_FILE_SIZE must be positive", ErrInvalidInput)
	}
	switch c.Database.Driver {
	case "sqlite", "pgx":
	default:
		return NewAppError(KindInvalidInput, fmt.Sprintf("DB_DRIVER must be sqlite or pgx, got %q", c.Database.Driver), ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.BaseURL == "" {
			return NewAppError(KindInvalidInput, "LLM_BASE_URL is required for the openai provider", ErrInvalidInput)
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError(KindInvalidInput, "GEMINI_API_KEY is required for the gemini provider", ErrInvalidInput)
		}
	default:
		return NewAppError(KindInvalidInput, fmt.Sprintf("LLM_PROVIDER must be openai or gemini, got %q", c.LLM.Provider), ErrInvalidInput)
	}
	if c.LLM.MaxNewTokens <= 0 {
		return NewAppError(KindInvalidInput, "LLM_MAX_NEW_TOKENS must be positive", ErrInvalidInput)
	}
	for _, e := range c.OCR.DirectEngines {
		if e != constants.EngineNative && e != constants.EnginePdftotext {
			return NewAppError(KindInvalidInput, fmt.Sprintf("unknown PDF_DIRECT_ENGINES entry %q", e), ErrInvalidInput)
		}
	}
	if s := c.Validation.Strictness; s != "" && constants.ParseStrictness(s) != constants.Strictness(s) {
		return NewAppError(KindInvalidInput, fmt.Sprintf("VALIDATION_STRICTNESS must be structural, warn or strict, got %q", s), ErrInvalidInput)
	}
	return nil
}

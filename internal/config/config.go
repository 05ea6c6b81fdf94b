package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string `validate:"required"`
	DBPath        string `validate:"required"`
	VisionBackend string `validate:"oneof=gemini claude openai ollama"`

	GoogleAPIKey   string
	GeminiModel    string `validate:"required"`
	GeminiVertex   bool
	GoogleProject  string
	GoogleLocation string

	ClaudeAPIKey string
	ClaudeModel  string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	OllamaHost  string
	OllamaModel string

	ModelTimeout time.Duration `validate:"min=0"`

	PhotoBackend   string `validate:"oneof=none local minio"`
	PhotoPath      string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioRegion    string
	MinioUseSSL    bool

	CORSOrigins []string
	MaxUploadMB int64 `validate:"min=1"`
	LogLevel    string
	LogFile     string
}

var defaultCORSOrigins = "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"

// Load reads configuration from the environment. A .env file (or the file
// named by ENV_FILE) is loaded first when present; variables already set in
// the environment win over the file.
func Load() *Config {
	_ = godotenv.Load(getEnv("ENV_FILE", ".env"))

	return &Config{
		ListenAddr:    getEnv("LISTEN_ADDR", ":8000"),
		DBPath:        getEnv("DB_PATH", "food_analyzer.db"),
		VisionBackend: getEnv("VISION_BACKEND", "gemini"),

		GoogleAPIKey:   getEnv("GOOGLE_API_KEY", ""),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiVertex:   getEnvBool("GEMINI_USE_VERTEX", false),
		GoogleProject:  getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleLocation: getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),

		ClaudeAPIKey: getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:  getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		OllamaHost:  getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel: getEnv("OLLAMA_MODEL", "llava"),

		ModelTimeout: getEnvDuration("MODEL_TIMEOUT", 0),

		PhotoBackend:   getEnv("PHOTO_BACKEND", "none"),
		PhotoPath:      getEnv("PHOTO_LOCAL_PATH", "photos"),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "food-scans"),
		MinioRegion:    getEnv("MINIO_REGION", "us-east-1"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),

		CORSOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", defaultCORSOrigins)),
		MaxUploadMB: getEnvInt("MAX_UPLOAD_MB", 50),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFile:     getEnv("LOG_FILE", ""),
	}
}

// Validate checks field constraints and that the selected vision backend has
// the credentials it needs. A missing credential is a startup error.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.VisionBackend {
	case "gemini":
		if c.GeminiVertex {
			if c.GoogleProject == "" {
				return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required when GEMINI_USE_VERTEX=1")
			}
		} else if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required when VISION_BACKEND=gemini")
		}
	case "claude":
		if c.ClaudeAPIKey == "" {
			return fmt.Errorf("CLAUDE_API_KEY is required when VISION_BACKEND=claude")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when VISION_BACKEND=openai")
		}
	}

	if c.PhotoBackend == "minio" && (c.MinioAccessKey == "" || c.MinioSecretKey == "") {
		return fmt.Errorf("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when PHOTO_BACKEND=minio")
	}
	return nil
}

// MaxUploadBytes is the multipart size limit derived from MaxUploadMB.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultVal)))
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvInt(key string, defaultVal int64) int64 {
	v, err := strconv.ParseInt(getEnv(key, ""), 10, 64)
	if err != nil {
		return defaultVal
	}
	return v
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultVal
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

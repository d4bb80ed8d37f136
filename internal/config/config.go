package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	LLM       LLMConfig
	Gemini    GeminiConfig
	OpenAI    OpenAICompatConfig
	Qdrant    QdrantConfig
	Storage   StorageConfig
	Minio     MinioConfig
	Worker    WorkerConfig
	Interview InterviewConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

// DatabaseConfig configures the Postgres report store. With Driver "memory"
// reports are kept in process.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig configures the session store and rate limiter. An empty Addr
// keeps sessions in memory and disables rate limiting.
type RedisConfig struct {
	Addr       string
	Password   string
	Prefix     string
	SessionTTL time.Duration
}

type LLMConfig struct {
	Provider string // gemini or openai
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type OpenAICompatConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

type QdrantConfig struct {
	URL         string
	APIKey      string
	Collection  string
	RubricLimit int
}

type StorageConfig struct {
	Driver     string // none, local or minio
	UploadPath string
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type WorkerConfig struct {
	Concurrency int
	QueueSize   int
}

type InterviewConfig struct {
	QuestionCount          int
	GenerationTimeout      time.Duration
	ScoringTimeout         time.Duration
	RetryMaxAttempts       int
	RetainQuestionsOnRetry bool
	PromptsFile            string
}

type AuthConfig struct {
	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
}

type RateLimitConfig struct {
	SessionsPerWindow int
	Window            time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "3000"),
			Env:      getEnv("ENV", "development"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "interview_ace"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:       getEnv("REDIS_ADDR", ""),
			Password:   getEnv("REDIS_PASSWORD", ""),
			Prefix:     getEnv("REDIS_PREFIX", "interview"),
			SessionTTL: getEnvAsDuration("SESSION_TTL", "24h"),
		},
		LLM: LLMConfig{
			Provider: strings.ToLower(getEnv("LLM_PROVIDER", "gemini")),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		OpenAI: OpenAICompatConfig{
			BaseURL: getEnv("OPENAI_BASE_URL", "http://localhost:8000/v1"),
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("OPENAI_MODEL", ""),
		},
		Qdrant: QdrantConfig{
			URL:         getEnv("QDRANT_URL", ""),
			APIKey:      getEnv("QDRANT_API_KEY", ""),
			Collection:  getEnv("QDRANT_COLLECTION", "interview_rubrics"),
			RubricLimit: getEnvAsInt("QDRANT_RUBRIC_LIMIT", 3),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(getEnv("STORAGE_DRIVER", "none")),
			UploadPath: getEnv("UPLOAD_PATH", "./uploads"),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "resumes"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:   getEnvAsInt("WORKER_QUEUE_SIZE", 100),
		},
		Interview: InterviewConfig{
			QuestionCount:          getEnvAsInt("QUESTION_COUNT", 5),
			GenerationTimeout:      getEnvAsDuration("GENERATION_TIMEOUT", "60s"),
			ScoringTimeout:         getEnvAsDuration("SCORING_TIMEOUT", "60s"),
			RetryMaxAttempts:       getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetainQuestionsOnRetry: getEnvAsBool("RETAIN_QUESTIONS_ON_RETRY", true),
			PromptsFile:            getEnv("PROMPTS_FILE", ""),
		},
		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", ""),
			JWTIssuer:   getEnv("JWT_ISSUER", ""),
			JWTAudience: getEnv("JWT_AUDIENCE", ""),
		},
		RateLimit: RateLimitConfig{
			SessionsPerWindow: getEnvAsInt("RATE_LIMIT_SESSIONS", 10),
			Window:            getEnvAsDuration("RATE_LIMIT_WINDOW", "1h"),
		},
	}
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

// IsDevelopment reports whether the service runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

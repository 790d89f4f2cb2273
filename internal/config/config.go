package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderBedrock = "bedrock"
	ProviderGemini  = "gemini"

	ParserModeBalanced   = "balanced"
	ParserModeFirstMatch = "first-match"

	ExportStoreNone  = "none"
	ExportStoreLocal = "local"
	ExportStoreS3    = "s3"

	BatchStoreMemory = "memory"
	BatchStoreRedis  = "redis"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	AWS       AWSConfig
	Gemini    GeminiConfig
	Qdrant    QdrantConfig
	Screening ScreeningConfig
	Export    ExportConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// LLMConfig holds the model invocation settings shared by every provider.
type LLMConfig struct {
	Provider          string
	ModelID           string
	Region            string
	AnthropicVersion  string
	MaxTokens         int
	Temperature       float32
	Timeout           time.Duration
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
}

type AWSConfig struct {
	AccessKey string
	SecretKey string
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
}

type QdrantConfig struct {
	Enabled    bool
	URL        string
	APIKey     string
	Collection string
}

type ScreeningConfig struct {
	JobDescriptionsFile string
	ParserMode          string
	HistogramBins       int
	TopN                int
	MaxFileSize         int64
	MaxFiles            int
	BatchStore          string
	BatchStoreCapacity  int
	BatchTTL            time.Duration
	RedisURL            string
}

type ExportConfig struct {
	Store      string
	Path       string
	S3Bucket   string
	S3Endpoint string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("HISTORY_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_shortlister"),
		},
		LLM: LLMConfig{
			Provider:          getEnv("LLM_PROVIDER", ProviderBedrock),
			ModelID:           getEnv("BEDROCK_MODEL_ID", "anthropic.claude-3-sonnet-20240229-v1:0"),
			Region:            getEnv("AWS_REGION", "us-east-1"),
			AnthropicVersion:  getEnv("ANTHROPIC_VERSION", "bedrock-2023-05-31"),
			MaxTokens:         getEnvAsInt("LLM_MAX_TOKENS", 1024),
			Temperature:       getEnvAsFloat32("LLM_TEMPERATURE", 0.3),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", "60s"),
			RetryMaxAttempts:  getEnvAsInt("LLM_RETRY_MAX_ATTEMPTS", 1),
			RetryInitialDelay: getEnvAsDuration("LLM_RETRY_INITIAL_DELAY", "2s"),
		},
		AWS: AWSConfig{
			AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Gemini: GeminiConfig{
			APIKey:     getEnv("GEMINI_API_KEY", ""),
			Model:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel: getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
		},
		Qdrant: QdrantConfig{
			Enabled:    getEnvAsBool("QDRANT_ENABLED", false),
			URL:        getEnv("QDRANT_URL", "http://localhost:6333"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_candidates"),
		},
		Screening: ScreeningConfig{
			JobDescriptionsFile: getEnv("JOB_DESCRIPTIONS_FILE", ""),
			ParserMode:          getEnv("PARSER_MODE", ParserModeBalanced),
			HistogramBins:       getEnvAsInt("HISTOGRAM_BINS", 10),
			TopN:                getEnvAsInt("TOP_N", 5),
			MaxFileSize:         getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			MaxFiles:            getEnvAsInt("MAX_FILES", 20),
			BatchStore:          getEnv("BATCH_STORE", BatchStoreMemory),
			BatchStoreCapacity:  getEnvAsInt("BATCH_STORE_CAPACITY", 50),
			BatchTTL:            getEnvAsDuration("BATCH_TTL", "24h"),
			RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		},
		Export: ExportConfig{
			Store:      getEnv("EXPORT_STORE", ExportStoreNone),
			Path:       getEnv("EXPORT_PATH", "./exports"),
			S3Bucket:   getEnv("EXPORT_S3_BUCKET", ""),
			S3Endpoint: getEnv("EXPORT_S3_ENDPOINT", ""),
		},
	}
}

// Validate rejects unknown enum values and limits that would make the dashboard unusable.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderBedrock:
		if c.LLM.ModelID == "" || c.LLM.Region == "" {
			return fmt.Errorf("bedrock provider requires BEDROCK_MODEL_ID and AWS_REGION")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini provider requires GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLM.Provider)
	}

	switch c.Screening.ParserMode {
	case ParserModeBalanced, ParserModeFirstMatch:
	default:
		return fmt.Errorf("unknown PARSER_MODE %q", c.Screening.ParserMode)
	}

	switch c.Export.Store {
	case ExportStoreNone, ExportStoreLocal:
	case ExportStoreS3:
		if c.Export.S3Bucket == "" {
			return fmt.Errorf("EXPORT_STORE=s3 requires EXPORT_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unknown EXPORT_STORE %q", c.Export.Store)
	}

	switch c.Screening.BatchStore {
	case BatchStoreMemory:
		if c.Screening.BatchStoreCapacity <= 0 {
			return fmt.Errorf("BATCH_STORE_CAPACITY must be positive")
		}
	case BatchStoreRedis:
		if c.Screening.RedisURL == "" {
			return fmt.Errorf("BATCH_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown BATCH_STORE %q", c.Screening.BatchStore)
	}

	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 1")
	}
	if c.LLM.RetryMaxAttempts <= 0 {
		return fmt.Errorf("LLM_RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.Screening.HistogramBins <= 0 || c.Screening.TopN <= 0 {
		return fmt.Errorf("HISTOGRAM_BINS and TOP_N must be positive")
	}
	if c.Screening.MaxFileSize <= 0 || c.Screening.MaxFiles <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE and MAX_FILES must be positive")
	}
	if c.Qdrant.Enabled && c.Gemini.APIKey == "" {
		return fmt.Errorf("QDRANT_ENABLED requires GEMINI_API_KEY for embeddings")
	}

	return nil
}

// ModelName is the identifier recorded with each screening run.
func (c *Config) ModelName() string {
	if c.LLM.Provider == ProviderGemini {
		return c.Gemini.Model
	}
	return c.LLM.ModelID
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 32); err == nil {
		return float32(value)
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

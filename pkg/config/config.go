package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	GigaChat GigaChatConfig
	Triage   TriageConfig
	Data     DataConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Logger   LoggerConfig
}

type LoggerConfig struct {
	Level string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type GigaChatConfig struct {
	APIKey             string
	Scope              string
	EmbeddingModel     string
	GenerationTimeout  time.Duration
	InsecureSkipVerify bool
}

type TriageConfig struct {
	TopK          int
	CategoryBoost float64
}

type DataConfig struct {
	Dir                    string
	CategoriesFile         string
	KnowledgeBaseFile      string
	TroubleshootingFile    string
	InstallationGuidesFile string
	PoliciesFile           string
}

// DatabaseConfig describes the optional audit database. The service runs
// without one; the audit trail is enabled only when a host is configured.
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// AuthConfig enables bearer-token auth on the API when a secret is set.
type AuthConfig struct {
	Enabled    bool
	SecretKey  string
	Expiration time.Duration
}

func Load() (*Config, error) {
	// Try to load .env file from current directory or project root
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}
	// No .env file is fine, environment variables may be set directly
	// (useful for Docker/K8s)

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "30"))
	genTimeout, _ := strconv.Atoi(getEnv("GIGACHAT_GENERATION_TIMEOUT", "30"))
	topK, _ := strconv.Atoi(getEnv("TRIAGE_TOP_K", "3"))
	boost, err := strconv.ParseFloat(getEnv("TRIAGE_CATEGORY_BOOST", "0.7"), 64)
	if err != nil {
		boost = 0.7
	}
	jwtExp, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "24"))
	insecureSkipVerify := getEnv("GIGACHAT_INSECURE_SKIP_VERIFY", "true") == "true"

	dataDir := getEnv("DATA_DIR", "data")
	dbHost := getEnv("DB_HOST", "")
	jwtSecret := getEnv("JWT_SECRET_KEY", "")

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		GigaChat: GigaChatConfig{
			APIKey:             getEnv("GIGACHAT_API_KEY", ""),
			Scope:              getEnv("GIGACHAT_SCOPE", "GIGACHAT_API_PERS"),
			EmbeddingModel:     getEnv("GIGACHAT_EMBEDDING_MODEL", "Embeddings"),
			GenerationTimeout:  time.Duration(genTimeout) * time.Second,
			InsecureSkipVerify: insecureSkipVerify,
		},
		Triage: TriageConfig{
			TopK:          topK,
			CategoryBoost: boost,
		},
		Data: DataConfig{
			Dir:                    dataDir,
			CategoriesFile:         filepath.Join(dataDir, getEnv("CATEGORIES_FILE", "categories.json")),
			KnowledgeBaseFile:      filepath.Join(dataDir, getEnv("KNOWLEDGE_BASE_FILE", "knowledge_base.md")),
			TroubleshootingFile:    filepath.Join(dataDir, getEnv("TROUBLESHOOTING_FILE", "troubleshooting_database.json")),
			InstallationGuidesFile: filepath.Join(dataDir, getEnv("INSTALLATION_GUIDES_FILE", "installation_guides.json")),
			PoliciesFile:           filepath.Join(dataDir, getEnv("POLICIES_FILE", "company_it_policies.md")),
		},
		Database: DatabaseConfig{
			Enabled:  dbHost != "",
			Host:     dbHost,
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "helpdesk"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Auth: AuthConfig{
			Enabled:    jwtSecret != "",
			SecretKey:  jwtSecret,
			Expiration: time.Duration(jwtExp) * time.Hour,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}, nil
}

// Validate checks the startup-critical settings. A failure here is fatal:
// the process must not serve traffic with a partial configuration.
func (c *Config) Validate() error {
	if c.GigaChat.APIKey == "" {
		return fmt.Errorf("GIGACHAT_API_KEY is required")
	}
	if c.Triage.TopK <= 0 {
		return fmt.Errorf("TRIAGE_TOP_K must be positive, got %d", c.Triage.TopK)
	}
	if c.Triage.CategoryBoost <= 0 || c.Triage.CategoryBoost > 1 {
		return fmt.Errorf("TRIAGE_CATEGORY_BOOST must be in (0, 1], got %v", c.Triage.CategoryBoost)
	}
	for _, file := range []string{
		c.Data.CategoriesFile,
		c.Data.KnowledgeBaseFile,
		c.Data.TroubleshootingFile,
		c.Data.InstallationGuidesFile,
		c.Data.PoliciesFile,
	} {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("data file %s is not readable: %w", file, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

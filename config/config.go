package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// AppConfig holds application configuration loaded from environment variables and .env file.
type AppConfig struct {
	// Metadata database. The scheme selects the gorm dialector:
	// mysql://, postgres://, sqlserver://, sqlite://<path> or memory://.
	DatabaseURI string `env:"DATABASE_URI" envDefault:"sqlite://bidemoloader.db"`

	// Directory holding the bundled example files. s3://bucket/prefix reads from object storage.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// Default row limit stamped into slice parameters.
	RowLimit int `env:"ROW_LIMIT" envDefault:"50000"`

	// Search cluster. Empty means load everything into the relational database.
	ElasticsearchURLs []string `env:"ELASTICSEARCH_URLS" envSeparator:","`

	// Loaders to run, in order. Empty runs all of them.
	Examples     []string `env:"EXAMPLES" envSeparator:","`
	LoadTestData bool     `env:"LOAD_TEST_DATA" envDefault:"false"`

	// Logging config
	LogLevel      string `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFile       string `env:"LOG_FILE"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"10"` // MB
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"28"` // days
	LogCompress   bool   `env:"LOG_COMPRESS" envDefault:"true"`

	// Object storage for DATA_DIR=s3://...
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint  string `env:"S3_ENDPOINT"`
	S3PathStyle bool   `env:"S3_PATH_STYLE" envDefault:"false"`
	// Static credentials; empty uses the default AWS credentials chain.
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	// Prometheus Pushgateway for run metrics. Empty disables pushing.
	PushgatewayURL string `env:"PUSHGATEWAY_URL"`
}

// Cfg is the global application configuration instance.
var Cfg AppConfig

// LoadConfig loads application configuration from .env file and environment variables.
func LoadConfig() error {
	if err := godotenv.Load(); err != nil {
		// Use standard log here since logger is not initialized yet
		log.Printf("[WARN] .env file not found or cannot be loaded: %v", err)
	} else {
		log.Printf("[INFO] .env file loaded successfully")
	}

	cfg, err := Parse()
	if err != nil {
		return err
	}
	Cfg = cfg

	log.Printf("[INFO] Config loaded - DB: %s, DataDir: %s, RowLimit: %d, LogLevel: %s",
		RedactURI(Cfg.DatabaseURI), Cfg.DataDir, Cfg.RowLimit, Cfg.LogLevel)
	if len(Cfg.ElasticsearchURLs) > 0 {
		log.Printf("[INFO] Search cluster config - URLs: %v", Cfg.ElasticsearchURLs)
	}
	return nil
}

// Parse reads AppConfig from the process environment without touching Cfg.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	cfg.ElasticsearchURLs = trimAll(cfg.ElasticsearchURLs)
	cfg.Examples = trimAll(cfg.Examples)
	if cfg.RowLimit <= 0 {
		return AppConfig{}, fmt.Errorf("ROW_LIMIT must be positive, got %d", cfg.RowLimit)
	}
	return cfg, nil
}

func trimAll(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// RedactURI hides the password part of a connection URI for logging.
func RedactURI(uri string) string {
	scheme, rest, ok := strings.Cut(uri, "://")
	if !ok {
		return uri
	}
	userinfo, host, ok := strings.Cut(rest, "@")
	if !ok {
		return uri
	}
	user, _, hasPass := strings.Cut(userinfo, ":")
	if !hasPass {
		return uri
	}
	return scheme + "://" + user + ":***@" + host
}

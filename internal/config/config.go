package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/your-org/vms/internal/models"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Capture  CaptureConfig  `yaml:"capture"`
	Matching MatchingConfig `yaml:"matching"`
	Visits   VisitPolicy    `yaml:"visits"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type CaptureConfig struct {
	ModelPath    string `yaml:"model_path"`
	EmbeddingDim int    `yaml:"embedding_dim"`
}

// MatchingConfig carries the identity-verification decision rule.
type MatchingConfig struct {
	// Threshold is the minimum similarity score for a match (0..1).
	Threshold float64 `yaml:"threshold"`
	// Margin is the required gap between the best score and the best score
	// of any other identity; below it the probe is ambiguous (0..1).
	Margin float64 `yaml:"margin"`
	// MinimumSamples reference embeddings required before a profile is
	// usable for matching.
	MinimumSamples int `yaml:"minimum_samples"`
}

// VisitPolicy carries the facility's visit business rules.
type VisitPolicy struct {
	// ConjugalEligible relationships that permit conjugal-type visits.
	ConjugalEligible []models.Relationship `yaml:"conjugal_eligible"`
	// CategoryLimits caps approved links per detainee per category.
	// -1 means unlimited.
	CategoryLimits map[models.LinkCategory]int `yaml:"category_limits"`
	// Timezone is the IANA name defining the facility-local day boundary.
	Timezone string `yaml:"timezone"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

// Default returns a config with every default applied, used by tests and
// shells that run without a config file.
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Capture.EmbeddingDim == 0 {
		cfg.Capture.EmbeddingDim = 512
	}
	if cfg.Matching.Threshold == 0 {
		cfg.Matching.Threshold = 0.72
	}
	if cfg.Matching.Margin == 0 {
		cfg.Matching.Margin = 0.12
	}
	if cfg.Matching.MinimumSamples == 0 {
		cfg.Matching.MinimumSamples = 5
	}
	if len(cfg.Visits.ConjugalEligible) == 0 {
		cfg.Visits.ConjugalEligible = []models.Relationship{models.RelationshipSpouse}
	}
	if cfg.Visits.CategoryLimits == nil {
		cfg.Visits.CategoryLimits = map[models.LinkCategory]int{
			models.CategoryImmediateFamily: -1,
			models.CategoryLegalGuardian:   2,
			models.CategoryCloseFriend:     3,
		}
	}
	if cfg.Visits.Timezone == "" {
		cfg.Visits.Timezone = "Asia/Manila"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VMS_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VMS_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("VMS_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("VMS_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("VMS_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("VMS_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("VMS_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("VMS_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("VMS_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("VMS_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("VMS_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("VMS_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("VMS_CAPTURE_MODEL"); v != "" {
		cfg.Capture.ModelPath = v
	}
	if v := os.Getenv("VMS_MATCH_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Matching.Threshold = f
		}
	}
	if v := os.Getenv("VMS_MATCH_MARGIN"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Matching.Margin = f
		}
	}
	if v := os.Getenv("VMS_TIMEZONE"); v != "" {
		cfg.Visits.Timezone = v
	}
}

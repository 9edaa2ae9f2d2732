package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Report formats understood by the run report writer.
const (
	ReportFormatCSV = "csv"
	ReportFormatPDF = "pdf"
)

type Config struct {
	Env string `validate:"required,oneof=development production"`

	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Run      RunConfig
	Metrics  MetricsConfig
	Report   ReportConfig
}

type DatabaseConfig struct {
	Host           string `validate:"required"`
	Port           int    `validate:"gt=0"`
	User           string `validate:"required"`
	Password       string
	Name           string `validate:"required"`
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type LogConfig struct {
	Level  string
	Format string
}

// RunConfig scopes a single batch invocation.
type RunConfig struct {
	Timezone    string
	SubjectIDs  []int64
	LockEnabled bool
	LockTTL     time.Duration
}

// MetricsConfig points the run at a Prometheus Pushgateway. Empty URL disables pushing.
type MetricsConfig struct {
	PushgatewayURL string
	JobName        string `validate:"required"`
}

// ReportConfig controls the run report written after each batch.
type ReportConfig struct {
	Enabled   bool
	Dir       string
	Format    string `validate:"oneof=csv pdf"`
	Retention time.Duration
}

// Location resolves the configured timezone, defaulting to UTC.
func (c RunConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")

	cfg.Database = DatabaseConfig{
		Host:           v.GetString("DB_HOST"),
		Port:           v.GetInt("DB_PORT"),
		User:           v.GetString("DB_USER"),
		Password:       v.GetString("DB_PASSWORD"),
		Name:           v.GetString("DB_NAME"),
		SSLMode:        v.GetString("DB_SSL_MODE"),
		MaxOpenConns:   v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:   v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnectTimeout: parseDuration(v.GetString("DB_CONNECT_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	subjectIDs, err := parseIDs(v.GetString("RUN_SUBJECT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("parse RUN_SUBJECT_IDS: %w", err)
	}
	cfg.Run = RunConfig{
		Timezone:    v.GetString("RUN_TIMEZONE"),
		SubjectIDs:  subjectIDs,
		LockEnabled: v.GetBool("RUN_LOCK_ENABLED"),
		LockTTL:     parseDuration(v.GetString("RUN_LOCK_TTL"), 2*time.Hour),
	}

	cfg.Metrics = MetricsConfig{
		PushgatewayURL: v.GetString("METRICS_PUSHGATEWAY_URL"),
		JobName:        v.GetString("METRICS_JOB_NAME"),
	}

	cfg.Report = ReportConfig{
		Enabled:   v.GetBool("REPORT_ENABLED"),
		Dir:       v.GetString("REPORT_DIR"),
		Format:    strings.ToLower(v.GetString("REPORT_FORMAT")),
		Retention: parseDuration(v.GetString("REPORT_RETENTION"), 720*time.Hour),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if _, err := cfg.Run.Location(); err != nil {
		return nil, fmt.Errorf("invalid RUN_TIMEZONE: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "academic_repository")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 1)
	v.SetDefault("DB_MAX_IDLE_CONNS", 1)
	v.SetDefault("DB_CONNECT_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("RUN_TIMEZONE", "UTC")
	v.SetDefault("RUN_SUBJECT_IDS", "")
	v.SetDefault("RUN_LOCK_ENABLED", false)
	v.SetDefault("RUN_LOCK_TTL", "2h")

	v.SetDefault("METRICS_PUSHGATEWAY_URL", "")
	v.SetDefault("METRICS_JOB_NAME", "idp_batch")

	v.SetDefault("REPORT_ENABLED", false)
	v.SetDefault("REPORT_DIR", "./reports")
	v.SetDefault("REPORT_FORMAT", ReportFormatCSV)
	v.SetDefault("REPORT_RETENTION", "720h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func parseIDs(raw string) ([]int64, error) {
	parts := splitAndTrim(raw)
	if len(parts) == 0 {
		return nil, nil
	}
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("subject id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Package config provides configuration management for the recipe pipeline worker.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"recipepipe/pkg/utils"
)

// Configuration validation errors.
var (
	ErrInvalidSourceKind        = errors.New("source.kind must be one of: file, http, s3")
	ErrMissingSourceLocation    = errors.New("source location is required (dir for file, url for http, bucket for s3)")
	ErrInvalidSourceURL         = errors.New("source.url must be an absolute http(s) URL")
	ErrInvalidMaxAttempts       = errors.New("source.retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("source.retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("source.retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("source.retry.timeout_sec must be at least 1")
	ErrMissingOutputPath        = errors.New("output.dir is required")
	ErrInvalidStoreDriver       = errors.New("store.driver must be one of: sqlite, postgres")
	ErrMissingStoreDSN          = errors.New("store.dsn is required when the store is enabled")
	ErrInvalidBatchSize         = errors.New("store.batch_size must be at least 1")
	ErrInvalidValidationMode    = errors.New("validation.mode must be one of: raw, normalized")
	ErrInvalidMaxExamples       = errors.New("validation.max_examples must be non-negative")
	ErrInvalidWeights           = errors.New("aggregation.weights must be non-negative")
	ErrInvalidTopN              = errors.New("aggregation top-N sizes must be at least 1")
	ErrInvalidBuckets           = errors.New("aggregation.short_bucket_max must be below aggregation.medium_bucket_max")
	ErrInvalidCorrelationMin    = errors.New("aggregation.correlation_min_recipes must be at least 2")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Source kinds.
const (
	SourceFile = "file"
	SourceHTTP = "http"
	SourceS3   = "s3"
)

// Validation modes.
const (
	ModeRaw        = "raw"
	ModeNormalized = "normalized"
)

// Config represents the complete worker configuration.
type Config struct {
	Source      SourceConfig      `yaml:"source"`
	Output      OutputConfig      `yaml:"output"`
	Store       StoreConfig       `yaml:"store"`
	Validation  ValidationConfig  `yaml:"validation"`
	Aggregation AggregationConfig `yaml:"aggregation"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// SourceConfig locates the document-store export.
type SourceConfig struct {
	Headers      map[string]string `yaml:"headers"`
	Kind         string            `yaml:"kind" validate:"oneof=file http s3"`
	Dir          string            `yaml:"dir"`
	URL          string            `yaml:"url"`
	Bucket       string            `yaml:"bucket"`
	Prefix       string            `yaml:"prefix"`
	Region       string            `yaml:"region"`
	Endpoint     string            `yaml:"endpoint"`
	AccessKey    string            `yaml:"access_key"`
	SecretKey    string            `yaml:"secret_key"`
	Retry        RetryPolicy       `yaml:"retry"`
	BufferSizeKb int               `yaml:"buffer_size_kb"`
}

// Location returns the dir, URL or bucket depending on the source kind.
func (s *SourceConfig) Location() string {
	switch s.Kind {
	case SourceHTTP:
		return s.URL
	case SourceS3:
		return s.Bucket
	default:
		return s.Dir
	}
}

// RetryPolicy defines retry behavior.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts" validate:"min=1"`
	InitialDelayMs    int     `yaml:"initial_delay_ms" validate:"min=0"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier" validate:"gte=1"`
	TimeoutSec        int     `yaml:"timeout_sec" validate:"min=1"`
}

// OutputConfig defines where reports are emitted.
type OutputConfig struct {
	Dir           string `yaml:"dir" validate:"required"`
	PrettyPrint   bool   `yaml:"pretty_print"`
	WriteCSV      bool   `yaml:"write_csv"`
	WriteMarkdown bool   `yaml:"write_markdown"`
}

// StoreConfig configures the relational store for normalized relations.
type StoreConfig struct {
	Driver    string `yaml:"driver" validate:"oneof=sqlite postgres"`
	DSN       string `yaml:"dsn"`
	BatchSize int    `yaml:"batch_size" validate:"min=1"`
	Enabled   bool   `yaml:"enabled"`
}

// ValidationConfig controls the validation pass.
type ValidationConfig struct {
	Mode        string `yaml:"mode" validate:"oneof=raw normalized"`
	MaxExamples int    `yaml:"max_examples" validate:"min=0"`
}

// WeightsConfig holds the engagement-score weights.
type WeightsConfig struct {
	View    float64 `yaml:"view" validate:"gte=0"`
	Like    float64 `yaml:"like" validate:"gte=0"`
	Attempt float64 `yaml:"attempt" validate:"gte=0"`
}

// AggregationConfig controls the insight computations.
type AggregationConfig struct {
	Weights                  WeightsConfig `yaml:"weights"`
	TopIngredients           int           `yaml:"top_ingredients" validate:"min=1"`
	TopViewed                int           `yaml:"top_viewed" validate:"min=1"`
	TopEngagementIngredients int           `yaml:"top_engagement_ingredients" validate:"min=1"`
	TopRated                 int           `yaml:"top_rated" validate:"min=1"`
	TopConversion            int           `yaml:"top_conversion" validate:"min=1"`
	ShortBucketMax           int           `yaml:"short_bucket_max"`
	MediumBucketMax          int           `yaml:"medium_bucket_max"`
	CorrelationMinRecipes    int           `yaml:"correlation_min_recipes" validate:"min=2"`
}

// MetricsConfig controls the prometheus textfile output.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
	Enabled      bool   `yaml:"enabled"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Mode  string `yaml:"mode"`
}

// Default returns a complete configuration reading ./exported_json and writing ./output.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Kind: SourceFile,
			Dir:  "exported_json",
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        30,
			},
			BufferSizeKb: 64 * 1024,
		},
		Output: OutputConfig{
			Dir:           "output",
			PrettyPrint:   true,
			WriteCSV:      true,
			WriteMarkdown: true,
		},
		Store: StoreConfig{
			Driver:    "sqlite",
			DSN:       "output/recipes.db",
			BatchSize: 500,
		},
		Validation: ValidationConfig{
			Mode: ModeRaw,
		},
		Aggregation: AggregationConfig{
			Weights:                  WeightsConfig{View: 1, Like: 2, Attempt: 1.5},
			TopIngredients:           15,
			TopViewed:                10,
			TopEngagementIngredients: 15,
			TopRated:                 10,
			TopConversion:            10,
			ShortBucketMax:           15,
			MediumBucketMax:          30,
			CorrelationMinRecipes:    3,
		},
		Logging: LoggingConfig{
			Level: "info",
			Mode:  "development",
		},
	}
}

// LoadConfig loads configuration from a YAML file layered over Default, then applies
// environment overrides. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with RECIPEPIPE_* environment variables.
func (c *Config) ApplyEnv() {
	overrides := []struct {
		dst *string
		key string
	}{
		{&c.Source.Dir, "RECIPEPIPE_SOURCE_DIR"},
		{&c.Source.URL, "RECIPEPIPE_SOURCE_URL"},
		{&c.Source.Bucket, "RECIPEPIPE_S3_BUCKET"},
		{&c.Source.Prefix, "RECIPEPIPE_S3_PREFIX"},
		{&c.Source.Region, "RECIPEPIPE_S3_REGION"},
		{&c.Source.Endpoint, "RECIPEPIPE_S3_ENDPOINT"},
		{&c.Source.AccessKey, "RECIPEPIPE_S3_ACCESS_KEY"},
		{&c.Source.SecretKey, "RECIPEPIPE_S3_SECRET_KEY"},
		{&c.Store.Driver, "RECIPEPIPE_STORE_DRIVER"},
		{&c.Store.DSN, "RECIPEPIPE_STORE_DSN"},
		{&c.Output.Dir, "RECIPEPIPE_OUTPUT_DIR"},
		{&c.Logging.Level, "RECIPEPIPE_LOG_LEVEL"},
	}

	for _, o := range overrides {
		*o.dst = getEnv(o.key, *o.dst)
	}

	if kind := getEnv("RECIPEPIPE_SOURCE_KIND", ""); kind != "" {
		c.Source.Kind = strings.ToLower(kind)
	}
}

// getEnv reads an environment variable with a fallback.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return fallback
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// fieldErrors maps struct namespaces (or their prefixes) to sentinel errors.
var fieldErrors = []struct {
	err    error
	prefix string
}{
	{ErrInvalidSourceKind, "Config.Source.Kind"},
	{ErrInvalidMaxAttempts, "Config.Source.Retry.MaxAttempts"},
	{ErrInvalidInitialDelay, "Config.Source.Retry.InitialDelayMs"},
	{ErrInvalidBackoffMultiplier, "Config.Source.Retry.BackoffMultiplier"},
	{ErrInvalidTimeout, "Config.Source.Retry.TimeoutSec"},
	{ErrMissingOutputPath, "Config.Output.Dir"},
	{ErrInvalidStoreDriver, "Config.Store.Driver"},
	{ErrInvalidBatchSize, "Config.Store.BatchSize"},
	{ErrInvalidValidationMode, "Config.Validation.Mode"},
	{ErrInvalidMaxExamples, "Config.Validation.MaxExamples"},
	{ErrInvalidWeights, "Config.Aggregation.Weights."},
	{ErrInvalidTopN, "Config.Aggregation.Top"},
	{ErrInvalidCorrelationMin, "Config.Aggregation.CorrelationMinRecipes"},
	{ErrInvalidLogLevel, "Config.Logging.Level"},
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := structValidator.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
			return err
		}

		fe := fieldErrs[0]
		for _, m := range fieldErrors {
			if strings.HasPrefix(fe.StructNamespace(), m.prefix) {
				return fmt.Errorf("%w: got %v", m.err, fe.Value())
			}
		}

		return fmt.Errorf("invalid %s: failed %q", fe.StructNamespace(), fe.Tag())
	}

	if c.Source.Location() == "" {
		return fmt.Errorf("%w: source.kind=%s", ErrMissingSourceLocation, c.Source.Kind)
	}

	if c.Source.Kind == SourceHTTP && !utils.IsValidURL(c.Source.URL) {
		return fmt.Errorf("%w: got %q", ErrInvalidSourceURL, c.Source.URL)
	}

	if c.Store.Enabled && c.Store.DSN == "" {
		return ErrMissingStoreDSN
	}

	if c.Aggregation.ShortBucketMax >= c.Aggregation.MediumBucketMax {
		return ErrInvalidBuckets
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// GetOutputPath joins a report file name onto the output directory.
func (c *Config) GetOutputPath(name string) string {
	return filepath.Join(c.Output.Dir, name)
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Source: %s:%s, Output: %s, Store: %t, Mode: %s}",
		c.Source.Kind,
		c.Source.Location(),
		c.Output.Dir,
		c.Store.Enabled,
		c.Validation.Mode,
	)
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/config.yml"

type (
	// Config -.
	Config struct {
		App       `yaml:"app"`
		Server    `yaml:"server"`
		Log       `yaml:"logger"`
		Converter `yaml:"converter"`
		Storage   `yaml:"storage"`
		Static    `yaml:"static"`
		RMQ       `yaml:"rabbitmq"`
		OTEL      `yaml:"otel"`
	}

	// App -.
	App struct {
		Name    string `env-required:"true" yaml:"name"    env:"APP_NAME"    env-default:"audio-conversion"`
		Version string `env-required:"true" yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
	}

	// Server -.
	Server struct {
		Port            string        `env-required:"true" yaml:"port"             env:"HTTP_PORT"        env-default:"8080"`
		MaxUploadBytes  int64         `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES" env-default:"104857600"`
		ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"60s"`
		WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"180s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"30s"`
		// DeliveryMode is used when a request does not pick one: "link" or "file".
		DeliveryMode string `yaml:"delivery_mode" env:"DELIVERY_MODE" env-default:"link"`
	}

	// Log -.
	Log struct {
		Level string `env-required:"true" yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	}

	// Converter -.
	Converter struct {
		// Profile is "speech" (16 kHz mono 64k) or "standard" (source rate, default bitrate).
		Profile string        `yaml:"profile"  env:"CONVERT_PROFILE" env-default:"speech"`
		TempDir string        `yaml:"temp_dir" env:"TEMP_DIR"`
		Timeout time.Duration `yaml:"timeout"  env:"CONVERT_TIMEOUT" env-default:"0s"`
	}

	// Storage -.
	Storage struct {
		Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"drive"`
		// FolderID is checked when an upload is attempted, not at startup.
		FolderID           string        `yaml:"folder_id"            env:"FOLDER_ID"`
		UploadTimeout      time.Duration `yaml:"upload_timeout"       env:"UPLOAD_TIMEOUT"   env-default:"0s"`
		CredentialsMode    string        `yaml:"credentials_mode"     env:"CREDENTIALS_MODE" env-default:"auto"`
		ServiceAccountFile string        `yaml:"service_account_file" env:"GOOGLE_SERVICE_ACCOUNT_FILE" env-default:"service_account.json"`
		GCS                GCS           `yaml:"gcs"`
		S3                 S3            `yaml:"s3"`
	}

	// GCS -.
	GCS struct {
		Bucket string `yaml:"bucket" env:"GCS_BUCKET"`
	}

	// S3 -.
	S3 struct {
		Endpoint        string `yaml:"endpoint"          env:"S3_ENDPOINT"`
		Region          string `yaml:"region"            env:"S3_REGION" env-default:"us-east-1"`
		Bucket          string `yaml:"bucket"            env:"S3_BUCKET"`
		AccessKeyID     string `yaml:"access_key_id"     env:"S3_ACCESS_KEY_ID"`
		SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
		PublicBaseURL   string `yaml:"public_base_url"   env:"S3_PUBLIC_BASE_URL"`
	}

	// Static -.
	Static struct {
		Dir   string `yaml:"dir"   env:"STATIC_DIR"`
		Index string `yaml:"index" env:"STATIC_INDEX" env-default:"index.html"`
	}

	// RMQ -.
	RMQ struct {
		URL      string `env-required:"false" yaml:"url"      env:"RMQ_URL"`
		Exchange string `yaml:"exchange" env:"RMQ_EXCHANGE" env-default:"audio_conversion"`
	}

	OTEL struct {
		// Exporter is "none", "jaeger" or "otlp".
		Exporter       string `yaml:"exporter"        env:"OTEL_EXPORTER" env-default:"none"`
		JaegerEndpoint string `yaml:"jaeger_endpoint" env:"JAEGER_ENDPOINT"`
		OTLPEndpoint   string `yaml:"otlp_endpoint"   env:"OTLP_ENDPOINT"`
	}
)

// NewConfig returns app config.
// The yaml file at CONFIG_PATH is optional; environment variables always win.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return Load(path)
}

// Load reads the config from path if it exists, otherwise from the environment only.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if _, statErr := os.Stat(path); statErr == nil {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}

// Validate checks enumerated settings. Missing FOLDER_ID is deliberately not an error here.
func (c *Config) Validate() error {
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be > 0")
	}
	if !oneOf(c.Server.DeliveryMode, "link", "file") {
		return fmt.Errorf("invalid DELIVERY_MODE %q (must be 'link' or 'file')", c.Server.DeliveryMode)
	}
	if !oneOf(c.Converter.Profile, "speech", "standard") {
		return fmt.Errorf("invalid CONVERT_PROFILE %q (must be 'speech' or 'standard')", c.Converter.Profile)
	}
	if c.Converter.Timeout < 0 || c.Storage.UploadTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if !oneOf(c.Storage.CredentialsMode, "auto", "key_file", "ambient") {
		return fmt.Errorf("invalid CREDENTIALS_MODE %q", c.Storage.CredentialsMode)
	}

	switch c.Storage.Backend {
	case "drive":
	case "gcs":
		if c.Storage.GCS.Bucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for the gcs backend")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for the s3 backend")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("S3_REGION is required for the s3 backend")
		}
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND %q (must be 'drive', 'gcs' or 's3')", c.Storage.Backend)
	}

	switch c.OTEL.Exporter {
	case "none":
	case "jaeger":
		if c.OTEL.JaegerEndpoint == "" {
			return fmt.Errorf("JAEGER_ENDPOINT is required for the jaeger exporter")
		}
	case "otlp":
		if c.OTEL.OTLPEndpoint == "" {
			return fmt.Errorf("OTLP_ENDPOINT is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("invalid OTEL_EXPORTER %q", c.OTEL.Exporter)
	}

	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"PayReminder"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"payreminder"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		// Batch endpoints (sync, process) are limited per client address.
		BatchRatePerMinute int `envconfig:"BATCH_RATE_PER_MINUTE" default:"6"`
	}

	Auth struct {
		JWTSecret      string   `envconfig:"AUTH_JWT_SECRET"`
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Reconcile struct {
		SyncInstruments bool `envconfig:"RECONCILE_SYNC_INSTRUMENTS" default:"true"`
	}

	Scheduler struct {
		Enabled           bool          `envconfig:"SCHEDULER_ENABLED" default:"false"`
		Interval          time.Duration `envconfig:"SCHEDULER_INTERVAL" default:"1h"`
		ClaimLease        time.Duration `envconfig:"SCHEDULER_CLAIM_LEASE" default:"2m"`
		SyncBeforeProcess bool          `envconfig:"SCHEDULER_SYNC_BEFORE_PROCESS" default:"true"`
	}

	Notify struct {
		Locale      string `envconfig:"NOTIFY_LOCALE" default:"tr"`
		Sink        string `envconfig:"NOTIFY_SINK" default:"postgres"`
		SNSTopicARN string `envconfig:"NOTIFY_SNS_TOPIC_ARN"`
	}

	// Console is the tenant the operator TUI acts on.
	Console struct {
		TenantID string `envconfig:"CONSOLE_TENANT_ID"`
	}

	AWS struct {
		Region             string `envconfig:"AWS_REGION" default:"eu-central-1"`
		EndpointURL        string `envconfig:"AWS_ENDPOINT_URL"`
		AccessKeyID        string `envconfig:"AWS_ACCESS_KEY_ID"`
		SecretAccessKey    string `envconfig:"AWS_SECRET_ACCESS_KEY"`
		NotificationsTable string `envconfig:"DYNAMO_TABLE_NOTIFICATIONS" default:"notifications"`
	}
}

const (
	SinkPostgres = "postgres"
	SinkDynamo   = "dynamo"
)

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.Notify.Sink {
	case SinkPostgres, SinkDynamo:
	default:
		return nil, fmt.Errorf("unknown notification sink %q", cfg.Notify.Sink)
	}

	if cfg.Scheduler.Interval <= 0 {
		return nil, fmt.Errorf("scheduler interval must be positive, got %s", cfg.Scheduler.Interval)
	}

	return &cfg, nil
}

package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/yovko123/uslugiBG-backend/internal/domain"
)

// Config корневая конфигурация сервиса
type Config struct {
	Server       ServerConfig       `toml:"server"`
	Database     DatabaseConfig     `toml:"database"`
	Logs         LogsConfig         `toml:"logs"`
	Metrics      MetricsConfig      `toml:"metrics"`
	Notification NotificationConfig `toml:"notification_service"`
	Lifecycle    LifecycleConfig    `toml:"lifecycle"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int    `toml:"http_port"`
	ReadTimeout     int    `toml:"read_timeout"`
	WriteTimeout    int    `toml:"write_timeout"`
	IdleTimeout     int    `toml:"idle_timeout"`
	ShutdownTimeout int    `toml:"shutdown_timeout"`
	AdminToken      string `toml:"admin_token"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN собирает строку подключения PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки Prometheus метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// NotificationConfig настройки клиента сервиса уведомлений
type NotificationConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// LifecycleConfig тюнинг движка жизненного цикла бронирований.
// Пороговые значения фрод-сигналов заданы как настройки, а не константы.
type LifecycleConfig struct {
	PenaltyWindowHours       int `toml:"penalty_window_hours"`
	AutoCompleteGraceHours   int `toml:"auto_complete_grace_hours"`
	ReviewWindowDays         int `toml:"review_window_days"`
	RapidChangeWindowMinutes int `toml:"rapid_change_window_minutes"`
	RapidChangeCount         int `toml:"rapid_change_count"`
	NoShowClaimThreshold     int `toml:"no_show_claim_threshold"`
	NoShowClaimWindowDays    int `toml:"no_show_claim_window_days"`
	CancellationWindowDays   int `toml:"cancellation_window_days"`
	CancellationLimit        int `toml:"cancellation_limit"`
	ReviewAnomalyWindowDays  int `toml:"review_anomaly_window_days"`
	SweepHourUTC             int `toml:"sweep_hour_utc"`
}

// Load читает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Lifecycle.PenaltyWindowHours == 0 {
		c.Lifecycle.PenaltyWindowHours = domain.DefaultPenaltyWindowHours
	}
	if c.Lifecycle.AutoCompleteGraceHours == 0 {
		c.Lifecycle.AutoCompleteGraceHours = domain.DefaultAutoCompleteGraceHours
	}
	if c.Lifecycle.ReviewWindowDays == 0 {
		c.Lifecycle.ReviewWindowDays = domain.DefaultReviewWindowDays
	}
	if c.Lifecycle.RapidChangeWindowMinutes == 0 {
		c.Lifecycle.RapidChangeWindowMinutes = domain.DefaultRapidChangeWindowMinutes
	}
	if c.Lifecycle.RapidChangeCount == 0 {
		c.Lifecycle.RapidChangeCount = domain.DefaultRapidChangeCount
	}
	if c.Lifecycle.NoShowClaimThreshold == 0 {
		c.Lifecycle.NoShowClaimThreshold = domain.DefaultNoShowClaimThreshold
	}
	if c.Lifecycle.NoShowClaimWindowDays == 0 {
		c.Lifecycle.NoShowClaimWindowDays = domain.DefaultNoShowClaimWindowDays
	}
	if c.Lifecycle.CancellationWindowDays == 0 {
		c.Lifecycle.CancellationWindowDays = domain.DefaultCancellationWindowDays
	}
	if c.Lifecycle.CancellationLimit == 0 {
		c.Lifecycle.CancellationLimit = domain.DefaultCancellationLimit
	}
	if c.Lifecycle.ReviewAnomalyWindowDays == 0 {
		c.Lifecycle.ReviewAnomalyWindowDays = domain.DefaultReviewAnomalyWindowDays
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 {
		return fmt.Errorf("config: server.http_port must be positive")
	}
	if c.Database.Host == "" || c.Database.DBName == "" {
		return fmt.Errorf("config: database.host and database.dbname are required")
	}
	if c.Server.AdminToken == "" {
		return fmt.Errorf("config: server.admin_token is required for dispute resolution")
	}
	if c.Lifecycle.SweepHourUTC < 0 || c.Lifecycle.SweepHourUTC > 23 {
		return fmt.Errorf("config: lifecycle.sweep_hour_utc must be within 0..23")
	}
	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/m04kA/MTB-ReservationService/internal/domain"
)

// Config конфигурация сервиса, загружается из config.toml
type Config struct {
	Server      ServerConfig      `toml:"server"`
	Database    DatabaseConfig    `toml:"database"`
	Logs        LogsConfig        `toml:"logs"`
	Metrics     MetricsConfig     `toml:"metrics"`
	Reservation ReservationConfig `toml:"reservation"`
	RateLimit   RateLimitConfig   `toml:"ratelimit"`
	Notifier    NotifierConfig    `toml:"notifier"`
	Admin       AdminConfig       `toml:"admin"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
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
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`  // пустая строка = stdout
	Level string `toml:"level"` // debug | info | warn | error
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// ReservationConfig параметры жизненного цикла холдов
type ReservationConfig struct {
	HoldTTLMinutes       int `toml:"hold_ttl_minutes"`       // время жизни холда
	SweepIntervalSeconds int `toml:"sweep_interval_seconds"` // период запуска sweeper'а
	SweepBatchSize       int `toml:"sweep_batch_size"`       // сколько холдов обрабатывать за тик
	SweepGraceMinutes    int `toml:"sweep_grace_minutes"`    // отсрочка для зависших converting-холдов
	MaxTicketsPerHold    int `toml:"max_tickets_per_hold"`   // максимум билетов в одном холде
}

// RateLimitConfig настройки ограничения частоты создания холдов
type RateLimitConfig struct {
	Enabled       bool   `toml:"enabled"`
	Capacity      int    `toml:"capacity"`       // размер token bucket
	RefillSeconds int    `toml:"refill_seconds"` // период пополнения на один токен
	RedisAddr     string `toml:"redis_addr"`     // пустая строка = in-memory store
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// NotifierConfig настройки публикации событий в RabbitMQ
type NotifierConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	Queue   string `toml:"queue"`
}

// AdminConfig настройки административных операций
type AdminConfig struct {
	Token string `toml:"token"` // X-Admin-Token для генерации слотов
}

// Load читает и валидирует конфигурацию из toml-файла
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

// applyDefaults заполняет незаданные поля разумными значениями
func (c *Config) applyDefaults() {
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10
	}

	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "mtb-reservation-service"
	}

	if c.Reservation.HoldTTLMinutes == 0 {
		c.Reservation.HoldTTLMinutes = int(domain.DefaultHoldTTL / time.Minute)
	}
	if c.Reservation.SweepIntervalSeconds == 0 {
		c.Reservation.SweepIntervalSeconds = int(domain.DefaultSweepInterval / time.Second)
	}
	if c.Reservation.SweepBatchSize == 0 {
		c.Reservation.SweepBatchSize = domain.DefaultSweepBatchSize
	}
	if c.Reservation.SweepGraceMinutes == 0 {
		c.Reservation.SweepGraceMinutes = int(domain.DefaultSweepGrace / time.Minute)
	}
	if c.Reservation.MaxTicketsPerHold == 0 {
		c.Reservation.MaxTicketsPerHold = domain.MaxHoldQuantity
	}

	if c.RateLimit.Capacity == 0 {
		c.RateLimit.Capacity = 30
	}
	if c.RateLimit.RefillSeconds == 0 {
		c.RateLimit.RefillSeconds = 2
	}

	if c.Notifier.Queue == "" {
		c.Notifier.Queue = "booking.confirmed"
	}
}

// validate проверяет обязательные и граничные значения
func (c *Config) validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("config: database.port is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("config: database.user is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.dbname is required")
	}
	if c.Reservation.HoldTTLMinutes < 1 {
		return fmt.Errorf("config: reservation.hold_ttl_minutes must be positive")
	}
	if c.Reservation.SweepIntervalSeconds < 1 {
		return fmt.Errorf("config: reservation.sweep_interval_seconds must be positive")
	}
	if c.Notifier.Enabled && c.Notifier.URL == "" {
		return fmt.Errorf("config: notifier.url is required when notifier is enabled")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config — полная конфигурация проекта
type Config struct {
	Database DBConfig       `yaml:"database"`
	RabbitMQ MQConfig       `yaml:"rabbitmq"`
	Services ServicesConfig `yaml:"services"`
	JWT      JWTConfig      `yaml:"jwt"`
	Capacity CapacityConfig `yaml:"capacity"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	// лимиты пула pgx
	MaxConns         int `yaml:"max_conns"`
	MinConns         int `yaml:"min_conns"`
	ConnectTimeoutMs int `yaml:"connect_timeout_ms"`
}

func (c DBConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutMs) * time.Millisecond
}

type MQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

type ServicesConfig struct {
	GroupServicePort int `yaml:"group_service"`
	AdminServicePort int `yaml:"admin_service"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret"`
	ExpiryMinutes int    `yaml:"expiry_minutes"`
}

// CapacityConfig управляет CAS-ретраями и асинхронными уведомлениями
type CapacityConfig struct {
	MaxAttempts     int    `yaml:"max_attempts"`
	RetryBackoffMs  int    `yaml:"retry_backoff_ms"`
	NotifyTimeoutMs int    `yaml:"notify_timeout_ms"`
	Store           string `yaml:"store"`    // postgres | memory
	Timezone        string `yaml:"timezone"` // календарный день для фильтра по дате
}

func (c CapacityConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

func (c CapacityConfig) NotifyTimeout() time.Duration {
	return time.Duration(c.NotifyTimeoutMs) * time.Millisecond
}

// Location возвращает таймзону фильтра; при ошибке — UTC
func (c CapacityConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Default — значения по умолчанию для локальной разработки
func Default() Config {
	return Config{
		Database: DBConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "taxishare_user",
			Password: "taxishare_pass",
			Database: "taxishare_db",
			SSLMode:  "disable",

			MaxConns:         20,
			MinConns:         2,
			ConnectTimeoutMs: 5000,
		},
		RabbitMQ: MQConfig{
			Host:     "localhost",
			Port:     5672,
			User:     "guest",
			Password: "guest",
			VHost:    "/",
		},
		Services: ServicesConfig{
			GroupServicePort: 3000,
			AdminServicePort: 3004,
		},
		JWT: JWTConfig{
			Secret:        "dev_secret",
			ExpiryMinutes: 60,
		},
		Capacity: CapacityConfig{
			MaxAttempts:     3,
			RetryBackoffMs:  20,
			NotifyTimeoutMs: 5000,
			Store:           "postgres",
			Timezone:        "UTC",
		},
	}
}

// Load — .env (если есть) + YAML из CONFIG_DIR (по умолчанию ./config) + ENV перекрывает
func Load() (Config, error) {
	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	dir := getEnv("CONFIG_DIR", "./config")

	files := []struct {
		name string
		dst  any
	}{
		{"db.yaml", &cfg.Database},
		{"mq.yaml", &cfg.RabbitMQ},
		{"service.yaml", &cfg.Services},
		{"jwt.yaml", &cfg.JWT},
		{"capacity.yaml", &cfg.Capacity},
	}
	for _, f := range files {
		if err := readYAML(filepath.Join(dir, f.name), f.dst); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustLoad — для cmd-утилит
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	return cfg
}

// readYAML декодирует файл поверх значений по умолчанию; отсутствующий файл не ошибка.
// Поддерживается и плоский формат, и секция с именем файла (jwt: {secret: ...}).
func readYAML(path string, dst any) error {
	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if len(root.Content) == 0 {
		return nil
	}
	doc := root.Content[0]

	section := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if doc.Kind == yaml.MappingNode && len(doc.Content) == 2 && doc.Content[0].Value == section && doc.Content[1].Kind == yaml.MappingNode {
		doc = doc.Content[1]
	}
	if err := doc.Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Database.MaxConns = getEnvInt("DB_MAX_CONNS", cfg.Database.MaxConns)
	cfg.Database.MinConns = getEnvInt("DB_MIN_CONNS", cfg.Database.MinConns)

	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", cfg.RabbitMQ.Host)
	cfg.RabbitMQ.Port = getEnvInt("RABBITMQ_PORT", cfg.RabbitMQ.Port)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", cfg.RabbitMQ.User)
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", cfg.RabbitMQ.Password)
	cfg.RabbitMQ.VHost = getEnv("RABBITMQ_VHOST", cfg.RabbitMQ.VHost)

	cfg.Services.GroupServicePort = getEnvInt("GROUP_SERVICE_PORT", cfg.Services.GroupServicePort)
	cfg.Services.AdminServicePort = getEnvInt("ADMIN_SERVICE_PORT", cfg.Services.AdminServicePort)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.ExpiryMinutes = getEnvInt("JWT_EXPIRY_MINUTES", cfg.JWT.ExpiryMinutes)

	cfg.Capacity.MaxAttempts = getEnvInt("CAPACITY_MAX_ATTEMPTS", cfg.Capacity.MaxAttempts)
	cfg.Capacity.RetryBackoffMs = getEnvInt("CAPACITY_RETRY_BACKOFF_MS", cfg.Capacity.RetryBackoffMs)
	cfg.Capacity.NotifyTimeoutMs = getEnvInt("CAPACITY_NOTIFY_TIMEOUT_MS", cfg.Capacity.NotifyTimeoutMs)
	cfg.Capacity.Store = getEnv("CAPACITY_STORE", cfg.Capacity.Store)
	cfg.Capacity.Timezone = getEnv("CAPACITY_TIMEZONE", cfg.Capacity.Timezone)
}

// Validate проверяет значения, без которых сервис не стартует
func (c Config) Validate() error {
	if c.Capacity.MaxAttempts < 1 {
		return fmt.Errorf("capacity.max_attempts must be >= 1, got %d", c.Capacity.MaxAttempts)
	}
	switch c.Capacity.Store {
	case "postgres", "memory":
	default:
		return fmt.Errorf("capacity.store must be postgres or memory, got %q", c.Capacity.Store)
	}
	if c.Database.MaxConns < 1 || c.Database.MinConns < 0 || c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("database pool limits invalid: min %d, max %d", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// DSN возвращает строку подключения к БД
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AMQPURL возвращает URL подключения к RabbitMQ
func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

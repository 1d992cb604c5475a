// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Провайдеры отправки почты.
const (
	MailProviderSMTP     = "smtp"
	MailProviderSendGrid = "sendgrid"
	MailProviderQueue    = "queue"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	RabbitMQ                `yaml:"rabbitmq"`
	Mail                    `yaml:"mail"`
	Reminder                `yaml:"reminder"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	// RateLimit — допустимое число запросов в секунду к защищённым маршрутам.
	RateLimit float64 `yaml:"rate_limit" env:"HTTP_RATE_LIMIT" env-default:"20"`
	RateBurst int     `yaml:"rate_burst" env-default:"40"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	CacheTTL     time.Duration `yaml:"cache_ttl" env-default:"1h"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// RabbitMQ структура для подключения к брокеру сообщений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// Mail структура для настройки отправки писем.
type Mail struct {
	Provider       string `yaml:"provider" env:"MAIL_PROVIDER" env-default:"smtp"`
	From           string `yaml:"from" env:"MAIL_FROM"`
	SMTPHost       string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort       string `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	SMTPUser       string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPass       string `yaml:"smtp_pass" env:"SMTP_PASS"`
	SendGridAPIKey string `yaml:"sendgrid_api_key" env:"SENDGRID_API_KEY"`
	SendGridURL    string `yaml:"sendgrid_url" env-default:"https://api.sendgrid.com"`
	// DeliveryProvider — чем reminder-sender доставляет письма из очереди.
	DeliveryProvider string `yaml:"delivery_provider" env:"MAIL_DELIVERY_PROVIDER" env-default:"smtp"`
}

// Reminder структура для настройки рассылки напоминаний об окончании подписки.
type Reminder struct {
	Schedule string        `yaml:"schedule" env:"REMINDER_SCHEDULE" env-default:"@every 12h"`
	Window   time.Duration `yaml:"window" env-default:"72h"`
	Workers  int           `yaml:"workers" env-default:"4"`
}

// Load читает конфиг по пути path с переопределением из переменных окружения.
func Load(path string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case MailProviderSMTP, MailProviderSendGrid, MailProviderQueue:
	default:
		return fmt.Errorf("unknown mail provider %q", c.Provider)
	}
	if c.Provider == MailProviderQueue && c.RabbitMQURL == "" {
		return errors.New("mail provider queue requires rabbitmq.url")
	}
	if c.Workers <= 0 {
		return errors.New("reminder.workers must be positive")
	}
	if c.Window <= 0 {
		return errors.New("reminder.window must be positive")
	}
	return nil
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, предварительно подхватывая .env, если он есть.
func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("cannot read .env: %s", err)
	}
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env             string `yaml:"env" env:"ENV" env-default:"local"`
	StorePath       string `yaml:"store_path" env:"STORE_PATH" env-default:"./data/users.json"`
	RedisConnection `yaml:"redis_connection"`
	HTTPServer      `yaml:"http_server"`
	JWTToken        `yaml:"jwttoken"`
	LookupAPI       `yaml:"lookup_api"`
	Limits          `yaml:"limits"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:"localhost:8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
	PayloadTTL   time.Duration `yaml:"payload_ttl" env-default:"10m"`
}

// JWTToken структура для выпуска и проверки админских jwt-токенов.
type JWTToken struct {
	JWTSecretKey    string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	BootstrapSecret string        `yaml:"bootstrap_secret" env:"BOOTSTRAP_SECRET"`
	TokenTTL        time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// LookupAPI структура для настройки клиента внешнего сервиса поиска.
type LookupAPI struct {
	BaseURL       string        `yaml:"base_url" env:"LOOKUP_API_URL"`
	APIKey        string        `yaml:"api_key" env:"LOOKUP_API_KEY"`
	TimeoutLookup time.Duration `yaml:"timeoutlookup" env-default:"15s"`
}

// Limits структура с порогами ограничения частоты запросов.
type Limits struct {
	UserInterval time.Duration `yaml:"user_interval" env-default:"2s"`
	GlobalRPS    float64       `yaml:"global_rps" env-default:"20"`
	GlobalBurst  int           `yaml:"global_burst" env-default:"40"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

package app

import (
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/nil-go/konf"
	"github.com/nil-go/konf/provider/file"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Web                 WebConfig     `konf:"web"`
	Logging             LoggingConfig `konf:"logging"`
	DB                  DBConfig      `konf:"db"`
	Kafka               KafkaConfig   `konf:"kafka"`
	Session             SessionConfig `konf:"session"`
	RegistrationAPIAddr string        `konf:"registrationApiAddr" env:"ADMIN_REGISTRATION_API_ADDR"`
	RequestTimeout      time.Duration `konf:"requestTimeout"`
	MaxRequestFails     uint32        `konf:"maxRequestFails"`
}

type WebConfig struct {
	Host string `konf:"host"`
	Port string `konf:"port"`
}

type LoggingConfig struct {
	Level int `konf:"level"`
}

type DBConfig struct {
	DriverName       string `konf:"driverName"`
	ConnectionString string `konf:"connectionString" env:"ADMIN_DB_CONNECTION_STRING"`
}

type KafkaConfig struct {
	Addresses []string `konf:"addresses"`
	StatTopic string   `konf:"statTopic"`
}

type SessionConfig struct {
	JWTSecret       string        `konf:"jwtSecret" env:"ADMIN_JWT_SECRET"`
	TTL             time.Duration `konf:"ttl"`
	SweepInterval   time.Duration `konf:"sweepInterval"`
	MaxSessions     int           `konf:"maxSessions"`
	MessageTTL      time.Duration `konf:"messageTtl"`
	NavigationDelay time.Duration `konf:"navigationDelay"`
}

func defaultConfig() Config {
	return Config{
		Web:            WebConfig{Host: "0.0.0.0", Port: "8080"},
		DB:             DBConfig{DriverName: "postgres"},
		RequestTimeout: 10 * time.Second,
		Session: SessionConfig{
			TTL:             30 * time.Minute,
			SweepInterval:   time.Minute,
			MaxSessions:     10000,
			MessageTTL:      5 * time.Second,
			NavigationDelay: 3 * time.Second,
		},
	}
}

// ReadLocalConfig reads the yaml file at path; a .env file and ADMIN_* variables override secrets.
func ReadLocalConfig(path string) (Config, error) {
	loader := konf.New()
	if err := loader.Load(file.New(path, file.WithUnmarshal(yaml.Unmarshal))); err != nil {
		return Config{}, errors.Wrap(err, "load config file")
	}

	config := defaultConfig()
	if err := loader.Unmarshal("", &config); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Wrap(err, "load .env")
	}

	if err := env.Parse(&config); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}

	return config, nil
}

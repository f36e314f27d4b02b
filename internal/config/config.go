package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
)

type Config struct {
	LogLevel   string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	Storage    string `yaml:"storage" env:"STORAGE" env-default:"memory"`
	Redis      Redis  `yaml:"redis"`
	Room       Room   `yaml:"room"`
	Socket     Socket `yaml:"socket"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Room struct {
	TTL           time.Duration `yaml:"ttl" env:"ROOM_TTL" env-default:"1h"`
	SweepInterval time.Duration `yaml:"sweep-interval" env:"ROOM_SWEEP_INTERVAL" env-default:"1m"`
}

type Socket struct {
	AllowedOrigins []string `yaml:"allowed-origins" env:"SOCKET_ALLOWED_ORIGINS" env-separator:","`
	SendBuffer     int      `yaml:"send-buffer" env:"SOCKET_SEND_BUFFER" env-default:"64"`
}

// MustLoad - loads config.yml when it exists, environment variables otherwise.
// Environment variables always win over the file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err = cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
		if err = cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to load config from env: %w", err)
		}
	default:
		return nil, fmt.Errorf("unable to stat config file: %w", err)
	}

	if err = config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Config) validate() error {
	if that.Storage != StorageMemory && that.Storage != StorageRedis {
		return fmt.Errorf("unknown storage %q", that.Storage)
	}

	if that.Room.TTL <= 0 {
		return fmt.Errorf("room ttl must be positive, got %s", that.Room.TTL)
	}

	if that.Room.SweepInterval <= 0 {
		return fmt.Errorf("room sweep interval must be positive, got %s", that.Room.SweepInterval)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

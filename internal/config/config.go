package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel       string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort       string        `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort     string        `yaml:"socket-port" env:"SOCKET_PORT" env-default:"8080"`
	AllowedOrigins []string      `yaml:"allowed-origins" env:"ALLOWED_ORIGINS"`
	SessionTTL     time.Duration `yaml:"session-ttl" env:"SESSION_TTL" env-default:"24h"`
	EndGameDelay   time.Duration `yaml:"end-game-delay" env:"END_GAME_DELAY" env-default:"500ms"`
	Redis          Redis         `yaml:"redis"`
	Board          Board         `yaml:"board"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

// Board holds the dimensions of newly created games.
type Board struct {
	Width  int `yaml:"width" env:"BOARD_WIDTH" env-default:"7"`
	Height int `yaml:"height" env:"BOARD_HEIGHT" env-default:"6"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	if that.Host == "" || that.Port == "" {
		return ""
	}

	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

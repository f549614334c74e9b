package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

type Config struct {
	Host           string `env:"HOST,default=0.0.0.0" validate:"required"`
	Port           int    `env:"PORT" validate:"omitempty,min=1,max=65535"`
	SocketPort     int    `env:"SOCKET_PORT,default=4000" validate:"min=1,max=65535"`
	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=*"`
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`

	ContentBackend string        `env:"CONTENT_BACKEND,default=redis" validate:"oneof=redis badger"`
	RedisAddr      string        `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword  string        `env:"REDIS_PASSWORD"`
	RedisDB        int           `env:"REDIS_DB,default=0" validate:"min=0"`
	BadgerPath     string        `env:"BADGER_PATH,default=./data/destinations"`
	SeedFile       string        `env:"SEED_FILE,default=destinations.json"`
	ContentTimeout time.Duration `env:"CONTENT_TIMEOUT,default=5s" validate:"gt=0"`

	RoomCapacity          int           `env:"ROOM_CAPACITY,default=2" validate:"min=1"`
	OptionsPerRound       int           `env:"OPTIONS_PER_ROUND,default=4" validate:"min=2"`
	AutoAdvanceDelay      time.Duration `env:"AUTO_ADVANCE_DELAY,default=3s" validate:"gt=0"`
	ReconnectGrace        time.Duration `env:"RECONNECT_GRACE,default=30s" validate:"gt=0"`
	MaxRounds             int           `env:"MAX_ROUNDS,default=0" validate:"min=0"`
	RequireExternalUserID bool          `env:"REQUIRE_EXTERNAL_USER_ID,default=false"`
	StrictNotFound        bool          `env:"STRICT_NOT_FOUND,default=false"`

	ClientSendBuffer int           `env:"CLIENT_SEND_BUFFER,default=256" validate:"min=1"`
	PingInterval     time.Duration `env:"PING_INTERVAL,default=25s" validate:"gt=0"`
	ReadTimeout      time.Duration `env:"READ_TIMEOUT,default=60s" validate:"gtfield=PingInterval"`
	WriteTimeout     time.Duration `env:"WRITE_TIMEOUT,default=10s" validate:"gt=0"`
}

// Load reads an optional .env file, then the process environment
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the value ranges of an already populated config
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Address returns host:port; PORT wins over SOCKET_PORT when both are set
func (c *Config) Address() string {
	port := c.SocketPort
	if c.Port != 0 {
		port = c.Port
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

// Origins splits ALLOWED_ORIGINS. An empty result means any origin is accepted.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o == "*" {
			return nil
		}
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

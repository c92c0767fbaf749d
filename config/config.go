package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StageProd = "prod"
	StageDev  = "dev"

	DefaultHost         = "localhost"
	DefaultPort         = 7777
	DefaultJoinTimeout  = time.Minute * 2
	DefaultMoveTimeout  = time.Minute * 2
	DefaultWriteTimeout = time.Second * 10
)

type Config struct {
	Stage string
	// empty binds DefaultHost
	Host string
	Port int
	// 0 keeps the websocket listener off
	WsPort       int
	DatabaseUrl  string
	JoinTimeout  time.Duration
	MoveTimeout  time.Duration
	WriteTimeout time.Duration
}

// LoadConfig reads the environment. Outside of prod the .env file is
// loaded first, if there is one.
func LoadConfig() (Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file found, using environment variables")
		}
	}

	cfg := Config{
		Stage:        os.Getenv("STAGE"),
		Host:         os.Getenv("HOST"),
		DatabaseUrl:  os.Getenv("DATABASE_URL"),
		Port:         DefaultPort,
		JoinTimeout:  DefaultJoinTimeout,
		MoveTimeout:  DefaultMoveTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}
	if cfg.Stage == "" {
		cfg.Stage = StageDev
	}
	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return Config{}, fmt.Errorf("stage must be either %s or %s, got: %s", StageDev, StageProd, cfg.Stage)
	}

	var err error
	if cfg.Port, err = intEnv("PORT", cfg.Port); err != nil {
		return Config{}, err
	}
	if cfg.WsPort, err = intEnv("WS_PORT", 0); err != nil {
		return Config{}, err
	}
	if cfg.JoinTimeout, err = durationEnv("JOIN_TIMEOUT", cfg.JoinTimeout); err != nil {
		return Config{}, err
	}
	if cfg.MoveTimeout, err = durationEnv("MOVE_TIMEOUT", cfg.MoveTimeout); err != nil {
		return Config{}, err
	}
	if cfg.WriteTimeout, err = durationEnv("WRITE_TIMEOUT", cfg.WriteTimeout); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > 65535 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return v, nil
}

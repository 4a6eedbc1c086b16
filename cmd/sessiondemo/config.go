package main

import "time"

// Config holds the demo's own settings. Each component loads its own config
// struct on top of this.
type Config struct {
	AppEnv          string        `env:"APP_ENV" envDefault:"development"`
	LogLevel        string        `env:"LOG_LEVEL"`
	Store           string        `env:"SESSION_STORE" envDefault:"memory"`
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"10m"`
}

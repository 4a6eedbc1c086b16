package session

import "time"

// Config holds session manager settings loaded from the environment.
type Config struct {
	TTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`
}

// DefaultTTL is used when no TTL is configured.
const DefaultTTL = 24 * time.Hour

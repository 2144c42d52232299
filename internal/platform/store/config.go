package store

import (
	"time"

	"github.com/Highperformr/hp-sales-nav-plugin/internal/platform/logger"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG     PGConfig
	SQLite SQLiteConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// SQLiteConfig configures the embedded database
type SQLiteConfig struct {
	Enabled bool
	DSN     string // file path or file: uri, ":memory:" for tests
}

// Option mutates Store during Open
type Option func(*Store) error

// WithLogger sets the logger the backends trace through
func WithLogger(log logger.Logger) Option {
	return func(s *Store) error {
		s.Log = log.With().Str("component", "store").Logger()
		return nil
	}
}

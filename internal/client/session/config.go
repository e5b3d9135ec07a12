package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/draftkeeper/internal/logging"
)

// Config tunes session timing.
type Config struct {
	// SnapshotInterval is the period of the local snapshot timer.
	SnapshotInterval time.Duration
	// PushDelay is the quiet period after the last mutation before a push.
	// A failed push is retried after the same delay.
	PushDelay time.Duration
	// PushTimeout bounds a single create or update call.
	PushTimeout time.Duration

	Clock  Clock
	Logger logging.Logger
	// NewIdempotencyKey generates the key sent with the create call.
	NewIdempotencyKey func() string
}

// DefaultConfig returns the reference timings: 10s snapshots, 30s quiet period.
func DefaultConfig() Config {
	return Config{
		SnapshotInterval:  10 * time.Second,
		PushDelay:         30 * time.Second,
		PushTimeout:       15 * time.Second,
		Clock:             SystemClock,
		Logger:            logging.Nop(),
		NewIdempotencyKey: uuid.NewString,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SnapshotInterval <= 0 {
		c.SnapshotInterval = d.SnapshotInterval
	}
	if c.PushDelay <= 0 {
		c.PushDelay = d.PushDelay
	}
	if c.PushTimeout <= 0 {
		c.PushTimeout = d.PushTimeout
	}
	if c.Clock == nil {
		c.Clock = d.Clock
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.NewIdempotencyKey == nil {
		c.NewIdempotencyKey = d.NewIdempotencyKey
	}
	return c
}

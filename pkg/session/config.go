package session

import "time"

// Config tunes the per-session transport loops.
type Config struct {
	// ReadTimeout bounds how long ReadLoop waits for the next frame
	// before treating the connection as dead.
	ReadTimeout time.Duration

	// WriteTimeout bounds how long WriteLoop waits for a single frame
	// write (or ping) to complete.
	WriteTimeout time.Duration

	// PingInterval is how often WriteLoop sends a websocket ping to keep
	// idle connections (and intermediate proxies) alive.
	PingInterval time.Duration

	// OutboundQueueSize is the capacity of the per-session outbound FIFO.
	// A send that would exceed this capacity is a queue overflow, which
	// tears the session down.
	OutboundQueueSize int

	// MaxFrameBytes bounds the size of a single inbound websocket
	// message, guarding against unbounded memory growth from a
	// misbehaving or malicious client.
	MaxFrameBytes int64
}

// DefaultConfig returns the default session tuning.
func DefaultConfig() Config {
	return Config{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		PingInterval:      30 * time.Second,
		OutboundQueueSize: 256,
		MaxFrameBytes:     32 << 20, // 32 MiB, generous enough for inline buffer payloads
	}
}

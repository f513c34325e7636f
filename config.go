package tropic

import (
	"time"

	"github.com/op/go-logging"

	"github.com/vpilat/libtropic-go/l1"
)

// BufferMode selects where the L3 engine's packet scratch buffer lives.
// Spec.md §9 calls out the original library's caller-supplied static
// buffer as a preprocessor-era workaround for heap-constrained embedded
// targets; on a hosted Go platform BufferEmbedded (a slice the Engine
// allocates and grows itself) is the right default. BufferExternal lets a
// caller on a similarly constrained host hand the Engine a
// pre-allocated, reused backing array instead.
type BufferMode struct {
	buf []byte
}

// BufferEmbedded selects the Engine's own internally managed buffer.
func BufferEmbedded() BufferMode { return BufferMode{} }

// BufferExternal selects buf as the Engine's packet scratch space; buf is
// reused and grown in place across Send/Receive calls rather than
// reallocated per call.
func BufferExternal(buf []byte) BufferMode { return BufferMode{buf: buf} }

// Config bounds one Handle's transport retry/timeout policy and ambient
// stack, replacing the original library's compile-time preprocessor
// toggles (spec.md §9 redesign note) with ordinary struct fields.
type Config struct {
	// IntPin selects whether the framer waits on the device's INT pin or
	// falls back to a fixed delay loop.
	IntPin l1.IntPinMode
	// ReadMaxTries bounds how many GET_RESPONSE probes a read will
	// attempt before giving up with ChipBusy. Zero uses the package
	// default.
	ReadMaxTries int
	// ProbeTimeout bounds a single SPI probe transfer. Zero uses the
	// package default.
	ProbeTimeout time.Duration
	// Logger receives structured diagnostics from every layer. Nil
	// installs a logger built from the TROPIC_LOG_LEVEL environment
	// variable via NewLogger.
	Logger *logging.Logger
	// L3Buffer selects where the L3 engine's packet scratch buffer lives.
	// The zero value is BufferEmbedded.
	L3Buffer BufferMode
}

// DefaultConfig returns the datasheet-recommended retry/timeout policy
// with INT pin waiting enabled, an embedded L3 buffer, and a fresh
// environment-configured logger.
func DefaultConfig() Config {
	return Config{
		IntPin:   l1.IntPinOn,
		Logger:   NewLogger(),
		L3Buffer: BufferEmbedded(),
	}
}

func (c Config) l1Config() l1.Config {
	cfg := l1.DefaultConfig()
	cfg.IntPin = c.IntPin
	if c.ReadMaxTries > 0 {
		cfg.ReadMaxTries = c.ReadMaxTries
	}
	if c.ProbeTimeout > 0 {
		cfg.ProbeTimeout = c.ProbeTimeout
	}
	return cfg
}

func (c Config) logger() *logging.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return NewLogger()
}

// Package tropic is a host-side library for the TROPIC01 secure element:
// L1 SPI framing, L2 request/response transport, and an L3 Noise secure
// session, composed behind a single Handle plus a typed command API
// (pairing keys, R/I-config, R-mem, ECC keys, signing, monotonic
// counters, MAC-and-destroy, lifecycle/mode management).
package tropic

import (
	"github.com/op/go-logging"

	"github.com/vpilat/libtropic-go/cryptocap"
	"github.com/vpilat/libtropic-go/cryptocap/stdcrypto"
	"github.com/vpilat/libtropic-go/l1"
	"github.com/vpilat/libtropic-go/l2"
	"github.com/vpilat/libtropic-go/l3"
)

// Handle is one TROPIC01 device connection: the framing/transport stack,
// an optional secure session, and the cached attributes/certificates
// read off the device during Init. It is not safe to share across
// goroutines — unlike the teacher's PairingSecret, which embeds its own
// mutex for a different, multi-goroutine push/pull concurrency model,
// Handle does no internal locking at all (spec.md §5).
type Handle struct {
	Config   Config
	Provider cryptocap.Provider

	framer      *l1.Framer
	transceiver *l2.Transceiver
	engine      *l3.Engine
	session     *l3.Session

	CertStore  CertStore
	Attributes Attributes

	logger *logging.Logger

	initialized bool
}

// New returns a Handle using the standard-library-backed crypto
// provider. Most callers want this; a custom Provider is only needed in
// tests (cryptocap/mock).
func New() *Handle {
	return &Handle{Provider: stdcrypto.New()}
}

// Init binds h to platform, validates cfg and brings up the L1/L2/L3
// stack (no secure session yet — call StartSecureSession or
// VerifyChipAndStartSecureSession next). It then probes the device with
// Get_Info RISC-V version and populates Attributes, the same round trip
// RefreshAttributes performs, before returning.
func (h *Handle) Init(platform l1.Platform, cfg Config) error {
	if h.initialized {
		return ErrAlreadyInitialized
	}
	fr, err := l1.NewFramer(platform, cfg.l1Config())
	if err != nil {
		return err
	}
	h.framer = fr
	h.transceiver = l2.NewTransceiver(fr)
	if cfg.L3Buffer.buf != nil {
		h.engine = l3.NewEngineWithBuffer(h.transceiver, cfg.L3Buffer.buf)
	} else {
		h.engine = l3.NewEngine(h.transceiver)
	}
	h.session = &l3.Session{}
	h.Config = cfg
	h.logger = cfg.logger()
	h.initialized = true
	if err := h.RefreshAttributes(); err != nil {
		h.initialized = false
		h.framer = nil
		h.transceiver = nil
		h.engine = nil
		h.session = nil
		return err
	}
	return nil
}

// Deinit aborts any active secure session and zeroises session key
// material, then detaches h from its platform. h can be re-initialized
// with Init afterward.
func (h *Handle) Deinit() error {
	if !h.initialized {
		return ErrNotInitialized
	}
	if h.session.Active() {
		if err := h.AbortSecureSession(); err != nil {
			h.logger.Warningf("abort during deinit: %v", err)
		}
	}
	h.framer = nil
	h.transceiver = nil
	h.engine = nil
	h.session = nil
	h.initialized = false
	return nil
}

// SecureSessionActive reports whether h currently has installed session
// keys.
func (h *Handle) SecureSessionActive() bool {
	return h.initialized && h.session.Active()
}

func (h *Handle) requireInit() error {
	if !h.initialized {
		return ErrNotInitialized
	}
	return nil
}

func (h *Handle) requireSession() error {
	if err := h.requireInit(); err != nil {
		return err
	}
	if !h.session.Active() {
		return ErrNoSecureSession
	}
	return nil
}

// Package l1 implements the framing transport layer: device-ready
// polling, frame read with a length prefix and CRC-covered tail, the
// retry/timeout policy, alarm-mode detection and the INT-pin handshake.
// It knows nothing about L2 frame contents — it moves whatever bytes L2
// hands it and reports chip-status bits back.
package l1

import (
	"time"

	"github.com/op/go-logging"

	"github.com/vpilat/libtropic-go/errs"
)

var log = logging.MustGetLogger("tropic/l1")

// Chip-status bits, the low byte returned as the first MISO byte of every
// SPI read.
const (
	ChipModeReady   byte = 1 << 0
	ChipModeAlarm   byte = 1 << 1
	ChipModeStartup byte = 1 << 2
)

// Request IDs that matter at the L1 level (the rest live in package l2).
const (
	GetResponseReqID byte = 0xAA
)

// Frame size limits (spec.md §3, §4.3).
const (
	MaxChunkPayload = 252
	// MaxFrameSize is the largest L2 response frame: chip_status + l2_status +
	// rsp_len + payload + crc16.
	MaxFrameSize = 1 + 1 + 1 + MaxChunkPayload + 2

	ReadMaxTriesDefault = 50

	ProbeTimeoutMin     = 5 * time.Millisecond
	ProbeTimeoutMax     = 150 * time.Millisecond
	ProbeTimeoutDefault = 70 * time.Millisecond

	readRetryDelay = 10 * time.Millisecond
)

// Platform is the host-side transport/RNG/clock capability L1 is built
// against. Concrete backends (package platform/spidev, platform/bletunnel,
// platform/mock) implement it.
type Platform interface {
	Init() error
	Deinit() error

	CSNLow() error
	CSNHigh() error

	// Transfer performs a full-duplex transfer of length bytes starting
	// at buf[offset:offset+length], in place: bytes present in that
	// slice are transmitted (MOSI) and overwritten with what's received
	// (MISO).
	Transfer(buf []byte, offset, length int, timeout time.Duration) error

	Delay(d time.Duration) error
	// DelayOnInt blocks until a rising edge on the INT pin or timeout.
	// Implementations that don't wire an INT pin return ErrIntNotWired;
	// callers fall back to a plain delay.
	DelayOnInt(timeout time.Duration) error

	RandomBytes(buf []byte) error

	Logf(format string, args ...interface{})
}

// ErrIntNotWired is returned by a Platform.DelayOnInt implementation that
// has no INT pin connected.
var ErrIntNotWired = errs.New(errs.Param)

// IntPinMode selects whether the framer waits on the INT pin or falls
// back to a fixed delay while the chip status is neither READY nor ALARM
// nor STARTUP. Spec.md §9 calls this out as a datasheet-recommended
// runtime option rather than the source's compile-time switch.
type IntPinMode int

const (
	IntPinOn IntPinMode = iota
	IntPinOff
)

// Config bounds the framer's retry/timeout behavior.
type Config struct {
	ReadMaxTries int
	ProbeTimeout time.Duration
	IntPin       IntPinMode
}

// DefaultConfig matches the device datasheet's recommended settings.
func DefaultConfig() Config {
	return Config{
		ReadMaxTries: ReadMaxTriesDefault,
		ProbeTimeout: ProbeTimeoutDefault,
		IntPin:       IntPinOn,
	}
}

func (c Config) validate() error {
	if c.ProbeTimeout < ProbeTimeoutMin || c.ProbeTimeout > ProbeTimeoutMax {
		return errs.Withf(errs.Param, "probe timeout %s out of range [%s, %s]", c.ProbeTimeout, ProbeTimeoutMin, ProbeTimeoutMax)
	}
	if c.ReadMaxTries <= 0 {
		return errs.Withf(errs.Param, "read max tries must be positive, got %d", c.ReadMaxTries)
	}
	return nil
}

// Framer drives one Platform: CSN toggling, byte transfers, the
// GET_RESPONSE probe loop and alarm detection.
type Framer struct {
	Platform Platform
	Config   Config
}

// NewFramer validates cfg and returns a Framer bound to p.
func NewFramer(p Platform, cfg Config) (*Framer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Framer{Platform: p, Config: cfg}, nil
}

// Write sends an already-built L2 request frame: CSN low, transfer length
// bytes of buf, CSN high.
func (f *Framer) Write(buf []byte, length int) error {
	if err := f.Platform.CSNLow(); err != nil {
		return errs.Withf(errs.SPI, "csn low: %v", err)
	}
	if err := f.Platform.Transfer(buf, 0, length, f.Config.ProbeTimeout); err != nil {
		_ = f.Platform.CSNHigh()
		return errs.Withf(errs.SPI, "write transfer: %v", err)
	}
	if err := f.Platform.CSNHigh(); err != nil {
		return errs.Withf(errs.SPI, "csn high: %v", err)
	}
	return nil
}

// Read polls the device for one pending L2 response frame and fills buf
// in place: buf[0] is chip_status, buf[1] is l2_status, buf[2] is rsp_len,
// buf[3:3+rsp_len] is the response payload, and the trailing two bytes are
// the CRC. It returns the total number of meaningful bytes written to buf
// (3 + rsp_len + 2). len(buf) must be at least l1.MaxFrameSize.
func (f *Framer) Read(buf []byte) (int, error) {
	if len(buf) < MaxFrameSize {
		return 0, errs.Withf(errs.BadBufferSize, "l1 read buffer must be at least %d bytes, got %d", MaxFrameSize, len(buf))
	}

	tries := f.Config.ReadMaxTries
	for tries > 0 {
		tries--

		buf[0] = GetResponseReqID

		if err := f.Platform.CSNLow(); err != nil {
			return 0, errs.Withf(errs.SPI, "csn low: %v", err)
		}
		if err := f.Platform.Transfer(buf, 0, 1, f.Config.ProbeTimeout); err != nil {
			_ = f.Platform.CSNHigh()
			return 0, errs.Withf(errs.SPI, "probe transfer: %v", err)
		}
		status := buf[0]

		if status&ChipModeAlarm != 0 {
			_ = f.Platform.CSNHigh()
			log.Warningf("chip reported alarm mode, status=0x%02x", status)
			return 0, errs.FromRaw(errs.ChipAlarmMode, status)
		}

		if status&ChipModeReady != 0 {
			if err := f.Platform.Transfer(buf, 1, 2, f.Config.ProbeTimeout); err != nil {
				_ = f.Platform.CSNHigh()
				return 0, errs.Withf(errs.SPI, "status+len transfer: %v", err)
			}
			if buf[1] == 0xFF {
				// No response pending yet.
				if err := f.Platform.CSNHigh(); err != nil {
					return 0, errs.Withf(errs.SPI, "csn high: %v", err)
				}
				if err := f.Platform.Delay(readRetryDelay); err != nil {
					return 0, errs.Withf(errs.SPI, "delay: %v", err)
				}
				continue
			}

			rspLen := int(buf[2])
			tail := rspLen + 2
			if 3+tail > len(buf) {
				_ = f.Platform.CSNHigh()
				return 0, errs.New(errs.DataLenError)
			}
			if err := f.Platform.Transfer(buf, 3, tail, f.Config.ProbeTimeout); err != nil {
				_ = f.Platform.CSNHigh()
				return 0, errs.Withf(errs.SPI, "payload+crc transfer: %v", err)
			}
			if err := f.Platform.CSNHigh(); err != nil {
				return 0, errs.Withf(errs.SPI, "csn high: %v", err)
			}
			return 3 + tail, nil
		}

		// Neither READY nor ALARM.
		if err := f.Platform.CSNHigh(); err != nil {
			return 0, errs.Withf(errs.SPI, "csn high: %v", err)
		}
		if status&ChipModeStartup != 0 {
			// INT pin isn't driven in maintenance mode.
			if err := f.Platform.Delay(readRetryDelay); err != nil {
				return 0, errs.Withf(errs.SPI, "delay: %v", err)
			}
			continue
		}
		if f.Config.IntPin == IntPinOn {
			if err := f.Platform.DelayOnInt(ProbeTimeoutMax); err != nil {
				if err == ErrIntNotWired {
					if derr := f.Platform.Delay(readRetryDelay); derr != nil {
						return 0, errs.Withf(errs.SPI, "delay: %v", derr)
					}
					continue
				}
				return 0, errs.New(errs.IntTimeout)
			}
		} else {
			if err := f.Platform.Delay(readRetryDelay); err != nil {
				return 0, errs.Withf(errs.SPI, "delay: %v", err)
			}
		}
	}

	log.Debugf("chip busy: exhausted %d read tries", f.Config.ReadMaxTries)
	return 0, errs.New(errs.ChipBusy)
}

// Package spidev implements l1.Platform over a real Linux SPI bus using
// periph.io, the way the rest of the example pack's periph.io consumers
// (go-lepton, seedhammer) drive their own SPI peripherals: open the bus
// through periph.io/x/host's driver registry, get a spi.PortCloser from
// periph.io/x/conn's spireg, and wrap it in a spi.Conn.
package spidev

import (
	"crypto/rand"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/l1"
)

// Options names the SPI bus/pins this backend binds to. An empty SPIBus
// opens periph.io's default SPI port. An empty (or unknown) CSNPin or
// IntPin leaves that pin unused: CSNLow/CSNHigh do nothing and
// DelayOnInt returns l1.ErrIntNotWired.
type Options struct {
	SPIBus string
	CSNPin string
	IntPin string
	MaxHz  physic.Frequency
}

// DefaultOptions selects the host's default SPI port at 1 MHz with no
// CSN GPIO and no INT pin: chip-select is left to the SPI controller
// (CSNLow/CSNHigh do nothing) and DelayOnInt reports the INT pin as not
// wired.
func DefaultOptions() Options {
	return Options{MaxHz: 1 * physic.MegaHertz}
}

// Platform is the real hardware l1.Platform backend. Construct with Open.
type Platform struct {
	port  spi.PortCloser
	conn  spi.Conn
	csn   gpio.PinIO
	intP  gpio.PinIO
	mosi  []byte
	miso  []byte
}

// Open initializes periph.io's host drivers and binds a Platform to the
// SPI bus/pins named by opts.
func Open(opts Options) (*Platform, error) {
	if _, err := host.Init(); err != nil {
		return nil, errs.Withf(errs.SPI, "periph host init: %v", err)
	}
	port, err := spireg.Open(opts.SPIBus)
	if err != nil {
		return nil, errs.Withf(errs.SPI, "spireg open %q: %v", opts.SPIBus, err)
	}
	maxHz := opts.MaxHz
	if maxHz == 0 {
		maxHz = 1 * physic.MegaHertz
	}
	c, err := port.Connect(maxHz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, errs.Withf(errs.SPI, "spi connect: %v", err)
	}
	p := &Platform{port: port, conn: c}
	if opts.CSNPin != "" {
		if pin := gpioreg.ByName(opts.CSNPin); pin != nil {
			p.csn = pin
		}
	}
	if opts.IntPin != "" {
		if pin := gpioreg.ByName(opts.IntPin); pin != nil {
			p.intP = pin
		}
	}
	return p, nil
}

func (p *Platform) Init() error   { return nil }
func (p *Platform) Deinit() error { return p.port.Close() }

func (p *Platform) CSNLow() error {
	if p.csn == nil {
		return nil
	}
	return p.csn.Out(gpio.Low)
}

func (p *Platform) CSNHigh() error {
	if p.csn == nil {
		return nil
	}
	return p.csn.Out(gpio.High)
}

// Transfer performs a full-duplex transfer of length bytes at
// buf[offset:offset+length], matching l1.Platform's in-place contract:
// conn.Tx takes separate write/read slices, so scratch buffers are reused
// across calls to avoid an allocation per SPI transfer.
func (p *Platform) Transfer(buf []byte, offset, length int, timeout time.Duration) error {
	if cap(p.mosi) < length {
		p.mosi = make([]byte, length)
		p.miso = make([]byte, length)
	}
	w := p.mosi[:length]
	r := p.miso[:length]
	copy(w, buf[offset:offset+length])
	if err := p.conn.Tx(w, r); err != nil {
		return errs.Withf(errs.SPI, "spi tx: %v", err)
	}
	copy(buf[offset:offset+length], r)
	return nil
}

func (p *Platform) Delay(d time.Duration) error {
	time.Sleep(d)
	return nil
}

// DelayOnInt blocks on a rising edge of the INT pin, or returns
// l1.ErrIntNotWired if none was configured.
func (p *Platform) DelayOnInt(timeout time.Duration) error {
	if p.intP == nil {
		return l1.ErrIntNotWired
	}
	if err := p.intP.In(gpio.PullDown, gpio.RisingEdge); err != nil {
		return errs.Withf(errs.SPI, "int pin configure: %v", err)
	}
	if !p.intP.WaitForEdge(timeout) {
		return errs.New(errs.IntTimeout)
	}
	return nil
}

func (p *Platform) RandomBytes(buf []byte) error {
	_, err := rand.Read(buf)
	return err
}

func (p *Platform) Logf(format string, args ...interface{}) {}

package mock

import (
	"time"

	"github.com/vpilat/libtropic-go/l1"
	"github.com/vpilat/libtropic-go/l2"
)

// Platform drives a Device through the same raw byte-transfer contract a
// real SPI part exposes (l1.Platform), so l1/l2/l3/session and the root
// command API can all be tested without hardware.
type Platform struct {
	Device *Device

	queued []byte // pending response frame, built by the last request
}

// NewPlatform wraps dev in an l1.Platform.
func NewPlatform(dev *Device) *Platform {
	return &Platform{Device: dev}
}

func (p *Platform) Init() error   { return nil }
func (p *Platform) Deinit() error { return nil }
func (p *Platform) CSNLow() error { return nil }
func (p *Platform) CSNHigh() error {
	return nil
}
func (p *Platform) Delay(d time.Duration) error            { return nil }
func (p *Platform) DelayOnInt(timeout time.Duration) error { return l1.ErrIntNotWired }
func (p *Platform) RandomBytes(buf []byte) error {
	for i := range buf {
		buf[i] = byte(i * 7 + 1)
	}
	return nil
}
func (p *Platform) Logf(format string, args ...interface{}) {}

func (p *Platform) Transfer(buf []byte, offset, length int, timeout time.Duration) error {
	switch {
	case offset == 0 && length == 1:
		buf[0] = l1.ChipModeReady
	case offset == 1 && length == 2:
		buf[1] = p.queued[1]
		buf[2] = p.queued[2]
	case offset == 3:
		copy(buf[3:3+length], p.queued[3:3+length])
		p.queued = nil
	default:
		p.handleWrite(buf[:length])
	}
	return nil
}

func (p *Platform) handleWrite(frame []byte) {
	if len(frame) < 4 {
		p.queued = mkFrame(l2.StatusGenErr, nil)
		return
	}
	reqID := frame[0]
	plen := int(frame[1])
	if 2+plen+2 != len(frame) {
		p.queued = mkFrame(l2.StatusGenErr, nil)
		return
	}
	payload := frame[2 : 2+plen]
	gotCRC := uint16(frame[2+plen]) | uint16(frame[2+plen+1])<<8
	if l2.CRC16(frame[:2+plen]) != gotCRC {
		p.queued = mkFrame(l2.StatusCrcErr, nil)
		return
	}
	status, resp := p.Device.Handle(reqID, append([]byte(nil), payload...))
	p.queued = mkFrame(status, resp)
}

func mkFrame(status byte, payload []byte) []byte {
	frame := make([]byte, 0, 3+len(payload)+2)
	frame = append(frame, l1.ChipModeReady, status, byte(len(payload)))
	frame = append(frame, payload...)
	crc := l2.CRC16(frame[1:])
	frame = append(frame, byte(crc), byte(crc>>8))
	return frame
}

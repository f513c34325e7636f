package l1

import (
	"testing"
	"time"

	"github.com/vpilat/libtropic-go/errs"
)

// fakePlatform is a minimal Platform used to drive the framer's probe
// loop directly, without going through package platform/mock (which
// layers L2/L3 semantics on top).
type fakePlatform struct {
	csn       bool
	responses [][]byte // each entry is one full frame: status, l2status, len, payload..., crc...
	idx       int
	delays    int
}

func (f *fakePlatform) Init() error   { return nil }
func (f *fakePlatform) Deinit() error { return nil }
func (f *fakePlatform) CSNLow() error { f.csn = true; return nil }
func (f *fakePlatform) CSNHigh() error {
	f.csn = false
	return nil
}

func (f *fakePlatform) Transfer(buf []byte, offset, length int, timeout time.Duration) error {
	if f.idx >= len(f.responses) {
		// no response pending: chip READY, second status byte 0xFF
		if offset == 0 && length == 1 {
			buf[0] = ChipModeReady
		}
		if offset == 1 && length == 2 {
			buf[1] = 0xFF
			buf[2] = 0
		}
		return nil
	}
	resp := f.responses[f.idx]
	switch {
	case offset == 0 && length == 1:
		buf[0] = resp[0]
	case offset == 1 && length == 2:
		buf[1] = resp[1]
		buf[2] = resp[2]
	default:
		copy(buf[offset:offset+length], resp[offset:offset+length])
		f.idx++
	}
	return nil
}

func (f *fakePlatform) Delay(d time.Duration) error { f.delays++; return nil }
func (f *fakePlatform) DelayOnInt(timeout time.Duration) error {
	f.delays++
	return nil
}
func (f *fakePlatform) RandomBytes(buf []byte) error { return nil }
func (f *fakePlatform) Logf(format string, args ...interface{}) {}

func mkFrame(l2status byte, payload []byte) []byte {
	frame := make([]byte, 0, 3+len(payload)+2)
	frame = append(frame, ChipModeReady, l2status, byte(len(payload)))
	frame = append(frame, payload...)
	frame = append(frame, 0, 0) // CRC not validated by L1
	return frame
}

func TestFramerReadsSingleFrame(t *testing.T) {
	p := &fakePlatform{responses: [][]byte{mkFrame(0x02, []byte{1, 2, 3})}}
	fr, err := NewFramer(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, MaxFrameSize)
	n, err := fr.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3+3+2 {
		t.Fatalf("expected %d bytes, got %d", 3+3+2, n)
	}
	if buf[1] != 0x02 || buf[2] != 3 {
		t.Fatalf("unexpected header: %v", buf[:3])
	}
}

// pendingThenReady simulates the device reporting READY with no response
// queued yet for a couple of probes, then delivering the frame.
type pendingThenReady struct {
	fakePlatform
	notReadyRounds int
}

func (p *pendingThenReady) Transfer(buf []byte, offset, length int, timeout time.Duration) error {
	if offset == 1 && length == 2 && p.notReadyRounds > 0 {
		p.notReadyRounds--
		buf[1] = 0xFF
		buf[2] = 0
		return nil
	}
	return p.fakePlatform.Transfer(buf, offset, length, timeout)
}

func TestFramerRetriesOnNotReady(t *testing.T) {
	p := &pendingThenReady{
		fakePlatform:   fakePlatform{responses: [][]byte{mkFrame(0x02, []byte{9})}},
		notReadyRounds: 2,
	}
	fr, err := NewFramer(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, MaxFrameSize)
	n, err := fr.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3+1+2 {
		t.Fatalf("expected %d bytes, got %d", 3+1+2, n)
	}
	if p.delays != 2 {
		t.Fatalf("expected 2 retry delays, got %d", p.delays)
	}
}

func TestFramerAlarmMode(t *testing.T) {
	p := &fakePlatform{responses: [][]byte{{ChipModeAlarm, 0, 0, 0, 0}}}
	fr, _ := NewFramer(p, DefaultConfig())
	buf := make([]byte, MaxFrameSize)
	_, err := fr.Read(buf)
	if err == nil {
		t.Fatal("expected alarm error")
	}
}

func TestFramerChipBusyAfterMaxTries(t *testing.T) {
	p := &fakePlatform{} // never has a response pending
	cfg := DefaultConfig()
	cfg.ReadMaxTries = 3
	fr, _ := NewFramer(p, cfg)
	buf := make([]byte, MaxFrameSize)
	_, err := fr.Read(buf)
	if !errs.IsKind(err, errs.ChipBusy) {
		t.Fatalf("expected chip busy error, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProbeTimeout = 1 * time.Millisecond
	if _, err := NewFramer(&fakePlatform{}, cfg); err == nil {
		t.Fatal("expected validation error for too-small probe timeout")
	}
}

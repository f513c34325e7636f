package session

import (
	"testing"
	"time"

	"github.com/vpilat/libtropic-go/cryptocap"
	"github.com/vpilat/libtropic-go/cryptocap/mock"
	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/l1"
	"github.com/vpilat/libtropic-go/l2"
)

func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ 0xA001
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

func mkFrame(status byte, payload []byte) []byte {
	frame := make([]byte, 0, 3+len(payload)+2)
	frame = append(frame, l1.ChipModeReady, status, byte(len(payload)))
	frame = append(frame, payload...)
	crc := crc16(frame[1:])
	frame = append(frame, byte(crc), byte(crc>>8))
	return frame
}

// fixedRNG is a deterministic, seed-derived RandomSource so the handshake
// test doesn't depend on real entropy.
type fixedRNG struct{ seed byte }

func (r fixedRNG) RandomBytes(buf []byte) error {
	for i := range buf {
		buf[i] = r.seed ^ byte(i)
	}
	return nil
}

// deviceSim plays the TROPIC01 side of the Noise_KK1 handshake against a
// real session.Start call, so the test exercises the actual key schedule
// end to end rather than asserting against golden bytes.
type deviceSim struct {
	provider   cryptocap.Provider
	etpriv     [32]byte
	stpriv     [32]byte
	stpub      [32]byte
	shipub     [32]byte
	queued     []byte
	corruptTag bool
}

func (d *deviceSim) Init() error   { return nil }
func (d *deviceSim) Deinit() error { return nil }
func (d *deviceSim) CSNLow() error { return nil }
func (d *deviceSim) CSNHigh() error {
	return nil
}
func (d *deviceSim) Delay(t time.Duration) error            { return nil }
func (d *deviceSim) DelayOnInt(t time.Duration) error       { return nil }
func (d *deviceSim) RandomBytes(buf []byte) error           { return nil }
func (d *deviceSim) Logf(format string, args ...interface{}) {}

func (d *deviceSim) Transfer(buf []byte, offset, length int, timeout time.Duration) error {
	switch {
	case offset == 0 && length == 1:
		buf[0] = l1.ChipModeReady
	case offset == 1 && length == 2:
		buf[1] = d.queued[1]
		buf[2] = d.queued[2]
	case offset == 3:
		copy(buf[3:3+length], d.queued[3:3+length])
		d.queued = nil
	default:
		id := buf[0]
		plen := int(buf[1])
		payload := append([]byte(nil), buf[2:2+plen]...)
		d.handleRequest(id, payload)
	}
	return nil
}

func (d *deviceSim) handleRequest(id byte, payload []byte) {
	if id != l2.ReqHandshake {
		d.queued = mkFrame(l2.StatusGenErr, nil)
		return
	}
	var ehpub [32]byte
	copy(ehpub[:], payload[:32])
	index := payload[32]

	name := namePadded()
	h := sha256Of(d.provider, name[:])
	h = sha256Of(d.provider, h[:], d.shipub[:])
	h = sha256Of(d.provider, h[:], d.stpub[:])

	etpub, _ := d.provider.X25519Base(d.etpriv)

	h = sha256Of(d.provider, h[:], ehpub[:])
	h = sha256Of(d.provider, h[:], []byte{index})
	h = sha256Of(d.provider, h[:], etpub[:])

	ck := namePadded()
	dh1, _ := d.provider.X25519(d.etpriv, ehpub) // == X25519(ehpriv, etpub)
	ck, _, _ = d.provider.HKDF(ck[:], dh1[:], 1)

	dh2, _ := d.provider.X25519(d.etpriv, d.shipub) // == X25519(shipriv, etpub)
	ck, _, _ = d.provider.HKDF(ck[:], dh2[:], 1)

	dh3, _ := d.provider.X25519(d.stpriv, ehpub) // == X25519(ehpriv, stpub)
	var kauth [32]byte
	ck, kauth, _ = d.provider.HKDF(ck[:], dh3[:], 2)

	authEnc, _ := d.provider.AESGCMEncryptInit(kauth[:])
	tag, _ := authEnc.Seal([12]byte{}, h[:], nil)
	if d.corruptTag {
		tag[0] ^= 0xFF
	}

	resp := append(append([]byte{}, etpub[:]...), tag...)
	d.queued = mkFrame(l2.StatusRequestOK, resp)
}

func newHandshakeFixture(t *testing.T, corruptTag bool) (*l2.Transceiver, cryptocap.Provider, Params, fixedRNG) {
	t.Helper()
	provider := mock.New()
	shipriv, shipub := mock.FixedKeyPair(0x11)
	stpriv, stpub := mock.FixedKeyPair(0x22)
	etpriv, _ := mock.FixedKeyPair(0x33)

	dev := &deviceSim{
		provider:   provider,
		etpriv:     etpriv,
		stpriv:     stpriv,
		stpub:      stpub,
		shipub:     shipub,
		corruptTag: corruptTag,
	}
	fr, err := l1.NewFramer(dev, l1.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	tr := l2.NewTransceiver(fr)
	params := Params{Shipriv: shipriv, Shipub: shipub, Stpub: stpub, Index: SH0}
	return tr, provider, params, fixedRNG{seed: 0x44}
}

func TestHandshakeSucceeds(t *testing.T) {
	tr, provider, params, rng := newHandshakeFixture(t, false)
	sess, err := Start(tr, provider, rng, params)
	if err != nil {
		t.Fatal(err)
	}
	if !sess.Active() {
		t.Fatal("expected session to be active after handshake")
	}
}

func TestHandshakeRejectsBadAuthTag(t *testing.T) {
	tr, provider, params, rng := newHandshakeFixture(t, true)
	_, err := Start(tr, provider, rng, params)
	if !errs.IsKind(err, errs.L2HandshakeErr) {
		t.Fatalf("expected L2HandshakeErr, got %v", err)
	}
}

func TestAbortIsIdempotent(t *testing.T) {
	tr, provider, params, rng := newHandshakeFixture(t, false)
	sess, err := Start(tr, provider, rng, params)
	if err != nil {
		t.Fatal(err)
	}
	if err := Abort(tr, sess); err != nil {
		t.Fatal(err)
	}
	if sess.Active() {
		t.Fatal("expected session inactive after abort")
	}
	if err := Abort(tr, sess); err != nil {
		t.Fatal(err)
	}
	if sess.Active() {
		t.Fatal("expected session to stay inactive after a second abort")
	}
}

package mock

import (
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/vpilat/libtropic-go/cryptocap/stdcrypto"
	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/l1"
	"github.com/vpilat/libtropic-go/l2"
	"github.com/vpilat/libtropic-go/l3"
	"github.com/vpilat/libtropic-go/proto"
	"github.com/vpilat/libtropic-go/session"
)

// fixedRNG hands out deterministic bytes so host-side ephemeral keys are
// reproducible across test runs.
type fixedRNG struct{ seed byte }

func (r fixedRNG) RandomBytes(buf []byte) error {
	for i := range buf {
		buf[i] = r.seed ^ byte(i*13+1)
	}
	return nil
}

// openSession drives a full l1/l2/l3/session stack against a fresh Device
// with a pairing key pre-provisioned at SH0, returning the engine ready
// for command traffic.
func openSession(t *testing.T) (*Device, *l3.Engine, *l3.Session) {
	t.Helper()
	dev := NewDevice()
	provider := stdcrypto.New()

	var shipriv [32]byte
	for i := range shipriv {
		shipriv[i] = byte(i + 5)
	}
	shipub, err := provider.X25519Base(shipriv)
	if err != nil {
		t.Fatal(err)
	}
	dev.ProvisionPairingKey(0, shipub)

	plat := NewPlatform(dev)
	fr, err := l1.NewFramer(plat, l1.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	tr := l2.NewTransceiver(fr)

	sess, err := session.Start(tr, provider, fixedRNG{seed: 0x9A}, session.Params{
		Shipriv: shipriv,
		Shipub:  shipub,
		Stpub:   dev.Stpub,
		Index:   session.SH0,
	})
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	return dev, l3.NewEngine(tr), sess
}

func doCmd(t *testing.T, eng *l3.Engine, sess *l3.Session, cmd byte, args []byte, expectedRespSize int) (byte, []byte) {
	t.Helper()
	req := append([]byte{cmd}, args...)
	if err := eng.Send(sess, req); err != nil {
		t.Fatalf("send: %v", err)
	}
	plain, err := eng.Receive(sess, expectedRespSize)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	return plain[0], plain[1:]
}

func TestHandshakeAndPingRoundTrip(t *testing.T) {
	_, eng, sess := openSession(t)
	msg := []byte("hello tropic01")
	result, out := doCmd(t, eng, sess, proto.CmdPing, msg, 1+len(msg))
	if result != proto.ResultOK {
		t.Fatalf("unexpected result 0x%02X", result)
	}
	if string(out) != string(msg) {
		t.Fatalf("ping echo mismatch: got %q want %q", out, msg)
	}
}

func TestPairingKeyLifecycle(t *testing.T) {
	_, eng, sess := openSession(t)
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}
	writeArgs := append([]byte{1, 0, 0, 0}, key[:]...)
	result, _ := doCmd(t, eng, sess, proto.CmdPairingKeyWrite, writeArgs, 1)
	if result != proto.ResultOK {
		t.Fatalf("write: unexpected result 0x%02X", result)
	}

	result, out := doCmd(t, eng, sess, proto.CmdPairingKeyRead, []byte{1, 0}, 1+3+32)
	if result != proto.ResultOK || string(out[3:]) != string(key[:]) {
		t.Fatalf("read mismatch: result=0x%02X out=%v", result, out)
	}

	result, _ = doCmd(t, eng, sess, proto.CmdPairingKeyInvalidate, []byte{1, 0}, 1)
	if result != proto.ResultOK {
		t.Fatalf("invalidate: unexpected result 0x%02X", result)
	}
	result, _ = doCmd(t, eng, sess, proto.CmdPairingKeyRead, []byte{1, 0}, -1)
	if result != proto.ResultSlotInvalid {
		t.Fatalf("expected SLOT_INVALID after invalidate, got 0x%02X", result)
	}
}

func TestRMemWriteReadEraseLifecycle(t *testing.T) {
	_, eng, sess := openSession(t)
	data := []byte{1, 2, 3, 4, 5}
	writeArgs := append([]byte{7, 0, 0, 0}, data...)
	result, _ := doCmd(t, eng, sess, proto.CmdRMemDataWrite, writeArgs, 1)
	if result != proto.ResultOK {
		t.Fatalf("write: 0x%02X", result)
	}

	result, _ = doCmd(t, eng, sess, proto.CmdRMemDataWrite, writeArgs, -1)
	if result != proto.ResultSlotNotEmpty {
		t.Fatalf("expected SLOT_NOT_EMPTY on rewrite, got 0x%02X", result)
	}

	result, out := doCmd(t, eng, sess, proto.CmdRMemDataRead, []byte{7, 0}, 1+3+len(data))
	if result != proto.ResultOK || string(out[3:]) != string(data) {
		t.Fatalf("read mismatch: result=0x%02X out=%v", result, out)
	}

	result, _ = doCmd(t, eng, sess, proto.CmdRMemDataErase, []byte{7, 0}, 1)
	if result != proto.ResultOK {
		t.Fatalf("erase: 0x%02X", result)
	}
	result, _ = doCmd(t, eng, sess, proto.CmdRMemDataRead, []byte{7, 0}, -1)
	if result != proto.ResultSlotEmpty {
		t.Fatalf("expected SLOT_EMPTY after erase, got 0x%02X", result)
	}
}

func TestMCounterLifecycle(t *testing.T) {
	_, eng, sess := openSession(t)
	initArgs := []byte{3, 0, 0, 0, 2, 0, 0, 0} // index=3, value=2
	result, _ := doCmd(t, eng, sess, proto.CmdMCounterInit, initArgs, 1)
	if result != proto.ResultOK {
		t.Fatalf("init: 0x%02X", result)
	}
	for i := 0; i < 2; i++ {
		result, _ = doCmd(t, eng, sess, proto.CmdMCounterUpdate, []byte{3, 0}, -1)
		if result != proto.ResultOK {
			t.Fatalf("update %d: 0x%02X", i, result)
		}
	}
	result, _ = doCmd(t, eng, sess, proto.CmdMCounterUpdate, []byte{3, 0}, -1)
	if result != proto.ResultUpdateErr {
		t.Fatalf("expected UPDATE_ERR after exhausting counter, got 0x%02X", result)
	}
}

func TestEdDSASignVerifies(t *testing.T) {
	_, eng, sess := openSession(t)
	genArgs := []byte{4, 0, proto.CurveEd25519}
	result, _ := doCmd(t, eng, sess, proto.CmdECCKeyGenerate, genArgs, -1)
	if result != proto.ResultOK {
		t.Fatalf("generate: 0x%02X", result)
	}

	readArgs := []byte{4, 0}
	result, out := doCmd(t, eng, sess, proto.CmdECCKeyRead, readArgs, -1)
	if result != proto.ResultOK {
		t.Fatalf("read: 0x%02X", result)
	}
	pub := out[15:47]

	msg := []byte("sign me")
	signArgs := append(append([]byte{4, 0}, make([]byte, 13)...), msg...)
	result, sig := doCmd(t, eng, sess, proto.CmdEdDSASign, signArgs, -1)
	if result != proto.ResultOK {
		t.Fatalf("sign: 0x%02X", result)
	}
	rs := sig[15:]
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, rs) {
		t.Fatal("signature does not verify")
	}
}

func TestHardwareFailInjection(t *testing.T) {
	dev, eng, sess := openSession(t)
	dev.HardwareFailOn = proto.CmdPairingKeyWrite
	writeArgs := append([]byte{2, 0, 0, 0}, make([]byte, 32)...)
	result, _ := doCmd(t, eng, sess, proto.CmdPairingKeyWrite, writeArgs, -1)
	if result != proto.ResultHardwareFail {
		t.Fatalf("expected HARDWARE_FAIL, got 0x%02X", result)
	}
	if !sess.Active() {
		t.Fatal("session should stay active after a device-level HARDWARE_FAIL")
	}
}

// corruptingPlatform wraps a Platform and flips the last CRC byte of
// every response it serves, simulating line noise on the way back from
// the device — scenario F's no-retry half.
type corruptingPlatform struct {
	*Platform
}

func (c *corruptingPlatform) Transfer(buf []byte, offset, length int, timeout time.Duration) error {
	if err := c.Platform.Transfer(buf, offset, length, timeout); err != nil {
		return err
	}
	if offset == 3 && c.Platform.queued == nil {
		// the payload+crc transfer just consumed and cleared queued;
		// buf now holds the corrupted-in-transit bytes.
		buf[offset+length-1] ^= 0xFF
	}
	return nil
}

func TestCorruptedResponseCRCWithoutRetry(t *testing.T) {
	dev := NewDevice()
	cp := &corruptingPlatform{Platform: NewPlatform(dev)}
	fr, err := l1.NewFramer(cp, l1.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	tr := l2.NewTransceiver(fr)
	tr.Resend = false

	if _, err := tr.Do(l2.ReqGetInfo, []byte{infoRiscvFwVersion}); !errs.IsKind(err, errs.L2InCRC) {
		t.Fatalf("expected L2InCRC, got %v", err)
	}
}

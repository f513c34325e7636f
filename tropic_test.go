package tropic

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/vpilat/libtropic-go/cryptocap/stdcrypto"
	"github.com/vpilat/libtropic-go/platform/mock"
)

// fixedRNG hands out deterministic bytes for the host's ephemeral
// handshake key, so tests are reproducible.
type fixedRNG struct{ seed byte }

func (r fixedRNG) RandomBytes(buf []byte) error {
	for i := range buf {
		buf[i] = r.seed ^ byte(i*13+1)
	}
	return nil
}

// openHandle wires a Handle to a fresh mock Device with a pairing key
// provisioned at SH0, and starts a secure session ready for command
// traffic.
func openHandle(t *testing.T) (*mock.Device, *Handle) {
	t.Helper()
	dev := mock.NewDevice()
	provider := stdcrypto.New()

	var shipriv [32]byte
	for i := range shipriv {
		shipriv[i] = byte(i + 9)
	}
	shipub, err := provider.X25519Base(shipriv)
	if err != nil {
		t.Fatal(err)
	}
	dev.ProvisionPairingKey(0, shipub)

	h := &Handle{Provider: provider}
	cfg := DefaultConfig()
	cfg.Logger = nil
	if err := h.Init(mock.NewPlatform(dev), cfg); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := h.StartSecureSession(shipriv, shipub, dev.Stpub, SH0); err != nil {
		t.Fatalf("start secure session: %v", err)
	}
	return dev, h
}

func TestInitDeinitLifecycle(t *testing.T) {
	dev := mock.NewDevice()
	h := New()
	if _, err := h.Ping([]byte("x")); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized before Init, got %v", err)
	}
	if err := h.Init(mock.NewPlatform(dev), DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if err := h.Init(mock.NewPlatform(dev), DefaultConfig()); err != ErrAlreadyInitialized {
		t.Fatalf("expected ErrAlreadyInitialized on double Init, got %v", err)
	}
	if err := h.Deinit(); err != nil {
		t.Fatal(err)
	}
	if err := h.Deinit(); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized on double Deinit, got %v", err)
	}
}

// TestAttributesFromFirmwareVersion exercises scenario A: Init probes
// the device's RISC-V firmware version and derives
// Attributes.RMemUDataSlotSizeMax from it — 475 at firmware >= 2.0.0, 444
// below that.
func TestAttributesFromFirmwareVersion(t *testing.T) {
	dev := mock.NewDevice()
	dev.FirmwareVersion = [4]byte{0x00, 0x00, 0x00, 0x02}
	h := New()
	if err := h.Init(mock.NewPlatform(dev), DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if h.Attributes.RMemUDataSlotSizeMax != 475 {
		t.Fatalf("firmware 2.0.0: got %d, want 475", h.Attributes.RMemUDataSlotSizeMax)
	}

	dev2 := mock.NewDevice()
	dev2.FirmwareVersion = [4]byte{0x00, 0x00, 0x00, 0x01}
	h2 := New()
	if err := h2.Init(mock.NewPlatform(dev2), DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if h2.Attributes.RMemUDataSlotSizeMax != 444 {
		t.Fatalf("firmware 1.0.0: got %d, want 444", h2.Attributes.RMemUDataSlotSizeMax)
	}
}

func TestPingRoundTrip(t *testing.T) {
	_, h := openHandle(t)
	out, err := h.Ping([]byte("hello tropic"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != "hello tropic" {
		t.Fatalf("echo mismatch: %q", out)
	}
}

func TestVerifyChipAndStartSecureSession(t *testing.T) {
	dev := mock.NewDevice()
	provider := stdcrypto.New()
	var shipriv [32]byte
	for i := range shipriv {
		shipriv[i] = byte(i + 3)
	}
	shipub, _ := provider.X25519Base(shipriv)
	dev.ProvisionPairingKey(0, shipub)

	h := &Handle{Provider: provider}
	if err := h.Init(mock.NewPlatform(dev), DefaultConfig()); err != nil {
		t.Fatal(err)
	}
	if err := h.VerifyChipAndStartSecureSession(shipriv, shipub, SH0); err != nil {
		t.Fatalf("verify+start: %v", err)
	}
	if !h.SecureSessionActive() {
		t.Fatal("expected an active secure session")
	}
	stpub, err := h.CertStore.DeviceStaticPublicKey()
	if err != nil {
		t.Fatal(err)
	}
	if stpub != dev.Stpub {
		t.Fatal("recovered stpub does not match device's")
	}
}

func TestSessionAbortIsIdempotent(t *testing.T) {
	_, h := openHandle(t)
	if err := h.AbortSecureSession(); err != nil {
		t.Fatal(err)
	}
	if h.SecureSessionActive() {
		t.Fatal("session should be inactive after abort")
	}
	if err := h.AbortSecureSession(); err != nil {
		t.Fatalf("second abort should be a harmless no-op, got %v", err)
	}
	if _, err := h.Ping([]byte("x")); err != ErrNoSecureSession {
		t.Fatalf("expected ErrNoSecureSession after abort, got %v", err)
	}
}

func TestPairingKeyLifecycleThroughHandle(t *testing.T) {
	_, h := openHandle(t)
	var key [32]byte
	for i := range key {
		key[i] = byte(i * 3)
	}
	if err := h.PairingKeyWrite(SH1, key); err != nil {
		t.Fatal(err)
	}
	got, err := h.PairingKeyRead(SH1)
	if err != nil {
		t.Fatal(err)
	}
	if got != key {
		t.Fatal("read key does not match written key")
	}
	if err := h.PairingKeyInvalidate(SH1); err != nil {
		t.Fatal(err)
	}
	if _, err := h.PairingKeyRead(SH1); err == nil {
		t.Fatal("expected an error reading an invalidated slot")
	}
}

func TestRMemExhaustiveSlotRange(t *testing.T) {
	_, h := openHandle(t)
	for slot := RMemSlot(0); slot < 512; slot++ {
		data := []byte{byte(slot), byte(slot >> 8)}
		if err := h.RMemDataWrite(slot, data); err != nil {
			t.Fatalf("slot %d write: %v", slot, err)
		}
		got, err := h.RMemDataRead(slot)
		if err != nil {
			t.Fatalf("slot %d read: %v", slot, err)
		}
		if string(got) != string(data) {
			t.Fatalf("slot %d mismatch: got %v want %v", slot, got, data)
		}
		if err := h.RMemDataErase(slot); err != nil {
			t.Fatalf("slot %d erase: %v", slot, err)
		}
		if _, err := h.RMemDataRead(slot); err == nil {
			t.Fatalf("slot %d: expected error reading after erase", slot)
		}
	}
}

func TestECCP256GenerateAndSignVerifies(t *testing.T) {
	_, h := openHandle(t)
	if err := h.ECCKeyGenerate(7, CurveP256); err != nil {
		t.Fatal(err)
	}
	curve, pub, err := h.ECCKeyRead(7)
	if err != nil {
		t.Fatal(err)
	}
	if curve != CurveP256 || len(pub) != 64 {
		t.Fatalf("unexpected key: curve=%v len=%d", curve, len(pub))
	}
	var x, y big.Int
	x.SetBytes(pub[:32])
	y.SetBytes(pub[32:])
	pk := &ecdsa.PublicKey{Curve: elliptic.P256(), X: &x, Y: &y}

	digest := sha256.Sum256([]byte("sign me please"))
	r, s, err := h.ECDSASign(7, digest)
	if err != nil {
		t.Fatal(err)
	}
	var rb, sb big.Int
	rb.SetBytes(r[:])
	sb.SetBytes(s[:])
	if !ecdsa.Verify(pk, digest[:], &rb, &sb) {
		t.Fatal("signature does not verify")
	}
}

func TestMCounterExhaustion(t *testing.T) {
	_, h := openHandle(t)
	if err := h.MCounterInit(1, 3); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := h.MCounterUpdate(1); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if err := h.MCounterUpdate(1); err == nil {
		t.Fatal("expected an error once the counter is exhausted")
	}
}

// TestMACAndDestroyPINChain exercises scenario D's bounded-attempt PIN
// check: each wrong guess burns one slot in the chain, and the chain
// running out is indistinguishable from a correct guess at an
// already-destroyed slot — both report SlotEmpty.
func TestMACAndDestroyPINChain(t *testing.T) {
	dev, h := openHandle(t)
	var pin [32]byte
	copy(pin[:], []byte("correct-pin-data-padded-to-32-b"))

	const attempts = 12
	for i := uint16(0); i < attempts; i++ {
		var key [32]byte
		key[0] = byte(i + 1)
		dev.ProvisionMacSlot(i, key)
	}

	for attempt := uint16(0); attempt < attempts-1; attempt++ {
		var wrongPin [32]byte
		copy(wrongPin[:], []byte("wrong-guess"))
		if _, err := h.MACAndDestroy(MACDestroySlot(attempt), wrongPin); err != nil {
			t.Fatalf("attempt %d: %v", attempt, err)
		}
		// The slot is now destroyed; a second use of the same slot
		// always reports SlotEmpty, matching a consumed PIN attempt.
		if _, err := h.MACAndDestroy(MACDestroySlot(attempt), pin); err == nil {
			t.Fatalf("attempt %d: expected SlotEmpty reusing a destroyed slot", attempt)
		}
	}
	// The final slot in the chain still works once.
	if _, err := h.MACAndDestroy(MACDestroySlot(attempts-1), pin); err != nil {
		t.Fatalf("final attempt: %v", err)
	}
}

func TestHardwareFailDoesNotInvalidateSession(t *testing.T) {
	dev, h := openHandle(t)
	dev.HardwareFailOn = 0x10 // CmdPairingKeyWrite
	var key [32]byte
	if err := h.PairingKeyWrite(SH1, key); err == nil {
		t.Fatal("expected a HARDWARE_FAIL error")
	}
	if !h.SecureSessionActive() {
		t.Fatal("a device-level HARDWARE_FAIL must not tear down the secure session")
	}
}

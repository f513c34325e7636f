// Package session implements the Noise_KK1_25519_AESGCM_SHA256 handshake
// that stands up a secure session, and its abort path. It produces an
// *l3.Session carrying the installed encrypt/decrypt keys; everything
// after that point is package l3's concern.
package session

import (
	"github.com/op/go-logging"

	"github.com/vpilat/libtropic-go/cryptocap"
	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/l2"
	"github.com/vpilat/libtropic-go/l3"
)

var log = logging.MustGetLogger("tropic/session")

// protocolName is padded with zero bytes to 32 bytes — Noise's rule for a
// protocol name shorter than the hash output length.
const protocolName = "Noise_KK1_25519_AESGCM_SHA256"

func namePadded() [32]byte {
	var b [32]byte
	copy(b[:], protocolName)
	return b
}

// PairingKeyIndex selects which of the device's four pairing-key slots
// (SH0..SH3) authenticates this handshake.
type PairingKeyIndex byte

const (
	SH0 PairingKeyIndex = iota
	SH1
	SH2
	SH3
)

// RandomSource supplies the ephemeral private key's entropy. Satisfied by
// l1.Platform and by platform/mock.
type RandomSource interface {
	RandomBytes(buf []byte) error
}

// Params bundles the long-term key material a handshake needs: the host's
// pairing keypair, the device's static public key (sliced from its
// certificate by the caller — package session does no certificate
// parsing), and which pairing-key slot to authenticate with.
type Params struct {
	Shipriv [32]byte
	Shipub  [32]byte
	Stpub   [32]byte
	Index   PairingKeyIndex
}

func sha256Of(provider cryptocap.Provider, chunks ...[]byte) [32]byte {
	h := provider.NewSHA256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum()
}

// Start runs the handshake over tr using provider for the primitives and
// rng for the ephemeral keypair's entropy, and returns an *l3.Session with
// encrypt/decrypt keys installed (spec.md §4.6).
func Start(tr *l2.Transceiver, provider cryptocap.Provider, rng RandomSource, params Params) (*l3.Session, error) {
	// Step 1-3: transcript hash seeded with the protocol name, then the
	// host's and device's static public keys.
	name := namePadded()
	h := sha256Of(provider, name[:])
	h = sha256Of(provider, h[:], params.Shipub[:])
	h = sha256Of(provider, h[:], params.Stpub[:])

	// Step 4: ephemeral keypair.
	var ehpriv [32]byte
	defer zero(ehpriv[:])
	if err := rng.RandomBytes(ehpriv[:]); err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake rng: %v", err)
	}
	ehpub, err := provider.X25519Base(ehpriv)
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake ephemeral pubkey: %v", err)
	}

	// Step 5: HANDSHAKE_REQ / HANDSHAKE_RSP.
	req := make([]byte, 0, 33)
	req = append(req, ehpub[:]...)
	req = append(req, byte(params.Index))
	resp, err := tr.Do(l2.ReqHandshake, req)
	if err != nil {
		return nil, err
	}
	if serr := l2.StatusErr(resp.L2Status); serr != nil {
		return nil, serr
	}
	if len(resp.Payload) != 32+16 {
		return nil, errs.New(errs.L2HandshakeErr)
	}
	var etpub [32]byte
	var authTag [16]byte
	copy(etpub[:], resp.Payload[:32])
	copy(authTag[:], resp.Payload[32:])

	// Step 6.
	h = sha256Of(provider, h[:], ehpub[:])
	h = sha256Of(provider, h[:], []byte{byte(params.Index)})
	h = sha256Of(provider, h[:], etpub[:])

	// Step 7: three DH + HKDF steps folding ck forward.
	ck := namePadded()
	var dh1, dh2, dh3 [32]byte
	var kauth [32]byte
	defer func() { zero(dh1[:]); zero(dh2[:]); zero(dh3[:]); zero(kauth[:]); zero(ck[:]) }()

	dh1, err = provider.X25519(ehpriv, etpub)
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake dh1: %v", err)
	}
	ck, _, err = provider.HKDF(ck[:], dh1[:], 1)
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake hkdf1: %v", err)
	}

	dh2, err = provider.X25519(params.Shipriv, etpub)
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake dh2: %v", err)
	}
	ck, _, err = provider.HKDF(ck[:], dh2[:], 1)
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake hkdf2: %v", err)
	}

	dh3, err = provider.X25519(ehpriv, params.Stpub)
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake dh3: %v", err)
	}
	ck, kauth, err = provider.HKDF(ck[:], dh3[:], 2)
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake hkdf3: %v", err)
	}

	// Step 8: derive the session's command/response keys.
	kcmd, kres, err := provider.HKDF(ck[:], nil, 2)
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake hkdf4: %v", err)
	}
	defer func() { zero(kcmd[:]); zero(kres[:]) }()

	// Step 9: authenticate the handshake by decrypting the empty-plaintext
	// auth tag under kauth with AAD=h.
	authDec, err := provider.AESGCMDecryptInit(kauth[:])
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "handshake auth context: %v", err)
	}
	if _, err := authDec.Open([12]byte{}, h[:], authTag[:]); err != nil {
		return nil, errs.New(errs.L2HandshakeErr)
	}

	// Step 10: install keys.
	enc, err := provider.AESGCMEncryptInit(kcmd[:])
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "install encrypt key: %v", err)
	}
	dec, err := provider.AESGCMDecryptInit(kres[:])
	if err != nil {
		return nil, errs.Withf(errs.CryptoErr, "install decrypt key: %v", err)
	}

	sess := &l3.Session{}
	sess.Install(enc, dec)
	log.Noticef("secure session established (pairing slot %d)", params.Index)
	return sess, nil
}

// Abort sends ENCRYPTED_SESSION_ABT_REQ and invalidates sess regardless of
// the device's response, matching spec.md §4.6's abort contract and the
// idempotence property (two consecutive aborts both succeed).
func Abort(tr *l2.Transceiver, sess *l3.Session) error {
	_, _ = tr.Do(l2.ReqEncryptedSessionAbort, nil)
	sess.Invalidate()
	log.Debug("secure session abort requested")
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

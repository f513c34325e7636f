package tropic

import (
	"github.com/vpilat/libtropic-go/l2"
	"github.com/vpilat/libtropic-go/session"
)

// PairingKeyIndex re-exports session.PairingKeyIndex so callers never
// need to import package session directly.
type PairingKeyIndex = session.PairingKeyIndex

const (
	SH0 = session.SH0
	SH1 = session.SH1
	SH2 = session.SH2
	SH3 = session.SH3
)

// StartSecureSession runs the Noise_KK1_25519_AESGCM_SHA256 handshake
// against an already-known device static public key, authenticating with
// the pairing keypair (shipriv, shipub) at slot index. Most callers want
// VerifyChipAndStartSecureSession instead, which reads stpub off the
// device first.
func (h *Handle) StartSecureSession(shipriv, shipub, stpub [32]byte, index PairingKeyIndex) error {
	if err := h.requireInit(); err != nil {
		return err
	}
	sess, err := session.Start(h.transceiver, h.Provider, h.framer.Platform, session.Params{
		Shipriv: shipriv,
		Shipub:  shipub,
		Stpub:   stpub,
		Index:   index,
	})
	if err != nil {
		return err
	}
	*h.session = *sess
	return nil
}

// VerifyChipAndStartSecureSession is spec.md §6.5's bootstrap helper: it
// reads the certificate store to recover the device's static public key,
// then starts the handshake. Certificate chain validation itself is out
// of scope (Non-goal); this only extracts STPUB from the fixed offset
// ReadCertStore leaves in h.CertStore.
func (h *Handle) VerifyChipAndStartSecureSession(shipriv, shipub [32]byte, index PairingKeyIndex) error {
	if err := h.requireInit(); err != nil {
		return err
	}
	if err := h.ReadCertStore(); err != nil {
		return err
	}
	stpub, err := h.CertStore.DeviceStaticPublicKey()
	if err != nil {
		return err
	}
	return h.StartSecureSession(shipriv, shipub, stpub, index)
}

// AbortSecureSession sends ENCRYPTED_SESSION_ABT_REQ and clears the local
// session state regardless of the device's response (idempotent: calling
// it with no active session is a no-op).
func (h *Handle) AbortSecureSession() error {
	if err := h.requireInit(); err != nil {
		return err
	}
	if !h.session.Active() {
		return nil
	}
	return session.Abort(h.transceiver, h.session)
}

// doCommand is the shared send/receive path every command in this
// package uses: build a plaintext request (cmd id + args), encrypt and
// chunk it out, pull and decrypt the response, split its result byte
// from the rest.
func (h *Handle) doCommand(cmd byte, args []byte, expectedRespSize int) (byte, []byte, error) {
	if err := h.requireSession(); err != nil {
		return 0, nil, err
	}
	req := make([]byte, 0, 1+len(args))
	req = append(req, cmd)
	req = append(req, args...)
	if err := h.engine.Send(h.session, req); err != nil {
		return 0, nil, err
	}
	plain, err := h.engine.Receive(h.session, expectedRespSize)
	if err != nil {
		return 0, nil, err
	}
	if len(plain) < 1 {
		return 0, nil, l2.StatusErr(l2.StatusGenErr)
	}
	return plain[0], plain[1:], nil
}

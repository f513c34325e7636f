// Package l3 implements the secure-session packet engine: chunking a
// length-prefixed, AES-GCM-encrypted L3 packet across L2 frames in both
// directions, IV bookkeeping, and the size invariants that tie a
// response's declared length to what the command that produced it
// expects. It knows nothing about the handshake that produced its keys
// (package session) or about individual command payloads (the root
// package's command API) — just packets in, packets out.
package l3

import (
	"github.com/op/go-logging"

	"github.com/vpilat/libtropic-go/cryptocap"
	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/l1"
	"github.com/vpilat/libtropic-go/l2"
)

var log = logging.MustGetLogger("tropic/l3")

// Size limits for the L3 packet (spec.md §3): size field (2B) + plaintext
// command body (1B id + up to 4096B data) + AES-GCM tag (16B).
const (
	MaxPlaintext = 1 + 4096
	MaxPacket    = 2 + MaxPlaintext + 16
)

// Session is the negotiated AEAD state for one secure session: separate
// encrypt/decrypt contexts and their IV counters. The session package
// constructs one after a successful handshake; l3 only ever advances or
// zeroises it.
type Session struct {
	Enc    cryptocap.AEADEncryptor
	Dec    cryptocap.AEADDecryptor
	EncIV  [12]byte
	DecIV  [12]byte
	active bool
}

// Active reports whether the session has installed keys.
func (s *Session) Active() bool { return s != nil && s.active }

// Install activates s with the given AEAD contexts and resets both IVs to
// zero, per spec.md §4.6 step 10.
func (s *Session) Install(enc cryptocap.AEADEncryptor, dec cryptocap.AEADDecryptor) {
	s.Enc = enc
	s.Dec = dec
	s.EncIV = [12]byte{}
	s.DecIV = [12]byte{}
	s.active = true
}

// Invalidate zeroises IVs and clears the AEAD contexts. Called on any
// AEAD failure, size-invariant violation, or explicit session abort
// (spec.md §3 invariants, §7 policy).
func (s *Session) Invalidate() {
	if s.active {
		log.Info("secure session invalidated")
	}
	s.Enc = nil
	s.Dec = nil
	s.EncIV = [12]byte{}
	s.DecIV = [12]byte{}
	s.active = false
}

func incIV(iv *[12]byte) {
	for i := range iv {
		iv[i]++
		if iv[i] != 0 {
			return
		}
	}
}

// Engine drives an l2.Transceiver with the chunking and pull policy
// described in spec.md §4.5. buf is its packet scratch space, reused
// across Send/Receive calls rather than reallocated each time.
type Engine struct {
	Transceiver *l2.Transceiver
	buf         []byte
}

// NewEngine returns an Engine bound to tr with its own internally managed
// scratch buffer (config.BufferEmbedded).
func NewEngine(tr *l2.Transceiver) *Engine {
	return &Engine{Transceiver: tr, buf: make([]byte, 0, MaxPacket)}
}

// NewEngineWithBuffer returns an Engine bound to tr whose packet scratch
// space is buf (config.BufferExternal): buf is grown in place and reused
// across calls instead of the Engine allocating its own.
func NewEngineWithBuffer(tr *l2.Transceiver, buf []byte) *Engine {
	return &Engine{Transceiver: tr, buf: buf[:0]}
}

// Send encrypts plaintext (a command id byte followed by its arguments)
// under sess's encrypt key and current IV, then chunks the resulting
// packet across ENCRYPTED_CMD_REQ/_NEXT L2 frames.
func (e *Engine) Send(sess *Session, plaintext []byte) error {
	if !sess.Active() {
		return errs.New(errs.NoSession)
	}
	if len(plaintext) > MaxPlaintext {
		return errs.Withf(errs.BadBufferSize, "l3 plaintext too large: %d > %d", len(plaintext), MaxPlaintext)
	}

	packet := e.buf[:0]
	if cap(packet) < 2+len(plaintext) {
		packet = make([]byte, 0, 2+len(plaintext))
	}
	packet = packet[:2+len(plaintext)]
	packet[0] = byte(len(plaintext))
	packet[1] = byte(len(plaintext) >> 8)
	copy(packet[2:], plaintext)

	ct, err := sess.Enc.Seal(sess.EncIV, nil, packet[2:])
	if err != nil {
		sess.Invalidate()
		return errs.Withf(errs.CryptoErr, "l3 encrypt: %v", err)
	}
	packet = append(packet[:2], ct...)
	e.buf = packet

	id := l2.ReqEncryptedCmd
	for offset := 0; offset < len(packet); {
		end := offset + l1.MaxChunkPayload
		if end > len(packet) {
			end = len(packet)
		}
		resp, err := e.Transceiver.Do(id, packet[offset:end])
		if err != nil {
			sess.Invalidate()
			return err
		}
		if serr := l2.StatusErr(resp.L2Status); serr != nil {
			sess.Invalidate()
			return serr
		}
		switch resp.L2Status {
		case l2.StatusRequestCont:
			// more chunks expected
		case l2.StatusRequestOK:
			if end != len(packet) {
				sess.Invalidate()
				return errs.New(errs.L2GenErr)
			}
		default:
			sess.Invalidate()
			return errs.New(errs.L2StatusNotRecognized)
		}
		offset = end
		id = l2.ReqEncryptedCmdNext
	}

	incIV(&sess.EncIV)
	return nil
}

// Receive pulls the response packet chunk by chunk, decrypts it under
// sess's decrypt key and current IV, and validates that the declared
// plaintext size equals expectedSize (a command-specific invariant the
// caller supplies; pass -1 to skip the check for variable-length
// responses like Random_Value_Get or R_Mem_Data_Read).
func (e *Engine) Receive(sess *Session, expectedSize int) ([]byte, error) {
	if !sess.Active() {
		return nil, errs.New(errs.NoSession)
	}

	packet := e.buf[:0]
	id := l2.ReqEncryptedCmdRes
	for {
		resp, err := e.Transceiver.Do(id, nil)
		if err != nil {
			sess.Invalidate()
			return nil, err
		}
		if serr := l2.StatusErr(resp.L2Status); serr != nil {
			sess.Invalidate()
			return nil, serr
		}
		packet = append(packet, resp.Payload...)
		if resp.L2Status == l2.StatusResultOK {
			break
		}
		if resp.L2Status != l2.StatusResultCont {
			sess.Invalidate()
			return nil, errs.New(errs.L2StatusNotRecognized)
		}
		id = l2.ReqEncryptedCmdResNext
	}
	e.buf = packet

	if len(packet) < 2+16 {
		sess.Invalidate()
		return nil, errs.New(errs.L3ResSizeError)
	}
	size := int(packet[0]) | int(packet[1])<<8
	if 2+size+16 != len(packet) || size > MaxPlaintext {
		sess.Invalidate()
		return nil, errs.New(errs.L3ResSizeError)
	}
	if expectedSize >= 0 && size != expectedSize {
		sess.Invalidate()
		return nil, errs.New(errs.L3ResSizeError)
	}

	ctAndTag := packet[2:]
	plaintext, err := sess.Dec.Open(sess.DecIV, nil, ctAndTag)
	if err != nil {
		sess.Invalidate()
		return nil, errs.Withf(errs.CryptoErr, "l3 decrypt: %v", err)
	}

	incIV(&sess.DecIV)
	return plaintext, nil
}

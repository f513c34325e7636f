// Package stdcrypto implements cryptocap.Provider on top of the Go
// standard library plus golang.org/x/crypto — the same module the teacher
// already depends on (via its go-crypto fork, used there for
// nacl/box) — for the primitives the standard library doesn't carry:
// HKDF and raw X25519 scalar multiplication.
package stdcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"

	"github.com/vpilat/libtropic-go/cryptocap"
)

// Provider is the stdlib/x-crypto backed cryptocap.Provider.
type Provider struct{}

// New returns the standard crypto capability.
func New() Provider { return Provider{} }

type sha256Hash struct {
	h interface {
		io.Writer
		Sum([]byte) []byte
	}
}

func (Provider) NewSHA256() cryptocap.Hash {
	return &sha256Hash{h: sha256.New()}
}

func (s *sha256Hash) Write(p []byte) (int, error) { return s.h.Write(p) }

func (s *sha256Hash) Sum() [32]byte {
	var out [32]byte
	copy(out[:], s.h.Sum(nil))
	return out
}

func (Provider) HMACSHA256(key, msg []byte) [32]byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(msg)
	var out [32]byte
	copy(out[:], mac.Sum(nil))
	return out
}

func (Provider) HKDF(salt, ikm []byte, blocks int) (ck [32]byte, extra [32]byte, err error) {
	if blocks < 1 || blocks > 2 {
		return ck, extra, fmt.Errorf("stdcrypto: HKDF blocks must be 1 or 2, got %d", blocks)
	}
	r := hkdf.New(sha256.New, ikm, salt, nil)
	if _, err = io.ReadFull(r, ck[:]); err != nil {
		return ck, extra, err
	}
	if blocks == 2 {
		if _, err = io.ReadFull(r, extra[:]); err != nil {
			return ck, extra, err
		}
	}
	return ck, extra, nil
}

func (Provider) X25519Base(priv [32]byte) (pub [32]byte, err error) {
	p, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return pub, err
	}
	copy(pub[:], p)
	return pub, nil
}

func (Provider) X25519(priv, peerPub [32]byte) (shared [32]byte, err error) {
	s, err := curve25519.X25519(priv[:], peerPub[:])
	if err != nil {
		return shared, err
	}
	copy(shared[:], s)
	return shared, nil
}

type aesgcmEnc struct{ aead cipher.AEAD }
type aesgcmDec struct{ aead cipher.AEAD }

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func (Provider) AESGCMEncryptInit(key []byte) (cryptocap.AEADEncryptor, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return &aesgcmEnc{aead: aead}, nil
}

func (Provider) AESGCMDecryptInit(key []byte) (cryptocap.AEADDecryptor, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return &aesgcmDec{aead: aead}, nil
}

func (e *aesgcmEnc) Seal(iv [12]byte, aad, plaintext []byte) ([]byte, error) {
	return e.aead.Seal(nil, iv[:], plaintext, aad), nil
}

func (d *aesgcmDec) Open(iv [12]byte, aad, ciphertextAndTag []byte) ([]byte, error) {
	return d.aead.Open(nil, iv[:], ciphertextAndTag, aad)
}

// Package mock provides a cryptocap.Provider for tests. It delegates the
// real math to stdcrypto (there is no point re-implementing AES-GCM or
// X25519 insecurely just to call it a "mock") but gives tests a named,
// zero-configuration entry point and a deterministic RNG-free key
// generator, in the spirit of the teacher's krypto_test.go, which exercises
// real box.Seal/box.Open rather than faking the crypto.
package mock

import (
	"github.com/vpilat/libtropic-go/cryptocap"
	"github.com/vpilat/libtropic-go/cryptocap/stdcrypto"
)

// Provider is a thin alias over the real implementation; tests construct
// it to make clear at the call site that they're in a test context, not to
// get different math.
type Provider struct {
	cryptocap.Provider
}

// New returns a Provider suitable for tests.
func New() Provider {
	return Provider{Provider: stdcrypto.New()}
}

// FixedKeyPair returns a deterministic X25519 keypair derived from seed,
// useful for tests that need the same "random" keys across runs.
func FixedKeyPair(seed byte) (priv, pub [32]byte) {
	for i := range priv {
		priv[i] = seed ^ byte(i)
	}
	priv[0] &= 248
	priv[31] &= 127
	priv[31] |= 64
	p := stdcrypto.New()
	pub, _ = p.X25519Base(priv)
	return priv, pub
}

// Package cryptocap defines the crypto capability the TROPIC01 host stack
// is built against: streaming SHA-256, one-shot HMAC-SHA-256, HKDF(SHA-256),
// X25519 and split-context AES-GCM. The stack never calls a concrete crypto
// library directly — it calls a Provider, the same way the C library
// dispatches through a vtable to mbedTLS/OpenSSL/trezor-crypto. See
// cryptocap/stdcrypto for the real implementation and cryptocap/mock for a
// deterministic test double.
package cryptocap

// Hash is a streaming SHA-256 context, mirroring the
// init/start/update/finish/deinit lifecycle of the capability contract.
// Deinit is folded into Sum, which consumes the context.
type Hash interface {
	Write(p []byte) (int, error)
	Sum() [32]byte
}

// AEADEncryptor is one direction of a split AES-GCM context: a single key
// installed once, then reused across many Seal calls with distinct IVs.
type AEADEncryptor interface {
	// Seal encrypts plaintext with the given 96-bit IV and additional
	// authenticated data, returning ciphertext with an appended 16-byte
	// tag.
	Seal(iv [12]byte, aad, plaintext []byte) ([]byte, error)
}

// AEADDecryptor is the receive-direction counterpart of AEADEncryptor.
type AEADDecryptor interface {
	// Open verifies and decrypts ciphertextAndTag (ciphertext with a
	// trailing 16-byte tag) under the given IV and AAD. It fails closed:
	// any tag mismatch returns an error and no partial plaintext.
	Open(iv [12]byte, aad, ciphertextAndTag []byte) ([]byte, error)
}

// Provider is the full crypto capability surface the protocol stack
// depends on.
type Provider interface {
	NewSHA256() Hash
	HMACSHA256(key, msg []byte) [32]byte

	// HKDF runs HKDF-SHA256 with the given salt and input keying
	// material. blocks selects how many 32-byte output blocks are
	// derived: 1 produces only ck (extra is unused and should be
	// ignored), 2 produces both ck and extra. This is the Noise
	// handshake's "one or two output" HKDF step (spec handshake steps
	// 7-8); unlike the original C API there is no packed
	// length-of-chaining-key byte — Go's fixed-size arrays make the
	// block count explicit at the call site.
	HKDF(salt, ikm []byte, blocks int) (ck [32]byte, extra [32]byte, err error)

	// X25519Base computes the public key for a private scalar (base
	// point multiplication).
	X25519Base(priv [32]byte) (pub [32]byte, err error)
	// X25519 computes the Diffie-Hellman shared secret for priv and a
	// peer's public key.
	X25519(priv, peerPub [32]byte) (shared [32]byte, err error)

	AESGCMEncryptInit(key []byte) (AEADEncryptor, error)
	AESGCMDecryptInit(key []byte) (AEADDecryptor, error)
}

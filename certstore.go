package tropic

// CertStore holds the four certificate-store blocks Get_Info(cert_store)
// returns. Chain validation stays out of scope (spec.md Non-goals); the
// only thing callers need out of it is the device's static public key,
// sliced out at a fixed offset the way original_source's certificate
// reader does, without parsing ASN.1.
type CertStore struct {
	entries   [4][]byte
	populated [4]bool
}

// stpubOffset is where the device's X25519 static public key sits inside
// the first certificate-store block, per original_source's certificate
// layout.
const stpubOffset = 16

func (cs *CertStore) set(index int, data []byte) {
	cs.entries[index] = append([]byte(nil), data...)
	cs.populated[index] = true
}

// Block returns certificate-store block index (0-3) and whether it has
// been read yet.
func (cs *CertStore) Block(index int) ([]byte, bool) {
	if index < 0 || index > 3 {
		return nil, false
	}
	return cs.entries[index], cs.populated[index]
}

// DeviceStaticPublicKey slices STPUB out of block 0. Block 0 must have
// been populated by ReadCertStore first, or this returns
// ErrCertStoreIncomplete.
func (cs *CertStore) DeviceStaticPublicKey() ([32]byte, error) {
	var stpub [32]byte
	if !cs.populated[0] || len(cs.entries[0]) < stpubOffset+32 {
		return stpub, ErrCertStoreIncomplete
	}
	copy(stpub[:], cs.entries[0][stpubOffset:stpubOffset+32])
	return stpub, nil
}

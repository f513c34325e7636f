package tropic

import "github.com/vpilat/libtropic-go/proto"

// ECDSASign signs a pre-hashed 32-byte digest with the P-256 private key
// at slot, returning the signature's R and S components.
func (h *Handle) ECDSASign(slot ECCSlot, hash [32]byte) (r, s [32]byte, err error) {
	args := make([]byte, 0, 15+32)
	args = append(args, byte(slot), byte(slot>>8))
	args = append(args, make([]byte, 13)...)
	args = append(args, hash[:]...)
	result, out, err := h.doCommand(proto.CmdECDSASign, args, 1+15+64)
	if err != nil {
		return r, s, err
	}
	if err := proto.ResultErr(result); err != nil {
		return r, s, err
	}
	copy(r[:], out[15:47])
	copy(s[:], out[47:79])
	return r, s, nil
}

// EdDSASign signs msg with the Ed25519 private key at slot, returning the
// 64-byte R||S signature.
func (h *Handle) EdDSASign(slot ECCSlot, msg []byte) (sig [64]byte, err error) {
	args := make([]byte, 0, 15+len(msg))
	args = append(args, byte(slot), byte(slot>>8))
	args = append(args, make([]byte, 13)...)
	args = append(args, msg...)
	result, out, err := h.doCommand(proto.CmdEdDSASign, args, 1+15+64)
	if err != nil {
		return sig, err
	}
	if err := proto.ResultErr(result); err != nil {
		return sig, err
	}
	copy(sig[:], out[15:])
	return sig, nil
}

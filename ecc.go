package tropic

import (
	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/proto"
)

// ECCSlot identifies one of the device's 32 asymmetric key slots.
type ECCSlot uint16

// Curve selects the elliptic curve an ECC key slot holds.
type Curve byte

const (
	CurveP256    Curve = Curve(proto.CurveP256)
	CurveEd25519 Curve = Curve(proto.CurveEd25519)
)

// ECCKeyGenerate has the device generate a fresh keypair for curve
// in-place at slot; the private key never leaves the device.
func (h *Handle) ECCKeyGenerate(slot ECCSlot, curve Curve) error {
	result, _, err := h.doCommand(proto.CmdECCKeyGenerate, []byte{byte(slot), byte(slot >> 8), byte(curve)}, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

// ECCKeyStore imports an existing private key into slot. key is a
// 32-byte Ed25519 seed or a 32-byte P-256 scalar depending on curve.
func (h *Handle) ECCKeyStore(slot ECCSlot, curve Curve, key [32]byte) error {
	args := make([]byte, 0, 3+12+32)
	args = append(args, byte(slot), byte(slot>>8), byte(curve))
	args = append(args, make([]byte, 12)...)
	args = append(args, key[:]...)
	result, _, err := h.doCommand(proto.CmdECCKeyStore, args, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

// ECCKeyRead returns the public key stored at slot and its curve.
// pub is 64 bytes (X||Y) for P-256 and 32 bytes for Ed25519.
func (h *Handle) ECCKeyRead(slot ECCSlot) (curve Curve, pub []byte, err error) {
	result, out, err := h.doCommand(proto.CmdECCKeyRead, []byte{byte(slot), byte(slot >> 8)}, -1)
	if err != nil {
		return 0, nil, err
	}
	if err := proto.ResultErr(result); err != nil {
		return 0, nil, err
	}
	if len(out) < 15 {
		return 0, nil, errs.New(errs.L3ResSizeError)
	}
	return Curve(out[0]), out[15:], nil
}

// ECCKeyErase clears slot.
func (h *Handle) ECCKeyErase(slot ECCSlot) error {
	result, _, err := h.doCommand(proto.CmdECCKeyErase, []byte{byte(slot), byte(slot >> 8)}, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

package tropic

import "github.com/vpilat/libtropic-go/proto"

// PairingKeyWrite installs pub at the given pairing-key slot. Slots that
// have already been invalidated reject further writes.
func (h *Handle) PairingKeyWrite(slot PairingKeyIndex, pub [32]byte) error {
	args := make([]byte, 0, 4+32)
	args = append(args, byte(slot), 0, 0, 0)
	args = append(args, pub[:]...)
	result, _, err := h.doCommand(proto.CmdPairingKeyWrite, args, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

// PairingKeyRead returns the public half installed at slot.
func (h *Handle) PairingKeyRead(slot PairingKeyIndex) ([32]byte, error) {
	var pub [32]byte
	result, out, err := h.doCommand(proto.CmdPairingKeyRead, []byte{byte(slot), 0}, 1+3+32)
	if err != nil {
		return pub, err
	}
	if err := proto.ResultErr(result); err != nil {
		return pub, err
	}
	copy(pub[:], out[3:])
	return pub, nil
}

// PairingKeyInvalidate permanently disables slot: neither Write nor Read
// succeeds against it afterward, and a handshake can no longer
// authenticate against it.
func (h *Handle) PairingKeyInvalidate(slot PairingKeyIndex) error {
	result, _, err := h.doCommand(proto.CmdPairingKeyInvalidate, []byte{byte(slot), 0}, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

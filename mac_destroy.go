package tropic

import "github.com/vpilat/libtropic-go/proto"

// MACDestroySlot identifies one of the device's 128 destructible PIN
// slots.
type MACDestroySlot uint16

// MACAndDestroy computes HMAC-SHA256(slot_key, dataIn) under the key
// installed at slot and irreversibly consumes the slot: a second call
// against the same slot, win or lose, always reports SlotEmpty. Callers
// implementing a PIN check chain this across several slots to bound the
// number of wrong-guess attempts (spec.md §8 scenario D).
func (h *Handle) MACAndDestroy(slot MACDestroySlot, dataIn [32]byte) (dataOut [32]byte, err error) {
	args := make([]byte, 0, 4+32)
	args = append(args, byte(slot), byte(slot>>8), 0, 0)
	args = append(args, dataIn[:]...)
	result, out, err := h.doCommand(proto.CmdMACAndDestroy, args, 1+3+32)
	if err != nil {
		return dataOut, err
	}
	if err := proto.ResultErr(result); err != nil {
		return dataOut, err
	}
	copy(dataOut[:], out[3:])
	return dataOut, nil
}

package tropic

import "github.com/vpilat/libtropic-go/proto"

// MCounterIndex identifies one of the device's monotonic decrement
// counters.
type MCounterIndex uint16

// MCounterInit (re)initializes the counter at idx to value. Any prior
// value at idx is discarded.
func (h *Handle) MCounterInit(idx MCounterIndex, value uint32) error {
	args := make([]byte, 0, 8)
	args = append(args, byte(idx), byte(idx>>8), 0, 0)
	args = append(args, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
	result, _, err := h.doCommand(proto.CmdMCounterInit, args, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

// MCounterUpdate decrements the counter at idx by one. UpdateErr is
// returned once the counter has reached zero.
func (h *Handle) MCounterUpdate(idx MCounterIndex) error {
	result, _, err := h.doCommand(proto.CmdMCounterUpdate, []byte{byte(idx), byte(idx >> 8)}, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

// MCounterGet returns the counter at idx's current value.
func (h *Handle) MCounterGet(idx MCounterIndex) (uint32, error) {
	result, out, err := h.doCommand(proto.CmdMCounterGet, []byte{byte(idx), byte(idx >> 8)}, 1+3+4)
	if err != nil {
		return 0, err
	}
	if err := proto.ResultErr(result); err != nil {
		return 0, err
	}
	return le32ToUint(out[3:7]), nil
}

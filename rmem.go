package tropic

import (
	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/proto"
)

// RMemSlot identifies one of the device's user-data memory slots
// (0-511; Attributes.RMemUDataSlotSizeMax bounds how much each holds).
type RMemSlot uint16

// RMemDataWrite writes data into slot. A slot that already holds data
// must be erased first — SlotNotEmpty otherwise.
func (h *Handle) RMemDataWrite(slot RMemSlot, data []byte) error {
	args := make([]byte, 0, 4+len(data))
	args = append(args, byte(slot), byte(slot>>8), 0, 0)
	args = append(args, data...)
	result, _, err := h.doCommand(proto.CmdRMemDataWrite, args, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

// RMemDataRead returns slot's contents, or SlotEmpty if nothing has been
// written since the last erase.
func (h *Handle) RMemDataRead(slot RMemSlot) ([]byte, error) {
	result, out, err := h.doCommand(proto.CmdRMemDataRead, []byte{byte(slot), byte(slot >> 8)}, -1)
	if err != nil {
		return nil, err
	}
	if err := proto.ResultErr(result); err != nil {
		return nil, err
	}
	if len(out) < 3 {
		return nil, errs.New(errs.L3ResSizeError)
	}
	return out[3:], nil
}

// RMemDataErase clears slot, allowing a subsequent write.
func (h *Handle) RMemDataErase(slot RMemSlot) error {
	result, _, err := h.doCommand(proto.CmdRMemDataErase, []byte{byte(slot), byte(slot >> 8)}, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

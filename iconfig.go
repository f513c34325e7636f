package tropic

import "github.com/vpilat/libtropic-go/proto"

// IConfigAddress enumerates the device's bit-indexed irreversible
// configuration registers (original_source TR01_CONFIG_* macros that
// document per-bit "can only be set, never cleared" semantics).
type IConfigAddress uint16

const (
	IConfigFwUpdateDisable IConfigAddress = 0x0000
	IConfigSleepModeLock   IConfigAddress = 0x0002
)

// IConfigWrite sets bit (0-31) at addr. Bits can only be set, never
// cleared; the device enforces this, not this library.
func (h *Handle) IConfigWrite(addr IConfigAddress, bit byte) error {
	result, _, err := h.doCommand(proto.CmdIConfigWrite, []byte{byte(addr), byte(addr >> 8), bit}, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

// IConfigRead returns the full 32-bit register at addr, one bit per
// index written by IConfigWrite.
func (h *Handle) IConfigRead(addr IConfigAddress) (uint32, error) {
	result, out, err := h.doCommand(proto.CmdIConfigRead, []byte{byte(addr), byte(addr >> 8)}, 1+3+4)
	if err != nil {
		return 0, err
	}
	if err := proto.ResultErr(result); err != nil {
		return 0, err
	}
	return le32ToUint(out[3:7]), nil
}

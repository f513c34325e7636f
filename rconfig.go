package tropic

import "github.com/vpilat/libtropic-go/proto"

// RConfigAddress enumerates the device's byte-addressed configuration
// registers (original_source include/libtropic.h TR01_CONFIG_* macros),
// given a typed Go name instead of a bare uint16 at call sites.
type RConfigAddress uint16

const (
	RConfigBootConfig        RConfigAddress = 0x0000
	RConfigSleepModeConfig   RConfigAddress = 0x0002
	RConfigSensorConfig      RConfigAddress = 0x0004
	RConfigPairingKeyWriteSH0 RConfigAddress = 0x0010
	RConfigPairingKeyWriteSH1 RConfigAddress = 0x0011
	RConfigPairingKeyWriteSH2 RConfigAddress = 0x0012
	RConfigPairingKeyWriteSH3 RConfigAddress = 0x0013
)

// RConfigWrite sets the 32-bit value at addr.
func (h *Handle) RConfigWrite(addr RConfigAddress, value uint32) error {
	args := make([]byte, 0, 8)
	args = append(args, byte(addr), byte(addr>>8), 0, 0)
	args = append(args, byte(value), byte(value>>8), byte(value>>16), byte(value>>24))
	result, _, err := h.doCommand(proto.CmdRConfigWrite, args, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

// RConfigRead returns the 32-bit value at addr.
func (h *Handle) RConfigRead(addr RConfigAddress) (uint32, error) {
	result, out, err := h.doCommand(proto.CmdRConfigRead, []byte{byte(addr), byte(addr >> 8)}, 1+3+4)
	if err != nil {
		return 0, err
	}
	if err := proto.ResultErr(result); err != nil {
		return 0, err
	}
	return le32ToUint(out[3:7]), nil
}

// RConfigEraseAll erases the entire R-Config register space in one
// operation — the device treats R-Config as a single atomically erased
// block rather than supporting a per-address erase.
func (h *Handle) RConfigEraseAll() error {
	result, _, err := h.doCommand(proto.CmdRConfigErase, nil, 1)
	if err != nil {
		return err
	}
	return proto.ResultErr(result)
}

func le32ToUint(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

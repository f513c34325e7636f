package tropic

import (
	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/proto"
)

// RandomValueGet asks the device's internal TRNG for n random bytes.
func (h *Handle) RandomValueGet(n byte) ([]byte, error) {
	result, out, err := h.doCommand(proto.CmdRandomValueGet, []byte{n}, -1)
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

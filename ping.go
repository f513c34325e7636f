package tropic

import "github.com/vpilat/libtropic-go/proto"

// Ping sends msg through the secure session and returns the device's
// echo. An echo whose length differs from msg's fails with
// L3ResSizeError; the echoed bytes are not compared with msg.
func (h *Handle) Ping(msg []byte) ([]byte, error) {
	result, out, err := h.doCommand(proto.CmdPing, msg, 1+len(msg))
	if err != nil {
		return nil, err
	}
	if err := proto.ResultErr(result); err != nil {
		return nil, err
	}
	return out, nil
}

// Package l2 implements the request/response transport layer: typed L2
// requests and responses protected by CRC-16, resend semantics, and the
// fixed-size chunking contract that carries a multi-chunk encrypted
// packet across many L2 frames. It drives package l1's Framer but knows
// nothing about what's inside an encrypted chunk — that's package l3.
package l2

import (
	"github.com/op/go-logging"

	"github.com/vpilat/libtropic-go/errs"
	"github.com/vpilat/libtropic-go/l1"
)

var log = logging.MustGetLogger("tropic/l2")

// Request IDs (spec.md §6.1).
const (
	ReqGetInfo               byte = 0x01
	ReqHandshake             byte = 0x02
	ReqEncryptedCmd          byte = 0x04
	ReqEncryptedCmdNext      byte = 0x05
	ReqEncryptedCmdRes       byte = 0x06
	ReqEncryptedCmdResNext   byte = 0x07
	ReqEncryptedSessionAbort byte = 0x08
	ReqResend                byte = 0x10
	ReqSleep                 byte = 0x20
	ReqStartup               byte = 0xB3
	ReqGetLog                byte = 0xA2
	ReqMutableFwUpdateReq    byte = 0xB1
	ReqMutableFwUpdateData   byte = 0xB2
)

// Get_Info object identifiers (spec.md §4.7/original_source
// include/libtropic.h TR01_GET_INFO_* macros): which sub-object a
// GET_INFO_REQ asks the device for.
const (
	InfoCertStore      byte = iota // certificate chain, read in 128-byte blocks
	InfoChipID                     // 128-byte structured chip identity
	InfoRiscvFwVersion             // 4-byte RISC-V application firmware version
	InfoSpectFwVersion             // 4-byte SPECT coprocessor firmware version
	InfoFwBankHeader               // active firmware bank header
)

// L2 status codes (spec.md §6.2).
const (
	StatusRequestOK   byte = 0x01
	StatusResultOK    byte = 0x02
	StatusRequestCont byte = 0x03
	StatusResultCont  byte = 0x04
	StatusHskErr      byte = 0x79
	StatusNoSession   byte = 0x7A
	StatusTagErr      byte = 0x7B
	StatusCrcErr      byte = 0x7C
	StatusUnknownReq  byte = 0x7E
	StatusGenErr      byte = 0x7F
	StatusDisabled    byte = 0x80
	StatusTMacErr     byte = 0x81
	StatusSleepOK     byte = 0x82
)

// Response is one parsed, CRC-validated L2 response frame.
type Response struct {
	ChipStatus byte
	L2Status   byte
	Payload    []byte
}

// StatusErr maps an l2_status byte to the corresponding *errs.Error, or
// nil if the status means success (REQUEST_OK/RESULT_OK) or "more chunks
// follow" (REQUEST_CONT/RESULT_CONT), which callers branch on explicitly
// rather than treating as an error.
func StatusErr(status byte) error {
	switch status {
	case StatusRequestOK, StatusResultOK, StatusRequestCont, StatusResultCont:
		return nil
	case StatusHskErr:
		return errs.FromRaw(errs.L2HandshakeErr, status)
	case StatusNoSession:
		return errs.FromRaw(errs.L2NoSession, status)
	case StatusTagErr:
		return errs.FromRaw(errs.L2TagErr, status)
	case StatusCrcErr:
		return errs.FromRaw(errs.L2RequestCRCErr, status)
	case StatusUnknownReq:
		return errs.FromRaw(errs.L2UnknownRequest, status)
	case StatusGenErr:
		return errs.FromRaw(errs.L2GenErr, status)
	case StatusDisabled:
		return errs.FromRaw(errs.L2Disabled, status)
	case StatusTMacErr:
		return errs.FromRaw(errs.L2TMacErr, status)
	case StatusSleepOK:
		return errs.FromRaw(errs.L2SleepOK, status)
	default:
		return errs.FromRaw(errs.L2StatusNotRecognized, status)
	}
}

// buildRequest writes id, len(payload), payload and a trailing CRC-16
// into buf, returning the total frame length. cap(buf) must be at least
// 1+1+len(payload)+2.
func buildRequest(buf []byte, id byte, payload []byte) (int, error) {
	if len(payload) > l1.MaxChunkPayload {
		return 0, errs.Withf(errs.BadBufferSize, "l2 payload too large: %d > %d", len(payload), l1.MaxChunkPayload)
	}
	need := 2 + len(payload) + 2
	if cap(buf) < need {
		return 0, errs.Withf(errs.BadBufferSize, "l2 request buffer too small: need %d", need)
	}
	buf = buf[:need]
	buf[0] = id
	buf[1] = byte(len(payload))
	copy(buf[2:], payload)
	crc := crc16(buf[:2+len(payload)])
	buf[2+len(payload)] = byte(crc)
	buf[2+len(payload)+1] = byte(crc >> 8)
	return need, nil
}

// parseResponse validates the CRC over a raw L1 read result (as produced
// by l1.Framer.Read: chip_status, l2_status, rsp_len, payload, crc) and
// returns the decoded Response.
func parseResponse(buf []byte, n int) (Response, error) {
	if n < 5 {
		return Response{}, errs.New(errs.DataLenError)
	}
	chipStatus := buf[0]
	rspLen := int(buf[2])
	if 3+rspLen+2 != n {
		return Response{}, errs.New(errs.DataLenError)
	}
	protected := buf[1 : 3+rspLen]
	gotCRC := uint16(buf[3+rspLen]) | uint16(buf[3+rspLen+1])<<8
	if crc16(protected) != gotCRC {
		return Response{}, errs.New(errs.L2InCRC)
	}
	payload := make([]byte, rspLen)
	copy(payload, buf[3:3+rspLen])
	return Response{ChipStatus: chipStatus, L2Status: buf[1], Payload: payload}, nil
}

// Transceiver pairs an l1.Framer with the L2 request/response buffer and
// the CRC + resend policy described in spec.md §4.4 and §7.
type Transceiver struct {
	Framer *l1.Framer
	buf    []byte
	// Resend controls whether a single CRC error on a device response
	// triggers one automatic RESEND_REQ retry (spec.md §7: "the core
	// does one automatic retry, otherwise surfaces the error").
	Resend bool
}

// NewTransceiver returns a Transceiver bound to fr, with resend-on-CRC-error
// enabled by default.
func NewTransceiver(fr *l1.Framer) *Transceiver {
	return &Transceiver{
		Framer: fr,
		buf:    make([]byte, l1.MaxFrameSize),
		Resend: true,
	}
}

// Do sends one L2 request (id, payload) and returns the parsed response.
// On a CRC error in the device's response, and only if t.Resend is set,
// it issues one RESEND_REQ and retries the read once.
func (t *Transceiver) Do(id byte, payload []byte) (Response, error) {
	n, err := buildRequest(t.buf, id, payload)
	if err != nil {
		return Response{}, err
	}
	if err := t.Framer.Write(t.buf, n); err != nil {
		return Response{}, err
	}
	return t.read()
}

func (t *Transceiver) read() (Response, error) {
	n, err := t.Framer.Read(t.buf)
	if err != nil {
		return Response{}, err
	}
	resp, err := parseResponse(t.buf, n)
	if err == nil {
		return resp, nil
	}
	if !errs.IsKind(err, errs.L2InCRC) || !t.Resend {
		return Response{}, err
	}
	log.Warning("response CRC mismatch, issuing one RESEND_REQ")
	// One automatic resend on CRC error.
	rn, rerr := buildRequest(t.buf, ReqResend, nil)
	if rerr != nil {
		return Response{}, rerr
	}
	if werr := t.Framer.Write(t.buf, rn); werr != nil {
		return Response{}, werr
	}
	n2, rerr := t.Framer.Read(t.buf)
	if rerr != nil {
		return Response{}, rerr
	}
	return parseResponse(t.buf, n2)
}


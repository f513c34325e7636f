// Package errs collects the result-code taxonomy shared by every layer of
// the TROPIC01 host stack (L1 framing, L2 transport, L3 session, command
// API). It replaces the original library's sentinel integer return codes
// with a single error type carrying an enumerated Kind plus, where useful,
// the raw status byte the device returned.
package errs

import "fmt"

// Kind enumerates every distinguishable failure (and a couple of
// non-failure statuses, like SleepOK, that callers still need to branch
// on) the stack can report.
type Kind int

const (
	// Parameter / usage errors. Local to the call, they never touch
	// device or session state.
	Param Kind = iota
	BadBufferSize
	NoSession

	// Transport (L1) errors.
	SPI
	IntTimeout
	ChipBusy
	ChipAlarmMode
	DataLenError
	UnrecognizedChipStatus

	// L2 framing errors.
	L2InCRC
	L2HandshakeErr
	L2NoSession
	L2TagErr
	L2RequestCRCErr
	L2UnknownRequest
	L2GenErr
	L2Disabled
	L2TMacErr
	L2StatusNotRecognized
	L2SleepOK // not a failure: device acknowledged a sleep request

	// L3 device-result errors (the device's `result` byte, mapped 1:1).
	Fail
	Unauthorized
	InvalidCmd
	InvalidKey
	SlotEmpty
	SlotInvalid
	SlotNotEmpty
	UpdateErr
	HardwareFail
	PinFail
	L3ResultNotRecognized

	// Size invariants.
	L3ResSizeError

	// Crypto.
	CryptoErr
)

var names = map[Kind]string{
	Param:                  "PARAM_ERR",
	BadBufferSize:          "BAD_BUFFER_SIZE",
	NoSession:               "HOST_NO_SESSION",
	SPI:                    "L1_SPI_ERROR",
	IntTimeout:             "L1_INT_TIMEOUT",
	ChipBusy:               "L1_CHIP_BUSY",
	ChipAlarmMode:          "L1_CHIP_ALARM_MODE",
	DataLenError:           "L1_DATA_LEN_ERROR",
	UnrecognizedChipStatus: "L1_CHIP_STATUS_NOT_RECOGNIZED",
	L2InCRC:                "L2_IN_CRC_ERR",
	L2HandshakeErr:         "L2_HSK_ERR",
	L2NoSession:            "L2_NO_SESSION",
	L2TagErr:               "L2_TAG_ERR",
	L2RequestCRCErr:        "L2_CRC_ERR",
	L2UnknownRequest:       "L2_UNKNOWN_REQ",
	L2GenErr:               "L2_GEN_ERR",
	L2Disabled:             "L2_DISABLED",
	L2TMacErr:              "L2_TMAC_ERR",
	L2StatusNotRecognized:  "L2_STATUS_NOT_RECOGNIZED",
	L2SleepOK:              "L2_SLEEP_OK",
	Fail:                   "FAIL",
	Unauthorized:           "UNAUTHORIZED",
	InvalidCmd:             "INVALID_CMD",
	InvalidKey:             "INVALID_KEY",
	SlotEmpty:              "SLOT_EMPTY",
	SlotInvalid:            "SLOT_INVALID",
	SlotNotEmpty:           "SLOT_NOT_EMPTY",
	UpdateErr:              "UPDATE_ERR",
	HardwareFail:           "HARDWARE_FAIL",
	PinFail:                "PIN_FAIL",
	L3ResultNotRecognized:  "L3_RESULT_UNKNOWN",
	L3ResSizeError:         "L3_RES_SIZE_ERROR",
	CryptoErr:              "CRYPTO_ERR",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN_KIND(%d)", int(k))
}

// Error is the single error type returned across all layers. Raw carries
// the device status/result byte that produced the Kind, for diagnostics;
// it is zero when the error originated on the host side (parameter
// errors, transport failures without a device byte to blame).
type Error struct {
	Kind Kind
	Raw  byte
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("%s: %s (raw=0x%02x)", e.Kind, e.Msg, e.Raw)
	}
	return fmt.Sprintf("%s (raw=0x%02x)", e.Kind, e.Raw)
}

// New builds an Error with no raw byte and no extra message.
func New(k Kind) *Error {
	return &Error{Kind: k}
}

// Withf builds an Error carrying a formatted message.
func Withf(k Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// FromRaw builds an Error tagging the device status/result byte that
// produced it.
func FromRaw(k Kind, raw byte) *Error {
	return &Error{Kind: k, Raw: raw}
}

// Is lets errors.Is(err, errs.New(SomeKind)) work by comparing Kind only,
// ignoring Raw/Msg — callers care which failure happened, not its
// diagnostic payload.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err is an *Error of the given Kind.
func IsKind(err error, k Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}

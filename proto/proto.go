// Package proto defines the L3 command IDs and device result codes
// shared by the root command API and the in-process device simulator in
// platform/mock — the wire-level vocabulary both sides speak once a
// secure session is open (spec.md §4.7, §6.3).
package proto

import "github.com/vpilat/libtropic-go/errs"

// Command IDs.
const (
	CmdPing                 byte = 0x01
	CmdPairingKeyWrite      byte = 0x10
	CmdPairingKeyRead       byte = 0x11
	CmdPairingKeyInvalidate byte = 0x12
	CmdRConfigWrite         byte = 0x20
	CmdRConfigRead          byte = 0x21
	CmdRConfigErase         byte = 0x22
	CmdIConfigWrite         byte = 0x30
	CmdIConfigRead          byte = 0x31
	CmdRMemDataWrite        byte = 0x40
	CmdRMemDataRead         byte = 0x41
	CmdRMemDataErase        byte = 0x42
	CmdRandomValueGet       byte = 0x50
	CmdECCKeyGenerate       byte = 0x60
	CmdECCKeyStore          byte = 0x61
	CmdECCKeyRead           byte = 0x62
	CmdECCKeyErase          byte = 0x63
	CmdECDSASign            byte = 0x70
	CmdEdDSASign            byte = 0x71
	CmdMCounterInit         byte = 0x80
	CmdMCounterUpdate       byte = 0x81
	CmdMCounterGet          byte = 0x82
	CmdMACAndDestroy        byte = 0x90
)

// Device result codes (spec.md §6.3).
const (
	ResultOK           byte = 0xC3
	ResultFail         byte = 0x3C
	ResultUnauthorized byte = 0x01
	ResultInvalidCmd   byte = 0x02
	ResultInvalidKey   byte = 0x12
	ResultSlotEmpty    byte = 0xE0
	ResultSlotInvalid  byte = 0xE1
	ResultSlotNotEmpty byte = 0xE2
	ResultUpdateErr    byte = 0xE3
	ResultHardwareFail byte = 0xE4
	ResultPinFail      byte = 0xE5
)

// ECC curve identifiers (spec.md §4.7).
const (
	CurveP256    byte = 1
	CurveEd25519 byte = 2
)

// ResultErr maps a device result byte to the corresponding *errs.Error,
// or nil for ResultOK.
func ResultErr(result byte) error {
	switch result {
	case ResultOK:
		return nil
	case ResultFail:
		return errs.FromRaw(errs.Fail, result)
	case ResultUnauthorized:
		return errs.FromRaw(errs.Unauthorized, result)
	case ResultInvalidCmd:
		return errs.FromRaw(errs.InvalidCmd, result)
	case ResultInvalidKey:
		return errs.FromRaw(errs.InvalidKey, result)
	case ResultSlotEmpty:
		return errs.FromRaw(errs.SlotEmpty, result)
	case ResultSlotInvalid:
		return errs.FromRaw(errs.SlotInvalid, result)
	case ResultSlotNotEmpty:
		return errs.FromRaw(errs.SlotNotEmpty, result)
	case ResultUpdateErr:
		return errs.FromRaw(errs.UpdateErr, result)
	case ResultHardwareFail:
		return errs.FromRaw(errs.HardwareFail, result)
	case ResultPinFail:
		return errs.FromRaw(errs.PinFail, result)
	default:
		return errs.FromRaw(errs.L3ResultNotRecognized, result)
	}
}

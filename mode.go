package tropic

import (
	"fmt"

	"github.com/vpilat/libtropic-go/l1"
	"github.com/vpilat/libtropic-go/l2"
)

// ChipID is the device's 128-byte structured identity block
// (original_source include/libtropic.h's TR01_CHIP_ID_T layout,
// flattened here to silicon revision / serial number / part number
// sub-fields plus the remaining raw bytes for anything this library
// doesn't interpret).
type ChipID struct {
	SiliconRevision byte
	SerialNumber    [16]byte
	PartNumber      [16]byte
	Raw             []byte
}

func (c ChipID) String() string {
	return fmt.Sprintf("TROPIC01 rev=0x%02x serial=%x part=%x", c.SiliconRevision, c.SerialNumber, c.PartNumber)
}

func parseChipID(raw []byte) ChipID {
	var id ChipID
	id.Raw = raw
	if len(raw) > 0 {
		id.SiliconRevision = raw[0]
	}
	if len(raw) >= 17 {
		copy(id.SerialNumber[:], raw[1:17])
	}
	if len(raw) >= 33 {
		copy(id.PartNumber[:], raw[17:33])
	}
	return id
}

func (h *Handle) getInfo(object byte) ([]byte, error) {
	if err := h.requireInit(); err != nil {
		return nil, err
	}
	resp, err := h.transceiver.Do(l2.ReqGetInfo, []byte{object})
	if err != nil {
		return nil, err
	}
	if err := l2.StatusErr(resp.L2Status); err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// ReadCertStore populates CertStore block 0 with the device's
// certificate chain block; DeviceStaticPublicKey can be called
// afterward. Chain validation beyond slicing out STPUB is out of scope.
func (h *Handle) ReadCertStore() error {
	payload, err := h.getInfo(l2.InfoCertStore)
	if err != nil {
		return err
	}
	h.CertStore.set(0, payload)
	return nil
}

// ReadChipID returns the device's structured identity block.
func (h *Handle) ReadChipID() (ChipID, error) {
	payload, err := h.getInfo(l2.InfoChipID)
	if err != nil {
		return ChipID{}, err
	}
	return parseChipID(payload), nil
}

// ReadRiscvFwVersion returns the RISC-V application firmware's raw
// 4-byte version, the same bytes Init uses to derive Attributes.
func (h *Handle) ReadRiscvFwVersion() ([4]byte, error) {
	var v [4]byte
	payload, err := h.getInfo(l2.InfoRiscvFwVersion)
	if err != nil {
		return v, err
	}
	copy(v[:], payload)
	return v, nil
}

// ReadSpectFwVersion returns the SPECT coprocessor's raw 4-byte firmware
// version.
func (h *Handle) ReadSpectFwVersion() ([4]byte, error) {
	var v [4]byte
	payload, err := h.getInfo(l2.InfoSpectFwVersion)
	if err != nil {
		return v, err
	}
	copy(v[:], payload)
	return v, nil
}

// ReadFwBankHeader returns the active firmware bank's header, used after
// a maintenance-mode reboot to confirm which bank is now running.
func (h *Handle) ReadFwBankHeader() ([]byte, error) {
	return h.getInfo(l2.InfoFwBankHeader)
}

// RefreshAttributes reads the RISC-V firmware version and recomputes
// h.Attributes from it. Init calls this once automatically; call it
// again directly after a firmware update or a device reboot that may
// have changed the reported version.
func (h *Handle) RefreshAttributes() error {
	raw, err := h.ReadRiscvFwVersion()
	if err != nil {
		return err
	}
	v, err := firmwareVersion(raw)
	if err != nil {
		return err
	}
	h.Attributes = attributesFor(v)
	return nil
}

// Startup sends STARTUP_REQ, requesting the device leave maintenance
// mode and boot its application firmware. Any active secure session is
// invalidated locally since the device reboots.
func (h *Handle) Startup() error {
	if err := h.requireInit(); err != nil {
		return err
	}
	resp, err := h.transceiver.Do(l2.ReqStartup, nil)
	if err != nil {
		return err
	}
	h.session.Invalidate()
	return l2.StatusErr(resp.L2Status)
}

// Sleep requests the device enter its low-power sleep mode. The device's
// StatusSleepOK acknowledgement is returned as success (nil), although
// l2.StatusErr maps it to an errs.L2SleepOK error. The host-side secure
// session, if any, stays installed; the device ends its side of the
// session on sleep (platform/mock does the same), so the next encrypted
// command fails with L2NoSession and invalidates it then.
func (h *Handle) Sleep() error {
	if err := h.requireInit(); err != nil {
		return err
	}
	resp, err := h.transceiver.Do(l2.ReqSleep, nil)
	if err != nil {
		return err
	}
	if resp.L2Status == l2.StatusSleepOK {
		return nil
	}
	return l2.StatusErr(resp.L2Status)
}

// ReadAlarmLog retrieves the device's debug alarm log
// (original_source's lt_l1_retrieve_alarm_log). Call this manually for
// diagnostics, or let l1.Framer.Read's alarm-mode detection surface the
// ChipAlarmMode error and retrieve it out of band afterward.
func (h *Handle) ReadAlarmLog() ([]byte, error) {
	if err := h.requireInit(); err != nil {
		return nil, err
	}
	resp, err := h.transceiver.Do(l2.ReqGetLog, nil)
	if err != nil {
		return nil, err
	}
	if err := l2.StatusErr(resp.L2Status); err != nil {
		return nil, err
	}
	return resp.Payload, nil
}

// UpdateMutableFirmware delivers a new firmware image to bank, chunked
// across MUTABLE_FW_UPDATE_DATA frames after one MUTABLE_FW_UPDATE_REQ
// header frame. This is firmware transport only: verifying image
// authenticity is the caller's responsibility (Non-goal: certificate
// chain validation). The device must already be in maintenance mode; no
// call in this package reboots it into maintenance mode (Startup boots
// the application firmware).
func (h *Handle) UpdateMutableFirmware(bank byte, image []byte) error {
	if err := h.requireInit(); err != nil {
		return err
	}
	header := make([]byte, 0, 1+4)
	header = append(header, bank)
	header = append(header, byte(len(image)), byte(len(image)>>8), byte(len(image)>>16), byte(len(image)>>24))
	resp, err := h.transceiver.Do(l2.ReqMutableFwUpdateReq, header)
	if err != nil {
		return err
	}
	if err := l2.StatusErr(resp.L2Status); err != nil {
		return err
	}
	for offset := 0; offset < len(image); offset += l1.MaxChunkPayload {
		end := offset + l1.MaxChunkPayload
		if end > len(image) {
			end = len(image)
		}
		resp, err := h.transceiver.Do(l2.ReqMutableFwUpdateData, image[offset:end])
		if err != nil {
			return err
		}
		if err := l2.StatusErr(resp.L2Status); err != nil {
			return err
		}
	}
	return nil
}

package tropic

import (
	"fmt"

	"github.com/blang/semver"
)

// Attributes describes the capability surface a firmware version
// supports. Fields gated by version are derived once in Handle.Init via
// firmwareVersion's semver comparison (spec.md §9 Open Question 1: "some
// behaviors differ by firmware version, gated by an ad hoc byte
// comparison in the source; a real semver comparator would be more
// robust").
type Attributes struct {
	RMemUDataSlotSizeMax int
}

// rMemSlotSizeExpansion is the firmware version at and after which the
// R-Mem user-data slot size increased from its original-generation value
// (per original_source's libtropic.h attribute table).
var rMemSlotSizeExpansion = semver.MustParse("2.0.0")

const (
	rMemSlotSizeLegacy  = 444
	rMemSlotSizeCurrent = 475
)

// firmwareVersion turns the 4 raw bytes RISC-V Get_Info returns into a
// comparable semver.Version. original_source's TR01_GET_INFO_RISCV_FW_VER
// layout is little-endian-significant: raw[3] carries the major version,
// raw[2] minor, raw[1] patch; raw[0] is reserved and always zero.
func firmwareVersion(raw [4]byte) (semver.Version, error) {
	s := fmt.Sprintf("%d.%d.%d", raw[3], raw[2], raw[1])
	return semver.Parse(s)
}

func attributesFor(v semver.Version) Attributes {
	if v.GE(rMemSlotSizeExpansion) {
		return Attributes{RMemUDataSlotSizeMax: rMemSlotSizeCurrent}
	}
	return Attributes{RMemUDataSlotSizeMax: rMemSlotSizeLegacy}
}

package l2

// CRC-16 as used to protect every L2 frame. Spec.md §6.1 describes it as
// "polynomial 0x8005 reflected — i.e. the X-25 variant — init 0x0000,
// processed LSB-first"; that description (reflected 0x8005, init 0x0000,
// no xorout) is the CRC-16/ARC parameterization, not the textbook
// CRC-16/X-25 (which uses poly 0x1021/init 0xFFFF/xorout 0xFFFF). Per
// spec.md §9's open question ("the CRC-16 implementation in the source is
// the X-25 variant by empirical inspection... verify against a known test
// vector before shipping"), this implementation follows the byte-level
// description literally rather than the name, and TestCRC16KnownVector
// pins it down.
const crc16Poly = 0xA001 // bit-reflection of 0x8005

// CRC16 exposes the checksum to other packages that need to build or
// validate a full L2 frame outside this package — notably platform/mock's
// device simulator, which has to speak the same wire format a real part
// would.
func CRC16(data []byte) uint16 { return crc16(data) }

func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ crc16Poly
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

package tesla

// Checksum is the DAS modular-sum checksum: both bytes of the message id plus
// every payload byte, truncated to 8 bits.
func Checksum(msgID uint32, data []byte) uint8 {
	sum := uint8(msgID&0xFF) + uint8((msgID>>8)&0xFF)
	for _, b := range data {
		sum += b
	}
	return sum
}

// CRC-8/SAE-J1850: poly 0x1D, init 0xFF, no reflection, xorout 0xFF.
const (
	crc8Poly   = 0x1D
	crc8Init   = 0xFF
	crc8XorOut = 0xFF
)

var crc8Table [256]uint8

func init() {
	for i := 0; i < 256; i++ {
		crc := uint8(i)
		for j := 0; j < 8; j++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crc8Poly
			} else {
				crc <<= 1
			}
		}
		crc8Table[i] = crc
	}
}

// CRC8J1850 authenticates STW_ACTN_RQ.
func CRC8J1850(data []byte) uint8 {
	crc := uint8(crc8Init)
	for _, b := range data {
		crc = crc8Table[crc^b]
	}
	return crc ^ crc8XorOut
}

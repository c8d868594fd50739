package sbp

// FrameCRC computes the CRC-16/XMODEM that trails an SBP frame. It covers the
// little-endian msg_type and sender, the length byte and the payload.
func FrameCRC(msgType Kind, sender uint16, payload []byte) uint16 {
	header := []byte{
		byte(msgType), byte(msgType >> 8),
		byte(sender), byte(sender >> 8),
		byte(len(payload)),
	}
	crc := crc16(0, header)
	return crc16(crc, payload)
}

func crc16(crc uint16, data []byte) uint16 {
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

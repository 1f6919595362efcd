package panel

// CRC16 computes the checksum carried in every panel frame. Shift-xor form
// of the CCITT polynomial with init 0xFFFF, cheap enough for the panel MCU
// to compute per byte as it transmits.
func CRC16(data []byte) uint16 {
	crc := uint16(0xFFFF)
	for _, b := range data {
		b = b ^ uint8(crc&0xFF)
		b = b ^ (b << 4)
		b16 := uint16(b)
		crc = (b16<<8 | crc>>8) ^ (b16 >> 4) ^ (b16 << 3)
	}
	return crc
}

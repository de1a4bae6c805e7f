package ogg

// Ogg's page CRC (RFC 3533 §6) uses CRC-32 with polynomial 0x04C11DB7,
// initial value 0, no input/output reflection, and no final XOR — the
// opposite bit convention from the CRC-32 every stdlib/ecosystem CRC32
// implementation ships (IEEE 802.3, reflected). No example repo in the
// corpus implements a non-reflected CRC32, so the table is hand-built
// here as a plain [256]uint32; hash/crc32 is not used
// (DESIGN.md "Domain stack").
const polynomial = 0x04C11DB7

var table [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		crc := uint32(i) << 24
		for bit := 0; bit < 8; bit++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ polynomial
			} else {
				crc <<= 1
			}
		}
		table[i] = crc
	}
}

// Checksum computes the non-reflected CRC32 of data, as used for Ogg
// page validation.
func Checksum(data []byte) uint32 {
	var crc uint32
	for _, b := range data {
		crc = (crc << 8) ^ table[byte(crc>>24)^b]
	}
	return crc
}

package ioprim

import "github.com/cesargomez89/mediatags/internal/model"

// ReadSynchsafe32 decodes a 4-byte ID3v2 synchsafe integer: each byte
// contributes its low 7 bits, MSB-first; the MSB of every byte must be
// clear. Used for the ID3v2 header size and, in v2.4 only,
// frame sizes.
func ReadSynchsafe32(b [4]byte) (uint32, error) {
	var v uint32
	for _, x := range b {
		if x&0x80 != 0 {
			return 0, model.InvalidDataf("ioprim.ReadSynchsafe32", "synchsafe byte 0x%02x has MSB set", x)
		}
		v = v<<7 | uint32(x)
	}
	return v, nil
}

// WriteSynchsafe32 encodes v (must fit in 28 bits) as a 4-byte
// synchsafe integer. Every emitted byte has its MSB clear by
// construction.
func WriteSynchsafe32(v uint32) [4]byte {
	var b [4]byte
	b[3] = byte(v & 0x7F)
	v >>= 7
	b[2] = byte(v & 0x7F)
	v >>= 7
	b[1] = byte(v & 0x7F)
	v >>= 7
	b[0] = byte(v & 0x7F)
	return b
}

// MaxSynchsafe32 is the largest value WriteSynchsafe32 can represent.
const MaxSynchsafe32 = 1<<28 - 1

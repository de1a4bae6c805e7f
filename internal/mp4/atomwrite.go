package mp4

import "github.com/cesargomez89/mediatags/internal/ioprim"

// encodeAtom writes one complete atom (4-byte size, 4-byte FourCC, then
// payload) into w. Atoms built by this library never need the 64-bit
// extended-size form: ilst/udta/meta are metadata-sized, never
// approaching the 4 GiB size32 boundary.
func encodeAtom(w *ioprim.Writer, fourcc string, payload []byte) {
	w.BU32(uint32(8 + len(payload)))
	w.FixedString(fourcc)
	w.Write(payload)
}

// atomBytes builds one complete atom's bytes standalone.
func atomBytes(fourcc string, payload []byte) []byte {
	w := ioprim.NewWriter()
	encodeAtom(w, fourcc, payload)
	return w.Bytes()
}

// freeAtom builds a "free" atom
// whose total encoded length equals totalLen.
func freeAtom(totalLen int64) []byte {
	if totalLen < 8 {
		return nil
	}
	return atomBytes("free", make([]byte, totalLen-8))
}

package ebml

import "github.com/cesargomez89/mediatags/internal/ioprim"

// idWidth returns the canonical byte width of an EBML element id as
// commonly written (the class-1/2/3/4-byte id families this library's
// constants use), derived from the id's leading marker bit.
func idWidth(id uint64) int {
	switch {
	case id <= 0xFF:
		return 1
	case id <= 0xFFFF:
		return 2
	case id <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}

// EncodeElement serialises one EBML element: id, then a minimal-width
// size VINT, then payload verbatim.
func EncodeElement(w *ioprim.Writer, id uint64, payload []byte) {
	ioprim.WriteVINTID(w, id, idWidth(id))
	n := ioprim.VINTSizeLength(uint64(len(payload)))
	ioprim.WriteVINTSize(w, uint64(len(payload)), n)
	w.Write(payload)
}

// Element builds one complete element's bytes (id + size + payload),
// the unit the matroska writer composes master elements out of.
func Element(id uint64, payload []byte) []byte {
	w := ioprim.NewWriter()
	EncodeElement(w, id, payload)
	return w.Bytes()
}

// VoidElement builds a Void padding element whose total encoded length
// equals totalLen. totalLen must be large
// enough to hold Void's own id+size header (at least 2 bytes); smaller
// gaps cannot be padded and the caller must absorb them by other means.
func VoidElement(totalLen int64) []byte {
	if totalLen < 2 {
		return nil
	}
	headerLen := int64(1 + ioprim.VINTSizeLength(uint64(totalLen)-2))
	for headerLen+0 > totalLen {
		return nil
	}
	payloadLen := totalLen - headerLen
	if payloadLen < 0 {
		return nil
	}
	// Re-derive header length from the actual payload length, since
	// VINTSizeLength(payloadLen) can differ by one from the estimate
	// above near size-class boundaries.
	for {
		h := int64(1 + ioprim.VINTSizeLength(uint64(payloadLen)))
		if h == headerLen {
			break
		}
		headerLen = h
		payloadLen = totalLen - headerLen
		if payloadLen < 0 {
			return nil
		}
	}
	w := ioprim.NewWriter()
	w.U8(byte(IDVoid))
	ioprim.WriteVINTSize(w, uint64(payloadLen), ioprim.VINTSizeLength(uint64(payloadLen)))
	w.Write(make([]byte, payloadLen))
	return w.Bytes()
}

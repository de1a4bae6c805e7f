package ebml

import (
	"errors"
	"io"

	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/ioprim"
)

// HeaderReader adapts EBML's id/size VINT pair to element.HeaderReader
//, so the generic arena in
// internal/element drives EBML traversal exactly as it drives ISO-BMFF.
// This is only possible because EBML ids carry their marker bit and are
// therefore globally unique across nesting contexts — a
// child never needs to know its parent's identity to be parsed.
type HeaderReader struct{}

// ReadHeader implements element.HeaderReader. An "unknown size" VINT
// is resolved against maxSize, the same
// convention ISO-BMFF's size==0 gets in mp4.HeaderReader.ReadHeader —
// the element runs to the end of whatever span contains it.
func (HeaderReader) ReadHeader(r io.ReadSeeker, offset, maxSize int64) (id uint64, headerLen, totalLen int64, isParent bool, err error) {
	if maxSize < 2 {
		return 0, 0, 0, false, io.EOF
	}
	rd := ioprim.NewReader(r)
	if _, err = rd.Seek(offset, io.SeekStart); err != nil {
		return 0, 0, 0, false, err
	}
	elemID, idLen, err := ioprim.ReadVINTID(rd)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, 0, 0, false, io.EOF
		}
		return 0, 0, 0, false, err
	}
	size, sizeLen, unknown, err := ioprim.ReadVINTSize(rd)
	if err != nil {
		return 0, 0, 0, false, err
	}
	headerLen = int64(idLen + sizeLen)
	if unknown {
		totalLen = maxSize
	} else {
		totalLen = headerLen + int64(size)
	}
	return elemID, headerLen, totalLen, IsMaster(elemID), nil
}

// PayloadOffset returns where n's payload (children, for a master
// element) begins: right after its id+size header.
func PayloadOffset(n element.Node) int64 { return n.Start + n.HeaderLen }

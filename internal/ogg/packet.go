package ogg

import (
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// Packet is one reassembled logical packet, possibly spanning several
// physical pages.
type Packet struct {
	SerialNumber uint32
	Data         []byte
	IsFirst      bool
	IsLast       bool // EOS flag on the page that completed this packet
	GranulePos   int64
	PageSequence uint32
}

// Iterator produces the logical packet stream for every serial number
// present, in file order. It buffers across page boundaries when a
// packet spans multiple pages, one buffer per in-flight serial number
// plus a small same-page completion queue.
type Iterator struct {
	rd      *ioprim.Reader
	diag    *model.Diagnostics
	pending map[uint32][]byte
	seenBOS map[uint32]bool
	queue   []Packet
	done    bool
	maxSize int64
}

// NewIterator wraps rd (positioned at the start of an Ogg stream).
func NewIterator(rd *ioprim.Reader, diag *model.Diagnostics, maxElementSize int64) *Iterator {
	return &Iterator{
		rd:      rd,
		diag:    diag,
		pending: make(map[uint32][]byte),
		seenBOS: make(map[uint32]bool),
		maxSize: maxElementSize,
	}
}

// Next returns the next completed packet, or (Packet{}, false, nil) at
// EOF.
func (it *Iterator) Next() (Packet, bool, error) {
	if len(it.queue) > 0 {
		p := it.queue[0]
		it.queue = it.queue[1:]
		return p, true, nil
	}
	for {
		if it.done {
			return Packet{}, false, nil
		}
		header, err := ReadPageHeader(it.rd)
		if err != nil {
			if me, ok := err.(*model.Error); ok && me.Kind == model.KindIoError {
				it.done = true
				return Packet{}, false, nil
			}
			return Packet{}, false, err
		}
		payloadLen := header.PayloadLen()
		if int64(payloadLen) > it.maxSize {
			return Packet{}, false, model.TruncatedDataf("ogg.Iterator.Next", "page payload %d exceeds configured maximum", payloadLen)
		}
		payload, err := it.rd.ReadBytes(payloadLen)
		if err != nil {
			return Packet{}, false, err
		}

		first := !it.seenBOS[header.SerialNumber]
		it.seenBOS[header.SerialNumber] = true

		offset := 0
		for segIdx, segLen8 := range header.SegmentTable {
			segLen := int(segLen8)
			buf := it.pending[header.SerialNumber]
			buf = append(buf, payload[offset:offset+segLen]...)
			offset += segLen

			if segLen < 255 {
				isLast := segIdx == len(header.SegmentTable)-1 && header.Flags&FlagEOS != 0
				it.queue = append(it.queue, Packet{
					SerialNumber: header.SerialNumber,
					Data:         buf,
					IsFirst:      first,
					IsLast:       isLast,
					GranulePos:   header.GranulePos,
					PageSequence: header.PageSequence,
				})
				first = false
				it.pending[header.SerialNumber] = nil
			} else {
				it.pending[header.SerialNumber] = buf
			}
		}
		if len(it.queue) > 0 {
			p := it.queue[0]
			it.queue = it.queue[1:]
			return p, true, nil
		}
		// This page contributed only a continuation segment with no
		// packet completing; loop to read the next page.
	}
}

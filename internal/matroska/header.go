// Package matroska implements the Matroska/WebM container:
// DocType validation, SeekHead-indexed top-level element lookup,
// Tags/Targets/SimpleTag extraction, Tracks, Chapters, and Attachments,
// plus the Segment rewrite discipline (Void padding absorption, SeekHead
// and size recomputed bottom-up). Grounded on luispater-matroska-go's
// ebml.go/parser.go/matroska.go (element-id table, SeekHead-driven
// lookup, Tag/Targets/SimpleTag walk) and pixelbender-go-matroska's
// matroska/matroska.go (TrackEntry field shape); both are
// zero-third-party-dependency repos, so this package's algorithms are
// its own, grounded on their Go structure rather than any dependency.
package matroska

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ebml"
	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// Header is the parsed EBML header.
type Header struct {
	DocType            string
	DocTypeVersion     uint64
	DocTypeReadVersion uint64
	EBMLVersion        uint64
}

// readHeader parses the EBML header at arena node hdrIdx.
func readHeader(r io.ReadSeeker, a *element.Arena, hdrIdx int32) (Header, error) {
	h := Header{DocTypeVersion: 1, DocTypeReadVersion: 1}
	children, err := a.Children(r, hdrIdx)
	if err != nil {
		return h, err
	}
	for _, idx := range children {
		n := a.Get(idx)
		payload, err := readLeafPayload(r, n)
		if err != nil {
			return h, err
		}
		switch n.ID {
		case ebml.IDEBMLVersion:
			h.EBMLVersion = ebml.DecodeUint(payload)
		case ebml.IDEBMLDocType:
			h.DocType = string(payload)
		case ebml.IDEBMLDocTypeVersion:
			h.DocTypeVersion = ebml.DecodeUint(payload)
		case ebml.IDEBMLDocTypeReadVersion:
			h.DocTypeReadVersion = ebml.DecodeUint(payload)
		}
	}
	return h, nil
}

// readLeafPayload reads the raw bytes of a non-master element's
// payload span.
func readLeafPayload(r io.ReadSeeker, n element.Node) ([]byte, error) {
	rd := ioprim.NewReader(r)
	if _, err := rd.Seek(n.Start+n.HeaderLen, io.SeekStart); err != nil {
		return nil, err
	}
	length := n.TotalLen - n.HeaderLen
	if length < 0 {
		return nil, model.TruncatedDataf("matroska.readLeafPayload", "element at %d has negative payload length", n.Start)
	}
	return rd.ReadBytes(int(length))
}

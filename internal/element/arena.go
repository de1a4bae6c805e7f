// Package element implements a generic, lazily-traversed element tree:
// a recursive parser for tree-structured binary containers shared by
// the ISO-BMFF, EBML, and (trivially) Ogg page readers.
//
// Back-references are modelled as an arena of nodes addressed by
// integer index rather than parent pointers: this avoids cyclic
// ownership and makes lazy child/sibling discovery a matter of filling
// in an index instead of constructing a pointer graph up front.
package element

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/model"
)

// None is the arena-index sentinel meaning "no such node".
const None int32 = -1

// Node is one element in the tree: absolute start offset, header
// length, total length, a format-specific identifier, and index-based
// back/forward references.
type Node struct {
	ID         uint64
	Start      int64
	HeaderLen  int64
	TotalLen   int64
	IsParent   bool
	Depth      int32
	Parent     int32
	FirstChild int32
	NextSib    int32

	// childScanned/siblingScanned record whether FirstChild/NextSib have
	// actually been resolved yet, since None (-1) is itself a valid
	// resolved value and can't double as "not computed".
	childScanned   bool
	siblingScanned bool
}

// End returns the first byte past this node.
func (n Node) End() int64 { return n.Start + n.TotalLen }

// HeaderReader is the per-format capability set the arena needs:
// reading one element header, telling parents from leaves, and the
// max-size clamp a parent context provides to its children.
type HeaderReader interface {
	// ReadHeader reads one element header at offset, constrained to not
	// exceed maxSize bytes total (header + payload). It returns the
	// element id, header length, declared total length (header +
	// payload), and whether the element is a container. io.EOF (or a
	// wrapped equivalent) signals "no more elements fit in this span".
	ReadHeader(r io.ReadSeeker, offset int64, maxSize int64) (id uint64, headerLen int64, totalLen int64, isParent bool, err error)
}

// Arena owns every Node discovered so far for one Container's tree. It
// is strictly single-threaded and non-reentrant on a given stream;
// callers needing concurrent access must use separate stream handles
// and separate Arenas.
type Arena struct {
	nodes    []Node
	reader   HeaderReader
	diag     *model.Diagnostics
	maxDepth int
	maxSize  int64
}

// NewArena creates an Arena backed by reader. maxDepth bounds recursive
// descent (the root is depth 0); maxSize rejects any single element
// whose declared total length exceeds it, before the element is pushed
// into the tree. Both come from config.Options so a pathological or
// adversarial file cannot exhaust the stack or trigger an oversized
// allocation downstream. Call NewRoot to register the root span before
// traversing.
func NewArena(reader HeaderReader, diag *model.Diagnostics, maxDepth int, maxSize int64) *Arena {
	return &Arena{reader: reader, diag: diag, maxDepth: maxDepth, maxSize: maxSize}
}

// NewRoot registers the root node spanning [start, start+size) with no
// header of its own: the root "is" the container, spanning the whole
// stream. Returns the root's arena index.
func (a *Arena) NewRoot(start, size int64) int32 {
	return a.push(Node{
		ID: 0, Start: start, HeaderLen: 0, TotalLen: size, Depth: 0,
		IsParent: true, Parent: None, FirstChild: None, NextSib: None,
	})
}

// Get returns the node at idx. Callers must only pass indices returned
// by this Arena.
func (a *Arena) Get(idx int32) Node { return a.nodes[idx] }

// Len returns the number of nodes discovered so far.
func (a *Arena) Len() int { return len(a.nodes) }

func (a *Arena) push(n Node) int32 {
	a.nodes = append(a.nodes, n)
	return int32(len(a.nodes) - 1)
}

// FirstChild returns the arena index of parentIdx's first child,
// reading it from the stream on first call and caching thereafter.
// Returns None if the parent has no room for a child element.
func (a *Arena) FirstChild(r io.ReadSeeker, parentIdx int32) (int32, error) {
	if a.nodes[parentIdx].childScanned {
		return a.nodes[parentIdx].FirstChild, nil
	}
	parent := a.nodes[parentIdx]
	idx, err := a.readChildAt(r, parentIdx, parent.Start+parent.HeaderLen)
	if err != nil {
		return None, err
	}
	a.nodes[parentIdx].FirstChild = idx
	a.nodes[parentIdx].childScanned = true
	return idx, nil
}

// NextSibling returns the arena index of idx's next sibling within the
// same parent span, caching on first call.
func (a *Arena) NextSibling(r io.ReadSeeker, idx int32) (int32, error) {
	if a.nodes[idx].siblingScanned {
		return a.nodes[idx].NextSib, nil
	}
	n := a.nodes[idx]
	next, err := a.readChildAt(r, n.Parent, n.End())
	if err != nil {
		return None, err
	}
	a.nodes[idx].NextSib = next
	a.nodes[idx].siblingScanned = true
	return next, nil
}

// readChildAt reads one element header at offset, bounded by the
// parent's remaining span, and pushes it as a new node with Parent set
// to parentIdx. Returns None (no error) at a clean end-of-span.
func (a *Arena) readChildAt(r io.ReadSeeker, parentIdx int32, offset int64) (int32, error) {
	parent := a.nodes[parentIdx]
	if a.maxDepth > 0 && int(parent.Depth)+1 > a.maxDepth {
		return None, model.InvalidDataf("element.readChildAt", "element tree exceeds max depth %d at offset %d", a.maxDepth, offset)
	}
	remaining := parent.End() - offset
	if remaining <= 0 {
		return None, nil
	}
	id, headerLen, totalLen, isParent, err := a.reader.ReadHeader(r, offset, remaining)
	if err == io.EOF {
		return None, nil
	}
	if err != nil {
		return None, err
	}
	if headerLen == 0 && totalLen == 0 {
		return None, nil
	}
	if a.maxSize > 0 && totalLen > a.maxSize {
		return None, model.TruncatedDataf("element.readChildAt", "element at offset %d declares size %d exceeding max element size %d", offset, totalLen, a.maxSize)
	}
	clamped := false
	if offset+totalLen > parent.End() {
		totalLen = parent.End() - offset
		clamped = true
	}
	idx := a.push(Node{
		ID: id, Start: offset, HeaderLen: headerLen, TotalLen: totalLen, Depth: parent.Depth + 1,
		IsParent: isParent, Parent: parentIdx, FirstChild: None, NextSib: None,
	})
	if clamped && a.diag != nil {
		a.diag.Warn("element.readChildAt", "element at offset %d clamped to parent span", offset)
	}
	return idx, nil
}

// ChildByID performs a sequential scan of parentIdx's children and
// returns the first one matching id.
func (a *Arena) ChildByID(r io.ReadSeeker, parentIdx int32, id uint64) (int32, bool, error) {
	idx, err := a.FirstChild(r, parentIdx)
	for idx != None && err == nil {
		if a.nodes[idx].ID == id {
			return idx, true, nil
		}
		idx, err = a.NextSibling(r, idx)
	}
	return None, false, err
}

// FindAt scans parentIdx's children for one starting exactly at offset
// (used by EBML's SeekHead, whose Seek entries record absolute byte
// positions rather than element ids to re-scan for). Returns ok=false
// if no child starts there.
func (a *Arena) FindAt(r io.ReadSeeker, parentIdx int32, offset int64) (idx int32, ok bool) {
	idx, err := a.FirstChild(r, parentIdx)
	for idx != None && err == nil {
		if a.nodes[idx].Start == offset {
			return idx, true
		}
		idx, err = a.NextSibling(r, idx)
	}
	return None, false
}

// Children returns every direct child of parentIdx, fully resolving the
// sibling chain.
func (a *Arena) Children(r io.ReadSeeker, parentIdx int32) ([]int32, error) {
	var out []int32
	idx, err := a.FirstChild(r, parentIdx)
	for idx != None && err == nil {
		out = append(out, idx)
		idx, err = a.NextSibling(r, idx)
	}
	return out, err
}

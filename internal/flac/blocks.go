// Package flac implements the native FLAC metadata block chain: the
// 4-byte block header (last-flag + type + length), the
// STREAMINFO technical parameters, and VORBIS_COMMENT/PICTURE editing
// with unknown/APPLICATION blocks preserved verbatim. Grounded on
// cesargomez89-navidrums/internal/tagging/tagging.go's writeRawBlock
// and calcAudioOffset helpers (which drove mewkiz/flac's block-writing
// API); reimplemented at the byte level since mewkiz/flac and
// go-flac/flacvorbis+flacpicture are the core algorithm this package
// replaces (DESIGN.md "Dropped teacher dependencies").
package flac

import (
	"github.com/cesargomez89/mediatags/internal/constants"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// Block type codes.
const (
	TypeStreamInfo    = 0
	TypePadding       = 1
	TypeApplication   = 2
	TypeSeekTable     = 3
	TypeVorbisComment = 4
	TypeCueSheet      = 5
	TypePicture       = 6
)

// Block is one metadata block: its type, whether it is the last block
// in the chain, and its raw payload (STREAMINFO/VORBIS_COMMENT/PICTURE
// payloads are additionally decoded by the caller; this layer preserves
// every block's bytes so unknown/APPLICATION blocks round-trip
// verbatim).
type Block struct {
	Type    int
	Last    bool
	Payload []byte
}

const headerSize = 4
const maxBlockLen = 1<<24 - 1 // largest length a 24-bit length field holds

// ReadChain reads the full metadata-block chain starting immediately
// after the "fLaC" magic (already consumed by the caller). Stops after
// the block with Last==true.
func ReadChain(rd *ioprim.Reader, diag *model.Diagnostics) ([]Block, error) {
	var blocks []Block
	for {
		hdr, err := rd.U8()
		if err != nil {
			return nil, err
		}
		last := hdr&0x80 != 0
		blockType := int(hdr & 0x7F)
		length, err := rd.BU24()
		if err != nil {
			return nil, err
		}
		if length > maxBlockLen {
			return nil, model.TruncatedDataf("flac.ReadChain", "block type %d declares implausible length %d", blockType, length)
		}
		payload, err := rd.ReadBytes(int(length))
		if err != nil {
			return nil, err
		}
		if blockType > TypePicture && blockType != 127 {
			diag.Info("flac.ReadChain", "unrecognised block type %d preserved verbatim", blockType)
		}
		blocks = append(blocks, Block{Type: blockType, Last: last, Payload: payload})
		if last {
			break
		}
	}
	if len(blocks) == 0 || blocks[0].Type != TypeStreamInfo {
		diag.Warn("flac.ReadChain", "STREAMINFO is not the first metadata block")
	}
	return blocks, nil
}

// WriteChain serialises blocks, forcing the Last flag on exactly the
// final block regardless of what each Block.Last said coming in (the
// writer, not the caller, owns chain termination).
func WriteChain(w *ioprim.Writer, blocks []Block) error {
	for i, b := range blocks {
		if len(b.Payload) > maxBlockLen {
			return model.InvalidDataf("flac.WriteChain", "block type %d payload %d exceeds 24-bit length", b.Type, len(b.Payload))
		}
		hdr := byte(b.Type & 0x7F)
		if i == len(blocks)-1 {
			hdr |= 0x80
		}
		w.U8(hdr)
		w.BU24(uint32(len(b.Payload)))
		w.Write(b.Payload)
	}
	return nil
}

// ReadMagic consumes and validates the leading "fLaC" magic.
func ReadMagic(rd *ioprim.Reader) error {
	magic, err := rd.FixedString(4)
	if err != nil {
		return err
	}
	if magic != constants.MagicFLAC {
		return model.InvalidDataf("flac.ReadMagic", "missing fLaC magic")
	}
	return nil
}

package flac

import (
	"github.com/cesargomez89/mediatags/internal/model"
	"github.com/cesargomez89/mediatags/internal/vorbiscomment"
)

// ToTag builds the uniform model.Tag from a block chain's
// VORBIS_COMMENT and PICTURE blocks; other block types have
// no tag-model representation and are round-tripped by the chain as-is.
func ToTag(blocks []Block, diag *model.Diagnostics) (*model.Tag, error) {
	tag := &model.Tag{Format: model.TagFormatVorbisComment, Target: model.FileTarget}
	for _, b := range blocks {
		switch b.Type {
		case TypeVorbisComment:
			vc, err := vorbiscomment.Decode(b.Payload)
			if err != nil {
				diag.Warn("flac.ToTag", "malformed VORBIS_COMMENT block: %v", err)
				continue
			}
			inner := vorbiscomment.ToTag(vc)
			tag.Version = inner.Version
			tag.Fields = append(tag.Fields, inner.Fields...)
		case TypePicture:
			pic, err := decodePicture(b.Payload)
			if err != nil {
				diag.Warn("flac.ToTag", "malformed PICTURE block: %v", err)
				continue
			}
			tag.Fields = append(tag.Fields, model.TagField{ID: "PICTURE", Value: model.PictureTagValue(pic)})
		}
	}
	return tag, nil
}

// ApplyTag rewrites blocks to reflect tag: the VORBIS_COMMENT block is
// replaced (or inserted right after STREAMINFO if absent), PICTURE
// blocks are replaced, and every other block (STREAMINFO, PADDING,
// APPLICATION, SEEKTABLE, CUESHEET, unknown) is preserved byte-for-byte
// and in relative order. New PICTURE blocks are inserted before any
// PADDING block (spec concrete scenario 5).
func ApplyTag(blocks []Block, tag *model.Tag, vendor string) []Block {
	var (
		out      []Block
		pictures []Block
		comment  *Block
	)
	for _, f := range tag.Fields {
		if f.Value.Kind == model.ValuePicture {
			pictures = append(pictures, Block{Type: TypePicture, Payload: encodePicture(f.Value.PictureValue)})
		}
	}
	vcBlock := vorbiscomment.FromTag(tag, vendor)
	encoded := vorbiscomment.Encode(vcBlock)
	comment = &Block{Type: TypeVorbisComment, Payload: encoded}

	commentPlaced := false
	paddingSeen := false
	for _, b := range blocks {
		switch b.Type {
		case TypeVorbisComment:
			if !commentPlaced {
				out = append(out, *comment)
				commentPlaced = true
			}
		case TypePicture:
			// Dropped; replaced by the pictures slice built above.
		case TypePadding:
			if !paddingSeen {
				out = append(out, pictures...)
				paddingSeen = true
			}
			out = append(out, b)
		default:
			out = append(out, b)
		}
	}
	if !commentPlaced {
		out = insertAfterStreamInfo(out, *comment)
	}
	if !paddingSeen {
		out = append(out, pictures...)
	}
	return out
}

func insertAfterStreamInfo(blocks []Block, b Block) []Block {
	if len(blocks) == 0 {
		return []Block{b}
	}
	out := make([]Block, 0, len(blocks)+1)
	out = append(out, blocks[0])
	out = append(out, b)
	out = append(out, blocks[1:]...)
	return out
}

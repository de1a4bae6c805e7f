// Package vorbiscomment implements the key=value comment codec shared
// by Ogg Vorbis/Opus streams, native FLAC's VORBIS_COMMENT block, and
// FLAC-in-Ogg. Modeled on the vendor-string-plus-ordered-"KEY=value"-list
// shape cesargomez89-navidrums/internal/tagging/tagging.go's
// buildVorbisComment helper builds for FLAC, generalised into a
// standalone codec both Ogg and FLAC call into.
package vorbiscomment

import (
	"bytes"
	"strings"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// Comment is a single decoded "KEY=value" entry, key case-folded to
// uppercase per the Vorbis comment spec's case-insensitive field names.
type Comment struct {
	Key   string
	Value string
}

// Block is a parsed Vorbis comment: a vendor string and an ordered list
// of comments (duplicates preserved, -style tie-break applied
// uniformly across formats).
type Block struct {
	Vendor   string
	Comments []Comment
}

// maxCommentLength bounds a single comment entry so a corrupt length
// field cannot trigger a multi-gigabyte allocation.
const maxCommentLength = 1 << 24

// Decode parses a Vorbis comment block body (the bytes immediately
// after any format-specific framing — FLAC's block header, or Ogg's
// packet header — have already been stripped by the caller).
func Decode(body []byte) (*Block, error) {
	rd := ioprim.NewReader(bytes.NewReader(body))
	vendorLen, err := rd.LU32()
	if err != nil {
		return nil, err
	}
	if vendorLen > maxCommentLength {
		return nil, model.TruncatedDataf("vorbiscomment.Decode", "vendor string length %d implausible", vendorLen)
	}
	vendorBytes, err := rd.ReadBytes(int(vendorLen))
	if err != nil {
		return nil, err
	}
	count, err := rd.LU32()
	if err != nil {
		return nil, err
	}

	block := &Block{Vendor: string(vendorBytes)}
	for i := uint32(0); i < count; i++ {
		n, err := rd.LU32()
		if err != nil {
			return nil, err
		}
		if n > maxCommentLength {
			return nil, model.TruncatedDataf("vorbiscomment.Decode", "comment %d length %d implausible", i, n)
		}
		raw, err := rd.ReadBytes(int(n))
		if err != nil {
			return nil, err
		}
		key, value, ok := splitComment(string(raw))
		if !ok {
			continue // malformed entry without '='; skip, non-fatal
		}
		block.Comments = append(block.Comments, Comment{Key: strings.ToUpper(key), Value: value})
	}
	return block, nil
}

func splitComment(s string) (key, value string, ok bool) {
	idx := strings.IndexByte(s, '=')
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

// Encode serialises block back to its wire form.
func Encode(block *Block) []byte {
	w := ioprim.NewWriter()
	w.LU32(uint32(len(block.Vendor)))
	w.FixedString(block.Vendor)
	w.LU32(uint32(len(block.Comments)))
	for _, c := range block.Comments {
		entry := c.Key + "=" + c.Value
		w.LU32(uint32(len(entry)))
		w.FixedString(entry)
	}
	return w.Bytes()
}

// ToTag converts a decoded Block into the uniform model.Tag, grouping
// repeated keys (e.g. multiple ARTIST entries) into one multi-value
// TagField, per 's generalised multi-artist case.
func ToTag(block *Block) *model.Tag {
	tag := &model.Tag{Format: model.TagFormatVorbisComment, Target: model.FileTarget, Version: block.Vendor}
	order := make([]string, 0)
	byKey := make(map[string][]string)
	for _, c := range block.Comments {
		if _, seen := byKey[c.Key]; !seen {
			order = append(order, c.Key)
		}
		byKey[c.Key] = append(byKey[c.Key], c.Value)
	}
	for _, key := range order {
		tag.Fields = append(tag.Fields, model.TagField{ID: key, Value: model.TextValues(byKey[key])})
	}
	return tag
}

// FromTag converts a model.Tag back into a Block with the given vendor
// string, flattening multi-value fields into repeated "KEY=value"
// entries in field order.
func FromTag(tag *model.Tag, vendor string) *Block {
	block := &Block{Vendor: vendor}
	for _, f := range tag.Fields {
		if f.Value.Kind == model.ValuePicture {
			continue // handled separately via METADATA_BLOCK_PICTURE
		}
		for _, v := range f.Value.Text {
			block.Comments = append(block.Comments, Comment{Key: strings.ToUpper(f.ID), Value: v})
		}
	}
	return block
}

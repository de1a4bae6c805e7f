package matroska

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ebml"
	"github.com/cesargomez89/mediatags/internal/element"
	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// scopeForTargetType picks the model.TagTargetScope from which Targets
// UID is set, checking track, edition, chapter and attachment in that
// order; TargetTypeValue plays no part. Matroska has no dedicated "file" TypeValue; a Tag with no UID at all
// applies to the whole segment, which this library reports as
// model.TargetFile.
func scopeForTargetType(tagTrackUID, tagEditionUID, tagChapterUID, tagAttachmentUID uint64) model.TagTargetScope {
	switch {
	case tagTrackUID != 0:
		return model.TargetTrack
	case tagEditionUID != 0:
		return model.TargetEdition
	case tagChapterUID != 0:
		return model.TargetChapter
	case tagAttachmentUID != 0:
		return model.TargetAttachment
	default:
		return model.TargetFile
	}
}

func (b *backing) parseTags(r io.ReadSeeker, tagsIdx int32, diag *model.Diagnostics) ([]*model.Tag, error) {
	entries, err := b.arena.Children(r, tagsIdx)
	if err != nil {
		return nil, err
	}
	var out []*model.Tag
	for _, tagIdx := range entries {
		n := b.arena.Get(tagIdx)
		if n.ID != ebml.IDTag {
			continue
		}
		tag, err := b.parseTagElement(r, tagIdx)
		if err != nil {
			diag.Warn("matroska.parseTags", "Tag at %d: %v", n.Start, err)
			continue
		}
		out = append(out, tag)
	}
	return out, nil
}

func (b *backing) parseTagElement(r io.ReadSeeker, tagIdx int32) (*model.Tag, error) {
	tag := &model.Tag{Format: model.TagFormatMatroska, Version: "1"}
	children, err := b.arena.Children(r, tagIdx)
	if err != nil {
		return nil, err
	}
	var trackUID, editionUID, chapterUID, attachmentUID, typeValue uint64
	var typeName string
	for _, idx := range children {
		n := b.arena.Get(idx)
		switch n.ID {
		case ebml.IDTargets:
			tchildren, err := b.arena.Children(r, idx)
			if err != nil {
				return nil, err
			}
			for _, tidx := range tchildren {
				tn := b.arena.Get(tidx)
				payload, err := readLeafPayload(r, tn)
				if err != nil {
					return nil, err
				}
				switch tn.ID {
				case ebml.IDTargetTypeValue:
					typeValue = ebml.DecodeUint(payload)
				case ebml.IDTargetType:
					typeName = string(payload)
				case ebml.IDTagTrackUID:
					trackUID = ebml.DecodeUint(payload)
				case ebml.IDTagEditionUID:
					editionUID = ebml.DecodeUint(payload)
				case ebml.IDTagChapterUID:
					chapterUID = ebml.DecodeUint(payload)
				case ebml.IDTagAttachmentUID:
					attachmentUID = ebml.DecodeUint(payload)
				}
			}
		case ebml.IDSimpleTag:
			field, err := b.parseSimpleTag(r, idx)
			if err != nil {
				return nil, err
			}
			tag.Fields = append(tag.Fields, field)
		}
	}
	scope := scopeForTargetType(trackUID, editionUID, chapterUID, attachmentUID)
	uid := trackUID
	switch scope {
	case model.TargetEdition:
		uid = editionUID
	case model.TargetChapter:
		uid = chapterUID
	case model.TargetAttachment:
		uid = attachmentUID
	}
	tag.Target = model.TagTarget{Scope: scope, UID: uid, TypeValue: int(typeValue)}
	_ = typeName // TargetType string is informational only; the UIDs drive scope.
	return tag, nil
}

func (b *backing) parseSimpleTag(r io.ReadSeeker, simpleIdx int32) (model.TagField, error) {
	field := model.TagField{}
	children, err := b.arena.Children(r, simpleIdx)
	if err != nil {
		return field, err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		switch n.ID {
		case ebml.IDTagName:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return field, err
			}
			field.ID = string(payload)
		case ebml.IDTagLanguage:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return field, err
			}
			field.Language = string(payload)
		case ebml.IDTagString:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return field, err
			}
			field.Value = model.TextValue(string(payload))
		case ebml.IDTagBinary:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return field, err
			}
			field.Value = model.TagValue{Kind: model.ValueBinary, Binary: payload}
		case ebml.IDSimpleTag:
			nested, err := b.parseSimpleTag(r, idx)
			if err != nil {
				return field, err
			}
			field.Nested = append(field.Nested, nested)
		}
	}
	return field, nil
}

// encodeTags serialises every tag in tags into one Tags element's
// payload (a sequence of Tag elements).
func encodeTags(tags []*model.Tag) []byte {
	w := ioprim.NewWriter()
	for _, tag := range tags {
		ebml.EncodeElement(w, ebml.IDTag, encodeTagElement(tag))
	}
	return w.Bytes()
}

func encodeTagElement(tag *model.Tag) []byte {
	w := ioprim.NewWriter()
	ebml.EncodeElement(w, ebml.IDTargets, encodeTargets(tag.Target))
	for _, f := range tag.Fields {
		ebml.EncodeElement(w, ebml.IDSimpleTag, encodeSimpleTag(f))
	}
	return w.Bytes()
}

func encodeTargets(t model.TagTarget) []byte {
	w := ioprim.NewWriter()
	if t.TypeValue > 0 {
		ebml.EncodeElement(w, ebml.IDTargetTypeValue, ebml.EncodeUint(uint64(t.TypeValue)))
	}
	switch t.Scope {
	case model.TargetTrack:
		ebml.EncodeElement(w, ebml.IDTagTrackUID, ebml.EncodeUint(t.UID))
	case model.TargetEdition:
		ebml.EncodeElement(w, ebml.IDTagEditionUID, ebml.EncodeUint(t.UID))
	case model.TargetChapter:
		ebml.EncodeElement(w, ebml.IDTagChapterUID, ebml.EncodeUint(t.UID))
	case model.TargetAttachment:
		ebml.EncodeElement(w, ebml.IDTagAttachmentUID, ebml.EncodeUint(t.UID))
	}
	return w.Bytes()
}

func encodeSimpleTag(f model.TagField) []byte {
	w := ioprim.NewWriter()
	ebml.EncodeElement(w, ebml.IDTagName, []byte(f.ID))
	if f.Language != "" {
		ebml.EncodeElement(w, ebml.IDTagLanguage, []byte(f.Language))
	} else {
		ebml.EncodeElement(w, ebml.IDTagLanguage, []byte("und"))
	}
	switch f.Value.Kind {
	case model.ValueBinary:
		ebml.EncodeElement(w, ebml.IDTagBinary, f.Value.Binary)
	case model.ValueText:
		ebml.EncodeElement(w, ebml.IDTagString, []byte(f.Value.First()))
	default:
		if !f.Value.IsEmpty() {
			ebml.EncodeElement(w, ebml.IDTagString, []byte(f.Value.First()))
		}
	}
	for _, nested := range f.Nested {
		ebml.EncodeElement(w, ebml.IDSimpleTag, encodeSimpleTag(nested))
	}
	return w.Bytes()
}

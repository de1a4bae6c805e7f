package matroska

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ebml"
	"github.com/cesargomez89/mediatags/internal/model"
)

func (b *backing) parseAttachments(r io.ReadSeeker, attachmentsIdx int32, diag *model.Diagnostics) ([]model.Attachment, error) {
	entries, err := b.arena.Children(r, attachmentsIdx)
	if err != nil {
		return nil, err
	}
	var out []model.Attachment
	for _, idx := range entries {
		n := b.arena.Get(idx)
		if n.ID != ebml.IDAttachedFile {
			continue
		}
		a, err := b.parseAttachedFile(r, idx)
		if err != nil {
			diag.Warn("matroska.parseAttachments", "AttachedFile at %d: %v", n.Start, err)
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (b *backing) parseAttachedFile(r io.ReadSeeker, fileIdx int32) (model.Attachment, error) {
	a := model.Attachment{}
	children, err := b.arena.Children(r, fileIdx)
	if err != nil {
		return a, err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		payload, err := readLeafPayload(r, n)
		if err != nil {
			return a, err
		}
		switch n.ID {
		case ebml.IDFileDescription:
			a.Description = string(payload)
		case ebml.IDFileName:
			a.FileName = string(payload)
		case ebml.IDFileMimeType:
			a.MimeType = string(payload)
		case ebml.IDFileData:
			a.Data = payload
		case ebml.IDFileUID:
			a.UID = ebml.DecodeUint(payload)
		}
	}
	return a, nil
}

package matroska

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ebml"
	"github.com/cesargomez89/mediatags/internal/model"
)

func (b *backing) parseChapters(r io.ReadSeeker, chaptersIdx int32, diag *model.Diagnostics) ([]model.EditionEntry, error) {
	entries, err := b.arena.Children(r, chaptersIdx)
	if err != nil {
		return nil, err
	}
	var out []model.EditionEntry
	for _, editionIdx := range entries {
		n := b.arena.Get(editionIdx)
		if n.ID != ebml.IDEditionEntry {
			continue
		}
		e, err := b.parseEditionEntry(r, editionIdx)
		if err != nil {
			diag.Warn("matroska.parseChapters", "EditionEntry at %d: %v", n.Start, err)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (b *backing) parseEditionEntry(r io.ReadSeeker, editionIdx int32) (model.EditionEntry, error) {
	e := model.EditionEntry{}
	children, err := b.arena.Children(r, editionIdx)
	if err != nil {
		return e, err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		switch n.ID {
		case ebml.IDEditionUID:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return e, err
			}
			e.UID = ebml.DecodeUint(payload)
		case ebml.IDEditionFlagDefault:
			e.Default = decodeFlag(r, n, false)
		case ebml.IDEditionFlagHidden:
			e.Hidden = decodeFlag(r, n, false)
		case ebml.IDEditionFlagOrdered:
			e.Ordered = decodeFlag(r, n, false)
		case ebml.IDChapterAtom:
			ch, err := b.parseChapterAtom(r, idx)
			if err != nil {
				return e, err
			}
			e.Chapters = append(e.Chapters, ch)
		}
	}
	return e, nil
}

func (b *backing) parseChapterAtom(r io.ReadSeeker, atomIdx int32) (model.Chapter, error) {
	ch := model.Chapter{Enabled: true}
	var startNs, endNs uint64
	children, err := b.arena.Children(r, atomIdx)
	if err != nil {
		return ch, err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		switch n.ID {
		case ebml.IDChapterUID:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return ch, err
			}
			ch.UID = ebml.DecodeUint(payload)
		case ebml.IDChapterTimeStart:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return ch, err
			}
			startNs = ebml.DecodeUint(payload)
		case ebml.IDChapterTimeEnd:
			payload, err := readLeafPayload(r, n)
			if err != nil {
				return ch, err
			}
			endNs = ebml.DecodeUint(payload)
		case ebml.IDChapterFlagHidden:
			ch.Hidden = decodeFlag(r, n, false)
		case ebml.IDChapterFlagEnabled:
			ch.Enabled = decodeFlag(r, n, true)
		case ebml.IDChapterDisplay:
			title, lang, err := b.parseChapterDisplay(r, idx)
			if err != nil {
				return ch, err
			}
			if ch.Title == "" {
				ch.Title, ch.Language = title, lang
			}
		case ebml.IDChapterAtom:
			nested, err := b.parseChapterAtom(r, idx)
			if err != nil {
				return ch, err
			}
			ch.Nested = append(ch.Nested, nested)
		}
	}
	ch.StartMs = int64(startNs / 1e6)
	ch.EndMs = int64(endNs / 1e6)
	return ch, nil
}

func (b *backing) parseChapterDisplay(r io.ReadSeeker, displayIdx int32) (title, lang string, err error) {
	children, err := b.arena.Children(r, displayIdx)
	if err != nil {
		return "", "", err
	}
	for _, idx := range children {
		n := b.arena.Get(idx)
		payload, err := readLeafPayload(r, n)
		if err != nil {
			return "", "", err
		}
		switch n.ID {
		case ebml.IDChapString:
			title = string(payload)
		case ebml.IDChapLanguage:
			lang = string(payload)
		}
	}
	return title, lang, nil
}

package flac

import (
	"io"

	"github.com/cesargomez89/mediatags/internal/ioprim"
	"github.com/cesargomez89/mediatags/internal/model"
)

// ApplyChanges implements model.Backing for native FLAC:
// since dst is forward-only, every call rebuilds the metadata-block
// chain (ApplyTag already preserves PADDING/APPLICATION/SEEKTABLE/
// CUESHEET/unknown blocks byte-for-byte) and streams the original
// audio frames after it unchanged.
func (b *backing) ApplyChanges(c *model.Container, src model.ReadSeeker, dst io.Writer, progress model.ProgressFeedback) (*model.Diagnostics, error) {
	diag := &model.Diagnostics{}
	progress = model.EnsureProgress(progress)

	log := b.log.WithOperation("applyChanges")
	log.Debug("applying changes to native FLAC stream")

	var tag *model.Tag
	for _, t := range c.Tags {
		if t.Target.Scope == model.TargetFile {
			tag = t
			break
		}
	}
	if tag == nil {
		tag = &model.Tag{Format: model.TagFormatVorbisComment, Target: model.FileTarget}
	}
	vendor := tag.Version
	if vendor == "" {
		vendor = defaultVendor
	}
	newBlocks := ApplyTag(b.blocks, tag, vendor)

	w := ioprim.NewWriter()
	w.FixedString("fLaC")
	if err := WriteChain(w, newBlocks); err != nil {
		return nil, err
	}
	progress.Report(10, "flac: writing metadata block chain")
	if _, err := dst.Write(w.Bytes()); err != nil {
		return nil, model.IoErrorf("flac.ApplyChanges", err, "write block chain")
	}

	if _, err := src.Seek(b.audioStart, io.SeekStart); err != nil {
		return nil, model.IoErrorf("flac.ApplyChanges", err, "seek to audio frames")
	}
	progress.Report(50, "flac: copying audio frames")
	if _, err := io.Copy(dst, src); err != nil {
		return nil, model.IoErrorf("flac.ApplyChanges", err, "copy audio frames")
	}
	progress.Report(100, "flac: rewrite complete")
	diag.Info("flac.ApplyChanges", "metadata block chain rewritten, audio frames copied verbatim")
	return diag, nil
}

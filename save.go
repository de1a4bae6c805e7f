package mediatags

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cesargomez89/mediatags/internal/model"
)

// SaveToFile rewrites filePath in place by applying c's current
// Tracks/Tags/Chapters/Attachments through its Backing, then atomically
// replacing the original file.
//
// The new content is written to a temp file in filePath's own
// directory (so the final rename stays on the same filesystem), synced,
// closed, and renamed over the original; the directory entry is synced
// afterward too. This mirrors the durability dance a rewrite of this
// kind needs: a crash between write and rename must never leave a
// half-written file in filePath's place. progress may be nil.
func SaveToFile(c *model.Container, filePath string, progress model.ProgressFeedback) (*model.Diagnostics, error) {
	dir := filepath.Dir(filePath)
	tmpFile, err := os.CreateTemp(dir, "*.mediatags.tmp")
	if err != nil {
		return nil, model.IoErrorf("mediatags.SaveToFile", err, "create temp file")
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	diag, err := c.ApplyChanges(tmpFile, progress)
	if err != nil {
		_ = tmpFile.Close()
		return diag, err
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return diag, model.IoErrorf("mediatags.SaveToFile", err, "sync temp file")
	}
	if err := tmpFile.Close(); err != nil {
		return diag, model.IoErrorf("mediatags.SaveToFile", err, "close temp file")
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		return diag, model.IoErrorf("mediatags.SaveToFile", err, "replace original file")
	}

	now := time.Now()
	if err := os.Chtimes(filePath, now, now); err != nil {
		return diag, model.IoErrorf("mediatags.SaveToFile", err, "update file mtime")
	}

	if dirHandle, err := os.Open(dir); err == nil {
		_ = dirHandle.Sync()
		_ = dirHandle.Close()
	}

	success = true
	return diag, nil
}

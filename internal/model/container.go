package model

import "io"

// Format identifies the container family a Container was parsed from.
type Format int

const (
	FormatUnknown Format = iota
	FormatMP4
	FormatMatroska
	FormatOgg
	FormatFLAC
	FormatWAV
	FormatMP3
	FormatADTS
	FormatIVF
)

func (f Format) String() string {
	switch f {
	case FormatMP4:
		return "mp4"
	case FormatMatroska:
		return "matroska"
	case FormatOgg:
		return "ogg"
	case FormatFLAC:
		return "flac"
	case FormatWAV:
		return "wav"
	case FormatMP3:
		return "mp3"
	case FormatADTS:
		return "adts"
	case FormatIVF:
		return "ivf"
	default:
		return "unknown"
	}
}

// ReadSeeker is the abstracted seekable byte source every container
// parser reads from; I/O is abstracted, with no filesystem assumptions
// beyond this.
type ReadSeeker = io.ReadSeeker

// WriteSeeker is the abstracted seekable byte sink used during
// in-place rewrites.
type WriteSeeker interface {
	io.Writer
	io.Seeker
}

// Backing is the capability set each container format implements.
// Container holds one Backing and delegates ApplyChanges to it; the
// element tree underneath is a strongly-typed sum over container
// kinds, never a shared abstract base.
type Backing interface {
	// ApplyChanges serializes the edited in-memory model (Container's
	// Tracks/Tags/Chapters/Attachments, as mutated by the caller) back
	// to dst, choosing in-place vs. full-rewrite .9. It
	// returns Diagnostics describing what happened, or an error if the
	// operation could not proceed at all.
	ApplyChanges(c *Container, src ReadSeeker, dst io.Writer, progress ProgressFeedback) (*Diagnostics, error)
}

// Container is the root aggregator of a single parsed file.
// It owns its Tracks/Tags/Chapters/Attachments/EditionEntries; the
// element tree that produced them lives inside the format-specific
// Backing, not here, since its shape is format-specific.
type Container struct {
	Format  Format
	DocType string // EBML DocType ("matroska" / "webm"); empty otherwise
	Version string

	Tracks      []*Track
	Tags        []*Tag
	Chapters    []Chapter
	Editions    []EditionEntry
	Attachments []Attachment

	Diagnostics Diagnostics

	backing Backing
	source  ReadSeeker
}

// NewContainer constructs an empty Container for the given format,
// bound to backing for ApplyChanges and source for re-reads during
// rewrite planning.
func NewContainer(format Format, backing Backing, source ReadSeeker) *Container {
	return &Container{Format: format, backing: backing, source: source}
}

// Source returns the ReadSeeker the container was parsed from.
func (c *Container) Source() ReadSeeker { return c.source }

// ApplyChanges writes the current in-memory model back to dst via the
// format-specific Backing.
func (c *Container) ApplyChanges(dst io.Writer, progress ProgressFeedback) (*Diagnostics, error) {
	if c.backing == nil {
		return nil, NewError(KindInvalidData, "Container.ApplyChanges", "container has no backing writer", nil)
	}
	return c.backing.ApplyChanges(c, c.source, dst, EnsureProgress(progress))
}

// TagsForTarget returns every Tag whose Target matches scope and, when
// scope needs a UID (track/chapter/attachment/edition), uid.
func (c *Container) TagsForTarget(scope TagTargetScope, uid uint64) []*Tag {
	var out []*Tag
	for _, t := range c.Tags {
		if t.Target.Scope != scope {
			continue
		}
		if scope == TargetFile || t.Target.UID == uid {
			out = append(out, t)
		}
	}
	return out
}

// PrimaryTag returns the first file-scoped tag, creating and appending
// one of the given format if none exists yet. This is the common case
// for single-tag containers (MP4 ilst, FLAC VORBIS_COMMENT, ID3v2).
func (c *Container) PrimaryTag(format TagFormat) *Tag {
	for _, t := range c.Tags {
		if t.Target.Scope == TargetFile {
			return t
		}
	}
	t := &Tag{Format: format, Target: FileTarget}
	c.Tags = append(c.Tags, t)
	return t
}

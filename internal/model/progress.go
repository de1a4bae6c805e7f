package model

// ProgressFeedback reports percent-complete plus a step label during a
// rewrite, and is polled for cancellation at well-defined checkpoints:
// before each top-level element copy, after writing the tag region, and
// between each chunk-offset table update.
type ProgressFeedback interface {
	// Report is called with a percentage in [0, 100] and a short label
	// describing the current step, e.g. "copying mdat", "patching stco".
	Report(percent int, step string)
	// Cancelled is polled at checkpoints; once it returns true the
	// rewrite aborts with ErrOperationAborted and deletes any temporary
	// output.
	Cancelled() bool
}

// NoopProgress is a ProgressFeedback that reports nothing and never
// cancels; it is the default when a caller passes nil.
type NoopProgress struct{}

func (NoopProgress) Report(int, string) {}
func (NoopProgress) Cancelled() bool    { return false }

// CancelFlag is a minimal, goroutine-safe ProgressFeedback a caller can
// flip to trigger cancellation from another goroutine. It reports
// nothing.
type CancelFlag struct {
	ch chan struct{}
}

// NewCancelFlag returns a ready-to-use CancelFlag.
func NewCancelFlag() *CancelFlag {
	return &CancelFlag{ch: make(chan struct{})}
}

// Cancel requests cancellation; idempotent.
func (c *CancelFlag) Cancel() {
	select {
	case <-c.ch:
	default:
		close(c.ch)
	}
}

func (c *CancelFlag) Cancelled() bool {
	select {
	case <-c.ch:
		return true
	default:
		return false
	}
}

func (c *CancelFlag) Report(int, string) {}

// EnsureProgress returns p, or NoopProgress{} if p is nil, so callers
// inside the library never need a nil check.
func EnsureProgress(p ProgressFeedback) ProgressFeedback {
	if p == nil {
		return NoopProgress{}
	}
	return p
}

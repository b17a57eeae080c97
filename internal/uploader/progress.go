package uploader

// Phase labels the step a submission is currently in.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating_files"
	PhaseUploading  Phase = "uploading_files"
	PhaseSubmitting Phase = "submitting_metadata"
	PhaseSucceeded  Phase = "succeeded"
	PhaseFailed     Phase = "failed"
)

// Progress is a milestone report emitted during Submit.
type Progress struct {
	Phase   Phase
	Percent int
}

// ProgressFunc receives milestone updates. It is called from the goroutine
// running Submit.
type ProgressFunc func(Progress)

// progressTracker keeps the reported percentage monotonically non-decreasing
// even when a step is skipped or retried.
type progressTracker struct {
	fn   ProgressFunc
	last int
}

func newProgressTracker(fn ProgressFunc) *progressTracker {
	return &progressTracker{fn: fn}
}

func (t *progressTracker) report(phase Phase, percent int) {
	if percent < t.last {
		percent = t.last
	}
	t.last = percent
	if t.fn != nil {
		t.fn(Progress{Phase: phase, Percent: percent})
	}
}

package uploader

import (
	"context"
	"sync"
	"time"
)

// Stage names a step of the submission wizard.
type Stage string

const (
	// StageAssets is the first step: picking the four binaries.
	StageAssets Stage = "assets"
	// StageMetadata is the second step: the form fields.
	StageMetadata Stage = "metadata"
	// StageSubmitting covers the network exchange.
	StageSubmitting Stage = "submitting"
	// StageSucceeded is terminal; the wizard navigates away after a delay.
	StageSucceeded Stage = "succeeded"
)

const defaultSuccessDelay = 3 * time.Second

// WizardConfig tunes wizard behavior.
type WizardConfig struct {
	// SuccessDelay is how long the success state is shown before Navigate
	// fires; defaults to 3s.
	SuccessDelay time.Duration
	// Navigate is invoked once after a successful submit, after the delay.
	Navigate func(record *GameRecord)
	// OnProgress receives submit milestones.
	OnProgress ProgressFunc
}

// Wizard drives a draft through the two-step submission flow: assets first,
// then metadata, then the submit exchange. A failed submit returns to the
// metadata step with the error retained and staged uploads kept.
type Wizard struct {
	mu     sync.Mutex
	client *Client
	cfg    WizardConfig
	draft  *Draft
	stage  Stage
	fields map[string]string
	err    *Error
}

// NewWizard starts a wizard at the asset step.
func NewWizard(client *Client, draft *Draft, cfg WizardConfig) *Wizard {
	if cfg.SuccessDelay <= 0 {
		cfg.SuccessDelay = defaultSuccessDelay
	}
	return &Wizard{client: client, cfg: cfg, draft: draft, stage: StageAssets}
}

// Stage returns the current step.
func (w *Wizard) Stage() Stage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stage
}

// Draft exposes the draft being edited.
func (w *Wizard) Draft() *Draft { return w.draft }

// Errors returns the field messages from the last failed guard or submit.
func (w *Wizard) Errors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fields
}

// LastError returns the failure from the most recent submit attempt, if any.
func (w *Wizard) LastError() *Error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Next advances from the asset step to the metadata step. It is guarded:
// every assigned file must pass its slot rule, and on a create flow every
// slot must be filled. Guard failures keep the wizard on the asset step with
// per-slot messages available through Errors.
func (w *Wizard) Next() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageAssets {
		return false
	}

	fields := ValidateFiles(w.draft, w.client.cfg.Limits)
	if !w.draft.IsEdit() {
		for _, slot := range Slots {
			if w.draft.Files[slot] != nil {
				continue
			}
			if _, ok := w.draft.Staged[slot]; ok {
				continue
			}
			if _, taken := fields[string(slot)]; !taken {
				fields[string(slot)] = string(slot) + " is required"
			}
		}
	}
	if len(fields) > 0 {
		w.fields = fields
		return false
	}

	w.fields = nil
	w.stage = StageMetadata
	return true
}

// Back returns from the metadata step to the asset step. Selected files and
// entered metadata are preserved.
func (w *Wizard) Back() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stage != StageMetadata {
		return false
	}
	w.stage = StageAssets
	w.fields = nil
	return true
}

// Submit runs the upload-then-save exchange. On success the wizard shows the
// success state and schedules Navigate; on failure it returns to the
// metadata step so the operator can correct and retry.
func (w *Wizard) Submit(ctx context.Context) (*GameRecord, error) {
	w.mu.Lock()
	if w.stage != StageMetadata {
		w.mu.Unlock()
		return nil, &Error{Kind: ValidationFailed, Message: "submit is only available from the metadata step"}
	}
	w.stage = StageSubmitting
	w.err = nil
	w.fields = nil
	w.mu.Unlock()

	record, err := w.client.Submit(ctx, w.draft, w.cfg.OnProgress)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		w.stage = StageMetadata
		if ue := AsError(err); ue != nil {
			w.err = ue
			w.fields = ue.Fields
		}
		return nil, err
	}

	w.stage = StageSucceeded
	if w.cfg.Navigate != nil {
		navigate := w.cfg.Navigate
		time.AfterFunc(w.cfg.SuccessDelay, func() { navigate(record) })
	}
	return record, nil
}

package uploader

import "context"

// TwoPhase applies a local state change immediately and confirms it with a
// remote call, restoring the snapshot when the call fails. It backs
// optimistic toggles such as banner activation in admin tooling.
type TwoPhase[T any] struct {
	value    T
	preImage *T
}

// NewTwoPhase starts from an initial value.
func NewTwoPhase[T any](value T) *TwoPhase[T] {
	return &TwoPhase[T]{value: value}
}

// Value returns the current, possibly unconfirmed, value.
func (t *TwoPhase[T]) Value() T { return t.value }

// Apply records the pre-image and switches to next. Only the snapshot from
// the first unconfirmed Apply is kept, so stacked applies roll back to the
// last confirmed value.
func (t *TwoPhase[T]) Apply(next T) {
	if t.preImage == nil {
		snapshot := t.value
		t.preImage = &snapshot
	}
	t.value = next
}

// Confirm runs the remote call. On success the applied value becomes the
// confirmed one; on failure the pre-image is restored and the error is
// returned unchanged.
func (t *TwoPhase[T]) Confirm(ctx context.Context, commit func(context.Context, T) error) error {
	if err := commit(ctx, t.value); err != nil {
		if t.preImage != nil {
			t.value = *t.preImage
			t.preImage = nil
		}
		return err
	}
	t.preImage = nil
	return nil
}

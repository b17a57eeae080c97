package uploader

import (
	"errors"
	"fmt"
)

// Kind classifies a submission failure so callers can branch without string
// matching.
type Kind string

const (
	// ValidationFailed means the draft never left the machine; Fields maps
	// each offending field or slot to a message.
	ValidationFailed Kind = "validation_failed"
	// AssetUploadFailed means the binary upload step was rejected or timed
	// out; nothing was saved.
	AssetUploadFailed Kind = "asset_upload_failed"
	// MetadataSaveFailed means binaries were stored but the record save
	// failed; staged paths on the draft let a retry skip the re-upload.
	MetadataSaveFailed Kind = "metadata_save_failed"
	// AuthenticationExpired means the API answered 401; the session cookie
	// is no longer valid.
	AuthenticationExpired Kind = "authentication_expired"
)

// ErrSubmissionInFlight is returned when Submit is called while an earlier
// call on the same client is still running.
var ErrSubmissionInFlight = errors.New("uploader: submission already in flight")

// Error is the failure type produced by Submit.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("uploader: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("uploader: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// AsError unwraps err into *Error, or nil if it is not one.
func AsError(err error) *Error {
	var ue *Error
	if errors.As(err, &ue) {
		return ue
	}
	return nil
}

func validationError(fields map[string]string) *Error {
	return &Error{Kind: ValidationFailed, Message: "draft is not ready to submit", Fields: fields}
}

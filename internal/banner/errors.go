package banner

import "errors"

var (
	// ErrBannerNotFound signals that the banner could not be located.
	ErrBannerNotFound = errors.New("banner not found")
	// ErrInvalidBanner signals missing or malformed banner fields.
	ErrInvalidBanner = errors.New("invalid banner")
)

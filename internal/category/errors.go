package category

import "errors"

var (
	// ErrCategoryNotFound signals that the category could not be located.
	ErrCategoryNotFound = errors.New("category not found")
	// ErrCategoryExists signals a duplicate category name.
	ErrCategoryExists = errors.New("category already exists")
	// ErrInvalidCategory signals a missing or malformed name.
	ErrInvalidCategory = errors.New("invalid category")
)

package game

import "errors"

var (
	// ErrGameNotFound signals that the record could not be located.
	ErrGameNotFound = errors.New("game not found")
	// ErrSlugExists signals a slug collision on create or rename.
	ErrSlugExists = errors.New("slug already exists")
	// ErrFileTooLarge signals an upload exceeding its slot ceiling.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUnsupportedFileType signals a file outside the slot's allow-list.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrUnknownSlot signals a multipart part that is not a recognized slot.
	ErrUnknownSlot = errors.New("unknown upload slot")
	// ErrInvalidGame signals metadata failing validation; details accompany it.
	ErrInvalidGame = errors.New("invalid game record")
	// ErrBadArchive signals an unreadable or empty game archive.
	ErrBadArchive = errors.New("unreadable game archive")
)

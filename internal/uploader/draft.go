// Package uploader implements the game submission workflow used by admin
// tooling: draft validation, the two-step wizard, and the orchestrated
// upload-then-save exchange with the portal API.
package uploader

import "io"

// Slot names one of the four file positions in a submission. The values
// match the multipart part names the upload endpoint expects.
type Slot string

const (
	SlotThumbnail Slot = "thumbnail"
	SlotIcon      Slot = "icon"
	SlotPreview   Slot = "gif"
	SlotArchive   Slot = "htmlZip"
)

// Slots lists every slot in a stable order.
var Slots = []Slot{SlotThumbnail, SlotIcon, SlotPreview, SlotArchive}

// File is one selected binary. Open is called once per submission attempt;
// it must return a fresh reader each time so a failed attempt can be retried.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// Metadata carries the form fields of a submission.
type Metadata struct {
	Name        string
	Description string
	Categories  []string
	Size        string
}

// StagedAsset is a binary the API has already stored for this draft. Staged
// paths survive a failed metadata save so a retry does not re-upload.
type StagedAsset struct {
	Path         string
	OriginalName string
}

// Draft is the transient state of one create or edit flow. GameID is empty
// for a create and set to the record's id for an edit; on edit, slots left
// nil mean "keep the stored asset".
type Draft struct {
	GameID   string
	Metadata Metadata
	Files    map[Slot]*File

	// Staged holds per-slot storage paths from a completed binary upload.
	Staged map[Slot]StagedAsset
}

// NewDraft returns an empty create-flow draft.
func NewDraft() *Draft {
	return &Draft{
		Files:  map[Slot]*File{},
		Staged: map[Slot]StagedAsset{},
	}
}

// NewEditDraft returns a draft bound to an existing record.
func NewEditDraft(gameID string) *Draft {
	d := NewDraft()
	d.GameID = gameID
	return d
}

// IsEdit reports whether the draft updates an existing record.
func (d *Draft) IsEdit() bool { return d.GameID != "" }

// SetFile assigns a file to a slot, invalidating any staged path for it.
func (d *Draft) SetFile(slot Slot, file *File) {
	d.Files[slot] = file
	delete(d.Staged, slot)
}

// pendingSlots lists non-nil slots that have no staged path yet.
func (d *Draft) pendingSlots() []Slot {
	var out []Slot
	for _, slot := range Slots {
		if d.Files[slot] == nil {
			continue
		}
		if _, ok := d.Staged[slot]; ok {
			continue
		}
		out = append(out, slot)
	}
	return out
}

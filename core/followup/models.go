package followup

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mwalimu/core"
)

// Followup is a generated progress message saved against a Student.
// Rows are append-only; edits happen client-side before the first save.
type Followup struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"student_id"`
	Content         string    `json:"content"`
	OriginalRemarks string    `json:"original_remarks"`
	Category        string    `json:"category"`
	CreatedAt       time.Time `json:"created_at"` // UTC
}

// NewFollowup contains information needed to save a generated follow-up.
type NewFollowup struct {
	Content         string `json:"content" validate:"required"`
	OriginalRemarks string `json:"original_remarks"`
	Category        string `json:"category"`
}

func (nf *NewFollowup) Validate(validate *validator.Validate) error {
	nf.OriginalRemarks = core.CleanString(nf.OriginalRemarks)
	nf.Category = core.CleanString(nf.Category)
	return validate.Struct(nf)
}

package review

import (
	"time"

	"github.com/submitly/backend/core"
)

type Review struct {
	ID            string    `json:"id"`
	SubmissionID  string    `json:"submission_id"`
	ReviewerEmail string    `json:"reviewer_email"`
	StudentName   string    `json:"student_name"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

// TopReview is a public testimonial: a review joined with the subject of the reviewed submission.
type TopReview struct {
	StudentName string    `json:"student_name"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment"`
	SubjectArea string    `json:"subject_area"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewReview contains information needed to review a Submission.
type NewReview struct {
	SubmissionID string `json:"submission_id" validate:"required"`
	Rating       int    `json:"rating" validate:"min=1,max=5"`
	Comment      string `json:"comment" validate:"max=1000"`
}

func (nr *NewReview) clean() {
	nr.SubmissionID = core.CleanString(nr.SubmissionID)
	nr.Comment = core.CleanString(nr.Comment)
}

func (nr *NewReview) Validate(v *core.Validator) error {
	nr.clean()
	return v.Struct(nr)
}

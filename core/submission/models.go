package submission

import (
	"net/mail"
	"strings"
	"time"

	"github.com/submitly/backend/core"
)

// Status is the lifecycle state of a Submission.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusDelivered  Status = "delivered"
	StatusRejected   Status = "rejected"
)

var (
	Statuses = []Status{StatusPending, StatusProcessing, StatusDelivered, StatusRejected}

	// deprecated values still sent by older clients
	legacyStatuses = map[string]Status{
		"in-progress": StatusProcessing,
		"completed":   StatusDelivered,
	}
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusDelivered, StatusRejected:
		return true
	}
	return false
}

// Label is the human readable status, eg. "In progress".
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusProcessing:
		return "In progress"
	case StatusDelivered:
		return "Delivered"
	case StatusRejected:
		return "Rejected"
	}
	return string(s)
}

// ParseStatus cleans val and returns the matching Status.
// Legacy values (in-progress, completed) are only accepted when allowLegacy is set.
func ParseStatus(val string, allowLegacy ...bool) (Status, error) {
	val = core.CleanString(val, true /* lower */)
	if s := Status(val); s.IsValid() {
		return s, nil
	}
	if len(allowLegacy) > 0 && allowLegacy[0] {
		if s, ok := legacyStatuses[val]; ok {
			return s, nil
		}
	}
	return "", &core.InvalidStatusError{Value: val}
}

// Category is the kind of help requested.
type Category string

const (
	CategoryEssay        Category = "essay"
	CategoryResearch     Category = "research"
	CategoryAssignment   Category = "assignment"
	CategoryThesis       Category = "thesis"
	CategoryPresentation Category = "presentation"
	CategoryLabReport    Category = "lab-report"
	CategoryCaseStudy    Category = "case-study"
	CategoryProgramming  Category = "programming"
	CategoryOther        Category = "other"
)

var Categories = []Category{
	CategoryEssay, CategoryResearch, CategoryAssignment, CategoryThesis, CategoryPresentation,
	CategoryLabReport, CategoryCaseStudy, CategoryProgramming, CategoryOther,
}

func (c Category) IsValid() bool {
	for _, cat := range Categories {
		if c == cat {
			return true
		}
	}
	return false
}

type Submission struct {
	ID                string    `json:"id"`
	RequesterName     string    `json:"requester_name"`
	RequesterEmail    string    `json:"requester_email"`
	RequesterPhone    string    `json:"requester_phone,omitempty"`
	Title             string    `json:"title"`
	SubjectArea       string    `json:"subject_area"`
	Category          Category  `json:"category"`
	Description       string    `json:"description"`
	Deadline          time.Time `json:"deadline"` // UTC
	AssignmentFileURL string    `json:"assignment_file_url"`
	PaymentProofURL   string    `json:"payment_proof_url,omitempty"`
	Status            Status    `json:"status"`
	AdminNotes        string    `json:"admin_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"` // UTC
	UpdatedAt         time.Time `json:"updated_at"` // UTC
}

func (s Submission) requester() mail.Address {
	return mail.Address{Name: s.RequesterName, Address: s.RequesterEmail}
}

// NewSubmission contains information needed to create a new Submission.
type NewSubmission struct {
	RequesterName     string    `json:"name" validate:"required"`
	RequesterEmail    string    `json:"email" validate:"required,email"`
	RequesterPhone    string    `json:"phone" validate:"omitempty,max=32"`
	Title             string    `json:"title" validate:"required,max=255"`
	SubjectArea       string    `json:"subject_area" validate:"required,max=128"`
	Category          string    `json:"category" validate:"required,category"`
	Description       string    `json:"description" validate:"required,min=20"`
	Deadline          time.Time `json:"deadline" validate:"required,future"`
	AssignmentFileURL string    `json:"assignment_file_url"`
	PaymentProofURL   string    `json:"payment_proof_url"`
}

func (ns *NewSubmission) clean() {
	ns.RequesterName = core.CleanString(ns.RequesterName)
	ns.RequesterEmail = core.CleanString(ns.RequesterEmail, true /* lower */)
	ns.RequesterPhone = core.CleanString(ns.RequesterPhone)
	ns.Title = core.CleanString(ns.Title)
	ns.SubjectArea = core.CleanString(ns.SubjectArea)
	ns.Category = core.CleanString(ns.Category, true /* lower */)
	ns.Description = strings.TrimSpace(ns.Description)
	ns.Deadline = ns.Deadline.UTC()
}

// Validate cleans the input then reports every violated field at once.
func (ns *NewSubmission) Validate(v *core.Validator) error {
	ns.clean()
	return v.Struct(ns)
}

// Update holds the columns a status change or an admin note may modify.
type Update struct {
	Status     *Status
	AdminNotes *string
	UpdatedAt  time.Time
}

type QueryFilter struct {
	RequesterEmail string `query:"email"`
	Status         Status `query:"status"`
}

func (qf *QueryFilter) Clean() {
	qf.RequesterEmail = core.CleanString(qf.RequesterEmail, true /* lower */)
	qf.Status = Status(core.CleanString(string(qf.Status), true /* lower */))
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.RequesterEmail == "" && qf.Status == ""
}

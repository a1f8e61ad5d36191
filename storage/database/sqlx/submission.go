// Package sqlxrepos implements the repositories on postgres with sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/submission"
)

const uniqueViolation = "23505"

var defaultSubmissionOrdering = core.DBOrdering{Field: "created_at"}

type submissionRow struct {
	ID                string      `db:"id"`
	RequesterName     string      `db:"requester_name"`
	RequesterEmail    string      `db:"requester_email"`
	RequesterPhone    null.String `db:"requester_phone"`
	Title             string      `db:"title"`
	SubjectArea       string      `db:"subject_area"`
	Category          string      `db:"category"`
	Description       string      `db:"description"`
	Deadline          time.Time   `db:"deadline"`
	AssignmentFileURL string      `db:"assignment_file_url"`
	PaymentProofURL   null.String `db:"payment_proof_url"`
	Status            string      `db:"status"`
	AdminNotes        null.String `db:"admin_notes"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

func toSubmissionRow(sub submission.Submission) submissionRow {
	return submissionRow{
		ID:                sub.ID,
		RequesterName:     sub.RequesterName,
		RequesterEmail:    sub.RequesterEmail,
		RequesterPhone:    null.NewString(sub.RequesterPhone, sub.RequesterPhone != ""),
		Title:             sub.Title,
		SubjectArea:       sub.SubjectArea,
		Category:          string(sub.Category),
		Description:       sub.Description,
		Deadline:          sub.Deadline.UTC(),
		AssignmentFileURL: sub.AssignmentFileURL,
		PaymentProofURL:   null.NewString(sub.PaymentProofURL, sub.PaymentProofURL != ""),
		Status:            string(sub.Status),
		AdminNotes:        null.NewString(sub.AdminNotes, sub.AdminNotes != ""),
		CreatedAt:         sub.CreatedAt.UTC(),
		UpdatedAt:         sub.UpdatedAt.UTC(),
	}
}

func (row submissionRow) submission() submission.Submission {
	return submission.Submission{
		ID:                row.ID,
		RequesterName:     row.RequesterName,
		RequesterEmail:    row.RequesterEmail,
		RequesterPhone:    row.RequesterPhone.String,
		Title:             row.Title,
		SubjectArea:       row.SubjectArea,
		Category:          submission.Category(row.Category),
		Description:       row.Description,
		Deadline:          row.Deadline.UTC(),
		AssignmentFileURL: row.AssignmentFileURL,
		PaymentProofURL:   row.PaymentProofURL.String,
		Status:            submission.Status(row.Status),
		AdminNotes:        row.AdminNotes.String,
		CreatedAt:         row.CreatedAt.UTC(),
		UpdatedAt:         row.UpdatedAt.UTC(),
	}
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

// trapNoRowsErr maps "no rows" to submission.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return submission.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}

func (repo *submissionRepository) CreateSubmission(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	q := `INSERT INTO submissions (
		id, requester_name, requester_email, requester_phone, title, subject_area, category, description,
		deadline, assignment_file_url, payment_proof_url, status, admin_notes, created_at, updated_at
	) VALUES (
		:id, :requester_name, :requester_email, :requester_phone, :title, :subject_area, :category, :description,
		:deadline, :assignment_file_url, :payment_proof_url, :status, :admin_notes, :created_at, :updated_at
	)`
	row := toSubmissionRow(sub)
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		if isUniqueViolation(err) {
			return submission.Submission{}, submission.ErrDuplicateID
		}
		return submission.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return row.submission(), nil
}

func (repo *submissionRepository) GetSubmission(ctx context.Context, id string) (submission.Submission, error) {
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM submissions WHERE id = $1", id); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, "getting submission")
	}
	return row.submission(), nil
}

func (repo *submissionRepository) QuerySubmissions(ctx context.Context, filter submission.QueryFilter, ordering []core.DBOrdering) ([]submission.Submission, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.RequesterEmail != "" {
		args = append(args, filter.RequesterEmail)
		conds = append(conds, fmt.Sprintf("requester_email = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	q := "SELECT * FROM submissions"
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += core.OrderBy(ordering, defaultSubmissionOrdering)

	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]submission.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.submission())
	}
	return subs, nil
}

func (repo *submissionRepository) UpdateSubmission(ctx context.Context, id string, upd submission.Update) (submission.Submission, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{upd.UpdatedAt.UTC()}
	if upd.Status != nil {
		args = append(args, string(*upd.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if upd.AdminNotes != nil {
		args = append(args, null.NewString(*upd.AdminNotes, *upd.AdminNotes != ""))
		sets = append(sets, fmt.Sprintf("admin_notes = $%d", len(args)))
	}
	args = append(args, id)
	q := fmt.Sprintf("UPDATE submissions SET %s WHERE id = $%d RETURNING *", strings.Join(sets, ", "), len(args))

	var row submissionRow
	if err := repo.db.QueryRowxContext(ctx, q, args...).StructScan(&row); err != nil {
		return submission.Submission{}, trapNoRowsErr(err, "updating submission")
	}
	return row.submission(), nil
}

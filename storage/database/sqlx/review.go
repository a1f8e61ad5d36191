package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/submitly/backend/core/review"
)

type reviewRow struct {
	ID            string      `db:"id"`
	SubmissionID  string      `db:"submission_id"`
	ReviewerEmail string      `db:"reviewer_email"`
	StudentName   string      `db:"student_name"`
	Rating        int         `db:"rating"`
	Comment       null.String `db:"comment"`
	CreatedAt     time.Time   `db:"created_at"`
}

func (row reviewRow) review() review.Review {
	return review.Review{
		ID:            row.ID,
		SubmissionID:  row.SubmissionID,
		ReviewerEmail: row.ReviewerEmail,
		StudentName:   row.StudentName,
		Rating:        row.Rating,
		Comment:       row.Comment.String,
		CreatedAt:     row.CreatedAt.UTC(),
	}
}

type topReviewRow struct {
	StudentName string    `db:"student_name"`
	Rating      int       `db:"rating"`
	Comment     string    `db:"comment"`
	SubjectArea string    `db:"subject_area"`
	CreatedAt   time.Time `db:"created_at"`
}

type reviewRepository struct {
	db *sqlx.DB
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *sqlx.DB) *reviewRepository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(ctx context.Context, rev review.Review) (review.Review, error) {
	row := reviewRow{
		ID:            rev.ID,
		SubmissionID:  rev.SubmissionID,
		ReviewerEmail: rev.ReviewerEmail,
		StudentName:   rev.StudentName,
		Rating:        rev.Rating,
		Comment:       null.NewString(rev.Comment, rev.Comment != ""),
		CreatedAt:     rev.CreatedAt.UTC(),
	}
	q := `INSERT INTO reviews (id, submission_id, reviewer_email, student_name, rating, comment, created_at)
		VALUES (:id, :submission_id, :reviewer_email, :student_name, :rating, :comment, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return review.Review{}, errors.Wrap(err, "inserting review")
	}
	return row.review(), nil
}

func (repo *reviewRepository) ListReviews(ctx context.Context, submissionID string) ([]review.Review, error) {
	var rows []reviewRow
	q := "SELECT * FROM reviews WHERE submission_id = $1 ORDER BY created_at DESC"
	if err := repo.db.SelectContext(ctx, &rows, q, submissionID); err != nil {
		return nil, errors.Wrap(err, "listing reviews")
	}
	revs := make([]review.Review, 0, len(rows))
	for _, row := range rows {
		revs = append(revs, row.review())
	}
	return revs, nil
}

func (repo *reviewRepository) TopReviews(ctx context.Context, limit int) ([]review.TopReview, error) {
	q := `SELECT r.student_name, r.rating, r.comment, s.subject_area, r.created_at
		FROM reviews r
		JOIN submissions s ON r.submission_id = s.id
		WHERE r.rating = 5 AND r.comment IS NOT NULL AND r.comment <> ''
		ORDER BY r.created_at DESC
		LIMIT $1`
	var rows []topReviewRow
	if err := repo.db.SelectContext(ctx, &rows, q, limit); err != nil {
		return nil, errors.Wrap(err, "querying top reviews")
	}
	top := make([]review.TopReview, 0, len(rows))
	for _, row := range rows {
		top = append(top, review.TopReview{
			StudentName: row.StudentName,
			Rating:      row.Rating,
			Comment:     row.Comment,
			SubjectArea: row.SubjectArea,
			CreatedAt:   row.CreatedAt.UTC(),
		})
	}
	return top, nil
}

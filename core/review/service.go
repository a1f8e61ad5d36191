package review

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/submission"
)

const DefaultTopLimit = 3

var (
	ErrSubmissionNotFound = core.NewNotFoundError("submission")

	uuidFunc = uuid.New // mockable
)

type (
	Repository interface {
		CreateReview(ctx context.Context, rev Review) (Review, error)
		// ListReviews returns the reviews of a submission, newest first.
		ListReviews(ctx context.Context, submissionID string) ([]Review, error)
		// TopReviews returns up to limit 5-star reviews with a comment, newest first.
		TopReviews(ctx context.Context, limit int) ([]TopReview, error)
	}

	// Submissions resolves reviewed submissions.
	Submissions interface {
		Get(ctx context.Context, id string) (submission.Submission, error)
	}

	Service struct {
		repo      Repository
		subs      Submissions
		validator *core.Validator
	}
)

func NewService(repo Repository, subs Submissions, v *core.Validator) *Service {
	return &Service{repo: repo, subs: subs, validator: v}
}

// Create stores a review of a submission owned by reviewerEmail.
// reviewerEmail must come from a verified identity, never from the request body.
func (svc *Service) Create(ctx context.Context, reviewerEmail string, nr NewReview) (Review, error) {
	if err := nr.Validate(svc.validator); err != nil {
		return Review{}, err
	}

	sub, err := svc.subs.Get(ctx, nr.SubmissionID)
	if err != nil {
		if core.IsNotFound(err) {
			return Review{}, ErrSubmissionNotFound
		}
		return Review{}, errors.Wrap(err, "getting reviewed submission")
	}
	reviewerEmail = core.CleanString(reviewerEmail, true /* lower */)
	if reviewerEmail == "" || sub.RequesterEmail != reviewerEmail {
		return Review{}, &core.UnauthorizedReviewError{SubmissionID: sub.ID}
	}

	rev := Review{
		ID:            uuidFunc().String(),
		SubmissionID:  sub.ID,
		ReviewerEmail: reviewerEmail,
		StudentName:   sub.RequesterName,
		Rating:        nr.Rating,
		Comment:       nr.Comment,
		CreatedAt:     core.NowFunc(),
	}
	rev, err = svc.repo.CreateReview(ctx, rev)
	return rev, errors.Wrap(err, "creating review")
}

func (svc *Service) ListForSubmission(ctx context.Context, submissionID string) ([]Review, error) {
	if _, err := svc.subs.Get(ctx, submissionID); err != nil {
		return nil, err
	}
	return svc.repo.ListReviews(ctx, core.CleanString(submissionID))
}

// Top returns the newest 5-star reviews with a comment. limit defaults to DefaultTopLimit.
func (svc *Service) Top(ctx context.Context, limit int) ([]TopReview, error) {
	if limit <= 0 {
		limit = DefaultTopLimit
	}
	return svc.repo.TopReviews(ctx, limit)
}

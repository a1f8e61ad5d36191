package inmemdb

import (
	"context"
	"sort"

	"github.com/submitly/backend/core/review"
)

type reviewRepository struct {
	db   *reviewTable
	subs *submissionTable
}

var _ review.Repository = (*reviewRepository)(nil) // interface compliance check

func NewReviewRepository(db *DB) *reviewRepository {
	return &reviewRepository{db: db.review, subs: db.submission}
}

func (repo *reviewRepository) CreateReview(_ context.Context, rev review.Review) (review.Review, error) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.rows = append(repo.db.rows, rev)
	return rev, nil
}

func (repo *reviewRepository) newestFirst(match func(review.Review) bool) []review.Review {
	revs := make([]review.Review, 0)
	for _, rev := range repo.db.rows {
		if match(rev) {
			revs = append(revs, rev)
		}
	}
	sort.SliceStable(revs, func(i, j int) bool { return revs[i].CreatedAt.After(revs[j].CreatedAt) })
	return revs
}

func (repo *reviewRepository) ListReviews(_ context.Context, submissionID string) ([]review.Review, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.newestFirst(func(rev review.Review) bool { return rev.SubmissionID == submissionID }), nil
}

func (repo *reviewRepository) TopReviews(_ context.Context, limit int) ([]review.TopReview, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	repo.subs.RLock()
	defer repo.subs.RUnlock()

	revs := repo.newestFirst(func(rev review.Review) bool { return rev.Rating == 5 && rev.Comment != "" })
	top := make([]review.TopReview, 0, limit)
	for _, rev := range revs {
		sub, ok := repo.subs.table[rev.SubmissionID]
		if !ok {
			continue
		}
		top = append(top, review.TopReview{
			StudentName: rev.StudentName,
			Rating:      rev.Rating,
			Comment:     rev.Comment,
			SubjectArea: sub.SubjectArea,
			CreatedAt:   rev.CreatedAt,
		})
		if len(top) == limit {
			break
		}
	}
	return top, nil
}

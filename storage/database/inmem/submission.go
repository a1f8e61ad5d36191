package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/submission"
)

type submissionRepository struct {
	db *submissionTable
}

var _ submission.Repository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *DB) *submissionRepository {
	return &submissionRepository{db: db.submission}
}

func (repo *submissionRepository) CreateSubmission(_ context.Context, sub submission.Submission) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[sub.ID]; ok {
		return submission.Submission{}, submission.ErrDuplicateID
	}
	repo.db.table[sub.ID] = sub
	return sub, nil
}

func (repo *submissionRepository) GetSubmission(_ context.Context, id string) (submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.table[id]; ok {
		return sub, nil
	}
	return submission.Submission{}, submission.ErrNotFound
}

func (repo *submissionRepository) QuerySubmissions(_ context.Context, filter submission.QueryFilter, ordering []core.DBOrdering) ([]submission.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]submission.Submission, 0)
	for _, sub := range repo.db.table {
		if filter.RequesterEmail != "" && sub.RequesterEmail != filter.RequesterEmail {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		subs = append(subs, sub)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.SliceStable(subs, func(i, j int) bool { return less(subs[i], subs[j], ordering) })
	return subs, nil
}

// less compares a and b on each ordering field in turn; the id breaks ties.
func less(a, b submission.Submission, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var cmp int
		switch ord.Field {
		case "created_at":
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		case "updated_at":
			cmp = a.UpdatedAt.Compare(b.UpdatedAt)
		case "deadline":
			cmp = a.Deadline.Compare(b.Deadline)
		case "status":
			cmp = strings.Compare(string(a.Status), string(b.Status))
		}
		if cmp != 0 {
			if ord.Ascending {
				return cmp < 0
			}
			return cmp > 0
		}
	}
	return a.ID < b.ID
}

func (repo *submissionRepository) UpdateSubmission(_ context.Context, id string, upd submission.Update) (submission.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.table[id]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	if upd.Status != nil {
		sub.Status = *upd.Status
	}
	if upd.AdminNotes != nil {
		sub.AdminNotes = *upd.AdminNotes
	}
	sub.UpdatedAt = upd.UpdatedAt
	repo.db.table[id] = sub
	return sub, nil
}

package review

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/submission"
)

type fakeRepo struct {
	reviews []Review
	subs    map[string]submission.Submission
}

func (r *fakeRepo) Get(_ context.Context, id string) (submission.Submission, error) {
	sub, ok := r.subs[id]
	if !ok {
		return submission.Submission{}, submission.ErrNotFound
	}
	return sub, nil
}

func (r *fakeRepo) CreateReview(_ context.Context, rev Review) (Review, error) {
	r.reviews = append(r.reviews, rev)
	return rev, nil
}

func (r *fakeRepo) ListReviews(_ context.Context, submissionID string) ([]Review, error) {
	res := make([]Review, 0)
	for _, rev := range r.reviews {
		if rev.SubmissionID == submissionID {
			res = append(res, rev)
		}
	}
	return res, nil
}

func (r *fakeRepo) TopReviews(_ context.Context, limit int) ([]TopReview, error) {
	res := make([]TopReview, 0)
	for _, rev := range r.reviews {
		if rev.Rating == 5 && rev.Comment != "" {
			res = append(res, TopReview{
				StudentName: rev.StudentName,
				Rating:      rev.Rating,
				Comment:     rev.Comment,
				SubjectArea: r.subs[rev.SubmissionID].SubjectArea,
				CreatedAt:   rev.CreatedAt,
			})
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func newTestService() (*Service, *fakeRepo) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	core.NowFunc = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	repo := &fakeRepo{subs: map[string]submission.Submission{
		"SUB-123456-1": {ID: "SUB-123456-1", RequesterName: "Ada", RequesterEmail: "ada@example.com", SubjectArea: "Mathematics"},
		"SUB-123456-2": {ID: "SUB-123456-2", RequesterName: "Grace", RequesterEmail: "grace@example.com", SubjectArea: "Physics"},
	}}
	return NewService(repo, repo, core.NewValidator()), repo
}

func TestService_Create(t *testing.T) {
	fixedID := uuid.MustParse("6f1c1fb2-8a4e-4b8f-9d0c-1b1e8f2e6a11")
	uuidFunc = func() uuid.UUID { return fixedID }
	defer func() { uuidFunc = uuid.New }()

	tests := []struct {
		name      string
		email     string
		nr        NewReview
		wantErr   bool
		checkErr  func(err error) bool
		wantField string
	}{
		{name: "owner", email: " ADA@example.com", nr: NewReview{SubmissionID: "SUB-123456-1", Rating: 5, Comment: " Great work "}},
		{name: "no comment", email: "ada@example.com", nr: NewReview{SubmissionID: "SUB-123456-1", Rating: 3}},
		{
			name: "other student", email: "grace@example.com", nr: NewReview{SubmissionID: "SUB-123456-1", Rating: 4},
			wantErr: true, checkErr: func(err error) bool { _, ok := err.(*core.UnauthorizedReviewError); return ok },
		},
		{
			name: "no identity", nr: NewReview{SubmissionID: "SUB-123456-1", Rating: 4},
			wantErr: true, checkErr: func(err error) bool { _, ok := err.(*core.UnauthorizedReviewError); return ok },
		},
		{
			name: "unknown submission", email: "ada@example.com", nr: NewReview{SubmissionID: "SUB-000000-0", Rating: 4},
			wantErr: true, checkErr: core.IsNotFound,
		},
		{name: "rating zero", email: "ada@example.com", nr: NewReview{SubmissionID: "SUB-123456-1", Rating: 0}, wantErr: true, wantField: "rating"},
		{name: "rating six", email: "ada@example.com", nr: NewReview{SubmissionID: "SUB-123456-1", Rating: 6}, wantErr: true, wantField: "rating"},
		{
			name: "long comment", email: "ada@example.com", nr: NewReview{SubmissionID: "SUB-123456-1", Rating: 5, Comment: strings.Repeat("a", 1001)},
			wantErr: true, wantField: "comment",
		},
		{name: "no submission id", email: "ada@example.com", nr: NewReview{Rating: 5}, wantErr: true, wantField: "submission_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			rev, err := svc.Create(context.Background(), tt.email, tt.nr)
			if tt.wantErr {
				if tt.wantField != "" {
					vErr, ok := err.(*core.ValidationError)
					if assert.True(t, ok, "want *core.ValidationError, got %v", err) {
						assert.True(t, vErr.HasField(tt.wantField))
					}
				} else {
					assert.True(t, tt.checkErr(err), "unexpected error %v", err)
				}
				assert.Empty(t, repo.reviews)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, fixedID.String(), rev.ID)
			assert.Equal(t, "ada@example.com", rev.ReviewerEmail)
			assert.Equal(t, "Ada", rev.StudentName)
			assert.Equal(t, strings.TrimSpace(tt.nr.Comment), rev.Comment)
			assert.Len(t, repo.reviews, 1)
		})
	}
}

func TestService_Top(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	reviews := []struct {
		email   string
		subID   string
		rating  int
		comment string
	}{
		{"ada@example.com", "SUB-123456-1", 5, "first"},
		{"ada@example.com", "SUB-123456-1", 5, ""},
		{"grace@example.com", "SUB-123456-2", 4, "good"},
		{"grace@example.com", "SUB-123456-2", 5, "second"},
		{"ada@example.com", "SUB-123456-1", 5, "third"},
		{"grace@example.com", "SUB-123456-2", 5, "fourth"},
	}
	for _, r := range reviews {
		_, err := svc.Create(ctx, r.email, NewReview{SubmissionID: r.subID, Rating: r.rating, Comment: r.comment})
		require.NoError(t, err)
	}

	top, err := svc.Top(ctx, 0)
	require.NoError(t, err)
	if assert.Len(t, top, DefaultTopLimit) {
		assert.Equal(t, "fourth", top[0].Comment)
		assert.Equal(t, "Physics", top[0].SubjectArea)
		assert.Equal(t, "third", top[1].Comment)
		assert.Equal(t, "second", top[2].Comment)
	}

	revs, err := svc.ListForSubmission(ctx, "SUB-123456-1")
	require.NoError(t, err)
	assert.Len(t, revs, 3)

	_, err = svc.ListForSubmission(ctx, "SUB-000000-0")
	assert.True(t, core.IsNotFound(err))
}

// Package dbtest holds the behaviour every repository implementation must share.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/submitly/backend/core"
	"github.com/submitly/backend/core/review"
	"github.com/submitly/backend/core/submission"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func newSubmission(id, email string, age time.Duration) submission.Submission {
	created := base.Add(-age)
	return submission.Submission{
		ID:                id,
		RequesterName:     "Student " + id,
		RequesterEmail:    email,
		Title:             "Title " + id,
		SubjectArea:       "Subject " + id,
		Category:          submission.CategoryEssay,
		Description:       "A description long enough for the form.",
		Deadline:          base.Add(72 * time.Hour),
		AssignmentFileURL: "https://files.test/" + id,
		Status:            submission.StatusPending,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
}

func ids(subs []submission.Submission) []string {
	res := make([]string, 0, len(subs))
	for _, s := range subs {
		res = append(res, s.ID)
	}
	return res
}

// SubmissionRepository runs the submission repository contract against an empty store.
func SubmissionRepository(t *testing.T, repo submission.Repository) {
	ctx := context.Background()

	a := newSubmission("SUB-000001-1", "ada@example.com", 3*time.Hour)
	a.RequesterPhone = "+44 20 7946 0000"
	b := newSubmission("SUB-000002-2", "grace@example.com", 2*time.Hour)
	c := newSubmission("SUB-000003-3", "ada@example.com", time.Hour)
	for _, sub := range []submission.Submission{a, b, c} {
		got, err := repo.CreateSubmission(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, sub, got)
	}

	t.Run("duplicate id", func(t *testing.T) {
		_, err := repo.CreateSubmission(ctx, a)
		assert.Equal(t, submission.ErrDuplicateID, err)
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetSubmission(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, a, got)

		_, err = repo.GetSubmission(ctx, "SUB-404")
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("query", func(t *testing.T) {
		all, err := repo.QuerySubmissions(ctx, submission.QueryFilter{}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID, b.ID, a.ID}, ids(all))

		asc, err := repo.QuerySubmissions(ctx, submission.QueryFilter{}, []core.DBOrdering{{Field: "created_at", Ascending: true}})
		require.NoError(t, err)
		assert.Equal(t, []string{a.ID, b.ID, c.ID}, ids(asc))

		ada, err := repo.QuerySubmissions(ctx, submission.QueryFilter{RequesterEmail: "ada@example.com"}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{c.ID, a.ID}, ids(ada))

		none, err := repo.QuerySubmissions(ctx, submission.QueryFilter{Status: submission.StatusRejected}, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("update", func(t *testing.T) {
		status := submission.StatusProcessing
		notes := "started"
		updatedAt := base.Add(time.Minute)
		got, err := repo.UpdateSubmission(ctx, b.ID, submission.Update{Status: &status, AdminNotes: &notes, UpdatedAt: updatedAt})
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)
		assert.Equal(t, notes, got.AdminNotes)
		assert.True(t, updatedAt.Equal(got.UpdatedAt))
		assert.True(t, b.CreatedAt.Equal(got.CreatedAt))

		// status only keeps the notes
		status = submission.StatusDelivered
		got, err = repo.UpdateSubmission(ctx, b.ID, submission.Update{Status: &status, UpdatedAt: updatedAt.Add(time.Minute)})
		require.NoError(t, err)
		assert.Equal(t, "started", got.AdminNotes)

		stored, err := repo.GetSubmission(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, got, stored)

		delivered, err := repo.QuerySubmissions(ctx, submission.QueryFilter{Status: submission.StatusDelivered}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID}, ids(delivered))

		_, err = repo.UpdateSubmission(ctx, "SUB-404", submission.Update{Status: &status, UpdatedAt: updatedAt})
		assert.True(t, core.IsNotFound(err))
	})
}

// ReviewRepository runs the review repository contract. subs must be empty and back the same store as repo.
func ReviewRepository(t *testing.T, repo review.Repository, subs submission.Repository) {
	ctx := context.Background()

	a := newSubmission("SUB-000011-1", "ada@example.com", time.Hour)
	a.SubjectArea = "Mathematics"
	b := newSubmission("SUB-000012-2", "grace@example.com", time.Hour)
	b.SubjectArea = "Physics"
	for _, sub := range []submission.Submission{a, b} {
		_, err := subs.CreateSubmission(ctx, sub)
		require.NoError(t, err)
	}

	reviews := []review.Review{
		{ID: "7d3c2a56-1d0f-4f6e-9f3e-000000000001", SubmissionID: a.ID, Rating: 5, Comment: "oldest", CreatedAt: base.Add(1 * time.Minute)},
		{ID: "7d3c2a56-1d0f-4f6e-9f3e-000000000002", SubmissionID: a.ID, Rating: 5, CreatedAt: base.Add(2 * time.Minute)},
		{ID: "7d3c2a56-1d0f-4f6e-9f3e-000000000003", SubmissionID: b.ID, Rating: 4, Comment: "good", CreatedAt: base.Add(3 * time.Minute)},
		{ID: "7d3c2a56-1d0f-4f6e-9f3e-000000000004", SubmissionID: b.ID, Rating: 5, Comment: "great", CreatedAt: base.Add(4 * time.Minute)},
		{ID: "7d3c2a56-1d0f-4f6e-9f3e-000000000005", SubmissionID: a.ID, Rating: 5, Comment: "newest", CreatedAt: base.Add(5 * time.Minute)},
	}
	for _, rev := range reviews {
		sub := a
		if rev.SubmissionID == b.ID {
			sub = b
		}
		rev.ReviewerEmail = sub.RequesterEmail
		rev.StudentName = sub.RequesterName
		got, err := repo.CreateReview(ctx, rev)
		require.NoError(t, err)
		assert.Equal(t, rev.ID, got.ID)
	}

	t.Run("list", func(t *testing.T) {
		revs, err := repo.ListReviews(ctx, a.ID)
		require.NoError(t, err)
		if assert.Len(t, revs, 3) {
			assert.Equal(t, "newest", revs[0].Comment)
			assert.Equal(t, "oldest", revs[2].Comment)
			assert.Equal(t, "ada@example.com", revs[0].ReviewerEmail)
		}
	})

	t.Run("top", func(t *testing.T) {
		top, err := repo.TopReviews(ctx, 3)
		require.NoError(t, err)
		if assert.Len(t, top, 3) {
			assert.Equal(t, "newest", top[0].Comment)
			assert.Equal(t, "Mathematics", top[0].SubjectArea)
			assert.Equal(t, "great", top[1].Comment)
			assert.Equal(t, "Physics", top[1].SubjectArea)
			assert.Equal(t, "oldest", top[2].Comment)
		}

		top, err = repo.TopReviews(ctx, 1)
		require.NoError(t, err)
		assert.Len(t, top, 1)
	})
}

package echoapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/submitly/backend/core/review"
)

func TestReviewApi_Top(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sub := env.seed(t, "ada@example.com")

	for _, nr := range []review.NewReview{
		{SubmissionID: sub.ID, Rating: 5, Comment: "first"},
		{SubmissionID: sub.ID, Rating: 4, Comment: "good"},
		{SubmissionID: sub.ID, Rating: 5, Comment: "second"},
		{SubmissionID: sub.ID, Rating: 5},
	} {
		_, err := env.reviews.Create(ctx, "ada@example.com", nr)
		require.NoError(t, err)
	}
	top, err := env.reviews.Top(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 2)

	runHTTPTests(t, env, []httpTest{
		{name: "default limit", method: http.MethodGet, path: "/v1/reviews/top", wantCode: http.StatusOK, wantData: marshalObj(t, top)},
		{name: "limit", method: http.MethodGet, path: "/v1/reviews/top?limit=1", wantCode: http.StatusOK, wantData: marshalObj(t, top[:1])},
		{name: "bad limit", method: http.MethodGet, path: "/v1/reviews/top?limit=lots", wantCode: http.StatusOK, wantData: marshalObj(t, top)},
	})
}

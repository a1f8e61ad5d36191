package echoapi

import (
	"net/http"
	"testing"

	"github.com/submitly/backend/core/pricing"
)

func TestPricingApi(t *testing.T) {
	env := newTestEnv(t)

	runHTTPTests(t, env, []httpTest{
		{
			name: "options", method: http.MethodGet, path: "/v1/pricing/options",
			wantCode: http.StatusOK, wantData: marshalObj(t, pricing.Options()),
		},
		{
			name: "estimate", method: http.MethodPost, path: "/v1/pricing/estimate",
			body:     []byte(`{"assignment_type": "essay", "word_count": 1000, "deadline_days": 14}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"assignment_type": "essay", "word_count": 1000, "deadline_days": 14, "estimated_price": 30, "floor_applied": false, "ceiling_applied": false}`),
		},
		{
			name: "ceiling", method: http.MethodPost, path: "/v1/pricing/estimate",
			body:     []byte(`{"assignment_type": "thesis", "word_count": 5000, "deadline_days": 1}`),
			wantCode: http.StatusOK,
			wantData: []byte(`{"assignment_type": "thesis", "word_count": 5000, "deadline_days": 1, "estimated_price": 95, "floor_applied": false, "ceiling_applied": true}`),
		},
		{
			name: "too many words", method: http.MethodPost, path: "/v1/pricing/estimate",
			body:     []byte(`{"assignment_type": "essay", "word_count": 5001, "deadline_days": 14}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"word_count": "word count must be between 100 and 5000"}`),
		},
		{
			name: "unknown deadline", method: http.MethodPost, path: "/v1/pricing/estimate",
			body:     []byte(`{"assignment_type": "essay", "word_count": 1000, "deadline_days": 4}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"deadline_days": "unsupported deadline: 4 days"}`),
		},
		{
			name: "unknown type", method: http.MethodPost, path: "/v1/pricing/estimate",
			body:     []byte(`{"assignment_type": "poem", "word_count": 1000, "deadline_days": 14}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"assignment_type": "unknown assignment_type \"poem\""}`),
		},
	})
}

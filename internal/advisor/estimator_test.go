package advisor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexanderramin/compass/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEstimator(t *testing.T, modelOutput string) *Estimator {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Model: "test-model", Response: modelOutput})
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = srv.URL
	cfg.TimeoutMs = 2000
	return NewEstimator(cfg, nil)
}

func TestNewEstimator_DisabledReturnsNil(t *testing.T) {
	assert.Nil(t, NewEstimator(DefaultConfig(), nil))
}

func TestDraftEstimate(t *testing.T) {
	est := testEstimator(t, "Here is my proposal:\n```json\n"+
		`{"team":[{"role":"Backend Engineer","count":2,"weekly_rate":2800}],`+
		`"timeline_weeks":10,"risk_buffer_percent":25,"confidence":"high","rationale":"small scope"}`+
		"\n```")

	draft, err := est.DraftEstimate(context.Background(), domain.Release{
		ID:   "rel-1",
		Name: "Q3 Launch",
		Features: []domain.Feature{
			{Name: "search", Status: "planned"},
		},
	})
	require.NoError(t, err)

	require.Len(t, draft.Team, 1)
	assert.Equal(t, "Backend Engineer", draft.Team[0].Role)
	assert.Equal(t, 2, draft.Team[0].Count)
	assert.Equal(t, 10.0, draft.TimelineWeeks)
	assert.Equal(t, 25.0, draft.RiskBufferPercent)
	assert.Equal(t, domain.ConfidenceHigh, draft.Confidence)
	assert.Equal(t, "small scope", draft.Rationale)
}

func TestDraftEstimate_UnknownConfidenceDefaultsToMedium(t *testing.T) {
	est := testEstimator(t,
		`{"team":[{"role":"Eng","count":1,"weekly_rate":2500}],`+
			`"timeline_weeks":8,"risk_buffer_percent":20,"confidence":"certain"}`)

	draft, err := est.DraftEstimate(context.Background(), domain.Release{Name: "r"})
	require.NoError(t, err)
	assert.Equal(t, domain.ConfidenceMedium, draft.Confidence)
}

func TestDraftEstimate_RejectsInvalidDraft(t *testing.T) {
	cases := []struct {
		name   string
		output string
	}{
		{"no json", "sorry, I cannot help with that"},
		{"empty team", `{"team":[],"timeline_weeks":8,"risk_buffer_percent":20}`},
		{"zero weeks", `{"team":[{"role":"Eng","count":1,"weekly_rate":2500}],"timeline_weeks":0,"risk_buffer_percent":20}`},
		{"buffer out of range", `{"team":[{"role":"Eng","count":1,"weekly_rate":2500}],"timeline_weeks":8,"risk_buffer_percent":150}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			est := testEstimator(t, tc.output)
			_, err := est.DraftEstimate(context.Background(), domain.Release{Name: "r"})
			assert.ErrorIs(t, err, ErrInvalidOutput)
		})
	}
}

func TestDraftEstimate_ServerUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.Endpoint = endpoint
	cfg.TimeoutMs = 500
	est := NewEstimator(cfg, nil)

	_, err := est.DraftEstimate(context.Background(), domain.Release{Name: "r"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestExtractJSON_HandlesProseAndComments(t *testing.T) {
	type payload struct {
		A int `json:"a"`
	}

	got, err := extractJSON[payload]("leading text {\"a\": 3 // note\n} trailing")
	require.NoError(t, err)
	assert.Equal(t, 3, got.A)
}

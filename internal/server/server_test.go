package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/ai"
	"github.com/spigell/fit-scorer/internal/ai/aitest"
	"github.com/spigell/fit-scorer/internal/cache"
	"github.com/spigell/fit-scorer/internal/profile"
	"github.com/spigell/fit-scorer/internal/ranking"
	"github.com/spigell/fit-scorer/internal/scoring"
)

type failingScorer struct {
	err error
}

func (f failingScorer) ComputeScore(context.Context, *profile.Profile, *profile.JobRequirement) (*scoring.MatchResult, error) {
	return nil, f.err
}

func newTestServer(t *testing.T, embedder ai.Embedder) *Server {
	t.Helper()

	vectors := cache.New(cache.NewMemoryStore(0), embedder, cache.Config{Model: "test-model"}, zap.NewNop())
	composer, err := scoring.NewComposer(vectors, scoring.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)
	ranker, err := ranking.New(composer, ranking.Config{}, zap.NewNop())
	require.NoError(t, err)

	s, err := New(Config{}, Deps{Scorer: composer, Ranker: ranker, Cache: vectors}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func newFailingServer(t *testing.T, err error) *Server {
	t.Helper()

	scorer := failingScorer{err: err}
	ranker, rerr := ranking.New(scorer, ranking.Config{}, zap.NewNop())
	require.NoError(t, rerr)

	s, serr := New(Config{}, Deps{Scorer: scorer, Ranker: ranker}, zap.NewNop())
	require.NoError(t, serr)
	return s
}

func do(t *testing.T, s *Server, method, path, body string, headers ...string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out), string(data))
	return resp, out
}

const matchBody = `{
	"profile": {"id": "p1", "title": "Account Executive", "skills": ["CRM", "Negotiation"], "yoe": "6 years"},
	"jobRequirement": {"id": "j1", "title": "Account Executive", "skills": ["CRM"], "yoeMin": 3}
}`

func TestMatchEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &aitest.Counting{})
	resp, body := do(t, s, http.MethodPost, "/v1/match", matchBody, headerRequestID, "req-1")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "req-1", resp.Header.Get(headerRequestID))
	assert.Equal(t, true, body["success"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "score")
	assert.Contains(t, data, "cosineSimilarity")
	assert.Equal(t, []any{}, data["gateOutcomes"])

	overlaps := data["overlaps"].(map[string]any)
	skills := overlaps["skills"].([]any)
	require.Len(t, skills, 1)
	assert.Equal(t, "exact", skills[0].(map[string]any)["kind"])
}

func TestMatchEndpointGeneratesRequestID(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &aitest.Counting{})
	resp, _ := do(t, s, http.MethodPost, "/v1/match", matchBody)
	assert.Len(t, resp.Header.Get(headerRequestID), 36)
}

func TestMatchEndpointRejectsMalformedInput(t *testing.T) {
	t.Parallel()

	embedder := &aitest.Counting{}
	s := newTestServer(t, embedder)

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{name: "invalid json", body: `{"profile":`, field: "body"},
		{name: "missing profile", body: `{"jobRequirement": {"title": "Engineer"}}`, field: "profile"},
		{name: "negative experience", body: `{"profile": {"title": "Engineer", "yoe": -2}, "jobRequirement": {"title": "Engineer"}}`, field: "profile.yoe"},
		{name: "empty job", body: `{"profile": {"title": "Engineer"}, "jobRequirement": {}}`, field: "jobRequirement"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := do(t, s, http.MethodPost, "/v1/match", tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, body["success"])
			detail := body["error"].(map[string]any)
			assert.Equal(t, ErrorTypeMalformedInput, detail["type"])
			assert.Equal(t, tc.field, detail["field"])
		})
	}
	assert.Equal(t, 0, embedder.Total())
}

func TestMatchEndpointMapsFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		status   int
		errType  string
		provider string
	}{
		{
			name:     "provider",
			err:      fmt.Errorf("embed profile signal: %w", &ai.ProviderError{Provider: ai.ProviderOpenAI, Model: "m", StatusCode: http.StatusTooManyRequests, Err: errors.New("quota")}),
			status:   http.StatusBadGateway,
			errType:  ErrorTypeProvider,
			provider: ai.ProviderOpenAI,
		},
		{name: "deadline", err: fmt.Errorf("embed: %w", context.DeadlineExceeded), status: http.StatusGatewayTimeout, errType: ErrorTypeTimeout},
		{name: "other", err: errors.New("disk on fire"), status: http.StatusInternalServerError, errType: ErrorTypeInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newFailingServer(t, tc.err)
			resp, body := do(t, s, http.MethodPost, "/v1/match", matchBody)
			assert.Equal(t, tc.status, resp.StatusCode)
			detail := body["error"].(map[string]any)
			assert.Equal(t, tc.errType, detail["type"])
			if tc.provider != "" {
				assert.Equal(t, tc.provider, detail["provider"])
			}
		})
	}
}

func TestRankEndpoint(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &aitest.Counting{})
	body := `{
		"profile": {"title": "Account Executive", "skills": ["CRM"]},
		"jobs": [
			{"id": "far", "title": "Backend Engineer", "skills": ["Go"]},
			{"id": "near", "title": "Account Executive", "skills": ["CRM"]}
		]
	}`
	resp, out := do(t, s, http.MethodPost, "/v1/rank", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	data := out["data"].(map[string]any)
	candidates := data["candidates"].([]any)
	require.Len(t, candidates, 2)
	assert.Equal(t, "near", candidates[0].(map[string]any)["jobId"])
	assert.Len(t, data["steps"], 1)
}

func TestRankEndpointNamesMalformedJob(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &aitest.Counting{})
	body := `{"profile": {"title": "Engineer"}, "jobs": [{"title": "Engineer"}, {"title": "Engineer", "yoeMin": "lots"}]}`
	resp, out := do(t, s, http.MethodPost, "/v1/rank", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	detail := out["error"].(map[string]any)
	assert.True(t, strings.HasPrefix(detail["field"].(string), "jobs[1]"), detail["field"])

	resp, out = do(t, s, http.MethodPost, "/v1/rank", `{"profile": {"title": "Engineer"}, "jobs": []}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "jobs", out["error"].(map[string]any)["field"])
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &aitest.Counting{})
	resp, body := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	data := body["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Contains(t, data, "cache")
}

func TestUnknownRoute(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, &aitest.Counting{})
	resp, body := do(t, s, http.MethodGet, "/v2/nothing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, ErrorTypeHTTP, body["error"].(map[string]any)["type"])
}

func TestNewRequiresScorerAndRanker(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, Deps{}, nil)
	require.Error(t, err)
}

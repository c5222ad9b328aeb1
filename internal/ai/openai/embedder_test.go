package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/fit-scorer/internal/ai"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeEmbedding(w http.ResponseWriter, values []float32) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"model":  "text-embedding-3-small",
		"data": []map[string]any{{
			"object":    "embedding",
			"index":     0,
			"embedding": values,
		}},
	})
}

func TestEmbedderCallsEmbeddingsEndpoint(t *testing.T) {
	var got embeddingRequest
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEmbedding(w, []float32{0.5, 0.25})
	})

	e, err := New("test-key", srv.URL+"/v1/", "", ai.RetryPolicy{Attempts: 1}, zap.NewNop())
	require.NoError(t, err)

	vector, err := e.Embed(context.Background(), " negotiation ", "")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vector)
	assert.Equal(t, []string{"negotiation"}, got.Input)
	assert.Equal(t, defaultModel, got.Model)
}

func TestEmbedderRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		writeEmbedding(w, []float32{1})
	})

	e, err := New("test-key", srv.URL+"/v1", "custom-model", ai.RetryPolicy{Attempts: 2}, zap.NewNop())
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "crm", "")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestEmbedderReportsProviderErrors(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	e, err := New("bad-key", srv.URL+"/v1", "", ai.RetryPolicy{Attempts: 3}, zap.NewNop())
	require.NoError(t, err)

	_, err = e.Embed(context.Background(), "crm", "")
	var pe *ai.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusUnauthorized, pe.StatusCode)
	assert.Equal(t, ai.ProviderOpenAI, pe.Provider)
	assert.False(t, pe.Temporary())
}

func TestNewRequiresKey(t *testing.T) {
	_, err := New(" ", "", "", ai.DefaultRetryPolicy(), nil)
	require.Error(t, err)
}

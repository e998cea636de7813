// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/pkg/types"
)

func init() {
	// Use a tiny base delay so retry tests finish quickly.
	backoffBase = time.Millisecond
}

func TestBuildUserPrompt(t *testing.T) {
	papers := []types.Paper{
		{ID: "2301.07041", Title: "Attention Revisited", Abstract: "We revisit attention."},
		{ID: "2301.99999", Title: "Sparse Models", Abstract: "We sparsify models."},
	}

	prompt, err := BuildUserPrompt(papers, []string{"attention", "efficient inference"})
	require.NoError(t, err)

	assert.Contains(t, prompt, "My research interests: attention, efficient inference")
	assert.Contains(t, prompt, "Paper ID: 2301.07041")
	assert.Contains(t, prompt, "Title: Attention Revisited")
	assert.Contains(t, prompt, "Abstract: We revisit attention.")
	assert.Contains(t, prompt, "Paper ID: 2301.99999")
	assert.Contains(t, prompt, "output ONLY a valid JSON array")
	assert.Contains(t, prompt, `If no papers match, output [].`)
}

func TestClaudeBackendComplete(t *testing.T) {
	var gotBody claudeRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{{Type: "text", Text: `[]`}},
		})
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "claude-test", Client: ts.Client()}
	text, err := backend.Complete(context.Background(), "system text", "user text")
	require.NoError(t, err)

	assert.Equal(t, `[]`, text)
	assert.Equal(t, "claude-test", gotBody.Model)
	assert.Equal(t, "system text", gotBody.System)
	require.Len(t, gotBody.Messages, 1)
	assert.Equal(t, "user", gotBody.Messages[0].Role)
	assert.Equal(t, "user text", gotBody.Messages[0].Content)
}

func TestClaudeBackendJoinsTextBlocks(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{
				{Type: "thinking", Text: "ignored"},
				{Type: "text", Text: "[{"},
				{Type: "text", Text: "}]"},
			},
		})
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	backend := &ClaudeBackend{Client: ts.Client()}
	text, err := backend.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "[{}]", text)
}

func TestClaudeBackendRetriesServerErrors(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{{Type: "text", Text: "ok"}},
		})
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	backend := &ClaudeBackend{MaxRetries: 5, Client: ts.Client()}
	text, err := backend.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClaudeBackendGivesUpAfterRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	defer func() { claudeAPIURL = old }()

	backend := &ClaudeBackend{MaxRetries: 2, Client: ts.Client()}
	_, err := backend.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 retries")
}

package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"codefusion/internal/workbench"
	"codefusion/pkg/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(types.ClientConfig{ServerURL: srv.URL + "/", Timeout: 5 * time.Second}, zaptest.NewLogger(t))
}

func TestConvertSendsFormFields(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/convert", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "python", r.PostForm.Get("source_lang"))
		assert.Equal(t, "cpp", r.PostForm.Get("target_lang"))
		assert.Equal(t, "print(1)\nx = 'a&b'", r.PostForm.Get("code"))
		assert.Len(t, r.PostForm, 3)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(types.ConversionResult{ConvertedCode: "int x;"})
	})

	result, err := client.Convert(context.Background(), workbench.CodeSubmission{
		RawText:        "print(1)\nx = 'a&b'",
		SourceLanguage: "python",
		TargetLanguage: "cpp",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "int x;", result.ConvertedCode)
	assert.Empty(t, result.Error)
}

func TestConvertLogicalErrorIsNotTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"bad syntax"}`)
	})

	result, err := client.Convert(context.Background(), workbench.CodeSubmission{RawText: "x"})
	require.NoError(t, err)
	assert.Equal(t, "bad syntax", result.Error)
}

func TestConvertMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>gateway timeout</html>")
	})

	_, err := client.Convert(context.Background(), workbench.CodeSubmission{RawText: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode convert response")
}

func TestConvertServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(types.ClientConfig{ServerURL: srv.URL, Timeout: time.Second}, zaptest.NewLogger(t))

	_, err := client.Convert(context.Background(), workbench.CodeSubmission{RawText: "x"})
	assert.Error(t, err)
}

func TestReviewSendsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req types.ReviewRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "let a = 1;\n", req.Code)

		_, _ = io.WriteString(w, "## Review\n\nLooks good.")
	})

	body, err := client.Review(context.Background(), "let a = 1;\n")
	require.NoError(t, err)
	assert.Equal(t, "## Review\n\nLooks good.", body)
}

func TestReviewNon2xxFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"Prompt is required"}`)
	})

	_, err := client.Review(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestReviewOversizedBodyFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", maxBodySize))
		_, _ = io.WriteString(w, "\n## Final section\n")
	})

	body, err := client.Review(context.Background(), "x")
	require.ErrorIs(t, err, ErrResponseTooLarge)
	assert.Empty(t, body)
}

func TestReviewBodyAtLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", maxBodySize-4)+"done")
	})

	body, err := client.Review(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, body, maxBodySize)
	assert.True(t, strings.HasSuffix(body, "done"))
}

func TestHistory(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/history", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		_ = json.NewEncoder(w).Encode(types.HistoryResponse{Entries: []types.HistoryEntry{{
			ID:         "abc",
			Flow:       "converter",
			CodeLength: 12,
			Outcome:    "success",
			CreatedAt:  created,
		}}})
	})

	entries, err := client.History(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ID)
	assert.True(t, created.Equal(entries[0].CreatedAt))
}

func TestHistoryDisabled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"history is disabled"}`)
	})

	_, err := client.History(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history is disabled")
}

func TestDispatcherWrapsClientErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})
	logger := zaptest.NewLogger(t)
	d := workbench.NewDispatcher(client, logger)

	resp := d.Dispatch(context.Background(), workbench.Request{
		Seq:        1,
		Flow:       workbench.FlowConverter,
		Submission: workbench.CodeSubmission{RawText: "x", TargetLanguage: "c"},
	})

	var te *workbench.TransportError
	require.ErrorAs(t, resp.Failure(), &te)
	assert.Equal(t, "converter", te.Op)
}

func TestDispatcherReportsOversizedReviewAsTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("#", maxBodySize+1))
	})
	d := workbench.NewDispatcher(client, zaptest.NewLogger(t))

	resp := d.Dispatch(context.Background(), workbench.Request{
		Seq:        1,
		Flow:       workbench.FlowReview,
		Submission: workbench.CodeSubmission{RawText: "x"},
	})

	var te *workbench.TransportError
	require.ErrorAs(t, resp.Failure(), &te)
	assert.ErrorIs(t, te, ErrResponseTooLarge)
	assert.Empty(t, resp.Review)
}

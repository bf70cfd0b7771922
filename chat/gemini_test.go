package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"aquawatch-be/common"
)

func newTestGemini(server *httptest.Server, models []string) *Gemini {
	return &Gemini{
		APIKey:          "test-key",
		BaseURL:         server.URL,
		Models:          models,
		MaxRetries:      1,
		RetryDelay:      time.Millisecond,
		Temperature:     0.7,
		MaxOutputTokens: 256,
		Client:          server.Client(),
	}
}

func candidateResponse(text string) string {
	return `{"candidates":[{"content":{"parts":[{"text":"` + text + `"}]}}]}`
}

func TestGenerateNotConfigured(t *testing.T) {
	g := &Gemini{}
	_, err := g.Generate(context.Background(), nil, "hello")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestGenerateSuccess(t *testing.T) {
	common.SetTestLoggerNop()

	var gotBody geminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = w.Write([]byte(candidateResponse("hi there")))
	}))
	defer server.Close()

	g := newTestGemini(server, []string{"model-a"})
	history := []Message{{Role: "user", Content: "earlier"}, {Role: "model", Content: "reply"}}

	text, err := g.Generate(context.Background(), history, "hello")
	assert.NoError(t, err)
	assert.Equal(t, "hi there", text)

	// System prompt + history + prompt, in order.
	assert.Len(t, gotBody.Contents, 4)
	assert.Equal(t, SystemPrompt, gotBody.Contents[0].Parts[0].Text)
	assert.Equal(t, "earlier", gotBody.Contents[1].Parts[0].Text)
	assert.Equal(t, "model", gotBody.Contents[2].Role)
	assert.Equal(t, "hello", gotBody.Contents[3].Parts[0].Text)
	assert.Equal(t, 0.7, gotBody.GenerationConfig.Temperature)
	assert.Equal(t, 256, gotBody.GenerationConfig.MaxOutputTokens)
}

func TestGenerateFallsBackThroughModels(t *testing.T) {
	common.SetTestLoggerNop()

	var calls []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.URL.Path)
		if len(calls) == 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(candidateResponse("from fallback")))
	}))
	defer server.Close()

	g := newTestGemini(server, []string{"model-a", "model-b"})

	text, err := g.Generate(context.Background(), nil, "hello")
	assert.NoError(t, err)
	assert.Equal(t, "from fallback", text)
	assert.Len(t, calls, 2)
	assert.Contains(t, calls[0], "model-a")
	assert.Contains(t, calls[1], "model-b")
}

func TestGenerateRetriesWholeSequence(t *testing.T) {
	common.SetTestLoggerNop()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	g := newTestGemini(server, []string{"model-a", "model-b"})
	g.MaxRetries = 2

	_, err := g.Generate(context.Background(), nil, "hello")
	assert.Error(t, err)
	// 2 models x (1 initial + 2 retries)
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorModelUnavailable, Classify(&apiError{status: http.StatusNotFound}))
	assert.Equal(t, ErrorRateLimited, Classify(&apiError{status: http.StatusTooManyRequests}))
	assert.Equal(t, ErrorService, Classify(&apiError{status: http.StatusInternalServerError}))
	assert.Equal(t, ErrorService, Classify(&apiError{status: http.StatusBadGateway}))
	assert.Equal(t, ErrorGeneric, Classify(&apiError{status: http.StatusBadRequest}))
	assert.Equal(t, ErrorOffline, Classify(context.DeadlineExceeded))
	assert.Equal(t, ErrorGeneric, Classify(assert.AnError))
}

func TestErrorKindUserMessages(t *testing.T) {
	for _, kind := range []ErrorKind{ErrorOffline, ErrorModelUnavailable, ErrorRateLimited, ErrorService, ErrorGeneric} {
		assert.NotEmpty(t, kind.UserMessage())
	}
}

func TestGenerateEmptyCandidatesIsError(t *testing.T) {
	common.SetTestLoggerNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g := newTestGemini(server, []string{"model-a"})
	g.MaxRetries = 0

	_, err := g.Generate(context.Background(), nil, "hello")
	assert.Error(t, err)
}

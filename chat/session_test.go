package chat

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"aquawatch-be/common"
)

type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, history []Message, prompt string) (string, error) {
	f.calls++
	return f.reply, f.err
}

func TestOpenSessionReady(t *testing.T) {
	m := NewManager(&fakeGenerator{})
	session := m.Open()

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, StateReady, session.State)
	assert.Empty(t, session.Messages)
}

func TestOpenSessionUnconfigured(t *testing.T) {
	m := NewManager(nil)
	session := m.Open()

	assert.Equal(t, StateError, session.State)
	assert.Equal(t, ErrNotConfigured.Error(), session.LastError)
}

func TestSendSuccess(t *testing.T) {
	common.SetTestLoggerNop()

	gen := &fakeGenerator{reply: "assistant reply"}
	m := NewManager(gen)
	session := m.Open()

	got, err := m.Send(context.Background(), session.ID, "hello")
	assert.NoError(t, err)
	assert.Equal(t, StateReady, got.State)
	assert.Len(t, got.Messages, 2)

	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, MessageSent, got.Messages[0].Status)
	assert.Equal(t, "model", got.Messages[1].Role)
	assert.Equal(t, "assistant reply", got.Messages[1].Content)
	assert.Equal(t, MessageSent, got.Messages[1].Status)
}

func TestSendFailureClassified(t *testing.T) {
	common.SetTestLoggerNop()

	gen := &fakeGenerator{err: &apiError{status: http.StatusTooManyRequests}}
	m := NewManager(gen)
	session := m.Open()

	got, err := m.Send(context.Background(), session.ID, "hello")
	assert.NoError(t, err)
	assert.Equal(t, StateError, got.State)
	assert.Equal(t, ErrorRateLimited.UserMessage(), got.LastError)

	// The optimistic user message flips to error, no model reply appears.
	assert.Len(t, got.Messages, 1)
	assert.Equal(t, MessageError, got.Messages[0].Status)
}

func TestSendHistoryExcludesFailedMessages(t *testing.T) {
	common.SetTestLoggerNop()

	gen := &fakeGenerator{err: errors.New("boom")}
	m := NewManager(gen)
	session := m.Open()

	_, err := m.Send(context.Background(), session.ID, "first")
	assert.NoError(t, err)

	captured := &capturingGenerator{reply: "ok"}
	m.generator = captured

	got, err := m.Send(context.Background(), session.ID, "second")
	assert.NoError(t, err)
	assert.Equal(t, StateReady, got.State)

	// The failed first message never reaches the model.
	for _, msg := range captured.history {
		assert.NotEqual(t, "first", msg.Content)
	}
}

type capturingGenerator struct {
	reply   string
	history []Message
}

func (c *capturingGenerator) Generate(ctx context.Context, history []Message, prompt string) (string, error) {
	c.history = history
	return c.reply, nil
}

func TestRetryFromError(t *testing.T) {
	common.SetTestLoggerNop()

	gen := &fakeGenerator{err: errors.New("boom")}
	m := NewManager(gen)
	session := m.Open()

	got, _ := m.Send(context.Background(), session.ID, "hello")
	assert.Equal(t, StateError, got.State)

	retried, err := m.Retry(session.ID)
	assert.NoError(t, err)
	assert.Equal(t, StateReady, retried.State)
	assert.Empty(t, retried.LastError)
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	common.SetTestLoggerNop()

	m := NewManager(&fakeGenerator{reply: "ok"})

	stale := m.Open()
	fresh := m.Open()

	m.mu.Lock()
	m.sessions[stale.ID].LastActive = time.Now().Add(-2 * sessionTTL)
	m.mu.Unlock()

	// Any manager call sweeps idle sessions past the TTL.
	_, err := m.Get(fresh.ID)
	assert.NoError(t, err)

	_, err = m.Get(stale.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Send(context.Background(), stale.ID, "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSendRefreshesIdleClock(t *testing.T) {
	common.SetTestLoggerNop()

	m := NewManager(&fakeGenerator{reply: "ok"})

	session := m.Open()

	m.mu.Lock()
	m.sessions[session.ID].LastActive = time.Now().Add(-sessionTTL / 2)
	m.mu.Unlock()

	_, err := m.Send(context.Background(), session.ID, "hello")
	assert.NoError(t, err)

	m.mu.Lock()
	lastActive := m.sessions[session.ID].LastActive
	m.mu.Unlock()
	assert.WithinDuration(t, time.Now(), lastActive, time.Minute)
}

func TestSessionNotFound(t *testing.T) {
	m := NewManager(&fakeGenerator{})

	_, err := m.Get("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Send(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Retry("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

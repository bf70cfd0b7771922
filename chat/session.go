package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"aquawatch-be/common"
)

// SessionState follows idle -> initializing -> ready, ready <-> sending,
// with error reachable from anywhere and retry leading back through
// initializing.
type SessionState string

const (
	StateIdle         SessionState = "idle"
	StateInitializing SessionState = "initializing"
	StateReady        SessionState = "ready"
	StateSending      SessionState = "sending"
	StateError        SessionState = "error"
)

// MessageStatus tracks each transcript entry.
type MessageStatus string

const (
	MessageSending MessageStatus = "sending"
	MessageSent    MessageStatus = "sent"
	MessageError   MessageStatus = "error"
)

// TranscriptMessage is one entry in a session's history.
type TranscriptMessage struct {
	ID        string        `json:"id"`
	Role      string        `json:"role"` // "user" or "model"
	Content   string        `json:"content"`
	Status    MessageStatus `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// Session is one conversation. History is session-only; nothing persists.
type Session struct {
	ID         string              `json:"id"`
	State      SessionState        `json:"state"`
	Messages   []TranscriptMessage `json:"messages"`
	LastError  string              `json:"lastError,omitempty"`
	CreatedAt  time.Time           `json:"createdAt"`
	LastActive time.Time           `json:"-"`
}

var (
	ErrSessionNotFound = errors.New("chat session not found")
	ErrSessionBusy     = errors.New("chat session is already sending")
)

// sessionTTL bounds how long an idle conversation is kept.
const sessionTTL = 30 * time.Minute

// Manager owns all live sessions and drives the generator. Sessions idle
// past the TTL are swept out on the next manager call.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	generator Generator
	ttl       time.Duration
}

func NewManager(generator Generator) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		generator: generator,
		ttl:       sessionTTL,
	}
}

// evictExpiredLocked drops sessions idle past the TTL. Callers hold mu.
func (m *Manager) evictExpiredLocked() {
	if m.ttl <= 0 {
		return
	}
	cutoff := time.Now().Add(-m.ttl)
	for id, session := range m.sessions {
		if session.LastActive.Before(cutoff) {
			delete(m.sessions, id)
		}
	}
}

// Open creates a session and moves it through initializing into ready. A
// missing generator configuration lands it in error with retry available.
func (m *Manager) Open() *Session {
	session := &Session{
		ID:         uuid.NewString(),
		State:      StateInitializing,
		CreatedAt:  time.Now(),
		LastActive: time.Now(),
	}

	if m.generator == nil {
		session.State = StateError
		session.LastError = ErrNotConfigured.Error()
	} else {
		session.State = StateReady
	}

	m.mu.Lock()
	m.evictExpiredLocked()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session
}

// Get returns a snapshot of the session.
func (m *Manager) Get(sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictExpiredLocked()
	session, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return *session, nil
}

// Send appends the user message optimistically with status sending, calls
// the model and flips statuses on the outcome. On failure the session moves
// to error with a classified, human-readable cause.
func (m *Manager) Send(ctx context.Context, sessionID, text string) (Session, error) {
	logger := common.GetLoggerWith(common.LoggerNameChat, zap.String("session", sessionID))

	m.mu.Lock()
	m.evictExpiredLocked()
	session, ok := m.sessions[sessionID]
	if !ok {
		m.mu.Unlock()
		return Session{}, ErrSessionNotFound
	}
	if session.State == StateSending {
		m.mu.Unlock()
		return Session{}, ErrSessionBusy
	}
	session.LastActive = time.Now()

	userMsg := TranscriptMessage{
		ID:        uuid.NewString(),
		Role:      "user",
		Content:   text,
		Status:    MessageSending,
		Timestamp: time.Now(),
	}
	session.Messages = append(session.Messages, userMsg)
	session.State = StateSending
	session.LastError = ""

	history := make([]Message, 0, len(session.Messages)-1)
	for _, msg := range session.Messages[:len(session.Messages)-1] {
		if msg.Status == MessageSent {
			history = append(history, Message{Role: msg.Role, Content: msg.Content})
		}
	}
	m.mu.Unlock()

	var reply string
	var err error
	if m.generator == nil {
		err = ErrNotConfigured
	} else {
		reply, err = m.generator.Generate(ctx, history, text)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		kind := Classify(err)
		session.State = StateError
		session.LastError = kind.UserMessage()
		m.setMessageStatus(session, userMsg.ID, MessageError)
		logger.Warn("chat send failed", zap.String("kind", string(kind)), zap.Error(err))
		return *session, nil
	}

	m.setMessageStatus(session, userMsg.ID, MessageSent)
	session.Messages = append(session.Messages, TranscriptMessage{
		ID:        uuid.NewString(),
		Role:      "model",
		Content:   reply,
		Status:    MessageSent,
		Timestamp: time.Now(),
	})
	session.State = StateReady

	return *session, nil
}

// Retry clears the error and re-runs initialization, mirroring the manual
// retry affordance in the transcript UI.
func (m *Manager) Retry(sessionID string) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evictExpiredLocked()

	session, ok := m.sessions[sessionID]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	session.LastActive = time.Now()
	session.State = StateInitializing
	session.LastError = ""
	if m.generator == nil {
		session.State = StateError
		session.LastError = ErrNotConfigured.Error()
	} else {
		session.State = StateReady
	}

	return *session, nil
}

func (m *Manager) setMessageStatus(session *Session, messageID string, status MessageStatus) {
	for i := range session.Messages {
		if session.Messages[i].ID == messageID {
			session.Messages[i].Status = status
			return
		}
	}
}

package registration

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("registration session not found")

type (
	// TranscriptEntry is one rendered line of the conversation, append-only.
	TranscriptEntry struct {
		ID      int64  `json:"id"`
		Speaker string `json:"speaker"` // "bot" or "user"
		Text    string `json:"text"`
	}

	// DraftStore persists resumable conversation drafts keyed by session.
	DraftStore interface {
		SaveDraft(ctx context.Context, sessionID string, d Draft) error
		LoadDraft(ctx context.Context, sessionID string) (Draft, bool, error)
		DeleteDraft(ctx context.Context, sessionID string) error
	}

	// Session pairs a machine with its transcript. All transitions on one
	// session are serialized through mu; concurrent inputs queue up rather
	// than interleave.
	Session struct {
		ID         string
		Machine    *Machine
		Transcript []TranscriptEntry
		touched    time.Time
		mu         sync.Mutex
	}

	// SessionStore owns all live registration conversations. Sessions expire
	// after the configured idle TTL; Sweep reclaims them.
	SessionStore struct {
		mu       sync.Mutex
		sessions map[string]*Session
		drafts   DraftStore
		ttl      time.Duration
		now      func() time.Time
	}
)

// Append records rendered events onto the session transcript, preserving
// the machine's transition order. IDs are timestamp-derived and strictly
// increasing within a session. Once the session is published in the store,
// callers must hold mu.
func (s *Session) Append(events []Event) {
	for _, ev := range events {
		var speaker string
		switch ev.Kind {
		case EventBotMessage:
			speaker = "bot"
		case EventUserMessage:
			speaker = "user"
		default:
			continue
		}
		id := time.Now().UnixNano()
		if n := len(s.Transcript); n > 0 && s.Transcript[n-1].ID >= id {
			id = s.Transcript[n-1].ID + 1
		}
		s.Transcript = append(s.Transcript, TranscriptEntry{ID: id, Speaker: speaker, Text: ev.Text})
	}
}

// State reports the machine state under the session's transition lock.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Machine.State()
}

func (s *Session) Progress() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Machine.Progress()
}

func (s *Session) Options() []Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Machine.Options()
}

// TranscriptEntries returns a copy of the transcript so far.
func (s *Session) TranscriptEntries() []TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TranscriptEntry(nil), s.Transcript...)
}

func NewSessionStore(drafts DraftStore, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		drafts:   drafts,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create opens a new conversation and returns it with the opening prompt
// already on the transcript.
func (store *SessionStore) Create(ctx context.Context, seedProjectType string, users IdentityLookup, pipeline Submitter) (*Session, []Event) {
	m := NewMachine(seedProjectType, users, pipeline)
	sess := &Session{
		ID:      uuid.NewString(),
		Machine: m,
		touched: store.now(),
	}
	events := m.Start()
	sess.Append(events)

	store.mu.Lock()
	store.sessions[sess.ID] = sess
	store.mu.Unlock()
	return sess, events
}

func (store *SessionStore) Get(id string) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	sess, ok := store.sessions[id]
	if !ok || store.now().Sub(sess.touched) > store.ttl {
		delete(store.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.touched = store.now()
	return sess, nil
}

// Advance feeds input to a session's machine, updates the transcript, and
// checkpoints or clears the draft depending on where the machine landed.
// The session lock is held across the whole transition, so a second input
// arriving while a submission is in flight waits and is then ignored by
// the machine instead of submitting again.
func (store *SessionStore) Advance(ctx context.Context, id, input string) (*Session, []Event, error) {
	sess, err := store.Get(id)
	if err != nil {
		return nil, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	events := sess.Machine.Advance(ctx, input)
	sess.Append(events)

	if store.drafts != nil {
		switch sess.Machine.State() {
		case StateComplete, StateFailed:
			_ = store.drafts.DeleteDraft(ctx, sess.ID)
		default:
			_ = store.drafts.SaveDraft(ctx, sess.ID, sess.Machine.Snapshot())
		}
	}
	return sess, events, nil
}

// Resume reopens a session from its saved draft, replaying the current
// step's prompt.
func (store *SessionStore) Resume(ctx context.Context, id string, users IdentityLookup, pipeline Submitter) (*Session, []Event, error) {
	if store.drafts == nil {
		return nil, nil, ErrSessionNotFound
	}
	d, ok, err := store.drafts.LoadDraft(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrSessionNotFound
	}

	m := NewMachine("", users, pipeline)
	m.Restore(d)
	sess := &Session{ID: id, Machine: m, touched: store.now()}
	events := []Event{{Kind: EventBotMessage, Text: m.steps[m.stepIdx].Prompt(m.answers), Delay: m.delay()}}
	sess.Append(events)

	store.mu.Lock()
	store.sessions[id] = sess
	store.mu.Unlock()
	return sess, events, nil
}

// Sweep drops sessions idle past the TTL and returns how many were dropped.
func (store *SessionStore) Sweep() int {
	store.mu.Lock()
	defer store.mu.Unlock()

	var dropped int
	cutoff := store.now().Add(-store.ttl)
	for id, sess := range store.sessions {
		if sess.touched.Before(cutoff) {
			delete(store.sessions, id)
			dropped++
		}
	}
	return dropped
}

// InMemDraftStore is a process-local DraftStore for tests and single-node
// deployments.
type InMemDraftStore struct {
	mu     sync.RWMutex
	drafts map[string]Draft
}

func NewInMemDraftStore() *InMemDraftStore {
	return &InMemDraftStore{drafts: make(map[string]Draft)}
}

func (s *InMemDraftStore) SaveDraft(_ context.Context, sessionID string, d Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[sessionID] = d
	return nil
}

func (s *InMemDraftStore) LoadDraft(_ context.Context, sessionID string) (Draft, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drafts[sessionID]
	return d, ok, nil
}

func (s *InMemDraftStore) DeleteDraft(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, sessionID)
	return nil
}

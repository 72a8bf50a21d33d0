// Package store provides in-memory storage for calculator sessions.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lemonberrylabs/keypad-calculator/pkg/calculator"
	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
)

// DefaultMaxSessions is the session cap used when none is configured.
const DefaultMaxSessions = 1000

// Session is a snapshot of one calculator session.
type Session struct {
	Name       string       `json:"name"`
	State      editor.State `json:"state"`
	Error      string       `json:"error,omitempty"` // reason behind an "Error" answer
	KeyCount   int64        `json:"keyCount"`
	CreateTime time.Time    `json:"createTime"`
	UpdateTime time.Time    `json:"updateTime"`
}

type entry struct {
	calc       *calculator.Calculator
	keyCount   int64
	createTime time.Time
	updateTime time.Time
}

// Store is a thread-safe in-memory storage for calculator sessions. Key
// presses on the store are serialised, so each Calculator is only ever
// touched by one goroutine at a time.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*entry
	maxSessions int

	// Counter for generating unique IDs
	sessionCounter int64
}

// New creates a new empty store holding at most maxSessions sessions. A
// non-positive maxSessions selects DefaultMaxSessions.
func New(maxSessions int) *Store {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Store{
		sessions:    make(map[string]*entry),
		maxSessions: maxSessions,
	}
}

// CreateSession creates a new session, optionally seeded with an expression.
// The seed must be something the keypad could have typed.
func (s *Store) CreateSession(expression string) (*Session, error) {
	if _, err := editor.Replay(expression); err != nil {
		return nil, fmt.Errorf("invalid seed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.maxSessions {
		return nil, fmt.Errorf("session limit of %d reached", s.maxSessions)
	}

	s.sessionCounter++
	name := fmt.Sprintf("sessions/session-%d", s.sessionCounter)

	now := time.Now()
	e := &entry{
		calc:       calculator.Restore(expression),
		createTime: now,
		updateTime: now,
	}
	s.sessions[name] = e
	return snapshot(name, e), nil
}

// GetSession retrieves a session by its full name.
func (s *Store) GetSession(name string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("session '%s' not found", name)
	}
	return snapshot(name, e), nil
}

// ListSessions returns all sessions, oldest first.
func (s *Store) ListSessions() []*Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*Session, 0, len(s.sessions))
	for name, e := range s.sessions {
		result = append(result, snapshot(name, e))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreateTime.Before(result[j].CreateTime) ||
			(result[i].CreateTime.Equal(result[j].CreateTime) && result[i].Name < result[j].Name)
	})
	return result
}

// PressKeys applies key labels to a session in order. Labels are validated
// up front, so an unknown label leaves the session untouched.
func (s *Store) PressKeys(name string, labels ...string) (*Session, error) {
	for _, l := range labels {
		if !editor.ValidLabel(l) {
			return nil, fmt.Errorf("unknown key %q", l)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("session '%s' not found", name)
	}

	for _, l := range labels {
		if _, err := e.calc.Press(l); err != nil {
			return nil, err
		}
		e.keyCount++
	}
	e.updateTime = time.Now()

	return snapshot(name, e), nil
}

// Backspace removes the last character of a session's expression.
func (s *Store) Backspace(name string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[name]
	if !ok {
		return nil, fmt.Errorf("session '%s' not found", name)
	}

	e.calc.Delete()
	e.keyCount++
	e.updateTime = time.Now()

	return snapshot(name, e), nil
}

// DeleteSession removes a session.
func (s *Store) DeleteSession(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[name]; !ok {
		return fmt.Errorf("session '%s' not found", name)
	}
	delete(s.sessions, name)
	return nil
}

func snapshot(name string, e *entry) *Session {
	sess := &Session{
		Name:       name,
		State:      e.calc.State(),
		KeyCount:   e.keyCount,
		CreateTime: e.createTime,
		UpdateTime: e.updateTime,
	}
	if err := e.calc.Err(); err != nil {
		sess.Error = err.Error()
	}
	return sess
}

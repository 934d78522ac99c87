// Copyright (c) 2025 askdb
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session holds per-session state: whether the actor authenticated as
// an administrator, the write permission that only an administrator can turn on,
// and the conversation transcript. Sessions live in memory only; write
// permission is never persisted and starts false in every new session.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "askdb/cli/internal/errors"
)

// Exchange is one question or statement and its outcome, kept for the transcript.
type Exchange struct {
	Time      time.Time `json:"time"`
	Question  string    `json:"question,omitempty"`
	Statement string    `json:"statement"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
}

// maxTranscript bounds the in-memory transcript of one session.
const maxTranscript = 200

// Session is one user's interaction state. Safe for concurrent use.
type Session struct {
	ID      string
	Created time.Time

	mu         sync.Mutex
	user       string
	admin      bool
	write      bool
	lastSeen   time.Time
	transcript []Exchange
}

// New starts a session without admin rights or write permission.
func New() *Session {
	now := time.Now()
	return &Session{ID: uuid.NewString(), Created: now, lastSeen: now}
}

// Login authenticates the session as an administrator. Write permission stays
// off until SetWrite(true) is called.
func (s *Session) Login(v Verifier, user, password string) error {
	if err := v.Verify(user, password); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.admin = true
	s.lastSeen = time.Now()
	return nil
}

// Logout drops admin rights and write permission.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = ""
	s.admin = false
	s.write = false
	s.lastSeen = time.Now()
}

// SetWrite turns write permission on or off. Turning it on requires an
// authenticated administrator; turning it off is always allowed.
func (s *Session) SetWrite(on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on && !s.admin {
		return apperrors.New(apperrors.NotAuthorized, "only an authenticated administrator can enable write mode")
	}
	s.write = on
	s.lastSeen = time.Now()
	return nil
}

// WritePermission reports whether statements from this session may write.
func (s *Session) WritePermission() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write
}

// IsAdmin reports whether the session authenticated as an administrator.
func (s *Session) IsAdmin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.admin
}

// User is the authenticated administrator name, or "".
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Record appends to the transcript, dropping the oldest exchange when full.
func (s *Session) Record(e Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	if len(s.transcript) >= maxTranscript {
		s.transcript = append(s.transcript[:0], s.transcript[1:]...)
	}
	s.transcript = append(s.transcript, e)
	s.lastSeen = e.Time
}

// Transcript returns a copy of the recorded exchanges, oldest first.
func (s *Session) Transcript() []Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Exchange(nil), s.transcript...)
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastSeen = time.Now()
	s.mu.Unlock()
}

// LastSeen is the time of the last state change or Touch.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

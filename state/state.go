package state

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Session is one server-side login session created by the form login flow.
type Session struct {
	ID       string
	UserID   uint
	Username string
	Roles    string
	Expires  time.Time
}

// SessionStore holds active sessions keyed by opaque session ID.
type SessionStore struct {
	Sessions map[string]Session
	sync.RWMutex
}

// Global is the shared session store instance
var Global = &SessionStore{
	Sessions: make(map[string]Session),
}

// NewSessionID returns a random 128-bit hex session identifier.
func NewSessionID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for session issuance
		panic(err)
	}
	return hex.EncodeToString(buf)
}

// Add stores a session.
func (s *SessionStore) Add(session Session) {
	s.Lock()
	defer s.Unlock()
	s.Sessions[session.ID] = session
}

// Get fetches a session by ID. An expired session is removed and treated
// as missing.
func (s *SessionStore) Get(id string) (Session, bool) {
	s.RLock()
	session, exists := s.Sessions[id]
	s.RUnlock()

	if !exists {
		return Session{}, false
	}
	if time.Now().After(session.Expires) {
		s.Remove(id)
		return Session{}, false
	}
	return session, true
}

// Remove deletes a session by ID and reports whether it existed.
func (s *SessionStore) Remove(id string) bool {
	s.Lock()
	defer s.Unlock()
	_, exists := s.Sessions[id]
	if exists {
		delete(s.Sessions, id)
	}
	return exists
}

// RemoveForUser drops every session belonging to the given user, used on
// password change and account deletion.
func (s *SessionStore) RemoveForUser(userID uint) int {
	s.Lock()
	defer s.Unlock()
	removed := 0
	for id, session := range s.Sessions {
		if session.UserID == userID {
			delete(s.Sessions, id)
			removed++
		}
	}
	return removed
}

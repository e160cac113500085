// Package credstore provides CredentialStore implementations: a plain
// in-memory slot and a file-backed slot that survives process restarts.
package credstore

import (
	"sync"

	jobhunter "github.com/jobhunter/client-go"
)

// MemoryStore is a process-local credential slot.
type MemoryStore struct {
	mu   sync.RWMutex
	cred jobhunter.Credential
	set  bool
}

// compile-time check
var _ jobhunter.CredentialStore = (*MemoryStore)(nil)

// New creates an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the stored credential, if any.
func (s *MemoryStore) Get() (jobhunter.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.set
}

// Set overwrites the stored credential.
func (s *MemoryStore) Set(c jobhunter.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = c
	s.set = !c.IsZero()
}

// Clear removes the stored credential.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = jobhunter.Credential{}
	s.set = false
}

package credstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	jobhunter "github.com/jobhunter/client-go"
)

// FileStore is a credential slot persisted to a JSON file so the session
// survives a process restart. The in-memory value is authoritative for the
// lifetime of the process; the file is a write-through copy.
//
// Writes are atomic (temp file + rename), so a concurrent reader of the
// same file never observes a torn credential. No change notification is
// broadcast to other processes; a second process only picks up a rotation
// on its next start.
//
// A store whose file cannot be read or written degrades to a process-local
// slot. Operations never return errors.
type FileStore struct {
	path string

	mu   sync.RWMutex
	cred jobhunter.Credential
	set  bool
}

// compile-time check
var _ jobhunter.CredentialStore = (*FileStore)(nil)

// NewFile creates a file-backed store at path, loading any credential a
// previous process left behind.
func NewFile(path string) *FileStore {
	s := &FileStore{path: path}
	s.load()
	return s
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var cred jobhunter.Credential
	if err := json.Unmarshal(data, &cred); err != nil || cred.IsZero() {
		return
	}
	s.cred = cred
	s.set = true
}

// Get returns the stored credential, if any.
func (s *FileStore) Get() (jobhunter.Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred, s.set
}

// Set overwrites the stored credential.
func (s *FileStore) Set(c jobhunter.Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = c
	s.set = !c.IsZero()
	s.persist()
}

// Clear removes the stored credential and its file.
func (s *FileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = jobhunter.Credential{}
	s.set = false
	_ = os.Remove(s.path)
}

// persist writes the slot to disk, best effort. Called with s.mu held.
func (s *FileStore) persist() {
	if !s.set {
		_ = os.Remove(s.path)
		return
	}
	data, err := json.Marshal(s.cred)
	if err != nil {
		return
	}
	dir := filepath.Dir(s.path)
	_ = os.MkdirAll(dir, 0o700)
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		_ = os.Remove(name)
		return
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return
	}
	if err := os.Rename(name, s.path); err != nil {
		_ = os.Remove(name)
	}
}

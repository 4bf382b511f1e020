// Package session holds per-conversation state: the question/answer
// history sent with every query, the rendered transcript and the files the
// user has picked for upload.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"kb-chat/internal/models"
)

// Session is safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	id            string
	history       []models.HistoryPair
	transcript    []models.Turn
	selectedFiles []string
	createdAt     time.Time
	updatedAt     time.Time
}

func New() *Session {
	now := time.Now().UTC()
	return &Session{
		id:        uuid.New().String(),
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Append records a completed question/answer exchange.
func (s *Session) Append(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, models.HistoryPair{Question: question, Answer: answer})
	s.touch()
}

// History returns a copy of the exchanges so far; never nil.
func (s *Session) History() []models.HistoryPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.HistoryPair, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Session) AddTurn(t models.Turn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, t)
	s.touch()
}

func (s *Session) Transcript() []models.Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Turn, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// Reset clears history, transcript and file selection. The ID is kept so a
// persisted session is overwritten in place.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.transcript = nil
	s.selectedFiles = nil
	s.touch()
}

// SelectFiles adds paths to the upload selection, skipping ones already there.
func (s *Session) SelectFiles(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		if p == "" || containsString(s.selectedFiles, p) {
			continue
		}
		s.selectedFiles = append(s.selectedFiles, p)
	}
	s.touch()
}

// RemoveFile drops path from the selection and reports whether it was there.
func (s *Session) RemoveFile(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.selectedFiles {
		if p == path {
			s.selectedFiles = append(s.selectedFiles[:i], s.selectedFiles[i+1:]...)
			s.touch()
			return true
		}
	}
	return false
}

func (s *Session) ClearFiles() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selectedFiles = nil
	s.touch()
}

func (s *Session) SelectedFiles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.selectedFiles))
	copy(out, s.selectedFiles)
	return out
}

func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}

func containsString(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

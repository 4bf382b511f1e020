package session

import (
	"time"

	"kb-chat/internal/models"
)

// Snapshot is the persisted form of a Session.
type Snapshot struct {
	ID            string               `json:"id"`
	History       []models.HistoryPair `json:"history"`
	Transcript    []models.Turn        `json:"transcript"`
	SelectedFiles []string             `json:"selectedFiles,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		ID:            s.id,
		History:       make([]models.HistoryPair, len(s.history)),
		Transcript:    make([]models.Turn, len(s.transcript)),
		SelectedFiles: append([]string(nil), s.selectedFiles...),
		CreatedAt:     s.createdAt,
		UpdatedAt:     s.updatedAt,
	}
	copy(snap.History, s.history)
	copy(snap.Transcript, s.transcript)
	return snap
}

// FromSnapshot rebuilds a Session from its persisted form.
func FromSnapshot(snap Snapshot) *Session {
	return &Session{
		id:            snap.ID,
		history:       append([]models.HistoryPair(nil), snap.History...),
		transcript:    append([]models.Turn(nil), snap.Transcript...),
		selectedFiles: append([]string(nil), snap.SelectedFiles...),
		createdAt:     snap.CreatedAt,
		updatedAt:     snap.UpdatedAt,
	}
}

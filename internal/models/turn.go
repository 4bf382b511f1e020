package models

import (
	"time"

	"github.com/google/uuid"

	"kb-chat/pkg/sources"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// DefaultAnswer is shown when the backend returns no answer text.
const DefaultAnswer = "I don't know — not in the documents."

// Turn is one entry of the chat transcript.
type Turn struct {
	ID        string              `json:"id"`
	Role      Role                `json:"role"`
	Text      string              `json:"text"`
	Sources   []sources.Annotated `json:"sources,omitempty"`
	NoSources bool                `json:"noSources,omitempty"`
	FileURL   string              `json:"fileUrl,omitempty"`
	IsError   bool                `json:"isError,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}

func NewTurn(role Role, text string) Turn {
	return Turn{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewErrorTurn is an assistant-style turn reporting a failure inline.
func NewErrorTurn(text string) Turn {
	t := NewTurn(RoleAssistant, text)
	t.IsError = true
	return t
}

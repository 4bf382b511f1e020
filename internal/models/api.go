package models

import (
	"encoding/json"
	"fmt"

	"kb-chat/pkg/sources"
)

// HistoryPair is one [question, answer] exchange; it travels as a
// two-element JSON array.
type HistoryPair struct {
	Question string
	Answer   string
}

func (p HistoryPair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Question, p.Answer})
}

func (p *HistoryPair) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("history pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("history pair: want 2 elements, got %d", len(pair))
	}
	p.Question, p.Answer = pair[0], pair[1]
	return nil
}

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Question    string        `json:"question"`
	ChatHistory []HistoryPair `json:"chat_history"`
}

// QueryResponse is the body returned by POST /api/query. Every field is
// optional.
type QueryResponse struct {
	Answer  *string          `json:"answer,omitempty"`
	Sources []sources.Record `json:"sources,omitempty"`
	Error   string           `json:"error,omitempty"`
	Detail  string           `json:"detail,omitempty"`
	FileURL string           `json:"file_url,omitempty"`
}

// AnswerText returns the answer or DefaultAnswer when it is missing or empty.
func (r *QueryResponse) AnswerText() string {
	if r == nil || r.Answer == nil || *r.Answer == "" {
		return DefaultAnswer
	}
	return *r.Answer
}

// UploadResult is whatever JSON the backend returned for POST /upload.
type UploadResult struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// Pretty indents the body for display, falling back to the raw bytes.
func (u *UploadResult) Pretty() string {
	var v interface{}
	if err := json.Unmarshal(u.Body, &v); err != nil {
		return string(u.Body)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(u.Body)
	}
	return string(out)
}

// ReindexResponse is the body of POST /api/reindex.
type ReindexResponse struct {
	Status string          `json:"status"`
	Raw    json.RawMessage `json:"-"`
}

func (r *ReindexResponse) OK() bool {
	return r != nil && r.Status == "ok"
}

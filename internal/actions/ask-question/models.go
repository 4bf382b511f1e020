package askquestion

import (
	"context"

	"kb-chat/internal/models"
)

type Input struct {
	Question string `json:"question"`
}

type Output struct {
	UserTurn models.Turn `json:"userTurn"`
	Reply    models.Turn `json:"reply"`
	// Answered is false when Reply reports a failure.
	Answered bool `json:"answered"`
}

// QueryClient is the part of the backend client this action needs.
type QueryClient interface {
	Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error)
}

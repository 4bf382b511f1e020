package reindexkb

import (
	"context"

	"kb-chat/internal/models"
)

// CompleteMessage is shown when the backend acknowledges with {"status":"ok"}.
const CompleteMessage = "Reindex complete."

type Output struct {
	Turn models.Turn `json:"turn"`
	OK   bool        `json:"ok"`
}

type ReindexClient interface {
	Reindex(ctx context.Context) (*models.ReindexResponse, error)
}

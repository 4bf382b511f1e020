package uploadfiles

import (
	"context"

	"kb-chat/internal/models"
)

// Input names the files to upload. When Paths is empty the session's
// selection is used.
type Input struct {
	Paths []string `json:"paths"`
}

type Output struct {
	Turn     models.Turn          `json:"turn"`
	Uploaded []string             `json:"uploaded,omitempty"`
	Result   *models.UploadResult `json:"result,omitempty"`
}

type UploadClient interface {
	Upload(ctx context.Context, paths []string) (*models.UploadResult, error)
}

package downloadkb

import (
	"context"
	"io"

	"kb-chat/internal/models"
)

type Mode string

const (
	// ModeLink only resolves the id and its links.
	ModeLink Mode = "link"
	// ModeBackend fetches the PDF from the backend's /download_kb.
	ModeBackend Mode = "backend"
	// ModeRender prints the article page with a local headless Chrome.
	ModeRender Mode = "render"
)

type Input struct {
	// Name is a KB id, a bare digit run or any name embedding KB<digits>.
	Name      string `json:"name"`
	Mode      Mode   `json:"mode"`
	OutputDir string `json:"outputDir,omitempty"`
}

type Output struct {
	KBID        string      `json:"kbId"`
	ViewURL     string      `json:"viewUrl"`
	DownloadURL string      `json:"downloadUrl"`
	Path        string      `json:"path,omitempty"`
	Bytes       int64       `json:"bytes,omitempty"`
	Turn        models.Turn `json:"turn"`
}

type Downloader interface {
	DownloadKB(ctx context.Context, kbID string, w io.Writer) (int64, error)
}

type PageRenderer interface {
	Render(ctx context.Context, kbID string) ([]byte, error)
}

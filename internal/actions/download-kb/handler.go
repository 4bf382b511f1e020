package downloadkb

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"kb-chat/internal/actions"
	"kb-chat/internal/common/config"
	"kb-chat/internal/common/control"
	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/common/observability"
	"kb-chat/internal/models"
	"kb-chat/internal/session"
	"kb-chat/pkg/sources"
)

const Action = models.ActionDownloadKB

type Handler struct {
	config     *Config
	logger     logger.Logger
	downloader Downloader
	renderer   PageRenderer
	annotator  *sources.Annotator
	control    *control.Control
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig    *config.Config
	CustomConfig *Config
	Downloader   Downloader
	// Renderer is optional; without it ModeRender is rejected.
	Renderer      PageRenderer
	Control       *control.Control
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", Action, err)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	log = log.With(map[string]interface{}{"action": Action.String()})

	ctl := opts.Control
	if ctl == nil {
		ctl = control.New(Action.String())
	}

	return &Handler{
		config:     cfg,
		logger:     log,
		downloader: opts.Downloader,
		renderer:   opts.Renderer,
		annotator:  sources.NewAnnotator(cfg.ViewBase, cfg.DownloadBase),
		control:    ctl,
		obs:        opts.Observability,
		errHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Control() *control.Control {
	return h.control
}

// FileName is the name a KB PDF is saved under.
func FileName(kbID string) string {
	return "KB_" + kbID + ".pdf"
}

// Execute resolves input.Name to a KB id and, unless the mode is ModeLink,
// saves the article PDF. Unlike the other actions it reports failures as err
// as well as in Turn, since callers outside the chat need the cause.
func (h *Handler) Execute(ctx context.Context, sess *session.Session, input *Input) (*Output, error) {
	if !h.config.Enabled {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%s is disabled by configuration", Action))
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}

	kbID, ok := sources.NormalizeKBID(input.Name)
	if !ok {
		return nil, errors.NewKBIDNotFoundError(input.Name)
	}
	links := h.annotator.AnnotateName(FileName(kbID))
	out := &Output{KBID: kbID, ViewURL: links.ViewURL, DownloadURL: links.DownloadURL}

	mode := input.Mode
	if mode == "" {
		mode = ModeBackend
	}
	if mode == ModeLink {
		out.Turn = models.NewTurn(models.RoleSystem, fmt.Sprintf("KB %s\nview: %s\ndownload: %s", kbID, out.ViewURL, out.DownloadURL))
		return out, nil
	}

	release, err := h.control.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	dir := input.OutputDir
	if dir == "" {
		dir = h.config.OutputDir
	}

	done := actions.Begin(ctx, h.obs, Action)
	path, n, failure := h.fetch(ctx, mode, kbID, dir)
	done(failure)

	if failure != nil {
		stdErr, msg := h.errHandler.HandleActionError(Action.String(), errors.PrefixKB, failure)
		out.Turn = models.NewErrorTurn(msg)
		if sess != nil {
			sess.AddTurn(out.Turn)
		}
		return out, stdErr
	}

	out.Path = path
	out.Bytes = n
	out.Turn = models.NewTurn(models.RoleSystem, fmt.Sprintf("Saved %s (%d bytes)", path, n))
	if sess != nil {
		sess.AddTurn(out.Turn)
	}
	h.logger.Info("KB saved", map[string]interface{}{"kbId": kbID, "path": path, "bytes": n, "mode": string(mode)})
	return out, nil
}

func (h *Handler) fetch(ctx context.Context, mode Mode, kbID, dir string) (string, int64, error) {
	ctx, cancel := actions.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	switch mode {
	case ModeBackend:
		if h.downloader == nil {
			return "", 0, errors.NewInvalidInputError("backend download is not configured")
		}
		return writeAtomically(dir, FileName(kbID), func(w io.Writer) (int64, error) {
			return h.downloader.DownloadKB(ctx, kbID, w)
		})
	case ModeRender:
		if h.renderer == nil {
			return "", 0, errors.NewInvalidInputError("local rendering is not configured")
		}
		pdf, err := h.renderer.Render(ctx, kbID)
		if err != nil {
			return "", 0, err
		}
		return writeAtomically(dir, FileName(kbID), func(w io.Writer) (int64, error) {
			n, err := w.Write(pdf)
			return int64(n), err
		})
	default:
		return "", 0, errors.NewInvalidInputError(fmt.Sprintf("unknown mode %q", mode))
	}
}

// writeAtomically writes into a temp file next to the target and renames it
// into place, so a failed download never leaves a partial PDF behind.
func writeAtomically(dir, name string, write func(io.Writer) (int64, error)) (string, int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, name+".*.part")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := write(tmp)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close temp file: %w", cerr)
	}
	if err != nil {
		return "", 0, err
	}

	target := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", 0, fmt.Errorf("move into place: %w", err)
	}
	return target, n, nil
}

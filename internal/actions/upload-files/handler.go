package uploadfiles

import (
	"context"
	"fmt"

	"kb-chat/internal/actions"
	"kb-chat/internal/common/config"
	"kb-chat/internal/common/control"
	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/common/observability"
	"kb-chat/internal/common/validation"
	"kb-chat/internal/models"
	"kb-chat/internal/session"
)

const Action = models.ActionUploadFiles

type Handler struct {
	config     *Config
	logger     logger.Logger
	client     UploadClient
	control    *control.Control
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
	schema     *validation.Schema
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Client        UploadClient
	Control       *control.Control
	Observability *observability.Observability
	Logger        logger.Logger
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", Action, err)
	}
	if opts.Client == nil {
		return nil, fmt.Errorf("%s: backend client is required", Action)
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
		client:     opts.Client,
		control:    ctl,
		obs:        opts.Observability,
		errHandler: errors.NewErrorHandler(log),
		schema:     inputSchema(cfg.MaxFiles),
	}, nil
}

func (h *Handler) Control() *control.Control {
	return h.control
}

// Execute uploads input.Paths, or the session's selection when none are
// given. On success the uploaded files leave the selection; on failure the
// selection is kept so the user can retry. sess may be nil for one-shot use.
func (h *Handler) Execute(ctx context.Context, sess *session.Session, input *Input) (*Output, error) {
	if !h.config.Enabled {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%s is disabled by configuration", Action))
	}

	var paths []string
	if input != nil {
		paths = input.Paths
	}
	if len(paths) == 0 && sess != nil {
		paths = sess.SelectedFiles()
	}
	if err := validatePaths(h.schema, paths); err != nil {
		return nil, err
	}

	release, err := h.control.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	h.logger.Info("Uploading files", map[string]interface{}{
		"files": len(paths),
	})

	done := actions.Begin(ctx, h.obs, Action)
	out, failure := h.upload(ctx, paths)
	done(failure)

	if sess != nil {
		if failure == nil {
			for _, p := range paths {
				sess.RemoveFile(p)
			}
		}
		sess.AddTurn(out.Turn)
	}
	return out, nil
}

func (h *Handler) upload(ctx context.Context, paths []string) (*Output, error) {
	ctx, cancel := actions.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	res, err := h.client.Upload(ctx, paths)
	if err != nil {
		_, msg := h.errHandler.HandleActionError(Action.String(), errors.PrefixUpload, err)
		return &Output{Turn: models.NewErrorTurn(msg)}, err
	}

	h.logger.Info("Upload accepted", map[string]interface{}{
		"files":  len(paths),
		"status": res.StatusCode,
	})
	return &Output{
		Turn:     models.NewTurn(models.RoleSystem, res.Pretty()),
		Uploaded: paths,
		Result:   res,
	}, nil
}

package reindexkb

import (
	"context"
	"fmt"

	"kb-chat/internal/actions"
	"kb-chat/internal/common/config"
	"kb-chat/internal/common/control"
	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/common/observability"
	"kb-chat/internal/models"
	"kb-chat/internal/session"
)

const Action = models.ActionReindexKB

type Handler struct {
	config     *Config
	logger     logger.Logger
	client     ReindexClient
	control    *control.Control
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Client        ReindexClient
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
	}, nil
}

func (h *Handler) Control() *control.Control {
	return h.control
}

// Execute asks the backend to rebuild its index. Only {"status":"ok"} counts
// as success; any other reply is reported with its body. sess may be nil.
func (h *Handler) Execute(ctx context.Context, sess *session.Session) (*Output, error) {
	if !h.config.Enabled {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%s is disabled by configuration", Action))
	}

	release, err := h.control.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	h.logger.Info("Requesting reindex", nil)

	done := actions.Begin(ctx, h.obs, Action)
	out, failure := h.reindex(ctx)
	done(failure)

	if sess != nil {
		sess.AddTurn(out.Turn)
	}
	return out, nil
}

func (h *Handler) reindex(ctx context.Context) (*Output, error) {
	ctx, cancel := actions.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	resp, err := h.client.Reindex(ctx)
	if err == nil && !resp.OK() {
		err = errors.NewReindexFailedError(string(resp.Raw))
	}
	if err != nil {
		_, msg := h.errHandler.HandleActionError(Action.String(), errors.PrefixReindex, err)
		return &Output{Turn: models.NewErrorTurn(msg)}, err
	}

	h.logger.Info("Reindex complete", nil)
	return &Output{Turn: models.NewTurn(models.RoleSystem, CompleteMessage), OK: true}, nil
}

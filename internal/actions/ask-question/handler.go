package askquestion

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"kb-chat/internal/actions"
	"kb-chat/internal/common/config"
	"kb-chat/internal/common/control"
	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/common/metrics"
	"kb-chat/internal/common/observability"
	"kb-chat/internal/models"
	"kb-chat/internal/session"
	"kb-chat/pkg/sources"
)

const Action = models.ActionAskQuestion

type Handler struct {
	config     *Config
	logger     logger.Logger
	client     QueryClient
	annotator  *sources.Annotator
	control    *control.Control
	obs        *observability.Observability
	errHandler *errors.ErrorHandler
}

type HandlerOptions struct {
	AppConfig     *config.Config
	CustomConfig  *Config
	Client        QueryClient
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
		annotator:  sources.NewAnnotator(cfg.ViewBase, cfg.DownloadBase),
		control:    ctl,
		obs:        opts.Observability,
		errHandler: errors.NewErrorHandler(log),
	}, nil
}

// Control exposes the busy state so a UI can disable its input.
func (h *Handler) Control() *control.Control {
	return h.control
}

// Execute sends one question with the session's history and records both
// the question and the reply in the transcript. Failures of the request
// itself come back as an error turn, not as err; err is reserved for input
// that was never sent (validation, busy control, disabled action).
func (h *Handler) Execute(ctx context.Context, sess *session.Session, input *Input) (*Output, error) {
	if !h.config.Enabled {
		return nil, errors.NewInvalidInputError(fmt.Sprintf("%s is disabled by configuration", Action))
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	question := strings.TrimSpace(input.Question)

	release, err := h.control.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	h.logger.Info("Sending question", map[string]interface{}{
		"sessionId":    sess.ID(),
		"historyPairs": len(sess.History()),
	})

	userTurn := models.NewTurn(models.RoleUser, question)
	sess.AddTurn(userTurn)

	done := actions.Begin(ctx, h.obs, Action)
	reply, answer, failure := h.ask(ctx, question, sess.History())
	done(failure)

	if failure == nil {
		sess.Append(question, answer)
	}
	sess.AddTurn(reply)

	h.logger.Info("Question finished", map[string]interface{}{
		"sessionId": sess.ID(),
		"answered":  failure == nil,
		"sources":   len(reply.Sources),
	})

	return &Output{UserTurn: userTurn, Reply: reply, Answered: failure == nil}, nil
}

func (h *Handler) ask(ctx context.Context, question string, history []models.HistoryPair) (models.Turn, string, error) {
	ctx, cancel := actions.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	resp, err := h.client.Query(ctx, models.QueryRequest{Question: question, ChatHistory: history})
	if err != nil {
		_, msg := h.errHandler.HandleActionError(Action.String(), errors.PrefixQuery, err)
		return models.NewErrorTurn(msg), "", err
	}

	if resp.Error != "" {
		backendErr := errors.NewBackendError(resp.Error, resp.Detail)
		_, msg := h.errHandler.HandleActionError(Action.String(), errors.PrefixQuery, backendErr)
		return models.NewErrorTurn(msg), "", backendErr
	}

	answer := resp.AnswerText()
	annotated := h.annotator.Annotate(resp.Sources)
	countSources(annotated)

	turn := models.NewTurn(models.RoleAssistant, answer)
	turn.Sources = annotated
	turn.NoSources = len(annotated) == 0
	turn.FileURL = resp.FileURL
	return turn, answer, nil
}

func countSources(list []sources.Annotated) {
	for _, s := range list {
		metrics.SourcesAnnotated.WithLabelValues(strconv.FormatBool(s.HasKB())).Inc()
	}
}

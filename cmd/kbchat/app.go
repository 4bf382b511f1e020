package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	askquestion "kb-chat/internal/actions/ask-question"
	downloadkb "kb-chat/internal/actions/download-kb"
	reindexkb "kb-chat/internal/actions/reindex-kb"
	uploadfiles "kb-chat/internal/actions/upload-files"
	"kb-chat/internal/backend"
	"kb-chat/internal/chat"
	"kb-chat/internal/common/config"
	"kb-chat/internal/common/database"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/common/observability"
	"kb-chat/internal/kbpdf"
	"kb-chat/internal/render"
	"kb-chat/internal/session"
)

// app holds everything a command needs, built once from config.
type app struct {
	cfg      *config.Config
	zapLog   *zap.Logger
	log      logger.Logger
	obs      *observability.Observability
	client   *backend.Client
	redis    *database.RedisClient
	store    session.Store
	renderer *render.Renderer
	svc      *chat.Service
}

type appOptions struct {
	// interactive sends logs to a file so they do not draw over the TUI.
	interactive bool
}

func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	output := cfg.Logging.Output
	if opts.interactive && (output == "stdout" || output == "stderr") {
		output = filepath.Join(os.TempDir(), "kbchat.log")
	}
	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, output)
	log := logger.NewZapAdapter(zapLog)

	a := &app{cfg: cfg, zapLog: zapLog, log: log}
	a.obs = observability.New(cfg.App.Name, log)

	store, err := a.openStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.store = store

	sess, err := session.LoadOrNew(ctx, store, rootFlags.sessionID)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load session: %w", err)
	}

	a.client = backend.NewClient(backend.ConfigFrom(cfg), log)

	a.renderer, err = render.New(render.Options{
		Markdown:   cfg.UI.Markdown,
		WordWrap:   cfg.UI.WordWrap,
		Theme:      cfg.UI.Theme,
		ResolveURL: a.client.ResolveURL,
	})
	if err != nil {
		a.Close()
		return nil, err
	}

	ask, err := askquestion.NewHandler(askquestion.HandlerOptions{
		AppConfig: cfg, Client: a.client, Observability: a.obs, Logger: log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	upload, err := uploadfiles.NewHandler(uploadfiles.HandlerOptions{
		AppConfig: cfg, Client: a.client, Observability: a.obs, Logger: log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	reindex, err := reindexkb.NewHandler(reindexkb.HandlerOptions{
		AppConfig: cfg, Client: a.client, Observability: a.obs, Logger: log,
	})
	if err != nil {
		a.Close()
		return nil, err
	}
	download, err := newDownloadHandler(cfg, a.client, a.obs, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.svc = chat.NewService(chat.Options{
		Session:  sess,
		Store:    store,
		Ask:      ask,
		Upload:   upload,
		Reindex:  reindex,
		Download: download,
		Logger:   log,
	})

	log.Info("kbchat ready", map[string]interface{}{
		"backend":   cfg.Backend.BaseURL,
		"store":     cfg.Session.Store,
		"sessionId": sess.ID(),
	})
	return a, nil
}

func newDownloadHandler(cfg *config.Config, client *backend.Client, obs *observability.Observability, log logger.Logger) (*downloadkb.Handler, error) {
	opts := downloadkb.HandlerOptions{
		AppConfig:     cfg,
		Renderer:      kbpdf.NewRenderer(kbpdf.ConfigFrom(cfg), log),
		Observability: obs,
		Logger:        log,
	}
	if client != nil {
		opts.Downloader = client
	}
	return downloadkb.NewHandler(opts)
}

func (a *app) openStore(ctx context.Context) (session.Store, error) {
	if !a.cfg.Session.UsesRedis() {
		return session.NewMemoryStore(), nil
	}

	a.redis = database.NewRedis(a.cfg.Session.Redis)
	if err := a.redis.Ping(ctx); err != nil {
		return nil, fmt.Errorf("session store %s: %w", a.cfg.Session.Redis, err)
	}
	a.log.Info("Redis session store connected", map[string]interface{}{
		"redis": a.cfg.Session.Redis.String(),
	})
	return session.NewRedisStore(a.redis.Client, a.cfg.Session.TTLDuration()), nil
}

func (a *app) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	a.obs.Shutdown()
	_ = a.zapLog.Sync()
}

package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	askquestion "kb-chat/internal/actions/ask-question"
	downloadkb "kb-chat/internal/actions/download-kb"
	reindexkb "kb-chat/internal/actions/reindex-kb"
	uploadfiles "kb-chat/internal/actions/upload-files"
	"kb-chat/internal/backend"
	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/session"
)

func newService(t *testing.T, handler http.HandlerFunc, store session.Store) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.NewTestLogger(t)
	client := backend.NewClient(backend.Config{BaseURL: srv.URL}, log)

	ask, err := askquestion.NewHandler(askquestion.HandlerOptions{Client: client, Logger: log})
	require.NoError(t, err)
	upload, err := uploadfiles.NewHandler(uploadfiles.HandlerOptions{Client: client, Logger: log})
	require.NoError(t, err)
	reindex, err := reindexkb.NewHandler(reindexkb.HandlerOptions{Client: client, Logger: log})
	require.NoError(t, err)
	download, err := downloadkb.NewHandler(downloadkb.HandlerOptions{
		CustomConfig: &downloadkb.Config{Enabled: true, OutputDir: t.TempDir()},
		Downloader:   client,
		Logger:       log,
	})
	require.NoError(t, err)

	return NewService(Options{
		Store:    store,
		Ask:      ask,
		Upload:   upload,
		Reindex:  reindex,
		Download: download,
		Logger:   log,
	})
}

func TestService_AskPersistsSession(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := session.NewRedisStore(rdb, 0)

	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"answer":  "42",
			"sources": []map[string]string{{"source": "KB_0001234.pdf"}},
		})
	}, store)

	turns, err := svc.Ask(context.Background(), "meaning?")
	require.NoError(t, err)
	require.Len(t, turns, 2)
	assert.Equal(t, "meaning?", turns[0].Text)
	assert.Equal(t, "42", turns[1].Text)
	assert.Equal(t, "000001234", turns[1].Sources[0].KBID)

	loaded, err := store.Load(context.Background(), svc.Session().ID())
	require.NoError(t, err)
	assert.Len(t, loaded.History(), 1)
	assert.Len(t, loaded.Transcript(), 2)
}

func TestService_AttachDetachReset(t *testing.T) {
	store := session.NewMemoryStore()
	svc := newService(t, http.NotFound, store)
	ctx := context.Background()

	assert.Equal(t, []string{"a.pdf", "b.pdf"}, svc.Attach(ctx, "a.pdf", "b.pdf", "a.pdf"))
	assert.True(t, svc.Detach(ctx, "a.pdf"))
	assert.False(t, svc.Detach(ctx, "missing.pdf"))

	loaded, err := store.Load(ctx, svc.Session().ID())
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf"}, loaded.SelectedFiles())

	require.NoError(t, svc.Reset(ctx))
	assert.Empty(t, svc.Session().SelectedFiles())
	_, err = store.Load(ctx, svc.Session().ID())
	assert.True(t, errors.HasCode(err, errors.ErrCodeSessionNotFound))
}

func TestService_ReindexAndValidation(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}, nil)
	ctx := context.Background()

	turn, err := svc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, reindexkb.CompleteMessage, turn.Text)

	_, err = svc.Upload(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))

	_, err = svc.Ask(ctx, "   ")
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))
}

func TestService_DownloadKB(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF"))
	}, nil)

	out, err := svc.DownloadKB(context.Background(), &downloadkb.Input{Name: "123456"})
	require.NoError(t, err)
	assert.Equal(t, "000123456", out.KBID)
	assert.FileExists(t, out.Path)
}

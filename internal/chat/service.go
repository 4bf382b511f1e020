// Package chat ties the actions to a single conversation session and keeps
// that session persisted after every change.
package chat

import (
	"context"

	askquestion "kb-chat/internal/actions/ask-question"
	downloadkb "kb-chat/internal/actions/download-kb"
	reindexkb "kb-chat/internal/actions/reindex-kb"
	uploadfiles "kb-chat/internal/actions/upload-files"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/models"
	"kb-chat/internal/session"
)

type Asker interface {
	Execute(ctx context.Context, sess *session.Session, input *askquestion.Input) (*askquestion.Output, error)
}

type Uploader interface {
	Execute(ctx context.Context, sess *session.Session, input *uploadfiles.Input) (*uploadfiles.Output, error)
}

type Reindexer interface {
	Execute(ctx context.Context, sess *session.Session) (*reindexkb.Output, error)
}

type KBDownloader interface {
	Execute(ctx context.Context, sess *session.Session, input *downloadkb.Input) (*downloadkb.Output, error)
}

type Options struct {
	Session  *session.Session
	Store    session.Store
	Ask      Asker
	Upload   Uploader
	Reindex  Reindexer
	Download KBDownloader
	Logger   logger.Logger
}

type Service struct {
	sess     *session.Session
	store    session.Store
	ask      Asker
	upload   Uploader
	reindex  Reindexer
	download KBDownloader
	logger   logger.Logger
}

func NewService(opts Options) *Service {
	sess := opts.Session
	if sess == nil {
		sess = session.New()
	}
	store := opts.Store
	if store == nil {
		store = session.NewMemoryStore()
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Service{
		sess:     sess,
		store:    store,
		ask:      opts.Ask,
		upload:   opts.Upload,
		reindex:  opts.Reindex,
		download: opts.Download,
		logger:   log.With(map[string]interface{}{"sessionId": sess.ID()}),
	}
}

func (s *Service) Session() *session.Session {
	return s.sess
}

// Ask returns the user turn followed by the reply.
func (s *Service) Ask(ctx context.Context, question string) ([]models.Turn, error) {
	out, err := s.ask.Execute(ctx, s.sess, &askquestion.Input{Question: question})
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return []models.Turn{out.UserTurn, out.Reply}, nil
}

// Upload sends paths, or the current selection when paths is empty.
func (s *Service) Upload(ctx context.Context, paths ...string) (models.Turn, error) {
	out, err := s.upload.Execute(ctx, s.sess, &uploadfiles.Input{Paths: paths})
	if err != nil {
		return models.Turn{}, err
	}
	s.persist(ctx)
	return out.Turn, nil
}

func (s *Service) Reindex(ctx context.Context) (models.Turn, error) {
	out, err := s.reindex.Execute(ctx, s.sess)
	if err != nil {
		return models.Turn{}, err
	}
	s.persist(ctx)
	return out.Turn, nil
}

func (s *Service) DownloadKB(ctx context.Context, input *downloadkb.Input) (*downloadkb.Output, error) {
	out, err := s.download.Execute(ctx, s.sess, input)
	if out != nil {
		s.persist(ctx)
	}
	return out, err
}

func (s *Service) Attach(ctx context.Context, paths ...string) []string {
	s.sess.SelectFiles(paths...)
	s.persist(ctx)
	return s.sess.SelectedFiles()
}

func (s *Service) Detach(ctx context.Context, path string) bool {
	removed := s.sess.RemoveFile(path)
	if removed {
		s.persist(ctx)
	}
	return removed
}

// Reset starts the conversation over and removes the stored copy.
func (s *Service) Reset(ctx context.Context) error {
	s.sess.Reset()
	return s.store.Delete(ctx, s.sess.ID())
}

// persist saves the session. A failed save is logged, not returned.
func (s *Service) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.sess); err != nil {
		s.logger.Warn("Failed to persist session", map[string]interface{}{"error": err.Error()})
	}
}

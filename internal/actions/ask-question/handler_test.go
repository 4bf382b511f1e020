package askquestion

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kb-chat/internal/common/config"
	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/models"
	"kb-chat/internal/session"
	"kb-chat/pkg/sources"
)

// ==========================
// Mock Client
// ==========================

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueryResponse), args.Error(1)
}

func newHandler(t *testing.T, client QueryClient) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Client:       client,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func strPtr(s string) *string { return &s }

// ==========================
// Tests
// ==========================

func TestExecute_Answer(t *testing.T) {
	client := new(MockClient)
	client.On("Query", mock.Anything, models.QueryRequest{
		Question:    "How do I export?",
		ChatHistory: []models.HistoryPair{},
	}).Return(&models.QueryResponse{
		Answer: strPtr("Use File > Export."),
		Sources: []sources.Record{
			{"source": "KB_000123456.pdf"},
			{"source": "KB_000123456.pdf"},
			{"title": "manual.pdf"},
		},
		FileURL: "/mnt/data/export.ipynb",
	}, nil)

	h := newHandler(t, client)
	sess := session.New()

	out, err := h.Execute(context.Background(), sess, &Input{Question: "  How do I export?  "})
	require.NoError(t, err)
	client.AssertExpectations(t)

	assert.True(t, out.Answered)
	assert.Equal(t, models.RoleUser, out.UserTurn.Role)
	assert.Equal(t, "How do I export?", out.UserTurn.Text)
	assert.Equal(t, "Use File > Export.", out.Reply.Text)
	assert.False(t, out.Reply.IsError)
	assert.False(t, out.Reply.NoSources)
	assert.Equal(t, "/mnt/data/export.ipynb", out.Reply.FileURL)
	require.Len(t, out.Reply.Sources, 2)
	assert.Equal(t, "000123456", out.Reply.Sources[0].KBID)
	assert.False(t, out.Reply.Sources[1].HasKB())

	assert.Equal(t, []models.HistoryPair{{Question: "How do I export?", Answer: "Use File > Export."}}, sess.History())
	assert.Len(t, sess.Transcript(), 2)
	assert.False(t, h.Control().Busy())
}

func TestExecute_SendsAccumulatedHistory(t *testing.T) {
	client := new(MockClient)
	client.On("Query", mock.Anything, mock.MatchedBy(func(req models.QueryRequest) bool {
		return req.Question == "second" && len(req.ChatHistory) == 1 && req.ChatHistory[0].Question == "first"
	})).Return(&models.QueryResponse{Answer: strPtr("two")}, nil)

	h := newHandler(t, client)
	sess := session.New()
	sess.Append("first", "one")

	_, err := h.Execute(context.Background(), sess, &Input{Question: "second"})
	require.NoError(t, err)
	client.AssertExpectations(t)
	assert.Len(t, sess.History(), 2)
}

func TestExecute_DefaultAnswerAndNoSources(t *testing.T) {
	client := new(MockClient)
	client.On("Query", mock.Anything, mock.Anything).Return(&models.QueryResponse{}, nil)

	h := newHandler(t, client)
	out, err := h.Execute(context.Background(), session.New(), &Input{Question: "q"})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultAnswer, out.Reply.Text)
	assert.True(t, out.Reply.NoSources)
	assert.Empty(t, out.Reply.Sources)
}

func TestExecute_Failures(t *testing.T) {
	tests := []struct {
		name     string
		resp     *models.QueryResponse
		err      error
		wantText string
	}{
		{
			name:     "transport failure",
			err:      errors.NewBackendUnreachableError("/api/query", stderrors.New("connection refused")),
			wantText: "Error calling backend: connection refused",
		},
		{
			name:     "backend error with detail",
			resp:     &models.QueryResponse{Error: "internal error", Detail: "index missing"},
			wantText: "Error: index missing",
		},
		{
			name:     "backend error without detail",
			resp:     &models.QueryResponse{Error: "Question is required"},
			wantText: "Error: Question is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockClient)
			if tt.resp != nil {
				client.On("Query", mock.Anything, mock.Anything).Return(tt.resp, nil)
			} else {
				client.On("Query", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			h := newHandler(t, client)
			sess := session.New()

			out, err := h.Execute(context.Background(), sess, &Input{Question: "q"})
			require.NoError(t, err)

			assert.False(t, out.Answered)
			assert.True(t, out.Reply.IsError)
			assert.Equal(t, tt.wantText, out.Reply.Text)
			assert.Empty(t, sess.History(), "failed turns are not added to history")
			assert.Len(t, sess.Transcript(), 2)
			assert.False(t, h.Control().Busy(), "control released after failure")
		})
	}
}

func TestExecute_EmptyQuestionNotSent(t *testing.T) {
	client := new(MockClient)
	h := newHandler(t, client)
	sess := session.New()

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := h.Execute(context.Background(), sess, &Input{Question: q})
		assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput), "question %q", q)
	}
	_, err := h.Execute(context.Background(), sess, nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInput))

	client.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	assert.Empty(t, sess.Transcript())
}

func TestExecute_BusyControl(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})

	client := new(MockClient)
	client.On("Query", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-unblock
		}).
		Return(&models.QueryResponse{Answer: strPtr("done")}, nil).Once()

	h := newHandler(t, client)
	sess := session.New()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := h.Execute(context.Background(), sess, &Input{Question: "first"})
		assert.NoError(t, err)
	}()

	<-started
	assert.True(t, h.Control().Busy())
	_, err := h.Execute(context.Background(), sess, &Input{Question: "second"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeControlBusy))

	close(unblock)
	wg.Wait()
	assert.False(t, h.Control().Busy())
	client.AssertNumberOfCalls(t, "Query", 1)
}

func TestExecute_Disabled(t *testing.T) {
	client := new(MockClient)
	h, err := NewHandler(HandlerOptions{
		CustomConfig: &Config{Enabled: false},
		Client:       client,
	})
	require.NoError(t, err)

	_, err = h.Execute(context.Background(), session.New(), &Input{Question: "q"})
	assert.Error(t, err)
	client.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestNewHandler_ConfigFromApp(t *testing.T) {
	app := &config.Config{
		Backend: config.BackendConfig{
			KBViewBaseURL:  "https://kb.example/view?n=",
			KBDownloadPath: "/download_kb?kb=",
		},
		Actions: map[string]config.ActionConfig{
			"ask-question": {Enabled: true, Timeout: 1500},
		},
	}
	h, err := NewHandler(HandlerOptions{AppConfig: app, Client: new(MockClient)})
	require.NoError(t, err)
	assert.Equal(t, "https://kb.example/view?n=", h.annotator.ViewBase)
	assert.Equal(t, 1500*time.Millisecond, h.config.Timeout)

	_, err = NewHandler(HandlerOptions{CustomConfig: &Config{Enabled: true, Timeout: -1}, Client: new(MockClient)})
	assert.Error(t, err)

	_, err = NewHandler(HandlerOptions{})
	assert.Error(t, err)
}

package reindexkb

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"kb-chat/internal/common/errors"
	"kb-chat/internal/common/logger"
	"kb-chat/internal/models"
	"kb-chat/internal/session"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) Reindex(ctx context.Context) (*models.ReindexResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReindexResponse), args.Error(1)
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name     string
		resp     *models.ReindexResponse
		err      error
		wantOK   bool
		wantText string
	}{
		{
			name:     "ok",
			resp:     &models.ReindexResponse{Status: "ok", Raw: json.RawMessage(`{"status":"ok"}`)},
			wantOK:   true,
			wantText: CompleteMessage,
		},
		{
			name:     "unexpected status",
			resp:     &models.ReindexResponse{Status: "busy", Raw: json.RawMessage(`{"status":"busy"}`)},
			wantText: `Reindex failed: {"status":"busy"}`,
		},
		{
			name:     "error body",
			resp:     &models.ReindexResponse{Raw: json.RawMessage(`{"error":"disk full"}`)},
			wantText: `Reindex failed: {"error":"disk full"}`,
		},
		{
			name:     "transport failure",
			err:      errors.NewBackendUnreachableError("/api/reindex", stderrors.New("EOF")),
			wantText: "Reindex failed: EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockClient)
			if tt.resp != nil {
				client.On("Reindex", mock.Anything).Return(tt.resp, nil)
			} else {
				client.On("Reindex", mock.Anything).Return(nil, tt.err)
			}

			h, err := NewHandler(HandlerOptions{Client: client, Logger: logger.NewTestLogger(t)})
			require.NoError(t, err)
			sess := session.New()

			out, err := h.Execute(context.Background(), sess)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOK, out.OK)
			assert.Equal(t, !tt.wantOK, out.Turn.IsError)
			assert.Equal(t, tt.wantText, out.Turn.Text)
			assert.Len(t, sess.Transcript(), 1)
			assert.False(t, h.Control().Busy())
		})
	}
}

func TestExecute_Busy(t *testing.T) {
	client := new(MockClient)
	h, err := NewHandler(HandlerOptions{Client: client})
	require.NoError(t, err)

	release, err := h.Control().Acquire()
	require.NoError(t, err)
	defer release()

	_, err = h.Execute(context.Background(), nil)
	assert.True(t, errors.HasCode(err, errors.ErrCodeControlBusy))
	client.AssertNotCalled(t, "Reindex", mock.Anything)
}

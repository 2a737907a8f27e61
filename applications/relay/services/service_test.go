package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyflux/storyflux/applications/relay/domain"
)

type fakeWorkflow struct {
	status int
	err    error
	calls  []domain.Submission
}

func (f *fakeWorkflow) Trigger(_ context.Context, submission domain.Submission) (int, error) {
	f.calls = append(f.calls, submission)
	return f.status, f.err
}

func testSubmission() domain.Submission {
	return domain.Submission{
		FirstName: json.RawMessage(`"Jane"`),
		FileName:  json.RawMessage(`"story.pdf"`),
	}
}

func TestForward(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		err      error
		wantErr  bool
		rejected bool
	}{
		{name: "ok", status: http.StatusOK},
		{name: "accepted", status: http.StatusAccepted},
		{name: "server error", status: http.StatusInternalServerError, wantErr: true, rejected: true},
		{name: "redirect is not success", status: http.StatusFound, wantErr: true, rejected: true},
		{name: "bad request", status: http.StatusBadRequest, wantErr: true, rejected: true},
		{name: "transport failure", err: errors.New("dial tcp: connection refused"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := &fakeWorkflow{status: tt.status, err: tt.err}
			svc := NewService(wf, log.NewNopLogger())

			err := svc.Forward(context.Background(), testSubmission())

			require.Len(t, wf.calls, 1, "workflow must be triggered exactly once")
			assert.Equal(t, testSubmission(), wf.calls[0])
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tt.rejected, errors.Is(err, ErrUpstreamRejected))
		})
	}
}

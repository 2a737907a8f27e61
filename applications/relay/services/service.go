package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/storyflux/storyflux/applications/relay"
	"github.com/storyflux/storyflux/applications/relay/domain"
	"github.com/storyflux/storyflux/applications/relay/interfaces"
)

// ErrUpstreamRejected is returned when the workflow answered with a non-2xx status.
var ErrUpstreamRejected = errors.New("workflow rejected submission")

type service struct {
	workflow interfaces.Workflow
	logger   log.Logger
}

func NewService(workflow interfaces.Workflow, logger log.Logger) relay.Relay {
	return &service{
		workflow: workflow,
		logger:   logger,
	}
}

// Forward hands the submission to the workflow exactly once.
func (s *service) Forward(ctx context.Context, submission domain.Submission) error {
	status, err := s.workflow.Trigger(ctx, submission)
	if err != nil {
		return fmt.Errorf("can't forward submission: %w", err)
	}

	if !isSuccess(status) {
		level.Warn(s.logger).Log("msg", "workflow returned non-success status",
			"status", status,
			"file_name", submission.Name(),
		)
		return fmt.Errorf("%w: status %d", ErrUpstreamRejected, status)
	}

	level.Info(s.logger).Log("msg", "submission forwarded",
		"status", status,
		"file_name", submission.Name(),
	)

	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

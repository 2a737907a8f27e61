package relay

import (
	"context"

	"github.com/storyflux/storyflux/applications/relay/domain"
)

type Relay interface {
	Forward(ctx context.Context, submission domain.Submission) error
}

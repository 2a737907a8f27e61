package interfaces

import (
	"context"

	"github.com/storyflux/storyflux/applications/relay/domain"
)

// Workflow is the external automation endpoint submissions are relayed to.
// Trigger returns the upstream HTTP status, or an error when the request did
// not complete.
type Workflow interface {
	Trigger(ctx context.Context, submission domain.Submission) (int, error)
}

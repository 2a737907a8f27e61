package workflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/storyflux/storyflux/applications/relay/domain"
	"github.com/storyflux/storyflux/applications/relay/interfaces"
)

type client struct {
	trigger *httptransport.Client
	url     string
	logger  log.Logger
}

// NewClient returns a Workflow that POSTs submissions as JSON to triggerURL.
// The platform default HTTP client is used, so no timeout is applied beyond
// what the transport itself enforces.
func NewClient(triggerURL string, logger log.Logger) (interfaces.Workflow, error) {
	u, err := url.Parse(triggerURL)
	if err != nil {
		return nil, fmt.Errorf("can't parse workflow URL: %w", err)
	}

	return &client{
		trigger: httptransport.NewClient(
			http.MethodPost,
			u,
			httptransport.EncodeJSONRequest,
			decodeTriggerResponse,
		),
		url:    u.Host,
		logger: logger,
	}, nil
}

func (c *client) Trigger(ctx context.Context, submission domain.Submission) (int, error) {
	resp, err := c.trigger.Endpoint()(ctx, submission)
	if err != nil {
		level.Error(c.logger).Log("msg", "workflow trigger failed",
			"host", c.url,
			"err", err,
		)
		return 0, fmt.Errorf("can't trigger workflow: %w", err)
	}

	status := resp.(int)
	level.Debug(c.logger).Log("msg", "workflow trigger responded",
		"host", c.url,
		"status", status,
	)

	return status, nil
}

// decodeTriggerResponse keeps only the status code; the body is drained so
// the connection can be reused.
func decodeTriggerResponse(_ context.Context, r *http.Response) (interface{}, error) {
	_, _ = io.Copy(io.Discard, r.Body)
	return r.StatusCode, nil
}

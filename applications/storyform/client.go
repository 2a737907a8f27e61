package storyform

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-kit/kit/endpoint"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// Payload is the JSON body posted to the relay.
type Payload struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	FileName    string `json:"fileName"`
	FileContent string `json:"fileContent"`
}

type RelayResponse struct {
	StatusCode int
	Body       string
}

func (r RelayResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RelayClient posts a payload to the relay. An error means the request did
// not complete; any HTTP status, success or not, is a RelayResponse.
type RelayClient interface {
	Send(ctx context.Context, payload Payload) (RelayResponse, error)
}

type httpRelayClient struct {
	send endpoint.Endpoint
}

func NewHTTPRelayClient(relayURL string) (RelayClient, error) {
	u, err := url.Parse(relayURL)
	if err != nil {
		return nil, fmt.Errorf("can't parse relay URL: %w", err)
	}

	return &httpRelayClient{
		send: httptransport.NewClient(
			http.MethodPost,
			u,
			httptransport.EncodeJSONRequest,
			decodeRelayResponse,
			httptransport.ClientBefore(setRequestID),
		).Endpoint(),
	}, nil
}

func (c *httpRelayClient) Send(ctx context.Context, payload Payload) (RelayResponse, error) {
	resp, err := c.send(ctx, payload)
	if err != nil {
		return RelayResponse{}, err
	}
	return resp.(RelayResponse), nil
}

func setRequestID(ctx context.Context, r *http.Request) context.Context {
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return ctx
}

// decodeRelayResponse never fails: an unreadable body is treated as empty.
func decodeRelayResponse(_ context.Context, r *http.Response) (interface{}, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		body = nil
	}
	return RelayResponse{StatusCode: r.StatusCode, Body: string(body)}, nil
}

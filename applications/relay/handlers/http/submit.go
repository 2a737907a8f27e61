package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"

	"github.com/storyflux/storyflux/applications/relay"
	"github.com/storyflux/storyflux/applications/relay/domain"
)

// The relay answers OK on both outcomes; callers tell them apart by status code.
const relayBody = "OK"

func NewRouter(svc relay.Relay, logger log.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(CorrelationID, RequestLogger(logger))
	r.Handle("/submit", SubmitHandler(svc, logger)).Methods(http.MethodPost)
	r.HandleFunc("/healthz", HealthHandler).Methods(http.MethodGet)
	return r
}

// submitResponse must not implement endpoint.Failer, otherwise go-kit hands a
// failed forward to encodeError instead of encodeSubmitResponse.
type submitResponse struct {
	Err error
}

type badRequestError struct {
	err error
}

func (e badRequestError) Error() string { return e.err.Error() }
func (e badRequestError) Unwrap() error { return e.err }

func SubmitHandler(svc relay.Relay, logger log.Logger) http.Handler {
	return httptransport.NewServer(
		makeSubmitEndpoint(svc, logger),
		decodeSubmitRequest,
		encodeSubmitResponse,
		httptransport.ServerErrorEncoder(makeErrorEncoder(logger)),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(level.Error(logger))),
	)
}

func makeSubmitEndpoint(svc relay.Relay, logger log.Logger) endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		submission := request.(domain.Submission)
		err := svc.Forward(ctx, submission)
		if err != nil {
			level.Error(logger).Log("msg", "Forward error",
				"correlation_id", CorrelationIDFromContext(ctx),
				"err", err,
			)
		}
		return submitResponse{Err: err}, nil
	}
}

var errNotObject = errors.New("submission must be a JSON object")

// decodeSubmitRequest accepts only a JSON object; its keys are matched to the
// submission fields by exact name.
func decodeSubmitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		return nil, badRequestError{err: fmt.Errorf("can't decode submission: %w", err)}
	}
	if fields == nil {
		return nil, badRequestError{err: errNotObject}
	}
	return domain.NewSubmission(fields), nil
}

func encodeSubmitResponse(_ context.Context, w http.ResponseWriter, response interface{}) error {
	status := http.StatusOK
	if resp := response.(submitResponse); resp.Err != nil {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write([]byte(relayBody))
	return err
}

func makeErrorEncoder(logger log.Logger) httptransport.ErrorEncoder {
	return func(_ context.Context, err error, w http.ResponseWriter) {
		status := http.StatusInternalServerError
		var bad badRequestError
		if errors.As(err, &bad) {
			status = http.StatusBadRequest
		}
		writeErr(logger, w, err, status)
	}
}

func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(relayBody))
}

func writeErr(logger log.Logger, w http.ResponseWriter, err error, status int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, werr := w.Write([]byte(err.Error())); werr != nil {
		level.Error(logger).Log("msg", "can't write response", "err", werr)
	}
}

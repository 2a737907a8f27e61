package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyflux/storyflux/applications/relay/adapters/workflow"
	"github.com/storyflux/storyflux/applications/relay/services"
)

type upstreamCall struct {
	contentType string
	body        map[string]json.RawMessage
}

// newRelay wires the router to a real workflow client pointed at an
// httptest upstream answering with status.
func newRelay(t *testing.T, status int) (http.Handler, *[]upstreamCall) {
	t.Helper()

	calls := &[]upstreamCall{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		*calls = append(*calls, upstreamCall{contentType: r.Header.Get("Content-Type"), body: body})
		w.WriteHeader(status)
		_, _ = w.Write([]byte("upstream says no"))
	}))
	t.Cleanup(upstream.Close)

	return routerFor(t, upstream.URL), calls
}

func routerFor(t *testing.T, upstreamURL string) http.Handler {
	t.Helper()

	logger := log.NewNopLogger()
	wf, err := workflow.NewClient(upstreamURL, logger)
	require.NoError(t, err)

	return NewRouter(services.NewService(wf, logger), logger)
}

func postSubmit(h http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const fullSubmission = `{
	"firstName": "Jane",
	"lastName": "Doe",
	"email": "jane.doe@email.com",
	"mobile": "+61 400 000 000",
	"fileName": "story.pdf",
	"fileContent": "JVBERi0xLjQK",
	"captcha": "ignored"
}`

func TestSubmitForwardsSixFields(t *testing.T) {
	h, calls := newRelay(t, http.StatusOK)

	rec := postSubmit(h, fullSubmission)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	require.Len(t, *calls, 1)

	call := (*calls)[0]
	assert.Contains(t, call.contentType, "application/json")
	assert.Equal(t, map[string]json.RawMessage{
		"firstName":   json.RawMessage(`"Jane"`),
		"lastName":    json.RawMessage(`"Doe"`),
		"email":       json.RawMessage(`"jane.doe@email.com"`),
		"mobile":      json.RawMessage(`"+61 400 000 000"`),
		"fileName":    json.RawMessage(`"story.pdf"`),
		"fileContent": json.RawMessage(`"JVBERi0xLjQK"`),
	}, call.body)
}

func TestSubmitMissingFieldStaysAbsent(t *testing.T) {
	h, calls := newRelay(t, http.StatusOK)

	rec := postSubmit(h, `{"firstName":"Jane","lastName":"Doe","email":"j@d.com","Mobile":"+1","fileName":"a.doc","fileContent":"AA=="}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, *calls, 1)
	body := (*calls)[0].body
	assert.Len(t, body, 5)
	assert.NotContains(t, body, "mobile")
	assert.Equal(t, json.RawMessage(`"a.doc"`), body["fileName"])
}

func TestSubmitMatchesKeysExactly(t *testing.T) {
	h, calls := newRelay(t, http.StatusOK)

	rec := postSubmit(h, `{"firstname":"lower","FIRSTNAME":"upper","firstName":"Jane","Mobile":"+1","fileName":"a.pdf","fileContent":"AA=="}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, *calls, 1)
	assert.Equal(t, map[string]json.RawMessage{
		"firstName":   json.RawMessage(`"Jane"`),
		"fileName":    json.RawMessage(`"a.pdf"`),
		"fileContent": json.RawMessage(`"AA=="`),
	}, (*calls)[0].body)
}

func TestSubmitUpstreamFailure(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		h, calls := newRelay(t, status)

		rec := postSubmit(h, fullSubmission)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, "upstream status %d", status)
		assert.Equal(t, "OK", rec.Body.String())
		assert.Len(t, *calls, 1, "no retry on upstream status %d", status)
	}
}

func TestSubmitUpstreamUnreachable(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	addr := upstream.URL
	upstream.Close()

	rec := postSubmit(routerFor(t, addr), fullSubmission)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSubmitMalformedBody(t *testing.T) {
	for _, body := range []string{`{"firstName":`, `null`, `[]`, `"story"`, `42`, ``} {
		h, calls := newRelay(t, http.StatusOK)

		rec := postSubmit(h, body)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
		assert.Empty(t, *calls, "body %q", body)
	}
}

func TestSubmitMethodNotAllowed(t *testing.T) {
	h, _ := newRelay(t, http.StatusOK)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/submit", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth(t *testing.T) {
	h, _ := newRelay(t, http.StatusOK)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestCorrelationID(t *testing.T) {
	h, _ := newRelay(t, http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(CorrelationIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Len(t, rec.Header().Get(CorrelationIDHeader), 36)
}

type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestWriteErrLogsWriteFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(&buf)
	w := brokenWriter{httptest.NewRecorder()}

	writeErr(logger, w, errors.New("can't decode submission"), http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, buf.String(), "level=error")
	assert.Contains(t, buf.String(), "connection reset")
}

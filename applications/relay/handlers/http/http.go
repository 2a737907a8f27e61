package http

import (
	"net/http"

	"github.com/go-kit/log"

	"github.com/storyflux/storyflux/applications/relay"
	"github.com/storyflux/storyflux/applications/relay/config"
)

func NewHTTPServer(conf config.Api, relaySvc relay.Relay, logger log.Logger) *http.Server {
	mux := NewRouter(relaySvc, logger)
	return &http.Server{
		Addr:    conf.HTTPAddr,
		Handler: mux,
	}
}

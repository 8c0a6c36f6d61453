package httpapi

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/clustermaster/masterd/pkg/codec"
	"github.com/clustermaster/masterd/pkg/log"
	"github.com/clustermaster/masterd/pkg/master"
	"github.com/clustermaster/masterd/pkg/readbatch"
)

// Config configures a Server.
type Config struct {
	Master  *master.Master
	Batcher *readbatch.Batcher
	Addr    string
	Version string
}

// Server is the master's HTTP request plane: one gorilla/mux router
// serving the operator API, the scheduler API, the legacy form
// endpoints, and the maintenance/role/info endpoints beside them.
type Server struct {
	master  *master.Master
	batcher *readbatch.Batcher
	codecs  *codec.Registry
	version string

	router *mux.Router
	http   *http.Server
}

// NewServer builds a Server and registers every route. It does not
// start listening; call Start.
func NewServer(cfg Config) *Server {
	s := &Server{
		master:  cfg.Master,
		batcher: cfg.Batcher,
		codecs:  codec.NewRegistry(),
		version: cfg.Version,
	}
	s.router = mux.NewRouter()
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var allowed []string
		_ = s.router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
			var match mux.RouteMatch
			if route.Match(r, &match) || match.MatchErr == mux.ErrMethodMismatch {
				if methods, err := route.GetMethods(); err == nil {
					allowed = append(allowed, methods...)
				}
			}
			return nil
		})
		writeError(w, methodNotAllowed("method not allowed", allowed))
	})
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound("no such path"))
	})
	s.registerRoutes()

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // scheduler subscriptions are long-lived
	}
	return s
}

// SetTLSConfig arms the server to terminate mTLS. Must be called
// before Start.
func (s *Server) SetTLSConfig(cfg *tls.Config) {
	s.http.TLSConfig = cfg
}

// Start begins serving and blocks until the listener closes. When
// SetTLSConfig has armed a TLS config, the listener terminates mTLS
// directly rather than serving plaintext.
func (s *Server) Start() error {
	httpapiLogger := log.WithComponent("httpapi")
	httpapiLogger.Info().Str("addr", s.http.Addr).Bool("tls", s.http.TLSConfig != nil).Msg("http api listening")
	var err error
	if s.http.TLSConfig != nil {
		err = s.http.ListenAndServeTLS("", "")
	} else {
		err = s.http.ListenAndServe()
	}
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

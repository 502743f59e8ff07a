// Package httpd exposes the panel pipeline over HTTP for display devices
// that poll for their data.
package httpd

import (
	"net"
	"net/http"

	"github.com/juju/errors"
	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/grafink/grafink/config"
	l "github.com/grafink/grafink/logger"
	"github.com/grafink/grafink/pipeline"
)

// Service provides the HTTP API.
type Service struct {
	addr string
	ln   net.Listener

	router *httprouter.Router
	server *http.Server

	conf *config.C
	pipe *pipeline.P

	log *zap.SugaredLogger
}

func New(c *config.C, p *pipeline.P) (s *Service, err error) {
	s = &Service{
		addr:   c.HTTPBind,
		conf:   c,
		pipe:   p,
		router: httprouter.New(),
	}

	s.log, err = l.NewLogConfig(c, "httpd")
	if err != nil {
		return s, errors.Annotate(err, "creating httpd logger")
	}

	return s, err
}

// Start binds the listen address and serves in the background.
func (s *Service) Start() error {
	s.initHandler()

	s.server = &http.Server{
		Handler: s.router,
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Annotatef(err, "listening on %s", s.addr)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(s.ln); err != nil && err != http.ErrServerClosed {
			s.log.Errorf("http serve: %v", err)
		}
	}()
	s.log.Infof("service listening on %s", s.ln.Addr().String())

	return nil
}

// Close stops the server.
func (s *Service) Close() error {
	if s.server == nil {
		return nil
	}
	return s.server.Close()
}

// Addr returns the bound listen address once Start has returned.
func (s *Service) Addr() string {
	if s.ln == nil {
		return s.addr
	}
	return s.ln.Addr().String()
}

func (s *Service) initHandler() {
	s.router.GET("/", s.handlerData)
	s.router.POST("/", s.handlerData)
	s.router.GET("/api/data", s.handlerData)
	s.router.POST("/api/data", s.handlerData)

	s.router.GET("/health", s.handlerHealth)

	s.router.GET("/api/test/:type", s.handlerTest)
	s.router.POST("/api/test/:type", s.handlerTest)

	s.router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
}

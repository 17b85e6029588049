package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/zap"
)

type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger *logging.Service
}

func New(cfg *config.Config, logger *logging.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(CORS(cfg))
	e.Use(logging.RequestLogger(logger, "/health"))

	return &Server{
		echo:   e,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	if s.logger != nil {
		s.logger.Info("starting server", zap.String("addr", addr))
	}
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Get(path string, handler echo.HandlerFunc, mw ...echo.MiddlewareFunc) {
	s.echo.GET(path, handler, mw...)
}

func (s *Server) Post(path string, handler echo.HandlerFunc, mw ...echo.MiddlewareFunc) {
	s.echo.POST(path, handler, mw...)
}

func (s *Server) Put(path string, handler echo.HandlerFunc, mw ...echo.MiddlewareFunc) {
	s.echo.PUT(path, handler, mw...)
}

func (s *Server) Delete(path string, handler echo.HandlerFunc, mw ...echo.MiddlewareFunc) {
	s.echo.DELETE(path, handler, mw...)
}

func (s *Server) Group(prefix string, mw ...echo.MiddlewareFunc) *echo.Group {
	return s.echo.Group(prefix, mw...)
}

func (s *Server) Use(mw ...echo.MiddlewareFunc) {
	s.echo.Use(mw...)
}

func (s *Server) Echo() *echo.Echo {
	return s.echo
}

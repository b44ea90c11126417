package server

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/ToneGuard/ToneGuard/pkg/config"
	handlers "github.com/ToneGuard/ToneGuard/pkg/handlers/http"
	"github.com/ToneGuard/ToneGuard/pkg/infra/prometheus"
	"github.com/ToneGuard/ToneGuard/pkg/middleware"
)

type (
	APIServerDI struct {
		MiddlewareTransport middleware.Transport
		HandlerTransport    handlers.HandlerTransport
		Config              *config.Config
		Logger              *logrus.Logger
	}
	APIServer struct {
		*BaseServer
		middlewareTransport middleware.Transport
		handlerTransport    handlers.HandlerTransport
	}
)

func NewAPIServer(di APIServerDI) *APIServer {
	if di.Config.Metrics.Enabled {
		prometheus.Initialize(prometheus.Config{
			EnableLatency:  di.Config.Metrics.EnableLatency,
			EnableUpstream: di.Config.Metrics.EnableUpstream,
		})
	}

	s := &APIServer{
		BaseServer:          NewBaseServer(di.Config, di.Logger),
		middlewareTransport: di.MiddlewareTransport,
		handlerTransport:    di.HandlerTransport,
	}
	s.setupMetricsEndpoint()
	return s
}

func (s *APIServer) Run() error {
	s.setupRoutes()
	s.setupHealthCheck()
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.logger.WithField("addr", addr).Info("Starting API server")
	return s.router.Listen(addr)
}

func (s *APIServer) setupRoutes() {
	s.router.Use(s.middlewareTransport.RequestIDMiddleware.RequestIDMiddleware())
	s.router.Use(s.middlewareTransport.MetricsMiddleware.MetricsMiddleware())

	baseRouter := s.router.Group("")
	s.addRoutes(baseRouter)
}

func (s *APIServer) addRoutes(router fiber.Router) {
	v1 := router.Group("/api/v1")
	{
		v1.Post("/analyze", s.handlerTransport.AnalyzeTextHandler.Handle)
		v1.Post("/rephrase", s.handlerTransport.RephraseTextHandler.Handle)
		v1.Get("/version", s.handlerTransport.GetVersionHandler.Handle)
	}
}

func (s *APIServer) Shutdown() error {
	return s.router.Shutdown()
}

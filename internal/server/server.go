// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the note-keeper listeners: the HTTP API and an
// optional gRPC health endpoint, with coordinated graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Server owns the process lifecycle: it starts the listeners and shuts them
// down on SIGINT/SIGTERM or when one of them fails.
type Server struct {
	httpServer *HTTPServer
	grpcServer *GRPCServer
	logger     *logger.Logger
}

func NewServer(handler http.Handler, cfg config.Server, log *logger.Logger) *Server {
	s := &Server{
		httpServer: NewHTTPServer(handler, cfg, log),
		logger:     log,
	}
	if cfg.GRPCAddress != "" {
		s.grpcServer = NewGRPCServer(cfg.GRPCAddress, log)
	}

	return s
}

// Run blocks until shutdown completes.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	go func() {
		if err := s.httpServer.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if s.grpcServer != nil {
		go func() {
			if err := s.grpcServer.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info().Str("func", "*Server.Run").Msg("shutdown signal received")
	case runErr = <-errCh:
		s.logger.Err(runErr).Str("func", "*Server.Run").Msg("listener failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Err(err).Str("func", "*Server.Run").Msg("http shutdown failed")
		if runErr == nil {
			runErr = err
		}
	}
	if s.grpcServer != nil {
		s.grpcServer.Shutdown()
	}

	s.logger.Info().Str("func", "*Server.Run").Msg("server stopped")
	return runErr
}

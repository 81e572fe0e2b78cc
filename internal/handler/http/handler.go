// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http wires the sync server's HTTP surface: routing, auth
// middleware and JSON request/response handling on top of the service layer.
package http

import (
	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/service"
)

// Handler holds the dependencies shared by all HTTP endpoints.
type Handler struct {
	services *service.Services
	cfg      config.Server
	version  string
	logger   *logger.Logger
}

func NewHandler(services *service.Services, cfg config.Server, version string, log *logger.Logger) *Handler {
	return &Handler{
		services: services,
		cfg:      cfg,
		version:  version,
		logger:   log.GetChildLogger(),
	}
}

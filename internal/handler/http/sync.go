// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/models"
)

// Push handles POST /sync/push.
func (h *Handler) Push(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrTokenIsInvalid)
		return
	}

	var req models.PushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed JSON body", service.ErrInvalidDataProvided))
		return
	}

	resp, err := h.services.SyncService.Push(r.Context(), userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

// Pull handles GET /sync/pull. The optional `since` query parameter is an
// RFC 3339 timestamp; records updated strictly after it are returned.
func (h *Handler) Pull(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrTokenIsInvalid)
		return
	}

	var since *time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: invalid since timestamp %q", service.ErrInvalidDataProvided, raw))
			return
		}
		since = &parsed
	}

	resp, err := h.services.SyncService.Pull(r.Context(), userID, since)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

// Full handles GET /sync/full.
func (h *Handler) Full(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrTokenIsInvalid)
		return
	}

	resp, err := h.services.SyncService.Full(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, resp, http.StatusOK)
}

// ResolveConflict handles POST /sync/resolve-conflict.
func (h *Handler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrTokenIsInvalid)
		return
	}

	var req models.ResolveConflictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed JSON body", service.ErrInvalidDataProvided))
		return
	}

	if err := h.services.SyncService.ResolveConflict(r.Context(), userID, req); err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, map[string]bool{"success": true}, http.StatusOK)
}

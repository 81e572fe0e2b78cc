// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/utils"
	"github.com/MKhiriev/go-note-keeper/models"
)

// internalAuthHeader carries the deployment credential gating
// POST /auth/internal.
const internalAuthHeader = "X-Internal-Auth"

// SignInGoogle handles POST /auth/google.
func (h *Handler) SignInGoogle(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed JSON body", service.ErrInvalidDataProvided))
		return
	}

	session, err := h.services.SignInGoogle(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, session, http.StatusOK)
}

// SignInInternal handles POST /auth/internal. The endpoint trusts the
// identity in the body, so it is gated by the X-Internal-Auth credential.
func (h *Handler) SignInInternal(w http.ResponseWriter, r *http.Request) {
	if err := h.services.VerifyInternalKey(r.Header.Get(internalAuthHeader)); err != nil {
		writeError(w, r, err)
		return
	}

	var req models.InternalSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, fmt.Errorf("%w: malformed JSON body", service.ErrInvalidDataProvided))
		return
	}

	session, err := h.services.SignInInternal(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, session, http.StatusOK)
}

// Me handles GET /auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, service.ErrTokenIsInvalid)
		return
	}

	user, err := h.services.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, user, http.StatusOK)
}

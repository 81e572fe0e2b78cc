// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
	"github.com/go-resty/resty/v2"
)

type httpServerAdapter struct {
	client *resty.Client
	logger *logger.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPServerAdapter builds the resty-backed [ServerAdapter] pointed at
// cfg.APIURL.
func NewHTTPServerAdapter(cfg config.Adapter, log *logger.Logger) ServerAdapter {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	log.Debug().Str("func", "NewHTTPServerAdapter").Str("api_url", cfg.APIURL).Msg("ServerAdapter created")

	return &httpServerAdapter{
		client: client,
		logger: log,
	}
}

func (a *httpServerAdapter) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = token
}

func (a *httpServerAdapter) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *httpServerAdapter) SignInGoogle(ctx context.Context, req models.SignInRequest) (models.AuthSession, error) {
	var session models.AuthSession

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&session).
		Post("/auth/google")
	if err != nil {
		a.logger.Err(err).Str("func", "*httpServerAdapter.SignInGoogle").Msg("request failed")
		return models.AuthSession{}, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	if mapped := mapHTTPError(resp); mapped != nil {
		return models.AuthSession{}, mapped
	}

	a.SetToken(session.Token)
	return session, nil
}

func (a *httpServerAdapter) Me(ctx context.Context) (models.User, error) {
	var user models.User

	resp, err := a.authorized().
		SetContext(ctx).
		SetResult(&user).
		Get("/auth/me")
	if err != nil {
		a.logger.Err(err).Str("func", "*httpServerAdapter.Me").Msg("request failed")
		return models.User{}, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	if mapped := mapHTTPError(resp); mapped != nil {
		return models.User{}, mapped
	}

	return user, nil
}

func (a *httpServerAdapter) Push(ctx context.Context, req models.PushRequest) (models.PushResponse, error) {
	var result models.PushResponse

	resp, err := a.authorized().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		Post("/sync/push")
	if err != nil {
		a.logger.Err(err).Str("func", "*httpServerAdapter.Push").Msg("request failed")
		return models.PushResponse{}, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	if mapped := mapHTTPError(resp); mapped != nil {
		return models.PushResponse{}, mapped
	}

	return result, nil
}

func (a *httpServerAdapter) Pull(ctx context.Context, since *time.Time) (models.PullResponse, error) {
	var result models.PullResponse

	request := a.authorized().
		SetContext(ctx).
		SetResult(&result)
	if since != nil {
		request.SetQueryParam("since", since.UTC().Format(time.RFC3339Nano))
	}

	resp, err := request.Get("/sync/pull")
	if err != nil {
		a.logger.Err(err).Str("func", "*httpServerAdapter.Pull").Msg("request failed")
		return models.PullResponse{}, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	if mapped := mapHTTPError(resp); mapped != nil {
		return models.PullResponse{}, mapped
	}

	return result, nil
}

func (a *httpServerAdapter) Full(ctx context.Context) (models.PullResponse, error) {
	var result models.PullResponse

	resp, err := a.authorized().
		SetContext(ctx).
		SetResult(&result).
		Get("/sync/full")
	if err != nil {
		a.logger.Err(err).Str("func", "*httpServerAdapter.Full").Msg("request failed")
		return models.PullResponse{}, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	if mapped := mapHTTPError(resp); mapped != nil {
		return models.PullResponse{}, mapped
	}

	return result, nil
}

func (a *httpServerAdapter) ResolveConflict(ctx context.Context, req models.ResolveConflictRequest) error {
	resp, err := a.authorized().
		SetContext(ctx).
		SetBody(req).
		Post("/sync/resolve-conflict")
	if err != nil {
		a.logger.Err(err).Str("func", "*httpServerAdapter.ResolveConflict").Msg("request failed")
		return fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}

	return mapHTTPError(resp)
}

func (a *httpServerAdapter) authorized() *resty.Request {
	request := a.client.R()
	if token := a.Token(); token != "" {
		request.SetAuthToken(token)
	}
	return request
}

func mapHTTPError(resp *resty.Response) error {
	switch {
	case resp.StatusCode() < 400:
		return nil
	case resp.StatusCode() == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode() == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode() == http.StatusBadRequest:
		return ErrBadRequest
	case resp.StatusCode() >= 500:
		return fmt.Errorf("%w: status %d", ErrServerUnavailable, resp.StatusCode())
	default:
		return fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
}

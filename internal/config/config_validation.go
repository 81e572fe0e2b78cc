package config

import (
	"errors"
	"fmt"
	"time"
)

// Defaults applied by validate for options left unset by every source.
const (
	DefaultPort           = 3001
	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxBodyBytes   = 1 << 20
	DefaultTokenDuration  = 30 * 24 * time.Hour
	DefaultTokenIssuer    = "go-note-keeper"
	DefaultAPIURL         = "http://localhost:3001"
	DefaultSyncInterval   = 30 * time.Second
	DefaultDebounceDelay  = time.Second
	DefaultAdapterTimeout = 15 * time.Second
)

// validate applies documented defaults and rejects out-of-range values.
// Presence of server-only secrets is checked separately by
// [StructuredConfig.ValidateServer] so the client binary can share the same
// loader.
func (c *StructuredConfig) validate() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Server.Port)
	}
	if c.Server.RequestTimeout < 0 {
		return fmt.Errorf("%w: negative request timeout", ErrInvalidConfig)
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = DefaultRequestTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if c.App.TokenDuration < 0 {
		return fmt.Errorf("%w: negative token duration", ErrInvalidConfig)
	}
	if c.App.TokenDuration == 0 {
		c.App.TokenDuration = DefaultTokenDuration
	}
	if c.App.TokenIssuer == "" {
		c.App.TokenIssuer = DefaultTokenIssuer
	}

	if c.Adapter.APIURL == "" {
		c.Adapter.APIURL = DefaultAPIURL
	}
	if c.Adapter.RequestTimeout == 0 {
		c.Adapter.RequestTimeout = DefaultAdapterTimeout
	}

	if c.Workers.SyncInterval == 0 {
		c.Workers.SyncInterval = DefaultSyncInterval
	}
	if c.Workers.DebounceDelay == 0 {
		c.Workers.DebounceDelay = DefaultDebounceDelay
	}

	return nil
}

// ValidateServer checks the options the server binary cannot run without.
func (c *StructuredConfig) ValidateServer() error {
	var errs []error
	if c.Storage.DB.DSN == "" {
		errs = append(errs, fmt.Errorf("%w: database DSN is required", ErrInvalidConfig))
	}
	if c.App.TokenSignKey == "" {
		errs = append(errs, fmt.Errorf("%w: token sign key is required", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// validate checks the assembled client view.
func (c *ClientConfig) validate() error {
	if c.Adapter.APIURL == "" {
		return fmt.Errorf("%w: api url is required", ErrInvalidConfig)
	}

	return nil
}

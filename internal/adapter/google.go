package adapter

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
	"github.com/go-resty/resty/v2"
)

const googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// tokenInfo is the subset of Google's tokeninfo response the verifier needs.
type tokenInfo struct {
	Sub     string `json:"sub"`
	Aud     string `json:"aud"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type googleVerifier struct {
	client   *resty.Client
	clientID string
	logger   *logger.Logger
}

// NewGoogleVerifier builds an [IDTokenVerifier] backed by Google's tokeninfo
// endpoint. The token's audience must match cfg.GoogleClientID.
func NewGoogleVerifier(cfg config.App, log *logger.Logger) IDTokenVerifier {
	return &googleVerifier{
		client:   resty.New().SetBaseURL(googleTokenInfoURL),
		clientID: cfg.GoogleClientID,
		logger:   log,
	}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (models.GoogleIdentity, error) {
	var info tokenInfo

	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParam("id_token", idToken).
		SetResult(&info).
		Get("")
	if err != nil {
		v.logger.Err(err).Str("func", "*googleVerifier.Verify").Msg("tokeninfo request failed")
		return models.GoogleIdentity{}, fmt.Errorf("%w: %w", ErrServerUnavailable, err)
	}
	if resp.IsError() {
		return models.GoogleIdentity{}, fmt.Errorf("%w: status %d", ErrInvalidIDToken, resp.StatusCode())
	}

	if info.Aud != v.clientID {
		v.logger.Warn().Str("func", "*googleVerifier.Verify").Msg("audience mismatch")
		return models.GoogleIdentity{}, fmt.Errorf("%w: audience mismatch", ErrInvalidIDToken)
	}
	if info.Sub == "" {
		return models.GoogleIdentity{}, fmt.Errorf("%w: empty subject", ErrInvalidIDToken)
	}

	return models.GoogleIdentity{
		ProviderID: info.Sub,
		Email:      info.Email,
		Name:       info.Name,
		Image:      info.Picture,
	}, nil
}

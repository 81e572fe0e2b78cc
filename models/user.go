package models

import "time"

// User is a registered account, keyed internally by UserID and externally by
// the OAuth provider's subject identifier.
type User struct {
	UserID     int64     `json:"userId"`
	ProviderID string    `json:"providerId"`
	Email      string    `json:"email"`
	Name       string    `json:"name,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// GoogleIdentity is the canonical identity extracted from a verified OAuth
// ID token. Verification itself is a black box behind the
// adapter.IDTokenVerifier boundary.
type GoogleIdentity struct {
	ProviderID string `json:"providerId"`
	Email      string `json:"email"`
	Name       string `json:"name,omitempty"`
	Image      string `json:"image,omitempty"`
}

// SignInRequest is the body of POST /auth/google.
type SignInRequest struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// InternalSignInRequest is the body of POST /auth/internal: a pre-verified
// identity accepted only behind the internal deployment credential.
type InternalSignInRequest struct {
	Identity GoogleIdentity `json:"identity"`
}

// AuthSession is returned to clients after a successful sign-in.
type AuthSession struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

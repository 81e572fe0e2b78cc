package models

import "github.com/golang-jwt/jwt/v5"

// Token pairs a parsed JWT with the user id extracted from its subject
// claim. SignedString is populated when the token was just issued.
type Token struct {
	*jwt.Token

	UserID       int64
	SignedString string
}

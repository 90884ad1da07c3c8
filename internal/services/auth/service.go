package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrUnexpectedSigning = errors.New("unexpected signing method")
	ErrInvalidAccountID  = errors.New("invalid account id")
)

// Service mints and validates the access tokens that identify the viewer.
// Credential exchange happens elsewhere.
type Service interface {
	GenerateAccessToken(accountID int64) (string, error)
	ValidateToken(tokenString string) (*jwt.RegisteredClaims, error)
}

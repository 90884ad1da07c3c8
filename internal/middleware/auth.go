package middleware

import (
	"errors"
	"strconv"
	"strings"

	"social-leaderboard/backend-api/internal/services/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const (
	// AccountIDKey is the key used to store the account ID in Fiber's locals.
	AccountIDKey = "account_id"
	// ClaimsKey is the key used to store JWT claims in Fiber's locals.
	ClaimsKey = "claims"
)

var (
	// ErrMissingToken indicates the Authorization header is missing or malformed.
	ErrMissingToken = errors.New("missing or malformed authorization header")
	// ErrInvalidToken indicates the token is invalid or expired.
	ErrInvalidToken = errors.New("invalid or expired token")
)

// AuthMiddleware validates the Bearer token and stores the account id of its
// subject for downstream handlers.
func AuthMiddleware(authService auth.Service, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			logger.Debug("missing Authorization header")
			return unauthorized(c, ErrMissingToken)
		}

		scheme, tokenString, found := strings.Cut(authHeader, " ")
		if !found || scheme != "Bearer" || tokenString == "" {
			logger.Debug("malformed Authorization header")
			return unauthorized(c, ErrMissingToken)
		}

		claims, err := authService.ValidateToken(tokenString)
		if err != nil {
			logger.Debug("token validation failed", zap.Error(err))
			return unauthorized(c, ErrInvalidToken)
		}

		accountID, err := parseAccountID(claims.Subject)
		if err != nil {
			logger.Debug("invalid account ID in token", zap.String("subject", claims.Subject), zap.Error(err))
			return unauthorized(c, ErrInvalidToken)
		}

		c.Locals(AccountIDKey, accountID)
		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func parseAccountID(subject string) (int64, error) {
	if subject == "" {
		return 0, errors.New("empty subject")
	}
	id, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, errors.New("account id must be positive")
	}
	return id, nil
}

// GetAccountID retrieves the account ID from Fiber's locals.
func GetAccountID(c *fiber.Ctx) (int64, bool) {
	accountID, ok := c.Locals(AccountIDKey).(int64)
	return accountID, ok
}

// GetClaims retrieves JWT claims from Fiber's locals.
func GetClaims(c *fiber.Ctx) (*jwt.RegisteredClaims, bool) {
	claims, ok := c.Locals(ClaimsKey).(*jwt.RegisteredClaims)
	return claims, ok
}

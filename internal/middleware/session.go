package middleware

import (
	"errors"

	"social-leaderboard/backend-api/internal/services/account"
	"social-leaderboard/backend-api/internal/session"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// EngineKey is the key used to store the account's sync engine in Fiber's locals.
const EngineKey = "engine"

// SessionMiddleware attaches the sync engine of the authenticated account.
// It must run after AuthMiddleware.
func SessionMiddleware(sessions *session.Manager, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accountID, ok := GetAccountID(c)
		if !ok {
			logger.Error("account ID missing from context")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "unauthorized",
			})
		}

		engine, err := sessions.Get(c.Context(), accountID)
		if err != nil {
			if errors.Is(err, account.ErrAccountNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			if errors.Is(err, session.ErrManagerClosed) {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			logger.Error("failed to open session", zap.Int64("account_id", accountID), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		}

		c.Locals(EngineKey, engine)
		return c.Next()
	}
}

// GetEngine retrieves the account's sync engine from Fiber's locals.
func GetEngine(c *fiber.Ctx) (*session.Engine, bool) {
	engine, ok := c.Locals(EngineKey).(*session.Engine)
	return engine, ok
}

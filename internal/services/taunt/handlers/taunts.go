package handlers

import (
	"time"

	"social-leaderboard/backend-api/internal/db/types"
	"social-leaderboard/backend-api/internal/middleware"
	lbHandlers "social-leaderboard/backend-api/internal/services/leaderboard/handlers"
	"social-leaderboard/backend-api/internal/services/taunt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TauntHandlers struct {
	tauntSvc taunt.Service
	logger   *zap.Logger
}

func NewTauntHandlers(tauntSvc taunt.Service, logger *zap.Logger) *TauntHandlers {
	return &TauntHandlers{
		tauntSvc: tauntSvc,
		logger:   logger,
	}
}

type TauntRequest struct {
	TargetID     int64  `json:"target_id"`
	TargetPoints int64  `json:"target_points"`
	TargetName   string `json:"target_name"`
}

type ReceivedTauntResponse struct {
	TauntID         int64  `json:"taunt_id"`
	FromAccountID   int64  `json:"from_account_id"`
	FromDisplayName string `json:"from_display_name"`
	LeaderboardID   *int64 `json:"leaderboard_id,omitempty"`
	CreatedAt       string `json:"created_at"`
}

// SendTaunt handles POST /taunts
func (h *TauntHandlers) SendTaunt(c *fiber.Ctx) error {
	engine, ok := middleware.GetEngine(c)
	if !ok {
		h.logger.Error("engine missing from context")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	var req TauntRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.TargetID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "target_id must be positive",
		})
	}
	if req.TargetPoints < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "target_points must not be negative",
		})
	}

	dialog := engine.Screen.RequestTaunt(c.Context(), req.TargetID, req.TargetPoints, req.TargetName)
	return c.JSON(lbHandlers.NewDialogResponse(dialog))
}

// DismissDialog handles DELETE /taunts/dialog
func (h *TauntHandlers) DismissDialog(c *fiber.Ctx) error {
	engine, ok := middleware.GetEngine(c)
	if !ok {
		h.logger.Error("engine missing from context")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}
	engine.Screen.DismissDialog()
	return c.SendStatus(fiber.StatusNoContent)
}

// ListReceived handles GET /taunts/received
func (h *TauntHandlers) ListReceived(c *fiber.Ctx) error {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		h.logger.Error("account ID missing from context")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "unauthorized",
		})
	}

	taunts, err := h.tauntSvc.ListReceived(c.Context(), accountID)
	if err != nil {
		h.logger.Error("failed to list received taunts", zap.Int64("account_id", accountID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}

	resp := make([]ReceivedTauntResponse, 0, len(taunts))
	for _, t := range taunts {
		item := ReceivedTauntResponse{
			TauntID:         t.TauntID,
			FromAccountID:   t.FromAccountID,
			FromDisplayName: t.FromDisplayName,
			CreatedAt:       t.CreatedAt.Time.UTC().Format(types.Layout),
		}
		if t.LeaderboardID.Valid {
			id := t.LeaderboardID.Int64
			item.LeaderboardID = &id
		}
		resp = append(resp, item)
	}
	return c.JSON(fiber.Map{
		"taunts": resp,
		"count":  len(resp),
		"as_of":  time.Now().UTC().Format(types.Layout),
	})
}

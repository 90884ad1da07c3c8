package handlers

import (
	"social-leaderboard/backend-api/internal/middleware"
	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/internal/screen"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type LeaderboardHandlers struct {
	logger *zap.Logger
}

func NewLeaderboardHandlers(logger *zap.Logger) *LeaderboardHandlers {
	return &LeaderboardHandlers{
		logger: logger,
	}
}

type LeaderboardSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Page int    `json:"page"`
}

type DialogResponse struct {
	Kind    string `json:"kind"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
}

type ViewResponse struct {
	IsSyncing           bool                        `json:"is_syncing"`
	SelectedID          int64                       `json:"selected_id"`
	Selected            *models.LeaderboardSnapshot `json:"selected"`
	Podium              []models.RankedMember       `json:"podium"`
	Members             []models.RankedMember       `json:"members"`
	Leaderboards        []LeaderboardSummary        `json:"leaderboards"`
	Account             *models.Account             `json:"account"`
	Signal              models.Signal               `json:"signal"`
	ExpandedLeaderboard string                      `json:"expanded_leaderboard"`
	Dialog              *DialogResponse             `json:"dialog"`
}

type SelectionRequest struct {
	LeaderboardID int64 `json:"leaderboard_id"`
}

// NewViewResponse renders a screen state for the wire.
func NewViewResponse(state screen.State) ViewResponse {
	summaries := make([]LeaderboardSummary, 0, len(state.View.All))
	for _, snap := range state.View.All {
		summaries = append(summaries, LeaderboardSummary{ID: snap.ID, Name: snap.Name, Page: snap.Page})
	}
	return ViewResponse{
		IsSyncing:           state.View.IsSyncing,
		SelectedID:          state.View.SelectedID,
		Selected:            state.View.Selected,
		Podium:              state.Podium,
		Members:             state.VisibleMembers,
		Leaderboards:        summaries,
		Account:             state.View.Account,
		Signal:              state.Signal,
		ExpandedLeaderboard: state.ExpandedLeaderboard,
		Dialog:              NewDialogResponse(state.Dialog),
	}
}

// NewDialogResponse renders a dialog, or nil when none is open.
func NewDialogResponse(d screen.Dialog) *DialogResponse {
	switch v := d.(type) {
	case nil:
		return nil
	case screen.DialogSuccess:
		return &DialogResponse{Kind: v.Kind(), Title: v.Title, Message: v.Message}
	case screen.DialogError:
		return &DialogResponse{Kind: v.Kind(), Title: v.Title, Message: v.Message}
	default:
		return &DialogResponse{Kind: v.Kind()}
	}
}

// GetView handles GET /leaderboards/view
func (h *LeaderboardHandlers) GetView(c *fiber.Ctx) error {
	engine, ok := middleware.GetEngine(c)
	if !ok {
		return h.missingEngine(c)
	}
	return c.JSON(NewViewResponse(engine.Screen.Get()))
}

// SetSelection handles PUT /leaderboards/selection
func (h *LeaderboardHandlers) SetSelection(c *fiber.Ctx) error {
	engine, ok := middleware.GetEngine(c)
	if !ok {
		return h.missingEngine(c)
	}

	var req SelectionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if req.LeaderboardID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "leaderboard_id must be positive",
		})
	}

	engine.Screen.SetSelection(req.LeaderboardID)
	return c.JSON(fiber.Map{
		"selected_id": req.LeaderboardID,
	})
}

// Refresh handles POST /leaderboards/refresh
func (h *LeaderboardHandlers) Refresh(c *fiber.Ctx) error {
	engine, ok := middleware.GetEngine(c)
	if !ok {
		return h.missingEngine(c)
	}

	if err := engine.ReloadAccount(c.Context()); err != nil {
		h.logger.Warn("account reload failed", zap.Int64("account_id", engine.AccountID), zap.Error(err))
	}
	engine.Screen.RequestRefresh()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "refresh scheduled",
	})
}

// ExpandViewMore handles POST /leaderboards/view-more
func (h *LeaderboardHandlers) ExpandViewMore(c *fiber.Ctx) error {
	engine, ok := middleware.GetEngine(c)
	if !ok {
		return h.missingEngine(c)
	}

	engine.Screen.ExpandViewMore()
	return c.JSON(fiber.Map{
		"expanded_leaderboard": engine.Screen.Get().ExpandedLeaderboard,
	})
}

func (h *LeaderboardHandlers) missingEngine(c *fiber.Ctx) error {
	h.logger.Error("engine missing from context")
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "unauthorized",
	})
}

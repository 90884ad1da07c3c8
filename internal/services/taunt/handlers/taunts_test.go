package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"social-leaderboard/backend-api/internal/api/gateway"
	"social-leaderboard/backend-api/internal/metrics"
	lbHandlers "social-leaderboard/backend-api/internal/services/leaderboard/handlers"
	"social-leaderboard/backend-api/internal/testutils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap/zaptest"
)

type tauntFixture struct {
	app    *fiber.App
	db     *sql.DB
	viewer int64
	above  int64
	below  int64
	token  string
}

// newTauntFixture seeds the primary board with above(100) > viewer(50) >
// below(10) and waits for the viewer's engine to finish its first sync.
func newTauntFixture(t *testing.T) *tauntFixture {
	db := testutils.SetupTestDB(t)
	cfg := testutils.GetTestConfig()
	gw := gateway.NewAPIGateway(cfg, zaptest.NewLogger(t), db, metrics.New())
	t.Cleanup(func() { gw.Sessions().Close() })

	f := &tauntFixture{app: gw.Router(), db: db}
	f.above = testutils.CreateTestAccount(t, db, "bea", 0)
	f.viewer = testutils.CreateTestAccount(t, db, "ann", 0)
	f.below = testutils.CreateTestAccount(t, db, "cal", 0)
	testutils.AddTestMember(t, db, testutils.PrimaryLeaderboardID, f.above, 100)
	testutils.AddTestMember(t, db, testutils.PrimaryLeaderboardID, f.viewer, 50)
	testutils.AddTestMember(t, db, testutils.PrimaryLeaderboardID, f.below, 10)
	f.token = testutils.CreateTestAccessToken(t, cfg, f.viewer)

	f.waitForView(t, func(v lbHandlers.ViewResponse) bool {
		return v.Selected != nil && len(v.Selected.Members) == 3
	})
	return f
}

func (f *tauntFixture) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	return resp
}

func (f *tauntFixture) waitForView(t *testing.T, cond func(lbHandlers.ViewResponse) bool) lbHandlers.ViewResponse {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		resp := f.do(t, http.MethodGet, "/leaderboards/view", f.token, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", resp.StatusCode)
		}
		var view lbHandlers.ViewResponse
		if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
			t.Fatalf("Failed to decode view: %v", err)
		}
		if cond(view) {
			return view
		}
		if time.Now().After(deadline) {
			t.Fatalf("View did not reach expected state, last: %+v", view)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func (f *tauntFixture) sendTaunt(t *testing.T, targetID, targetPoints int64, name string) lbHandlers.DialogResponse {
	t.Helper()
	resp := f.do(t, http.MethodPost, "/taunts", f.token, map[string]interface{}{
		"target_id":     targetID,
		"target_points": targetPoints,
		"target_name":   name,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	var dialog lbHandlers.DialogResponse
	if err := json.NewDecoder(resp.Body).Decode(&dialog); err != nil {
		t.Fatalf("Failed to decode dialog: %v", err)
	}
	return dialog
}

func TestSendTaunt_Success(t *testing.T) {
	f := newTauntFixture(t)

	dialog := f.sendTaunt(t, f.below, 10, "cal")
	if dialog.Kind != "success" || dialog.Title != "Success" {
		t.Fatalf("Expected success dialog, got %+v", dialog)
	}
	if dialog.Message != "Taunt delivered to cal" {
		t.Errorf("Unexpected message %q", dialog.Message)
	}

	view := f.waitForView(t, func(v lbHandlers.ViewResponse) bool { return v.Dialog != nil })
	if view.Dialog.Kind != "success" {
		t.Errorf("Expected the success dialog to stay open, got %+v", view.Dialog)
	}
}

func TestSendTaunt_RankedAbove(t *testing.T) {
	f := newTauntFixture(t)

	dialog := f.sendTaunt(t, f.above, 100, "bea")
	if dialog.Kind != "error" || dialog.Title != "Oops" {
		t.Fatalf("Expected Oops dialog, got %+v", dialog)
	}
	if dialog.Message != "cannot taunt a member ranked at or above you" {
		t.Errorf("Unexpected message %q", dialog.Message)
	}
}

func TestSendTaunt_Self(t *testing.T) {
	f := newTauntFixture(t)

	dialog := f.sendTaunt(t, f.viewer, 50, "ann")
	if dialog.Title != "Oops" || dialog.Message != "cannot taunt a member ranked at or above you" {
		t.Errorf("Expected self-taunt denial, got %+v", dialog)
	}
}

func TestSendTaunt_Cooldown(t *testing.T) {
	f := newTauntFixture(t)

	if first := f.sendTaunt(t, f.below, 10, "cal"); first.Kind != "success" {
		t.Fatalf("Expected first taunt to succeed, got %+v", first)
	}
	second := f.sendTaunt(t, f.below, 10, "cal")
	if second.Kind != "error" || second.Title != "Error" {
		t.Fatalf("Expected failure dialog, got %+v", second)
	}
	if second.Message == "" {
		t.Errorf("Expected the cooldown reason in the dialog")
	}
}

func TestSendTaunt_InvalidBody(t *testing.T) {
	f := newTauntFixture(t)

	cases := map[string]map[string]interface{}{
		"zero target":     {"target_id": 0, "target_points": 1},
		"negative points": {"target_id": f.below, "target_points": -1},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := f.do(t, http.MethodPost, "/taunts", f.token, body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestDismissDialog(t *testing.T) {
	f := newTauntFixture(t)
	f.sendTaunt(t, f.below, 10, "cal")

	resp := f.do(t, http.MethodDelete, "/taunts/dialog", f.token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", resp.StatusCode)
	}
	f.waitForView(t, func(v lbHandlers.ViewResponse) bool { return v.Dialog == nil })
}

func TestListReceived(t *testing.T) {
	f := newTauntFixture(t)
	f.sendTaunt(t, f.below, 10, "cal")

	belowToken := testutils.CreateTestAccessToken(t, testutils.GetTestConfig(), f.below)
	resp := f.do(t, http.MethodGet, "/taunts/received", belowToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var result struct {
		Taunts []struct {
			FromAccountID   int64  `json:"from_account_id"`
			FromDisplayName string `json:"from_display_name"`
			LeaderboardID   *int64 `json:"leaderboard_id"`
		} `json:"taunts"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Count != 1 || len(result.Taunts) != 1 {
		t.Fatalf("Expected 1 taunt, got %d", result.Count)
	}
	got := result.Taunts[0]
	if got.FromAccountID != f.viewer || got.FromDisplayName != "ann" {
		t.Errorf("Unexpected sender %+v", got)
	}
	if got.LeaderboardID == nil || *got.LeaderboardID != testutils.PrimaryLeaderboardID {
		t.Errorf("Expected taunt tagged with the primary leaderboard, got %v", got.LeaderboardID)
	}
}

func TestTauntRoutes_RequireAuth(t *testing.T) {
	f := newTauntFixture(t)

	resp := f.do(t, http.MethodGet, "/taunts/received", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
	resp = f.do(t, http.MethodPost, "/taunts", "", map[string]int64{"target_id": f.below})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}
}

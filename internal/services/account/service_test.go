package account_test

import (
	"context"
	"errors"
	"testing"

	"social-leaderboard/backend-api/internal/services/account"
	"social-leaderboard/backend-api/internal/testutils"

	"go.uber.org/zap/zaptest"
)

func TestGetAccount(t *testing.T) {
	db := testutils.SetupTestDB(t)
	id := testutils.CreateTestAccount(t, db, "ann", 120)
	svc := account.NewAccountService(testutils.GetTestConfig(), zaptest.NewLogger(t), db)

	acc, err := svc.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("GetAccount failed: %v", err)
	}
	if acc.ID != id || acc.DisplayName != "ann" || acc.RankPoints != 120 {
		t.Errorf("Unexpected account %+v", acc)
	}
}

func TestGetAccount_NotFound(t *testing.T) {
	db := testutils.SetupTestDB(t)
	svc := account.NewAccountService(testutils.GetTestConfig(), zaptest.NewLogger(t), db)

	if _, err := svc.GetAccount(context.Background(), 404); !errors.Is(err, account.ErrAccountNotFound) {
		t.Errorf("Expected ErrAccountNotFound, got %v", err)
	}
}

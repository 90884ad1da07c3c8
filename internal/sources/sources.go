package sources

import (
	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/internal/stream"
)

// Selection tracks the leaderboard id the viewer is looking at. Ids that are
// not (yet) in the store are accepted.
type Selection struct {
	value *stream.Value[int64]
}

func NewSelection(primaryID int64) *Selection {
	return &Selection{value: stream.NewDistinctValue(primaryID)}
}

func (s *Selection) Get() int64 {
	return s.value.Get()
}

func (s *Selection) Set(id int64) {
	s.value.Set(id)
}

func (s *Selection) Observe() *stream.Subscription[int64] {
	return s.value.Subscribe()
}

// SyncFlag is true exactly while a refresh job is executing.
type SyncFlag struct {
	value *stream.Value[bool]
}

func NewSyncFlag() *SyncFlag {
	return &SyncFlag{value: stream.NewDistinctValue(false)}
}

func (f *SyncFlag) Get() bool {
	return f.value.Get()
}

func (f *SyncFlag) Set(syncing bool) {
	f.value.Set(syncing)
}

func (f *SyncFlag) Observe() *stream.Subscription[bool] {
	return f.value.Subscribe()
}

// AccountSource publishes the signed-in account, or nil when signed out.
type AccountSource struct {
	value *stream.Value[*models.Account]
}

func NewAccountSource(initial *models.Account) *AccountSource {
	return &AccountSource{value: stream.NewValue(initial)}
}

func (a *AccountSource) Get() *models.Account {
	return a.value.Get()
}

// Set replaces the account wholesale.
func (a *AccountSource) Set(account *models.Account) {
	a.value.Set(account)
}

func (a *AccountSource) Observe() *stream.Subscription[*models.Account] {
	return a.value.Subscribe()
}

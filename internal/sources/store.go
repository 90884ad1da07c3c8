// Package sources holds the four independently updated inputs of a
// leaderboard session: the ranked entry store, the selected leaderboard id,
// the sync flag and the signed-in account. Each has exactly one writer.
package sources

import (
	"errors"
	"fmt"

	"social-leaderboard/backend-api/internal/models"
	"social-leaderboard/backend-api/internal/stream"
)

var (
	ErrNilSnapshot      = errors.New("snapshot is nil")
	ErrSnapshotMismatch = errors.New("snapshot id does not match entry id")
	ErrUnorderedMembers = errors.New("members are not ordered by descending points")
	ErrNegativePoints   = errors.New("member points must be non-negative")
	ErrInvalidPage      = errors.New("page must be 1 or greater")
	ErrInvalidRank      = errors.New("rank position must be 1 or greater")
)

// Store holds the latest snapshot of every known leaderboard. Entries are
// only ever swapped whole; there is no partial update.
type Store struct {
	value *stream.Value[models.LeaderboardMap]
}

func NewStore() *Store {
	return &Store{value: stream.NewValue(models.LeaderboardMap{})}
}

// Get returns the current map. The map and its snapshots are shared with
// other readers and must not be modified.
func (s *Store) Get() models.LeaderboardMap {
	return s.value.Get()
}

// Lookup returns the snapshot stored under id.
func (s *Store) Lookup(id int64) (*models.LeaderboardSnapshot, bool) {
	snap, ok := s.value.Get()[id]
	return snap, ok
}

// Observe emits the current map followed by the map after every replace.
func (s *Store) Observe() *stream.Subscription[models.LeaderboardMap] {
	return s.value.Subscribe()
}

// Version counts successful replaces.
func (s *Store) Version() uint64 {
	return s.value.Version()
}

// Replace swaps the entry for id. The new map is visible to Get and queued to
// every observer before Replace returns.
func (s *Store) Replace(id int64, snapshot *models.LeaderboardSnapshot) error {
	if err := validate(id, snapshot); err != nil {
		return err
	}
	s.value.Update(func(current models.LeaderboardMap) models.LeaderboardMap {
		return current.With(id, snapshot)
	})
	return nil
}

// ReplaceAll swaps several entries in one publish. Either every snapshot is
// valid and all are applied, or nothing changes.
func (s *Store) ReplaceAll(snapshots []*models.LeaderboardSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	for _, snap := range snapshots {
		if snap == nil {
			return ErrNilSnapshot
		}
		if err := validate(snap.ID, snap); err != nil {
			return err
		}
	}
	s.value.Update(func(current models.LeaderboardMap) models.LeaderboardMap {
		next := make(models.LeaderboardMap, len(current)+len(snapshots))
		for k, v := range current {
			next[k] = v
		}
		for _, snap := range snapshots {
			next[snap.ID] = snap
		}
		return next
	})
	return nil
}

func validate(id int64, snapshot *models.LeaderboardSnapshot) error {
	if snapshot == nil {
		return ErrNilSnapshot
	}
	if snapshot.ID != id {
		return fmt.Errorf("%w: entry %d, snapshot %d", ErrSnapshotMismatch, id, snapshot.ID)
	}
	if snapshot.Page < 1 {
		return ErrInvalidPage
	}
	if snapshot.Rank != nil && snapshot.Rank.Position < 1 {
		return ErrInvalidRank
	}
	for i, m := range snapshot.Members {
		if m.Points < 0 {
			return ErrNegativePoints
		}
		if i > 0 && m.Points > snapshot.Members[i-1].Points {
			return ErrUnorderedMembers
		}
	}
	return nil
}

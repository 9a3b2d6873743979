// Package storage defines the persistence contract for the battle engine:
// four independent records (missions, settings, daily state, defeated-boss
// history). Any key-value or document store can satisfy it.
package storage

import (
	"context"
	"errors"

	"github.com/taskraid/taskraid/internal/game/battle"
	"github.com/taskraid/taskraid/internal/game/mission"
)

// ErrNotFound is returned when a record does not exist yet.
var ErrNotFound = errors.New("record not found")

// Store persists the four battle records.
//
// Saves are whole-record overwrites, never partial patches. Implementations
// must be safe for use by a single engine goroutine at a time; they are not
// required to support concurrent mutators.
type Store interface {
	// LoadMissions returns the mission list, or ErrNotFound when never saved.
	LoadMissions(ctx context.Context) ([]mission.Mission, error)
	// SaveMissions overwrites the whole mission list.
	SaveMissions(ctx context.Context, missions []mission.Mission) error

	// LoadSettings returns the battle settings, or ErrNotFound when never saved.
	LoadSettings(ctx context.Context) (battle.Settings, error)
	// SaveSettings overwrites the whole settings record.
	SaveSettings(ctx context.Context, settings battle.Settings) error

	// LoadDailyState returns today's (or a stale day's) state, or ErrNotFound.
	LoadDailyState(ctx context.Context) (*battle.State, error)
	// SaveDailyState overwrites the daily state record.
	SaveDailyState(ctx context.Context, state *battle.State) error

	// LoadDefeatedHistory returns all boss ids ever defeated, in first-defeat order.
	LoadDefeatedHistory(ctx context.Context) ([]string, error)
	// AddToDefeatedHistory appends a boss id; duplicates are ignored.
	AddToDefeatedHistory(ctx context.Context, bossID string) error
}

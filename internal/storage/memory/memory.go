// Package memory provides an in-memory Store used by tests and by
// battleserver's memory driver.
package memory

import (
	"context"
	"sync"

	"github.com/taskraid/taskraid/internal/game/battle"
	"github.com/taskraid/taskraid/internal/game/mission"
	"github.com/taskraid/taskraid/internal/storage"
)

// Store is an in-memory implementation of storage.Store.
// All methods are safe for concurrent use.
type Store struct {
	mu sync.Mutex

	missions    []mission.Mission
	hasMissions bool

	settings    battle.Settings
	hasSettings bool

	state *battle.State

	history    []string
	historySet map[string]bool

	// saveErr, when set, is returned by every save method. Tests use it to
	// exercise the engine's fail-closed contract.
	saveErr error
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{historySet: make(map[string]bool)}
}

// SetSaveError makes every subsequent save fail with err (nil to clear).
func (s *Store) SetSaveError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveErr = err
}

// LoadMissions returns the saved mission list or storage.ErrNotFound.
func (s *Store) LoadMissions(_ context.Context) ([]mission.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasMissions {
		return nil, storage.ErrNotFound
	}
	return append([]mission.Mission(nil), s.missions...), nil
}

// SaveMissions overwrites the mission list.
func (s *Store) SaveMissions(_ context.Context, missions []mission.Mission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.missions = append([]mission.Mission(nil), missions...)
	s.hasMissions = true
	return nil
}

// LoadSettings returns the saved settings or storage.ErrNotFound.
func (s *Store) LoadSettings(_ context.Context) (battle.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasSettings {
		return battle.Settings{}, storage.ErrNotFound
	}
	return s.settings, nil
}

// SaveSettings overwrites the settings record.
func (s *Store) SaveSettings(_ context.Context, settings battle.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.settings = settings
	s.hasSettings = true
	return nil
}

// LoadDailyState returns the saved daily state or storage.ErrNotFound.
func (s *Store) LoadDailyState(_ context.Context) (*battle.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, storage.ErrNotFound
	}
	return s.state.Clone(), nil
}

// SaveDailyState overwrites the daily state record.
func (s *Store) SaveDailyState(_ context.Context, state *battle.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.state = state.Clone()
	return nil
}

// LoadDefeatedHistory returns all recorded defeats in first-defeat order.
func (s *Store) LoadDefeatedHistory(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.history...), nil
}

// AddToDefeatedHistory appends a boss id, ignoring duplicates.
func (s *Store) AddToDefeatedHistory(_ context.Context, bossID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.historySet[bossID] {
		return nil
	}
	s.historySet[bossID] = true
	s.history = append(s.history, bossID)
	return nil
}

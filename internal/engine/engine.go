// Package engine provides the daily lifecycle manager: the single stateful
// service owning today's battle state, the mission list, and the settings.
//
// Every mutating operation follows the same contract: read the current
// snapshot, compute a pure next state via the battle rules, persist it, and
// only then publish it. If the persistence write fails the snapshot is
// discarded (fail closed) so the published state never diverges from what
// is durable. Mutating calls are serialized behind one mutex; a second call
// arriving while one is in flight waits rather than interleaving.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskraid/taskraid/internal/game/battle"
	"github.com/taskraid/taskraid/internal/game/catalog"
	"github.com/taskraid/taskraid/internal/game/mission"
	"github.com/taskraid/taskraid/internal/storage"
)

// ErrNotInitialized is returned when an operation runs before Initialize.
var ErrNotInitialized = errors.New("engine not initialized")

// ErrUnknownDifficulty is returned for a difficulty outside the catalog tiers.
var ErrUnknownDifficulty = errors.New("unknown difficulty")

// ErrUnknownMission is returned when a mission id does not exist in the list.
var ErrUnknownMission = errors.New("unknown mission")

// Engine is the battle progression service. Construct it once at
// application start and share it by reference; all state lives behind its
// methods.
type Engine struct {
	mu     sync.Mutex
	store  storage.Store
	cat    *catalog.Catalog
	logger *zap.Logger
	src    battle.Source
	now    func() time.Time

	initialized bool
	missions    []mission.Mission
	settings    battle.Settings
	state       *battle.State
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource overrides the random source used for pool draws.
func WithSource(src battle.Source) Option {
	return func(e *Engine) { e.src = src }
}

// WithClock overrides the engine's clock.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine. Call Initialize before any other method.
//
// Precondition: store, cat, and logger must be non-nil.
func New(store storage.Store, cat *catalog.Catalog, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:  store,
		cat:    cat,
		logger: logger,
		src:    battle.NewCryptoSource(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initialize loads missions, settings, and the daily state. A missing or
// stale (different calendar date) state starts a new day; a state saved by
// an older app version is normalized in place.
//
// Postcondition: On success the engine is ready for all operations. On
// failure no daily state is active and the error should be surfaced as a
// blocking condition rather than guessed around.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	missions, err := e.store.LoadMissions(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("loading missions: %w", err)
		}
		missions = []mission.Mission{}
	}

	settings, err := e.store.LoadSettings(ctx)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("loading settings: %w", err)
		}
		settings = battle.DefaultSettings()
	}

	e.missions = missions
	e.settings = settings

	now := e.now()
	today := battle.LocalDate(now)

	state, err := e.store.LoadDailyState(ctx)
	switch {
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("loading daily state: %w", err)
	case err != nil || state.Date != today:
		// First run or a stale day: discard and start fresh.
		if err := e.startNewDayLocked(ctx, today); err != nil {
			return err
		}
	default:
		normalized, changed := battle.Normalize(state, e.cat)
		if changed {
			if err := e.store.SaveDailyState(ctx, normalized); err != nil {
				return fmt.Errorf("saving normalized daily state: %w", err)
			}
			e.logger.Info("normalized legacy daily state", zap.String("date", today))
		}
		e.state = normalized
	}

	e.initialized = true
	e.logger.Info("battle engine initialized",
		zap.String("date", today),
		zap.Int("missions", len(e.missions)),
		zap.Int("bosses_spawned", len(e.state.Bosses)),
		zap.Int("bosses_remaining", e.state.TotalRemainingCount()),
	)
	return nil
}

// startNewDayLocked builds and persists a fresh state for today.
// Caller must hold e.mu.
func (e *Engine) startNewDayLocked(ctx context.Context, today string) error {
	state := battle.NewDailyState(e.settings, e.cat, e.src, today)
	if err := e.store.SaveDailyState(ctx, state); err != nil {
		return fmt.Errorf("saving new daily state for %s: %w", today, err)
	}
	e.state = state

	first, _ := state.CurrentBoss()
	e.logger.Info("started new battle day",
		zap.String("date", today),
		zap.String("first_boss", first.BossID),
		zap.Int("remaining", state.TotalRemainingCount()),
	)
	return nil
}

// ensureTodayLocked resets the state when the calendar day has rolled over
// since the last operation. Caller must hold e.mu.
func (e *Engine) ensureTodayLocked(ctx context.Context) error {
	if !e.initialized {
		return ErrNotInitialized
	}
	today := battle.LocalDate(e.now())
	if e.state != nil && e.state.Date == today {
		return nil
	}
	return e.startNewDayLocked(ctx, today)
}

// StartNewDay discards any current state and begins a fresh battle day.
func (e *Engine) StartNewDay(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	return e.startNewDayLocked(ctx, battle.LocalDate(e.now()))
}

// SpawnBossByDifficulty draws a boss of the given difficulty from today's
// pool.
//
// Postcondition: Returns (true, nil) on a spawn, (false, nil) when the pool
// for that difficulty is exhausted (a domain no-op, not an error), and
// (false, err) on an invalid difficulty or a persistence failure. On
// failure the in-memory state is unchanged.
func (e *Engine) SpawnBossByDifficulty(ctx context.Context, difficulty catalog.Difficulty) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !catalog.ValidDifficulty(difficulty) {
		return false, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	if err := e.ensureTodayLocked(ctx); err != nil {
		return false, err
	}

	res := battle.SpawnBoss(e.state, difficulty, e.settings, e.cat, e.src, e.now())
	if res.State == nil {
		// Pool exhausted for this difficulty.
		return false, nil
	}

	if err := e.store.SaveDailyState(ctx, res.State); err != nil {
		return false, fmt.Errorf("saving spawn of %s boss: %w", difficulty, err)
	}
	e.state = res.State

	boss, _ := res.State.CurrentBoss()
	e.logger.Info("spawned boss",
		zap.String("boss_id", res.BossID),
		zap.String("difficulty", string(difficulty)),
		zap.Int("overkill_applied", res.OverkillApplied),
		zap.Bool("instant_defeat", boss.Defeated()),
	)

	if boss.Defeated() {
		e.recordDefeatHistory(ctx, res.BossID)
	}
	return true, nil
}

// CompleteMission applies a mission's damage to the current boss.
//
// Postcondition: Domain no-ops (no live boss, unknown or unavailable
// mission) return a zero MissionResult and a nil error. A persistence
// failure discards the computed state and returns the error; the in-memory
// state is unchanged.
func (e *Engine) CompleteMission(ctx context.Context, missionID string) (battle.MissionResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureTodayLocked(ctx); err != nil {
		return battle.MissionResult{}, err
	}

	now := e.now()
	res := battle.ResolveMission(e.state, e.missions, e.settings, e.cat, missionID, now)
	if res.State == nil {
		return battle.MissionResult{}, nil
	}

	if err := e.store.SaveDailyState(ctx, res.State); err != nil {
		return battle.MissionResult{}, fmt.Errorf("saving completion of mission %s: %w", missionID, err)
	}
	e.state = res.State

	e.logger.Info("mission completed",
		zap.String("mission_id", missionID),
		zap.Int("damage", res.Result.DamageDealt),
		zap.Bool("boss_defeated", res.Result.BossDefeated),
		zap.Int("xp_earned", res.Result.XPEarned),
		zap.Int("overkill", res.Result.OverkillDamage),
	)

	if res.DefeatedBossID != "" {
		e.recordDefeatHistory(ctx, res.DefeatedBossID)
	}
	return res.Result, nil
}

// recordDefeatHistory appends to the durable defeat album. The daily state
// is already durable at this point, so a history failure is logged rather
// than rolled back. Caller must hold e.mu.
func (e *Engine) recordDefeatHistory(ctx context.Context, bossID string) {
	if err := e.store.AddToDefeatedHistory(ctx, bossID); err != nil {
		e.logger.Warn("recording defeat history failed",
			zap.String("boss_id", bossID), zap.Error(err))
	}
}

// AdvanceSequentialPhase records one step of the mandatory onboarding ramp.
// The engine never advances the phase on its own; the host calls this after
// presenting a defeat during the ramp.
//
// Postcondition: A no-op once the ramp is complete.
func (e *Engine) AdvanceSequentialPhase(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureTodayLocked(ctx); err != nil {
		return err
	}
	if battle.SequentialPhaseComplete(e.state.SequentialPhase) {
		return nil
	}

	next := e.state.Clone()
	next.SequentialPhase++
	if err := e.store.SaveDailyState(ctx, next); err != nil {
		return fmt.Errorf("saving sequential phase advance: %w", err)
	}
	e.state = next

	e.logger.Info("sequential phase advanced", zap.Int("phase", next.SequentialPhase))
	return nil
}

// NextSequentialDifficulty returns the difficulty the host must auto-offer,
// or ("", false) once free selection has unlocked.
func (e *Engine) NextSequentialDifficulty() (catalog.Difficulty, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return "", false
	}
	return battle.NextSequentialDifficulty(e.state.SequentialPhase)
}

// GetCurrentBoss returns the boss at the current index.
func (e *Engine) GetCurrentBoss() (battle.BossProgress, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.CurrentBoss()
}

// RemainingBossCount returns the pool size for one difficulty.
func (e *Engine) RemainingBossCount(difficulty catalog.Difficulty) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.RemainingCount(difficulty)
}

// TotalRemainingBossCount returns the pool size across all difficulties.
func (e *Engine) TotalRemainingBossCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.TotalRemainingCount()
}

// AllBossesDefeated reports whether every boss spawned today is defeated.
func (e *Engine) AllBossesDefeated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.AllBossesDefeated()
}

// State returns a snapshot of today's battle state, or nil before Initialize.
func (e *Engine) State() *battle.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Settings returns the current battle settings.
func (e *Engine) Settings() battle.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Missions returns the full mission list, including disabled missions.
func (e *Engine) Missions() []mission.Mission {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]mission.Mission(nil), e.missions...)
}

// ActiveMissions returns the enabled missions usable right now, in display
// order.
func (e *Engine) ActiveMissions() []mission.Mission {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == nil {
		return nil
	}
	now := e.now()
	active := make([]mission.Mission, 0, len(e.missions))
	for _, m := range e.missions {
		if mission.Available(m, e.state.CompletedMissionIds, e.state.MissionUsedAt, now) {
			active = append(active, m)
		}
	}
	sort.SliceStable(active, func(i, j int) bool { return active[i].Order < active[j].Order })
	return active
}

// DefeatedHistory returns every boss id ever defeated, for the album view.
func (e *Engine) DefeatedHistory(ctx context.Context) ([]string, error) {
	return e.store.LoadDefeatedHistory(ctx)
}

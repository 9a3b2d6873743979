package battle

import (
	"time"

	"github.com/taskraid/taskraid/internal/game/catalog"
	"github.com/taskraid/taskraid/internal/game/combat"
)

// NewDailyState builds a fresh state for the given day: the full catalog
// pool grouped by difficulty, with one easy boss already drawn and spawned.
//
// Precondition: the catalog must contain at least one easy boss; src must be
// non-nil.
// Postcondition: TotalDefeated == 0, all histories empty, SequentialPhase ==
// 0, and TotalRemainingCount() == cat.Size()-1.
func NewDailyState(settings Settings, cat *catalog.Catalog, src Source, today string) *State {
	pool := cat.GroupByDifficulty()

	firstBossID, remainingEasy, ok := DrawWithoutReplacement(pool[catalog.DifficultyEasy], src)
	if !ok {
		// A catalog without easy bosses cannot seed the onboarding ramp.
		panic("battle: catalog has no easy bosses to start the day")
	}
	pool[catalog.DifficultyEasy] = remainingEasy

	hp := combat.MaxHP(catalog.DifficultyEasy, settings.BossDifficultyXP, settings.BossDefeatXP)

	return &State{
		Date:             today,
		CurrentBossIndex: 0,
		Bosses: []BossProgress{{
			BossID:            firstBossID,
			MaxHP:             hp,
			CurrentHP:         hp,
			CompletedMissions: []string{},
		}},
		TotalDefeated:       0,
		RemainingBosses:     pool,
		DefeatedBossIds:     []string{},
		CompletedMissionIds: []string{},
		MissionUsedAt:       map[string]time.Time{},
		OverkillDamage:      0,
		SequentialPhase:     0,
	}
}

// Normalize migrates a loaded state from legacy shapes to the pool model.
//
// A state saved before the pool model may be missing RemainingBosses (or
// hold an empty pool) while the catalog still has bosses the player never
// saw; in that case the pool is rebuilt from the catalog minus every id in
// the roster or the defeat history. Nil slices and maps are defaulted and
// CurrentBossIndex is clamped into bounds.
//
// Postcondition: Returns (normalized, changed). Normalizing an already
// normalized state reports changed == false and alters nothing (idempotent).
// The input state is never mutated.
func Normalize(state *State, cat *catalog.Catalog) (*State, bool) {
	if state == nil {
		return nil, false
	}

	next := state.Clone()
	changed := false

	if next.Bosses == nil {
		next.Bosses = []BossProgress{}
		changed = true
	}
	if next.DefeatedBossIds == nil {
		next.DefeatedBossIds = []string{}
		changed = true
	}
	if next.CompletedMissionIds == nil {
		next.CompletedMissionIds = []string{}
		changed = true
	}
	if next.MissionUsedAt == nil {
		next.MissionUsedAt = map[string]time.Time{}
		changed = true
	}

	seen := make(map[string]bool, len(next.DefeatedBossIds)+len(next.Bosses))
	for _, id := range next.DefeatedBossIds {
		seen[id] = true
	}
	for _, b := range next.Bosses {
		seen[b.BossID] = true
	}

	remainingTotal := 0
	for _, pool := range next.RemainingBosses {
		remainingTotal += len(pool)
	}

	if next.RemainingBosses == nil {
		next.RemainingBosses = map[catalog.Difficulty][]string{
			catalog.DifficultyEasy:   {},
			catalog.DifficultyNormal: {},
			catalog.DifficultyHard:   {},
			catalog.DifficultyEpic:   {},
		}
		changed = true
	}

	if remainingTotal == 0 && len(seen) < cat.Size() {
		rebuilt := cat.GroupByDifficulty()
		for d, pool := range rebuilt {
			filtered := pool[:0]
			for _, id := range pool {
				if !seen[id] {
					filtered = append(filtered, id)
				}
			}
			rebuilt[d] = filtered
		}
		next.RemainingBosses = rebuilt
		changed = true
	}

	maxIndex := len(next.Bosses) - 1
	if maxIndex < 0 {
		maxIndex = 0
	}
	if next.CurrentBossIndex > maxIndex {
		next.CurrentBossIndex = maxIndex
		changed = true
	}
	if next.CurrentBossIndex < 0 {
		next.CurrentBossIndex = 0
		changed = true
	}

	if next.OverkillDamage < 0 {
		next.OverkillDamage = 0
		changed = true
	}
	if next.SequentialPhase < 0 {
		next.SequentialPhase = 0
		changed = true
	}

	return next, changed
}

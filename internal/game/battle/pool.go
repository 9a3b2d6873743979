package battle

import (
	"time"

	"github.com/taskraid/taskraid/internal/game/catalog"
	"github.com/taskraid/taskraid/internal/game/combat"
)

// SpawnResult reports the outcome of a pool draw.
type SpawnResult struct {
	// State is the next state, or nil when the spawn was a no-op.
	State *State
	// BossID is the spawned boss id, or "" on a no-op.
	BossID string
	// OverkillApplied is the banked damage consumed by this spawn.
	OverkillApplied int
}

// SpawnBoss draws one boss of the given difficulty from the day's pool and
// appends a fresh progress record, applying any banked overkill damage.
//
// An empty pool for the difficulty, or a pool id missing from the catalog,
// is a no-op: SpawnResult.State is nil and the input state is untouched.
//
// Postcondition: On success, the drawn id has moved from the pool to the
// roster, CurrentBossIndex == len(Bosses)-1, and the overkill bank holds
// only the unconsumed remainder. A boss whose initial HP reaches 0 is
// created already defeated and counted immediately; that path pays no XP
// and records no mission usage.
func SpawnBoss(state *State, difficulty catalog.Difficulty, settings Settings, cat *catalog.Catalog, src Source, now time.Time) SpawnResult {
	if state == nil {
		return SpawnResult{}
	}

	bossID, remaining, ok := DrawWithoutReplacement(state.RemainingBosses[difficulty], src)
	if !ok {
		return SpawnResult{}
	}
	if _, ok := cat.ByID(bossID); !ok {
		return SpawnResult{}
	}

	maxHP := combat.MaxHP(difficulty, settings.BossDifficultyXP, settings.BossDefeatXP)

	overkill := state.OverkillDamage
	applied := overkill
	if applied > maxHP {
		applied = maxHP
	}
	initialHP := maxHP - overkill
	if initialHP < 0 {
		initialHP = 0
	}
	carried := overkill - maxHP
	if carried < 0 {
		carried = 0
	}

	next := state.Clone()
	next.RemainingBosses[difficulty] = remaining
	next.OverkillDamage = carried

	progress := BossProgress{
		BossID:            bossID,
		MaxHP:             maxHP,
		CurrentHP:         initialHP,
		CompletedMissions: []string{},
	}
	if initialHP == 0 {
		// Instant defeat from carried overkill alone.
		defeatedAt := now
		progress.DefeatedAt = &defeatedAt
		next.TotalDefeated++
		next.DefeatedBossIds = append(next.DefeatedBossIds, bossID)
	}

	next.Bosses = append(next.Bosses, progress)
	next.CurrentBossIndex = len(next.Bosses) - 1

	return SpawnResult{State: next, BossID: bossID, OverkillApplied: applied}
}

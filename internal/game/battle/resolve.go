package battle

import (
	"time"

	"github.com/taskraid/taskraid/internal/game/catalog"
	"github.com/taskraid/taskraid/internal/game/combat"
	"github.com/taskraid/taskraid/internal/game/mission"
)

// ResolveResult reports the outcome of applying one mission completion.
type ResolveResult struct {
	// State is the next state, or nil when the completion was a no-op.
	State *State
	// Result carries the host-visible outcome (damage, defeat, XP, overkill).
	Result MissionResult
	// DefeatedBossID is set only when this hit defeated the current boss.
	DefeatedBossID string
}

// ResolveMission applies a mission's damage to the current boss.
//
// No-op conditions (State is nil, zero Result, no error): nil state, no
// current boss, current boss already defeated, unknown mission id, or the
// availability gate rejects the mission right now.
//
// Postcondition: On a hit, CurrentHP = max(0, hp-damage). On defeat, the
// spillover max(0, damage-hp) is added to the overkill bank (cumulative),
// XP is paid by difficulty with the fallback defeat XP, and the boss id is
// appended to DefeatedBossIds. Single-use missions are recorded in
// CompletedMissionIds; timed-cooldown missions in MissionUsedAt.
func ResolveMission(state *State, missions []mission.Mission, settings Settings, cat *catalog.Catalog, missionID string, now time.Time) ResolveResult {
	if state == nil {
		return ResolveResult{}
	}

	currentBoss, ok := state.CurrentBoss()
	if !ok || currentBoss.Defeated() {
		return ResolveResult{}
	}

	m, ok := mission.FindByID(missions, missionID)
	if !ok {
		return ResolveResult{}
	}

	if !mission.Available(m, state.CompletedMissionIds, state.MissionUsedAt, now) {
		return ResolveResult{}
	}

	damage := m.Damage
	newHP := currentBoss.CurrentHP - damage
	if newHP < 0 {
		newHP = 0
	}
	defeated := newHP == 0

	overkill := 0
	xpEarned := 0
	if defeated {
		overkill = damage - currentBoss.CurrentHP
		if overkill < 0 {
			overkill = 0
		}
		xpEarned = defeatXPForBoss(currentBoss.BossID, settings, cat)
	}

	next := state.Clone()

	boss := &next.Bosses[next.CurrentBossIndex]
	boss.CurrentHP = newHP
	boss.CompletedMissions = append(boss.CompletedMissions, missionID)
	if defeated {
		defeatedAt := now
		boss.DefeatedAt = &defeatedAt
		next.TotalDefeated++
		next.DefeatedBossIds = append(next.DefeatedBossIds, currentBoss.BossID)
		next.OverkillDamage += overkill
	}

	if m.CooldownMinutes > 0 {
		if next.MissionUsedAt == nil {
			next.MissionUsedAt = map[string]time.Time{}
		}
		next.MissionUsedAt[missionID] = now
	} else {
		next.CompletedMissionIds = append(next.CompletedMissionIds, missionID)
	}

	result := ResolveResult{
		State: next,
		Result: MissionResult{
			BossDefeated:   defeated,
			XPEarned:       xpEarned,
			DamageDealt:    damage,
			OverkillDamage: overkill,
		},
	}
	if defeated {
		result.DefeatedBossID = currentBoss.BossID
	}
	return result
}

// defeatXPForBoss looks up defeat XP via the boss's catalog difficulty,
// falling back to the flat defeat XP when the boss is unknown.
func defeatXPForBoss(bossID string, settings Settings, cat *catalog.Catalog) int {
	boss, ok := cat.ByID(bossID)
	if !ok {
		return settings.BossDefeatXP
	}
	return combat.DefeatXP(boss.Difficulty, settings.BossDifficultyXP, settings.BossDefeatXP)
}

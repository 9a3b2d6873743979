// Package battle implements the deterministic battle progression rules:
// boss pool allocation, damage resolution, overkill carry-over, the
// sequential onboarding phases, and the daily state lifecycle.
//
// Every operation here is pure: it takes a state snapshot and returns a new
// state, leaving the input untouched. The engine package owns mutation and
// persistence.
package battle

import (
	"time"

	"github.com/taskraid/taskraid/internal/game/catalog"
)

// DateLayout is the local calendar date format keying a DailyBattleState.
const DateLayout = "2006-01-02"

// LocalDate formats t as the local calendar date string.
func LocalDate(t time.Time) string {
	return t.Local().Format(DateLayout)
}

// BossProgress tracks one spawned boss within a day.
//
// Once DefeatedAt is set the record is terminal: it is never mutated again,
// only superseded by appending the next boss.
type BossProgress struct {
	BossID string `json:"bossId"`
	MaxHP  int    `json:"maxHP"`
	// CurrentHP is clamped to [0, MaxHP].
	CurrentHP int `json:"currentHP"`
	// CompletedMissions logs the mission ids resolved against this boss.
	CompletedMissions []string `json:"completedMissions"`
	// DefeatedAt marks the terminal state; present iff CurrentHP == 0.
	DefeatedAt *time.Time `json:"defeatedAt,omitempty"`
}

// Defeated reports whether the boss is in its terminal state.
func (b BossProgress) Defeated() bool {
	return b.DefeatedAt != nil
}

// State is the aggregate root for one calendar day of battle.
//
// Invariant: every catalog boss id appears in exactly one of
// RemainingBosses[*] or some Bosses[i].BossID for a freshly started day.
// Invariant: OverkillDamage >= 0 and is fully consumed at the next spawn.
type State struct {
	// Date is the local calendar date this state is valid for.
	Date string `json:"date"`
	// CurrentBossIndex is always len(Bosses)-1 after a spawn.
	CurrentBossIndex int `json:"currentBossIndex"`
	// Bosses is append-only within the day.
	Bosses        []BossProgress `json:"bosses"`
	TotalDefeated int            `json:"totalDefeated"`
	// RemainingBosses is the day's per-difficulty pool of unseen boss ids.
	RemainingBosses map[catalog.Difficulty][]string `json:"remainingBosses"`
	// DefeatedBossIds accumulates defeats for the day, in defeat order.
	DefeatedBossIds []string `json:"defeatedBossIds"`
	// CompletedMissionIds blocks reuse of single-use missions for the day.
	CompletedMissionIds []string `json:"completedMissionIds"`
	// MissionUsedAt tracks last use per timed-cooldown mission.
	MissionUsedAt map[string]time.Time `json:"missionUsedAt"`
	// OverkillDamage is banked for the next spawned boss.
	OverkillDamage int `json:"overkillDamage"`
	// SequentialPhase is the onboarding counter (0..5+).
	SequentialPhase int `json:"sequentialPhase"`
}

// CurrentBoss returns the boss at CurrentBossIndex.
//
// Postcondition: Returns (progress, true) when the index is in bounds,
// (zero, false) otherwise.
func (s *State) CurrentBoss() (BossProgress, bool) {
	if s == nil || s.CurrentBossIndex < 0 || s.CurrentBossIndex >= len(s.Bosses) {
		return BossProgress{}, false
	}
	return s.Bosses[s.CurrentBossIndex], true
}

// RemainingCount returns the number of unseen bosses of the given difficulty.
func (s *State) RemainingCount(difficulty catalog.Difficulty) int {
	if s == nil {
		return 0
	}
	return len(s.RemainingBosses[difficulty])
}

// TotalRemainingCount returns the number of unseen bosses across all
// difficulties.
func (s *State) TotalRemainingCount() int {
	if s == nil {
		return 0
	}
	total := 0
	for _, pool := range s.RemainingBosses {
		total += len(pool)
	}
	return total
}

// AllBossesDefeated reports whether every spawned boss is terminal.
//
// Postcondition: Returns false for a nil state or an empty roster.
func (s *State) AllBossesDefeated() bool {
	if s == nil || len(s.Bosses) == 0 {
		return false
	}
	for _, b := range s.Bosses {
		if !b.Defeated() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the state.
//
// Postcondition: Nil and empty collections stay distinct in the copy, so
// normalization can tell never-set from set-but-empty.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s

	if s.Bosses != nil {
		out.Bosses = make([]BossProgress, len(s.Bosses))
		for i, b := range s.Bosses {
			out.Bosses[i] = b
			out.Bosses[i].CompletedMissions = cloneStrings(b.CompletedMissions)
			if b.DefeatedAt != nil {
				t := *b.DefeatedAt
				out.Bosses[i].DefeatedAt = &t
			}
		}
	}

	if s.RemainingBosses != nil {
		out.RemainingBosses = make(map[catalog.Difficulty][]string, len(s.RemainingBosses))
		for d, pool := range s.RemainingBosses {
			out.RemainingBosses[d] = cloneStrings(pool)
		}
	}

	out.DefeatedBossIds = cloneStrings(s.DefeatedBossIds)
	out.CompletedMissionIds = cloneStrings(s.CompletedMissionIds)

	if s.MissionUsedAt != nil {
		out.MissionUsedAt = make(map[string]time.Time, len(s.MissionUsedAt))
		for id, t := range s.MissionUsedAt {
			out.MissionUsedAt[id] = t
		}
	}

	return &out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// MissionResult reports the outcome of resolving one mission completion.
type MissionResult struct {
	BossDefeated bool `json:"bossDefeated"`
	XPEarned     int  `json:"xpEarned"`
	DamageDealt  int  `json:"damageDealt"`
	// OverkillDamage is the spillover banked by this hit, not the total bank.
	OverkillDamage int `json:"overkillDamage"`
}

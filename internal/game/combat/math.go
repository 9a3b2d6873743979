// Package combat provides pure combat math for the battle engine.
//
// Boss HP and defeat XP are derived from the per-difficulty XP table in the
// player's battle settings; nothing here reads or writes mutable state.
package combat

import (
	"math"

	"github.com/taskraid/taskraid/internal/game/catalog"
)

// HPPerXP is the HP-per-XP multiplier: a boss's max HP is half its XP value.
const HPPerXP = 0.5

// DefeatXP returns the XP paid for defeating a boss of the given difficulty.
//
// Postcondition: Returns the difficulty's entry in the XP table, or the
// fallback defeat XP when the difficulty key is missing.
func DefeatXP(difficulty catalog.Difficulty, xpTable map[catalog.Difficulty]int, fallbackXP int) int {
	if xp, ok := xpTable[difficulty]; ok {
		return xp
	}
	return fallbackXP
}

// MaxHP returns the max HP of a freshly spawned boss of the given difficulty.
//
// Postcondition: Returns floor(xp * HPPerXP), never below 1 for a positive
// XP value.
func MaxHP(difficulty catalog.Difficulty, xpTable map[catalog.Difficulty]int, fallbackXP int) int {
	xp := DefeatXP(difficulty, xpTable, fallbackXP)
	hp := int(math.Floor(float64(xp) * HPPerXP))
	if hp < 1 && xp > 0 {
		return 1
	}
	if hp < 0 {
		return 0
	}
	return hp
}

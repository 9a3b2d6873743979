package mission

import (
	"math"
	"time"
)

// CooldownDailyLimit is the CooldownRemaining sentinel for missions with
// single-use-per-day semantics (no timed cooldown).
const CooldownDailyLimit = -1

// CooldownRemaining returns the minutes left before a timed-cooldown mission
// may be used again.
//
// Postcondition: Returns CooldownDailyLimit (-1) for missions without a
// cooldown, 0 when the mission is usable now, and otherwise the remaining
// minutes rounded up.
func CooldownRemaining(m Mission, usedAt map[string]time.Time, now time.Time) int {
	if m.CooldownMinutes <= 0 {
		return CooldownDailyLimit
	}

	lastUsed, ok := usedAt[m.ID]
	if !ok {
		return 0
	}

	elapsedMinutes := now.Sub(lastUsed).Minutes()
	remaining := float64(m.CooldownMinutes) - elapsedMinutes
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining))
}

// Available reports whether a mission may be used right now.
//
// Disabled missions are never available. Missions without a cooldown are
// single-use per day: available iff not in completedIDs. Missions with a
// cooldown are available once the cooldown has elapsed since last use.
func Available(m Mission, completedIDs []string, usedAt map[string]time.Time, now time.Time) bool {
	if !m.Enabled {
		return false
	}

	if m.CooldownMinutes <= 0 {
		for _, id := range completedIDs {
			if id == m.ID {
				return false
			}
		}
		return true
	}

	return CooldownRemaining(m, usedAt, now) == 0
}

package engine

import (
	"github.com/taskraid/taskraid/internal/game/catalog"
)

// DailyStats summarizes one day's defeats for the album view.
type DailyStats struct {
	Date            string                     `json:"date"`
	DefeatedCount   int                        `json:"defeatedCount"`
	DefeatedBossIds []string                   `json:"defeatedBossIds"`
	ByDifficulty    map[catalog.Difficulty]int `json:"byDifficulty"`
}

// Stats projects today's defeat totals broken down by difficulty.
//
// Postcondition: Ids missing from the catalog still count toward
// DefeatedCount but not toward any difficulty bucket.
func (e *Engine) Stats() DailyStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := DailyStats{
		DefeatedBossIds: []string{},
		ByDifficulty: map[catalog.Difficulty]int{
			catalog.DifficultyEasy:   0,
			catalog.DifficultyNormal: 0,
			catalog.DifficultyHard:   0,
			catalog.DifficultyEpic:   0,
		},
	}
	if e.state == nil {
		return stats
	}

	stats.Date = e.state.Date
	stats.DefeatedCount = e.state.TotalDefeated
	stats.DefeatedBossIds = append(stats.DefeatedBossIds, e.state.DefeatedBossIds...)
	for _, id := range e.state.DefeatedBossIds {
		if boss, ok := e.cat.ByID(id); ok {
			stats.ByDifficulty[boss.Difficulty]++
		}
	}
	return stats
}

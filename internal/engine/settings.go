package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskraid/taskraid/internal/game/battle"
	"github.com/taskraid/taskraid/internal/game/mission"
)

// UpdateSettings applies a partial settings change and persists the merged
// record whole.
//
// Postcondition: The XP table merges key-by-key; task damage rules are
// validated before the merge and sanitized by it. On persistence failure
// the in-memory settings are unchanged.
func (e *Engine) UpdateSettings(ctx context.Context, update battle.SettingsUpdate) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}

	if update.TaskDamageRules != nil {
		if err := mission.ValidateTaskDamageRules(mission.SanitizeTaskDamageRules(update.TaskDamageRules)); err != nil {
			return fmt.Errorf("rejecting settings update: %w", err)
		}
	}

	next := battle.MergeSettings(e.settings, update)
	if err := e.store.SaveSettings(ctx, next); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	e.settings = next

	e.logger.Info("settings updated",
		zap.Int("default_mission_damage", next.DefaultMissionDamage),
		zap.Int("boss_defeat_xp", next.BossDefeatXP),
	)
	return nil
}

package battle

import (
	"github.com/taskraid/taskraid/internal/game/catalog"
	"github.com/taskraid/taskraid/internal/game/mission"
)

// Settings holds the user-tunable battle configuration. It is loaded once,
// mutated via merge-update, and persisted as a whole record.
type Settings struct {
	// DailyBossCount and BossBaseHP predate the pool model. They are kept
	// so old saved settings remain readable but the engine ignores them.
	DailyBossCount int `json:"dailyBossCount,omitempty"`
	BossBaseHP     int `json:"bossBaseHP,omitempty"`

	// BossDefeatXP is the fallback XP when a difficulty is missing from the table.
	BossDefeatXP int `json:"bossDefeatXP"`
	// DefaultMissionDamage seeds new missions created without explicit damage.
	DefaultMissionDamage int `json:"defaultMissionDamage"`
	// BossDifficultyXP maps difficulty to defeat XP; max HP derives from it.
	BossDifficultyXP map[catalog.Difficulty]int `json:"bossDifficultyXP"`
	// TaskDamageRules map tracked-task durations to bonus damage.
	TaskDamageRules []mission.TaskDamageRule `json:"taskCompletionDamageRules"`

	ShowBattleInSidebar bool `json:"showBattleInSidebar"`
	ShowBossImage       bool `json:"showBossImage"`
	BattleSoundEffects  bool `json:"battleSoundEffects"`
}

// DefaultSettings returns the out-of-box battle settings.
func DefaultSettings() Settings {
	return Settings{
		BossDefeatXP:         40,
		DefaultMissionDamage: 15,
		BossDifficultyXP: map[catalog.Difficulty]int{
			catalog.DifficultyEasy:   20,
			catalog.DifficultyNormal: 40,
			catalog.DifficultyHard:   80,
			catalog.DifficultyEpic:   120,
		},
		ShowBattleInSidebar: true,
		ShowBossImage:       true,
		BattleSoundEffects:  true,
	}
}

// SettingsUpdate carries a partial settings change. Nil fields leave the
// corresponding setting unchanged; the XP table merges key-by-key.
type SettingsUpdate struct {
	BossDefeatXP         *int
	DefaultMissionDamage *int
	BossDifficultyXP     map[catalog.Difficulty]int
	TaskDamageRules      []mission.TaskDamageRule
	ShowBattleInSidebar  *bool
	ShowBossImage        *bool
	BattleSoundEffects   *bool
}

// MergeSettings applies a partial update to settings.
//
// Postcondition: Returns a new Settings value; the XP table is merged
// key-by-key rather than replaced, and task damage rules are sanitized.
func MergeSettings(settings Settings, update SettingsUpdate) Settings {
	out := settings

	out.BossDifficultyXP = make(map[catalog.Difficulty]int, len(settings.BossDifficultyXP))
	for d, xp := range settings.BossDifficultyXP {
		out.BossDifficultyXP[d] = xp
	}
	for d, xp := range update.BossDifficultyXP {
		out.BossDifficultyXP[d] = xp
	}

	if update.TaskDamageRules != nil {
		out.TaskDamageRules = mission.SanitizeTaskDamageRules(update.TaskDamageRules)
	} else {
		out.TaskDamageRules = append([]mission.TaskDamageRule(nil), settings.TaskDamageRules...)
	}

	if update.BossDefeatXP != nil {
		out.BossDefeatXP = *update.BossDefeatXP
	}
	if update.DefaultMissionDamage != nil {
		out.DefaultMissionDamage = *update.DefaultMissionDamage
	}
	if update.ShowBattleInSidebar != nil {
		out.ShowBattleInSidebar = *update.ShowBattleInSidebar
	}
	if update.ShowBossImage != nil {
		out.ShowBossImage = *update.ShowBossImage
	}
	if update.BattleSoundEffects != nil {
		out.BattleSoundEffects = *update.BattleSoundEffects
	}

	return out
}

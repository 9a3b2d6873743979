package mission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/taskraid/taskraid/internal/game/mission"
)

func TestSanitizeTaskDamageRules(t *testing.T) {
	in := []mission.TaskDamageRule{
		{MinimumDuration: 60, Damage: 30},
		{MinimumDuration: 0, Damage: 5},     // below duration floor, dropped
		{MinimumDuration: 25, Damage: 0},    // below damage floor, dropped
		{MinimumDuration: 25, Damage: 10},   // first rule for threshold 25
		{MinimumDuration: 25, Damage: 99},   // duplicate threshold, dropped
		{MinimumDuration: 2000, Damage: 50}, // above duration ceiling, dropped
	}

	out := mission.SanitizeTaskDamageRules(in)
	require.Equal(t, []mission.TaskDamageRule{
		{MinimumDuration: 25, Damage: 10},
		{MinimumDuration: 60, Damage: 30},
	}, out)
	assert.NoError(t, mission.ValidateTaskDamageRules(out))
}

func TestSanitizeTaskDamageRules_Empty(t *testing.T) {
	assert.Empty(t, mission.SanitizeTaskDamageRules(nil))
}

func TestValidateTaskDamageRules(t *testing.T) {
	err := mission.ValidateTaskDamageRules([]mission.TaskDamageRule{
		{MinimumDuration: 25, Damage: 10},
		{MinimumDuration: 25, Damage: 20},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, mission.ErrInvalidTaskDamageRules)

	err = mission.ValidateTaskDamageRules([]mission.TaskDamageRule{
		{MinimumDuration: 25, Damage: 0},
	})
	assert.ErrorIs(t, err, mission.ErrInvalidTaskDamageRules)

	assert.NoError(t, mission.ValidateTaskDamageRules(nil))
}

func TestDamageForDuration(t *testing.T) {
	rules := []mission.TaskDamageRule{
		{MinimumDuration: 25, Damage: 10},
		{MinimumDuration: 60, Damage: 30},
		{MinimumDuration: 120, Damage: 75},
	}

	assert.Equal(t, 0, mission.DamageForDuration(rules, 10))
	assert.Equal(t, 10, mission.DamageForDuration(rules, 25))
	assert.Equal(t, 10, mission.DamageForDuration(rules, 59))
	assert.Equal(t, 30, mission.DamageForDuration(rules, 60))
	assert.Equal(t, 75, mission.DamageForDuration(rules, 500))
	assert.Equal(t, 0, mission.DamageForDuration(nil, 500))
}

func TestSanitizeTaskDamageRules_Properties(t *testing.T) {
	ruleGen := rapid.Custom(func(t *rapid.T) mission.TaskDamageRule {
		return mission.TaskDamageRule{
			MinimumDuration: rapid.IntRange(-100, 2000).Draw(t, "duration"),
			Damage:          rapid.IntRange(-100, 2000).Draw(t, "damage"),
		}
	})

	rapid.Check(t, func(t *rapid.T) {
		in := rapid.SliceOfN(ruleGen, 0, 20).Draw(t, "rules")

		out := mission.SanitizeTaskDamageRules(in)

		// Sanitized rules always pass validation.
		require.NoError(t, mission.ValidateTaskDamageRules(out))
		// Sanitizing is idempotent.
		require.Equal(t, out, mission.SanitizeTaskDamageRules(out))
	})
}

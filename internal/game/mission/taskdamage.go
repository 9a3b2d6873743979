package mission

import (
	"errors"
	"math"
	"sort"
)

// Bounds for task-completion damage rules. Durations are minutes of focused
// work; damage is applied to the current boss when a tracked task completes.
const (
	TaskDamageDurationMin = 1
	TaskDamageDurationMax = 1440
	TaskDamageMin         = 1
	TaskDamageMax         = 999
)

// TaskDamageRule maps a minimum task duration to the damage it deals.
// Among all rules whose threshold is <= the completed duration, the largest
// threshold wins.
type TaskDamageRule struct {
	MinimumDuration int `json:"minimumDuration"`
	Damage          int `json:"damage"`
}

// ErrInvalidTaskDamageRules is returned when a rule set fails validation.
var ErrInvalidTaskDamageRules = errors.New("invalid task damage rules")

func toPositiveInt(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

func validRule(r TaskDamageRule) bool {
	return r.MinimumDuration >= TaskDamageDurationMin &&
		r.MinimumDuration <= TaskDamageDurationMax &&
		r.Damage >= TaskDamageMin &&
		r.Damage <= TaskDamageMax
}

// SanitizeTaskDamageRules normalizes rules from user input or remote data:
// rounds to integers, drops out-of-bounds rules, sorts ascending by
// threshold, and keeps only the first rule per threshold.
//
// Postcondition: The result has strictly increasing MinimumDuration values.
func SanitizeTaskDamageRules(rules []TaskDamageRule) []TaskDamageRule {
	normalized := make([]TaskDamageRule, 0, len(rules))
	for _, r := range rules {
		nr := TaskDamageRule{
			MinimumDuration: toPositiveInt(float64(r.MinimumDuration)),
			Damage:          toPositiveInt(float64(r.Damage)),
		}
		if validRule(nr) {
			normalized = append(normalized, nr)
		}
	}

	sort.SliceStable(normalized, func(i, j int) bool {
		return normalized[i].MinimumDuration < normalized[j].MinimumDuration
	})

	seen := make(map[int]bool, len(normalized))
	deduped := normalized[:0]
	for _, r := range normalized {
		if seen[r.MinimumDuration] {
			continue
		}
		seen[r.MinimumDuration] = true
		deduped = append(deduped, r)
	}
	return deduped
}

// ValidateTaskDamageRules checks a rule set without modifying it.
//
// Postcondition: Returns nil when every rule is positive and thresholds are
// strictly increasing; otherwise an error wrapping ErrInvalidTaskDamageRules.
func ValidateTaskDamageRules(rules []TaskDamageRule) error {
	for _, r := range rules {
		if r.MinimumDuration <= 0 || r.Damage <= 0 {
			return errors.Join(ErrInvalidTaskDamageRules,
				errors.New("duration and damage must be positive"))
		}
	}
	for i := 1; i < len(rules); i++ {
		if rules[i].MinimumDuration <= rules[i-1].MinimumDuration {
			return errors.Join(ErrInvalidTaskDamageRules,
				errors.New("threshold durations must be strictly increasing"))
		}
	}
	return nil
}

// DamageForDuration returns the damage for a completed task of the given
// duration in minutes.
//
// Precondition: rules must be sanitized (ascending thresholds).
// Postcondition: Returns the damage of the largest threshold <= duration,
// or 0 when no rule applies.
func DamageForDuration(rules []TaskDamageRule, durationMinutes int) int {
	damage := 0
	for _, r := range rules {
		if r.MinimumDuration > durationMinutes {
			break
		}
		damage = r.Damage
	}
	return damage
}

package battle

import "github.com/taskraid/taskraid/internal/game/catalog"

// sequentialPhaseDifficulty maps the onboarding phase to the mandatory next
// difficulty. Hard appears twice before epic. An empty entry means free
// difficulty selection has unlocked.
var sequentialPhaseDifficulty = []catalog.Difficulty{
	catalog.DifficultyEasy,
	catalog.DifficultyNormal,
	catalog.DifficultyHard,
	catalog.DifficultyHard,
	catalog.DifficultyEpic,
	"",
}

// SequentialPhaseCount is the phase value at which free selection unlocks.
const SequentialPhaseCount = 5

// NextSequentialDifficulty returns the difficulty the host must offer at the
// given onboarding phase.
//
// Postcondition: Returns ("", false) once the ramp is complete (phase >= 5);
// otherwise (difficulty, true). This is a read-only policy function: it
// never advances the phase counter.
func NextSequentialDifficulty(phase int) (catalog.Difficulty, bool) {
	if phase < 0 {
		phase = 0
	}
	if phase >= len(sequentialPhaseDifficulty)-1 {
		return "", false
	}
	return sequentialPhaseDifficulty[phase], true
}

// SequentialPhaseComplete reports whether the mandatory onboarding ramp is
// finished and free difficulty selection is unlocked.
func SequentialPhaseComplete(phase int) bool {
	return phase >= SequentialPhaseCount
}

package battle_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskraid/taskraid/internal/game/catalog"
)

// seqSource replays a fixed series of draw indices, then sticks at the last
// one. It pins pool draws for deterministic tests.
type seqSource struct {
	indices []int
	pos     int
}

func (s *seqSource) Intn(n int) int {
	if n <= 0 {
		panic("seqSource: Intn called with n <= 0")
	}
	i := 0
	if s.pos < len(s.indices) {
		i = s.indices[s.pos]
		s.pos++
	} else if len(s.indices) > 0 {
		i = s.indices[len(s.indices)-1]
	}
	return i % n
}

// firstSource always draws index 0.
func firstSource() *seqSource { return &seqSource{} }

// testCatalog builds a small fixed catalog: 2 easy, 2 normal, 1 hard, 1 epic.
func testCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Boss{
		{ID: "easy_1", Name: "Easy One", Difficulty: catalog.DifficultyEasy},
		{ID: "easy_2", Name: "Easy Two", Difficulty: catalog.DifficultyEasy},
		{ID: "normal_1", Name: "Normal One", Difficulty: catalog.DifficultyNormal},
		{ID: "normal_2", Name: "Normal Two", Difficulty: catalog.DifficultyNormal},
		{ID: "hard_1", Name: "Hard One", Difficulty: catalog.DifficultyHard},
		{ID: "epic_1", Name: "Epic One", Difficulty: catalog.DifficultyEpic},
	})
	require.NoError(t, err)
	return cat
}

package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/taskraid/taskraid/internal/engine"
	"github.com/taskraid/taskraid/internal/game/battle"
	"github.com/taskraid/taskraid/internal/game/catalog"
	"github.com/taskraid/taskraid/internal/game/mission"
	"github.com/taskraid/taskraid/internal/storage/memory"
)

// firstDraw always picks index 0, pinning pool draws to catalog order.
type firstDraw struct{}

func (firstDraw) Intn(n int) int {
	if n <= 0 {
		panic("firstDraw: Intn called with n <= 0")
	}
	return 0
}

// testClock is a settable clock for driving day rollovers.
type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time { return c.now }

func testCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.Boss{
		{ID: "easy_1", Name: "Easy One", Difficulty: catalog.DifficultyEasy},
		{ID: "easy_2", Name: "Easy Two", Difficulty: catalog.DifficultyEasy},
		{ID: "normal_1", Name: "Normal One", Difficulty: catalog.DifficultyNormal},
		{ID: "hard_1", Name: "Hard One", Difficulty: catalog.DifficultyHard},
		{ID: "epic_1", Name: "Epic One", Difficulty: catalog.DifficultyEpic},
	})
	require.NoError(t, err)
	return cat
}

// newTestEngine builds an initialized engine over a fresh memory store with
// a pinned clock and deterministic draws.
func newTestEngine(t *testing.T) (*engine.Engine, *memory.Store, *testClock) {
	t.Helper()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	eng := engine.New(store, testCatalog(t), zaptest.NewLogger(t),
		engine.WithSource(firstDraw{}),
		engine.WithClock(clock.Now),
	)
	require.NoError(t, eng.Initialize(context.Background()))
	return eng, store, clock
}

func addMission(t *testing.T, eng *engine.Engine, text string, damage, cooldown int) mission.Mission {
	t.Helper()
	m, err := eng.AddMission(context.Background(), text, damage, cooldown, 0)
	require.NoError(t, err)
	return m
}

func TestInitialize_FreshStore(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	state := eng.State()
	require.NotNil(t, state)
	assert.Equal(t, "2025-06-01", state.Date)
	require.Len(t, state.Bosses, 1)
	assert.Equal(t, "easy_1", state.Bosses[0].BossID)
	assert.Equal(t, 10, state.Bosses[0].CurrentHP)
	assert.Equal(t, 4, eng.TotalRemainingBossCount())

	assert.Equal(t, battle.DefaultSettings(), eng.Settings())
	assert.Empty(t, eng.Missions())
}

func TestInitialize_ReloadsSameDay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	cat := testCatalog(t)

	first := engine.New(store, cat, zaptest.NewLogger(t),
		engine.WithSource(firstDraw{}), engine.WithClock(clock.Now))
	require.NoError(t, first.Initialize(ctx))
	m := addMission(t, first, "Meditate", 15, 0)
	_, err := first.CompleteMission(ctx, m.ID)
	require.NoError(t, err)

	// A second engine over the same store picks up where the first left off.
	second := engine.New(store, cat, zaptest.NewLogger(t),
		engine.WithSource(firstDraw{}), engine.WithClock(clock.Now))
	require.NoError(t, second.Initialize(ctx))

	state := second.State()
	assert.Equal(t, first.State(), state)
	assert.Equal(t, []string{m.ID}, state.CompletedMissionIds)
}

func TestInitialize_StaleDateStartsNewDay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cat := testCatalog(t)
	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}

	first := engine.New(store, cat, zaptest.NewLogger(t),
		engine.WithSource(firstDraw{}), engine.WithClock(clock.Now))
	require.NoError(t, first.Initialize(ctx))
	m := addMission(t, first, "Meditate", 15, 0)
	_, err := first.CompleteMission(ctx, m.ID)
	require.NoError(t, err)

	clock.now = clock.now.Add(24 * time.Hour)
	second := engine.New(store, cat, zaptest.NewLogger(t),
		engine.WithSource(firstDraw{}), engine.WithClock(clock.Now))
	require.NoError(t, second.Initialize(ctx))

	state := second.State()
	assert.Equal(t, "2025-06-02", state.Date)
	assert.Empty(t, state.CompletedMissionIds)
	assert.Equal(t, 0, state.TotalDefeated)
	// Missions survive the rollover; only the daily state resets.
	require.Len(t, second.Missions(), 1)
}

func TestInitialize_NormalizesLegacyState(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cat := testCatalog(t)
	clock := &testClock{now: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}

	// A pre-pool-model save for today: no pool, nil histories.
	require.NoError(t, store.SaveDailyState(ctx, &battle.State{
		Date: "2025-06-01",
		Bosses: []battle.BossProgress{
			{BossID: "easy_1", MaxHP: 10, CurrentHP: 3},
		},
	}))

	eng := engine.New(store, cat, zaptest.NewLogger(t),
		engine.WithSource(firstDraw{}), engine.WithClock(clock.Now))
	require.NoError(t, eng.Initialize(ctx))

	state := eng.State()
	assert.Equal(t, 3, state.Bosses[0].CurrentHP, "live boss survives normalization")
	assert.Equal(t, 4, state.TotalRemainingCount(), "pool rebuilt minus the seen boss")
	assert.NotNil(t, state.CompletedMissionIds)

	// The normalized state was written back.
	saved, err := store.LoadDailyState(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, saved)
}

func TestOperationsBeforeInitialize(t *testing.T) {
	eng := engine.New(memory.NewStore(), testCatalog(t), zaptest.NewLogger(t))
	ctx := context.Background()

	_, err := eng.CompleteMission(ctx, "m")
	assert.ErrorIs(t, err, engine.ErrNotInitialized)

	_, err = eng.SpawnBossByDifficulty(ctx, catalog.DifficultyEasy)
	assert.ErrorIs(t, err, engine.ErrNotInitialized)

	_, err = eng.AddMission(ctx, "x", 1, 0, 0)
	assert.ErrorIs(t, err, engine.ErrNotInitialized)

	assert.ErrorIs(t, eng.StartNewDay(ctx), engine.ErrNotInitialized)
	assert.ErrorIs(t, eng.UpdateSettings(ctx, battle.SettingsUpdate{}), engine.ErrNotInitialized)
}

func TestCompleteMission_DamagesAndDefeats(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	m := addMission(t, eng, "Run 5k", 15, 0)

	// Easy boss has 10 HP: one 15-damage hit defeats it with 5 overkill.
	result, err := eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, result.BossDefeated)
	assert.Equal(t, 15, result.DamageDealt)
	assert.Equal(t, 5, result.OverkillDamage)
	assert.Equal(t, 20, result.XPEarned)

	state := eng.State()
	assert.Equal(t, 1, state.TotalDefeated)
	assert.Equal(t, []string{"easy_1"}, state.DefeatedBossIds)
	assert.Equal(t, 5, state.OverkillDamage)
	assert.True(t, eng.AllBossesDefeated())

	history, err := eng.DefeatedHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"easy_1"}, history)
}

func TestCompleteMission_DomainNoOps(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	// Unknown mission: zero result, nil error.
	result, err := eng.CompleteMission(ctx, "mission_missing")
	require.NoError(t, err)
	assert.Zero(t, result)

	// Used single-use mission: same contract.
	m := addMission(t, eng, "Stretch", 5, 0)
	_, err = eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)

	result, err = eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)
	assert.Zero(t, result)
}

func TestCompleteMission_FailClosed(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	m := addMission(t, eng, "Run 5k", 15, 0)

	before := eng.State()
	store.SetSaveError(errors.New("disk full"))

	_, err := eng.CompleteMission(ctx, m.ID)
	require.Error(t, err)

	// Published state did not move: the failed write discarded the snapshot.
	assert.Equal(t, before, eng.State())
	assert.False(t, eng.AllBossesDefeated())

	// Once the store recovers the same completion goes through.
	store.SetSaveError(nil)
	result, err := eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, result.BossDefeated)
}

func TestSpawnBossByDifficulty(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	spawned, err := eng.SpawnBossByDifficulty(ctx, catalog.DifficultyNormal)
	require.NoError(t, err)
	assert.True(t, spawned)

	boss, ok := eng.GetCurrentBoss()
	require.True(t, ok)
	assert.Equal(t, "normal_1", boss.BossID)
	assert.Equal(t, 20, boss.MaxHP)
	assert.Equal(t, 0, eng.RemainingBossCount(catalog.DifficultyNormal))
}

func TestSpawnBossByDifficulty_PoolExhaustedIsNoOp(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	spawned, err := eng.SpawnBossByDifficulty(ctx, catalog.DifficultyHard)
	require.NoError(t, err)
	require.True(t, spawned)

	// Only one hard boss in the catalog: the second draw finds nothing.
	spawned, err = eng.SpawnBossByDifficulty(ctx, catalog.DifficultyHard)
	require.NoError(t, err)
	assert.False(t, spawned)
}

func TestSpawnBossByDifficulty_UnknownDifficulty(t *testing.T) {
	eng, _, _ := newTestEngine(t)

	_, err := eng.SpawnBossByDifficulty(context.Background(), "legendary")
	assert.ErrorIs(t, err, engine.ErrUnknownDifficulty)
}

func TestSpawnBossByDifficulty_OverkillInstantDefeat(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	// 25 damage against the 10 HP easy boss banks 15 overkill, enough to
	// flatten the second 10 HP easy boss on spawn and carry 5 onward.
	m := addMission(t, eng, "Deep work block", 25, 0)
	result, err := eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)
	require.True(t, result.BossDefeated)
	require.Equal(t, 15, result.OverkillDamage)

	spawned, err := eng.SpawnBossByDifficulty(ctx, catalog.DifficultyEasy)
	require.NoError(t, err)
	require.True(t, spawned)

	boss, ok := eng.GetCurrentBoss()
	require.True(t, ok)
	assert.Equal(t, "easy_2", boss.BossID)
	assert.True(t, boss.Defeated())

	state := eng.State()
	assert.Equal(t, 2, state.TotalDefeated)
	assert.Equal(t, 5, state.OverkillDamage)

	history, err := eng.DefeatedHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"easy_1", "easy_2"}, history)
}

func TestDayRolloverOnMutatingCall(t *testing.T) {
	eng, _, clock := newTestEngine(t)
	ctx := context.Background()
	m := addMission(t, eng, "Run 5k", 15, 0)

	_, err := eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, 1, eng.State().TotalDefeated)

	// Past midnight the next mutating call resets the day first. The same
	// single-use mission resolves again, which a same-day call would reject.
	clock.now = clock.now.Add(24 * time.Hour)
	result, err := eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)
	assert.True(t, result.BossDefeated)
	assert.Equal(t, 15, result.DamageDealt)

	state := eng.State()
	assert.Equal(t, "2025-06-02", state.Date)
	assert.Equal(t, 1, state.TotalDefeated)
	assert.Equal(t, []string{m.ID}, state.CompletedMissionIds)
	// The fresh day rebuilt the full pool before the draw.
	assert.Equal(t, 4, state.TotalRemainingCount())
}

func TestStartNewDay(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	m := addMission(t, eng, "Run 5k", 15, 0)
	_, err := eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)

	require.NoError(t, eng.StartNewDay(ctx))

	state := eng.State()
	assert.Equal(t, 0, state.TotalDefeated)
	assert.Empty(t, state.CompletedMissionIds)
	assert.Equal(t, 0, state.OverkillDamage)
	require.Len(t, state.Bosses, 1)
	assert.Equal(t, state.Bosses[0].MaxHP, state.Bosses[0].CurrentHP)
}

func TestSequentialPhase(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	difficulty, ok := eng.NextSequentialDifficulty()
	require.True(t, ok)
	assert.Equal(t, catalog.DifficultyEasy, difficulty)

	ramp := []catalog.Difficulty{
		catalog.DifficultyNormal,
		catalog.DifficultyHard,
		catalog.DifficultyHard,
		catalog.DifficultyEpic,
	}
	for _, want := range ramp {
		require.NoError(t, eng.AdvanceSequentialPhase(ctx))
		difficulty, ok = eng.NextSequentialDifficulty()
		require.True(t, ok)
		assert.Equal(t, want, difficulty)
	}

	require.NoError(t, eng.AdvanceSequentialPhase(ctx))
	_, ok = eng.NextSequentialDifficulty()
	assert.False(t, ok, "free selection unlocks after the ramp")

	// Further advances are no-ops.
	require.NoError(t, eng.AdvanceSequentialPhase(ctx))
	assert.Equal(t, 5, eng.State().SequentialPhase)
}

func TestActiveMissions(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()

	first := addMission(t, eng, "First", 5, 0)
	second := addMission(t, eng, "Second", 5, 0)
	third := addMission(t, eng, "Third", 5, 30)

	require.NoError(t, eng.ToggleMission(ctx, second.ID))

	active := eng.ActiveMissions()
	require.Len(t, active, 2)
	assert.Equal(t, first.ID, active[0].ID)
	assert.Equal(t, third.ID, active[1].ID)

	// Completing the single-use mission drops it from the active list;
	// the cooldown mission drops until its cooldown elapses.
	_, err := eng.CompleteMission(ctx, first.ID)
	require.NoError(t, err)
	_, err = eng.CompleteMission(ctx, third.ID)
	require.NoError(t, err)

	assert.Empty(t, eng.ActiveMissions())
}

func TestUpdateSettings(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()

	damage := 25
	xp := 500
	require.NoError(t, eng.UpdateSettings(ctx, battle.SettingsUpdate{
		DefaultMissionDamage: &damage,
		BossDifficultyXP:     map[catalog.Difficulty]int{catalog.DifficultyEpic: xp},
	}))

	settings := eng.Settings()
	assert.Equal(t, 25, settings.DefaultMissionDamage)
	assert.Equal(t, 500, settings.BossDifficultyXP[catalog.DifficultyEpic])
	assert.Equal(t, 20, settings.BossDifficultyXP[catalog.DifficultyEasy])

	saved, err := store.LoadSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, saved)
}

func TestUpdateSettings_SanitizesRulesAndFailsClosed(t *testing.T) {
	eng, store, _ := newTestEngine(t)
	ctx := context.Background()
	before := eng.Settings()

	require.NoError(t, eng.UpdateSettings(ctx, battle.SettingsUpdate{
		TaskDamageRules: []mission.TaskDamageRule{
			{MinimumDuration: -1, Damage: -1},
			{MinimumDuration: 25, Damage: 10},
		},
	}))
	assert.Equal(t, []mission.TaskDamageRule{{MinimumDuration: 25, Damage: 10}},
		eng.Settings().TaskDamageRules)

	store.SetSaveError(errors.New("disk full"))
	xp := 99
	err := eng.UpdateSettings(ctx, battle.SettingsUpdate{BossDefeatXP: &xp})
	require.Error(t, err)
	assert.Equal(t, before.BossDefeatXP, eng.Settings().BossDefeatXP)
}

func TestStats(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	ctx := context.Background()
	m := addMission(t, eng, "Run 5k", 25, 30)

	_, err := eng.CompleteMission(ctx, m.ID)
	require.NoError(t, err)

	// Banked 15 overkill flattens easy_2 on spawn.
	spawned, err := eng.SpawnBossByDifficulty(ctx, catalog.DifficultyEasy)
	require.NoError(t, err)
	require.True(t, spawned)

	stats := eng.Stats()
	assert.Equal(t, "2025-06-01", stats.Date)
	assert.Equal(t, 2, stats.DefeatedCount)
	assert.Equal(t, []string{"easy_1", "easy_2"}, stats.DefeatedBossIds)
	assert.Equal(t, 2, stats.ByDifficulty[catalog.DifficultyEasy])
	assert.Equal(t, 0, stats.ByDifficulty[catalog.DifficultyEpic])
}

package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskraid/taskraid/internal/game/mission"
)

// AddMission creates a mission at the end of the list. A non-positive
// damage falls back to the default mission damage from settings.
//
// Postcondition: On success the mission list is durable and the created
// mission is returned. On persistence failure the list is unchanged.
func (e *Engine) AddMission(ctx context.Context, text string, damage, cooldownMinutes, tier int) (mission.Mission, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return mission.Mission{}, ErrNotInitialized
	}

	if damage <= 0 {
		damage = e.settings.DefaultMissionDamage
	}
	m := mission.New(mission.NewParams{
		Text:            text,
		Damage:          damage,
		Order:           len(e.missions),
		CooldownMinutes: cooldownMinutes,
		Tier:            tier,
		Now:             e.now(),
	})

	next := append(append([]mission.Mission(nil), e.missions...), m)
	if err := e.store.SaveMissions(ctx, next); err != nil {
		return mission.Mission{}, fmt.Errorf("saving new mission: %w", err)
	}
	e.missions = next

	e.logger.Info("mission added",
		zap.String("mission_id", m.ID),
		zap.Int("damage", m.Damage),
		zap.Int("cooldown_minutes", m.CooldownMinutes),
	)
	return m, nil
}

// UpdateMission patches the mission with the given id.
func (e *Engine) UpdateMission(ctx context.Context, missionID string, update mission.Update) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if _, ok := mission.FindByID(e.missions, missionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMission, missionID)
	}

	next := mission.Apply(e.missions, missionID, update, e.now())
	if err := e.store.SaveMissions(ctx, next); err != nil {
		return fmt.Errorf("saving update of mission %s: %w", missionID, err)
	}
	e.missions = next
	return nil
}

// DeleteMission removes a mission and reindexes display order over the rest.
func (e *Engine) DeleteMission(ctx context.Context, missionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if _, ok := mission.FindByID(e.missions, missionID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMission, missionID)
	}

	next := mission.Delete(e.missions, missionID)
	if err := e.store.SaveMissions(ctx, next); err != nil {
		return fmt.Errorf("saving deletion of mission %s: %w", missionID, err)
	}
	e.missions = next

	e.logger.Info("mission deleted", zap.String("mission_id", missionID))
	return nil
}

// ReorderMissions rewrites display order to match orderedIDs, which must be
// a permutation of the current mission ids.
func (e *Engine) ReorderMissions(ctx context.Context, orderedIDs []string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}
	if len(orderedIDs) != len(e.missions) {
		return fmt.Errorf("reorder requires all %d mission ids, got %d", len(e.missions), len(orderedIDs))
	}

	reordered := make([]mission.Mission, 0, len(orderedIDs))
	for _, id := range orderedIDs {
		m, ok := mission.FindByID(e.missions, id)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownMission, id)
		}
		reordered = append(reordered, m)
	}
	if len(dedupIDs(orderedIDs)) != len(orderedIDs) {
		return fmt.Errorf("reorder ids contain duplicates")
	}

	next := mission.Reorder(reordered, e.now())
	if err := e.store.SaveMissions(ctx, next); err != nil {
		return fmt.Errorf("saving mission reorder: %w", err)
	}
	e.missions = next
	return nil
}

func dedupIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// ToggleMission flips a mission's enabled flag.
func (e *Engine) ToggleMission(ctx context.Context, missionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return ErrNotInitialized
	}

	m, ok := mission.FindByID(e.missions, missionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMission, missionID)
	}

	enabled := !m.Enabled
	next := mission.Apply(e.missions, missionID, mission.Update{Enabled: &enabled}, e.now())
	if err := e.store.SaveMissions(ctx, next); err != nil {
		return fmt.Errorf("saving toggle of mission %s: %w", missionID, err)
	}
	e.missions = next
	return nil
}

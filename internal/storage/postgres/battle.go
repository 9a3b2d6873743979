package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskraid/taskraid/internal/game/battle"
	"github.com/taskraid/taskraid/internal/game/mission"
	"github.com/taskraid/taskraid/internal/storage"
)

// Single-row record keys. Settings and daily state are whole-record JSONB
// documents; a CHECK constraint pins them to one row each.
const singletonID = 1

// BattleRepository implements storage.Store on PostgreSQL.
//
// Missions are rows ordered by position; settings and the daily state are
// JSONB documents overwritten whole; the defeat history is append-only with
// duplicate inserts ignored.
type BattleRepository struct {
	db *pgxpool.Pool
}

var _ storage.Store = (*BattleRepository)(nil)

// NewBattleRepository creates a BattleRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewBattleRepository(db *pgxpool.Pool) *BattleRepository {
	return &BattleRepository{db: db}
}

// LoadMissions returns all missions ordered by position.
//
// Postcondition: Returns storage.ErrNotFound when no mission list was ever
// saved (distinct from an explicitly saved empty list).
func (r *BattleRepository) LoadMissions(ctx context.Context) ([]mission.Mission, error) {
	var saved bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM battle_mission_list WHERE id = $1)`,
		singletonID,
	).Scan(&saved)
	if err != nil {
		return nil, fmt.Errorf("checking mission list: %w", err)
	}
	if !saved {
		return nil, storage.ErrNotFound
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, text, damage, position, enabled, cooldown_minutes, tier, created_at, updated_at
		 FROM battle_missions ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying missions: %w", err)
	}
	defer rows.Close()

	missions := []mission.Mission{}
	for rows.Next() {
		var m mission.Mission
		if err := rows.Scan(&m.ID, &m.Text, &m.Damage, &m.Order, &m.Enabled,
			&m.CooldownMinutes, &m.Tier, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning mission: %w", err)
		}
		missions = append(missions, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating missions: %w", err)
	}
	return missions, nil
}

// SaveMissions overwrites the whole mission list in one transaction.
func (r *BattleRepository) SaveMissions(ctx context.Context, missions []mission.Mission) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning mission save: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM battle_missions`); err != nil {
		return fmt.Errorf("clearing missions: %w", err)
	}
	for _, m := range missions {
		_, err := tx.Exec(ctx,
			`INSERT INTO battle_missions (id, text, damage, position, enabled, cooldown_minutes, tier, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			m.ID, m.Text, m.Damage, m.Order, m.Enabled, m.CooldownMinutes, m.Tier, m.CreatedAt, m.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting mission %s: %w", m.ID, err)
		}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO battle_mission_list (id, saved_at) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET saved_at = EXCLUDED.saved_at`,
		singletonID, time.Now(),
	); err != nil {
		return fmt.Errorf("marking mission list saved: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing mission save: %w", err)
	}
	return nil
}

// LoadSettings returns the settings document or storage.ErrNotFound.
func (r *BattleRepository) LoadSettings(ctx context.Context) (battle.Settings, error) {
	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT data FROM battle_settings WHERE id = $1`, singletonID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return battle.Settings{}, storage.ErrNotFound
		}
		return battle.Settings{}, fmt.Errorf("querying settings: %w", err)
	}

	var settings battle.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return battle.Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	return settings, nil
}

// SaveSettings overwrites the settings document.
func (r *BattleRepository) SaveSettings(ctx context.Context, settings battle.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO battle_settings (id, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		singletonID, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// LoadDailyState returns the daily state document or storage.ErrNotFound.
func (r *BattleRepository) LoadDailyState(ctx context.Context) (*battle.State, error) {
	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT data FROM daily_battle_state WHERE id = $1`, singletonID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying daily state: %w", err)
	}

	var state battle.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decoding daily state: %w", err)
	}
	return &state, nil
}

// SaveDailyState overwrites the daily state document.
//
// Precondition: state must be non-nil.
func (r *BattleRepository) SaveDailyState(ctx context.Context, state *battle.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encoding daily state: %w", err)
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO daily_battle_state (id, data, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`,
		singletonID, data, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("saving daily state for %s: %w", state.Date, err)
	}
	return nil
}

// LoadDefeatedHistory returns every defeated boss id in first-defeat order.
func (r *BattleRepository) LoadDefeatedHistory(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT boss_id FROM defeated_boss_history ORDER BY first_defeated_at, boss_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying defeat history: %w", err)
	}
	defer rows.Close()

	history := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning defeat history: %w", err)
		}
		history = append(history, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating defeat history: %w", err)
	}
	return history, nil
}

// AddToDefeatedHistory records a boss defeat; repeat defeats are ignored.
func (r *BattleRepository) AddToDefeatedHistory(ctx context.Context, bossID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO defeated_boss_history (boss_id, first_defeated_at) VALUES ($1, $2)
		 ON CONFLICT (boss_id) DO NOTHING`,
		bossID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("recording defeat of %s: %w", bossID, err)
	}
	return nil
}

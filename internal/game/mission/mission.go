// Package mission provides battle mission definitions, list maintenance,
// and the availability gate (single-use-per-day vs. timed cooldown).
package mission

import (
	"time"

	"github.com/google/uuid"
)

// Mission is a user-defined real-world task that deals damage when completed.
type Mission struct {
	ID string `json:"id"`
	// Text is the user-facing mission description.
	Text string `json:"text"`
	// Damage is dealt to the current boss on completion. Always > 0.
	Damage int `json:"damage"`
	// Order is the display position within the mission list.
	Order int `json:"order"`
	// Enabled soft-excludes the mission without deleting it.
	Enabled bool `json:"enabled"`
	// CooldownMinutes switches the mission from single-use-per-day (0) to
	// timed-cooldown semantics (> 0).
	CooldownMinutes int `json:"cooldownMinutes"`
	// Tier is the mission priority grade (1 highest .. 10 lowest).
	Tier      int       `json:"tier,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tier bounds and default. An unset tier sorts last.
const (
	TierMin     = 1
	TierMax     = 10
	TierDefault = 10
)

// NewParams carries the inputs for creating a mission.
type NewParams struct {
	Text            string
	Damage          int
	Order           int
	CooldownMinutes int
	Tier            int
	Now             time.Time
}

// New creates a mission with a fresh id and sane defaults.
//
// Precondition: params.Damage > 0; params.Now must be non-zero.
// Postcondition: The returned mission is enabled and carries a unique id.
func New(params NewParams) Mission {
	tier := params.Tier
	if tier < TierMin || tier > TierMax {
		tier = TierDefault
	}
	cooldown := params.CooldownMinutes
	if cooldown < 0 {
		cooldown = 0
	}
	return Mission{
		ID:              "mission_" + uuid.New().String(),
		Text:            params.Text,
		Damage:          params.Damage,
		Order:           params.Order,
		Enabled:         true,
		CooldownMinutes: cooldown,
		Tier:            tier,
		CreatedAt:       params.Now,
		UpdatedAt:       params.Now,
	}
}

// Update carries the patchable fields of a mission. Nil pointers leave the
// corresponding field unchanged.
type Update struct {
	Text            *string
	Damage          *int
	Enabled         *bool
	CooldownMinutes *int
	Tier            *int
}

// Apply patches the mission list in place of the mission with the given id.
//
// Postcondition: Returns a new slice; the matched mission has UpdatedAt set
// to now. An unknown id leaves the list unchanged.
func Apply(missions []Mission, missionID string, update Update, now time.Time) []Mission {
	out := make([]Mission, len(missions))
	copy(out, missions)
	for i := range out {
		if out[i].ID != missionID {
			continue
		}
		if update.Text != nil {
			out[i].Text = *update.Text
		}
		if update.Damage != nil {
			out[i].Damage = *update.Damage
		}
		if update.Enabled != nil {
			out[i].Enabled = *update.Enabled
		}
		if update.CooldownMinutes != nil {
			out[i].CooldownMinutes = *update.CooldownMinutes
		}
		if update.Tier != nil {
			out[i].Tier = *update.Tier
		}
		out[i].UpdatedAt = now
	}
	return out
}

// Delete removes the mission with the given id and reindexes Order over the
// remainder.
//
// Postcondition: Returns a new slice with contiguous Order values starting at 0.
func Delete(missions []Mission, missionID string) []Mission {
	out := make([]Mission, 0, len(missions))
	for _, m := range missions {
		if m.ID == missionID {
			continue
		}
		m.Order = len(out)
		out = append(out, m)
	}
	return out
}

// Reorder assigns Order by the slice position and stamps UpdatedAt.
//
// Postcondition: Returns a new slice with Order == index for every mission.
func Reorder(missions []Mission, now time.Time) []Mission {
	out := make([]Mission, len(missions))
	copy(out, missions)
	for i := range out {
		out[i].Order = i
		out[i].UpdatedAt = now
	}
	return out
}

// FindByID returns the mission with the given id.
func FindByID(missions []Mission, missionID string) (Mission, bool) {
	for _, m := range missions {
		if m.ID == missionID {
			return m, true
		}
	}
	return Mission{}, false
}

// Package catalog provides the immutable boss definition table.
//
// The catalog is loaded once at startup from a YAML document (the embedded
// default or a file override) and never mutated afterwards.
package catalog

import (
	"fmt"
	"strings"
)

// Difficulty is a boss difficulty tier.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
	DifficultyEpic   Difficulty = "epic"
)

// Difficulties lists all tiers in ascending order.
var Difficulties = []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyEpic}

// ValidDifficulty reports whether d is a recognised difficulty tier.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyEpic:
		return true
	}
	return false
}

// Boss is a single immutable boss definition.
type Boss struct {
	ID           string
	Name         string
	Image        string
	Difficulty   Difficulty
	Quotes       []string
	DefeatQuotes []string
}

// DefeatQuote returns the primary defeat line, or "" when none is defined.
func (b Boss) DefeatQuote() string {
	if len(b.DefeatQuotes) == 0 {
		return ""
	}
	return b.DefeatQuotes[0]
}

// Catalog is an immutable, validated collection of boss definitions.
type Catalog struct {
	bosses []Boss
	byID   map[string]int
}

// New builds a Catalog from the given definitions.
//
// Precondition: bosses must have unique, non-empty IDs, non-empty names,
// and valid difficulties, and at least one boss must be easy (a battle day
// always opens with an easy boss).
// Postcondition: Returns a validated Catalog or a non-nil error.
func New(bosses []Boss) (*Catalog, error) {
	if len(bosses) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one boss")
	}

	byID := make(map[string]int, len(bosses))
	var errs []string
	hasEasy := false
	for i, b := range bosses {
		if b.Difficulty == DifficultyEasy {
			hasEasy = true
		}
		if b.ID == "" {
			errs = append(errs, fmt.Sprintf("boss at index %d has empty id", i))
			continue
		}
		if b.Name == "" {
			errs = append(errs, fmt.Sprintf("boss %q has empty name", b.ID))
		}
		if !ValidDifficulty(b.Difficulty) {
			errs = append(errs, fmt.Sprintf("boss %q has unknown difficulty %q", b.ID, b.Difficulty))
		}
		if _, dup := byID[b.ID]; dup {
			errs = append(errs, fmt.Sprintf("duplicate boss id %q", b.ID))
			continue
		}
		byID[b.ID] = i
	}
	if !hasEasy {
		errs = append(errs, "catalog must contain at least one easy boss")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid catalog: %s", strings.Join(errs, "; "))
	}

	owned := make([]Boss, len(bosses))
	copy(owned, bosses)
	return &Catalog{bosses: owned, byID: byID}, nil
}

// ByID returns the boss with the given id.
//
// Postcondition: Returns (boss, true) when the id exists, (zero, false) otherwise.
func (c *Catalog) ByID(id string) (Boss, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Boss{}, false
	}
	return c.bosses[i], true
}

// Bosses returns all boss definitions in catalog order.
//
// Postcondition: The returned slice is a copy; mutating it does not affect the catalog.
func (c *Catalog) Bosses() []Boss {
	out := make([]Boss, len(c.bosses))
	copy(out, c.bosses)
	return out
}

// Size returns the number of bosses in the catalog.
func (c *Catalog) Size() int {
	return len(c.bosses)
}

// GroupByDifficulty returns boss ids bucketed per difficulty, in catalog order.
//
// Postcondition: Every catalog id appears in exactly one bucket; all four
// difficulty keys are present even when empty.
func (c *Catalog) GroupByDifficulty() map[Difficulty][]string {
	groups := map[Difficulty][]string{
		DifficultyEasy:   {},
		DifficultyNormal: {},
		DifficultyHard:   {},
		DifficultyEpic:   {},
	}
	for _, b := range c.bosses {
		groups[b.Difficulty] = append(groups[b.Difficulty], b.ID)
	}
	return groups
}

// CountByDifficulty returns the number of catalog bosses per difficulty.
func (c *Catalog) CountByDifficulty() map[Difficulty]int {
	counts := make(map[Difficulty]int, len(Difficulties))
	for _, b := range c.bosses {
		counts[b.Difficulty]++
	}
	return counts
}

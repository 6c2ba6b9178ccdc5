// Package tier computes learner progression through the ordered tiers of the course catalog.
//
// Every function is a pure projection over an immutable Catalog and a caller-owned set of completed
// course ids: nothing is stored, so a Catalog is safe for concurrent use.
package tier

import (
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core"
)

// Tier is a gated stage of the course catalog.
type Tier struct {
	ID             int      `json:"id" yaml:"id" validate:"min=1"`
	Name           string   `json:"name" yaml:"name" validate:"required"`
	Description    string   `json:"description" yaml:"description"`
	UnlockCriteria string   `json:"unlock_criteria" yaml:"unlock_criteria"`
	CourseIDs      []string `json:"course_ids" yaml:"course_ids" validate:"required,min=1,unique,dive,slug"`
}

// Completions is the set of course ids a learner has finished.
type Completions interface {
	Has(courseID string) bool
}

// Set is a map backed Completions.
type Set map[string]struct{}

// NewSet returns a Set holding courseIDs.
func NewSet(courseIDs ...string) Set {
	s := make(Set, len(courseIDs))
	for _, id := range courseIDs {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether courseID is in the set.
func (s Set) Has(courseID string) bool {
	_, ok := s[courseID]
	return ok
}

var (
	ErrEmptyCatalog     = errors.New("catalog has no tiers")
	ErrNonContiguousIDs = errors.New("tier ids must be contiguous starting at 1")
	ErrDuplicateCourse  = errors.New("course listed more than once")
)

// Catalog is the immutable, ordered list of tiers.
type Catalog struct {
	tiers    []Tier
	byCourse map[string]int // course id -> tier id
}

// NewCatalog validates tiers and builds a Catalog from a private copy of them.
func NewCatalog(tiers []Tier, validate *validator.Validate) (*Catalog, error) {
	if len(tiers) == 0 {
		return nil, core.NewValidationError(ErrEmptyCatalog)
	}

	c := &Catalog{
		tiers:    make([]Tier, 0, len(tiers)),
		byCourse: make(map[string]int),
	}
	for i, t := range tiers {
		if err := validate.Struct(t); err != nil {
			return nil, errors.Wrapf(err, "validating tier %d", t.ID)
		}
		if t.ID != i+1 {
			return nil, core.NewValidationError(
				ErrNonContiguousIDs,
				core.FieldError{Field: "id", Error: fmt.Sprintf("tier at position %d has id %d", i+1, t.ID)},
			)
		}
		for _, courseID := range t.CourseIDs {
			if other, ok := c.byCourse[courseID]; ok {
				return nil, core.NewValidationError(
					ErrDuplicateCourse,
					core.FieldError{Field: "course_ids", Error: fmt.Sprintf("%q is listed in tiers %d and %d", courseID, other, t.ID)},
				)
			}
			c.byCourse[courseID] = t.ID
		}
		t.CourseIDs = append([]string(nil), t.CourseIDs...)
		c.tiers = append(c.tiers, t)
	}
	return c, nil
}

// Tiers returns a copy of the catalog tiers, in order.
func (c *Catalog) Tiers() []Tier {
	tiers := make([]Tier, 0, len(c.tiers))
	for _, t := range c.tiers {
		t.CourseIDs = append([]string(nil), t.CourseIDs...)
		tiers = append(tiers, t)
	}
	return tiers
}

// Tier returns a copy of the tier with the given id.
func (c *Catalog) Tier(id int) (Tier, bool) {
	t, ok := c.get(id)
	if !ok {
		return Tier{}, false
	}
	t.CourseIDs = append([]string(nil), t.CourseIDs...)
	return *t, true
}

func (c *Catalog) get(id int) (*Tier, bool) {
	if id < 1 || id > len(c.tiers) {
		return nil, false
	}
	return &c.tiers[id-1], true
}

// HasCourse reports whether courseID belongs to any tier.
func (c *Catalog) HasCourse(courseID string) bool {
	_, ok := c.byCourse[courseID]
	return ok
}

// TierForCourse returns the id of the first tier listing courseID.
// Unknown courses belong to the first tier.
func (c *Catalog) TierForCourse(courseID string) int {
	for _, t := range c.tiers {
		for _, id := range t.CourseIDs {
			if id == courseID {
				return t.ID
			}
		}
	}
	return 1
}

// IsUnlocked reports whether every course of the previous tier is completed.
// The first tier is always unlocked; unknown tiers never are.
func (c *Catalog) IsUnlocked(tierID int, completed Completions) bool {
	if _, ok := c.get(tierID); !ok {
		return false
	}
	if tierID == 1 {
		return true
	}
	prev, ok := c.get(tierID - 1)
	if !ok {
		return false
	}
	return allCompleted(prev.CourseIDs, completed)
}

// IsComplete reports whether every course of the tier is completed.
func (c *Catalog) IsComplete(tierID int, completed Completions) bool {
	t, ok := c.get(tierID)
	if !ok {
		return false
	}
	return allCompleted(t.CourseIDs, completed)
}

// ProgressPercent returns the share of the tier's courses that are completed, rounded to the nearest percent.
func (c *Catalog) ProgressPercent(tierID int, completed Completions) int {
	t, ok := c.get(tierID)
	if !ok {
		return 0
	}
	return percent(countCompleted(t.CourseIDs, completed), len(t.CourseIDs))
}

// UnlockedTierIDs returns the ids of every unlocked tier, in catalog order.
func (c *Catalog) UnlockedTierIDs(completed Completions) []int {
	ids := make([]int, 0, len(c.tiers))
	for _, t := range c.tiers {
		if c.IsUnlocked(t.ID, completed) {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func allCompleted(courseIDs []string, completed Completions) bool {
	if completed == nil {
		return len(courseIDs) == 0
	}
	for _, id := range courseIDs {
		if !completed.Has(id) {
			return false
		}
	}
	return true
}

func countCompleted(courseIDs []string, completed Completions) int {
	if completed == nil {
		return 0
	}
	var n int
	for _, id := range courseIDs {
		if completed.Has(id) {
			n++
		}
	}
	return n
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}

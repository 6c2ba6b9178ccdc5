package tier

import (
	"encoding/json"
	"fmt"
)

// Status is the derived progression state of a tier for a given completion set.
type Status int

const (
	Locked Status = iota
	InProgress
	Complete
)

var statusNames = [...]string{"locked", "in_progress", "complete"}

func (s Status) String() string {
	if s >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range statusNames {
		if n == name {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown tier status %q", name)
}

// Status projects the tier onto Locked -> InProgress -> Complete.
// Unknown tiers are Locked.
func (c *Catalog) Status(tierID int, completed Completions) Status {
	if !c.IsUnlocked(tierID, completed) {
		return Locked
	}
	if c.IsComplete(tierID, completed) {
		return Complete
	}
	return InProgress
}

// Summary is the progression of a single tier.
type Summary struct {
	TierID    int    `json:"tier_id"`
	Name      string `json:"name"`
	Status    Status `json:"status"`
	Unlocked  bool   `json:"unlocked"`
	Complete  bool   `json:"complete"`
	Progress  int    `json:"progress"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// Summaries returns the progression of every tier, in catalog order.
func (c *Catalog) Summaries(completed Completions) []Summary {
	sums := make([]Summary, 0, len(c.tiers))
	for _, t := range c.tiers {
		sums = append(sums, Summary{
			TierID:    t.ID,
			Name:      t.Name,
			Status:    c.Status(t.ID, completed),
			Unlocked:  c.IsUnlocked(t.ID, completed),
			Complete:  c.IsComplete(t.ID, completed),
			Progress:  c.ProgressPercent(t.ID, completed),
			Completed: countCompleted(t.CourseIDs, completed),
			Total:     len(t.CourseIDs),
		})
	}
	return sums
}

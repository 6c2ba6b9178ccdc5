package progress

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/tier"
)

// Completion records that a learner finished a course.
type Completion struct {
	LearnerID   string    `json:"learner_id" db:"learner_id"`
	CourseID    string    `json:"course_id" db:"course_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"` // UTC
}

// Certificate is issued once per learner when every course of a tier is completed.
type Certificate struct {
	Code      string    `json:"code" db:"code"`
	LearnerID string    `json:"learner_id" db:"learner_id"`
	TierID    int       `json:"tier_id" db:"tier_id"`
	TierName  string    `json:"tier_name" db:"tier_name"`
	IssuedAt  time.Time `json:"issued_at" db:"issued_at"` // UTC
}

// Overview is a learner's progression through the whole catalog.
type Overview struct {
	LearnerID        string         `json:"learner_id"`
	CompletedCourses []string       `json:"completed_courses"`
	Tiers            []tier.Summary `json:"tiers"`
	UnlockedTierIDs  []int          `json:"unlocked_tier_ids"`
	Certificates     []Certificate  `json:"certificates"`
}

// NewCompletion contains the information needed to record a course completion.
type NewCompletion struct {
	CourseID string `json:"course_id" validate:"required,slug"`
}

func (nc *NewCompletion) Validate(validate *validator.Validate) error {
	nc.CourseID = core.CleanString(nc.CourseID, true /* lower */)
	return validate.Struct(nc)
}

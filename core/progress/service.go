package progress

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/identity"
	"github.com/trezcool/studio/core/tier"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrAlreadyCompleted = errors.New("course already completed")
	ErrAlreadyIssued    = errors.New("certificate already issued")
	ErrUnknownCourse    = errors.New("unknown course")
	ErrTierLocked       = errors.New("course tier is locked")
	ErrInvalidLearner   = errors.New("invalid learner id")
)

type (
	Repository interface {
		CompletedCourses(ctx context.Context, learnerID string) ([]string, error)
		// AddCompletion returns ErrAlreadyCompleted when the learner already completed the course.
		AddCompletion(ctx context.Context, c Completion) error
		Certificates(ctx context.Context, learnerID string) ([]Certificate, error)
		// AddCertificate returns ErrAlreadyIssued when the learner already holds the tier certificate.
		AddCertificate(ctx context.Context, cert Certificate) error
	}

	ServiceInterface interface {
		Overview(ctx context.Context, learnerID string) (Overview, error)
		Complete(ctx context.Context, learnerID string, nc NewCompletion) (Overview, error)
		Catalog() *tier.Catalog
	}

	Service struct {
		repo    Repository
		catalog *tier.Catalog
		logger  core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, catalog *tier.Catalog, logger core.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, logger: logger}
}

func (svc *Service) Catalog() *tier.Catalog { return svc.catalog }

func checkLearner(learnerID string) error {
	if !identity.Valid(identity.AnonymousPrefix, learnerID) {
		return core.NewValidationError(ErrInvalidLearner, core.FieldError{Field: "learner_id", Error: ErrInvalidLearner.Error()})
	}
	return nil
}

func (svc *Service) completions(ctx context.Context, learnerID string) ([]string, tier.Set, error) {
	courses, err := svc.repo.CompletedCourses(ctx, learnerID)
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying completed courses")
	}
	if courses == nil {
		courses = []string{}
	}
	return courses, tier.NewSet(courses...), nil
}

func (svc *Service) Overview(ctx context.Context, learnerID string) (Overview, error) {
	if err := checkLearner(learnerID); err != nil {
		return Overview{}, err
	}

	courses, completed, err := svc.completions(ctx, learnerID)
	if err != nil {
		return Overview{}, err
	}
	certs, err := svc.repo.Certificates(ctx, learnerID)
	if err != nil {
		return Overview{}, errors.Wrap(err, "querying certificates")
	}
	if certs == nil {
		certs = []Certificate{}
	}

	return Overview{
		LearnerID:        learnerID,
		CompletedCourses: courses,
		Tiers:            svc.catalog.Summaries(completed),
		UnlockedTierIDs:  svc.catalog.UnlockedTierIDs(completed),
		Certificates:     certs,
	}, nil
}

// Complete records a course completion, and issues the tier certificate once the tier is complete.
// Completing an already completed course records nothing but still issues a missing certificate.
func (svc *Service) Complete(ctx context.Context, learnerID string, nc NewCompletion) (Overview, error) {
	if err := checkLearner(learnerID); err != nil {
		return Overview{}, err
	}
	courseID := core.CleanString(nc.CourseID, true /* lower */)
	if !svc.catalog.HasCourse(courseID) {
		return Overview{}, core.NewValidationError(ErrUnknownCourse, core.FieldError{Field: "course_id", Error: ErrUnknownCourse.Error()})
	}

	_, completed, err := svc.completions(ctx, learnerID)
	if err != nil {
		return Overview{}, err
	}
	tierID := svc.catalog.TierForCourse(courseID)
	if !svc.catalog.IsUnlocked(tierID, completed) {
		return Overview{}, ErrTierLocked
	}

	now := nowFunc().UTC()
	err = svc.repo.AddCompletion(ctx, Completion{LearnerID: learnerID, CourseID: courseID, CompletedAt: now})
	if err != nil && errors.Cause(err) != ErrAlreadyCompleted {
		return Overview{}, errors.Wrap(err, "adding completion")
	}

	// concurrent completions of the same tier only see each other's writes on a fresh read
	_, completed, err = svc.completions(ctx, learnerID)
	if err != nil {
		return Overview{}, err
	}
	if svc.catalog.IsComplete(tierID, completed) {
		if err = svc.issueCertificate(ctx, learnerID, tierID, now); err != nil {
			return Overview{}, err
		}
	}

	return svc.Overview(ctx, learnerID)
}

func (svc *Service) issueCertificate(ctx context.Context, learnerID string, tierID int, now time.Time) error {
	t, _ := svc.catalog.Tier(tierID)
	cert := Certificate{
		Code:      uuid.New().String(),
		LearnerID: learnerID,
		TierID:    tierID,
		TierName:  t.Name,
		IssuedAt:  now,
	}
	err := svc.repo.AddCertificate(ctx, cert)
	switch errors.Cause(err) {
	case nil:
		svc.logger.Info(fmt.Sprintf("certificate issued: tier %d", tierID), core.LearnerTag(learnerID))
		return nil
	case ErrAlreadyIssued:
		return nil
	default:
		return errors.Wrap(err, "issuing certificate")
	}
}

// Package pgrepos implements the domain repositories on top of postgres, using sqlx.
package pgrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/progress"
)

type progressRepository struct {
	exec core.DBExecutor
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(exec core.DBExecutor) *progressRepository {
	return &progressRepository{exec: exec}
}

func (repo *progressRepository) CompletedCourses(ctx context.Context, learnerID string) ([]string, error) {
	courses := make([]string, 0)
	err := repo.exec.SelectContext(ctx, &courses, `
		SELECT course_id FROM completions
		WHERE learner_id = $1
		ORDER BY completed_at, course_id`,
		learnerID,
	)
	return courses, errors.Wrap(err, "selecting completions")
}

func (repo *progressRepository) AddCompletion(ctx context.Context, c progress.Completion) error {
	res, err := repo.exec.ExecContext(ctx, `
		INSERT INTO completions (learner_id, course_id, completed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		c.LearnerID, c.CourseID, c.CompletedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "inserting completion")
	}
	return ifNoneAffected(res, progress.ErrAlreadyCompleted)
}

func (repo *progressRepository) Certificates(ctx context.Context, learnerID string) ([]progress.Certificate, error) {
	certs := make([]progress.Certificate, 0)
	err := repo.exec.SelectContext(ctx, &certs, `
		SELECT code, learner_id, tier_id, tier_name, issued_at FROM certificates
		WHERE learner_id = $1
		ORDER BY tier_id`,
		learnerID,
	)
	return certs, errors.Wrap(err, "selecting certificates")
}

func (repo *progressRepository) AddCertificate(ctx context.Context, cert progress.Certificate) error {
	res, err := repo.exec.ExecContext(ctx, `
		INSERT INTO certificates (code, learner_id, tier_id, tier_name, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (learner_id, tier_id) DO NOTHING`,
		cert.Code, cert.LearnerID, cert.TierID, cert.TierName, cert.IssuedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "inserting certificate")
	}
	return ifNoneAffected(res, progress.ErrAlreadyIssued)
}

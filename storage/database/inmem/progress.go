package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/studio/core/progress"
)

type progressRepository struct {
	db *progressTables
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db.progress}
}

// CompletedCourses returns the learner's courses in completion order.
func (repo *progressRepository) CompletedCourses(_ context.Context, learnerID string) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	completions := make([]progress.Completion, 0, len(repo.db.completions[learnerID]))
	for _, c := range repo.db.completions[learnerID] {
		completions = append(completions, c)
	}
	sort.Slice(completions, func(i, j int) bool {
		if completions[i].CompletedAt.Equal(completions[j].CompletedAt) {
			return completions[i].CourseID < completions[j].CourseID
		}
		return completions[i].CompletedAt.Before(completions[j].CompletedAt)
	})

	courses := make([]string, 0, len(completions))
	for _, c := range completions {
		courses = append(courses, c.CourseID)
	}
	return courses, nil
}

func (repo *progressRepository) AddCompletion(_ context.Context, c progress.Completion) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	learner, ok := repo.db.completions[c.LearnerID]
	if !ok {
		learner = make(map[string]progress.Completion)
		repo.db.completions[c.LearnerID] = learner
	}
	if _, dup := learner[c.CourseID]; dup {
		return progress.ErrAlreadyCompleted
	}
	learner[c.CourseID] = c
	return nil
}

func (repo *progressRepository) Certificates(_ context.Context, learnerID string) ([]progress.Certificate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	certs := make([]progress.Certificate, 0, len(repo.db.certificates[learnerID]))
	for _, cert := range repo.db.certificates[learnerID] {
		certs = append(certs, cert)
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].TierID < certs[j].TierID })
	return certs, nil
}

func (repo *progressRepository) AddCertificate(_ context.Context, cert progress.Certificate) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	learner, ok := repo.db.certificates[cert.LearnerID]
	if !ok {
		learner = make(map[int]progress.Certificate)
		repo.db.certificates[cert.LearnerID] = learner
	}
	if _, dup := learner[cert.TierID]; dup {
		return progress.ErrAlreadyIssued
	}
	learner[cert.TierID] = cert
	return nil
}

// Package inmemdb holds process local repositories, used for the "memory" storage backend and in tests.
package inmemdb

import (
	"sync"

	"github.com/trezcool/studio/core/community"
	"github.com/trezcool/studio/core/progress"
)

type (
	DB struct {
		progress  *progressTables
		community *communityTables
	}

	progressTables struct {
		completions  map[string]map[string]progress.Completion // {learner: {course: completion}}
		certificates map[string]map[int]progress.Certificate   // {learner: {tier: certificate}}
		mutex        sync.RWMutex
	}

	communityTables struct {
		posts map[string]*community.Post
		votes map[string]map[string]struct{} // {post: {voter}}
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		progress: &progressTables{
			completions:  make(map[string]map[string]progress.Completion),
			certificates: make(map[string]map[int]progress.Certificate),
		},
		community: &communityTables{
			posts: make(map[string]*community.Post),
			votes: make(map[string]map[string]struct{}),
		},
	}
}

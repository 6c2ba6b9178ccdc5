package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/community"
)

var nowFunc = time.Now // mockable

type communityRepository struct {
	db *communityTables
}

var _ community.Repository = (*communityRepository)(nil)

func NewCommunityRepository(db *DB) *communityRepository {
	return &communityRepository{db: db.community}
}

func copyPost(p *community.Post) community.Post {
	post := *p
	if p.LastVoteAt != nil {
		t := *p.LastVoteAt
		post.LastVoteAt = &t
	}
	return post
}

func (repo *communityRepository) CreatePost(_ context.Context, post community.Post) (community.Post, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.posts[post.ID] = &post
	return copyPost(&post), nil
}

// less compares posts field by field, then by id.
func less(a, b community.Post, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var cmp int
		switch ord.Field {
		case "votes":
			cmp = a.Votes - b.Votes
		case "created_at":
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				cmp = -1
			case a.CreatedAt.After(b.CreatedAt):
				cmp = 1
			}
		}
		if cmp == 0 {
			continue
		}
		if ord.Ascending {
			return cmp < 0
		}
		return cmp > 0
	}
	return a.ID < b.ID
}

func (repo *communityRepository) ListPosts(_ context.Context, limit int, ordering []core.DBOrdering) ([]community.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	posts := make([]community.Post, 0, len(repo.db.posts))
	for _, p := range repo.db.posts {
		posts = append(posts, copyPost(p))
	}
	sort.Slice(posts, func(i, j int) bool { return less(posts[i], posts[j], ordering) })

	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func (repo *communityRepository) GetPost(_ context.Context, id string) (community.Post, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if p, ok := repo.db.posts[id]; ok {
		return copyPost(p), nil
	}
	return community.Post{}, community.ErrNotFound
}

func (repo *communityRepository) AddVote(_ context.Context, postID, voterID string) (community.Post, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	p, ok := repo.db.posts[postID]
	if !ok {
		return community.Post{}, community.ErrNotFound
	}
	voters, ok := repo.db.votes[postID]
	if !ok {
		voters = make(map[string]struct{})
		repo.db.votes[postID] = voters
	}
	if _, dup := voters[voterID]; dup {
		return community.Post{}, community.ErrAlreadyVoted
	}

	voters[voterID] = struct{}{}
	now := nowFunc().UTC()
	p.Votes++
	p.LastVoteAt = &now
	return copyPost(p), nil
}

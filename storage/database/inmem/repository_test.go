package inmemdb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/community"
	"github.com/trezcool/studio/core/progress"
)

const learner = "anon_1700000000000_0123456789abcdef0123456789abcdef"

func TestProgressRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewProgressRepository(Open())
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, course := range []string{"prompting-basics", "ai-fundamentals"} {
		require.NoError(t, repo.AddCompletion(ctx, progress.Completion{
			LearnerID:   learner,
			CourseID:    course,
			CompletedAt: start.Add(time.Duration(i) * time.Hour),
		}))
	}
	err := repo.AddCompletion(ctx, progress.Completion{LearnerID: learner, CourseID: "ai-fundamentals", CompletedAt: start})
	assert.Equal(t, progress.ErrAlreadyCompleted, err)

	courses, err := repo.CompletedCourses(ctx, learner)
	require.NoError(t, err)
	assert.Equal(t, []string{"prompting-basics", "ai-fundamentals"}, courses)

	courses, err = repo.CompletedCourses(ctx, "anon_other")
	require.NoError(t, err)
	assert.Empty(t, courses)

	require.NoError(t, repo.AddCertificate(ctx, progress.Certificate{Code: "b", LearnerID: learner, TierID: 2}))
	require.NoError(t, repo.AddCertificate(ctx, progress.Certificate{Code: "a", LearnerID: learner, TierID: 1}))
	assert.Equal(t, progress.ErrAlreadyIssued, repo.AddCertificate(ctx, progress.Certificate{Code: "c", LearnerID: learner, TierID: 1}))

	certs, err := repo.Certificates(ctx, learner)
	require.NoError(t, err)
	if assert.Len(t, certs, 2) {
		assert.Equal(t, 1, certs[0].TierID)
		assert.Equal(t, 2, certs[1].TierID)
	}
}

func createPosts(t *testing.T, repo community.Repository, n int) []community.Post {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	posts := make([]community.Post, 0, n)
	for i := 0; i < n; i++ {
		p, err := repo.CreatePost(context.Background(), community.Post{
			ID:        fmt.Sprintf("00000000-0000-0000-0000-00000000000%d", i),
			AuthorID:  learner,
			Title:     fmt.Sprintf("post %d", i),
			Body:      "body",
			CreatedAt: start.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
		posts = append(posts, p)
	}
	return posts
}

func TestCommunityRepository_ListPosts(t *testing.T) {
	ctx := context.Background()
	repo := NewCommunityRepository(Open())
	posts := createPosts(t, repo, 3)

	_, err := repo.AddVote(ctx, posts[0].ID, "voter_1")
	require.NoError(t, err)
	_, err = repo.AddVote(ctx, posts[0].ID, "voter_2")
	require.NoError(t, err)
	_, err = repo.AddVote(ctx, posts[2].ID, "voter_1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		limit    int
		ordering []core.DBOrdering
		want     []string
	}{
		{
			name:     "newest first",
			ordering: []core.DBOrdering{{Field: "created_at"}},
			want:     []string{"post 2", "post 1", "post 0"},
		},
		{
			name:     "oldest first",
			ordering: []core.DBOrdering{{Field: "created_at", Ascending: true}},
			want:     []string{"post 0", "post 1", "post 2"},
		},
		{
			name:     "most voted then newest",
			ordering: []core.DBOrdering{{Field: "votes"}, {Field: "created_at"}},
			want:     []string{"post 0", "post 2", "post 1"},
		},
		{
			name:     "limited",
			limit:    1,
			ordering: []core.DBOrdering{{Field: "created_at"}},
			want:     []string{"post 2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.ListPosts(ctx, tt.limit, tt.ordering)
			require.NoError(t, err)
			titles := make([]string, 0, len(got))
			for _, p := range got {
				titles = append(titles, p.Title)
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestCommunityRepository_AddVote(t *testing.T) {
	ctx := context.Background()
	repo := NewCommunityRepository(Open())
	post := createPosts(t, repo, 1)[0]

	voteTime := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return voteTime }
	defer func() { nowFunc = time.Now }()

	got, err := repo.AddVote(ctx, post.ID, "voter_1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Votes)
	if assert.NotNil(t, got.LastVoteAt) {
		assert.Equal(t, voteTime, *got.LastVoteAt)
	}

	_, err = repo.AddVote(ctx, post.ID, "voter_1")
	assert.Equal(t, community.ErrAlreadyVoted, err)

	_, err = repo.AddVote(ctx, "missing", "voter_1")
	assert.Equal(t, community.ErrNotFound, err)

	_, err = repo.GetPost(ctx, "missing")
	assert.Equal(t, community.ErrNotFound, err)

	stored, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Votes)
}

func TestCommunityRepository_concurrentVotes(t *testing.T) {
	ctx := context.Background()
	repo := NewCommunityRepository(Open())
	post := createPosts(t, repo, 1)[0]

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.AddVote(ctx, post.ID, fmt.Sprintf("voter_%d", i%10))
		}(i)
	}
	wg.Wait()

	stored, err := repo.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.Votes)
}

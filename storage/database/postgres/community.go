package pgrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/community"
)

const postColumns = "id, author_id, title, body, votes, created_at, last_vote_at"

var (
	nowFunc = time.Now // mockable

	postOrderingColumns = map[string]string{
		"created_at": "created_at",
		"votes":      "votes",
	}
)

type (
	communityRepository struct {
		db core.DB
	}

	postRow struct {
		community.Post
		LastVote null.Time `db:"last_vote_at"`
	}
)

var _ community.Repository = (*communityRepository)(nil) // interface compliance check

func NewCommunityRepository(db core.DB) *communityRepository {
	return &communityRepository{db: db}
}

func (row postRow) post() community.Post {
	p := row.Post
	p.CreatedAt = p.CreatedAt.UTC()
	p.LastVoteAt = nil
	if row.LastVote.Valid {
		t := row.LastVote.Time.UTC()
		p.LastVoteAt = &t
	}
	return p
}

func (repo *communityRepository) CreatePost(ctx context.Context, post community.Post) (community.Post, error) {
	row := postRow{Post: post, LastVote: null.TimeFromPtr(post.LastVoteAt)}
	row.CreatedAt = post.CreatedAt.UTC()
	_, err := sqlx.NamedExecContext(ctx, repo.db, `
		INSERT INTO posts (`+postColumns+`)
		VALUES (:id, :author_id, :title, :body, :votes, :created_at, :last_vote_at)`,
		row,
	)
	if err != nil {
		return community.Post{}, errors.Wrap(err, "inserting post")
	}
	return row.post(), nil
}

func orderBy(ordering []core.DBOrdering) string {
	clauses := make([]string, 0, len(ordering)+1)
	for _, ord := range ordering {
		col, ok := postOrderingColumns[ord.Field]
		if !ok {
			continue
		}
		clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
	}
	clauses = append(clauses, "id ASC")
	return strings.Join(clauses, ", ")
}

func (repo *communityRepository) ListPosts(ctx context.Context, limit int, ordering []core.DBOrdering) ([]community.Post, error) {
	rows := make([]postRow, 0)
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT "+postColumns+" FROM posts ORDER BY "+orderBy(ordering)+" LIMIT $1",
		limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "selecting posts")
	}

	posts := make([]community.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.post())
	}
	return posts, nil
}

func getPost(ctx context.Context, exec core.DBExecutor, query string, args ...interface{}) (community.Post, error) {
	var row postRow
	err := exec.GetContext(ctx, &row, query, args...)
	switch {
	case err == nil:
		return row.post(), nil
	case errors.Is(err, sql.ErrNoRows):
		return community.Post{}, community.ErrNotFound
	default:
		return community.Post{}, errors.Wrap(err, "selecting post")
	}
}

func (repo *communityRepository) GetPost(ctx context.Context, id string) (community.Post, error) {
	return getPost(ctx, repo.db, "SELECT "+postColumns+" FROM posts WHERE id = $1", id)
}

func (repo *communityRepository) AddVote(ctx context.Context, postID, voterID string) (post community.Post, err error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return community.Post{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = getPost(ctx, tx, "SELECT "+postColumns+" FROM posts WHERE id = $1 FOR UPDATE", postID); err != nil {
		return community.Post{}, err
	}

	now := nowFunc().UTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO post_votes (post_id, voter_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING`,
		postID, voterID, now,
	)
	if err != nil {
		return community.Post{}, errors.Wrap(err, "inserting vote")
	}
	if err = ifNoneAffected(res, community.ErrAlreadyVoted); err != nil {
		return community.Post{}, err
	}

	post, err = getPost(ctx, tx, `
		UPDATE posts SET votes = votes + 1, last_vote_at = $2
		WHERE id = $1
		RETURNING `+postColumns,
		postID, now,
	)
	if err != nil {
		return community.Post{}, err
	}
	if err = tx.Commit(); err != nil {
		return community.Post{}, errors.Wrap(err, "committing vote")
	}
	return post, nil
}

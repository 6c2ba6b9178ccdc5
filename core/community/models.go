package community

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/studio/core"
)

type Post struct {
	ID        string    `json:"id" db:"id"`
	AuthorID  string    `json:"author_id" db:"author_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Votes     int       `json:"votes" db:"votes"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC

	LastVoteAt *time.Time `json:"last_vote_at,omitempty" db:"-"`
}

// NewPost contains information needed to submit a new Post.
type NewPost struct {
	AuthorID string `json:"author_id" validate:"required,anonid"`
	Title    string `json:"title" validate:"required,max=120"`
	Body     string `json:"body" validate:"required,max=5000"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.AuthorID = core.CleanString(np.AuthorID)
	np.Title = core.CleanString(np.Title)
	np.Body = core.CleanString(np.Body)
	return validate.Struct(np)
}

// NewVote contains information needed to vote for a Post.
type NewVote struct {
	VoterID string `json:"voter_id" validate:"required,voterid"`
}

func (nv *NewVote) Validate(validate *validator.Validate) error {
	nv.VoterID = core.CleanString(nv.VoterID)
	return validate.Struct(nv)
}

// RejectedPost is the moderation record of a post blocked by the content filter.
type RejectedPost struct {
	AuthorID     string
	Title        string
	Reason       string
	FlaggedWords []string
}

package community

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/safety"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound     = errors.New("post not found")
	ErrAlreadyVoted = errors.New("already voted for this post")
	ErrBadOrdering  = errors.New("invalid ordering")

	// OrderingFields are the Post fields posts can be ordered by.
	OrderingFields = map[string]string{
		"created_at": "created_at",
		"votes":      "votes",
	}
	defaultOrdering = []core.DBOrdering{{Field: "created_at", Ascending: false}}
)

type (
	// Checker classifies user submitted text; *safety.Filter is one.
	Checker interface {
		Check(text string) safety.Result
	}

	Repository interface {
		CreatePost(ctx context.Context, post Post) (Post, error)
		// ListPosts orders by the given (validated) orderings, then by id.
		ListPosts(ctx context.Context, limit int, ordering []core.DBOrdering) ([]Post, error)
		GetPost(ctx context.Context, id string) (Post, error)
		// AddVote returns ErrNotFound for unknown posts and ErrAlreadyVoted for a second vote by the same voter.
		AddVote(ctx context.Context, postID, voterID string) (Post, error)
	}

	ServiceInterface interface {
		Submit(ctx context.Context, np NewPost) (Post, error)
		List(ctx context.Context, limit int, ordering []core.DBOrdering) ([]Post, error)
		Get(ctx context.Context, id string) (Post, error)
		Vote(ctx context.Context, postID string, nv NewVote) (Post, error)
	}

	Service struct {
		repo    Repository
		checker Checker
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, checker Checker, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, checker: checker, mailSvc: mailSvc, logger: logger, conf: conf}
}

// Submit stores a post once it passes the content filter.
// A flagged post is rejected with a *core.ValidationError and reported to the moderators.
func (svc *Service) Submit(ctx context.Context, np NewPost) (Post, error) {
	for _, fld := range []struct{ name, text string }{{"title", np.Title}, {"body", np.Body}} {
		res := svc.checker.Check(fld.text)
		if res.IsClean {
			continue
		}
		svc.reportRejection(RejectedPost{
			AuthorID:     np.AuthorID,
			Title:        np.Title,
			Reason:       res.Reason,
			FlaggedWords: res.FlaggedWords,
		})
		return Post{}, res.Err(fld.name)
	}

	post := Post{
		ID:        uuid.New().String(),
		AuthorID:  np.AuthorID,
		Title:     np.Title,
		Body:      np.Body,
		CreatedAt: nowFunc().UTC(),
	}
	post, err := svc.repo.CreatePost(ctx, post)
	if err != nil {
		return Post{}, errors.Wrap(err, "creating post")
	}
	return post, nil
}

func (svc *Service) reportRejection(rp RejectedPost) {
	svc.logger.Warn(
		fmt.Sprintf("post rejected: %s", rp.Reason),
		map[string]interface{}{"flagged_words": rp.FlaggedWords},
		core.LearnerTag(rp.AuthorID),
	)

	moderators := svc.conf.ModeratorAddresses()
	if len(moderators) == 0 {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           moderators,
		Subject:      "Community post blocked",
		TemplateName: "post_rejected",
		TemplateData: rp,
	})
}

func (svc *Service) List(ctx context.Context, limit int, ordering []core.DBOrdering) ([]Post, error) {
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	if len(ordering) == 0 {
		ordering = defaultOrdering
	}
	cleaned := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		col, ok := OrderingFields[ord.Field]
		if !ok {
			return nil, core.NewValidationError(ErrBadOrdering, core.FieldError{Field: "ordering", Error: fmt.Sprintf("cannot order by %q", ord.Field)})
		}
		cleaned = append(cleaned, core.DBOrdering{Field: col, Ascending: ord.Ascending})
	}

	posts, err := svc.repo.ListPosts(ctx, limit, cleaned)
	if err != nil {
		return nil, errors.Wrap(err, "listing posts")
	}
	return posts, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Post, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Post{}, ErrNotFound
	}
	return svc.repo.GetPost(ctx, id)
}

func (svc *Service) Vote(ctx context.Context, postID string, nv NewVote) (Post, error) {
	if _, err := uuid.Parse(postID); err != nil {
		return Post{}, ErrNotFound
	}
	post, err := svc.repo.AddVote(ctx, postID, nv.VoterID)
	switch errors.Cause(err) {
	case nil:
		return post, nil
	case ErrNotFound:
		return Post{}, ErrNotFound
	case ErrAlreadyVoted:
		return Post{}, core.NewValidationError(ErrAlreadyVoted, core.FieldError{Field: "voter_id", Error: ErrAlreadyVoted.Error()})
	default:
		return Post{}, errors.Wrap(err, "adding vote")
	}
}

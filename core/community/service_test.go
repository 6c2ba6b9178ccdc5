package community_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/community"
	"github.com/trezcool/studio/core/safety"
	emailsvc "github.com/trezcool/studio/services/email"
	inmemdb "github.com/trezcool/studio/storage/database/inmem"
	testutil "github.com/trezcool/studio/tests"
)

type fixture struct {
	svc    *community.Service
	mail   *emailsvc.ConsoleServiceMock
	logger *testutil.Logger
}

func newFixture(t *testing.T, moderators ...string) fixture {
	t.Helper()
	conf := testutil.Config(t, moderators...)
	logger := testutil.NewLogger()
	mail := emailsvc.NewConsoleServiceMock(conf, logger)
	repo := inmemdb.NewCommunityRepository(inmemdb.Open())
	return fixture{
		svc:    community.NewService(repo, safety.NewDefault(), mail, logger, conf),
		mail:   mail,
		logger: logger,
	}
}

func newPost(title, body string) community.NewPost {
	return community.NewPost{AuthorID: testutil.LearnerID, Title: title, Body: body}
}

func fieldErrors(t *testing.T, err error) []core.FieldError {
	t.Helper()
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "expected a validation error, got %v", err)
	return vErr.Fields
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("clean post is stored", func(t *testing.T) {
		f := newFixture(t, "mod@example.com")
		post, err := f.svc.Submit(ctx, newPost("Persuasive writing", "This lesson is about persuasive writing"))
		require.NoError(t, err)
		_, err = uuid.Parse(post.ID)
		assert.NoError(t, err)
		assert.Equal(t, testutil.LearnerID, post.AuthorID)
		assert.Zero(t, post.Votes)
		assert.Equal(t, time.UTC, post.CreatedAt.Location())

		got, err := f.svc.Get(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post, got)
		assert.Empty(t, f.mail.SentMessages())
	})

	tests := []struct {
		name   string
		post   community.NewPost
		field  string
		reason string
		words  []string
	}{
		{
			name:   "markup in title",
			post:   newPost("<b>hi</b>", "fine"),
			field:  "title",
			reason: safety.ReasonMarkup,
			words:  []string{safety.FlagMarkup},
		},
		{
			name:   "script in body",
			post:   newPost("Link", "javascript:alert(1)"),
			field:  "body",
			reason: safety.ReasonScript,
			words:  []string{safety.FlagScript},
		},
		{
			name:   "inappropriate body",
			post:   newPost("Feedback", "I hate this"),
			field:  "body",
			reason: safety.ReasonInappropriate,
			words:  []string{"hate"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "mod@example.com", "Lead <lead@example.com>")
			_, err := f.svc.Submit(ctx, tt.post)
			flds := fieldErrors(t, err)
			require.Len(t, flds, 1)
			assert.Equal(t, tt.field, flds[0].Field)
			assert.Contains(t, flds[0].Error, tt.reason)

			entry, found := f.logger.Find("warn", "post rejected")
			require.True(t, found)
			assert.Contains(t, entry.Args, core.LearnerTag(testutil.LearnerID))

			sent := f.mail.SentMessages()
			require.Len(t, sent, 1)
			assert.Len(t, sent[0].To, 2)
			rejected, ok := sent[0].TemplateData.(community.RejectedPost)
			require.True(t, ok)
			assert.Equal(t, tt.reason, rejected.Reason)
			assert.Equal(t, tt.words, rejected.FlaggedWords)
			assert.Contains(t, sent[0].TextContent, tt.post.Title)

			posts, err := f.svc.List(ctx, 0, nil)
			require.NoError(t, err)
			assert.Empty(t, posts)
		})
	}

	t.Run("no moderators, no email", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.Submit(ctx, newPost("Feedback", "I hate this"))
		assert.Error(t, err)
		assert.Empty(t, f.mail.SentMessages())
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, 0, 3)
	for i, title := range []string{"first", "second", "third"} {
		community.SetNowFunc(func() time.Time { return start.Add(time.Duration(i) * time.Minute) })
		post, err := f.svc.Submit(ctx, newPost(title, "Sharing a lesson idea"))
		require.NoError(t, err)
		ids = append(ids, post.ID)
	}
	community.SetNowFunc(time.Now)

	_, err := f.svc.Vote(ctx, ids[0], community.NewVote{VoterID: testutil.VoterID})
	require.NoError(t, err)

	titles := func(posts []community.Post) []string {
		out := make([]string, 0, len(posts))
		for _, p := range posts {
			out = append(out, p.Title)
		}
		return out
	}

	posts, err := f.svc.List(ctx, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, titles(posts))

	posts, err = f.svc.List(ctx, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second"}, titles(posts))

	posts, err = f.svc.List(ctx, 10, []core.DBOrdering{{Field: "votes"}, {Field: "created_at", Ascending: true}})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, titles(posts))

	_, err = f.svc.List(ctx, 10, []core.DBOrdering{{Field: "body"}})
	assert.True(t, core.IsValidationError(err))
}

func TestService_Vote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	post, err := f.svc.Submit(ctx, newPost("Rubrics", "Using AI to draft rubrics"))
	require.NoError(t, err)

	voted, err := f.svc.Vote(ctx, post.ID, community.NewVote{VoterID: testutil.VoterID})
	require.NoError(t, err)
	assert.Equal(t, 1, voted.Votes)
	assert.NotNil(t, voted.LastVoteAt)

	_, err = f.svc.Vote(ctx, post.ID, community.NewVote{VoterID: testutil.VoterID})
	flds := fieldErrors(t, err)
	assert.Equal(t, "voter_id", flds[0].Field)

	_, err = f.svc.Vote(ctx, uuid.New().String(), community.NewVote{VoterID: testutil.VoterID})
	assert.Equal(t, community.ErrNotFound, err)

	_, err = f.svc.Vote(ctx, "not-a-uuid", community.NewVote{VoterID: testutil.VoterID})
	assert.Equal(t, community.ErrNotFound, err)

	_, err = f.svc.Get(ctx, "not-a-uuid")
	assert.Equal(t, community.ErrNotFound, err)
}

func TestNewPost_Validate(t *testing.T) {
	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	community.InitValidators(validate, translator)

	tests := []struct {
		name    string
		post    community.NewPost
		invalid []string
	}{
		{name: "valid", post: newPost(" Title ", " Body ")},
		{name: "missing fields", post: community.NewPost{}, invalid: []string{"author_id", "title", "body"}},
		{name: "voter id as author", post: community.NewPost{AuthorID: testutil.VoterID, Title: "t", Body: "b"}, invalid: []string{"author_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate(validate)
			if len(tt.invalid) == 0 {
				assert.NoError(t, err)
				return
			}
			flds := fieldErrors(t, core.TranslateValidationErrors(err, translator))
			got := make([]string, 0, len(flds))
			for _, fld := range flds {
				got = append(got, fld.Field)
			}
			assert.Equal(t, tt.invalid, got)
		})
	}

	nv := community.NewVote{VoterID: testutil.LearnerID}
	flds := fieldErrors(t, core.TranslateValidationErrors(nv.Validate(validate), translator))
	assert.Equal(t, "invalid voter id", flds[0].Error)
}

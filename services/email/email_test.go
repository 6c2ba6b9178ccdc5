package emailsvc

import (
	"bytes"
	"encoding/json"
	"net/mail"
	"strings"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/studio/core"
	"github.com/trezcool/studio/core/community"
	testutil "github.com/trezcool/studio/tests"
)

func rejectionMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Mod", Address: "mod@example.com"}},
		Subject:      "Community post blocked",
		TemplateName: "post_rejected",
		TemplateData: community.RejectedPost{
			AuthorID:     testutil.LearnerID,
			Title:        "Hello",
			Reason:       "Contains inappropriate content",
			FlaggedWords: []string{"hate", "stupid"},
		},
	}
}

func TestConsoleServiceMock(t *testing.T) {
	conf := testutil.Config(t)
	logger := testutil.NewLogger()
	svc := NewConsoleServiceMock(conf, logger)

	svc.SendMessages(
		rejectionMessage(),
		&core.EmailMessage{Subject: "no recipients", BodyStr: "hi"},
		&core.EmailMessage{To: []mail.Address{{Address: "a@b.c"}}, Subject: "plain", BodyStr: "hi"},
		&core.EmailMessage{To: []mail.Address{{Address: "a@b.c"}}, TemplateName: "missing"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].TextContent, "Flagged: hate, stupid")
	assert.Contains(t, sent[0].TextContent, "Studio")
	assert.Contains(t, sent[0].HTMLContent, "<code>hate</code>")
	assert.Equal(t, "hi", sent[1].TextContent)
	assert.Empty(t, sent[1].HTMLContent)

	_, found := logger.Find("error", "rendering email")
	assert.True(t, found)
}

func TestConsoleService_format(t *testing.T) {
	conf := testutil.Config(t)
	var out bytes.Buffer
	svc := NewConsoleService(conf, testutil.NewLogger())
	svc.out = &out

	msg := rejectionMessage()
	require.True(t, svc.sendMessage(msg))

	body := out.String()
	assert.Contains(t, body, "Subject: [Studio] Community post blocked\r\n")
	assert.Contains(t, body, `To: "Mod" <mod@example.com>`)
	assert.Contains(t, body, "Content-Type: multipart/alternative; boundary=")
	assert.Contains(t, body, "text/html; charset=utf-8")
	assert.NotContains(t, body, "CC:")
}

func TestSendgridService(t *testing.T) {
	conf := testutil.Config(t)
	conf.SendgridApiKey = "key"
	logger := testutil.NewLogger()
	svc := NewSendgridService(conf, logger)

	msg := rejectionMessage()
	require.NoError(t, msg.Render(conf))

	t.Run("request", func(t *testing.T) {
		req := svc.request(*msg)
		assert.Equal(t, rest.Post, req.Method)
		assert.Equal(t, host+endpoint, req.BaseURL)
		assert.Equal(t, "Bearer key", req.Headers["Authorization"])

		var payload struct {
			Personalizations []struct {
				Subject string `json:"subject"`
				To      []struct {
					Email string `json:"email"`
				} `json:"to"`
			} `json:"personalizations"`
			Content []struct {
				Type string `json:"type"`
			} `json:"content"`
		}
		require.NoError(t, json.Unmarshal(req.Body, &payload))
		require.Len(t, payload.Personalizations, 1)
		assert.Equal(t, "[Studio] Community post blocked", payload.Personalizations[0].Subject)
		assert.Equal(t, "mod@example.com", payload.Personalizations[0].To[0].Email)
		require.Len(t, payload.Content, 2)
		assert.Equal(t, "text/plain", payload.Content[0].Type)
		assert.Equal(t, "text/html", payload.Content[1].Type)
	})

	t.Run("error status is logged", func(t *testing.T) {
		sendFunc = func(rest.Request) (*rest.Response, error) {
			return &rest.Response{StatusCode: 401, Body: "unauthorized"}, nil
		}
		defer func() { sendFunc = defaultSendFunc }()

		svc.send(*msg)
		e, found := logger.Find("error", "status: 401")
		require.True(t, found)
		assert.True(t, strings.Contains(e.Msg, "unauthorized"))
	})
}

var defaultSendFunc = sendFunc

package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/studio/core"
)

func newTestLogger(buf *bytes.Buffer) *RollbarLogger {
	conf := &core.Config{Env: "TEST", TestMode: true}
	return NewRollbarLogger(log.New(buf, "", 0), conf)
}

func TestRollbarLogger_prepare(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	err := errors.New("boom")
	extra := map[string]interface{}{"k": "v"}

	got := l.prepare("msg", []interface{}{err, core.LearnerTag("anon_1"), extra, core.LearnerTag("anon_2")})
	assert.Equal(t, []interface{}{"msg", err, extra}, got)
}

func TestRollbarLogger_print(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)

	l.Warn("post rejected", map[string]interface{}{"flagged_words": []string{"hate"}}, core.LearnerTag("anon_1"))
	assert.Equal(t, "post rejected\nmap[flagged_words:[hate]]\nlearner: anon_1\n", buf.String())
}

// Package testutil holds the fixtures shared by the package tests.
package testutil

import (
	"strings"
	"sync"
	"testing"

	"github.com/trezcool/studio/assets"
	"github.com/trezcool/studio/core"
)

const (
	LearnerID = "anon_1700000000000_0123456789abcdef0123456789abcdef"
	VoterID   = "voter_1700000000000_fedcba9876543210fedcba9876543210"
)

// Config returns a test configuration, with the embedded email templates parsed.
func Config(t *testing.T, moderators ...string) *core.Config {
	t.Helper()
	conf := &core.Config{
		Env:             "TEST",
		TestMode:        true,
		AppName:         "Studio",
		FrontendBaseURL: "http://studio.test",
		ModeratorEmails: moderators,
		Storage:         core.StorageMemory,
	}
	core.ParseEmailTemplates(assets.Templates, conf, NewLogger())
	return conf
}

// Entry is a message logged through a Logger.
type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger is a core.Logger keeping the logged entries in memory.
type Logger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return new(Logger) }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }

func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Find returns the first entry of the given level whose message contains substr.
func (l *Logger) Find(level, substr string) (Entry, bool) {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return e, true
		}
	}
	return Entry{}, false
}

// Package safety classifies user submitted text as clean or flagged.
//
// The checks run in a fixed order: markup, script injection, the wordlist and the harmful topic
// patterns. Markup and script injection are terminal; the wordlist and topic scans collect every
// match. A Filter holds nothing but compiled patterns and is safe for concurrent use.
package safety

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/trezcool/studio/core"
)

const (
	ReasonMarkup        = "markup not allowed"
	ReasonScript        = "script content not allowed"
	ReasonInappropriate = "content contains inappropriate language or topics"

	FlagMarkup = "markup"
	FlagScript = "script injection"
)

// Result is the outcome of a content check.
type Result struct {
	IsClean      bool     `json:"is_clean"`
	Reason       string   `json:"reason,omitempty"`
	FlaggedWords []string `json:"flagged_words,omitempty"`
}

// Err returns a *core.ValidationError for a flagged result, nil for a clean one.
func (r Result) Err(field string) error {
	if r.IsClean {
		return nil
	}
	msg := r.Reason
	if len(r.FlaggedWords) > 0 {
		msg = fmt.Sprintf("%s: %s", r.Reason, strings.Join(r.FlaggedWords, ", "))
	}
	return core.NewValidationError(errors.New(r.Reason), core.FieldError{Field: field, Error: msg})
}

type word struct {
	text string
	re   *regexp.Regexp
}

// Filter holds compiled patterns for fast matching.
type Filter struct {
	markup  *regexp.Regexp
	scripts []*regexp.Regexp
	words   []word
	topics  []*regexp.Regexp
}

// New creates a Filter from raw patterns, compiling regexes.
// Topic patterns that do not compile are skipped; use Compile to get the errors.
func New(p Patterns) *Filter {
	f, _ := compile(p)
	return f
}

// Compile is like New but also reports every topic pattern that failed to compile.
func Compile(p Patterns) (*Filter, error) {
	f, errs := compile(p)
	if len(errs) > 0 {
		return f, errors.Errorf("invalid topic patterns: %s", strings.Join(errs, "; "))
	}
	return f, nil
}

func compile(p Patterns) (*Filter, []string) {
	f := &Filter{
		markup:  regexp.MustCompile(markupPattern),
		scripts: make([]*regexp.Regexp, 0, len(scriptPatterns)),
		words:   make([]word, 0, len(p.Words)),
		topics:  make([]*regexp.Regexp, 0, len(p.Topics)),
	}
	for _, s := range scriptPatterns {
		f.scripts = append(f.scripts, regexp.MustCompile(s))
	}

	seen := make(map[string]bool, len(p.Words))
	for _, w := range p.Words {
		w = core.CleanString(w, true /* lower */)
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		f.words = append(f.words, word{text: w, re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)})
	}

	var errs []string
	for _, t := range p.Topics {
		re, err := regexp.Compile("(?i)" + t)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		f.topics = append(f.topics, re)
	}
	return f, errs
}

// NewDefault creates a Filter with the built-in patterns.
func NewDefault() *Filter {
	return New(DefaultPatterns)
}

// Load reads patterns from a YAML file. Falls back to defaults if path is empty or the file doesn't exist.
func Load(path string) (*Filter, error) {
	if path == "" {
		return NewDefault(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDefault(), nil
		}
		return nil, errors.Wrap(err, "reading safety patterns")
	}

	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrap(err, "decoding safety patterns")
	}
	return Compile(p)
}

// Check classifies text. It never fails: the worst case is an over-broad match.
func (f *Filter) Check(text string) Result {
	if text == "" {
		return Result{IsClean: true}
	}

	if f.markup.MatchString(text) {
		return Result{Reason: ReasonMarkup, FlaggedWords: []string{FlagMarkup}}
	}
	for _, re := range f.scripts {
		if re.MatchString(text) {
			return Result{Reason: ReasonScript, FlaggedWords: []string{FlagScript}}
		}
	}

	var flagged []string
	for _, w := range f.words {
		if w.re.MatchString(text) {
			flagged = append(flagged, w.text)
		}
	}
	for _, re := range f.topics {
		for _, m := range re.FindAllString(text, -1) {
			flagged = append(flagged, strings.ToLower(m))
		}
	}

	if len(flagged) == 0 {
		return Result{IsClean: true}
	}
	return Result{Reason: ReasonInappropriate, FlaggedWords: dedupe(flagged)}
}

// dedupe removes duplicates, keeping the order of first discovery.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}

var defaultFilter = NewDefault()

// Check classifies text with the built-in patterns.
func Check(text string) Result {
	return defaultFilter.Check(text)
}

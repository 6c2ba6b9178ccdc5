// Package identity issues the opaque anonymous and voter ids used by the community features.
package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	AnonymousPrefix = "anon"
	VoterPrefix     = "voter"

	AnonymousKey = "anonymous_id"
	VoterKey     = "voter_id"
)

var (
	// mockable
	nowFunc    = time.Now
	randReader = rand.Reader

	idRegex = regexp.MustCompile(`^([a-z]+)_(\d+)_([0-9a-f]{32})$`)
)

// Store is a key-value store the ids are cached in.
type Store interface {
	// Get returns the value stored under key, and whether it was found.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Generate returns a new `<prefix>_<unix millis>_<32 hex chars>` id.
func Generate(prefix string) (string, error) {
	buf := make([]byte, 16)
	if _, err := io.ReadFull(randReader, buf); err != nil {
		return "", errors.Wrap(err, "reading random bytes")
	}
	millis := nowFunc().UnixNano() / int64(time.Millisecond)
	return fmt.Sprintf("%s_%d_%s", prefix, millis, hex.EncodeToString(buf)), nil
}

// Valid reports whether id is a well formed id with the given prefix.
func Valid(prefix, id string) bool {
	m := idRegex.FindStringSubmatch(id)
	if m == nil || m[1] != prefix {
		return false
	}
	_, err := strconv.ParseInt(m[2], 10, 64)
	return err == nil
}

// IssuedAt returns the time encoded in a valid id.
func IssuedAt(id string) (time.Time, bool) {
	m := idRegex.FindStringSubmatch(id)
	if m == nil {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, millis*int64(time.Millisecond)), true
}

// Provider returns a stable id, generating and persisting it on first use.
type Provider struct {
	store  Store
	prefix string
	key    string
}

// NewProvider returns a Provider caching ids with prefix under key in store.
func NewProvider(store Store, prefix, key string) *Provider {
	return &Provider{store: store, prefix: prefix, key: key}
}

// NewAnonymousProvider returns the learner id Provider.
func NewAnonymousProvider(store Store) *Provider {
	return NewProvider(store, AnonymousPrefix, AnonymousKey)
}

// NewVoterProvider returns the voter id Provider.
func NewVoterProvider(store Store) *Provider {
	return NewProvider(store, VoterPrefix, VoterKey)
}

// Prefix is the prefix of the ids p issues.
func (p *Provider) Prefix() string { return p.prefix }

// ID returns the cached id, or generates, persists and returns a new one.
// A malformed cached value is replaced.
func (p *Provider) ID(ctx context.Context) (string, error) {
	id, ok, err := p.store.Get(ctx, p.key)
	if err != nil {
		return "", errors.Wrapf(err, "reading %s", p.key)
	}
	if ok && Valid(p.prefix, id) {
		return id, nil
	}

	id, err = Generate(p.prefix)
	if err != nil {
		return "", errors.Wrapf(err, "generating %s", p.key)
	}
	if err = p.store.Set(ctx, p.key, id); err != nil {
		return "", errors.Wrapf(err, "persisting %s", p.key)
	}
	return id, nil
}

package identity

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRandReader = randReader

type mapStore struct {
	values map[string]string
	getErr error
	setErr error
}

func (s *mapStore) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *mapStore) Set(_ context.Context, key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	return nil
}

func newMapStore() *mapStore { return &mapStore{values: make(map[string]string)} }

func TestGenerate(t *testing.T) {
	nowFunc = func() time.Time { return time.Unix(1700000000, 123*int64(time.Millisecond)) }
	randReader = bytes.NewReader(bytes.Repeat([]byte{0xab}, 16))
	defer func() {
		nowFunc = time.Now
		randReader = defaultRandReader
	}()

	id, err := Generate("anon")
	require.NoError(t, err)
	assert.Equal(t, "anon_1700000000123_"+strings.Repeat("ab", 16), id)
}

func TestGenerate_unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := Generate(VoterPrefix)
		require.NoError(t, err)
		assert.True(t, Valid(VoterPrefix, id), id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestGenerate_randFailure(t *testing.T) {
	randReader = bytes.NewReader([]byte{1, 2, 3})
	defer func() { randReader = defaultRandReader }()

	_, err := Generate(AnonymousPrefix)
	assert.Error(t, err)
}

func TestValid(t *testing.T) {
	hex32 := strings.Repeat("0f", 16)
	tests := []struct {
		name   string
		prefix string
		id     string
		want   bool
	}{
		{name: "valid anon", prefix: "anon", id: "anon_1700000000000_" + hex32, want: true},
		{name: "valid voter", prefix: "voter", id: "voter_1_" + hex32, want: true},
		{name: "wrong prefix", prefix: "voter", id: "anon_1700000000000_" + hex32},
		{name: "short random part", prefix: "anon", id: "anon_1700000000000_abc"},
		{name: "uppercase hex", prefix: "anon", id: "anon_1700000000000_" + strings.ToUpper(strings.Repeat("ab", 16))},
		{name: "non numeric time", prefix: "anon", id: "anon_now_" + hex32},
		{name: "trailing garbage", prefix: "anon", id: "anon_1_" + hex32 + "x"},
		{name: "empty", prefix: "anon", id: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Valid(tt.prefix, tt.id); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIssuedAt(t *testing.T) {
	ts, ok := IssuedAt("anon_1700000000123_" + strings.Repeat("ab", 16))
	require.True(t, ok)
	assert.Equal(t, int64(1700000000123), ts.UnixNano()/int64(time.Millisecond))

	_, ok = IssuedAt("nope")
	assert.False(t, ok)
}

func TestProvider_ID(t *testing.T) {
	ctx := context.Background()

	t.Run("generates then reuses", func(t *testing.T) {
		store := newMapStore()
		p := NewAnonymousProvider(store)

		id, err := p.ID(ctx)
		require.NoError(t, err)
		assert.True(t, Valid(AnonymousPrefix, id))
		assert.Equal(t, id, store.values[AnonymousKey])

		again, err := p.ID(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, again)
	})

	t.Run("keys do not collide", func(t *testing.T) {
		store := newMapStore()
		anon, err := NewAnonymousProvider(store).ID(ctx)
		require.NoError(t, err)
		voter, err := NewVoterProvider(store).ID(ctx)
		require.NoError(t, err)

		assert.NotEqual(t, anon, voter)
		assert.True(t, Valid(VoterPrefix, voter))
		assert.Len(t, store.values, 2)
	})

	t.Run("malformed cached value is replaced", func(t *testing.T) {
		store := newMapStore()
		store.values[VoterKey] = "garbage"
		id, err := NewVoterProvider(store).ID(ctx)
		require.NoError(t, err)
		assert.True(t, Valid(VoterPrefix, id))
		assert.Equal(t, id, store.values[VoterKey])
	})

	t.Run("store errors", func(t *testing.T) {
		boom := errors.New("boom")

		_, err := NewAnonymousProvider(&mapStore{values: map[string]string{}, getErr: boom}).ID(ctx)
		assert.Error(t, err)

		_, err = NewAnonymousProvider(&mapStore{values: map[string]string{}, setErr: boom}).ID(ctx)
		assert.Error(t, err)
	})
}

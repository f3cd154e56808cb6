package revocation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis keeps keys in a map; only Set and Exists are implemented.
type fakeRedis struct {
	redis.Cmdable
	keys map[string]time.Duration
	err  error
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.keys[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "exists")
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.keys[k]; ok {
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func TestRedisStore_RevokeAndCheck(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{keys: map[string]time.Duration{}}
	s := NewRedisStore(fake)

	revoked, err := s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.Revoke(ctx, "jti-1", time.Hour))
	assert.Equal(t, time.Hour, fake.keys["jwt:blacklist:jti-1"])

	revoked, err = s.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = s.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRedisStore_ExpiredTokenIsNotStored(t *testing.T) {
	fake := &fakeRedis{keys: map[string]time.Duration{}}
	s := NewRedisStore(fake)

	require.NoError(t, s.Revoke(context.Background(), "jti-old", 0))
	assert.Empty(t, fake.keys)
}

func TestRedisStore_Errors(t *testing.T) {
	fake := &fakeRedis{keys: map[string]time.Duration{}, err: errors.New("connection refused")}
	s := NewRedisStore(fake)

	err := s.Revoke(context.Background(), "jti", time.Minute)
	require.ErrorContains(t, err, "revoke token")

	_, err = s.IsRevoked(context.Background(), "jti")
	require.ErrorContains(t, err, "check revocation")
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisClient(ctx, "127.0.0.1:1", "", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	require.NoError(t, s.Revoke(context.Background(), "x", time.Hour))
	revoked, err := s.IsRevoked(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, revoked)
}

package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_NoClientIsNoop(t *testing.T) {
	SetBlacklistClient(nil)
	ctx := context.Background()

	require.NoError(t, BlacklistAccessToken(ctx, "tok", time.Minute))
	black, err := IsAccessTokenBlacklisted(ctx, "tok")
	require.NoError(t, err)
	require.False(t, black)
}

func TestBlacklist_SetAndExpire(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	SetBlacklistClient(client)
	defer SetBlacklistClient(nil)

	ctx := context.Background()
	require.NoError(t, BlacklistAccessToken(ctx, "tok-x", 1*time.Second))

	black, err := IsAccessTokenBlacklisted(ctx, "tok-x")
	require.NoError(t, err)
	require.True(t, black)

	// other tokens unaffected
	black, err = IsAccessTokenBlacklisted(ctx, "tok-y")
	require.NoError(t, err)
	require.False(t, black)

	// expires with TTL
	m.FastForward(2 * time.Second)
	black, err = IsAccessTokenBlacklisted(ctx, "tok-x")
	require.NoError(t, err)
	require.False(t, black)
}

package cache

import (
	"context"
	"testing"

	"focustracks/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// With no Redis client the cache helpers must be silent no-ops; ConnectRedis
// guarantees the client is nil whenever the connection failed.
func TestCacheDisabledWithoutClient(t *testing.T) {
	require.Nil(t, RedisClient)

	tracks, err := GetPlaylistTracks(context.Background(), 1)
	assert.NoError(t, err)
	assert.Nil(t, tracks)

	assert.NoError(t, SetPlaylistTracks(context.Background(), 1, []*model.Track{{ID: 10}}))
	assert.NoError(t, InvalidatePlaylistTracks(context.Background(), 1))
}

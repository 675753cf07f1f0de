package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"focustracks/model"

	"github.com/redis/go-redis/v9"
)

// playlistTracksTTL bounds staleness if an invalidation is ever missed.
const playlistTracksTTL = 24 * time.Hour

// playlistTracksKey builds the cache key for a playlist's ordered tracks.
func playlistTracksKey(playlistID int64) string {
	return fmt.Sprintf("playlist:tracks:%d", playlistID)
}

// GetPlaylistTracks returns the cached ordered track list for a playlist, or
// (nil, nil) on a cache miss.
func GetPlaylistTracks(ctx context.Context, playlistID int64) ([]*model.Track, error) {
	if RedisClient == nil {
		return nil, nil
	}

	data, err := RedisClient.Get(ctx, playlistTracksKey(playlistID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read playlist tracks from cache: %w", err)
	}

	var tracks []*model.Track
	if err := json.Unmarshal([]byte(data), &tracks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached playlist tracks: %w", err)
	}
	return tracks, nil
}

// SetPlaylistTracks stores the ordered track list for a playlist.
func SetPlaylistTracks(ctx context.Context, playlistID int64, tracks []*model.Track) error {
	if RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		return fmt.Errorf("failed to marshal playlist tracks: %w", err)
	}

	if err := RedisClient.Set(ctx, playlistTracksKey(playlistID), data, playlistTracksTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache playlist tracks: %w", err)
	}
	return nil
}

// InvalidatePlaylistTracks drops the cached track list after a membership
// mutation.
func InvalidatePlaylistTracks(ctx context.Context, playlistID int64) error {
	if RedisClient == nil {
		return nil
	}

	if err := RedisClient.Del(ctx, playlistTracksKey(playlistID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate playlist tracks cache: %w", err)
	}
	return nil
}

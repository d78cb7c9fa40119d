package cache

import (
	"context"
	"encoding/json"
	"time"

	"impostorhunt/internal/model"

	"github.com/redis/go-redis/v9"
)

// LobbyCache absorbs lobby-list polling: the public-games listing is
// served from Redis for a few seconds between rebuilds, and invalidated
// whenever a lobby mutates.
type LobbyCache interface {
	SetListing(ctx context.Context, games []model.PublicGame) error
	GetListing(ctx context.Context) ([]model.PublicGame, bool, error)
	Invalidate(ctx context.Context) error
}

const lobbyKey = "lobby:public"

type lobbyCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewLobbyCache creates a new lobby cache
func NewLobbyCache(client *redis.Client, ttl time.Duration) LobbyCache {
	return &lobbyCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *lobbyCache) SetListing(ctx context.Context, games []model.PublicGame) error {
	data, err := json.Marshal(games)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, lobbyKey, data, c.ttl).Err()
}

func (c *lobbyCache) GetListing(ctx context.Context) ([]model.PublicGame, bool, error) {
	data, err := c.client.Get(ctx, lobbyKey).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var games []model.PublicGame
	if err := json.Unmarshal([]byte(data), &games); err != nil {
		return nil, false, err
	}
	return games, true, nil
}

func (c *lobbyCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, lobbyKey).Err()
}

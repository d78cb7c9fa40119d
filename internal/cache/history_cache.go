package cache

import (
	"fmt"

	"impostorhunt/internal/model"

	lru "github.com/hashicorp/golang-lru"
)

// HistoryCache keeps recently extracted round histories so concurrent AI
// generations for the same (game, round) share one store fetch.
type HistoryCache struct {
	cache *lru.ARCCache
}

func NewHistoryCache(size int) (*HistoryCache, error) {
	c, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("lru new instance of arc cache: %v", err)
	}
	return &HistoryCache{cache: c}, nil
}

func historyKey(gameID string, round int) string {
	return fmt.Sprintf("%s:%d", gameID, round)
}

func (c *HistoryCache) Get(gameID string, round int) ([]model.RoundHistory, bool) {
	v, ok := c.cache.Get(historyKey(gameID, round))
	if !ok {
		return nil, false
	}
	history, ok := v.([]model.RoundHistory)
	return history, ok
}

func (c *HistoryCache) Add(gameID string, round int, history []model.RoundHistory) {
	c.cache.Add(historyKey(gameID, round), history)
}

package services

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sahilm/fuzzy"

	"github.com/spicelanes/game-server/spicelanes/database/models"
	"github.com/spicelanes/game-server/spicelanes/database/repositories"
)

const shipCacheSize = 10_000

// shipSearchItems implements fuzzy.Source over ship names.
type shipSearchItems []shipSearchItem

type shipSearchItem struct {
	Ship *models.Ship
	Name string
}

func (s shipSearchItems) String(i int) string { return s[i].Name }
func (s shipSearchItems) Len() int            { return len(s) }

// ShipIndex serves ship attribute reads through an LRU cache and ship name
// search over the full registry. Mutating handlers call Invalidate after a
// ship write so the next read refetches.
type ShipIndex struct {
	ships repositories.ShipRepository
	cache *lru.Cache
}

func NewShipIndex(ships repositories.ShipRepository) *ShipIndex {
	cache, _ := lru.New(shipCacheSize)
	return &ShipIndex{ships: ships, cache: cache}
}

// Get returns one ship's attributes, from cache when possible.
func (s *ShipIndex) Get(ctx context.Context, id int64) (*models.Ship, error) {
	if cached, ok := s.cache.Get(id); ok {
		return cached.(*models.Ship), nil
	}

	ship, err := s.ships.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(id, ship)
	return ship, nil
}

// GetByOwner returns the owner's whole fleet in one query and warms the
// cache with the result.
func (s *ShipIndex) GetByOwner(ctx context.Context, address string) ([]*models.Ship, error) {
	ships, err := s.ships.GetByOwner(ctx, address)
	if err != nil {
		return nil, err
	}
	for _, ship := range ships {
		s.cache.Add(ship.ID, ship)
	}
	return ships, nil
}

// Invalidate drops cached entries after a ship write.
func (s *ShipIndex) Invalidate(ids ...int64) {
	for _, id := range ids {
		s.cache.Remove(id)
	}
}

// Search fuzzy-matches ship names across the registry, best matches first.
func (s *ShipIndex) Search(ctx context.Context, query string, limit int) ([]*models.Ship, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	all, err := s.ships.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ships: %w", err)
	}

	items := make(shipSearchItems, len(all))
	for i, ship := range all {
		items[i] = shipSearchItem{Ship: ship, Name: strings.ToLower(ship.Name)}
	}

	matches := fuzzy.FindFrom(strings.ToLower(query), items)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]*models.Ship, len(matches))
	for i, match := range matches {
		results[i] = items[match.Index].Ship
	}
	return results, nil
}

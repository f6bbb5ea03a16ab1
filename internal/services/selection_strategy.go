// internal/services/selection_strategy.go
package services

import (
	"math/rand"
	"sync"

	"github.com/deskhub/deskhub-backend/internal/models"
)

// SelectionStrategy picks one product out of a non-empty candidate set.
// The configurator is polymorphic over the strategy so that production can
// use randomness while tests swap in a deterministic pick.
type SelectionStrategy interface {
	Select(candidates []models.Product) *models.Product
}

// RandomStrategy picks uniformly at random. The generator is owned by the
// strategy and guarded by a mutex, so concurrent recommendations never
// share unsynchronized random state.
type RandomStrategy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomStrategy(seed int64) *RandomStrategy {
	return &RandomStrategy{rng: rand.New(rand.NewSource(seed))}
}

func (s *RandomStrategy) Select(candidates []models.Product) *models.Product {
	if len(candidates) == 0 {
		return nil
	}

	s.mu.Lock()
	idx := s.rng.Intn(len(candidates))
	s.mu.Unlock()

	return &candidates[idx]
}

// CheapestStrategy picks the lowest-priced candidate, breaking price ties
// by lowest id. Fully reproducible for a given catalog snapshot.
type CheapestStrategy struct{}

func (CheapestStrategy) Select(candidates []models.Product) *models.Product {
	if len(candidates) == 0 {
		return nil
	}

	best := &candidates[0]
	for i := 1; i < len(candidates); i++ {
		c := &candidates[i]
		if c.Price < best.Price || (c.Price == best.Price && c.ID < best.ID) {
			best = c
		}
	}
	return best
}

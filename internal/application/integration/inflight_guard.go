package integration

import (
	"sync"

	"github.com/google/uuid"

	"github.com/retailcrm/backend/internal/domain/integration"
)

type guardKey struct {
	userID      uuid.UUID
	marketplace integration.MarketplaceCode
}

// InFlightGuard allows one sync pass per (user, marketplace) at a time
type InFlightGuard struct {
	mu     sync.Mutex
	active map[guardKey]struct{}
}

// NewInFlightGuard creates an empty guard
func NewInFlightGuard() *InFlightGuard {
	return &InFlightGuard{active: make(map[guardKey]struct{})}
}

// TryAcquire claims the slot; ok is false when a pass is already running.
// release is idempotent.
func (g *InFlightGuard) TryAcquire(userID uuid.UUID, marketplace integration.MarketplaceCode) (release func(), ok bool) {
	key := guardKey{userID: userID, marketplace: marketplace}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[key]; busy {
		return func() {}, false
	}
	g.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, true
}

// Package hub is the pool registry. Unlike a lobby server that mints
// rooms on demand, the tier set here is fixed at process start and never
// changes, so the registry is a plain read-only map; all mutable state
// lives inside each pool's own actor loop.
package hub

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/mindduel/backend/internal/chain"
	"github.com/mindduel/backend/internal/pool"
	"github.com/mindduel/backend/internal/questions"
	"github.com/mindduel/backend/pkg/metrics"
)

type Hub struct {
	pools map[string]*pool.Pool
	order []string // tier IDs sorted by stake, for stable listings
}

// New spins up one pool actor per configured tier.
func New(ctx context.Context, tiers map[string]float64, provider questions.Provider, staker chain.Staker, log *zap.Logger, met *metrics.Metrics) *Hub {
	h := &Hub{pools: make(map[string]*pool.Pool, len(tiers))}
	for id, stake := range tiers {
		h.pools[id] = pool.New(ctx, id, stake, provider, staker, log, met)
		h.order = append(h.order, id)
	}
	sort.Slice(h.order, func(i, j int) bool { return tiers[h.order[i]] < tiers[h.order[j]] })
	return h
}

// Get returns the pool for a tier, or ok=false for an unconfigured one —
// the UnknownPool error path.
func (h *Hub) Get(poolID string) (*pool.Pool, bool) {
	p, ok := h.pools[poolID]
	return p, ok
}

// Views collects a snapshot of every pool, in stake order.
func (h *Hub) Views() []pool.View {
	views := make([]pool.View, 0, len(h.order))
	for _, id := range h.order {
		reply := make(chan pool.View, 1)
		h.pools[id].Inbox() <- pool.GetState{Reply: reply}
		select {
		case v := <-reply:
			views = append(views, v)
		case <-time.After(time.Second):
			// A wedged pool shouldn't wedge the listing.
		}
	}
	return views
}

// Shutdown stops every pool actor.
func (h *Hub) Shutdown() {
	for _, p := range h.pools {
		p.Inbox() <- pool.Shutdown{}
	}
}

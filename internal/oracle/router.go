package oracle

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/freeeve/stalesearch/internal/board"
)

// Router sends each board to the oracle that covers it: Exact for boards up to
// Exact.MaxPieces(), Heuristic for anything larger. With no oracle for a board
// the outcome is Unknown; an exact miss is never handed to the heuristic oracle.
type Router struct {
	Exact     Oracle
	Heuristic Oracle
}

func (r *Router) Lookup(ctx context.Context, b board.Board) (Outcome, error) {
	n := b.PieceCount()
	if r.Exact != nil && n <= r.Exact.MaxPieces() {
		return r.Exact.Lookup(ctx, b)
	}
	if r.Heuristic != nil && n <= r.Heuristic.MaxPieces() {
		return r.Heuristic.Lookup(ctx, b)
	}
	return Outcome{Source: SourceNone}, nil
}

func (r *Router) MaxPieces() int {
	m := 0
	for _, o := range []Oracle{r.Exact, r.Heuristic} {
		if o != nil && o.MaxPieces() > m {
			m = o.MaxPieces()
		}
	}
	return m
}

func (r *Router) Name() string { return "router" }

// Cache memoises another oracle's answers by canonical board. Errors are not
// cached. A hit on a symmetric image of the stored board drops BestMove, which
// only makes sense on the board it was computed for.
type Cache struct {
	next Oracle

	mu      sync.RWMutex
	entries map[string]cacheEntry

	hits   int64
	misses int64
}

// NewCache wraps next.
func NewCache(next Oracle) *Cache {
	return &Cache{next: next, entries: make(map[string]cacheEntry)}
}

type cacheEntry struct {
	placement string
	out       Outcome
}

func (c *Cache) Lookup(ctx context.Context, b board.Board) (Outcome, error) {
	key := board.CanonicalKey(b)
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		atomic.AddInt64(&c.hits, 1)
		out := e.out
		if e.placement != b.Placement() {
			out.BestMove = ""
		}
		return out, nil
	}
	atomic.AddInt64(&c.misses, 1)

	out, err := c.next.Lookup(ctx, b)
	if err != nil {
		return out, err
	}
	c.mu.Lock()
	c.entries[key] = cacheEntry{placement: b.Placement(), out: out}
	c.mu.Unlock()
	return out, nil
}

func (c *Cache) MaxPieces() int { return c.next.MaxPieces() }
func (c *Cache) Name() string   { return c.next.Name() }

// Stats returns the hit and miss counts.
func (c *Cache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

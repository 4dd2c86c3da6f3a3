// Package report collects stale boards with their oracle outcomes and writes
// them out per piece-count bucket.
package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/freeeve/stalesearch/internal/board"
	"github.com/freeeve/stalesearch/internal/oracle"
	"github.com/freeeve/stalesearch/internal/predicate"
)

// Record is one stale board and what the oracle said about it.
type Record struct {
	Board      board.Board
	Predicates predicate.Result
	Outcome    oracle.Outcome
}

// Pieces returns the bucket the record belongs to.
func (r Record) Pieces() int { return r.Board.PieceCount() }

// Bucket holds the stale records of one piece count, split by verdict.
type Bucket struct {
	Pieces     int
	Confirmed  []Record // Draw
	Exceptions []Record // WhiteWin or BlackWin
	Unverified []Record // Unknown
}

// Stale returns the total number of records in the bucket.
func (b *Bucket) Stale() int {
	return len(b.Confirmed) + len(b.Exceptions) + len(b.Unverified)
}

// Aggregator files stale records into buckets. Safe for concurrent use.
type Aggregator struct {
	mu      sync.Mutex
	buckets map[int]*Bucket
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{buckets: make(map[int]*Bucket)}
}

// Add files r and reports whether it was kept. Records whose predicates are
// not all satisfied are dropped.
func (a *Aggregator) Add(r Record) bool {
	if !r.Predicates.Stale() {
		return false
	}
	n := r.Pieces()

	a.mu.Lock()
	defer a.mu.Unlock()
	b, ok := a.buckets[n]
	if !ok {
		b = &Bucket{Pieces: n}
		a.buckets[n] = b
	}
	switch r.Outcome.Verdict {
	case oracle.Draw:
		b.Confirmed = append(b.Confirmed, r)
	case oracle.WhiteWin, oracle.BlackWin:
		b.Exceptions = append(b.Exceptions, r)
	default:
		b.Unverified = append(b.Unverified, r)
	}
	return true
}

// Buckets returns the buckets in increasing piece count.
func (a *Aggregator) Buckets() []*Bucket {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Bucket, 0, len(a.buckets))
	for _, b := range a.buckets {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pieces < out[j].Pieces })
	return out
}

// Bucket returns the bucket for n pieces, or nil if nothing was filed there.
func (a *Aggregator) Bucket(n int) *Bucket {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.buckets[n]
}

// Counts is the per-bucket tally in a Summary.
type Counts struct {
	Pieces     int
	Stale      int
	Confirmed  int
	Exceptions int
	Unverified int
}

// Summary tallies every bucket plus a total row (Pieces is 0 there).
type Summary struct {
	Buckets []Counts
	Total   Counts
}

// Summary returns the current counts.
func (a *Aggregator) Summary() Summary {
	var s Summary
	for _, b := range a.Buckets() {
		c := Counts{
			Pieces:     b.Pieces,
			Stale:      b.Stale(),
			Confirmed:  len(b.Confirmed),
			Exceptions: len(b.Exceptions),
			Unverified: len(b.Unverified),
		}
		s.Buckets = append(s.Buckets, c)
		s.Total.Stale += c.Stale
		s.Total.Confirmed += c.Confirmed
		s.Total.Exceptions += c.Exceptions
		s.Total.Unverified += c.Unverified
	}
	return s
}

func (s Summary) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-8s %10s %10s %10s %10s\n", "pieces", "stale", "confirmed", "exceptions", "unverified")
	for _, c := range s.Buckets {
		fmt.Fprintf(&sb, "%-8d %10d %10d %10d %10d\n", c.Pieces, c.Stale, c.Confirmed, c.Exceptions, c.Unverified)
	}
	fmt.Fprintf(&sb, "%-8s %10d %10d %10d %10d\n", "total", s.Total.Stale, s.Total.Confirmed, s.Total.Exceptions, s.Total.Unverified)
	return sb.String()
}

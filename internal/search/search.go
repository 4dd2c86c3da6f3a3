// Package search runs one study: enumerate every mirrored board of a piece
// count, keep the stale ones, ask the oracle about each and write the buckets.
package search

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/stalesearch/internal/board"
	"github.com/freeeve/stalesearch/internal/enumerate"
	"github.com/freeeve/stalesearch/internal/oracle"
	"github.com/freeeve/stalesearch/internal/predicate"
	"github.com/freeeve/stalesearch/internal/report"
)

// Config configures a search run.
type Config struct {
	Pieces        int               // Total pieces per board, kings included
	Workers       int               // Combinations scanned in parallel (1 = sequential)
	Predicates    predicate.Options // Knobs for the predicate evaluator
	OutputDir     string            // Bucket files are written here; nothing is written when empty
	Compress      bool              // zstd-compress bucket files
	ProgressEvery int               // Log progress every N boards
	Logger        zerolog.Logger
}

// Stats summarises a run.
type Stats struct {
	Combinations int
	Boards       int64
	Stale        int64
	Confirmed    int64
	Exceptions   int64
	Unverified   int64
	Heuristic    int64 // Verdicts that came from the engine, not a tablebase
	Files        []string
	Elapsed      time.Duration
}

// Search is a configured run. Create one with New.
type Search struct {
	cfg    Config
	log    zerolog.Logger
	oracle oracle.Oracle
	enum   *enumerate.Enumerator
	agg    *report.Aggregator

	boards int64
	stale  int64
}

// New validates cfg and prepares a run. A nil oracle answers Unknown for
// every board.
func New(cfg Config, orc oracle.Oracle) (*Search, error) {
	enum, err := enumerate.New(cfg.Pieces)
	if err != nil {
		return nil, err
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = 100_000
	}
	if orc == nil {
		orc = oracle.Noop{}
	}
	return &Search{
		cfg:    cfg,
		log:    cfg.Logger,
		oracle: orc,
		enum:   enum,
		agg:    report.NewAggregator(),
	}, nil
}

// Aggregator exposes the collected records, e.g. to retry a failed write.
func (s *Search) Aggregator() *report.Aggregator { return s.agg }

// candidate is a stale board waiting for its oracle lookup.
type candidate struct {
	b    board.Board
	pred predicate.Result
}

// Run executes the search. Oracle lookups always happen on the calling
// goroutine and in enumeration order, so the output does not depend on
// Workers and oracles need not be safe for concurrent use.
func (s *Search) Run(ctx context.Context) (Stats, error) {
	start := time.Now()
	combos := s.enum.Combinations()
	s.log.Info().
		Int("pieces", s.cfg.Pieces).
		Int("combinations", len(combos)).
		Int("workers", s.cfg.Workers).
		Str("oracle", s.oracle.Name()).
		Msg("search started")

	var err error
	if s.cfg.Workers == 1 {
		err = s.runSequential(ctx, combos)
	} else {
		err = s.runParallel(ctx, combos)
	}
	stats := s.stats(len(combos), start)
	if err != nil {
		return stats, err
	}

	if s.cfg.OutputDir != "" {
		w := report.NewWriter(report.WriterConfig{
			Dir:      s.cfg.OutputDir,
			Compress: s.cfg.Compress,
			Logger:   s.log,
		})
		stats.Files, err = w.WriteAll(s.agg)
		if err != nil {
			return stats, fmt.Errorf("write results: %w", err)
		}
	}

	s.log.Info().
		Int64("boards", stats.Boards).
		Int64("stale", stats.Stale).
		Int64("confirmed", stats.Confirmed).
		Int64("exceptions", stats.Exceptions).
		Int64("unverified", stats.Unverified).
		Dur("elapsed", stats.Elapsed).
		Msg("search finished")
	return stats, nil
}

func (s *Search) runSequential(ctx context.Context, combos []enumerate.Combination) error {
	for _, c := range combos {
		cands, err := s.scan(ctx, c)
		if err != nil {
			return err
		}
		if err := s.resolve(ctx, cands); err != nil {
			return err
		}
	}
	return nil
}

// runParallel scans combinations on Workers goroutines and resolves their
// results here, in combination order, as each one completes.
func (s *Search) runParallel(ctx context.Context, combos []enumerate.Combination) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	results := make([][]candidate, len(combos))
	done := make([]chan struct{}, len(combos))
	for i := range done {
		done[i] = make(chan struct{})
	}
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := range combos {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < s.cfg.Workers; w++ {
		g.Go(func() error {
			for i := range jobs {
				cands, err := s.scan(gctx, combos[i])
				if err != nil {
					return err
				}
				results[i] = cands
				close(done[i])
			}
			return nil
		})
	}

	var resolveErr error
	for i := range combos {
		select {
		case <-done[i]:
		case <-gctx.Done():
		}
		if gctx.Err() != nil {
			break
		}
		if resolveErr = s.resolve(ctx, results[i]); resolveErr != nil {
			break
		}
		results[i] = nil
	}
	if resolveErr != nil {
		cancel()
		g.Wait()
		return resolveErr
	}
	return g.Wait()
}

// scan enumerates one combination and returns its stale boards.
func (s *Search) scan(ctx context.Context, c enumerate.Combination) ([]candidate, error) {
	var out []candidate
	for b, err := range s.enum.BoardsFor(c) {
		if err != nil {
			return nil, fmt.Errorf("enumerate %s: %w", c, err)
		}
		n := atomic.AddInt64(&s.boards, 1)
		if n%int64(s.cfg.ProgressEvery) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			s.log.Info().
				Int64("boards", n).
				Int64("stale", atomic.LoadInt64(&s.stale)).
				Str("combination", c.String()).
				Msg("progress")
		}
		res := predicate.Evaluate(b, s.cfg.Predicates)
		if !res.Stale() {
			continue
		}
		atomic.AddInt64(&s.stale, 1)
		out = append(out, candidate{b: b, pred: res})
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.log.Debug().
		Str("combination", c.String()).
		Int("stale", len(out)).
		Msg("combination scanned")
	return out, nil
}

// resolve looks up each candidate and files it.
func (s *Search) resolve(ctx context.Context, cands []candidate) error {
	for _, c := range cands {
		out, err := s.oracle.Lookup(ctx, c.b)
		if err != nil {
			return fmt.Errorf("oracle %s: %w", s.oracle.Name(), err)
		}
		s.agg.Add(report.Record{Board: c.b, Predicates: c.pred, Outcome: out})
		if out.Verified() && out.Verdict != oracle.Draw {
			s.log.Warn().
				Str("fen", c.b.FEN()).
				Str("verdict", out.Verdict.String()).
				Str("source", out.Source).
				Str("best_move", out.BestMove).
				Msg("stale board is not a draw")
		}
	}
	return nil
}

func (s *Search) stats(combos int, start time.Time) Stats {
	st := Stats{
		Combinations: combos,
		Boards:       atomic.LoadInt64(&s.boards),
		Stale:        atomic.LoadInt64(&s.stale),
		Elapsed:      time.Since(start),
	}
	for _, b := range s.agg.Buckets() {
		st.Confirmed += int64(len(b.Confirmed))
		st.Exceptions += int64(len(b.Exceptions))
		st.Unverified += int64(len(b.Unverified))
		for _, group := range [][]report.Record{b.Confirmed, b.Exceptions, b.Unverified} {
			for _, r := range group {
				if r.Outcome.Heuristic {
					st.Heuristic++
				}
			}
		}
	}
	return st
}

// Package check re-verifies a list of boards with an engine and appends one
// "score<TAB>fen" line per board to a log. Boards already in the log are
// skipped, so an interrupted check can be resumed by running it again.
package check

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/freeeve/stalesearch/internal/board"
	"github.com/freeeve/stalesearch/internal/oracle"
	"github.com/freeeve/stalesearch/internal/report"
)

// Config configures a check run.
type Config struct {
	Input   string // Bucket file or plain FEN list
	Output  string // Append-only log of score<TAB>fen lines
	Workers int    // Parallel engines; 1 when zero
	Logger  zerolog.Logger
}

// Stats summarises a check run.
type Stats struct {
	Read    int
	Skipped int
	Checked int64
	NonZero int64
	Failed  int64
}

// OracleFactory builds one oracle per worker. Oracles that implement
// io.Closer are closed when their worker finishes.
type OracleFactory func() (oracle.Oracle, error)

// Run checks every board of cfg.Input not already logged in cfg.Output.
// A board the oracle fails on is logged and counted, not fatal.
func Run(ctx context.Context, cfg Config, newOracle OracleFactory) (Stats, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	log := cfg.Logger
	var st Stats

	fens, err := report.ReadFENs(cfg.Input)
	if err != nil {
		return st, fmt.Errorf("read input: %w", err)
	}
	st.Read = len(fens)

	done := make(map[string]bool)
	prev, err := report.ReadFENs(cfg.Output)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return st, fmt.Errorf("read existing output: %w", err)
	}
	for _, fen := range prev {
		done[fen] = true
	}

	var todo []string
	for _, fen := range fens {
		if done[fen] {
			st.Skipped++
			continue
		}
		done[fen] = true
		todo = append(todo, fen)
	}
	log.Info().
		Int("read", st.Read).
		Int("skipped", st.Skipped).
		Int("workers", cfg.Workers).
		Msg("check started")

	f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return st, fmt.Errorf("open output: %w", err)
	}
	defer f.Close()
	out := &lineWriter{w: bufio.NewWriter(f)}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan string)
	g.Go(func() error {
		defer close(jobs)
		for _, fen := range todo {
			select {
			case jobs <- fen:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})
	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			orc, err := newOracle()
			if err != nil {
				return fmt.Errorf("start oracle: %w", err)
			}
			if c, ok := orc.(io.Closer); ok {
				defer c.Close()
			}
			for fen := range jobs {
				if err := checkOne(gctx, orc, fen, out, &st, log); err != nil {
					return err
				}
			}
			return nil
		})
	}
	err = g.Wait()
	if ferr := out.flush(); ferr != nil && err == nil {
		err = fmt.Errorf("flush output: %w", ferr)
	}

	log.Info().
		Int64("checked", st.Checked).
		Int64("non_zero", st.NonZero).
		Int64("failed", st.Failed).
		Msg("check finished")
	return st, err
}

func checkOne(ctx context.Context, orc oracle.Oracle, fen string, out *lineWriter, st *Stats, log zerolog.Logger) error {
	b, err := board.ParseFEN(fen)
	if err != nil {
		return err
	}
	res, err := orc.Lookup(ctx, b)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		atomic.AddInt64(&st.Failed, 1)
		log.Error().Err(err).Str("fen", fen).Msg("check failed")
		return nil
	}
	score := report.FormatScore(res)
	if err := out.write(score + "\t" + fen); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	n := atomic.AddInt64(&st.Checked, 1)
	if res.Mate || res.Score != 0 {
		atomic.AddInt64(&st.NonZero, 1)
		log.Warn().
			Int64("n", n).
			Str("score", score).
			Str("fen", fen).
			Str("best_move", res.BestMove).
			Msg("non-zero score")
	}
	return nil
}

// lineWriter serialises appends from several workers. Each line is flushed
// so the log survives an interrupted run.
type lineWriter struct {
	mu sync.Mutex
	w  *bufio.Writer
}

func (l *lineWriter) write(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.WriteString(line + "\n"); err != nil {
		return err
	}
	return l.w.Flush()
}

func (l *lineWriter) flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Flush()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/freeeve/stalesearch/internal/enumerate"
	"github.com/freeeve/stalesearch/internal/logx"
	"github.com/freeeve/stalesearch/internal/oracle"
	"github.com/freeeve/stalesearch/internal/predicate"
	"github.com/freeeve/stalesearch/internal/search"
)

func main() {
	defaultStockfish := ""
	if envPath := os.Getenv("STOCKFISH_PATH"); envPath != "" {
		defaultStockfish = envPath
	}

	var (
		// Search
		pieces  = flag.Int("pieces", 4, "total pieces per board, kings included (even, 2-16)")
		workers = flag.Int("workers", 1, "combinations scanned in parallel (0 = all CPUs)")
		dryRun  = flag.Bool("dry-run", false, "only count the boards that would be enumerated")
		checks  = flag.Bool("forbid-checking-moves", true, "also reject boards where the side to move can give check")

		// Output
		outDir   = flag.String("out", ".", "directory for bucket files")
		compress = flag.Bool("zstd", false, "write zstd-compressed bucket files")
		progress = flag.Int("progress", 100000, "log progress every N boards")

		// Tablebase
		tbFile   = flag.String("tablebase", "", "CSV tablebase dump (fen,category,dtz,dtm; .zst/.gz ok)")
		tbURL    = flag.String("tablebase-url", "", "lichess-compatible tablebase service (e.g. "+oracle.DefaultTablebaseURL+")")
		tbPieces = flag.Int("tablebase-pieces", oracle.DefaultTablebasePieces, "largest board sent to the tablebase")

		// Engine
		stockfishPath = flag.String("stockfish", defaultStockfish, "path to Stockfish for boards past the tablebase (empty = none)")
		depth         = flag.Int("depth", 20, "Stockfish search depth")
		threads       = flag.Int("threads", 1, "Stockfish threads")
		hash          = flag.Int("hash", 128, "Stockfish hash MB")
		drawCP        = flag.Int("draw-threshold", 0, "largest |centipawn| score read as a draw")

		logLevel = flag.String("log-level", "info", "trace, debug, info, warn or error")
	)
	flag.Parse()

	logger, err := logx.NewLogger(logx.Config{Level: *logLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if *dryRun {
		e, err := enumerate.New(*pieces)
		if err != nil {
			logger.Fatal().Err(err).Msg("enumerator")
		}
		start := time.Now()
		n, err := e.Count()
		if err != nil {
			logger.Fatal().Err(err).Msg("enumerate")
		}
		logger.Info().
			Int("pieces", *pieces).
			Int("combinations", len(e.Combinations())).
			Int("boards", n).
			Dur("elapsed", time.Since(start)).
			Msg("dry run")
		return
	}

	orc, cleanup, err := buildOracle(logger, oracleFlags{
		tbFile:    *tbFile,
		tbURL:     *tbURL,
		tbPieces:  *tbPieces,
		stockfish: *stockfishPath,
		depth:     *depth,
		threads:   *threads,
		hash:      *hash,
		drawCP:    *drawCP,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("oracle")
	}
	defer cleanup()

	if *workers == 0 {
		*workers = runtime.NumCPU()
	}
	opts := predicate.DefaultOptions()
	opts.ForbidCheckingMoves = *checks

	s, err := search.New(search.Config{
		Pieces:        *pieces,
		Workers:       *workers,
		Predicates:    opts,
		OutputDir:     *outDir,
		Compress:      *compress,
		ProgressEvery: *progress,
		Logger:        logger,
	}, orc)
	if err != nil {
		logger.Fatal().Err(err).Msg("search")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := s.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("search failed")
		cleanup()
		os.Exit(1)
	}
	fmt.Print(s.Aggregator().Summary())
}

type oracleFlags struct {
	tbFile    string
	tbURL     string
	tbPieces  int
	stockfish string
	depth     int
	threads   int
	hash      int
	drawCP    int
}

// buildOracle wires the configured tablebase and engine behind a cached
// router. With neither configured every board stays unverified.
func buildOracle(logger zerolog.Logger, f oracleFlags) (oracle.Oracle, func(), error) {
	cleanup := func() {}
	r := &oracle.Router{}

	switch {
	case f.tbFile != "":
		tb := oracle.NewFileTablebase(f.tbPieces)
		loaded, skipped, err := tb.LoadFile(f.tbFile)
		if err != nil {
			return nil, cleanup, fmt.Errorf("load tablebase %s: %w", f.tbFile, err)
		}
		logger.Info().
			Str("path", f.tbFile).
			Int("loaded", loaded).
			Int("skipped", skipped).
			Msg("loaded tablebase dump")
		r.Exact = tb
	case f.tbURL != "":
		r.Exact = oracle.NewHTTPTablebase(oracle.HTTPTablebaseConfig{BaseURL: f.tbURL, MaxPieces: f.tbPieces})
		logger.Info().Str("url", f.tbURL).Msg("using tablebase service")
	}

	if f.stockfish != "" {
		eng, err := oracle.NewEngineOracle(oracle.EngineConfig{
			StockfishPath: f.stockfish,
			Logger:        logger,
			Depth:         f.depth,
			HashMB:        f.hash,
			Threads:       f.threads,
			DrawThreshold: f.drawCP,
		})
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { eng.Close() }
		r.Heuristic = eng
	}

	if r.Exact == nil && r.Heuristic == nil {
		logger.Warn().Msg("no tablebase or engine configured; every stale board will be unverified")
		return oracle.Noop{}, cleanup, nil
	}
	return oracle.NewCache(r), cleanup, nil
}

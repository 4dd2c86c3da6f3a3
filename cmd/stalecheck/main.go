package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/freeeve/stalesearch/internal/check"
	"github.com/freeeve/stalesearch/internal/logx"
	"github.com/freeeve/stalesearch/internal/oracle"
)

func main() {
	defaultStockfish := "stockfish"
	if envPath := os.Getenv("STOCKFISH_PATH"); envPath != "" {
		defaultStockfish = envPath
	}

	var (
		input         = flag.String("in", "stale_boards_4.fen", "bucket file or FEN list to check")
		output        = flag.String("out", "stale_boards_4_cp.txt", "append score<TAB>fen lines here")
		stockfishPath = flag.String("stockfish", defaultStockfish, "path to Stockfish")
		depth         = flag.Int("depth", 50, "Stockfish search depth")
		threads       = flag.Int("threads", 1, "Stockfish threads per worker")
		hash          = flag.Int("hash", 128, "Stockfish hash MB per worker")
		drawCP        = flag.Int("draw-threshold", 1, "largest |centipawn| score read as a draw")
		workers       = flag.Int("workers", 1, "parallel Stockfish processes")
		logLevel      = flag.String("log-level", "info", "trace, debug, info, warn or error")
	)
	flag.Parse()

	logger, err := logx.NewLogger(logx.Config{Level: *logLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := check.Config{
		Input:   *input,
		Output:  *output,
		Workers: *workers,
		Logger:  logger,
	}
	newOracle := func() (oracle.Oracle, error) {
		return oracle.NewEngineOracle(oracle.EngineConfig{
			StockfishPath: *stockfishPath,
			Logger:        logger,
			Depth:         *depth,
			HashMB:        *hash,
			Threads:       *threads,
			DrawThreshold: *drawCP,
		})
	}

	st, err := check.Run(ctx, cfg, newOracle)
	if err != nil {
		logger.Fatal().Err(err).Msg("check")
	}
	fmt.Printf("checked %d, skipped %d, non-zero %d, failed %d\n", st.Checked, st.Skipped, st.NonZero, st.Failed)
}

package oracle

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/freeeve/uci"
	"github.com/notnil/chess"
	"github.com/rs/zerolog"

	"github.com/freeeve/stalesearch/internal/board"
)

// EngineConfig configures the engine oracle.
type EngineConfig struct {
	StockfishPath string
	Logger        zerolog.Logger
	Depth         int // Search depth per position
	HashMB        int // Engine hash table size
	Threads       int // Engine threads
	// DrawThreshold is the largest absolute centipawn score still read as a draw.
	DrawThreshold int
}

// analysis is one engine answer reduced to what the oracle needs. Score is
// from the side to move's view, as UCI reports it.
type analysis struct {
	depth    int
	score    int
	mate     bool
	bestMove string
}

type searchFunc func(fen string, depth int) (analysis, error)

// EngineOracle evaluates boards with a UCI engine at a fixed depth. Its
// verdicts are heuristic: a draw means the engine saw no progress within its
// horizon, not that none exists. Not safe for concurrent use.
type EngineOracle struct {
	cfg    EngineConfig
	log    zerolog.Logger
	search searchFunc
	close  func()

	evaluated int64
}

// NewEngineOracle starts the engine process and applies its options.
func NewEngineOracle(cfg EngineConfig) (*EngineOracle, error) {
	if cfg.StockfishPath == "" {
		return nil, fmt.Errorf("%w: stockfish path required", ErrEngineUnavailable)
	}
	cfg = withEngineDefaults(cfg)

	engine, err := uci.NewEngine(cfg.StockfishPath)
	if err != nil {
		return nil, fmt.Errorf("%w: create engine: %v", ErrEngineUnavailable, err)
	}

	opts := uci.Options{
		Hash:    cfg.HashMB,
		Threads: cfg.Threads,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	}
	if err := engine.SetOptions(opts); err != nil {
		engine.Close()
		return nil, fmt.Errorf("set options: %w", err)
	}

	search := func(fen string, depth int) (analysis, error) {
		if err := engine.SetFEN(fen); err != nil {
			return analysis{}, fmt.Errorf("set FEN: %w", err)
		}
		results, err := engine.GoDepth(depth, uci.HighestDepthOnly)
		if err != nil {
			return analysis{}, fmt.Errorf("engine search: %w", err)
		}
		if len(results.Results) == 0 {
			return analysis{}, fmt.Errorf("no results from engine")
		}
		best := results.Results[0]
		for _, r := range results.Results {
			if r.Depth > best.Depth {
				best = r
			}
		}
		return analysis{depth: best.Depth, score: best.Score, mate: best.Mate, bestMove: results.BestMove}, nil
	}

	cfg.Logger.Info().
		Str("stockfish", cfg.StockfishPath).
		Int("depth", cfg.Depth).
		Int("threads", cfg.Threads).
		Int("hash_mb", cfg.HashMB).
		Msg("engine oracle started")

	return newEngineOracle(cfg, search, func() { engine.Close() }), nil
}

func withEngineDefaults(cfg EngineConfig) EngineConfig {
	if cfg.Depth == 0 {
		cfg.Depth = 20
	}
	if cfg.HashMB == 0 {
		cfg.HashMB = 128
	}
	if cfg.Threads == 0 {
		cfg.Threads = 1
	}
	return cfg
}

func newEngineOracle(cfg EngineConfig, search searchFunc, closeFn func()) *EngineOracle {
	return &EngineOracle{cfg: cfg, log: cfg.Logger, search: search, close: closeFn}
}

// Close stops the engine process.
func (o *EngineOracle) Close() error {
	if o.close != nil {
		o.close()
		o.close = nil
	}
	return nil
}

// Evaluated returns how many boards have been searched.
func (o *EngineOracle) Evaluated() int64 { return atomic.LoadInt64(&o.evaluated) }

// Lookup searches b to the configured depth.
func (o *EngineOracle) Lookup(ctx context.Context, b board.Board) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{Source: SourceEngine}, err
	}

	fen := b.FEN()
	a, err := o.search(fen, o.cfg.Depth)
	if err != nil {
		return Outcome{Source: SourceEngine}, fmt.Errorf("evaluate %s: %w", fen, err)
	}
	atomic.AddInt64(&o.evaluated, 1)

	// Engine scores are from the side to move's view; normalise to White's.
	score := a.score
	if b.Turn == board.Black {
		score = -score
	}

	out := Outcome{
		Score:     score,
		Mate:      a.mate,
		Depth:     a.depth,
		BestMove:  sanMove(fen, a.bestMove),
		Source:    SourceEngine,
		Heuristic: true,
	}
	switch {
	case a.mate && a.score == 0:
		// Mate delivered already: the side to move is checkmated.
		out.Verdict = WhiteWin
		if b.Turn == board.White {
			out.Verdict = BlackWin
		}
	case a.mate || abs(score) > o.cfg.DrawThreshold:
		out.Verdict = WhiteWin
		if score < 0 {
			out.Verdict = BlackWin
		}
	default:
		out.Verdict = Draw
	}

	o.log.Debug().
		Str("fen", fen).
		Int("raw_score", a.score).
		Int("score", score).
		Bool("mate", a.mate).
		Str("verdict", out.Verdict.String()).
		Msg("engine evaluated position")

	return out, nil
}

// MaxPieces is unbounded in practice: an engine can search any legal board.
func (o *EngineOracle) MaxPieces() int { return 32 }
func (o *EngineOracle) Name() string   { return SourceEngine }

// sanMove renders a UCI move in SAN for reports, falling back to the UCI text.
func sanMove(fen, uciMove string) string {
	if uciMove == "" || uciMove == "(none)" {
		return ""
	}
	opt, err := chess.FEN(fen)
	if err != nil {
		return uciMove
	}
	pos := chess.NewGame(opt).Position()
	m, err := chess.UCINotation{}.Decode(pos, uciMove)
	if err != nil {
		return uciMove
	}
	return chess.AlgebraicNotation{}.Encode(pos, m)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

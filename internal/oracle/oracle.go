// Package oracle answers "what is this position worth under perfect play?".
//
// Exact answers come from endgame tablebases (a local dump or an HTTP service)
// and cover at most six pieces. Past that only a depth-limited engine search is
// available; its verdicts are marked Heuristic and are not proofs.
package oracle

import (
	"context"
	"errors"
	"strings"

	"github.com/freeeve/stalesearch/internal/board"
)

var (
	// ErrEngineUnavailable is returned when no engine binary is configured.
	ErrEngineUnavailable = errors.New("engine unavailable")
	// ErrBadResponse is returned when a tablebase answers with, or a dump holds,
	// something unusable.
	ErrBadResponse = errors.New("bad tablebase data")
)

// Verdict is the game-theoretic result from White's point of view.
type Verdict uint8

const (
	Unknown Verdict = iota
	WhiteWin
	BlackWin
	Draw
)

var verdictNames = [...]string{"unknown", "white_win", "black_win", "draw"}

func (v Verdict) String() string {
	if int(v) < len(verdictNames) {
		return verdictNames[v]
	}
	return "unknown"
}

// ParseVerdict is the inverse of Verdict.String. Unrecognised text is Unknown.
func ParseVerdict(s string) Verdict {
	for i, name := range verdictNames {
		if name == s {
			return Verdict(i)
		}
	}
	return Unknown
}

// Source names for Outcome.Source.
const (
	SourceNone          = "none"
	SourceTablebaseFile = "tablebase-file"
	SourceTablebaseHTTP = "tablebase-http"
	SourceEngine        = "engine"
)

// Outcome is an oracle's answer for one board.
type Outcome struct {
	Verdict Verdict
	// DTZ and DTM are tablebase distances as reported, from the side to move's view.
	DTZ    int
	HasDTZ bool
	DTM    int
	HasDTM bool
	// Score is the engine evaluation in centipawns from White's view; Mate is set
	// when Score is a mate distance instead.
	Score     int
	Mate      bool
	Depth     int
	BestMove  string
	Source    string
	Heuristic bool
}

// Verified reports whether the outcome carries a verdict at all.
func (o Outcome) Verified() bool { return o.Verdict != Unknown }

// Oracle looks up outcomes. A board the oracle cannot answer for yields an
// Unknown outcome and a nil error; errors mean the oracle itself failed.
type Oracle interface {
	Lookup(ctx context.Context, b board.Board) (Outcome, error)
	// MaxPieces is the largest piece count, kings included, the oracle covers.
	MaxPieces() int
	Name() string
}

// Noop answers Unknown for everything.
type Noop struct{}

func (Noop) Lookup(ctx context.Context, b board.Board) (Outcome, error) {
	return Outcome{Source: SourceNone}, nil
}

func (Noop) MaxPieces() int { return 0 }
func (Noop) Name() string   { return SourceNone }

// verdictFromCategory maps a tablebase category, which is relative to the side
// to move, onto a White-relative verdict. Cursed wins and blessed losses are
// draws because the 50-move rule saves the defender.
func verdictFromCategory(category string, turn board.Color) Verdict {
	var stmWins bool
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "win", "syzygy-win":
		stmWins = true
	case "loss", "syzygy-loss":
		stmWins = false
	case "draw", "cursed-win", "blessed-loss":
		return Draw
	default:
		return Unknown
	}
	if stmWins == (turn == board.White) {
		return WhiteWin
	}
	return BlackWin
}

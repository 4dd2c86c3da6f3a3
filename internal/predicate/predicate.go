// Package predicate classifies boards against the six heuristics that define a
// "stale" position. Every predicate is a pure function of the board.
//
// The narrow trapped-piece rule is the only one implemented. A stronger
// "no discoverable threats" rule (no piece whose forced move would expose a
// tactical loss) has been described for the 4-pair counterexamples but has no
// precise definition yet, so it is not evaluated here.
package predicate

import (
	"github.com/freeeve/stalesearch/internal/board"
)

// Options tunes predicates whose definition has a knob.
type Options struct {
	// ForbidCheckingMoves makes NoChecks also reject boards where the side to move
	// has a legal move that gives check.
	ForbidCheckingMoves bool
}

// DefaultOptions turns on every optional rule.
func DefaultOptions() Options {
	return Options{ForbidCheckingMoves: true}
}

// Result holds one boolean per predicate. It is a plain value and never changes
// after Evaluate returns it.
type Result struct {
	Mirrored         bool
	NoAttacks        bool
	NoChecks         bool
	NoPassedPawns    bool
	SinglePawnIsland bool
	NoTrappedPieces  bool
}

// Stale reports whether every predicate holds.
func (r Result) Stale() bool {
	return r.Mirrored && r.NoAttacks && r.NoChecks &&
		r.NoPassedPawns && r.SinglePawnIsland && r.NoTrappedPieces
}

// Bits renders the result as six 0/1 digits in field order.
func (r Result) Bits() string {
	flags := [...]bool{r.Mirrored, r.NoAttacks, r.NoChecks, r.NoPassedPawns, r.SinglePawnIsland, r.NoTrappedPieces}
	out := make([]byte, len(flags))
	for i, f := range flags {
		out[i] = '0'
		if f {
			out[i] = '1'
		}
	}
	return string(out)
}

// Names lists the predicates in the order Bits uses.
var Names = [...]string{"mirrored", "no_attacks", "no_checks", "no_passed_pawns", "single_pawn_island", "no_trapped_pieces"}

// Evaluate runs all six predicates. Each one is computed independently so a
// rejected board still reports which rules it broke.
func Evaluate(b board.Board, opts Options) Result {
	return Result{
		Mirrored:         Mirrored(b),
		NoAttacks:        NoAttacks(b),
		NoChecks:         NoChecks(b, opts),
		NoPassedPawns:    NoPassedPawns(b),
		SinglePawnIsland: SinglePawnIsland(b),
		NoTrappedPieces:  NoTrappedPieces(b),
	}
}

// Mirrored is true when the board equals its color-swapped reflection across
// the middle of the board (see board.Mirror).
func Mirrored(b board.Board) bool {
	return board.IsMirrorImage(b)
}

// NoAttacks is true when no piece attacks an enemy piece other than the king.
func NoAttacks(b board.Board) bool {
	return len(b.AttackedPieces(board.White)) == 0 && len(b.AttackedPieces(board.Black)) == 0
}

// NoChecks is true when the side to move is not in check and, with
// ForbidCheckingMoves, cannot give check with its next move.
func NoChecks(b board.Board, opts Options) bool {
	if b.InCheck(b.Turn) {
		return false
	}
	if !opts.ForbidCheckingMoves {
		return true
	}
	for _, m := range b.LegalMoves() {
		if b.GivesCheck(m) {
			return false
		}
	}
	return true
}

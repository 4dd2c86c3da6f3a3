// Package enumerate generates the mirrored endgame boards a study runs over.
//
// A board with N pieces is built from N/2 mirrored pairs: a White piece on
// (file, rank) with rank 1-4 (2-4 for pawns) and a Black piece of the same type
// on (file, 9-rank). Exactly one pair is the kings; the other pairs are a
// multiset drawn from pawn, knight, bishop, rook and queen. White is to move.
package enumerate

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/freeeve/stalesearch/internal/board"
)

// ErrInvalidPieceCount is returned for piece counts that cannot be split into
// mirrored pairs with one king pair.
var ErrInvalidPieceCount = errors.New("invalid piece count")

// MaxPieces bounds the search; 16 is already far past anything enumerable.
const MaxPieces = 16

// pairTypes is the order combinations are drawn in.
var pairTypes = []board.PieceType{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen}

// Combination is the multiset of piece types a board is built from, one entry
// per mirrored pair. The king pair is always last.
type Combination []board.PieceType

func (c Combination) String() string {
	var sb strings.Builder
	for _, t := range c {
		sb.WriteByte(board.MakePiece(board.White, t).Symbol())
	}
	return sb.String()
}

// Enumerator produces every mirrored board for one piece count. It holds no
// iteration state, so its sequences can be walked any number of times.
type Enumerator struct {
	pieces int
	combos []Combination
}

// New returns an enumerator for boards with the given total piece count,
// kings included.
func New(pieces int) (*Enumerator, error) {
	if pieces < 2 || pieces > MaxPieces || pieces%2 != 0 {
		return nil, fmt.Errorf("%w: %d (want an even count between 2 and %d)", ErrInvalidPieceCount, pieces, MaxPieces)
	}
	return &Enumerator{
		pieces: pieces,
		combos: combinations(pieces/2 - 1),
	}, nil
}

// Pieces returns the total piece count of every board produced.
func (e *Enumerator) Pieces() int { return e.pieces }

// Combinations returns the piece-type multisets in enumeration order.
func (e *Enumerator) Combinations() []Combination {
	out := make([]Combination, len(e.combos))
	copy(out, e.combos)
	return out
}

// Boards walks every combination in order.
func (e *Enumerator) Boards() iter.Seq2[board.Board, error] {
	return func(yield func(board.Board, error) bool) {
		for _, c := range e.combos {
			for b, err := range e.BoardsFor(c) {
				if !yield(b, err) || err != nil {
					return
				}
			}
		}
	}
}

// BoardsFor walks the boards of a single combination. Boards where Black, not
// to move, stands in check are skipped. Any other broken invariant is a bug in
// the generator and ends the sequence with an error.
func (e *Enumerator) BoardsFor(c Combination) iter.Seq2[board.Board, error] {
	return func(yield func(board.Board, error) bool) {
		options := make([][]pair, len(c))
		for i, t := range c {
			options[i] = placements(t)
		}
		s := &walker{options: options, combo: c, yield: yield, b: board.New()}
		s.walk(0, 0)
	}
}

// Count drains a fresh sequence and returns the number of boards.
func (e *Enumerator) Count() (int, error) {
	n := 0
	for _, err := range e.Boards() {
		if err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// pair is one mirrored placement.
type pair struct {
	white, black board.Square
	kind         board.PieceType
}

// placements lists the mirrored placements of one piece type, file by file.
func placements(t board.PieceType) []pair {
	lo, hi := 0, 3
	if t == board.Pawn {
		lo = 1
	}
	var out []pair
	for file := 0; file < 8; file++ {
		for rank := lo; rank <= hi; rank++ {
			out = append(out, pair{
				white: board.NewSquare(file, rank),
				black: board.NewSquare(file, 7-rank),
				kind:  t,
			})
		}
	}
	return out
}

// combinations returns the multisets of n non-king types with the king pair
// appended, in lexicographic order of pairTypes.
func combinations(n int) []Combination {
	var out []Combination
	cur := make([]board.PieceType, 0, n+1)
	var rec func(start, left int)
	rec = func(start, left int) {
		if left == 0 {
			c := make(Combination, 0, n+1)
			c = append(c, cur...)
			c = append(c, board.King)
			out = append(out, c)
			return
		}
		for i := start; i < len(pairTypes); i++ {
			cur = append(cur, pairTypes[i])
			rec(i, left-1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(0, n)
	return out
}

// walker is the backtracking state for one combination.
type walker struct {
	options [][]pair
	combo   Combination
	b       board.Board
	yield   func(board.Board, error) bool
	stopped bool
}

// walk places pair slot i, trying options from index start. Slots of the same
// type as the previous slot start after its choice so each board appears once.
func (s *walker) walk(slot, start int) {
	if s.stopped {
		return
	}
	if slot == len(s.options) {
		s.emit()
		return
	}
	for idx := start; idx < len(s.options[slot]); idx++ {
		p := s.options[slot][idx]
		if s.b.At(p.white) != board.NoPiece || s.b.At(p.black) != board.NoPiece {
			continue
		}
		s.b.Put(p.white, board.MakePiece(board.White, p.kind))
		s.b.Put(p.black, board.MakePiece(board.Black, p.kind))

		next := 0
		if slot+1 < len(s.combo) && s.combo[slot+1] == p.kind {
			next = idx + 1
		}
		s.walk(slot+1, next)

		s.b.Clear(p.white)
		s.b.Clear(p.black)
		if s.stopped {
			return
		}
	}
}

func (s *walker) emit() {
	if s.b.InCheck(board.Black) {
		return
	}
	if err := s.b.Validate(); err != nil {
		s.yield(board.Board{}, fmt.Errorf("generate %s: %w", s.combo, err))
		s.stopped = true
		return
	}
	if !s.yield(s.b, nil) {
		s.stopped = true
	}
}

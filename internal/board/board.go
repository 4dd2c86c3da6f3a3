// Package board is a fixed-layout chess board plus the symmetries used to index
// tablebases. FEN parsing, attacks, checks and legal moves are delegated to the
// github.com/freeeve/pgn/v3 move generator.
package board

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFEN is returned when a FEN string cannot be parsed.
	ErrInvalidFEN = errors.New("invalid FEN")
	// ErrInvalidBoard is returned by Validate for boards that break basic legality.
	ErrInvalidBoard = errors.New("invalid board")
)

// Board is a value type; copying a Board copies the whole position.
type Board struct {
	Squares   [64]Piece
	Turn      Color
	Castling  string // FEN castling field, "-" when none
	EnPassant Square
	HalfMove  int
	FullMove  int
}

// New returns an empty board with White to move.
func New() Board {
	return Board{Castling: "-", EnPassant: NoSquare, FullMove: 1}
}

// At returns the piece on sq.
func (b *Board) At(sq Square) Piece { return b.Squares[sq] }

// Put places p on sq, replacing whatever was there.
func (b *Board) Put(sq Square, p Piece) { b.Squares[sq] = p }

// Clear empties sq.
func (b *Board) Clear(sq Square) { b.Squares[sq] = NoPiece }

// PieceCount returns the number of pieces on the board, kings included.
func (b *Board) PieceCount() int {
	n := 0
	for _, p := range b.Squares {
		if p != NoPiece {
			n++
		}
	}
	return n
}

// KingSquare returns the square of c's king, NoSquare if there is none.
func (b *Board) KingSquare(c Color) Square {
	k := MakePiece(c, King)
	for sq, p := range b.Squares {
		if p == k {
			return Square(sq)
		}
	}
	return NoSquare
}

// HasPawns reports whether either side has a pawn.
func (b *Board) HasPawns() bool {
	for _, p := range b.Squares {
		if p != NoPiece && p.Type() == Pawn {
			return true
		}
	}
	return false
}

// Validate checks the invariants every board in a study must hold: one king per
// side, no pawns on the back ranks, and the side not to move is not in check.
func (b *Board) Validate() error {
	var kings [2]int
	for sq, p := range b.Squares {
		if p == NoPiece {
			continue
		}
		switch p.Type() {
		case King:
			kings[p.Color()]++
		case Pawn:
			if r := Square(sq).Rank(); r == 0 || r == 7 {
				return fmt.Errorf("%w: pawn on %s", ErrInvalidBoard, Square(sq))
			}
		}
	}
	if kings[White] != 1 || kings[Black] != 1 {
		return fmt.Errorf("%w: want one king per side, have %d white and %d black",
			ErrInvalidBoard, kings[White], kings[Black])
	}
	if b.InCheck(b.Turn.Other()) {
		return fmt.Errorf("%w: %s is in check with %s to move", ErrInvalidBoard, b.Turn.Other(), b.Turn)
	}
	return nil
}

// String renders the board as an 8x8 diagram, rank 8 first.
func (b Board) String() string {
	buf := make([]byte, 0, 72)
	for rank := 7; rank >= 0; rank-- {
		for file := 0; file < 8; file++ {
			buf = append(buf, b.Squares[NewSquare(file, rank)].Symbol())
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}

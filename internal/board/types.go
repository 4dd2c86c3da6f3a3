package board

import (
	"fmt"

	"github.com/freeeve/pgn/v3"
)

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing color.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType is the kind of a piece, independent of color.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece packs a color and a piece type. The zero value is an empty square.
type Piece uint8

// NoPiece marks an empty square.
const NoPiece Piece = 0

// MakePiece builds a piece from a color and a type.
func MakePiece(c Color, t PieceType) Piece {
	return Piece(uint8(t) | uint8(c)<<3)
}

// Type returns the piece type, NoPieceType for an empty square.
func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color returns the piece color. Undefined for NoPiece.
func (p Piece) Color() Color { return Color(p >> 3) }

// Flip returns the same piece type in the other color.
func (p Piece) Flip() Piece {
	if p == NoPiece {
		return NoPiece
	}
	return MakePiece(p.Color().Other(), p.Type())
}

const pieceLetters = " pnbrqk"

// Symbol returns the FEN letter: uppercase for White, lowercase for Black.
func (p Piece) Symbol() byte {
	if p == NoPiece {
		return '.'
	}
	ch := pieceLetters[p.Type()]
	if p.Color() == White {
		ch -= 'a' - 'A'
	}
	return ch
}

// PieceFromSymbol parses a FEN piece letter.
func PieceFromSymbol(ch byte) (Piece, bool) {
	c := White
	lower := ch
	if ch >= 'a' && ch <= 'z' {
		c = Black
	} else {
		lower = ch + ('a' - 'A')
	}
	for t := Pawn; t <= King; t++ {
		if pieceLetters[t] == lower {
			return MakePiece(c, t), true
		}
	}
	return NoPiece, false
}

// Square indexes the board as rank*8 + file, a1 = 0, h8 = 63.
type Square int8

// NoSquare marks an absent square (no en-passant target).
const NoSquare Square = -1

// NewSquare builds a square from 0-based file and rank.
func NewSquare(file, rank int) Square { return Square(rank*8 + file) }

func (s Square) File() int { return int(s) & 7 }
func (s Square) Rank() int { return int(s) >> 3 }

func (s Square) String() string {
	if s < 0 || s > 63 {
		return "-"
	}
	return fmt.Sprintf("%c%d", 'a'+s.File(), s.Rank()+1)
}

// ParseSquare parses algebraic notation such as "e4".
func ParseSquare(s string) (Square, error) {
	sq, err := pgn.ParseSquare(s)
	if err != nil {
		return NoSquare, err
	}
	return Square(sq), nil
}

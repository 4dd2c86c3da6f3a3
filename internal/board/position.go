package board

import (
	"fmt"

	"github.com/freeeve/pgn/v3"
)

// game converts b to a move-generator position with turn to move. When turn is
// not b.Turn the en passant square is dropped, since only the side that owns
// the right may use it.
func (b *Board) game(turn Color) *pgn.GameState {
	gs, err := pgn.NewGame(b.FEN())
	if err != nil {
		panic(fmt.Sprintf("board: %v", err))
	}
	if turn != b.Turn {
		gs.SideToMove = pgn.Color(turn)
		gs.EP = pgn.SqNone
	}
	return gs
}

func fromGame(gs *pgn.GameState) Board {
	b := New()
	for sq := Square(0); sq < 64; sq++ {
		if ch := gs.PieceAt(pgn.Square(sq)); ch != 0 {
			p, _ := PieceFromSymbol(ch)
			b.Squares[sq] = p
		}
	}
	b.Turn = Color(gs.SideToMove)
	var castling []byte
	for i, ch := range []byte("KQkq") {
		if gs.Castle&(1<<i) != 0 {
			castling = append(castling, ch)
		}
	}
	if len(castling) > 0 {
		b.Castling = string(castling)
	}
	if gs.EP >= 0 && gs.EP < 64 {
		b.EnPassant = Square(gs.EP)
	}
	b.HalfMove = gs.Halfmove
	b.FullMove = gs.Fullmove
	return b
}

// InCheck reports whether c's king is attacked.
func (b *Board) InCheck(c Color) bool {
	return b.game(c).IsInCheck()
}

// IsAttackedBy reports whether any piece of color c attacks sq.
func (b *Board) IsAttackedBy(sq Square, c Color) bool {
	return b.game(b.Turn).IsSquareAttacked(pgn.Square(sq), pgn.Color(c))
}

// AttackedPieces returns the squares of c's pieces, kings excluded, that an
// enemy piece attacks.
func (b *Board) AttackedPieces(c Color) []Square {
	gs := b.game(b.Turn)
	var out []Square
	for sq, p := range b.Squares {
		if p == NoPiece || p.Color() != c || p.Type() == King {
			continue
		}
		if gs.IsSquareAttacked(pgn.Square(sq), pgn.Color(c.Other())) {
			out = append(out, Square(sq))
		}
	}
	return out
}

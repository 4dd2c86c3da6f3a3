package board

import (
	"errors"
	"fmt"

	"github.com/freeeve/pgn/v3"
)

// ErrIllegalMove is returned by Apply for a move that is not legal on the board.
var ErrIllegalMove = errors.New("illegal move")

// Move is a single move. Promo is NoPieceType unless a pawn promotes.
type Move struct {
	From  Square
	To    Square
	Promo PieceType

	flags uint16
}

var promoLetters = [...]string{Knight: "n", Bishop: "b", Rook: "r", Queen: "q"}

var promoTypes = map[pgn.PromoPiece]PieceType{
	pgn.PromoQueen:  Queen,
	pgn.PromoRook:   Rook,
	pgn.PromoBishop: Bishop,
	pgn.PromoKnight: Knight,
}

// UCI returns the move in long algebraic (UCI) notation, e.g. "e7e8q".
func (m Move) UCI() string {
	s := m.From.String() + m.To.String()
	if m.Promo != NoPieceType {
		s += promoLetters[m.Promo]
	}
	return s
}

func fromMv(mv pgn.Mv) Move {
	return Move{From: Square(mv.From), To: Square(mv.To), Promo: promoTypes[mv.Promo], flags: mv.Flags}
}

func (m Move) mv() pgn.Mv {
	mv := pgn.Mv{From: pgn.Square(m.From), To: pgn.Square(m.To), Flags: m.flags}
	for pp, t := range promoTypes {
		if t == m.Promo {
			mv.Promo = pp
		}
	}
	return mv
}

// LegalMovesFrom returns the legal moves of the piece on from. The piece's
// color is treated as the side to move.
func (b *Board) LegalMovesFrom(from Square) []Move {
	p := b.Squares[from]
	if p == NoPiece {
		return nil
	}
	var moves []Move
	for _, mv := range pgn.GenerateLegalMoves(b.game(p.Color())) {
		if Square(mv.From) == from {
			moves = append(moves, fromMv(mv))
		}
	}
	return moves
}

// LegalMoves returns every legal move for the side to move.
func (b *Board) LegalMoves() []Move {
	legal := pgn.GenerateLegalMoves(b.game(b.Turn))
	moves := make([]Move, 0, len(legal))
	for _, mv := range legal {
		moves = append(moves, fromMv(mv))
	}
	return moves
}

// Apply returns the board after m, with the side to move passed to the
// opponent of the moving piece. m must be one of the piece's legal moves.
func (b Board) Apply(m Move) (Board, error) {
	p := b.Squares[m.From]
	if p == NoPiece {
		return b, fmt.Errorf("%w: %s: no piece on %s", ErrIllegalMove, m.UCI(), m.From)
	}
	gs := b.game(p.Color())
	for _, mv := range pgn.GenerateLegalMoves(gs) {
		if Square(mv.From) != m.From || Square(mv.To) != m.To || promoTypes[mv.Promo] != m.Promo {
			continue
		}
		if err := pgn.ApplyMove(gs, mv); err != nil {
			return b, fmt.Errorf("%w: %s: %v", ErrIllegalMove, m.UCI(), err)
		}
		return fromGame(gs), nil
	}
	return b, fmt.Errorf("%w: %s", ErrIllegalMove, m.UCI())
}

// GivesCheck reports whether m, played from b, attacks the opponent's king.
// m must come from LegalMoves or LegalMovesFrom.
func (b *Board) GivesCheck(m Move) bool {
	gs := b.game(b.Squares[m.From].Color())
	if err := pgn.ApplyMove(gs, m.mv()); err != nil {
		return false
	}
	return gs.IsInCheck()
}

package predicate

import "github.com/freeeve/stalesearch/internal/board"

// NoTrappedPieces is true when every piece on the board, of either color, has
// at least one legal move.
func NoTrappedPieces(b board.Board) bool {
	return len(TrappedPieces(b)) == 0
}

// TrappedPieces returns the squares of pieces with no legal move to an empty or
// enemy-occupied square. Each piece is judged as if its own side were to move.
func TrappedPieces(b board.Board) []board.Square {
	var trapped []board.Square
	for sq := board.Square(0); sq < 64; sq++ {
		p := b.At(sq)
		if p == board.NoPiece {
			continue
		}
		if len(b.LegalMovesFrom(sq)) == 0 {
			trapped = append(trapped, sq)
		}
	}
	return trapped
}

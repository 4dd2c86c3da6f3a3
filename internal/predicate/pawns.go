package predicate

import "github.com/freeeve/stalesearch/internal/board"

// NoPassedPawns is true when no pawn of either color is passed.
func NoPassedPawns(b board.Board) bool {
	for sq := board.Square(0); sq < 64; sq++ {
		p := b.At(sq)
		if p != board.NoPiece && p.Type() == board.Pawn && IsPassed(b, sq) {
			return false
		}
	}
	return true
}

// IsPassed reports whether the pawn on sq has no enemy pawn on its own or an
// adjacent file on any rank ahead of it. Ranks level with or behind the pawn do
// not count. Returns false when sq holds no pawn.
func IsPassed(b board.Board, sq board.Square) bool {
	p := b.At(sq)
	if p == board.NoPiece || p.Type() != board.Pawn {
		return false
	}
	enemy := board.MakePiece(p.Color().Other(), board.Pawn)
	file, rank := sq.File(), sq.Rank()
	step, end := 1, 8
	if p.Color() == board.Black {
		step, end = -1, -1
	}
	for r := rank + step; r != end; r += step {
		for f := file - 1; f <= file+1; f++ {
			if f < 0 || f > 7 {
				continue
			}
			if b.At(board.NewSquare(f, r)) == enemy {
				return false
			}
		}
	}
	return true
}

// PawnIslands counts the maximal runs of adjacent files holding at least one
// pawn of color c.
func PawnIslands(b board.Board, c board.Color) int {
	var files [8]bool
	pawn := board.MakePiece(c, board.Pawn)
	for sq := board.Square(0); sq < 64; sq++ {
		if b.At(sq) == pawn {
			files[sq.File()] = true
		}
	}
	islands := 0
	inIsland := false
	for _, has := range files {
		if has && !inIsland {
			islands++
		}
		inIsland = has
	}
	return islands
}

// SinglePawnIsland is true when each color's pawns sit in at most one island.
// A side without pawns passes.
func SinglePawnIsland(b board.Board) bool {
	return PawnIslands(b, board.White) <= 1 && PawnIslands(b, board.Black) <= 1
}

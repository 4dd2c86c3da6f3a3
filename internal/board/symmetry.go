package board

import "strings"

// Mirror reflects b across the line between ranks 4 and 5 and swaps the colors:
// a piece on (file, rank) becomes the opposite-colored piece on (file, 9-rank).
// The side to move, castling rights and en-passant square follow the reflection.
// Mirror(Mirror(b)) == b.
func Mirror(b Board) Board {
	m := b
	for sq := Square(0); sq < 64; sq++ {
		m.Squares[flipRank(sq)] = b.Squares[sq].Flip()
	}
	m.Turn = b.Turn.Other()
	if b.EnPassant != NoSquare {
		m.EnPassant = flipRank(b.EnPassant)
	}
	m.Castling = swapCastlingCase(b.Castling)
	return m
}

// IsMirrorImage reports whether every piece of b has its color-swapped twin on the
// reflected square, i.e. the placement is unchanged by Mirror.
func IsMirrorImage(b Board) bool {
	for sq := Square(0); sq < 64; sq++ {
		if b.Squares[flipRank(sq)] != b.Squares[sq].Flip() {
			return false
		}
	}
	return true
}

func flipRank(sq Square) Square { return NewSquare(sq.File(), 7-sq.Rank()) }

func swapCastlingCase(s string) string {
	if s == "" || s == "-" {
		return s
	}
	out := []byte(s)
	for i, ch := range out {
		switch {
		case ch >= 'a' && ch <= 'z':
			out[i] = ch - ('a' - 'A')
		case ch >= 'A' && ch <= 'Z':
			out[i] = ch + ('a' - 'A')
		}
	}
	// FEN lists White's rights first.
	var upper, lower []byte
	for _, ch := range out {
		if ch >= 'A' && ch <= 'Z' {
			upper = append(upper, ch)
		} else {
			lower = append(lower, ch)
		}
	}
	return string(upper) + string(lower)
}

// The eight symmetries of the square as square maps.
var transforms = [8]func(f, r int) (int, int){
	func(f, r int) (int, int) { return f, r },
	func(f, r int) (int, int) { return 7 - f, r },
	func(f, r int) (int, int) { return f, 7 - r },
	func(f, r int) (int, int) { return 7 - f, 7 - r },
	func(f, r int) (int, int) { return r, f },
	func(f, r int) (int, int) { return 7 - r, f },
	func(f, r int) (int, int) { return r, 7 - f },
	func(f, r int) (int, int) { return 7 - r, 7 - f },
}

// Canonical returns the representative of b under the board symmetries that keep
// the game value: the file mirror when pawns are present, all eight symmetries of
// the square otherwise. Castling rights or an en-passant square pin the board to
// the identity. Colors and side to move never change. Among the candidates the one
// with the lexicographically smallest placement string wins.
func Canonical(b Board) Board {
	if (b.Castling != "" && b.Castling != "-") || b.EnPassant != NoSquare {
		return b
	}
	n := len(transforms)
	if b.HasPawns() {
		n = 2
	}
	best := b
	bestKey := b.Placement()
	for i := 1; i < n; i++ {
		t := b
		t.Squares = [64]Piece{}
		for sq := Square(0); sq < 64; sq++ {
			f, r := transforms[i](sq.File(), sq.Rank())
			t.Squares[NewSquare(f, r)] = b.Squares[sq]
		}
		if key := t.Placement(); strings.Compare(key, bestKey) < 0 {
			best, bestKey = t, key
		}
	}
	return best
}

// CanonicalKey is the lookup key for tablebase-style indexes: the canonical
// placement and the side to move.
func CanonicalKey(b Board) string {
	c := Canonical(b)
	turn := " w"
	if c.Turn == Black {
		turn = " b"
	}
	return c.Placement() + turn
}

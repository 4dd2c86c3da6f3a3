package enumerate

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/freeeve/stalesearch/internal/board"
)

func TestNew_InvalidPieceCount(t *testing.T) {
	for _, n := range []int{-2, 0, 1, 3, 7, 18} {
		if _, err := New(n); !errors.Is(err, ErrInvalidPieceCount) {
			t.Errorf("New(%d) error = %v, want ErrInvalidPieceCount", n, err)
		}
	}
}

func TestCombinations(t *testing.T) {
	tests := []struct {
		pieces int
		want   int
	}{
		{2, 1},
		{4, 5},
		{6, 15},
		{8, 35},
	}
	for _, tt := range tests {
		e, err := New(tt.pieces)
		if err != nil {
			t.Fatalf("New(%d): %v", tt.pieces, err)
		}
		combos := e.Combinations()
		if len(combos) != tt.want {
			t.Errorf("%d pieces: %d combinations, want %d", tt.pieces, len(combos), tt.want)
		}
		for _, c := range combos {
			if len(c) != tt.pieces/2 || c[len(c)-1] != board.King {
				t.Errorf("%d pieces: bad combination %s", tt.pieces, c)
			}
		}
	}
}

func TestCombinations_Order(t *testing.T) {
	e, _ := New(4)
	var got []string
	for _, c := range e.Combinations() {
		got = append(got, c.String())
	}
	want := []string{"PK", "NK", "BK", "RK", "QK"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("combinations mismatch (-want +got):\n%s", diff)
	}
}

func TestBoards_TwoKings(t *testing.T) {
	e, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for b, err := range e.Boards() {
		if err != nil {
			t.Fatalf("Boards: %v", err)
		}
		n++
		if b.PieceCount() != 2 {
			t.Errorf("%s: %d pieces", b.FEN(), b.PieceCount())
		}
		if !board.IsMirrorImage(b) {
			t.Errorf("%s: not a mirror image", b.FEN())
		}
		if b.Turn != board.White {
			t.Errorf("%s: black to move", b.FEN())
		}
	}
	// 8 files x 4 ranks, minus the 8 placements with the kings touching.
	if n != 24 {
		t.Errorf("enumerated %d two-king boards, want 24", n)
	}
}

func TestBoards_ValidAndUnique(t *testing.T) {
	e, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for b, err := range e.Boards() {
		if err != nil {
			t.Fatalf("Boards: %v", err)
		}
		fen := b.FEN()
		if seen[fen] {
			t.Fatalf("duplicate board %s", fen)
		}
		seen[fen] = true
		if err := b.Validate(); err != nil {
			t.Errorf("%s: %v", fen, err)
		}
		if !board.IsMirrorImage(b) {
			t.Errorf("%s: not a mirror image", fen)
		}
		for sq := board.Square(0); sq < 64; sq++ {
			p := b.At(sq)
			if p == board.NoPiece {
				continue
			}
			if p.Color() == board.White && sq.Rank() > 3 {
				t.Errorf("%s: white piece on %s", fen, sq)
			}
		}
	}
	if len(seen) == 0 {
		t.Fatal("no boards enumerated")
	}
}

func TestBoardsFor_RepeatedTypeHasNoDuplicates(t *testing.T) {
	e, err := New(6)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[string]bool)
	for b, err := range e.BoardsFor(Combination{board.Rook, board.Rook, board.King}) {
		if err != nil {
			t.Fatalf("BoardsFor: %v", err)
		}
		fen := b.FEN()
		if seen[fen] {
			t.Fatalf("duplicate board %s", fen)
		}
		seen[fen] = true
		if b.PieceCount() != 6 {
			t.Errorf("%s: %d pieces", fen, b.PieceCount())
		}
	}
}

func TestBoards_RestartableAndDeterministic(t *testing.T) {
	e, err := New(4)
	if err != nil {
		t.Fatal(err)
	}
	first := collect(t, e, 200)
	second := collect(t, e, 200)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second walk differs (-first +second):\n%s", diff)
	}

	n1, err := e.Count()
	if err != nil {
		t.Fatal(err)
	}
	n2, _ := e.Count()
	if n1 != n2 {
		t.Errorf("Count() = %d then %d", n1, n2)
	}
}

func TestBoards_EarlyStop(t *testing.T) {
	e, _ := New(4)
	n := 0
	for range e.Boards() {
		n++
		if n == 10 {
			break
		}
	}
	if n != 10 {
		t.Errorf("stopped after %d boards, want 10", n)
	}
}

func TestPlacements_Pawns(t *testing.T) {
	ps := placements(board.Pawn)
	if len(ps) != 24 {
		t.Fatalf("%d pawn placements, want 24", len(ps))
	}
	for _, p := range ps {
		if p.white.Rank() < 1 || p.white.Rank() > 3 {
			t.Errorf("white pawn on %s", p.white)
		}
		if p.black.Rank() != 7-p.white.Rank() || p.black.File() != p.white.File() {
			t.Errorf("pawn pair %s/%s is not mirrored", p.white, p.black)
		}
	}
}

func collect(t *testing.T, e *Enumerator, limit int) []string {
	t.Helper()
	var fens []string
	for b, err := range e.Boards() {
		if err != nil {
			t.Fatalf("Boards: %v", err)
		}
		fens = append(fens, b.FEN())
		if len(fens) == limit {
			break
		}
	}
	return fens
}

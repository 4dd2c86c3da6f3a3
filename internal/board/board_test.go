package board

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/notnil/chess"
)

func TestParseFEN_RoundTrip(t *testing.T) {
	fens := []string{
		"rk6/b7/8/8/8/8/B7/RK6 w - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2",
		"r3k2r/8/8/8/8/8/8/R3K2R b KQkq - 3 17",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			b, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			if got := b.FEN(); got != fen {
				t.Errorf("FEN() = %q, want %q", got, fen)
			}
		})
	}
}

func TestParseFEN_EPD(t *testing.T) {
	b, err := ParseFEN("4k3/8/8/8/8/8/8/4K3 b - -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	if b.Turn != Black || b.FullMove != 1 {
		t.Errorf("got turn %v fullmove %d, want black and 1", b.Turn, b.FullMove)
	}
}

func TestParseFEN_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fen  string
	}{
		{"empty", ""},
		{"seven ranks", "8/8/8/8/8/8/8 w - - 0 1"},
		{"long rank", "9/8/8/8/8/8/8/8 w - - 0 1"},
		{"short rank", "7/8/8/8/8/8/8/8 w - - 0 1"},
		{"bad piece", "x7/8/8/8/8/8/8/8 w - - 0 1"},
		{"bad turn", "8/8/8/8/8/8/8/8 x - - 0 1"},
		{"bad castling", "8/8/8/8/8/8/8/8 w Z - 0 1"},
		{"bad ep", "8/8/8/8/8/8/8/8 w - z9 0 1"},
		{"bad clock", "8/8/8/8/8/8/8/8 w - - x 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFEN(tt.fen)
			if !errors.Is(err, ErrInvalidFEN) {
				t.Errorf("ParseFEN(%q) error = %v, want ErrInvalidFEN", tt.fen, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		ok   bool
	}{
		{"two kings", "8/8/8/4k3/8/8/8/4K3 w - - 0 1", true},
		{"missing black king", "8/8/8/8/8/8/8/4K3 w - - 0 1", false},
		{"two white kings", "4k3/8/8/8/8/8/8/3KK3 w - - 0 1", false},
		{"pawn on first rank", "4k3/8/8/8/8/8/8/P3K3 w - - 0 1", false},
		{"opponent in check", "4k3/8/8/8/8/8/8/4RK2 w - - 0 1", false},
		{"side to move in check", "4k3/8/8/8/8/8/8/4RK2 b - - 0 1", true},
		{"adjacent kings", "8/8/8/8/8/8/3k4/4K3 w - - 0 1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := MustParseFEN(tt.fen)
			err := b.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalidBoard) {
				t.Errorf("Validate() error %v does not wrap ErrInvalidBoard", err)
			}
		})
	}
}

func TestInCheck(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		side Color
		want bool
	}{
		{"rook on open file", "4r3/8/8/8/8/8/8/4K3 w - - 0 1", White, true},
		{"rook file blocked", "4r3/8/8/8/4N3/8/8/4K3 w - - 0 1", White, false},
		{"bishop diagonal", "7k/8/8/8/8/8/8/b3K3 w - - 0 1", White, false},
		{"bishop check", "7k/8/8/8/1b6/8/8/4K3 w - - 0 1", White, true},
		{"knight check", "7k/8/8/8/8/3n4/8/4K3 w - - 0 1", White, true},
		{"black pawn check", "7k/8/8/8/8/8/3p4/4K3 w - - 0 1", White, true},
		{"black pawn behind", "7k/8/8/8/8/8/8/3pK3 w - - 0 1", White, false},
		{"white pawn check", "8/8/8/8/8/4k3/3P4/K7 b - - 0 1", Black, true},
		{"queen check", "k7/8/8/8/8/8/8/Q3K3 b - - 0 1", Black, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := MustParseFEN(tt.fen)
			if got := b.InCheck(tt.side); got != tt.want {
				t.Errorf("InCheck(%v) = %v, want %v", tt.side, got, tt.want)
			}
		})
	}
}

// notnil/chess is an independent move generator; the counts must agree.
func TestLegalMoves_MatchesReference(t *testing.T) {
	fens := []string{
		"8/8/8/4k3/8/8/8/4K3 w - - 0 1",
		"rk6/b7/8/8/8/8/B7/RK6 w - - 0 1",
		"rk6/b7/8/8/8/8/B7/RK6 b - - 0 1",
		"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 b - - 0 1",
		"4k3/P7/8/8/8/8/8/4K3 w - - 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2",
		"3qk3/8/8/8/8/8/8/3QK3 w - - 0 1",
		"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1",
		"k7/8/1Q6/8/8/8/8/7K b - - 0 1",
		"n1n1k3/PPP5/8/8/8/8/5ppp/4K1N1 w - - 0 1",
	}
	for _, fen := range fens {
		t.Run(fen, func(t *testing.T) {
			opt, err := chess.FEN(fen)
			if err != nil {
				t.Fatalf("reference FEN: %v", err)
			}
			want := len(chess.NewGame(opt).Position().ValidMoves())

			b := MustParseFEN(fen)
			if got := len(b.LegalMoves()); got != want {
				t.Errorf("LegalMoves() = %d moves, reference has %d", got, want)
			}
		})
	}
}

func TestLegalMovesFrom_Trapped(t *testing.T) {
	b := MustParseFEN("rk6/b7/8/8/8/8/B7/RK6 w - - 0 1")
	if moves := b.LegalMovesFrom(NewSquare(0, 0)); len(moves) != 0 {
		t.Errorf("rook on a1 has %d moves, want 0: %v", len(moves), moves)
	}
	if moves := b.LegalMovesFrom(NewSquare(0, 7)); len(moves) != 0 {
		t.Errorf("rook on a8 has %d moves, want 0: %v", len(moves), moves)
	}
	if moves := b.LegalMovesFrom(NewSquare(0, 1)); len(moves) == 0 {
		t.Error("bishop on a2 has no moves")
	}
}

// Each side judged as the mover: the bishops and kings move, the cornered
// rooks do not.
func TestLegalMovesFrom_PerColorOrigins(t *testing.T) {
	b := MustParseFEN("rk6/b7/8/8/8/8/B7/RK6 w - - 0 1")
	origins := func(c Color) map[string]int {
		got := make(map[string]int)
		for sq := Square(0); sq < 64; sq++ {
			if p := b.At(sq); p != NoPiece && p.Color() == c {
				if n := len(b.LegalMovesFrom(sq)); n > 0 {
					got[sq.String()] = n
				}
			}
		}
		return got
	}
	if diff := cmp.Diff(map[string]int{"a2": 6, "b1": 3}, origins(White)); diff != "" {
		t.Errorf("white origins mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]int{"a7": 6, "b8": 3}, origins(Black)); diff != "" {
		t.Errorf("black origins mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_EnPassant(t *testing.T) {
	b := MustParseFEN("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2")
	e5, _ := ParseSquare("e5")
	d6, _ := ParseSquare("d6")
	next, err := b.Apply(Move{From: e5, To: d6})
	if err != nil {
		t.Fatal(err)
	}
	want := "4k3/8/3P4/8/8/8/8/4K3 b - - 0 2"
	if got := next.FEN(); got != want {
		t.Errorf("after exd6: %q, want %q", got, want)
	}
}

func TestApply_DoublePush(t *testing.T) {
	b := MustParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	next, err := b.Apply(Move{From: NewSquare(4, 1), To: NewSquare(4, 3)})
	if err != nil {
		t.Fatal(err)
	}
	want := "4k3/8/8/8/4P3/8/8/4K3 b - e3 0 1"
	if got := next.FEN(); got != want {
		t.Errorf("after e4: %q, want %q", got, want)
	}
}

func TestApply_Illegal(t *testing.T) {
	b := MustParseFEN("4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	if _, err := b.Apply(Move{From: NewSquare(4, 1), To: NewSquare(4, 4)}); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("e2e5 error = %v, want ErrIllegalMove", err)
	}
	if _, err := b.Apply(Move{From: NewSquare(0, 0), To: NewSquare(0, 1)}); !errors.Is(err, ErrIllegalMove) {
		t.Errorf("a1a2 error = %v, want ErrIllegalMove", err)
	}
}

func TestGivesCheck(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		uci  string
		want bool
	}{
		{"rook to the king's file", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1a8", true},
		{"rook along the first rank", "4k3/8/8/8/8/8/8/R3K3 w - - 0 1", "a1b1", false},
		{"discovered check", "4k3/8/8/8/4N3/8/8/4R1K1 w - - 0 1", "e4c5", true},
		{"queen promotion misses", "8/P1k5/8/8/8/8/8/K7 w - - 0 1", "a7a8q", false},
		{"knight promotion checks", "8/P1k5/8/8/8/8/8/K7 w - - 0 1", "a7a8n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := MustParseFEN(tt.fen)
			for _, m := range b.LegalMoves() {
				if m.UCI() == tt.uci {
					if got := b.GivesCheck(m); got != tt.want {
						t.Errorf("GivesCheck(%s) = %v, want %v", tt.uci, got, tt.want)
					}
					return
				}
			}
			t.Fatalf("%s is not a legal move", tt.uci)
		})
	}
}

func TestAttackedPieces(t *testing.T) {
	b := MustParseFEN("4k3/8/8/3r4/8/8/3B4/4K3 w - - 0 1")
	if diff := cmp.Diff([]Square{NewSquare(3, 1)}, b.AttackedPieces(White)); diff != "" {
		t.Errorf("AttackedPieces(White) mismatch (-want +got):\n%s", diff)
	}
	if got := b.AttackedPieces(Black); len(got) != 0 {
		t.Errorf("AttackedPieces(Black) = %v, want none", got)
	}
	if !b.IsAttackedBy(NewSquare(3, 3), Black) || b.IsAttackedBy(NewSquare(0, 0), Black) {
		t.Error("IsAttackedBy disagrees with the rook on d5")
	}
}

func TestMove_UCI(t *testing.T) {
	m := Move{From: NewSquare(0, 6), To: NewSquare(0, 7), Promo: Queen}
	if got := m.UCI(); got != "a7a8q" {
		t.Errorf("UCI() = %q, want a7a8q", got)
	}
}

func TestPieceSymbols(t *testing.T) {
	var got []string
	for _, ch := range []byte("PNBRQKpnbrqk") {
		p, ok := PieceFromSymbol(ch)
		if !ok {
			t.Fatalf("PieceFromSymbol(%q) failed", ch)
		}
		got = append(got, string(p.Symbol()))
	}
	want := []string{"P", "N", "B", "R", "Q", "K", "p", "n", "b", "r", "q", "k"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("symbols mismatch (-want +got):\n%s", diff)
	}
	if _, ok := PieceFromSymbol('1'); ok {
		t.Error("PieceFromSymbol('1') succeeded")
	}
}

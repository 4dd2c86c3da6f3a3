package board

import (
	"fmt"
	"strings"

	"github.com/freeeve/pgn/v3"
)

// ParseFEN parses a FEN string. The move counters may be omitted, as in EPD.
// Only the syntax is checked; call Validate for the legality invariants.
func ParseFEN(fen string) (Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return Board{}, fmt.Errorf("%w: %q: want at least 4 fields, got %d", ErrInvalidFEN, fen, len(fields))
	}
	if err := checkPlacement(fields[0]); err != nil {
		return Board{}, fmt.Errorf("%w: %q: %v", ErrInvalidFEN, fen, err)
	}
	gs, err := pgn.NewGame(fen)
	if err != nil {
		return Board{}, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	if gs.Halfmove < 0 {
		return Board{}, fmt.Errorf("%w: %q: negative halfmove clock", ErrInvalidFEN, fen)
	}
	return fromGame(gs), nil
}

// checkPlacement rejects placements with the wrong number of ranks or files,
// which the move generator's parser lets through.
func checkPlacement(placement string) error {
	rows := strings.Split(placement, "/")
	if len(rows) != 8 {
		return fmt.Errorf("want 8 ranks, got %d", len(rows))
	}
	for i, row := range rows {
		file := 0
		for j := 0; j < len(row); j++ {
			if ch := row[j]; ch >= '1' && ch <= '9' {
				file += int(ch - '0')
			} else {
				file++
			}
		}
		if file != 8 {
			return fmt.Errorf("rank %d has %d files", 8-i, file)
		}
	}
	return nil
}

// MustParseFEN is ParseFEN for constants and tests; it panics on error.
func MustParseFEN(fen string) Board {
	b, err := ParseFEN(fen)
	if err != nil {
		panic(err)
	}
	return b
}

// Placement returns the piece-placement field of the FEN.
func (b *Board) Placement() string {
	var sb strings.Builder
	sb.Grow(64)
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			p := b.Squares[NewSquare(file, rank)]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(p.Symbol())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

// FEN returns the full six-field FEN string.
func (b *Board) FEN() string {
	turn := "w"
	if b.Turn == Black {
		turn = "b"
	}
	castling := b.Castling
	if castling == "" {
		castling = "-"
	}
	full := b.FullMove
	if full < 1 {
		full = 1
	}
	return fmt.Sprintf("%s %s %s %s %d %d", b.Placement(), turn, castling, b.EnPassant, b.HalfMove, full)
}

package oracle

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/freeeve/stalesearch/internal/board"
)

// DefaultTablebasePieces is the largest piece count exact tablebases cover in
// this study.
const DefaultTablebasePieces = 6

// FileTablebase is an in-memory index over tablebase results dumped to CSV.
// Rows are keyed by canonical board, so any symmetric image of a stored
// position is found as well.
type FileTablebase struct {
	mu        sync.RWMutex
	entries   map[string]Outcome
	maxPieces int
}

// NewFileTablebase returns an empty tablebase covering up to maxPieces pieces
// (DefaultTablebasePieces when zero).
func NewFileTablebase(maxPieces int) *FileTablebase {
	if maxPieces == 0 {
		maxPieces = DefaultTablebasePieces
	}
	return &FileTablebase{
		entries:   make(map[string]Outcome),
		maxPieces: maxPieces,
	}
}

// LoadFile reads a CSV dump with the header fen,category,dtz,dtm. Files ending
// in .zst or .gz are decompressed on the fly. Empty dtz/dtm cells mean the
// distance is not known. Rows that do not parse are skipped; the number of
// rows loaded and skipped is returned.
func (t *FileTablebase) LoadFile(path string) (loaded, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return 0, 0, fmt.Errorf("open zstd %s: %w", path, err)
		}
		defer zr.Close()
		reader = zr
	case strings.HasSuffix(path, ".gz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return 0, 0, fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gr.Close()
		reader = gr
	}
	return t.Load(reader)
}

// Load reads CSV rows from r; see LoadFile for the format.
func (t *FileTablebase) Load(r io.Reader) (loaded, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || header[0] != "fen" || header[1] != "category" {
		return 0, 0, fmt.Errorf("%w: header %v, want fen,category,dtz,dtm", ErrBadResponse, header)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return loaded, skipped, fmt.Errorf("read row: %w", err)
		}

		b, out, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		t.Put(b, out)
		loaded++
	}
	return loaded, skipped, nil
}

func parseRow(row []string) (board.Board, Outcome, bool) {
	if len(row) < 2 {
		return board.Board{}, Outcome{}, false
	}
	b, err := board.ParseFEN(row[0])
	if err != nil {
		return board.Board{}, Outcome{}, false
	}
	out := Outcome{
		Verdict: verdictFromCategory(row[1], b.Turn),
		Source:  SourceTablebaseFile,
	}
	if len(row) > 2 && row[2] != "" {
		dtz, err := strconv.Atoi(row[2])
		if err != nil {
			return board.Board{}, Outcome{}, false
		}
		out.DTZ, out.HasDTZ = dtz, true
	}
	if len(row) > 3 && row[3] != "" {
		dtm, err := strconv.Atoi(row[3])
		if err != nil {
			return board.Board{}, Outcome{}, false
		}
		out.DTM, out.HasDTM = dtm, true
	}
	return b, out, true
}

// Put stores the outcome for b.
func (t *FileTablebase) Put(b board.Board, out Outcome) {
	key := board.CanonicalKey(b)
	t.mu.Lock()
	t.entries[key] = out
	t.mu.Unlock()
}

// Lookup returns the stored outcome, Unknown for boards that are too large or
// were not in the dump.
func (t *FileTablebase) Lookup(ctx context.Context, b board.Board) (Outcome, error) {
	if b.PieceCount() > t.maxPieces {
		return Outcome{Source: SourceTablebaseFile}, nil
	}
	t.mu.RLock()
	out, ok := t.entries[board.CanonicalKey(b)]
	t.mu.RUnlock()
	if !ok {
		return Outcome{Source: SourceTablebaseFile}, nil
	}
	return out, nil
}

// Len returns the number of stored positions.
func (t *FileTablebase) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

func (t *FileTablebase) MaxPieces() int { return t.maxPieces }
func (t *FileTablebase) Name() string   { return SourceTablebaseFile }

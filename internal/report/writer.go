package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/freeeve/stalesearch/internal/oracle"
)

// File name prefixes, one per verdict class.
const (
	ConfirmedPrefix  = "stale_boards"
	ExceptionsPrefix = "exceptions"
	UnverifiedPrefix = "unverified"
)

// WriterConfig configures a Writer.
type WriterConfig struct {
	Dir      string // Output directory; "." when empty
	Compress bool   // Write .fen.zst instead of .fen
	Logger   zerolog.Logger
}

// Writer renders buckets to files.
type Writer struct {
	cfg WriterConfig
}

// NewWriter returns a writer for cfg.
func NewWriter(cfg WriterConfig) *Writer {
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	return &Writer{cfg: cfg}
}

// FileName returns the name used for one class of a bucket.
func (w *Writer) FileName(prefix string, pieces int) string {
	name := fmt.Sprintf("%s_%d.fen", prefix, pieces)
	if w.cfg.Compress {
		name += ".zst"
	}
	return filepath.Join(w.cfg.Dir, name)
}

// WriteAll writes every bucket of a. On error the aggregator is untouched, so
// the call can simply be repeated.
func (w *Writer) WriteAll(a *Aggregator) ([]string, error) {
	var paths []string
	for _, b := range a.Buckets() {
		p, err := w.WriteBucket(b)
		paths = append(paths, p...)
		if err != nil {
			return paths, err
		}
	}
	return paths, nil
}

// WriteBucket writes the three files of one bucket and returns their paths.
// Each file is written to a temporary name and renamed into place.
func (w *Writer) WriteBucket(b *Bucket) ([]string, error) {
	if err := os.MkdirAll(w.cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	classes := []struct {
		prefix  string
		records []Record
	}{
		{ConfirmedPrefix, b.Confirmed},
		{ExceptionsPrefix, b.Exceptions},
		{UnverifiedPrefix, b.Unverified},
	}
	var paths []string
	for _, c := range classes {
		path := w.FileName(c.prefix, b.Pieces)
		if err := w.writeFile(path, c.records); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
		w.cfg.Logger.Info().
			Str("path", path).
			Int("pieces", b.Pieces).
			Int("records", len(c.records)).
			Msg("wrote bucket file")
	}
	return paths, nil
}

func (w *Writer) writeFile(path string, records []Record) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmpPath)
		}
	}()

	var out io.Writer = f
	var enc *zstd.Encoder
	if w.cfg.Compress {
		enc, err = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			return fmt.Errorf("create encoder: %w", err)
		}
		out = enc
	}

	bw := bufio.NewWriter(out)
	for _, r := range records {
		if _, err = bw.WriteString(FormatLine(r)); err != nil {
			return err
		}
		if err = bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if enc != nil {
		if err = enc.Close(); err != nil {
			return fmt.Errorf("close encoder: %w", err)
		}
	}
	if err = f.Sync(); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// FormatLine renders a record as tab-separated fields:
// fen, predicate bits, verdict, source, dtz, dtm, score, best move, heuristic.
// Missing values are written as "-"; heuristic is 1 for engine verdicts.
func FormatLine(r Record) string {
	o := r.Outcome
	dtz, dtm := "-", "-"
	if o.HasDTZ {
		dtz = strconv.Itoa(o.DTZ)
	}
	if o.HasDTM {
		dtm = strconv.Itoa(o.DTM)
	}
	heuristic := "0"
	if o.Heuristic {
		heuristic = "1"
	}
	source := o.Source
	if source == "" {
		source = oracle.SourceNone
	}
	best := o.BestMove
	if best == "" {
		best = "-"
	}
	return strings.Join([]string{
		r.Board.FEN(),
		r.Predicates.Bits(),
		o.Verdict.String(),
		source,
		dtz,
		dtm,
		FormatScore(o),
		best,
		heuristic,
	}, "\t")
}

// FormatScore renders an engine score: centipawns from White's view, or #N
// for a mate. Outcomes from other sources have no score and render as "-".
func FormatScore(o oracle.Outcome) string {
	switch {
	case o.Source != oracle.SourceEngine:
		return "-"
	case o.Mate:
		return "#" + strconv.Itoa(o.Score)
	default:
		return strconv.Itoa(o.Score)
	}
}

package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/freeeve/stalesearch/internal/board"
)

// ReadFENs reads the positions back out of a bucket file or a plain FEN list.
// Files ending in .zst are decompressed. On each line the first tab-separated
// field that looks like a FEN is used, so both bucket files and "score<TAB>fen"
// check logs are accepted. Blank lines are skipped, as are lines starting with #
// that carry no FEN; a "#3<TAB>fen" mate score is still read.
// Every FEN is validated and returned in normalised six-field form.
func ReadFENs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("open zstd %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		field := fenField(line)
		if field == "" {
			if strings.HasPrefix(line, "#") {
				continue
			}
			return out, fmt.Errorf("%s:%d: %w: no FEN on line", path, lineNo, board.ErrInvalidFEN)
		}
		b, err := board.ParseFEN(field)
		if err != nil {
			return out, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		out = append(out, b.FEN())
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read %s: %w", path, err)
	}
	return out, nil
}

func fenField(line string) string {
	for _, f := range strings.Split(line, "\t") {
		if strings.Count(f, "/") == 7 {
			return strings.TrimSpace(f)
		}
	}
	return ""
}

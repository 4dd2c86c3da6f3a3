package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/freeeve/stalesearch/internal/board"
)

// DefaultTablebaseURL is the public lichess tablebase service.
const DefaultTablebaseURL = "https://tablebase.lichess.ovh"

// HTTPTablebaseConfig configures an HTTPTablebase.
type HTTPTablebaseConfig struct {
	BaseURL   string        // Service root; DefaultTablebaseURL when empty
	MaxPieces int           // Largest board to query; DefaultTablebasePieces when zero
	Timeout   time.Duration // Per-request timeout; 10s when zero
	Client    *http.Client  // Optional; built from Timeout when nil
}

// HTTPTablebase queries a lichess-compatible tablebase endpoint:
// GET {base}/standard?fen=... answering JSON with category, dtz and dtm.
type HTTPTablebase struct {
	base      string
	maxPieces int
	client    *http.Client
}

// NewHTTPTablebase returns a client for the configured service.
func NewHTTPTablebase(cfg HTTPTablebaseConfig) *HTTPTablebase {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultTablebaseURL
	}
	if cfg.MaxPieces == 0 {
		cfg.MaxPieces = DefaultTablebasePieces
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: cfg.Timeout}
	}
	return &HTTPTablebase{
		base:      strings.TrimRight(cfg.BaseURL, "/"),
		maxPieces: cfg.MaxPieces,
		client:    cfg.Client,
	}
}

type tablebaseResponse struct {
	Category string `json:"category"`
	DTZ      *int   `json:"dtz"`
	DTM      *int   `json:"dtm"`
}

// Lookup queries the service. Boards above MaxPieces and 404 answers are
// Unknown; other non-200 answers are errors.
func (t *HTTPTablebase) Lookup(ctx context.Context, b board.Board) (Outcome, error) {
	miss := Outcome{Source: SourceTablebaseHTTP}
	if b.PieceCount() > t.maxPieces {
		return miss, nil
	}

	fen := b.FEN()
	u := t.base + "/standard?fen=" + url.QueryEscape(fen)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return miss, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return miss, fmt.Errorf("query tablebase for %s: %w", fen, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return miss, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return miss, fmt.Errorf("%w: %s for %s: %s", ErrBadResponse, resp.Status, fen, strings.TrimSpace(string(body)))
	}

	var tr tablebaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return miss, fmt.Errorf("%w: decode %s: %v", ErrBadResponse, fen, err)
	}

	out := Outcome{
		Verdict: verdictFromCategory(tr.Category, b.Turn),
		Source:  SourceTablebaseHTTP,
	}
	if tr.DTZ != nil {
		out.DTZ, out.HasDTZ = *tr.DTZ, true
	}
	if tr.DTM != nil {
		out.DTM, out.HasDTM = *tr.DTM, true
	}
	return out, nil
}

func (t *HTTPTablebase) MaxPieces() int { return t.maxPieces }
func (t *HTTPTablebase) Name() string   { return SourceTablebaseHTTP }

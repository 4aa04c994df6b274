// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: report.go — Run results
//
// Purpose:
//   - Describes one finished game: its inputs, the score and the ring digest.
//   - Encodes runs as JSON for --json output and the history store.
//
// Notes:
//   - Answer is a string for both scores so a single column fits both kinds.
// ─────────────────────────────────────────────────────────────────────────────

package report

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

// Kind names the score a run produced.
type Kind string

const (
	KindLabels Kind = "labels"
	KindStars  Kind = "stars"
)

var ErrKind = errors.New("report: unknown run kind")

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindLabels || k == KindStars
}

// Run is one completed game.
type Run struct {
	ID         string        `json:"id"`
	Kind       Kind          `json:"kind"`
	Seed       string        `json:"seed"`
	Population int           `json:"population"`
	Moves      int           `json:"moves"`
	Answer     string        `json:"answer"`
	Digest     string        `json:"digest"`
	Elapsed    time.Duration `json:"elapsedNs"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// Encode returns the JSON form of r.
func Encode(r *Run) ([]byte, error) {
	if !r.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrKind, r.Kind)
	}
	return sonnet.Marshal(r)
}

// Decode parses a run previously produced by Encode.
func Decode(data []byte) (*Run, error) {
	var r Run
	if err := sonnet.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decoding run: %w", err)
	}
	if !r.Kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrKind, r.Kind)
	}
	return &r, nil
}

// Write encodes r to w followed by a newline.
func Write(w io.Writer, r *Run) error {
	data, err := Encode(r)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// Text renders r as a single human-readable line.
func Text(r *Run) string {
	return fmt.Sprintf("%s: %s (seed %s, %d cups, %d moves, %s)",
		r.Kind, r.Answer, r.Seed, r.Population, r.Moves, r.Elapsed.Round(time.Millisecond))
}

// ════════════════════════════════════════════════════════════════════════════════════════════════
// Crab Cups Game Driver
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Crab Cups Ring Simulator
// Component: Move Simulation & Scoring
//
// Description:
//   Plays the crab's cup game on an indexed ring. Each move lifts the three cups clockwise of
//   the current cup, finds the destination label by decrementing with wraparound while skipping
//   lifted labels, re-links the lifted cups after the destination in their original order and
//   advances the current cup by one.
//
// Architecture:
//   - Build: seed cups appended in order, then consecutive labels up to the population
//   - Move: three detaches, one index lookup, three re-links, one cursor step
//   - Score: labels after cup 1 (short games) or product of the two cups after cup 1
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package crabcups

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"crabring/constants"
	"crabring/ring"
)

var (
	ErrBadSeed    = errors.New("crabcups: invalid seed")
	ErrPopulation = errors.New("crabcups: invalid population")
	ErrNoScoreCup = errors.New("crabcups: cup 1 is not in the ring")

	ErrNoDestination = errors.New("crabcups: no destination cup")
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// TYPE DEFINITIONS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Trace describes one completed move.
type Trace struct {
	Move        int
	Current     uint32
	PickedUp    [constants.PickupCount]uint32
	Destination uint32
}

// Game owns the ring for one simulation.
type Game struct {
	cups  *ring.Ring
	min   uint32
	max   uint32
	moves int

	population    int
	ringOpts      []ring.Option
	progressEvery int
	progress      func(move int)
	tracer        func(Trace)
}

// Option configures a Game.
type Option func(*Game)

// WithPopulation extends the seed with consecutive labels, starting one past
// the largest seed label, until the ring holds n cups. Values not larger than
// the seed length leave the ring at seed size.
func WithPopulation(n int) Option {
	return func(g *Game) { g.population = n }
}

// WithProgress calls fn with the cumulative move number every `every` moves
// of Play.
func WithProgress(every int, fn func(move int)) Option {
	return func(g *Game) {
		g.progressEvery = every
		g.progress = fn
	}
}

// WithTracer calls fn after every move with the move's details.
func WithTracer(fn func(Trace)) Option {
	return func(g *Game) { g.tracer = fn }
}

// WithRingOptions forwards options to the underlying ring.
func WithRingOptions(opts ...ring.Option) Option {
	return func(g *Game) { g.ringOpts = append(g.ringOpts, opts...) }
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// CONSTRUCTION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// ParseSeed reads one cup label per digit. Surrounding whitespace is
// ignored; zero, non-digits and repeated labels are rejected.
func ParseSeed(s string) ([]uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadSeed)
	}
	seen := [10]bool{}
	out := make([]uint32, 0, len(s))
	for i, c := range s {
		if c < '1' || c > '9' {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrBadSeed, c, i)
		}
		d := c - '0'
		if seen[d] {
			return nil, fmt.Errorf("%w: label %d repeats", ErrBadSeed, d)
		}
		seen[d] = true
		out = append(out, uint32(d))
	}
	return out, nil
}

// New builds the ring from seed (first label becomes the current cup) and
// extends it to the configured population.
func New(seed []uint32, opts ...Option) (*Game, error) {
	g := &Game{}
	for _, opt := range opts {
		opt(g)
	}
	if len(seed) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrBadSeed)
	}
	total := max(len(seed), g.population)
	if total < constants.MinCups {
		return nil, fmt.Errorf("%w: %d cups, need at least %d", ErrPopulation, total, constants.MinCups)
	}
	if uint64(total) >= uint64(ring.Nil) {
		return nil, fmt.Errorf("%w: %d cups exceeds the ring's handle space", ErrPopulation, total)
	}

	g.cups = ring.New(total, g.ringOpts...)
	for _, v := range seed {
		if _, err := g.cups.Append(v); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadSeed, err)
		}
	}

	hi, err := g.cups.Max()
	if err != nil {
		return nil, err
	}
	if uint64(hi)+uint64(total-len(seed)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: labels would overflow past %d", ErrPopulation, hi)
	}
	for next := hi + 1; g.cups.Len() < total; next++ {
		if _, err := g.cups.Append(next); err != nil {
			return nil, err
		}
	}

	if g.min, err = g.cups.Min(); err != nil {
		return nil, err
	}
	if g.max, err = g.cups.Max(); err != nil {
		return nil, err
	}
	return g, nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SIMULATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// destination finds the label below current, wrapping from min to max,
// skipping labels not in the ring. Lifted cups are detached, so the index
// already excludes them.
//
// The walk covers at most the whole label span, and current itself is still
// linked, so it always ends on a cup. For a dense label set it takes at most
// PickupCount+1 lookups.
func (g *Game) destination(current uint32) (ring.Handle, bool) {
	v := current
	for i := uint64(0); i <= uint64(g.max-g.min); i++ {
		if v <= g.min {
			v = g.max
		} else {
			v--
		}
		if h, ok := g.cups.Locate(v); ok {
			return h, true
		}
	}
	return ring.Nil, false
}

// Move plays a single move.
func (g *Game) Move() error {
	cur := g.cups.Current()
	if cur == ring.Nil {
		return fmt.Errorf("move %d: %w", g.moves+1, ring.ErrEmpty)
	}

	var lifted [constants.PickupCount]ring.Handle
	for i := range lifted {
		h, err := g.cups.RemoveNext(cur)
		if err != nil {
			return fmt.Errorf("move %d: pick up: %w", g.moves+1, err)
		}
		lifted[i] = h
	}

	label := g.cups.Value(cur)
	dst, ok := g.destination(label)
	if !ok {
		return fmt.Errorf("move %d: no destination below %d: %w", g.moves+1, label, ErrNoDestination)
	}

	at := dst
	for _, h := range lifted {
		if err := g.cups.InsertAfter(at, h); err != nil {
			return fmt.Errorf("move %d: place: %w", g.moves+1, err)
		}
		at = h
	}

	if err := g.cups.SetCurrent(g.cups.Next(cur)); err != nil {
		return fmt.Errorf("move %d: advance: %w", g.moves+1, err)
	}
	g.moves++

	if g.tracer != nil {
		t := Trace{Move: g.moves, Current: label, Destination: g.cups.Value(dst)}
		for i, h := range lifted {
			t.PickedUp[i] = g.cups.Value(h)
		}
		g.tracer(t)
	}
	return nil
}

// Play runs n moves. The context is checked on entry and then polled every
// CancelCheckInterval moves.
func (g *Game) Play(ctx context.Context, n int) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("stopped after %d moves: %w", g.moves, err)
	}
	for i := 1; i <= n; i++ {
		if i&(constants.CancelCheckInterval-1) == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("stopped after %d moves: %w", g.moves, err)
			}
		}
		if err := g.Move(); err != nil {
			return err
		}
		if g.progress != nil && g.progressEvery > 0 && g.moves%g.progressEvery == 0 {
			g.progress(g.moves)
		}
	}
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// ACCESSORS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// Moves returns the number of moves played so far.
func (g *Game) Moves() int { return g.moves }

// Len returns the number of cups.
func (g *Game) Len() int { return g.cups.Len() }

// Bounds returns the smallest and largest labels, fixed at construction.
func (g *Game) Bounds() (uint32, uint32) { return g.min, g.max }

// Ring exposes the underlying ring for inspection.
func (g *Game) Ring() *ring.Ring { return g.cups }

// Current returns the label of the current cup.
func (g *Game) Current() uint32 { return g.cups.Value(g.cups.Current()) }

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// SCORING
// ═══════════════════════════════════════════════════════════════════════════════════════════════

// afterOne returns the n labels clockwise of cup 1.
func (g *Game) afterOne(n int) ([]uint32, error) {
	one, ok := g.cups.Locate(constants.ScoreLabel)
	if !ok {
		return nil, ErrNoScoreCup
	}
	return g.cups.Walk(g.cups.Next(one), n, false), nil
}

// LabelsAfterOne concatenates every label clockwise of cup 1, excluding it.
func (g *Game) LabelsAfterOne() (string, error) {
	labels, err := g.afterOne(g.cups.Len() - 1)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, v := range labels {
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	return b.String(), nil
}

// StarProduct multiplies the two labels immediately clockwise of cup 1.
func (g *Game) StarProduct() (uint64, error) {
	labels, err := g.afterOne(2)
	if err != nil {
		return 0, err
	}
	return uint64(labels[0]) * uint64(labels[1]), nil
}

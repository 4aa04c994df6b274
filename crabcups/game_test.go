package crabcups

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crabring/constants"
	"crabring/ring"
)

const exampleSeed = "389125467"

func newGame(t *testing.T, seed string, opts ...Option) *Game {
	t.Helper()
	cups, err := ParseSeed(seed)
	require.NoError(t, err)
	g, err := New(cups, opts...)
	require.NoError(t, err)
	return g
}

// -----------------------------------------------------------------------------
// ░░ Seed parsing ░░
// -----------------------------------------------------------------------------

func TestParseSeed(t *testing.T) {
	got, err := ParseSeed("  389125467\n")
	require.NoError(t, err)
	require.Equal(t, []uint32{3, 8, 9, 1, 2, 5, 4, 6, 7}, got)

	for _, bad := range []string{"", "   ", "3891a", "3801", "3883"} {
		_, err := ParseSeed(bad)
		require.ErrorIs(t, err, ErrBadSeed, "seed %q", bad)
	}
}

// -----------------------------------------------------------------------------
// ░░ Construction ░░
// -----------------------------------------------------------------------------

func TestNewSeedOnly(t *testing.T) {
	g := newGame(t, exampleSeed)
	require.Equal(t, 9, g.Len())
	require.Equal(t, uint32(3), g.Current())
	lo, hi := g.Bounds()
	require.Equal(t, uint32(1), lo)
	require.Equal(t, uint32(9), hi)
	require.Equal(t, []uint32{3, 8, 9, 1, 2, 5, 4, 6, 7}, g.Snapshot().Cups)
}

func TestNewExtendsPopulation(t *testing.T) {
	g := newGame(t, exampleSeed, WithPopulation(15))
	require.Equal(t, 15, g.Len())
	require.Equal(t,
		[]uint32{3, 8, 9, 1, 2, 5, 4, 6, 7, 10, 11, 12, 13, 14, 15},
		g.Snapshot().Cups,
	)
	_, hi := g.Bounds()
	require.Equal(t, uint32(15), hi)
	require.NoError(t, g.Ring().Verify())
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(nil)
	require.ErrorIs(t, err, ErrBadSeed)

	_, err = New([]uint32{1, 2, 3})
	require.ErrorIs(t, err, ErrPopulation)

	_, err = New([]uint32{1, 2, 2, 3})
	require.ErrorIs(t, err, ErrBadSeed)
	require.ErrorIs(t, err, ring.ErrDuplicate)

	_, err = New([]uint32{0, 1, 2, 3})
	require.ErrorIs(t, err, ring.ErrZeroValue)

	_, err = New([]uint32{^uint32(0) - 1, 1, 2, 3}, WithPopulation(8))
	require.ErrorIs(t, err, ErrPopulation)
}

// -----------------------------------------------------------------------------
// ░░ Moves ░░
// -----------------------------------------------------------------------------

func TestFirstMove(t *testing.T) {
	var traces []Trace
	g := newGame(t, exampleSeed, WithTracer(func(tr Trace) { traces = append(traces, tr) }))

	require.NoError(t, g.Move())

	cur, ok := g.Ring().Locate(3)
	require.True(t, ok)
	require.Equal(t,
		[]uint32{3, 2, 8, 9, 1, 5, 4, 6, 7},
		g.Ring().Walk(cur, g.Len(), false),
	)
	require.Equal(t, uint32(2), g.Current())
	require.Zero(t, g.Ring().Detached(), "every lifted cup must be placed back")
	require.NoError(t, g.Ring().Verify())

	require.Equal(t, []Trace{{
		Move:        1,
		Current:     3,
		PickedUp:    [constants.PickupCount]uint32{8, 9, 1},
		Destination: 2,
	}}, traces)
}

// TestExampleMoves replays the documented ten-move example, checking the
// destination picked at every step.
func TestExampleMoves(t *testing.T) {
	want := []struct {
		current     uint32
		picked      [3]uint32
		destination uint32
	}{
		{3, [3]uint32{8, 9, 1}, 2},
		{2, [3]uint32{8, 9, 1}, 7},
		{5, [3]uint32{4, 6, 7}, 3},
		{8, [3]uint32{9, 1, 3}, 7},
		{4, [3]uint32{6, 7, 9}, 3},
		{1, [3]uint32{3, 6, 7}, 9},
		{9, [3]uint32{3, 6, 7}, 8},
		{2, [3]uint32{5, 8, 3}, 1},
		{6, [3]uint32{7, 4, 1}, 5},
		{5, [3]uint32{7, 4, 1}, 3},
	}
	var traces []Trace
	g := newGame(t, exampleSeed, WithTracer(func(tr Trace) { traces = append(traces, tr) }))
	require.NoError(t, g.Play(context.Background(), len(want)))
	require.Len(t, traces, len(want))
	for i, w := range want {
		require.Equal(t, w.current, traces[i].Current, "move %d", i+1)
		require.Equal(t, w.picked, traces[i].PickedUp, "move %d", i+1)
		require.Equal(t, w.destination, traces[i].Destination, "move %d", i+1)
	}

	require.Equal(t, uint32(8), g.Current())
	got, err := g.LabelsAfterOne()
	require.NoError(t, err)
	require.Equal(t, "92658374", got)
}

func TestLabelsAfterHundredMoves(t *testing.T) {
	g := newGame(t, exampleSeed)
	require.NoError(t, g.Play(context.Background(), constants.LabelsMoves))
	require.Equal(t, constants.LabelsMoves, g.Moves())

	got, err := g.LabelsAfterOne()
	require.NoError(t, err)
	require.Equal(t, "67384529", got)
}

func TestMinimalRingMoveIsStable(t *testing.T) {
	g := newGame(t, "4123")
	before := g.Snapshot().Cups
	require.NoError(t, g.Move())
	cur, _ := g.Ring().Locate(4)
	require.Equal(t, before, g.Ring().Walk(cur, 4, false))
	require.Equal(t, uint32(1), g.Current())
}

// playModel replays the game on a plain slice kept with the current cup at
// index 0, returning the labels clockwise of cup 1.
func playModel(seed []uint32, moves int) string {
	cups := slices.Clone(seed)
	lo, hi := slices.Min(cups), slices.Max(cups)
	for range moves {
		cur := cups[0]
		picked := slices.Clone(cups[1 : 1+constants.PickupCount])
		rest := append([]uint32{cur}, cups[1+constants.PickupCount:]...)
		v := cur
		for {
			if v <= lo {
				v = hi
			} else {
				v--
			}
			if slices.Contains(rest, v) {
				break
			}
		}
		i := slices.Index(rest, v)
		next := slices.Concat(rest[:i+1], picked, rest[i+1:])
		cups = slices.Concat(next[1:], next[:1])
	}
	i := slices.Index(cups, constants.ScoreLabel)
	var b strings.Builder
	for _, v := range slices.Concat(cups[i+1:], cups[:i]) {
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	return b.String()
}

func TestSparseSeeds(t *testing.T) {
	for seed, want := range map[string]string{
		"7316":  "673",
		"9517":  "795",
		"91573": "5739",
		"2915":  "529",
	} {
		g := newGame(t, seed)
		require.NoError(t, g.Play(context.Background(), constants.LabelsMoves), "seed %s", seed)
		got, err := g.LabelsAfterOne()
		require.NoError(t, err)
		require.Equal(t, want, got, "seed %s", seed)
		require.Zero(t, g.Ring().Detached())
	}
}

func TestRandomSeedsAgainstModel(t *testing.T) {
	rnd := rand.New(rand.NewSource(23))
	for trial := 0; trial < 500; trial++ {
		digits := rnd.Perm(9)[:4+rnd.Intn(6)]
		seed := make([]uint32, len(digits))
		for i, d := range digits {
			seed[i] = uint32(d) + 1
		}
		if !slices.Contains(seed, constants.ScoreLabel) {
			seed[rnd.Intn(len(seed))] = constants.ScoreLabel
		}

		g, err := New(seed)
		require.NoError(t, err, "seed %v", seed)
		require.NoError(t, g.Play(context.Background(), constants.LabelsMoves), "seed %v", seed)
		got, err := g.LabelsAfterOne()
		require.NoError(t, err)
		require.Equal(t, playModel(seed, constants.LabelsMoves), got, "seed %v", seed)
	}
}

func TestNoValueLoss(t *testing.T) {
	g := newGame(t, exampleSeed, WithPopulation(50))
	require.NoError(t, g.Play(context.Background(), 500))
	require.NoError(t, g.Ring().Verify())
	require.Zero(t, g.Ring().Detached())
	require.Equal(t, 50, g.Len())
	for v := uint32(1); v <= 50; v++ {
		require.True(t, g.Ring().Contains(v), "label %d lost", v)
	}
}

// -----------------------------------------------------------------------------
// ░░ Play control ░░
// -----------------------------------------------------------------------------

func TestPlayReportsProgress(t *testing.T) {
	var seen []int
	g := newGame(t, exampleSeed, WithProgress(25, func(m int) { seen = append(seen, m) }))
	require.NoError(t, g.Play(context.Background(), 60))
	require.NoError(t, g.Play(context.Background(), 40))
	require.Equal(t, []int{25, 50, 75, 100}, seen)
}

func TestPlayRefusesCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := newGame(t, exampleSeed)
	err := g.Play(ctx, 100)
	require.True(t, errors.Is(err, context.Canceled))
	require.Zero(t, g.Moves())
	require.Equal(t, []uint32{3, 8, 9, 1, 2, 5, 4, 6, 7}, g.Snapshot().Cups)
}

func TestPlayStopsWhenCancelledMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g := newGame(t, exampleSeed, WithProgress(100, func(m int) {
		if m == 100 {
			cancel()
		}
	}))
	err := g.Play(ctx, 2*constants.CancelCheckInterval)
	require.True(t, errors.Is(err, context.Canceled))
	require.Equal(t, constants.CancelCheckInterval-1, g.Moves())
	require.NoError(t, g.Ring().Verify())
}

// -----------------------------------------------------------------------------
// ░░ Scoring ░░
// -----------------------------------------------------------------------------

func TestScoresNeedCupOne(t *testing.T) {
	g := newGame(t, "2345")
	_, err := g.LabelsAfterOne()
	require.ErrorIs(t, err, ErrNoScoreCup)
	_, err = g.StarProduct()
	require.ErrorIs(t, err, ErrNoScoreCup)
	_, err = g.Digest()
	require.ErrorIs(t, err, ErrNoScoreCup)
}

func TestStarProductSmall(t *testing.T) {
	g := newGame(t, exampleSeed)
	p, err := g.StarProduct()
	require.NoError(t, err)
	require.Equal(t, uint64(2*5), p)
}

func TestDigestIgnoresRotation(t *testing.T) {
	a := newGame(t, exampleSeed)
	b := newGame(t, "125467389")
	da, err := a.Digest()
	require.NoError(t, err)
	db, err := b.Digest()
	require.NoError(t, err)
	require.Equal(t, da, db)
	require.Len(t, da, 64)

	require.NoError(t, a.Move())
	moved, err := a.Digest()
	require.NoError(t, err)
	require.NotEqual(t, da, moved)
}

// TestStarProductFullGame plays the full million-cup, ten-million-move game.
func TestStarProductFullGame(t *testing.T) {
	if testing.Short() {
		t.Skip("full simulation skipped in -short mode")
	}
	g := newGame(t, exampleSeed, WithPopulation(constants.StarsPopulation))
	require.Equal(t, constants.StarsPopulation, g.Len())
	require.NoError(t, g.Play(context.Background(), constants.StarsMoves))

	got, err := g.StarProduct()
	require.NoError(t, err)
	require.Equal(t, uint64(149245887792), got)
	require.Zero(t, g.Ring().Detached())
}

// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: constants.go — Game Tunables & Defaults
//
// Purpose:
//   - Defines the rules of the cup game and the defaults for both puzzle parts.
//   - Sets cadence for progress reporting and cancellation checks.
//
// Notes:
//   - Part one plays a short game on the seed cups only.
//   - Part two extends the seed to one million cups and plays ten million moves.
//
// ⚠️ No runtime logic here — all values must be compile-time resolvable
// ─────────────────────────────────────────────────────────────────────────────

package constants

// ───────────────────────────── Game Rules ──────────────────────────────────

const (
	// PickupCount is how many cups the crab lifts clockwise of the current cup each move.
	PickupCount = 3

	// MinCups is the smallest ring a move can be played on: the current cup plus the pickup.
	MinCups = PickupCount + 1

	// ScoreLabel is the cup that both scores are read relative to.
	ScoreLabel = 1
)

// ─────────────────────────── Part Defaults ─────────────────────────────────

const (
	// LabelsMoves is the move count for the "labels after cup 1" score.
	LabelsMoves = 100

	// StarsPopulation is the total cup count for the "stars" score.
	// The seed is extended with consecutive labels until the ring holds this many cups.
	StarsPopulation = 1_000_000

	// StarsMoves is the move count for the "stars" score.
	StarsMoves = 10_000_000
)

// ───────────────────────── Loop Cadence ────────────────────────────────────

const (
	// ProgressInterval is the default number of moves between progress reports.
	ProgressInterval = 250_000

	// CancelCheckInterval is how often Play polls its context.
	// Power of two so the check compiles to a mask.
	CancelCheckInterval = 1 << 14

	// TraceRingLimit is the largest ring whose mutations are logged in verbose mode.
	// Bigger rings still get per-move traces, just not per-mutation ones.
	TraceRingLimit = 64
)

// ───────────────────────── Storage ─────────────────────────────────────────

const (
	// DefaultDBPath is the SQLite file that run history is written to.
	DefaultDBPath = "crabring.db"

	// HistoryLimit is the default number of runs listed by the history command.
	HistoryLimit = 20
)

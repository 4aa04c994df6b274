// ════════════════════════════════════════════════════════════════════════════════════════════════
// Crab Cups Ring Simulator - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Crab Cups Ring Simulator
// Component: Command line & run orchestration
//
// Description:
//   Loads configuration, plays the requested game on an indexed ring, prints the score and
//   records the run in the SQLite history.
//
// Architecture:
//   - Phase 1: configuration (defaults → YAML → environment → flags) and logger setup
//   - Phase 2: ring construction and simulation under a signal-aware context
//   - Phase 3: scoring, digest, output and persistence
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"crabring/config"
	"crabring/constants"
	"crabring/crabcups"
	"crabring/debug"
	"crabring/report"
	"crabring/ring"
	"crabring/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp().RunContext(ctx, os.Args)
	stop()
	if err != nil {
		debug.DropError("FATAL", err)
		fmt.Fprintln(os.Stderr, "crabring:", err)
		os.Exit(1)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// COMMAND LINE
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func newApp() *cli.App {
	return &cli.App{
		Name:  "crabring",
		Usage: "play the crab's cup game on an indexed circular ring",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file"},
			&cli.StringFlag{Name: "db", Usage: "SQLite run history file"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "trace every move"},
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
		},
		Commands: []*cli.Command{{
			Name:      "labels",
			Usage:     "labels clockwise of cup 1 after a short game",
			ArgsUsage: "[SEED]",
			Flags:     gameFlags(),
			Action: func(c *cli.Context) error {
				return play(c, report.KindLabels)
			},
		}, {
			Name:      "stars",
			Usage:     "product of the two cups clockwise of cup 1 after the long game",
			ArgsUsage: "[SEED]",
			Flags:     gameFlags(),
			Action: func(c *cli.Context) error {
				return play(c, report.KindStars)
			},
		}, {
			Name:  "history",
			Usage: "list recorded runs, newest first",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "limit", Value: constants.HistoryLimit, Usage: "maximum runs to list"},
			},
			Action: history,
		}},
		After: func(*cli.Context) error {
			_ = debug.Logger().Sync()
			return nil
		},
	}
}

func gameFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "population", Aliases: []string{"p"}, Usage: "total cups (default depends on the command)"},
		&cli.IntFlag{Name: "moves", Aliases: []string{"m"}, Usage: "moves to play (default depends on the command)"},
		&cli.IntFlag{Name: "progress", Usage: "log progress every N moves, 0 disables"},
	}
}

// loadConfig layers flags over the file and environment settings and installs
// the logger the result asks for.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("verbose") {
		cfg.Verbose = c.Bool("verbose")
	}
	if c.IsSet("json") {
		cfg.JSON = c.Bool("json")
	}
	if c.IsSet("population") {
		cfg.Population = c.Int("population")
	}
	if c.IsSet("moves") {
		cfg.Moves = c.Int("moves")
	}
	if c.IsSet("progress") {
		cfg.ProgressEvery = c.Int("progress")
	}
	if c.Args().Present() {
		cfg.Seed = c.Args().First()
	}

	l, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	debug.SetLogger(l)
	return cfg, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		zc.Sampling = nil
	}
	return zc.Build()
}

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// GAME COMMANDS
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func play(c *cli.Context, kind report.Kind) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	seed, err := crabcups.ParseSeed(cfg.Seed)
	if err != nil {
		return err
	}

	population, moves := cfg.PopulationOr(len(seed)), cfg.MovesOr(constants.LabelsMoves)
	if kind == report.KindStars {
		population, moves = cfg.PopulationOr(constants.StarsPopulation), cfg.MovesOr(constants.StarsMoves)
	}

	log := debug.Logger()
	opts := []crabcups.Option{
		crabcups.WithPopulation(population),
		crabcups.WithProgress(cfg.ProgressEvery, func(m int) {
			debug.DropMessage("PROGRESS", "move "+strconv.Itoa(m)+"/"+strconv.Itoa(moves))
		}),
	}
	if cfg.Verbose {
		opts = append(opts, crabcups.WithTracer(func(t crabcups.Trace) {
			log.Debug("move",
				zap.Int("move", t.Move),
				zap.Uint32("current", t.Current),
				zap.Uint32s("pickedUp", t.PickedUp[:]),
				zap.Uint32("destination", t.Destination),
			)
		}))
		if population <= constants.TraceRingLimit {
			opts = append(opts, crabcups.WithRingOptions(ring.WithObserver(debug.RingObserver(log))))
		}
	}

	debug.DropMessage("BUILD", fmt.Sprintf("%s game: %d cups, %d moves", kind, population, moves))
	g, err := crabcups.New(seed, opts...)
	if err != nil {
		return err
	}
	if cfg.Verbose && g.Len() <= constants.TraceRingLimit {
		log.Debug("start", zap.Uint32s("cups", g.Snapshot().Cups))
	}

	start := time.Now()
	if err := g.Play(c.Context, moves); err != nil {
		return err
	}
	elapsed := time.Since(start)
	debug.DropMessage("DONE", fmt.Sprintf("%d moves in %s", g.Moves(), elapsed))

	run := &report.Run{
		Kind:       kind,
		Seed:       cfg.Seed,
		Population: g.Len(),
		Moves:      g.Moves(),
		Elapsed:    elapsed,
	}
	if kind == report.KindStars {
		product, err := g.StarProduct()
		if err != nil {
			return err
		}
		run.Answer = strconv.FormatUint(product, 10)
	} else if run.Answer, err = g.LabelsAfterOne(); err != nil {
		return err
	}
	if run.Digest, err = g.Digest(); err != nil {
		return err
	}

	st, err := store.Open(c.Context, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()
	if err := st.Save(c.Context, run); err != nil {
		return err
	}

	return emit(c, cfg, run)
}

func history(c *cli.Context) (err error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	st, err := store.Open(c.Context, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	runs, err := st.Recent(c.Context, c.Int("limit"))
	if err != nil {
		return err
	}
	for _, r := range runs {
		if err := emit(c, cfg, r); err != nil {
			return err
		}
	}
	return nil
}

func emit(c *cli.Context, cfg *config.Config, r *report.Run) error {
	if cfg.JSON {
		return report.Write(c.App.Writer, r)
	}
	_, err := fmt.Fprintln(c.App.Writer, report.Text(r))
	return err
}

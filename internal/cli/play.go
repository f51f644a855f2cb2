package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
	"github.com/ez2torta/SConE/internal/sink"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	SourceOptions
	Step     bool
	Mirror   bool
	FPS      int
	Start    int
	Database string
}

// PlayResult is the outcome of a playback.
type PlayResult struct {
	Sequence string     `json:"sequence"`
	FPS      int        `json:"fps"`
	Ticks    int        `json:"ticks"`
	Total    int        `json:"total_frames"`
	Quit     bool       `json:"quit,omitempty"`
	Session  string     `json:"session,omitempty"`
	Frames   [][]string `json:"frames,omitempty"`
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <sequence>",
		Short: "Play a sequence tick by tick",
		Long: `Play a sequence into the frame printer at a fixed tick rate.

The sequence is a sequence document (.json/.yaml), a motion of the catalog
given with --catalog or SCONE_CATALOG, or a builtin (see "scone list").
Every button is released when playback ends, including on Ctrl-C.

With --step, each tick waits for Enter; "q" quits. With --db, every
emitted tick is journaled so the session can be replayed later.

Examples:
  scone play hadouken
  scone play -c motions.yaml special_motions.QCF --param button=C --mirror
  scone play combo.json --step
  scone play -c motions.yaml combos.bnb --db scone.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Catalog, "catalog", "c", "", "motion catalog (default $SCONE_CATALOG)")
	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "placeholder binding key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Step, "step", false, "wait for Enter after every tick")
	cmd.Flags().BoolVar(&opts.Mirror, "mirror", rootOpts.Config.Mirror, "swap LEFT and RIGHT (player 2 side)")
	cmd.Flags().IntVar(&opts.FPS, "fps", rootOpts.Config.FPS, "tick rate")
	cmd.Flags().IntVar(&opts.Start, "start", 0, "first tick to play")
	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DBPath, "journal the session to this SQLite database")

	return cmd
}

func runPlay(opts *PlayOptions, arg string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger()

	loaded, err := loadSource(opts.RootOptions, opts.SourceOptions, arg)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	seq := loaded.Sequence
	fps := tickRate(cmd, opts.FPS, loaded)
	if fps < 1 {
		fps = player.DefaultFPS
	}

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	// Text mode prints frames as they happen; JSON mode collects them.
	rec := &sink.Recorder{}
	sinks := sink.Tee{sink.NewLog(logger)}
	if formatter.JSON() {
		sinks = append(sinks, rec)
	} else {
		sinks = append(sinks, sink.NewWriter(formatter.Writer))
	}

	var journal *sink.Journal
	if opts.Database != "" {
		st, err := openStore(opts.RootOptions, opts.Database)
		if err != nil {
			return formatter.Fail(ExitCommandError, err)
		}
		defer closeStore(opts.RootOptions, st)

		journal, err = sink.NewJournal(ctx, st, seq, fps, opts.Mirror)
		if err != nil {
			return formatter.Fail(ExitCommandError, fmt.Errorf("%w: %w", errStoreFailed, err))
		}
		sinks = append(sinks, journal)
	}

	p := player.New(sinks,
		player.WithFPS(fps),
		player.WithMirror(opts.Mirror),
		player.StartAt(opts.Start),
		player.WithLogger(logger),
	)

	logger.Info("playing", "sequence", seq.Name(), "frames", seq.TotalFrames(), "fps", p.FPS(), "mirror", opts.Mirror)
	var report player.Report
	if opts.Step {
		report, err = p.Step(ctx, seq, player.NewLineStepper(cmd.InOrStdin(), nil))
	} else {
		report, err = p.Play(ctx, seq)
	}

	result := PlayResult{
		Sequence: seq.Name(),
		FPS:      p.FPS(),
		Ticks:    report.Ticks,
		Total:    report.Total,
		Quit:     report.Quit,
	}
	if journal != nil {
		result.Session = journal.SessionID()
		if closeErr := journal.Close(report, err); closeErr != nil {
			logger.Error("journal not closed", "session", result.Session, "error", closeErr)
		}
	}
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}

	if formatter.JSON() {
		for _, set := range rec.Sets() {
			result.Frames = append(result.Frames, set.Names())
		}
	}
	return formatter.Result(result, func(w io.Writer) { printPlayResult(w, result) })
}

func printPlayResult(w io.Writer, r PlayResult) {
	if r.Quit {
		fmt.Fprintf(w, "■ Stopped %s after %d/%d ticks\n", r.Sequence, r.Ticks, r.Total)
	} else {
		fmt.Fprintf(w, "✓ Played %s: %d ticks\n", r.Sequence, r.Ticks)
	}
	if r.Session != "" {
		fmt.Fprintf(w, "Session: %s\n", r.Session)
	}
}

// signalContext derives a context from the command that is cancelled on
// SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command, logger *slog.Logger) (context.Context, context.CancelFunc) {
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan) // Prevent signal handler leak
		select {
		case sig := <-sigChan:
			logger.Info("received signal, releasing buttons", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// playSequence is shared by commands that play a sequence they built
// themselves.
func playSequence(ctx context.Context, opts *RootOptions, w io.Writer, seq sequence.Sequence, fps int, mirror bool) (player.Report, error) {
	p := player.New(sink.Tee{sink.NewLog(opts.Logger()), sink.NewWriter(w)},
		player.WithFPS(fps),
		player.WithMirror(mirror),
		player.WithLogger(opts.Logger()),
	)
	return p.Play(ctx, seq)
}

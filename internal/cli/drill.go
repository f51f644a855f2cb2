package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ez2torta/SConE/internal/catalog"
	"github.com/ez2torta/SConE/internal/drill"
	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sink"
)

// DrillOptions holds flags for the drill command.
type DrillOptions struct {
	*RootOptions
	Params []string
	Repeat int
	Pause  time.Duration
	Mirror bool
	FPS    int
}

// DrillResult is the JSON payload of the drill command.
type DrillResult struct {
	Sequence  string `json:"sequence"`
	FPS       int    `json:"fps"`
	Passes    int    `json:"passes"`
	Cancelled bool   `json:"cancelled,omitempty"`
}

// NewDrillCommand creates the drill command.
func NewDrillCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DrillOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "drill [catalog] <name>",
		Short: "Repeat a training drill",
		Long: `Play a motion repeatedly. Bare names are looked up in training_drills
first, then in every other category.

--repeat -1 loops until Ctrl-C, pausing between passes. A pass that has
started always finishes before the drill stops.

Examples:
  scone drill motions.yaml hit_confirm --repeat 10
  scone drill motions.yaml hit_confirm --repeat -1 --pause 500ms`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, name := "", args[0]
			if len(args) == 2 {
				path, name = args[0], args[1]
			}
			return runDrill(opts, path, name, cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "placeholder binding key=value (repeatable)")
	cmd.Flags().IntVarP(&opts.Repeat, "repeat", "n", 1, "passes to play, -1 for unbounded")
	cmd.Flags().DurationVar(&opts.Pause, "pause", rootOpts.Config.DrillPause, "pause between unbounded passes")
	cmd.Flags().BoolVar(&opts.Mirror, "mirror", rootOpts.Config.Mirror, "swap LEFT and RIGHT (player 2 side)")
	cmd.Flags().IntVar(&opts.FPS, "fps", rootOpts.Config.FPS, "tick rate")

	return cmd
}

func runDrill(opts *DrillOptions, path, name string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	logger := opts.Logger()

	src := SourceOptions{Catalog: path, Params: opts.Params, Prefer: catalog.TrainingDrills}
	loaded, err := loadSource(opts.RootOptions, src, name)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	seq := loaded.Sequence

	ctx, cancel := signalContext(cmd, logger)
	defer cancel()

	var out io.Writer = formatter.Writer
	if formatter.JSON() {
		out = io.Discard
	}
	p := player.New(sink.Tee{sink.NewLog(logger), sink.NewWriter(out)},
		player.WithFPS(tickRate(cmd, opts.FPS, loaded)),
		player.WithMirror(opts.Mirror),
		player.WithLogger(logger),
	)
	runner := drill.New(p, drill.WithPause(opts.Pause), drill.WithLogger(logger))

	res, err := runner.Run(ctx, seq, opts.Repeat)
	if err != nil {
		code := ExitFailure
		if errorCode(err) == ErrCodeInvalidRepeat {
			code = ExitCommandError
		}
		return formatter.Fail(code, err)
	}

	result := DrillResult{Sequence: seq.Name(), FPS: p.FPS(), Passes: res.Passes, Cancelled: res.Cancelled}
	return formatter.Result(result, func(w io.Writer) {
		if result.Cancelled {
			fmt.Fprintf(w, "■ Drill %s stopped after %d pass(es)\n", result.Sequence, result.Passes)
			return
		}
		fmt.Fprintf(w, "✓ Drill %s: %d pass(es)\n", result.Sequence, result.Passes)
	})
}

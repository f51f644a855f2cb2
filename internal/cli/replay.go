package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ez2torta/SConE/internal/codec"
	"github.com/ez2torta/SConE/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Sequence string // list filter
	Play     bool
}

// ReplayResult holds one journaled session and what it emitted.
type ReplayResult struct {
	Session     store.Session  `json:"session"`
	Sequence    codec.Document `json:"sequence"`
	Fingerprint string         `json:"fingerprint"`
	Matches     bool           `json:"matches_original"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay [session-id]",
		Short: "Inspect or replay journaled sessions",
		Long: `Rebuild the sequence a journaled session actually emitted.

Without a session ID, lists sessions newest first. With one, prints the
rebuilt sequence document and whether it still matches the fingerprint of
the sequence that was played (it will not after a mirrored or partial run).

Exit codes:
  0 - Success
  2 - Command error (database not found, unknown session, etc.)

Examples:
  scone replay --db scone.db
  scone replay --db scone.db --sequence Hadouken
  scone replay 0190a2c4-... --db scone.db --play`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runReplayList(opts, cmd)
			}
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DBPath, "path to SQLite database")
	cmd.Flags().StringVar(&opts.Sequence, "sequence", "", "only list sessions of this sequence")
	cmd.Flags().BoolVar(&opts.Play, "play", false, "play the rebuilt sequence")

	return cmd
}

func runReplayList(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	st, err := openStore(opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	defer closeStore(opts.RootOptions, st)

	sessions, err := st.ListSessions(cmd.Context(), opts.Sequence)
	if err != nil {
		return formatter.Fail(ExitCommandError, fmt.Errorf("%w: %w", errStoreFailed, err))
	}
	if sessions == nil {
		sessions = []store.Session{}
	}
	return formatter.Result(sessions, func(w io.Writer) {
		if len(sessions) == 0 {
			fmt.Fprintln(w, "No sessions")
			return
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, s := range sessions {
			outcome := s.Outcome
			if outcome == "" {
				outcome = "open"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d ticks\t%s\n", s.ID, s.SequenceName, outcome, s.Emissions, s.StartedAt)
		}
		tw.Flush()
	})
}

func runReplay(opts *ReplayOptions, id string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	st, err := openStore(opts.RootOptions, opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	defer closeStore(opts.RootOptions, st)

	sess, err := st.Session(ctx, id)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	seq, err := st.SessionSequence(ctx, id)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	fp, err := store.PlaybackFingerprint(seq)
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}

	if opts.Play && !formatter.JSON() {
		playCtx, cancel := signalContext(cmd, opts.Logger())
		defer cancel()
		// The journal holds what was emitted, mirroring included.
		if _, err := playSequence(playCtx, opts.RootOptions, formatter.Writer, seq, sess.FPS, false); err != nil {
			return formatter.Fail(ExitFailure, err)
		}
		return nil
	}

	result := ReplayResult{
		Session:     sess,
		Sequence:    codec.Encode(seq),
		Fingerprint: fp,
		Matches:     fp == sess.Fingerprint,
	}
	return formatter.Result(result, func(w io.Writer) {
		outcome := sess.Outcome
		if outcome == "" {
			outcome = "open"
		}
		fmt.Fprintf(w, "Session %s: %s (%s, %d fps", sess.ID, sess.SequenceName, outcome, sess.FPS)
		if sess.Mirror {
			fmt.Fprint(w, ", mirrored")
		}
		fmt.Fprintf(w, ", %d ticks)\n", seq.TotalFrames())
		if result.Matches {
			fmt.Fprintln(w, "✓ Emissions match the played sequence")
		} else {
			fmt.Fprintln(w, "✗ Emissions differ from the played sequence")
		}
		if data, err := codec.Marshal(seq); err == nil {
			w.Write(data)
		}
	})
}

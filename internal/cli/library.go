package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ez2torta/SConE/internal/codec"
	"github.com/ez2torta/SConE/internal/store"
)

// LibraryOptions holds flags shared by the library subcommands.
type LibraryOptions struct {
	*RootOptions
	Database string
}

// NewLibraryCommand creates the library command and its subcommands.
func NewLibraryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LibraryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Manage saved sequences",
		Long: `Save resolved sequences to a SQLite library and load them back by name.

Examples:
  scone library save -c motions.yaml combos.bnb --db scone.db
  scone library list --db scone.db
  scone library show "BnB" --db scone.db`,
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", rootOpts.Config.DBPath, "path to SQLite database")

	cmd.AddCommand(newLibrarySaveCommand(opts))
	cmd.AddCommand(newLibraryListCommand(opts))
	cmd.AddCommand(newLibraryShowCommand(opts))
	cmd.AddCommand(newLibraryDeleteCommand(opts))

	return cmd
}

// SavedSequence is the JSON payload of library save.
type SavedSequence struct {
	Name        string `json:"name"`
	Fingerprint string `json:"fingerprint"`
	TotalFrames int    `json:"total_frames"`
}

func newLibrarySaveCommand(opts *LibraryOptions) *cobra.Command {
	var (
		src  SourceOptions
		name string
	)
	cmd := &cobra.Command{
		Use:           "save <sequence>",
		Short:         "Save a sequence file, catalog motion or builtin",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			seq, err := loadSequence(opts.RootOptions, src, args[0])
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}
			if name != "" {
				seq = seq.Renamed(name, seq.Description())
			}

			st, err := openStore(opts.RootOptions, opts.Database)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}
			defer closeStore(opts.RootOptions, st)

			fp, err := st.SaveSequence(cmd.Context(), seq)
			if err != nil {
				return formatter.Fail(ExitCommandError, fmt.Errorf("%w: %w", errStoreFailed, err))
			}
			saved := SavedSequence{Name: seq.Name(), Fingerprint: fp, TotalFrames: seq.TotalFrames()}
			return formatter.Result(saved, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Saved %s (%d frames, %s)\n", saved.Name, saved.TotalFrames, saved.Fingerprint[:12])
			})
		},
	}
	cmd.Flags().StringVarP(&src.Catalog, "catalog", "c", "", "motion catalog (default $SCONE_CATALOG)")
	cmd.Flags().StringArrayVarP(&src.Params, "param", "p", nil, "placeholder binding key=value (repeatable)")
	cmd.Flags().StringVar(&name, "name", "", "save under this name instead")
	return cmd
}

func newLibraryListCommand(opts *LibraryOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List saved sequences",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			st, err := openStore(opts.RootOptions, opts.Database)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}
			defer closeStore(opts.RootOptions, st)

			infos, err := st.ListSequences(cmd.Context())
			if err != nil {
				return formatter.Fail(ExitCommandError, fmt.Errorf("%w: %w", errStoreFailed, err))
			}
			if infos == nil {
				infos = []store.SequenceInfo{}
			}
			return formatter.Result(infos, func(w io.Writer) {
				if len(infos) == 0 {
					fmt.Fprintln(w, "No saved sequences")
					return
				}
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				for _, info := range infos {
					fmt.Fprintf(tw, "%s\t%df\t%s\t%s\n", info.Name, info.TotalFrames, info.Fingerprint[:12], info.SavedAt)
				}
				tw.Flush()
			})
		},
	}
}

func newLibraryShowCommand(opts *LibraryOptions) *cobra.Command {
	var play bool
	cmd := &cobra.Command{
		Use:           "show <name>",
		Short:         "Print or play a saved sequence",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			st, err := openStore(opts.RootOptions, opts.Database)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}
			defer closeStore(opts.RootOptions, st)

			seq, err := st.LoadSequence(cmd.Context(), args[0])
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}

			if play && !formatter.JSON() {
				ctx, cancel := signalContext(cmd, opts.Logger())
				defer cancel()
				if _, err := playSequence(ctx, opts.RootOptions, formatter.Writer, seq, opts.Config.FPS, opts.Config.Mirror); err != nil {
					return formatter.Fail(ExitFailure, err)
				}
				return nil
			}
			if formatter.JSON() {
				return formatter.Success(codec.Encode(seq))
			}
			data, err := codec.Marshal(seq)
			if err != nil {
				return formatter.Fail(ExitFailure, err)
			}
			_, err = formatter.Writer.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&play, "play", false, "play the sequence instead of printing it")
	return cmd
}

func newLibraryDeleteCommand(opts *LibraryOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <name>",
		Short:         "Remove a saved sequence",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			st, err := openStore(opts.RootOptions, opts.Database)
			if err != nil {
				return formatter.Fail(ExitCommandError, err)
			}
			defer closeStore(opts.RootOptions, st)

			if err := st.DeleteSequence(cmd.Context(), args[0]); err != nil {
				return formatter.Fail(ExitCommandError, err)
			}
			return formatter.Result(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "✓ Deleted %s\n", args[0])
			})
		},
	}
}

package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ez2torta/SConE/internal/catalog"
	"github.com/ez2torta/SConE/internal/codec"
	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
)

// CompactOptions holds flags for the compact command.
type CompactOptions struct {
	*RootOptions
	Name     string
	Category string
}

// MotionResult is the JSON payload of the compact and template commands.
type MotionResult struct {
	Ref      string         `json:"ref"`
	Compact  string         `json:"compact"`
	Snippet  string         `json:"snippet"` // catalog YAML
	Sequence codec.Document `json:"sequence"`
}

// NewCompactCommand creates the compact command.
func NewCompactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compact <notation>",
		Short: "Turn compact notation into a catalog motion",
		Long: `Convert compact notation such as "[2×2][3][6+A]" into a catalog
motion, ready to paste into a catalog file. Each [input×N] group holds its
input for N ticks; "x" and "*" work in place of "×".

Examples:
  scone compact "[2×2][3][6+A]" --name QCF_A --category special_motions`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompact(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Name, "name", "custom", "motion name")
	cmd.Flags().StringVar(&opts.Category, "category", catalog.Combos, "motion category")

	return cmd
}

func runCompact(opts *CompactOptions, notation string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	m, err := catalog.CompactMotion(opts.Name, notation)
	if err != nil {
		return formatter.Fail(ExitCommandError, fmt.Errorf("%w: %w", errBadArgument, err))
	}
	m.Key = catalog.Key{Category: opts.Category, Name: opts.Name}
	return outputMotion(opts.RootOptions, formatter, m)
}

// TemplateOptions holds flags for the template command.
type TemplateOptions struct {
	*RootOptions
	Category   string
	Difficulty int
}

// NewTemplateCommand creates the template command.
func NewTemplateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TemplateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "template <name>",
		Short:         "Print a starter motion",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			m := catalog.Template(args[0], opts.Category, opts.Difficulty)
			return outputMotion(opts.RootOptions, opts.formatter(cmd), m)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", catalog.BasicAttacks, "motion category")
	cmd.Flags().IntVar(&opts.Difficulty, "difficulty", 1, "difficulty 1-5")

	return cmd
}

// outputMotion prints m as a catalog snippet. The motion is also resolved
// through a one-motion catalog, so notation problems surface immediately.
func outputMotion(opts *RootOptions, formatter *OutputFormatter, m catalog.Motion) error {
	if m.Key.Category == "" || m.Key.Name == "" {
		return formatter.Fail(ExitCommandError, fmt.Errorf("%w: motion needs a category and a name", errBadArgument))
	}
	snippet, err := yaml.Marshal(map[string]map[string]catalog.Motion{
		m.Key.Category: {m.Key.Name: m},
	})
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}
	seq, err := resolveStandalone(opts, m)
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}

	result := MotionResult{
		Ref:      m.Key.String(),
		Compact:  catalog.FormatCompact(m.Frames),
		Snippet:  string(snippet),
		Sequence: codec.Encode(seq),
	}
	return formatter.Result(result, func(w io.Writer) {
		fmt.Fprintf(w, "# %s  %d frames\n", result.Compact, seq.TotalFrames())
		io.WriteString(w, result.Snippet)
	})
}

func resolveStandalone(opts *RootOptions, m catalog.Motion) (sequence.Sequence, error) {
	data, err := yaml.Marshal(map[string]any{
		"metadata":     catalog.Metadata{Game: "scone", FPS: player.DefaultFPS, Version: "1"},
		m.Key.Category: map[string]catalog.Motion{m.Key.Name: m},
	})
	if err != nil {
		return sequence.Sequence{}, err
	}
	c, _, err := catalog.Parse(data, catalog.FormatYAML, catalog.WithLogger(opts.Logger()))
	if err != nil {
		return sequence.Sequence{}, err
	}
	return c.Resolve(m.Key.Category, m.Key.Name, nil)
}

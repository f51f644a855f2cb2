package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ez2torta/SConE/internal/catalog"
	"github.com/ez2torta/SConE/internal/sequence"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Category      string
	MaxDifficulty int
	Stats         bool
}

// ListEntry is one row of list output.
type ListEntry struct {
	Ref         string `json:"ref"`
	Name        string `json:"name"`
	Difficulty  int    `json:"difficulty,omitempty"`
	TotalFrames int    `json:"total_frames,omitempty"`
}

// ListResult is the JSON payload of the list command.
type ListResult struct {
	Entries []ListEntry    `json:"entries"`
	Stats   *catalog.Stats `json:"stats,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list [catalog]",
		Short: "List catalog motions or builtin sequences",
		Long: `List the motions of a catalog, known categories first.

Without a catalog (and without SCONE_CATALOG) the builtin sequences are
listed instead.

Examples:
  scone list motions.yaml
  scone list motions.yaml --category special_motions --max-difficulty 2
  scone list motions.yaml --stats`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, catalogPath(rootOpts, args), cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "only list this category")
	cmd.Flags().IntVar(&opts.MaxDifficulty, "max-difficulty", 0, "hide motions harder than this (1-5)")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "also print per-category counts")

	return cmd
}

func runList(opts *ListOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	if path == "" {
		return listBuiltins(formatter)
	}

	c, err := loadCatalog(opts.RootOptions, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}

	var result ListResult
	for _, e := range c.List(catalog.Filter{Category: opts.Category, MaxDifficulty: opts.MaxDifficulty}) {
		result.Entries = append(result.Entries, ListEntry{
			Ref:         e.Key.String(),
			Name:        e.Name,
			Difficulty:  e.Difficulty,
			TotalFrames: e.TotalFrames,
		})
	}
	if opts.Stats {
		stats := c.Stats()
		result.Stats = &stats
	}

	return formatter.Result(result, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, e := range result.Entries {
			frames := "-"
			if e.TotalFrames > 0 {
				frames = fmt.Sprintf("%df", e.TotalFrames)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Ref, e.Name, stars(e.Difficulty), frames)
		}
		tw.Flush()
		if result.Stats != nil {
			printStats(w, *result.Stats, c.Categories())
		}
	})
}

func listBuiltins(formatter *OutputFormatter) error {
	var entries []ListEntry
	for _, key := range sequence.BuiltinKeys() {
		seq, _ := sequence.Builtin(key)
		entries = append(entries, ListEntry{Ref: key, Name: seq.Name(), TotalFrames: seq.TotalFrames()})
	}
	return formatter.Result(ListResult{Entries: entries}, func(w io.Writer) {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%df\n", e.Ref, e.Name, e.TotalFrames)
		}
		tw.Flush()
	})
}

func printStats(w io.Writer, s catalog.Stats, extra []string) {
	fmt.Fprintf(w, "\n%d motions\n", s.Total)
	seen := make(map[string]bool)
	for _, cat := range append(append([]string(nil), catalog.KnownCategories...), extra...) {
		if seen[cat] {
			continue
		}
		seen[cat] = true
		fmt.Fprintf(w, "  %-20s %d\n", cat, s.ByCategory[cat])
	}
}

// stars renders a difficulty as ★★☆☆☆.
func stars(level int) string {
	level = min(max(level, 0), 5)
	out := make([]rune, 5)
	for i := range out {
		if i < level {
			out[i] = '★'
		} else {
			out[i] = '☆'
		}
	}
	return string(out)
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ez2torta/SConE/internal/catalog"
	"github.com/ez2torta/SConE/internal/codec"
)

// ResolveOptions holds flags for the resolve command.
type ResolveOptions struct {
	*RootOptions
	Params    []string
	Canonical bool
	Output    string
}

// ResolveResult is the JSON payload of the resolve command.
type ResolveResult struct {
	Sequence    codec.Document `json:"sequence"`
	Fingerprint string         `json:"fingerprint"`
	Warnings    []string       `json:"warnings,omitempty"`
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResolveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "resolve <catalog> <motion>",
		Short: "Expand a catalog motion into a sequence document",
		Long: `Resolve a motion (category.name, or a bare name found by search) into
the frame-exact sequence document scone plays, expanding references and
substituting {placeholders}.

Examples:
  scone resolve motions.yaml special_motions.QCF --param button=C
  scone resolve motions.yaml QCF --canonical
  scone resolve motions.yaml combos.bnb -o bnb.json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "placeholder binding key=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Canonical, "canonical", false, "print canonical JSON")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the document to a file instead")

	return cmd
}

func runResolve(opts *ResolveOptions, path, ref string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	c, err := loadCatalog(opts.RootOptions, path)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	params, err := parseParams(opts.Params)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}
	key, err := motionKey(c, ref)
	if err != nil {
		return formatter.Fail(ExitCommandError, err)
	}

	res, err := c.ResolveDetailed(key, params)
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}
	fp, err := codec.Fingerprint(res.Sequence)
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}

	if opts.Output != "" {
		if err := codec.WriteFile(opts.Output, res.Sequence); err != nil {
			_ = formatter.Error(ErrCodeWriteFailed, err.Error(), nil)
			return WrapExitError(ExitCommandError, ErrCodeWriteFailed, err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
	}

	if formatter.JSON() {
		return formatter.Success(ResolveResult{
			Sequence:    codec.Encode(res.Sequence),
			Fingerprint: fp,
			Warnings:    res.Warnings,
		})
	}

	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ %s → %s (%d frames)\n", key, opts.Output, res.Sequence.TotalFrames())
		return nil
	}

	var data []byte
	if opts.Canonical {
		data, err = codec.MarshalCanonical(codec.Encode(res.Sequence))
		data = append(data, '\n')
	} else {
		data, err = codec.Marshal(res.Sequence)
	}
	if err != nil {
		return formatter.Fail(ExitFailure, err)
	}
	_, err = formatter.Writer.Write(data)
	return err
}

// motionKey accepts "category.name" or a bare name found by search.
func motionKey(c *catalog.Catalog, ref string) (catalog.Key, error) {
	if strings.Contains(ref, ".") {
		return catalog.ParseRef(ref)
	}
	m, err := c.Find(ref)
	if err != nil {
		return catalog.Key{}, err
	}
	return m.Key, nil
}

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ez2torta/SConE/internal/catalog"
	"github.com/ez2torta/SConE/internal/codec"
	"github.com/ez2torta/SConE/internal/drill"
	"github.com/ez2torta/SConE/internal/player"
	"github.com/ez2torta/SConE/internal/sequence"
	"github.com/ez2torta/SConE/internal/store"
)

// Error codes for CLI output.
const (
	// Input errors
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // Catalog or sequence document could not be parsed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeBadArgument = "E008" // Malformed flag or argument

	// Resolution errors
	ErrCodeMotionNotFound   = "E301" // Motion or reference target missing
	ErrCodeReferenceCycle   = "E302" // Reference chain re-enters a motion
	ErrCodeUnresolvedParam  = "E303" // Placeholder without a value
	ErrCodeInvalidHold      = "E304" // Hold or wait is not a tick count
	ErrCodeInvalidStep      = "E305" // Step is neither input, wait nor ref
	ErrCodeInvalidFrame     = "E306" // Frame event out of range
	ErrCodeUnknownButton    = "E307" // Button name outside the enumeration
	ErrCodeSequenceNotFound = "E308" // Not a file, catalog motion or builtin

	// Playback and storage errors
	ErrCodeSinkFailed    = "E310" // Sink rejected an emission
	ErrCodeInvalidRepeat = "E311" // Drill repeat count out of range
	ErrCodeStoreFailed   = "E320" // Database error
	ErrCodeStoreMissing  = "E321" // Saved sequence or session not found

	// Conformance errors
	ErrCodeTestFailed = "E330" // One or more scenarios failed
)

var (
	// errSequenceNotFound is returned when a play source names nothing known.
	errSequenceNotFound = errors.New("not a sequence file, catalog motion or builtin")
	errBadArgument      = errors.New("bad argument")
	errStoreFailed      = errors.New("store error")
)

// errorCode maps an error to its CLI code.
func errorCode(err error) string {
	var (
		notFound *catalog.MotionNotFoundError
		cycle    *catalog.ReferenceCycleError
		param    *catalog.UnresolvedPlaceholderError
		hold     *catalog.InvalidHoldError
		step     *catalog.InvalidStepError
		frame    *sequence.InvalidFrameError
		button   *codec.UnknownButtonError
		load     *catalog.LoadError
		sinkErr  *player.SinkError
	)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	case errors.As(err, &notFound):
		return ErrCodeMotionNotFound
	case errors.As(err, &cycle):
		return ErrCodeReferenceCycle
	case errors.As(err, &param):
		return ErrCodeUnresolvedParam
	case errors.As(err, &hold):
		return ErrCodeInvalidHold
	case errors.As(err, &step):
		return ErrCodeInvalidStep
	case errors.As(err, &frame):
		return ErrCodeInvalidFrame
	case errors.As(err, &button):
		return ErrCodeUnknownButton
	case errors.Is(err, errBadArgument):
		return ErrCodeBadArgument
	case errors.Is(err, errSequenceNotFound):
		return ErrCodeSequenceNotFound
	case errors.As(err, &sinkErr):
		return ErrCodeSinkFailed
	case errors.Is(err, drill.ErrInvalidRepeatCount):
		return ErrCodeInvalidRepeat
	case errors.Is(err, store.ErrNotFound):
		return ErrCodeStoreMissing
	case errors.Is(err, errStoreFailed):
		return ErrCodeStoreFailed
	case errors.As(err, &load), codec.IsMalformed(err):
		return ErrCodeLoadFailed
	default:
		return ErrCodeGeneric
	}
}

// loadCatalog reads a catalog and logs notation warnings with opts' logger.
func loadCatalog(opts *RootOptions, path string) (*catalog.Catalog, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no catalog given (pass a path or set SCONE_CATALOG)", errBadArgument)
	}
	c, _, err := catalog.Load(path, catalog.WithLogger(opts.Logger()))
	if err != nil {
		return nil, err
	}
	opts.Logger().Debug("catalog loaded", "path", path, "motions", c.Len())
	return c, nil
}

// catalogPath picks the positional argument when present, else the
// configured default.
func catalogPath(opts *RootOptions, args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return opts.Config.Catalog
}

// SourceOptions select where a playable sequence comes from.
type SourceOptions struct {
	Catalog string   // catalog to resolve motion names against
	Params  []string // key=value placeholder bindings
	Prefer  string   // category searched first for bare names
}

// Loaded is a playable sequence and the tick rate its source declares.
type Loaded struct {
	Sequence sequence.Sequence
	FPS      int // catalog metadata.fps; 0 for files and builtins
}

// loadSequence is loadSource without the declared tick rate.
func loadSequence(opts *RootOptions, src SourceOptions, arg string) (sequence.Sequence, error) {
	l, err := loadSource(opts, src, arg)
	return l.Sequence, err
}

// loadSource resolves a source argument, trying in order: a sequence
// document on disk, a motion in the catalog ("category.name" or a bare
// name), a builtin sequence key.
func loadSource(opts *RootOptions, src SourceOptions, arg string) (Loaded, error) {
	if isSequenceFile(arg) {
		seq, err := codec.ReadFile(arg)
		return Loaded{Sequence: seq}, err
	}

	catalogFile := src.Catalog
	if catalogFile == "" {
		catalogFile = opts.Config.Catalog
	}
	if catalogFile != "" {
		c, err := loadCatalog(opts, catalogFile)
		if err != nil {
			return Loaded{}, err
		}
		params, err := parseParams(src.Params)
		if err != nil {
			return Loaded{}, err
		}
		name := arg
		if src.Prefer != "" && !strings.Contains(arg, ".") {
			if _, ok := c.Motion(catalog.Key{Category: src.Prefer, Name: arg}); ok {
				name = src.Prefer + "." + arg
			}
		}
		seq, err := resolveMotion(c, name, params)
		if err == nil {
			return Loaded{Sequence: seq, FPS: c.Metadata().FPS}, nil
		}
		if !catalog.IsNotFound(err) {
			return Loaded{}, err
		}
		if _, ok := sequence.Builtin(arg); !ok {
			return Loaded{}, err
		}
	}

	if seq, ok := sequence.Builtin(arg); ok {
		return Loaded{Sequence: seq}, nil
	}
	return Loaded{}, fmt.Errorf("%q: %w", arg, errSequenceNotFound)
}

// tickRate picks the playback rate: an explicit --fps, then the rate the
// source declares, then the --fps default (SCONE_FPS).
func tickRate(cmd *cobra.Command, flagFPS int, l Loaded) int {
	if !cmd.Flags().Changed("fps") && l.FPS > 0 {
		return l.FPS
	}
	return flagFPS
}

// resolveMotion resolves a dotted reference, or a bare name found by
// catalog search.
func resolveMotion(c *catalog.Catalog, name string, params catalog.Params) (sequence.Sequence, error) {
	key, err := motionKey(c, name)
	if err != nil {
		return sequence.Sequence{}, err
	}
	return c.Resolve(key.Category, key.Name, params)
}

func isSequenceFile(arg string) bool {
	switch strings.ToLower(filepath.Ext(arg)) {
	case ".json", ".yaml", ".yml":
	default:
		return false
	}
	info, err := os.Stat(arg)
	return err == nil && !info.IsDir()
}

// parseParams turns repeated key=value flags into placeholder bindings.
func parseParams(pairs []string) (catalog.Params, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(catalog.Params, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("%w: invalid --param %q: want key=value", errBadArgument, pair)
		}
		params[strings.TrimSpace(k)] = v
	}
	return params, nil
}

// openStore opens the SQLite library and journal.
func openStore(opts *RootOptions, path string) (*store.Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no database given (pass --db or set SCONE_DB)", errBadArgument)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errStoreFailed, err)
	}
	opts.Logger().Debug("database ready", "path", path)
	return st, nil
}

// closeStore closes st, logging any failure.
func closeStore(opts *RootOptions, st *store.Store) {
	if err := st.Close(); err != nil {
		opts.Logger().Error("error closing database", "error", err)
	}
}

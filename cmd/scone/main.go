package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/ez2torta/SConE/internal/cli"
	"github.com/ez2torta/SConE/internal/config"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load .env file if present (non-fatal).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitCommandError
	}

	cmd := cli.NewRootCommand(cfg)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		// Commands report their own failures as an ExitError; anything
		// else (bad flags, unknown commands) is printed here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}

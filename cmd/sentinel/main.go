package main

import (
	"fmt"
	"os"
	"strings"

	"coinsentinel/internal/cli"
	"coinsentinel/internal/config"
	"coinsentinel/internal/logging"
)

// configDirFromArgs scans the raw arguments for the --config flag.
// Configuration has to be loaded before cobra parses flags, so both
// the space-separated and the = forms are recognized here.
func configDirFromArgs(args []string) string {
	dir := config.DefaultConfigDir()
	for i, arg := range args {
		switch {
		case arg == "--config" && i+1 < len(args):
			dir = args[i+1]
		case strings.HasPrefix(arg, "--config="):
			dir = strings.TrimPrefix(arg, "--config=")
		}
	}
	return dir
}

func main() {
	configDir := configDirFromArgs(os.Args[1:])

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

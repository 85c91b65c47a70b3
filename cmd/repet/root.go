package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/soundsep/repet-go/internal/config"
	"github.com/soundsep/repet-go/internal/telemetry"
)

var (
	configFile string
	verbose    bool
	statsdAddr string

	cfg *config.Config
	log *telemetry.Logger
)

var rootCmd = &cobra.Command{
	Use:   "repet",
	Short: "REPET-family repetition-based audio source separation",
	Long: `repet separates a repeating musical background from a
non-repeating foreground (usually the vocals) using the REPET family of
algorithms: ORIGINAL, EXTENDED, ADAPTIVE, SIM and SIMONLINE.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		warnUnboundEnvOverrides(cmd)

		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if verbose {
			loaded.App.Verbose = true
		}
		if statsdAddr != "" {
			loaded.App.StatsdAddr = statsdAddr
		}
		cfg = loaded

		l, err := telemetry.NewLogger(cfg.App.Verbose)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		log = l
		return nil
	},
}

// Execute runs the CLI; it's the repo's single entry point.
func Execute() {
	defer func() {
		if log != nil {
			_ = log.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"path to a YAML config file (defaults loaded if omitted)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose logging")
	rootCmd.PersistentFlags().StringVar(&statsdAddr, "statsd-addr", "",
		"DogStatsD address (default 127.0.0.1:8125)")
}

// warnUnboundEnvOverrides walks the command's own flags (not
// viper-bound ones) and flags any REPET_-prefixed environment variable
// shadowing a flag the user didn't pass explicitly, so a stale env var
// left over from a previous run doesn't silently change behavior.
// Mirrors the teacher's cmd/root.go bindFlags, which visits
// *pflag.Flag directly rather than going through cobra's higher-level
// flag API.
func warnUnboundEnvOverrides(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			return
		}
		envName := "REPET_" + strings.ToUpper(strings.ReplaceAll(f.Name, "-", "_"))
		if val, ok := os.LookupEnv(envName); ok {
			if err := cmd.Flags().Set(f.Name, val); err != nil {
				return
			}
			fmt.Fprintf(os.Stderr, "note: %s=%s overrides --%s default\n", envName, val, f.Name)
		}
	})
}

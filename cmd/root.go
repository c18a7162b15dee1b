package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kozaktomas/face-engine/internal/app"
	"github.com/kozaktomas/face-engine/internal/config"
	"github.com/kozaktomas/face-engine/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Build metadata, set by -ldflags at compile time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "face-engine",
	Short: "Face registration and recognition backend",
	Long: `Face Engine registers users with a reference portrait, matches frames
uploaded by cameras against the stored face encodings and logs every
recognition attempt. Matches can be pushed to NX Witness as bookmarks.`,
	SilenceUsage: true,
	Version:      Version,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionInfo())
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetVersionTemplate(versionInfo())
	rootCmd.AddCommand(versionCmd)
}

func versionInfo() string {
	return fmt.Sprintf("face-engine %s\n  commit: %s\n  built:  %s\n", Version, CommitSHA, BuildDate)
}

// flagValue reads a flag registered in init. A lookup error is a programming
// bug, so it panics.
func flagValue[T any](cmd *cobra.Command, name string, get func(string) (T, error)) T {
	v, err := get(name)
	if err != nil {
		panic(fmt.Sprintf("flag --%s on %s: %v", name, cmd.Name(), err))
	}
	return v
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// newLogger builds the process logger from the environment.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	return log, nil
}

// openApp loads the configuration, connects to the database and builds the
// application context. The caller closes it.
func openApp(ctx context.Context, validate bool) (*app.App, error) {
	cfg := config.Load()
	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	} else if cfg.Database.URL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	log, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

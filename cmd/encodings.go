package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/kozaktomas/face-engine/internal/database"
	"github.com/kozaktomas/face-engine/internal/workflow"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var encodingsCmd = &cobra.Command{
	Use:   "encodings",
	Short: "Manage stored face encodings",
}

var encodingsBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Encode stored portraits of users without a face encoding",
	Long: `Encode the stored portrait of every user that has no face encoding yet,
for example after a registration failed half way or after restoring users
from a backup.`,
	Args: cobra.NoArgs,
	RunE: runEncodingsBackfill,
}

func init() {
	rootCmd.AddCommand(encodingsCmd)
	encodingsCmd.AddCommand(encodingsBackfillCmd)

	encodingsBackfillCmd.Flags().Int("concurrency", 0, "Parallel encoder calls (defaults to MAX_WORKERS)")
	encodingsBackfillCmd.Flags().Bool("dry-run", false, "Only list the users that would be encoded")
}

// portraitName returns the stored file name of a portrait path.
func portraitName(portraitPath string) string {
	return path.Base(portraitPath)
}

func runEncodingsBackfill(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	b := workflow.NewBackfiller(a.Users, a.Encodings, a.Portraits, a.Encoder, a.Log.Named("backfill"))
	users, err := b.Pending(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("Every user has a face encoding")
		return nil
	}

	if flagValue(cmd, "dry-run", cmd.Flags().GetBool) {
		for _, u := range users {
			fmt.Printf("%d\t%s\t%s\n", u.ID, u.FullName(), portraitName(u.PortraitPath))
		}
		return nil
	}

	concurrency := flagValue(cmd, "concurrency", cmd.Flags().GetInt)
	if concurrency <= 0 {
		concurrency = a.Config.Workers.Size
	}

	bar := progressbar.NewOptions(len(users),
		progressbar.OptionSetDescription("Encoding portraits"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("users"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)
	result, err := b.Run(ctx, users, concurrency, func(database.User, error) {
		bar.Add(1)
	})
	bar.Finish()
	fmt.Println()

	fmt.Printf("Encoded: %d, no face: %d, failed: %d\n", result.Encoded, result.NoFace, result.Failed)
	if err != nil {
		return fmt.Errorf("backfill interrupted: %w", err)
	}
	return nil
}

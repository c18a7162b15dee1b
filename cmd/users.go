package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage registered users",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered users",
	Args:  cobra.NoArgs,
	RunE:  runUsersList,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user together with its face encodings",
	Long: `Delete a user. Its face encodings are removed with it, recognition
logs that referenced the user are kept and show no recognized user. The
portrait file is removed unless --keep-portrait is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runUsersDelete,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	usersListCmd.Flags().Bool("missing-encoding", false, "Only list users without a face encoding")
	usersDeleteCmd.Flags().Bool("keep-portrait", false, "Keep the portrait file on disk")
}

func runUsersList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	list := a.Users.List
	if flagValue(cmd, "missing-encoding", cmd.Flags().GetBool) {
		list = a.Users.ListWithoutEncoding
	}
	users, err := list(ctx)
	if err != nil {
		return fmt.Errorf("listing users: %w", err)
	}

	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.FullName(),
			u.Email,
			u.Phone,
			strconv.FormatBool(u.IsActive),
			u.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	fmt.Println(renderTable(
		[]string{"ID", "Name", "Email", "Phone", "Active", "Created"},
		rows,
		[]columnAlignment{alignRight},
	))
	fmt.Printf("%d users\n", len(users))
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid user id %q", args[0])
	}

	ctx := context.Background()
	a, err := openApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	user, err := a.Users.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading user %d: %w", id, err)
	}
	if err := a.Users.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	fmt.Printf("Deleted user %d (%s)\n", user.ID, user.FullName())

	if user.PortraitPath != "" && !flagValue(cmd, "keep-portrait", cmd.Flags().GetBool) {
		if err := a.Portraits.Remove(portraitName(user.PortraitPath)); err != nil {
			fmt.Printf("Warning: failed to remove portrait: %v\n", err)
		}
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/kerbaras/novels/pkg/data"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage local readers",
}

var userAddCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Create or update a local reader",
	Long: `Create or update a reader in the local user table. Readers are picked
with --user (or NOVELS_USER). Paid chapters open for subscribers and admins.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		role, _ := cmd.Flags().GetString("role")
		subscribed, _ := cmd.Flags().GetBool("subscribed")

		controller := newController()
		defer controller.Close()

		user, err := controller.RegisterUser(args[0], data.Role(role), subscribed)
		cobra.CheckErr(err)
		fmt.Printf("👤 %s (%s) id=%s subscribed=%t\n", user.Username, user.Role, user.ID, user.Subscribed)
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show who chapters are read as",
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		viewer := resolveViewer(cmd.Context(), controller)
		if viewer == nil {
			fmt.Println("anonymous")
			return
		}
		fmt.Printf("%s (%s) id=%s subscribed=%t\n", cfg.Username, viewer.Role, viewer.UserID, viewer.Subscribed)
	},
}

func init() {
	userAddCmd.Flags().String("role", string(data.RoleReader), "reader, author, admin or superadmin")
	userAddCmd.Flags().Bool("subscribed", false, "reader has an active subscription")

	userCmd.AddCommand(userAddCmd, whoamiCmd)
	rootCmd.AddCommand(userCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete [novel]",
	Aliases: []string{"rm"},
	Short:   "Remove a novel and its chapters from your library",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		novelID := resolveNovelID(controller, args[0])
		cobra.CheckErr(controller.DeleteNovel(novelID))
		fmt.Printf("🗑️  Deleted %s\n", novelID)
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/kerbaras/novels/pkg/integrations"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [novel]",
	Short: "Export a novel to EPUB",
	Long:  "Build an EPUB from the chapters the current user may read; locked chapters are left out",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		controller := newController()
		defer controller.Close()

		novelID := resolveNovelID(controller, args[0])
		viewer := resolveViewer(ctx, controller)

		fmt.Printf("📦 Exporting %s...\n", novelID)
		result, err := controller.Export(ctx, novelID, viewer)
		if errors.Is(err, integrations.ErrNothingReadable) {
			cobra.CheckErr(fmt.Errorf("none of the chapters are readable by this user; try --user"))
		}
		cobra.CheckErr(err)

		fmt.Printf("📖 EPUB created: %s\n", result.Path)
		fmt.Printf("   %d chapters, %d illustrations", result.Included, result.Images)
		if result.Skipped > 0 {
			fmt.Printf(", %d locked chapters skipped", result.Skipped)
		}
		fmt.Println()
	},
}

func init() {
	exportCmd.Flags().StringVarP(&cfg.ExportDir, "output", "o", cfg.ExportDir, "output directory")
	rootCmd.AddCommand(exportCmd)
}

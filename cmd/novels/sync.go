package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"

	"github.com/kerbaras/novels/pkg/services"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync [novel-id]",
	Short: "Copy a novel from the platform into your library",
	Long:  "Fetch a novel and all of its chapters from the platform and store them locally",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		controller := newController()
		novelID := resolveNovelID(controller, args[0])
		fmt.Printf("🔄 Syncing novel %s\n", novelID)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range controller.SyncProgress() {
				printProgress(p)
			}
		}()

		result, err := controller.Sync(ctx, novelID)
		controller.Close()
		wg.Wait()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("sync failed: %w", err))
		}

		fmt.Printf("\n✅ %s: %d chapters saved (%s)\n", result.Novel.Title, result.Saved, result.Novel.Status)
		for _, e := range result.Errors {
			fmt.Printf("  ⚠️  %v\n", e)
		}
	},
}

func printProgress(p services.SyncProgress) {
	switch p.Status {
	case "saved":
		fmt.Printf("  [%d/%d] %s\n", p.Current, p.Total, p.Title)
	case "error":
		fmt.Printf("  [%d/%d] %s: %v\n", p.Current, p.Total, p.Title, p.Error)
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/kerbaras/novels/pkg/app"
	"github.com/kerbaras/novels/pkg/config"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/kerbaras/novels/pkg/services"
	"github.com/spf13/cobra"
)

var (
	cfg     = config.Load()
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "novels",
	Short: "A web-novel reader for the terminal",
	Long:  "Sync, read and export web novels with a TUI and CLI",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
	Run: func(cmd *cobra.Command, args []string) {
		closeLog, err := app.SetupLogging(cfg.LogFile)
		cobra.CheckErr(err)
		defer closeLog()

		controller := newController()
		defer controller.Close()

		if err := app.NewApp(controller).Run(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.DBPath, "db", cfg.DBPath, "library database path")
	flags.StringVar(&cfg.APIURL, "api", cfg.APIURL, "platform API base URL")
	flags.StringVar(&cfg.AssetURL, "assets", cfg.AssetURL, "media base URL (defaults to --api)")
	flags.StringVarP(&cfg.Username, "user", "u", cfg.Username, "local user to read as")
	flags.BoolVar(&cfg.Remote, "remote", cfg.Remote, "read through the platform API instead of the library")
	flags.StringVar(&cfg.LogFile, "log", cfg.LogFile, "TUI log file")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newController() *services.LibraryController {
	controller, err := services.NewLibraryController(cfg)
	cobra.CheckErr(err)
	return controller
}

// resolveNovelID accepts a library title or a raw novel id.
func resolveNovelID(c *services.LibraryController, arg string) string {
	if n, err := c.FindNovelByTitle(arg); err == nil {
		return n.ID
	}
	return arg
}

// resolveViewer falls back to an anonymous reader when the configured user
// cannot be found.
func resolveViewer(ctx context.Context, c *services.LibraryController) *reading.Viewer {
	state, err := c.ResolveAuth(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  %v; reading anonymously\n", err)
		return nil
	}
	return state.Viewer
}

func truncateString(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

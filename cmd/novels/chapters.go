package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/kerbaras/novels/pkg/reading"
	"github.com/spf13/cobra"
)

var chaptersCmd = &cobra.Command{
	Use:     "chapters [novel]",
	Aliases: []string{"access"},
	Short:   "Show a novel's chapters in reading order",
	Long:    "List a novel's chapters oldest first, with whether the current user may read each one",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		controller := newController()
		defer controller.Close()

		novelID := resolveNovelID(controller, args[0])
		novel, err := controller.GetNovel(ctx, novelID)
		cobra.CheckErr(err)
		chapters, _, err := controller.Chapters(ctx, novelID)
		cobra.CheckErr(err)
		viewer := resolveViewer(ctx, controller)

		var (
			allowed = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
			denied  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
			header  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
			cell    = lipgloss.NewStyle().Padding(0, 1)
		)

		verdicts := make([]reading.Verdict, len(chapters))
		t := table.New().
			Border(lipgloss.RoundedBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				switch {
				case row == table.HeaderRow:
					return header
				case col == 3 && verdicts[row].Allowed():
					return allowed.Padding(0, 1)
				case col == 3:
					return denied.Padding(0, 1)
				}
				return cell
			}).
			Headers("#", "Title", "Price", "Access", "ID")

		for i, ch := range chapters {
			verdicts[i] = reading.Evaluate(ch, viewer)
			price := "paid"
			if ch.IsFree {
				price = "free"
			}
			t.Row(fmt.Sprintf("%d", i+1), truncateString(ch.Title, 40), price, verdicts[i].String(), ch.ID)
		}

		who := "anonymous"
		if viewer != nil {
			who = fmt.Sprintf("%s (%s)", cfg.Username, viewer.Role)
		}
		fmt.Printf("\n📖 %s (%d chapters), reading as %s\n", novel.Title, len(chapters), who)
		fmt.Println(t)
	},
}

func init() {
	rootCmd.AddCommand(chaptersCmd)
}

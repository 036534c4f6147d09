package cmd

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the novels in your library",
	Long:  "Display all synced novels in a formatted table",
	Run: func(cmd *cobra.Command, args []string) {
		controller := newController()
		defer controller.Close()

		novels, err := controller.ListLibrary()
		cobra.CheckErr(err)

		if len(novels) == 0 {
			fmt.Println("📚 No novels in library. Use 'novels search' to find novels to sync.")
			return
		}

		columns := []table.Column{
			{Title: "Title", Width: 36},
			{Title: "Author", Width: 16},
			{Title: "Status", Width: 10},
			{Title: "Chapters", Width: 9},
			{Title: "Free", Width: 6},
			{Title: "ID", Width: 26},
		}

		rows := []table.Row{}
		for _, novel := range novels {
			_, total, free, _ := controller.NovelSummary(novel.ID)
			status := novel.Status
			if status == "" {
				status = "ready"
			}
			rows = append(rows, table.Row{
				truncateString(novel.Title, 34),
				truncateString(novel.AuthorName, 14),
				status,
				fmt.Sprintf("%d", total),
				fmt.Sprintf("%d", free),
				novel.ID,
			})
		}

		t := table.New(
			table.WithColumns(columns),
			table.WithRows(rows),
			table.WithFocused(false),
			table.WithHeight(len(rows)),
		)

		s := table.DefaultStyles()
		s.Header = s.Header.
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			BorderBottom(true).
			Bold(true)
		s.Selected = s.Selected.
			Foreground(lipgloss.NoColor{}).
			Bold(false)
		t.SetStyles(s)

		fmt.Printf("\n📚 Library (%d novels)\n\n", len(novels))
		fmt.Println(t.View())
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

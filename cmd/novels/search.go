package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the platform for novels",
	Long:  "Search the novel platform and display results in a table",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		query := strings.Join(args, " ")
		controller := newController()
		defer controller.Close()

		results, err := controller.Search(cmd.Context(), query)
		if err != nil {
			cobra.CheckErr(fmt.Errorf("search failed: %w", err))
		}

		if len(results) == 0 {
			fmt.Println("No results found.")
			return
		}

		var (
			teal = lipgloss.Color("79")

			headerStyle = lipgloss.NewStyle().Foreground(teal).Bold(true).Align(lipgloss.Center)
			cellStyle   = lipgloss.NewStyle().Padding(0, 1)
		)

		t := table.New().
			Border(lipgloss.HiddenBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(teal)).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers("#", "Title", "Author", "Views", "ID")

		for i, novel := range results {
			t.Row(fmt.Sprintf("%d", i+1), truncateString(novel.Title, 48), truncateString(novel.AuthorName, 16),
				fmt.Sprintf("%d", novel.Views), novel.ID)
		}

		fmt.Println(t)
		fmt.Println("💡 To sync a novel into your library, use: novels sync <id>")
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

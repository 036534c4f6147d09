package app

import (
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kerbaras/novels/pkg/app/screens"
	"github.com/kerbaras/novels/pkg/services"
)

var _ screens.Library = (*services.LibraryController)(nil)

type App struct {
	controller *services.LibraryController
}

func NewApp(controller *services.LibraryController) *App {
	return &App{controller: controller}
}

func (a *App) Run() error {
	model := screens.NewRootScreen(a.controller)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// SetupLogging points the default logger away from the terminal the TUI
// draws on: into path, or nowhere when path is empty. Call it before anything
// captures slog.Default. The returned func closes the log file.
func SetupLogging(path string) (func(), error) {
	if path == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
		return func() {}, nil
	}

	f, err := tea.LogToFile(path, "novels")
	if err != nil {
		return nil, err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return func() { f.Close() }, nil
}

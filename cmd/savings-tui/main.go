package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"savingsdash/internal/cli"
	"savingsdash/internal/log"
	"savingsdash/internal/tui"
)

func main() {
	cli.LoadEnvFile()

	var out io.Writer = io.Discard
	if path := os.Getenv("TUI_LOG_FILE"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := cli.SetupLoggerTo(out, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	store, data := cli.OpenDataset(logger, cfg)
	defer data.Close()

	m := tui.New(store, tui.Config{
		Currency: cfg.CurrencySymbol,
		Logger:   logger,
	})
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		logger.Error("Terminal dashboard failed", log.FieldError, err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

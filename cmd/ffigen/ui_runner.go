package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"ffigen/internal/driver"
	"ffigen/internal/ui"
)

type generateOutcome struct {
	result *driver.Result
	err    error
}

func runGenerateWithUI(ctx context.Context, title string, files []string, req driver.Request) (*driver.Result, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.Generate(ctx, reqCopy)
		outcomeCh <- generateOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

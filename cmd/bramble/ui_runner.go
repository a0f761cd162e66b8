package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"bramble/internal/driver"
	"bramble/internal/ui"
)

type runOutcome struct {
	results []*driver.Result
	err     error
}

// runWithUI drives the pipeline in the background while a progress view
// renders to stderr, keeping stdout for the outputs.
func runWithUI(ctx context.Context, paths []string, stage driver.Stage, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan driver.PhaseEvent, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		o := opts
		next := opts.Observer
		o.Observer = func(ev driver.PhaseEvent) {
			if next != nil {
				next(ev)
			}
			events <- ev
		}
		res, err := driver.Run(ctx, paths, stage, o)
		outcomeCh <- runOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(stage.String(), paths, lastPhase(stage), events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}

func lastPhase(stage driver.Stage) string {
	switch stage {
	case driver.StageCheck:
		return "resolve"
	case driver.StageMIR:
		return "lower"
	default:
		return "codegen"
	}
}

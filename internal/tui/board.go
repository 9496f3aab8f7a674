// Package tui is the interactive board over the game engine.
package tui

import (
	"context"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"monkquest/internal/engine"
)

// RunBoard drives the engine once per tickEvery and flushes timer progress
// every flushEvery until the user quits.
func RunBoard(ctx context.Context, eng *engine.Engine, out io.Writer, tickEvery, flushEvery time.Duration) error {
	m := newBoardModel(ctx, eng, tickEvery, flushEvery)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		_ = eng.Close(context.WithoutCancel(ctx))
	}
	return err
}

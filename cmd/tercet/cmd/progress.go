package cmd

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tercet-ai/tercet/internal/events"
)

// progressRenderer consumes workflow events from the bus and renders a
// compact per-stage progress line to stderr. It never blocks the run:
// the bus drops events for slow consumers, so a stalled terminal costs
// progress lines, not translations.
type progressRenderer struct {
	out io.Writer
	bus *events.Bus
	ch  <-chan events.Event
	wg  sync.WaitGroup

	arrow lipgloss.Style
	ok    lipgloss.Style
	fail  lipgloss.Style
	dim   lipgloss.Style
}

func newProgressRenderer(bus *events.Bus, out io.Writer, plain bool) *progressRenderer {
	r := &progressRenderer{out: out, bus: bus}
	if plain {
		r.arrow = lipgloss.NewStyle()
		r.ok = lipgloss.NewStyle()
		r.fail = lipgloss.NewStyle()
		r.dim = lipgloss.NewStyle()
	} else {
		r.arrow = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
		r.ok = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
		r.fail = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
		r.dim = lipgloss.NewStyle().Faint(true)
	}
	return r
}

// Start subscribes to the bus and begins rendering.
func (r *progressRenderer) Start() {
	r.ch = r.bus.Subscribe(
		events.TypeStageStarted,
		events.TypeStageCompleted,
		events.TypeWorkflowCompleted,
		events.TypeWorkflowFailed,
	)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for ev := range r.ch {
			r.render(ev)
		}
	}()
}

// Stop unsubscribes and waits for the render loop to drain.
func (r *progressRenderer) Stop() {
	if r.ch == nil {
		return
	}
	r.bus.Unsubscribe(r.ch)
	r.wg.Wait()
}

func (r *progressRenderer) render(ev events.Event) {
	switch e := ev.(type) {
	case events.StageStartedEvent:
		fmt.Fprintf(r.out, "%s %s\n", r.arrow.Render("→"), e.Stage)
	case events.StageCompletedEvent:
		line := fmt.Sprintf("%s %s  %s",
			r.ok.Render("✓"), e.Stage,
			r.dim.Render(fmt.Sprintf("%s/%s  %s  %d tok  $%.4f",
				e.Provider, e.Model,
				formatDuration(e.Duration),
				e.PromptTokens+e.CompletionTokens,
				e.Cost)))
		if e.Attempts > 1 {
			line += r.dim.Render(fmt.Sprintf("  (%d attempts)", e.Attempts))
		}
		fmt.Fprintln(r.out, line)
	case events.WorkflowCompletedEvent:
		fmt.Fprintf(r.out, "%s translated in %s  %s\n",
			r.ok.Render("✓"),
			formatDuration(e.TotalDuration),
			r.dim.Render(fmt.Sprintf("%d tok  $%.4f", e.TotalTokens, e.TotalCost)))
	case events.WorkflowFailedEvent:
		fmt.Fprintf(r.out, "%s failed at %s (%s, %d attempts): %s\n",
			r.fail.Render("✗"), e.Stage, e.Category, e.Attempts, e.Error)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(10 * time.Millisecond).String()
}

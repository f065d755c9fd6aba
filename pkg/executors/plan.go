package executors

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/cardcsv/pkg/plan"
)

// Change describes what applying one job would produce.
type Change struct {
	Input   string
	Output  string
	Profile string
	Records int
	Err     error
}

// Plan loads every job input and prints a preview of the outputs that Apply
// would write. Nothing is written to disk.
func (e *Executor) Plan(ctx context.Context, p *plan.Plan, w io.Writer) ([]Change, error) {
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // red
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray

	changes := make([]Change, 0, len(p.Jobs))
	failed := 0
	for _, job := range p.Jobs {
		input := p.Resolve(job.Input)
		e.logger.Debug("planning job", "input", input)

		change := Change{Input: job.Input, Output: job.Output}
		conv, err := e.job(p, job)
		if err == nil {
			change.Profile = conv.Profile.Name
			var records int
			records, err = e.count(ctx, input)
			change.Records = records
		}
		change.Err = err
		changes = append(changes, change)

		if err != nil {
			failed++
			fmt.Fprintln(w, errStyle.Render(fmt.Sprintf("! %s -> %s : %v", job.Input, job.Output, err)))
			continue
		}
		line := fmt.Sprintf("+ %s -> %s : %d rows", job.Input, job.Output, change.Records)
		fmt.Fprintln(w, okStyle.Render(line)+dimStyle.Render(" ["+change.Profile+"]"))
	}

	fmt.Fprintf(w, "\nPlan: %d file(s) will be written, %d failing\n", len(changes)-failed, failed)
	if failed > 0 {
		return changes, fmt.Errorf("%d job(s) cannot be applied", failed)
	}
	return changes, nil
}

func (e *Executor) count(ctx context.Context, input string) (int, error) {
	records, err := e.processor.Load(ctx, input)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/findings"
	"osintscan/pkg/tools"
)

// ExecutionStrategy runs a tool set and returns one outcome per tool, in the
// order the tools were given. It never fails as a whole.
type ExecutionStrategy interface {
	Run(ctx context.Context, toolset []tools.Tool, domain string, observe ObserveFunc) []findings.Outcome
}

// ObserveFunc is called once per finished tool.
type ObserveFunc func(tool string, duration time.Duration, outcome findings.Outcome)

// ConcurrentStrategy starts every tool at once and waits for all of them.
// A failing tool never cancels its siblings.
type ConcurrentStrategy struct{}

func (c *ConcurrentStrategy) Run(ctx context.Context, toolset []tools.Tool, domain string, observe ObserveFunc) []findings.Outcome {
	outcomes := make([]findings.Outcome, len(toolset))

	var g errgroup.Group
	for i, tool := range toolset {
		g.Go(func() error {
			outcomes[i] = runOne(ctx, tool, domain, observe)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func runOne(ctx context.Context, tool tools.Tool, domain string, observe ObserveFunc) (out findings.Outcome) {
	start := time.Now()
	name := tool.Name()

	defer func() {
		if r := recover(); r != nil {
			out = findings.Failed(name, apperrors.NewToolError(name, fmt.Errorf("panic: %v", r)))
		}
		if observe != nil {
			observe(name, time.Since(start), out)
		}
	}()

	out = tool.Execute(ctx, domain)
	if out.Tool == "" {
		out.Tool = name
	}
	return out
}

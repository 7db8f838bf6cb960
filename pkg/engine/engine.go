// Package engine fans a scan out over its tools and joins the outcomes.
package engine

import (
	"context"
	"time"

	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
	"osintscan/pkg/tools"
)

// Recorder receives the timing and error of every tool run. err is nil on
// success.
type Recorder interface {
	ObserveTool(tool string, duration time.Duration, err error)
}

type EngineOpts struct {
	logger   *logger.Logger
	strategy ExecutionStrategy
	recorder Recorder
}

type OptFunc func(*EngineOpts)

type Engine struct {
	EngineOpts
}

func New(opts ...OptFunc) *Engine {
	o := EngineOpts{
		logger:   logger.NewNop(),
		strategy: &ConcurrentStrategy{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Engine{EngineOpts: o}
}

func WithLogger(l *logger.Logger) OptFunc {
	return func(o *EngineOpts) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithRecorder(r Recorder) OptFunc {
	return func(o *EngineOpts) {
		o.recorder = r
	}
}

// RunAll executes every tool against domain and returns their outcomes in
// tool order. It returns once all tools have finished.
func (e *Engine) RunAll(ctx context.Context, toolset []tools.Tool, domain string) []findings.Outcome {
	if len(toolset) == 0 {
		return []findings.Outcome{}
	}

	e.logger.WithFields(logger.Fields{
		"domain": domain,
		"tools":  len(toolset),
	}).Info("Dispatching tools")

	return e.strategy.Run(ctx, toolset, domain, e.observe)
}

func (e *Engine) observe(tool string, d time.Duration, out findings.Outcome) {
	if e.recorder != nil {
		e.recorder.ObserveTool(tool, d, out.Err)
	}
	if !out.OK() {
		e.logger.WithFields(logger.Fields{
			"tool":     tool,
			"duration": d.String(),
			"error":    out.Cause(),
		}).Warn("Tool failed")
	}
}

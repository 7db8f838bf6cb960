package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
	"osintscan/pkg/parsers"
)

type baseTool struct {
	name    string
	timeout time.Duration
	logger  *logger.Logger
}

func newBase(name string, timeout time.Duration, log *logger.Logger) baseTool {
	if log == nil {
		log = logger.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return baseTool{name: name, timeout: timeout, logger: log}
}

func (b baseTool) Name() string {
	return b.name
}

type workResult struct {
	findings findings.Findings
	err      error
}

// runBounded runs work under the tool timeout. The outcome is a timeout
// failure once the deadline passes, even if work has not returned yet. A
// panic inside work becomes a failure.
func (b baseTool) runBounded(
	ctx context.Context,
	domain string,
	work func(ctx context.Context) (findings.Findings, error),
) findings.Outcome {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	var result workResult
	err := b.logger.LogToolExecution(b.name, logger.Fields{"domain": domain}, func() error {
		done := make(chan workResult, 1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					done <- workResult{err: fmt.Errorf("panic: %v", r)}
				}
			}()
			f, err := work(ctx)
			done <- workResult{findings: f, err: err}
		}()

		select {
		case result = <-done:
			return result.err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w after %s", apperrors.ErrToolTimeout, b.timeout)
			}
			return ctx.Err()
		}
	})

	if err != nil {
		return findings.Failed(b.name, apperrors.NewToolError(b.name, err))
	}
	return findings.Succeeded(b.name, result.findings)
}

// CommandTool runs an external binary and parses its stdout.
type CommandTool struct {
	baseTool
	config   ToolConfig
	runner   CommandRunner
	parser   func(domain string) parsers.OutputParser
	resolver Resolver
}

// NewCommandTool builds a subprocess strategy. When resolver is non-nil,
// every discovered host is resolved and its addresses added to the result.
func NewCommandTool(
	config ToolConfig,
	runner CommandRunner,
	parser func(domain string) parsers.OutputParser,
	resolver Resolver,
	timeout time.Duration,
	log *logger.Logger,
) *CommandTool {
	return &CommandTool{
		baseTool: newBase(config.Name, timeout, log),
		config:   config,
		runner:   runner,
		parser:   parser,
		resolver: resolver,
	}
}

func (t *CommandTool) Execute(ctx context.Context, domain string) findings.Outcome {
	return t.runBounded(ctx, domain, func(ctx context.Context) (findings.Findings, error) {
		args, err := t.config.BuildArgs(domain)
		if err != nil {
			return findings.Findings{}, err
		}

		output, err := t.runner.Run(ctx, t.config.Command, args)
		if err != nil {
			return findings.Findings{}, err
		}

		result, err := t.parser(domain).Parse(output)
		if err != nil {
			return findings.Findings{}, err
		}

		if t.resolver != nil && len(result.Subdomains) > 0 {
			result.IPAddresses = append(result.IPAddresses, resolveAll(ctx, t.resolver, result.Subdomains)...)
		}
		return result, nil
	})
}

// resolveAll looks up every host and returns the addresses found. Lookup
// failures are skipped.
func resolveAll(ctx context.Context, resolver Resolver, hosts []string) []string {
	var (
		mu    sync.Mutex
		addrs []string
		g     errgroup.Group
	)
	g.SetLimit(10)

	for _, host := range hosts {
		g.Go(func() error {
			found, err := resolver.LookupHost(ctx, host)
			if err != nil {
				return nil
			}
			mu.Lock()
			addrs = append(addrs, found...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return addrs
}

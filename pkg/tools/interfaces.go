package tools

import (
	"context"

	"osintscan/pkg/findings"
	"osintscan/pkg/runner"
)

// Tool is one information-gathering strategy. Execute must return within the
// tool's timeout and must not panic; failures are reported in the Outcome.
type Tool interface {
	Name() string
	Execute(ctx context.Context, domain string) findings.Outcome
}

// Resolver answers the DNS questions the strategies need. Implementations
// return ErrNoSuchHost for NXDOMAIN or empty answers.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
	LookupMX(ctx context.Context, domain string) ([]string, error)
	LookupNS(ctx context.Context, domain string) ([]string, error)
}

// CommandRunner executes external programs for the subprocess strategies.
type CommandRunner = runner.CommandRunner

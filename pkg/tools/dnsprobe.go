package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
)

// DNSProbe discovers subdomains by resolving well-known labels under the
// target domain.
type DNSProbe struct {
	baseTool
	resolver    Resolver
	prefixes    []string
	concurrency int
}

func NewDNSProbe(resolver Resolver, prefixes []string, concurrency int, timeout time.Duration, log *logger.Logger) *DNSProbe {
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}
	if concurrency <= 0 {
		concurrency = 10
	}
	return &DNSProbe{
		baseTool:    newBase(NameDNSProbe, timeout, log),
		resolver:    resolver,
		prefixes:    prefixes,
		concurrency: concurrency,
	}
}

func (t *DNSProbe) Execute(ctx context.Context, domain string) findings.Outcome {
	return t.runBounded(ctx, domain, func(ctx context.Context) (findings.Findings, error) {
		return t.probe(ctx, domain)
	})
}

func (t *DNSProbe) probe(ctx context.Context, domain string) (findings.Findings, error) {
	var (
		mu        sync.Mutex
		result    = findings.Empty()
		failures  int
		lastError error
		g         errgroup.Group
	)
	g.SetLimit(t.concurrency)

	for _, prefix := range t.prefixes {
		host := prefix + "." + domain
		g.Go(func() error {
			addrs, err := t.resolver.LookupHost(ctx, host)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Subdomains = append(result.Subdomains, host)
				result.IPAddresses = append(result.IPAddresses, addrs...)
			case errors.Is(err, ErrNoSuchHost):
			default:
				failures++
				lastError = err
			}
			return nil
		})
	}
	_ = g.Wait()

	if failures == len(t.prefixes) {
		return findings.Findings{}, fmt.Errorf("all %d probes failed: %w", failures, lastError)
	}

	t.logger.WithFields(logger.Fields{
		"tool":       t.name,
		"domain":     domain,
		"subdomains": len(result.Subdomains),
		"failures":   failures,
	}).Debug("DNS probe finished")
	return result, nil
}

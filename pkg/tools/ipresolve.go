package tools

import (
	"context"
	"fmt"
	"time"

	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
	"osintscan/pkg/parsers"
)

// IPResolve collects the addresses of the apex and of those mail and name
// servers that live inside the domain. Third-party MX/NS hosts are ignored.
// Only a failed apex lookup fails the strategy.
type IPResolve struct {
	baseTool
	resolver Resolver
}

func NewIPResolve(resolver Resolver, timeout time.Duration, log *logger.Logger) *IPResolve {
	return &IPResolve{
		baseTool: newBase(NameIPResolve, timeout, log),
		resolver: resolver,
	}
}

func (t *IPResolve) Execute(ctx context.Context, domain string) findings.Outcome {
	return t.runBounded(ctx, domain, func(ctx context.Context) (findings.Findings, error) {
		apex, err := t.resolver.LookupHost(ctx, domain)
		if err != nil {
			return findings.Findings{}, fmt.Errorf("apex lookup: %w", err)
		}

		result := findings.Empty()
		result.IPAddresses = append(result.IPAddresses, apex...)

		var hosts []string
		if mx, err := t.resolver.LookupMX(ctx, domain); err == nil {
			hosts = append(hosts, mx...)
		}
		if ns, err := t.resolver.LookupNS(ctx, domain); err == nil {
			hosts = append(hosts, ns...)
		}

		var inDomain []string
		for _, h := range hosts {
			if parsers.IsSubdomainOf(h, domain) {
				inDomain = append(inDomain, h)
			}
		}
		result.Subdomains = append(result.Subdomains, inDomain...)
		result.IPAddresses = append(result.IPAddresses, resolveAll(ctx, t.resolver, inDomain)...)

		return result, nil
	})
}

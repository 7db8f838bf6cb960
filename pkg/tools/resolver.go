package tools

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/time/rate"
)

// ErrNoSuchHost means the name does not exist or has no records of the
// requested type. It is not a transport failure.
var ErrNoSuchHost = errors.New("no such host")

const fallbackDNSServer = "8.8.8.8:53"

// DNSResolver speaks DNS directly to one recursive server. Truncated UDP
// answers are repeated over TCP.
type DNSResolver struct {
	client    *dns.Client
	tcpClient *dns.Client
	server    string
	limiter   *rate.Limiter
}

// NewDNSResolver builds a resolver for server ("host" or "host:port"). An
// empty server means the first nameserver of /etc/resolv.conf. qps <= 0
// disables pacing.
func NewDNSResolver(server string, timeout time.Duration, qps float64) *DNSResolver {
	if server == "" {
		server = SystemDNSServer()
	}
	if _, _, err := net.SplitHostPort(server); err != nil {
		server = net.JoinHostPort(server, "53")
	}

	r := &DNSResolver{
		client:    &dns.Client{Net: "udp", Timeout: timeout},
		tcpClient: &dns.Client{Net: "tcp", Timeout: timeout},
		server:    server,
	}
	if qps > 0 {
		burst := int(qps)
		if burst < 1 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(qps), burst)
	}
	return r
}

// SystemDNSServer returns the first resolver configured on the host.
func SystemDNSServer() string {
	conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
	if err != nil || len(conf.Servers) == 0 {
		return fallbackDNSServer
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port)
}

func (r *DNSResolver) Server() string {
	return r.server
}

// LookupHost returns the A and AAAA addresses of host.
func (r *DNSResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	var addrs []string
	var lastErr error

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		answers, err := r.exchange(ctx, host, qtype)
		if err != nil {
			if !errors.Is(err, ErrNoSuchHost) {
				lastErr = err
			}
			continue
		}
		for _, rr := range answers {
			switch rec := rr.(type) {
			case *dns.A:
				addrs = append(addrs, rec.A.String())
			case *dns.AAAA:
				addrs = append(addrs, rec.AAAA.String())
			}
		}
	}

	if len(addrs) > 0 {
		return addrs, nil
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("%s: %w", host, ErrNoSuchHost)
}

// LookupMX returns mail exchanger host names ordered as received.
func (r *DNSResolver) LookupMX(ctx context.Context, domain string) ([]string, error) {
	answers, err := r.exchange(ctx, domain, dns.TypeMX)
	if err != nil {
		return nil, err
	}
	var hosts []string
	for _, rr := range answers {
		if mx, ok := rr.(*dns.MX); ok {
			hosts = append(hosts, strings.TrimSuffix(mx.Mx, "."))
		}
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("%s MX: %w", domain, ErrNoSuchHost)
	}
	return hosts, nil
}

func (r *DNSResolver) LookupNS(ctx context.Context, domain string) ([]string, error) {
	answers, err := r.exchange(ctx, domain, dns.TypeNS)
	if err != nil {
		return nil, err
	}
	var hosts []string
	for _, rr := range answers {
		if ns, ok := rr.(*dns.NS); ok {
			hosts = append(hosts, strings.TrimSuffix(ns.Ns, "."))
		}
	}
	if len(hosts) == 0 {
		return nil, fmt.Errorf("%s NS: %w", domain, ErrNoSuchHost)
	}
	return hosts, nil
}

func (r *DNSResolver) exchange(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(name), qtype)
	m.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, m, r.server)
	if err == nil && in.Truncated {
		in, _, err = r.tcpClient.ExchangeContext(ctx, m, r.server)
	}
	if err != nil {
		return nil, fmt.Errorf("dns query %s %s: %w", name, dns.TypeToString[qtype], err)
	}

	switch in.Rcode {
	case dns.RcodeSuccess:
		if len(in.Answer) == 0 {
			return nil, fmt.Errorf("%s %s: %w", name, dns.TypeToString[qtype], ErrNoSuchHost)
		}
		return in.Answer, nil
	case dns.RcodeNameError:
		return nil, fmt.Errorf("%s: %w", name, ErrNoSuchHost)
	default:
		return nil, fmt.Errorf("dns query %s %s: rcode %s", name, dns.TypeToString[qtype], dns.RcodeToString[in.Rcode])
	}
}

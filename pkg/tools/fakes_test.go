package tools

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var errTransport = errors.New("i/o timeout")

type fakeResolver struct {
	hosts map[string][]string
	mx    map[string][]string
	ns    map[string][]string
	err   error // returned for every name not in hosts
}

func (r *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	if addrs, ok := r.hosts[host]; ok {
		return addrs, nil
	}
	if r.err != nil {
		return nil, r.err
	}
	return nil, fmt.Errorf("%s: %w", host, ErrNoSuchHost)
}

func (r *fakeResolver) LookupMX(_ context.Context, domain string) ([]string, error) {
	if mx, ok := r.mx[domain]; ok {
		return mx, nil
	}
	return nil, ErrNoSuchHost
}

func (r *fakeResolver) LookupNS(_ context.Context, domain string) ([]string, error) {
	if ns, ok := r.ns[domain]; ok {
		return ns, nil
	}
	return nil, ErrNoSuchHost
}

type fakeRunner struct {
	mu     sync.Mutex
	output map[string]string
	err    error
	calls  [][]string
}

func (r *fakeRunner) Run(_ context.Context, command string, args []string) ([]byte, error) {
	r.mu.Lock()
	r.calls = append(r.calls, append([]string{command}, args...))
	r.mu.Unlock()

	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.output[command]), nil
}

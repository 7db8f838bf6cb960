package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/findings"
	"osintscan/pkg/parsers"
)

func TestRunBounded_Timeout(t *testing.T) {
	b := newBase("slow", 20*time.Millisecond, nil)
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	out := b.runBounded(context.Background(), "example.com", func(ctx context.Context) (findings.Findings, error) {
		<-release // ignores ctx on purpose
		return findings.Empty(), nil
	})

	assert.Less(t, time.Since(start), time.Second)
	require.False(t, out.OK())
	assert.True(t, errors.Is(out.Err, apperrors.ErrToolTimeout))
	assert.Contains(t, out.Cause(), "slow: tool timed out")
}

func TestRunBounded_Panic(t *testing.T) {
	b := newBase("broken", time.Second, nil)

	out := b.runBounded(context.Background(), "example.com", func(ctx context.Context) (findings.Findings, error) {
		panic("nil map")
	})

	require.False(t, out.OK())
	assert.Equal(t, "broken: panic: nil map", out.Cause())
}

func TestRunBounded_Success(t *testing.T) {
	b := newBase("ok", time.Second, nil)

	out := b.runBounded(context.Background(), "example.com", func(ctx context.Context) (findings.Findings, error) {
		return findings.Findings{Subdomains: []string{"a.example.com"}}, nil
	})

	require.True(t, out.OK())
	assert.Equal(t, "ok", out.Tool)
	assert.Equal(t, []string{"a.example.com"}, out.Findings.Subdomains)
}

func TestDNSProbe(t *testing.T) {
	resolver := &fakeResolver{hosts: map[string][]string{
		"www.example.com":  {"1.2.3.4"},
		"mail.example.com": {"1.2.3.4"},
		"api.example.com":  {"1.2.3.4"},
	}}

	out := NewDNSProbe(resolver, nil, 4, time.Second, nil).Execute(context.Background(), "example.com")

	require.True(t, out.OK(), out.Cause())
	assert.ElementsMatch(t, []string{"www.example.com", "mail.example.com", "api.example.com"}, out.Findings.Subdomains)
	assert.Equal(t, []string{"1.2.3.4", "1.2.3.4", "1.2.3.4"}, out.Findings.IPAddresses)
}

func TestDNSProbe_NothingFoundIsSuccess(t *testing.T) {
	out := NewDNSProbe(&fakeResolver{}, []string{"www", "api"}, 2, time.Second, nil).Execute(context.Background(), "example.com")

	require.True(t, out.OK())
	assert.Empty(t, out.Findings.Subdomains)
}

func TestDNSProbe_AllTransportErrors(t *testing.T) {
	out := NewDNSProbe(&fakeResolver{err: errTransport}, []string{"www", "api"}, 2, time.Second, nil).Execute(context.Background(), "example.com")

	require.False(t, out.OK())
	assert.True(t, errors.Is(out.Err, errTransport))
	assert.Contains(t, out.Cause(), "all 2 probes failed")
}

func TestIPResolve(t *testing.T) {
	resolver := &fakeResolver{
		hosts: map[string][]string{
			"example.com":        {"93.184.216.34"},
			"mx1.example.com":    {"10.0.0.25"},
			"ns1.provider.net":   {"192.0.2.53"},
			"aspmx.l.google.com": {"142.250.1.27"},
		},
		mx: map[string][]string{"example.com": {"mx1.example.com", "aspmx.l.google.com"}},
		ns: map[string][]string{"example.com": {"ns1.provider.net"}},
	}

	out := NewIPResolve(resolver, time.Second, nil).Execute(context.Background(), "example.com")

	require.True(t, out.OK(), out.Cause())
	assert.ElementsMatch(t, []string{"93.184.216.34", "10.0.0.25"}, out.Findings.IPAddresses)
	assert.Equal(t, []string{"mx1.example.com"}, out.Findings.Subdomains)
}

func TestIPResolve_ThirdPartyMailHostIgnored(t *testing.T) {
	resolver := &fakeResolver{
		hosts: map[string][]string{
			"example.com":        {"93.184.216.34"},
			"aspmx.l.google.com": {"142.250.1.27"},
		},
		mx: map[string][]string{"example.com": {"aspmx.l.google.com"}},
	}

	out := NewIPResolve(resolver, time.Second, nil).Execute(context.Background(), "example.com")

	require.True(t, out.OK(), out.Cause())
	assert.Equal(t, []string{"93.184.216.34"}, out.Findings.IPAddresses)
	assert.Empty(t, out.Findings.Subdomains)
}

func TestIPResolve_ApexFailure(t *testing.T) {
	out := NewIPResolve(&fakeResolver{}, time.Second, nil).Execute(context.Background(), "example.com")

	require.False(t, out.OK())
	assert.True(t, errors.Is(out.Err, ErrNoSuchHost))
}

func TestCommandTool_Amass(t *testing.T) {
	run := &fakeRunner{output: map[string]string{"amass": "www.example.com\nblog.example.com\n"}}
	resolver := &fakeResolver{hosts: map[string][]string{"blog.example.com": {"10.1.1.1"}}}
	cfg := ToolConfig{Name: NameAmass, Command: "amass", Args: []string{"enum", "-passive", "-d", "{{DOMAIN}}"}}

	tool := NewCommandTool(cfg, run, func(domain string) parsers.OutputParser {
		return parsers.NewAmassParser(domain, nil)
	}, resolver, time.Second, nil)

	out := tool.Execute(context.Background(), "example.com")

	require.True(t, out.OK(), out.Cause())
	assert.Equal(t, []string{"www.example.com", "blog.example.com"}, out.Findings.Subdomains)
	assert.Equal(t, []string{"10.1.1.1"}, out.Findings.IPAddresses)
	assert.Equal(t, [][]string{{"amass", "enum", "-passive", "-d", "example.com"}}, run.calls)
}

func TestCommandTool_RunnerFailure(t *testing.T) {
	run := &fakeRunner{err: fmt.Errorf("invalid command: binary not found: whois")}
	cfg := ToolConfig{Name: NameWhois, Command: "whois", Args: []string{"{{DOMAIN}}"}}

	tool := NewCommandTool(cfg, run, func(string) parsers.OutputParser {
		return parsers.NewWhoisParser(nil)
	}, nil, time.Second, nil)

	out := tool.Execute(context.Background(), "example.com")

	require.False(t, out.OK())
	assert.Equal(t, "whois: invalid command: binary not found: whois", out.Cause())
}

func TestSocialScan(t *testing.T) {
	page := `<html><body>
<a href="https://twitter.com/example">Twitter</a>
<a href="https://www.linkedin.com/company/example/#about">LinkedIn</a>
<a href="https://facebook.com/">Facebook home</a>
<a href="https://github.com/example">GitHub</a>
<a href="https://blog.example.com/post">Blog</a>
<a href="mailto:press@example.com?subject=Hello">Press</a>
<a href="/contact">Contact</a>
</body></html>`

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	out := NewSocialScan(srv.Client(), "osintscan-test", srv.URL, time.Second, nil).Execute(context.Background(), "example.com")

	require.True(t, out.OK(), out.Cause())
	assert.Equal(t, "osintscan-test", gotUA)
	assert.Equal(t, []string{
		"https://twitter.com/example",
		"https://www.linkedin.com/company/example/",
		"https://github.com/example",
	}, out.Findings.SocialProfiles)
	assert.Equal(t, []string{"press@example.com"}, out.Findings.Emails)
}

func TestSocialScan_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	out := NewSocialScan(srv.Client(), "", srv.URL, time.Second, nil).Execute(context.Background(), "example.com")

	require.False(t, out.OK())
	assert.Contains(t, out.Cause(), "unexpected status 503")
}

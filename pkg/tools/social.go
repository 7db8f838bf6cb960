package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/publicsuffix"

	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
)

const maxPageBytes = 2 << 20

// socialSites are matched against the registrable domain of each link.
var socialSites = map[string]bool{
	"twitter.com":   true,
	"x.com":         true,
	"linkedin.com":  true,
	"facebook.com":  true,
	"instagram.com": true,
	"github.com":    true,
	"youtube.com":   true,
}

// SocialScan fetches the domain's home page and collects links to social
// network profiles plus mailto addresses.
type SocialScan struct {
	baseTool
	client    *http.Client
	userAgent string
	baseURL   string
}

func NewSocialScan(client *http.Client, userAgent, baseURL string, timeout time.Duration, log *logger.Logger) *SocialScan {
	if client == nil {
		client = &http.Client{}
	}
	return &SocialScan{
		baseTool:  newBase(NameSocial, timeout, log),
		client:    client,
		userAgent: userAgent,
		baseURL:   baseURL,
	}
}

func (t *SocialScan) Execute(ctx context.Context, domain string) findings.Outcome {
	return t.runBounded(ctx, domain, func(ctx context.Context) (findings.Findings, error) {
		target := t.baseURL
		if target == "" {
			target = "https://" + domain
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return findings.Findings{}, fmt.Errorf("build request: %w", err)
		}
		if t.userAgent != "" {
			req.Header.Set("User-Agent", t.userAgent)
		}

		resp, err := t.client.Do(req)
		if err != nil {
			return findings.Findings{}, fmt.Errorf("fetch %s: %w", target, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return findings.Findings{}, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
		}

		doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBytes))
		if err != nil {
			return findings.Findings{}, fmt.Errorf("parse %s: %w", target, err)
		}

		result := findings.Empty()
		for _, href := range collectLinks(doc) {
			classifyLink(href, &result)
		}
		return result, nil
	})
}

func collectLinks(n *html.Node) []string {
	var links []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href := getAttr(n, "href"); href != "" {
				links = append(links, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return links
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

// classifyLink adds href to the social or email category when it matches.
func classifyLink(href string, result *findings.Findings) {
	u, err := url.Parse(href)
	if err != nil {
		return
	}

	switch strings.ToLower(u.Scheme) {
	case "mailto":
		addr := u.Opaque
		if addr == "" {
			addr = u.Path
		}
		if addr, _, _ = strings.Cut(addr, "?"); strings.Contains(addr, "@") {
			result.Emails = append(result.Emails, addr)
		}
	case "http", "https":
		host := strings.ToLower(u.Hostname())
		registrable, err := publicsuffix.EffectiveTLDPlusOne(host)
		if err != nil || !socialSites[registrable] {
			return
		}
		if strings.Trim(u.Path, "/") == "" {
			return
		}
		u.Fragment = ""
		result.SocialProfiles = append(result.SocialProfiles, u.String())
	}
}

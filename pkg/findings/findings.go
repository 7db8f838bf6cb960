// Package findings holds the canonical result shape of a scan and the merge
// step that folds per-tool outcomes into it.
package findings

import (
	"errors"
	"fmt"
	"net/netip"
	"sort"
	"strings"

	apperrors "osintscan/pkg/errors"
)

// Findings is the deduplicated result of a scan. Every category is sorted.
type Findings struct {
	Subdomains     []string `json:"subdomains" yaml:"subdomains"`
	Emails         []string `json:"emails" yaml:"emails"`
	IPAddresses    []string `json:"ip_addresses" yaml:"ip_addresses"`
	SocialProfiles []string `json:"social_profiles" yaml:"social_profiles"`
}

// Empty returns Findings with non-nil, empty categories.
func Empty() Findings {
	return Findings{
		Subdomains:     []string{},
		Emails:         []string{},
		IPAddresses:    []string{},
		SocialProfiles: []string{},
	}
}

// Counts reports the size of each category keyed by its JSON name.
func (f Findings) Counts() map[string]int {
	return map[string]int{
		"subdomains":      len(f.Subdomains),
		"emails":          len(f.Emails),
		"ip_addresses":    len(f.IPAddresses),
		"social_profiles": len(f.SocialProfiles),
	}
}

// Total is the number of items across all categories.
func (f Findings) Total() int {
	return len(f.Subdomains) + len(f.Emails) + len(f.IPAddresses) + len(f.SocialProfiles)
}

// Outcome is what a single tool produced: findings or an error, never both.
type Outcome struct {
	Tool     string
	Findings Findings
	Err      error
}

func Succeeded(tool string, f Findings) Outcome {
	return Outcome{Tool: tool, Findings: f}
}

func Failed(tool string, err error) Outcome {
	if err == nil {
		err = errors.New("unknown failure")
	}
	return Outcome{Tool: tool, Err: err}
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Cause renders the failure as "<tool>: <err>". Empty for successes.
func (o Outcome) Cause() string {
	if o.Err == nil {
		return ""
	}
	err := o.Err
	var te *apperrors.ToolError
	if errors.As(err, &te) && te.Err != nil {
		err = te.Err
	}
	return fmt.Sprintf("%s: %v", o.Tool, err)
}

// Merge unions the findings of every successful outcome and collects the
// causes of failed ones in input order.
func Merge(outcomes []Outcome) (Findings, []string) {
	subdomains := newSet()
	emails := newSet()
	ips := newSet()
	social := newSet()
	errs := []string{}

	for _, o := range outcomes {
		if !o.OK() {
			errs = append(errs, o.Cause())
			continue
		}
		for _, s := range o.Findings.Subdomains {
			subdomains.add(NormalizeHost(s))
		}
		for _, e := range o.Findings.Emails {
			emails.add(strings.TrimSpace(e))
		}
		for _, ip := range o.Findings.IPAddresses {
			ips.add(NormalizeIP(ip))
		}
		for _, p := range o.Findings.SocialProfiles {
			social.add(strings.TrimSpace(p))
		}
	}

	return Findings{
		Subdomains:     subdomains.sorted(),
		Emails:         emails.sorted(),
		IPAddresses:    ips.sorted(),
		SocialProfiles: social.sorted(),
	}, errs
}

// NormalizeHost lower-cases a hostname and strips surrounding space and the
// trailing root dot.
func NormalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.TrimSuffix(h, ".")
}

// NormalizeIP returns the canonical text form of an address, or "" when the
// value does not parse.
func NormalizeIP(s string) string {
	addr, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return ""
	}
	return addr.Unmap().String()
}

type set map[string]struct{}

func newSet() set { return set{} }

func (s set) add(v string) {
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

func (s set) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

package tools

import (
	"fmt"
	"time"

	"osintscan/pkg/runner"
)

const (
	NameDNSProbe     = "dns_probe"
	NameAmass        = "amass"
	NameTheHarvester = "theharvester"
	NameWhois        = "whois"
	NameIPResolve    = "ip_resolve"
	NameSocial       = "social"
)

const DefaultTimeout = 60 * time.Second

// DefaultPrefixes are the labels probed by the dns_probe strategy.
var DefaultPrefixes = []string{"www", "mail", "ftp", "smtp", "pop", "api", "dev", "staging", "test"}

// ToolConfig describes how a subprocess strategy invokes its binary. Args may
// reference {{DOMAIN}}.
type ToolConfig struct {
	Name    string   `yaml:"name" mapstructure:"name"`
	Command string   `yaml:"command" mapstructure:"command"`
	Args    []string `yaml:"args" mapstructure:"args"`
}

// BuildArgs expands the argument template for the given domain.
func (tc *ToolConfig) BuildArgs(domain string) ([]string, error) {
	if tc.Command == "" {
		return nil, fmt.Errorf("tool %s has no command configured", tc.Name)
	}
	return runner.ExpandArgs(tc.Args, map[string]string{"DOMAIN": domain}), nil
}

// DefaultCommands returns the stock invocations of the subprocess strategies.
func DefaultCommands() []ToolConfig {
	return []ToolConfig{
		{Name: NameAmass, Command: "amass", Args: []string{"enum", "-passive", "-d", "{{DOMAIN}}"}},
		{Name: NameTheHarvester, Command: "theHarvester", Args: []string{"-d", "{{DOMAIN}}", "-b", "all"}},
		{Name: NameWhois, Command: "whois", Args: []string{"{{DOMAIN}}"}},
	}
}

// Config carries the settings the factory hands to each strategy.
type Config struct {
	Timeout         time.Duration
	DNSServer       string
	DNSTimeout      time.Duration
	DNSQPS          float64
	DNSConcurrency  int
	Prefixes        []string
	Commands        []ToolConfig
	SocialUserAgent string
	// SocialBaseURL replaces https://<domain> as the page fetched by the
	// social strategy when set.
	SocialBaseURL string
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.DNSTimeout <= 0 {
		c.DNSTimeout = 5 * time.Second
	}
	if c.DNSConcurrency <= 0 {
		c.DNSConcurrency = 10
	}
	if len(c.Prefixes) == 0 {
		c.Prefixes = DefaultPrefixes
	}
	if c.SocialUserAgent == "" {
		c.SocialUserAgent = "osintscan/1.0"
	}
	return c
}

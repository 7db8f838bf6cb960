package tools

import (
	"net/http"

	"osintscan/pkg/logger"
	"osintscan/pkg/parsers"
	"osintscan/pkg/runner"
)

// Factory builds the strategy set for a scan from a Selection.
type Factory struct {
	cfg        Config
	resolver   Resolver
	runner     CommandRunner
	registry   *SimpleToolRegistry
	httpClient *http.Client
	logger     *logger.Logger
}

// NewFactory wires the shared dependencies of all strategies. Commands in
// cfg override the stock invocations of the subprocess tools.
func NewFactory(cfg Config, resolver Resolver, cmdRunner CommandRunner, log *logger.Logger) *Factory {
	cfg = cfg.withDefaults()
	if log == nil {
		log = logger.NewNop()
	}
	if resolver == nil {
		resolver = NewDNSResolver(cfg.DNSServer, cfg.DNSTimeout, cfg.DNSQPS)
	}
	if cmdRunner == nil {
		cmdRunner = runner.NewSimpleRunner(log)
	}

	registry := NewSimpleToolRegistry()
	for _, c := range DefaultCommands() {
		registry.RegisterTool(c)
	}
	for _, c := range cfg.Commands {
		base, ok := registry.GetToolConfig(c.Name)
		if !ok {
			continue
		}
		if c.Command != "" {
			base.Command = c.Command
		}
		if len(c.Args) > 0 {
			base.Args = c.Args
		}
		registry.RegisterTool(*base)
	}

	return &Factory{
		cfg:        cfg,
		resolver:   resolver,
		runner:     cmdRunner,
		registry:   registry,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     log,
	}
}

// CreateTools returns one strategy per enabled family in a fixed order. The
// result is never nil.
func (f *Factory) CreateTools(domain string, sel *Selection) []Tool {
	tools := make([]Tool, 0, len(Families))

	for _, name := range sel.EnabledNames() {
		if t := f.build(name); t != nil {
			tools = append(tools, t)
		}
	}

	f.logger.WithFields(logger.Fields{
		"domain": domain,
		"tools":  len(tools),
	}).Debug("Created scan tools")
	return tools
}

func (f *Factory) build(name string) Tool {
	log := f.logger
	timeout := f.cfg.Timeout

	switch name {
	case NameDNSProbe:
		return NewDNSProbe(f.resolver, f.cfg.Prefixes, f.cfg.DNSConcurrency, timeout, log)
	case NameAmass:
		return f.command(name, func(domain string) parsers.OutputParser {
			return parsers.NewAmassParser(domain, log)
		}, f.resolver)
	case NameTheHarvester:
		return f.command(name, func(domain string) parsers.OutputParser {
			return parsers.NewHarvesterParser(domain, log)
		}, nil)
	case NameWhois:
		return f.command(name, func(string) parsers.OutputParser {
			return parsers.NewWhoisParser(log)
		}, nil)
	case NameIPResolve:
		return NewIPResolve(f.resolver, timeout, log)
	case NameSocial:
		return NewSocialScan(f.httpClient, f.cfg.SocialUserAgent, f.cfg.SocialBaseURL, timeout, log)
	}
	return nil
}

func (f *Factory) command(name string, parser func(string) parsers.OutputParser, resolver Resolver) Tool {
	cfg, ok := f.registry.GetToolConfig(name)
	if !ok {
		return nil
	}
	return NewCommandTool(*cfg, f.runner, parser, resolver, f.cfg.Timeout, f.logger)
}

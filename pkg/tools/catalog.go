package tools

// ToolInfo describes one tool family as offered to API clients.
type ToolInfo struct {
	Name    string   `json:"name" yaml:"name"`
	Toggle  string   `json:"toggle" yaml:"toggle"`
	Kind    string   `json:"kind" yaml:"kind"`
	Command string   `json:"command,omitempty" yaml:"command,omitempty"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty"`
}

const (
	KindDNS     = "dns"
	KindCommand = "command"
	KindHTTP    = "http"
)

// toggles maps each family to the Selection field that switches it.
var toggles = map[string]string{
	NameDNSProbe:     "use_subdomain_enum",
	NameAmass:        "use_passive_enum",
	NameTheHarvester: "use_harvester",
	NameWhois:        "use_whois",
	NameIPResolve:    "use_ip_resolve",
	NameSocial:       "use_social_scan",
}

// Catalog lists every family in execution order together with the command
// line the subprocess families currently run.
func (f *Factory) Catalog() []ToolInfo {
	infos := make([]ToolInfo, 0, len(Families))
	for _, name := range Families {
		info := ToolInfo{Name: name, Toggle: toggles[name]}
		switch name {
		case NameDNSProbe, NameIPResolve:
			info.Kind = KindDNS
		case NameSocial:
			info.Kind = KindHTTP
		default:
			info.Kind = KindCommand
			if cfg, ok := f.registry.GetToolConfig(name); ok {
				info.Command = cfg.Command
				info.Args = cfg.Args
			}
		}
		infos = append(infos, info)
	}
	return infos
}

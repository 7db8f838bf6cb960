package tools

// Selection toggles tool families for a scan. A nil Selection or a nil field
// means the family is enabled.
type Selection struct {
	UseSubdomainEnum *bool `json:"use_subdomain_enum,omitempty" yaml:"use_subdomain_enum,omitempty"`
	UsePassiveEnum   *bool `json:"use_passive_enum,omitempty" yaml:"use_passive_enum,omitempty"`
	UseHarvester     *bool `json:"use_harvester,omitempty" yaml:"use_harvester,omitempty"`
	UseWhois         *bool `json:"use_whois,omitempty" yaml:"use_whois,omitempty"`
	UseIPResolve     *bool `json:"use_ip_resolve,omitempty" yaml:"use_ip_resolve,omitempty"`
	UseSocialScan    *bool `json:"use_social_scan,omitempty" yaml:"use_social_scan,omitempty"`
}

// Bool returns a pointer to b.
func Bool(b bool) *bool {
	return &b
}

// NoneSelected disables every family.
func NoneSelected() *Selection {
	return &Selection{
		UseSubdomainEnum: Bool(false),
		UsePassiveEnum:   Bool(false),
		UseHarvester:     Bool(false),
		UseWhois:         Bool(false),
		UseIPResolve:     Bool(false),
		UseSocialScan:    Bool(false),
	}
}

func enabled(flag *bool) bool {
	return flag == nil || *flag
}

// Enabled reports whether the named family runs under this selection.
func (s *Selection) Enabled(name string) bool {
	if s == nil {
		return true
	}
	switch name {
	case NameDNSProbe:
		return enabled(s.UseSubdomainEnum)
	case NameAmass:
		return enabled(s.UsePassiveEnum)
	case NameTheHarvester:
		return enabled(s.UseHarvester)
	case NameWhois:
		return enabled(s.UseWhois)
	case NameIPResolve:
		return enabled(s.UseIPResolve)
	case NameSocial:
		return enabled(s.UseSocialScan)
	}
	return false
}

// EnabledNames lists the enabled families in execution order.
func (s *Selection) EnabledNames() []string {
	names := []string{}
	for _, n := range Families {
		if s.Enabled(n) {
			names = append(names, n)
		}
	}
	return names
}

// Families is the fixed order in which the factory creates strategies.
var Families = []string{NameDNSProbe, NameAmass, NameTheHarvester, NameWhois, NameIPResolve, NameSocial}

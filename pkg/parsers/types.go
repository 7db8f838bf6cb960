package parsers

import "osintscan/pkg/findings"

// OutputParser turns the raw stdout of an external tool into findings.
type OutputParser interface {
	Parse(output []byte) (findings.Findings, error)
}

// harvesterSection identifies which block of theHarvester output a line
// belongs to.
type harvesterSection int

const (
	sectionNone harvesterSection = iota
	sectionEmails
	sectionHosts
	sectionIPs
)

// harvesterJSON is the document theHarvester writes with -f <file>.json.
type harvesterJSON struct {
	Emails []string `json:"emails"`
	Hosts  []string `json:"hosts"`
	IPs    []string `json:"ips"`
}

package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/netip"
	"regexp"
	"strings"

	"osintscan/pkg/findings"
	"osintscan/pkg/logger"
)

var emailPattern = regexp.MustCompile(`[\w\.-]+@[\w\.-]+\.\w+`)

// AmassParser reads `amass enum` output. Both the plain one-name-per-line
// format and the graph format ("a.example.com (FQDN) --> a_record --> 1.2.3.4
// (IPAddress)") are accepted.
type AmassParser struct {
	domain string
	logger *logger.Logger
}

type HarvesterParser struct {
	domain string
	logger *logger.Logger
}

type WhoisParser struct {
	logger *logger.Logger
}

func NewAmassParser(domain string, log *logger.Logger) *AmassParser {
	return &AmassParser{domain: domain, logger: orNop(log)}
}

func NewHarvesterParser(domain string, log *logger.Logger) *HarvesterParser {
	return &HarvesterParser{domain: domain, logger: orNop(log)}
}

func NewWhoisParser(log *logger.Logger) *WhoisParser {
	return &WhoisParser{logger: orNop(log)}
}

func (p *AmassParser) Parse(output []byte) (findings.Findings, error) {
	result := findings.Empty()

	for _, line := range splitLines(output) {
		for _, token := range strings.Fields(string(line)) {
			token = strings.Trim(token, "(),")
			if ip := findings.NormalizeIP(token); ip != "" {
				result.IPAddresses = append(result.IPAddresses, ip)
				continue
			}
			if IsSubdomainOf(token, p.domain) {
				result.Subdomains = append(result.Subdomains, findings.NormalizeHost(token))
			}
		}
	}

	p.logger.WithFields(logger.Fields{
		"subdomains": len(result.Subdomains),
		"ips":        len(result.IPAddresses),
	}).Debug("Parsed amass output")
	return result, nil
}

// Parse accepts either theHarvester's JSON report or its console output.
func (p *HarvesterParser) Parse(output []byte) (findings.Findings, error) {
	trimmed := bytes.TrimSpace(output)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return p.parseJSON(trimmed)
	}

	result := findings.Empty()
	section := sectionNone

	for _, raw := range splitLines(output) {
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "---") {
			continue
		}

		if strings.HasPrefix(line, "[*]") {
			lower := strings.ToLower(line)
			switch {
			case strings.Contains(lower, "emails found"):
				section = sectionEmails
			case strings.Contains(lower, "hosts found"):
				section = sectionHosts
			case strings.Contains(lower, "ips found"):
				section = sectionIPs
			default:
				section = sectionNone
			}
			continue
		}

		switch section {
		case sectionEmails:
			result.Emails = append(result.Emails, ExtractEmails(line)...)
		case sectionHosts:
			p.addHost(&result, line)
		case sectionIPs:
			if ip := findings.NormalizeIP(line); ip != "" {
				result.IPAddresses = append(result.IPAddresses, ip)
			}
		}
	}

	p.logger.WithFields(logger.Fields{
		"subdomains": len(result.Subdomains),
		"emails":     len(result.Emails),
	}).Debug("Parsed theHarvester output")
	return result, nil
}

func (p *HarvesterParser) parseJSON(data []byte) (findings.Findings, error) {
	var doc harvesterJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return findings.Findings{}, fmt.Errorf("failed to parse theHarvester JSON output: %w", err)
	}

	result := findings.Empty()
	for _, e := range doc.Emails {
		result.Emails = append(result.Emails, strings.TrimSpace(e))
	}
	for _, h := range doc.Hosts {
		p.addHost(&result, h)
	}
	for _, ip := range doc.IPs {
		if n := findings.NormalizeIP(ip); n != "" {
			result.IPAddresses = append(result.IPAddresses, n)
		}
	}
	return result, nil
}

// addHost handles "host" and "host:ip" entries.
func (p *HarvesterParser) addHost(result *findings.Findings, entry string) {
	host, addr, _ := strings.Cut(strings.TrimSpace(entry), ":")
	if IsSubdomainOf(host, p.domain) {
		result.Subdomains = append(result.Subdomains, findings.NormalizeHost(host))
	}
	for _, a := range strings.Split(addr, ",") {
		if ip := findings.NormalizeIP(a); ip != "" {
			result.IPAddresses = append(result.IPAddresses, ip)
		}
	}
}

func (p *WhoisParser) Parse(output []byte) (findings.Findings, error) {
	result := findings.Empty()
	result.Emails = ExtractEmails(string(output))
	p.logger.WithFields(logger.Fields{"emails": len(result.Emails)}).Debug("Parsed whois output")
	return result, nil
}

// ExtractEmails returns every email-looking token in text, in order of
// appearance. Duplicates are left for the merge step.
func ExtractEmails(text string) []string {
	found := emailPattern.FindAllString(text, -1)
	if found == nil {
		return []string{}
	}
	return found
}

// IsSubdomainOf reports whether host sits strictly beneath domain. The apex
// itself is not a subdomain.
func IsSubdomainOf(host, domain string) bool {
	host = findings.NormalizeHost(host)
	domain = findings.NormalizeHost(domain)
	if host == "" || domain == "" {
		return false
	}
	if _, err := netip.ParseAddr(host); err == nil {
		return false
	}
	return strings.HasSuffix(host, "."+domain)
}

func orNop(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.NewNop()
	}
	return log
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, b := range data {
		if b == '\n' {
			if i > start {
				lines = append(lines, bytes.TrimRight(data[start:i], "\r"))
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

// Package output renders scan records for terminals and report files.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"osintscan/internal/models"
	"osintscan/internal/utils"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists the accepted values of --format.
var Formats = []string{FormatTable, FormatJSON, FormatYAML}

// ValidateFormat rejects anything not listed in Formats.
func ValidateFormat(format string) error {
	switch format {
	case FormatTable, FormatJSON, FormatYAML:
		return nil
	}
	return fmt.Errorf("unsupported output format %q (want one of %s)", format, strings.Join(Formats, ", "))
}

// Render writes one scan in the requested format.
func Render(w io.Writer, format string, scan *models.ScanRecord) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	withSummary := scan.WithSummary()

	switch format {
	case FormatJSON:
		return writeJSON(w, withSummary)
	case FormatYAML:
		return writeYAML(w, withSummary)
	}
	return renderScanTable(w, &withSummary)
}

// RenderList writes several scans; the table form is one row per scan.
func RenderList(w io.Writer, format string, scans []models.ScanRecord) error {
	if err := ValidateFormat(format); err != nil {
		return err
	}
	out := make([]models.ScanRecord, 0, len(scans))
	for _, s := range scans {
		out = append(out, s.WithSummary())
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, out)
	case FormatYAML:
		return writeYAML(w, out)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Scan ID", "Domain", "Status", "Started", "Duration", "Subdomains", "Emails", "IPs", "Errors")
	for _, s := range out {
		sub, emails, ips := "-", "-", "-"
		if s.Summary != nil {
			sub = strconv.Itoa(s.Summary.Subdomains)
			emails = strconv.Itoa(s.Summary.Emails)
			ips = strconv.Itoa(s.Summary.IPAddresses)
		}
		_ = table.Append([]string{
			s.ScanID,
			s.Domain,
			s.Status,
			s.StartTime.Format(time.RFC3339),
			duration(&s),
			sub,
			emails,
			ips,
			strconv.Itoa(len(s.ToolErrors)),
		})
	}
	return table.Render()
}

func renderScanTable(w io.Writer, scan *models.ScanRecord) error {
	fmt.Fprintf(w, "Scan %s  %s  [%s]  %s\n", scan.ScanID, scan.Domain, scan.Status, duration(scan))
	if scan.ErrorMessage != "" {
		fmt.Fprintf(w, "Error: %s\n", scan.ErrorMessage)
	}

	if scan.Findings != nil {
		table := tablewriter.NewWriter(w)
		table.Header("Category", "Value")
		for _, row := range []struct {
			category string
			values   []string
		}{
			{"subdomain", scan.Findings.Subdomains},
			{"email", scan.Findings.Emails},
			{"ip_address", scan.Findings.IPAddresses},
			{"social_profile", scan.Findings.SocialProfiles},
		} {
			for _, v := range row.values {
				_ = table.Append([]string{row.category, v})
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(scan.ToolErrors) > 0 {
		table := tablewriter.NewWriter(w)
		table.Header("Tool Errors")
		for _, e := range scan.ToolErrors {
			_ = table.Append([]string{e})
		}
		return table.Render()
	}
	return nil
}

func duration(scan *models.ScanRecord) string {
	if scan.EndTime == nil {
		return "-"
	}
	return scan.EndTime.Sub(scan.StartTime).Round(time.Millisecond).String()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(v)
}

// SaveReport writes scan into dir as <domain>_<timestamp>.<format> and
// returns the file path. Table reports are saved with a .txt extension.
func SaveReport(dir, format string, scan *models.ScanRecord) (string, error) {
	if err := ValidateFormat(format); err != nil {
		return "", err
	}
	if err := utils.EnsureReportDir(dir); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}

	ext := format
	if format == FormatTable {
		ext = "txt"
	}
	path := filepath.Join(dir, utils.ReportFileName(scan.Domain, scan.StartTime, ext))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report %s: %w", path, err)
	}
	defer f.Close()

	if err := Render(f, format, scan); err != nil {
		return "", err
	}
	return path, nil
}

package utils

import (
	"os"
	"strings"
	"time"
)

const maxReportStem = 100

// ReportFileName names a report as <domain>_<start>.<ext>. Anything outside
// [a-z0-9.-] in the domain becomes "_"; an empty domain becomes "unknown".
func ReportFileName(domain string, start time.Time, ext string) string {
	stem := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-':
			return r
		case r < 32 || r == 127:
			return -1
		}
		return '_'
	}, strings.ToLower(strings.TrimSpace(domain)))

	if stem == "" {
		stem = "unknown"
	}
	if len(stem) > maxReportStem {
		stem = stem[:maxReportStem]
	}
	return stem + "_" + start.Format("2006-01-02_15-04-05") + "." + ext
}

// EnsureReportDir creates dir and its parents for report output.
func EnsureReportDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

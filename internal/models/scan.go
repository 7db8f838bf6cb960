package models

import (
	"time"

	"osintscan/pkg/findings"
	"osintscan/pkg/tools"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// ScanRecord is the persisted state of one scan.
type ScanRecord struct {
	ScanID       string             `gorm:"column:scan_id;primaryKey;type:varchar(36)" json:"scan_id" yaml:"scan_id"`
	Domain       string             `gorm:"index;not null" json:"domain" yaml:"domain"`
	Status       string             `gorm:"index;not null" json:"status" yaml:"status"`
	StartTime    time.Time          `gorm:"not null" json:"start_time" yaml:"start_time"`
	EndTime      *time.Time         `json:"end_time" yaml:"end_time"`
	Findings     *findings.Findings `gorm:"serializer:json" json:"findings" yaml:"findings"`
	ToolErrors   []string           `gorm:"serializer:json" json:"tool_errors" yaml:"tool_errors"`
	ErrorMessage string             `json:"error_message,omitempty" yaml:"error_message,omitempty"`
	Options      *tools.Selection   `gorm:"serializer:json" json:"options,omitempty" yaml:"options,omitempty"`
	Summary      *Summary           `gorm:"-" json:"summary,omitempty" yaml:"summary,omitempty"`
}

func (ScanRecord) TableName() string {
	return "scans"
}

// Summary is the per-category item count shown next to the findings.
type Summary struct {
	Subdomains     int `json:"subdomains" yaml:"subdomains"`
	Emails         int `json:"emails" yaml:"emails"`
	IPAddresses    int `json:"ip_addresses" yaml:"ip_addresses"`
	SocialProfiles int `json:"social_profiles" yaml:"social_profiles"`
	Errors         int `json:"errors" yaml:"errors"`
}

// IsTerminal reports whether the scan has reached completed or failed.
func (s *ScanRecord) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// WithSummary returns a copy of the record with Summary filled from its
// findings. Records without findings get no summary.
func (s ScanRecord) WithSummary() ScanRecord {
	if s.Findings == nil {
		s.Summary = nil
		return s
	}
	s.Summary = &Summary{
		Subdomains:     len(s.Findings.Subdomains),
		Emails:         len(s.Findings.Emails),
		IPAddresses:    len(s.Findings.IPAddresses),
		SocialProfiles: len(s.Findings.SocialProfiles),
		Errors:         len(s.ToolErrors),
	}
	return s
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *ScanRecord) Clone() *ScanRecord {
	c := *s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if s.Findings != nil {
		f := findings.Findings{
			Subdomains:     append([]string(nil), s.Findings.Subdomains...),
			Emails:         append([]string(nil), s.Findings.Emails...),
			IPAddresses:    append([]string(nil), s.Findings.IPAddresses...),
			SocialProfiles: append([]string(nil), s.Findings.SocialProfiles...),
		}
		c.Findings = &f
	}
	if s.ToolErrors != nil {
		c.ToolErrors = append([]string{}, s.ToolErrors...)
	}
	if s.Options != nil {
		o := *s.Options
		c.Options = &o
	}
	if s.Summary != nil {
		sum := *s.Summary
		c.Summary = &sum
	}
	return &c
}

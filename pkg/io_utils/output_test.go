package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"osintscan/internal/models"
	"osintscan/pkg/findings"
)

func sampleScan() *models.ScanRecord {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Second)
	return &models.ScanRecord{
		ScanID:    "id-1",
		Domain:    "example.com",
		Status:    models.StatusCompleted,
		StartTime: start,
		EndTime:   &end,
		Findings: &findings.Findings{
			Subdomains:     []string{"mail.example.com", "www.example.com"},
			Emails:         []string{"admin@example.com"},
			IPAddresses:    []string{"1.1.1.1"},
			SocialProfiles: []string{},
		},
		ToolErrors: []string{"whois: exit status 1"},
	}
}

func TestRenderJSONIncludesSummary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sampleScan()))

	var got models.ScanRecord
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.NotNil(t, got.Summary)
	assert.Equal(t, 2, got.Summary.Subdomains)
	assert.Equal(t, 1, got.Summary.Errors)
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, sampleScan()))

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "example.com", got["domain"])
	assert.Contains(t, buf.String(), "ip_addresses:")
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatTable, sampleScan()))

	out := buf.String()
	assert.Contains(t, out, "www.example.com")
	assert.Contains(t, out, "admin@example.com")
	assert.Contains(t, out, "whois: exit status 1")
	assert.Contains(t, out, "[completed]")
}

func TestRenderListTable(t *testing.T) {
	pending := models.ScanRecord{ScanID: "id-2", Domain: "other.example.org", Status: models.StatusPending}

	var buf bytes.Buffer
	require.NoError(t, RenderList(&buf, FormatTable, []models.ScanRecord{*sampleScan(), pending}))

	out := buf.String()
	assert.Contains(t, out, "id-1")
	assert.Contains(t, out, "other.example.org")
	assert.Equal(t, 1, strings.Count(out, "pending"))
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	err := Render(&bytes.Buffer{}, "csv", sampleScan())
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")

	path, err := SaveReport(dir, FormatJSON, sampleScan())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "example.com_2024-03-01_12-00-00.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scan_id": "id-1"`)
}

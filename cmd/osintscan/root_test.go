package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osintscan/internal/models"
)

func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScanCommandWithEveryToolDisabled(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "scan", "-d", "example.com", "--format", "json",
		"--no-subdomain-enum", "--no-passive-enum", "--no-harvester",
		"--no-whois", "--no-ip-resolve", "--no-social")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tools selected")

	var scan models.ScanRecord
	require.NoError(t, json.Unmarshal([]byte(stdout), &scan))
	assert.Equal(t, models.StatusFailed, scan.Status)
	assert.Equal(t, "example.com", scan.Domain)
	require.NotNil(t, scan.Options)
	assert.Empty(t, scan.Options.EnabledNames())
}

func TestScanCommandRejectsInvalidDomain(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "scan", "-d", "localhost", "--no-social")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must contain a dot")
	assert.Empty(t, stdout)
}

func TestScanCommandRejectsUnknownFormat(t *testing.T) {
	isolate(t)

	_, _, err := execute(t, "scan", "-d", "example.com", "--format", "csv")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestScansListFromMemoryStore(t *testing.T) {
	isolate(t)
	t.Setenv("OSINTSCAN_DATABASE_DRIVER", "memory")

	stdout, _, err := execute(t, "scans", "list", "--format", "json")

	require.NoError(t, err)
	assert.JSONEq(t, `[]`, stdout)
}

func TestScansGetMissing(t *testing.T) {
	isolate(t)
	t.Setenv("OSINTSCAN_DATABASE_DRIVER", "memory")

	_, _, err := execute(t, "scans", "get", "does-not-exist")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan not found")
}

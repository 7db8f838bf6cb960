package notification

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osintscan/internal/models"
	apperrors "osintscan/pkg/errors"
	"osintscan/pkg/findings"
)

type fakeSender struct {
	channel string
	embed   *discordgo.MessageEmbed
	err     error
}

func (f *fakeSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channel = channelID
	f.embed = embed
	return &discordgo.Message{}, f.err
}

func completedScan() *models.ScanRecord {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Second)
	return &models.ScanRecord{
		ScanID:    "id-1",
		Domain:    "example.com",
		Status:    models.StatusCompleted,
		StartTime: start,
		EndTime:   &end,
		Findings: &findings.Findings{
			Subdomains:  []string{"a.example.com", "b.example.com"},
			IPAddresses: []string{"1.1.1.1"},
		},
		ToolErrors: []string{"whois: exit status 1"},
	}
}

func TestBuildScanMessage_Completed(t *testing.T) {
	msg := BuildScanMessage(completedScan())

	assert.Equal(t, "Scan completed: example.com", msg.Title)
	assert.Equal(t, "medium", msg.Severity)
	assert.Contains(t, msg.Description, "whois: exit status 1")
	assert.Equal(t, "2", msg.Fields["Subdomains"])
	assert.Equal(t, "1", msg.Fields["IP Addresses"])
	assert.Equal(t, "1m30s", msg.Fields["Duration"])
}

func TestBuildScanMessage_Failed(t *testing.T) {
	end := time.Now()
	msg := BuildScanMessage(&models.ScanRecord{
		ScanID:       "id-2",
		Domain:       "example.com",
		Status:       models.StatusFailed,
		StartTime:    end.Add(-time.Second),
		EndTime:      &end,
		ErrorMessage: "no tools selected for the scan",
	})

	assert.Equal(t, "high", msg.Severity)
	assert.Equal(t, "no tools selected for the scan", msg.Description)
	_, hasCounts := msg.Fields["Subdomains"]
	assert.False(t, hasCounts)
}

func TestNotifyScanSendsSortedEmbed(t *testing.T) {
	sender := &fakeSender{}
	client := &NotificationClient{sg: sender, channelID: "chan-1"}

	require.NoError(t, client.NotifyScan(completedScan()))

	assert.Equal(t, "chan-1", sender.channel)
	require.NotNil(t, sender.embed)
	assert.Equal(t, 0xFF8C00, sender.embed.Color)
	names := make([]string, 0, len(sender.embed.Fields))
	for _, f := range sender.embed.Fields {
		names = append(names, f.Name)
	}
	assert.IsIncreasing(t, names)
}

func TestNewNotificationClientRequiresCredentials(t *testing.T) {
	_, err := NewNotificationClient("", "chan")
	assert.True(t, errors.Is(err, apperrors.ErrNotificationNotConfigured))

	var nilClient *NotificationClient
	assert.True(t, errors.Is(nilClient.Send(Message{}), apperrors.ErrNotificationNotConfigured))
}

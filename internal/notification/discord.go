package notification

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"osintscan/internal/models"
	apperrors "osintscan/pkg/errors"
)

// Notifier is told about every scan that reaches a terminal status.
type Notifier interface {
	NotifyScan(scan *models.ScanRecord) error
}

type Message struct {
	Title       string
	Description string
	Severity    string
	Fields      map[string]string
	Timestamp   time.Time
}

// embedSender is the part of *discordgo.Session the client uses.
type embedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type NotificationClient struct {
	sg        embedSender
	session   *discordgo.Session
	channelID string
}

// NewNotificationClient creates a bot session for posting embeds to
// channelID. Both values are required.
func NewNotificationClient(token, channelID string) (*NotificationClient, error) {
	if token == "" || channelID == "" {
		return nil, apperrors.ErrNotificationNotConfigured
	}

	sg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	return &NotificationClient{sg: sg, session: sg, channelID: channelID}, nil
}

func (c *NotificationClient) getSeverityColor(severity string) int {
	switch severity {
	case "high":
		return 0xFF0000
	case "medium":
		return 0xFF8C00
	case "info":
		return 0x00BFFF
	case "success":
		return 0x2ECC71
	default:
		return 0x808080
	}
}

func (c *NotificationClient) Send(msg Message) error {
	if c == nil || c.sg == nil {
		return apperrors.ErrNotificationNotConfigured
	}
	_, err := c.sg.ChannelMessageSendEmbed(c.channelID, c.buildEmbed(msg))
	return err
}

// NotifyScan posts a summary of a finished scan.
func (c *NotificationClient) NotifyScan(scan *models.ScanRecord) error {
	return c.Send(BuildScanMessage(scan))
}

func (c *NotificationClient) buildEmbed(msg Message) *discordgo.MessageEmbed {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	embed := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       c.getSeverityColor(msg.Severity),
		Timestamp:   msg.Timestamp.Format(time.RFC3339),
	}

	if len(msg.Fields) > 0 {
		keys := make([]string, 0, len(msg.Fields))
		for k := range msg.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fields := make([]*discordgo.MessageEmbedField, 0, len(keys))
		for _, key := range keys {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   key,
				Value:  msg.Fields[key],
				Inline: true,
			})
		}
		embed.Fields = fields
	}
	return embed
}

func (c *NotificationClient) Close() error {
	if c != nil && c.session != nil {
		return c.session.Close()
	}
	return nil
}

// BuildScanMessage renders a scan record as a notification message.
func BuildScanMessage(scan *models.ScanRecord) Message {
	msg := Message{
		Title:  fmt.Sprintf("Scan %s: %s", scan.Status, scan.Domain),
		Fields: map[string]string{"Scan ID": scan.ScanID},
	}
	if scan.EndTime != nil {
		msg.Timestamp = *scan.EndTime
		msg.Fields["Duration"] = scan.EndTime.Sub(scan.StartTime).Round(time.Second).String()
	}

	switch scan.Status {
	case models.StatusFailed:
		msg.Severity = "high"
		msg.Description = scan.ErrorMessage
	case models.StatusCompleted:
		msg.Severity = "success"
		if len(scan.ToolErrors) > 0 {
			msg.Severity = "medium"
			msg.Description = "Tool errors:\n" + strings.Join(scan.ToolErrors, "\n")
		}
		if scan.Findings != nil {
			msg.Fields["Subdomains"] = strconv.Itoa(len(scan.Findings.Subdomains))
			msg.Fields["Emails"] = strconv.Itoa(len(scan.Findings.Emails))
			msg.Fields["IP Addresses"] = strconv.Itoa(len(scan.Findings.IPAddresses))
			msg.Fields["Social Profiles"] = strconv.Itoa(len(scan.Findings.SocialProfiles))
		}
	default:
		msg.Severity = "info"
	}
	return msg
}

package alerts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/driftwatch/driftwatch/db"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/models"
	"github.com/driftwatch/driftwatch/internal/types"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorRed   = 16711680 // #FF0000 - invariants violated
	ColorGreen = 65280    // #00FF00 - invariants restored

	Username = "Driftwatch"

	// Webhook embeds cap out; long groups list the failing checks first.
	maxCheckFields = 10
)

// Dispatcher sends group evaluation notifications to the owning project's
// configured Discord and Slack webhooks.
type Dispatcher struct {
	logger *zap.Logger
}

func NewDispatcher(logger *zap.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

// Dispatch notifies the project's channels about the group's latest
// evaluation. Failures are logged and swallowed; alerting never affects
// evaluation.
func (d *Dispatcher) Dispatch(group models.InvariantGroup, results []invariants.CheckResult) {
	var project models.Project

	if err := db.DB.First(&project, group.ProjectID).Error; err != nil {
		d.logger.Error("failed to load project for alert",
			zap.Uint("group_id", group.ID),
			zap.Error(err),
		)
		return
	}

	status := types.StatusPass
	failed := 0

	for _, result := range results {
		if result.Status != types.StatusPass {
			status = types.StatusFail
			failed++
		}
	}

	if project.DiscordWebhook != "" {
		if err := sendDiscord(project.DiscordWebhook, project, group, status, failed, results); err != nil {
			d.logger.Error("discord webhook failed", zap.Uint("group_id", group.ID), zap.Error(err))
		}
	}

	if project.SlackWebhook != "" {
		if err := sendSlack(project.SlackWebhook, project, group, status, failed, results); err != nil {
			d.logger.Error("slack webhook failed", zap.Uint("group_id", group.ID), zap.Error(err))
		}
	}
}

// orderedFields lists failing checks first so they survive the field cap.
func orderedFields(results []invariants.CheckResult) []invariants.CheckResult {
	ordered := make([]invariants.CheckResult, 0, len(results))

	for _, result := range results {
		if result.Status != types.StatusPass {
			ordered = append(ordered, result)
		}
	}

	for _, result := range results {
		if result.Status == types.StatusPass {
			ordered = append(ordered, result)
		}
	}

	if len(ordered) > maxCheckFields {
		ordered = ordered[:maxCheckFields]
	}

	return ordered
}

func checkSummary(result invariants.CheckResult) string {
	if result.Status == types.StatusPass {
		return result.Observed
	}

	summary := result.Reason
	if result.Observed != "" {
		summary = fmt.Sprintf("%s - %s", result.Observed, result.Reason)
	}

	return summary
}

func sendDiscord(webhookURL string, project models.Project, group models.InvariantGroup, status string, failed int, results []invariants.CheckResult) error {
	title := "✅ **INVARIANTS RESTORED**"
	description := fmt.Sprintf("**%s** is back to a passing state.", group.Name)
	color := ColorGreen

	if status == types.StatusFail {
		title = "🚨 **INVARIANT VIOLATION**"
		description = fmt.Sprintf("**%s** has %d failing check(s).", group.Name, failed)
		color = ColorRed
	}

	fields := []DiscordWebhookField{
		{Name: "Group", Value: group.Name, Inline: true},
		{Name: "Status", Value: "**" + status + "**", Inline: true},
		{Name: "Interval", Value: fmt.Sprintf("%d minutes", group.IntervalMinutes), Inline: true},
	}

	for _, result := range orderedFields(results) {
		icon := "✅"
		if result.Status != types.StatusPass {
			icon = "❌"
		}

		fields = append(fields, DiscordWebhookField{
			Name:   fmt.Sprintf("%s Check #%d", icon, result.CheckID),
			Value:  checkSummary(result),
			Inline: false,
		})
	}

	payload := DiscordWebhookRequest{
		Username: Username,
		Embeds: []DiscordEmbed{
			{
				Title:       title,
				Description: description,
				Color:       color,
				Fields:      fields,
				Footer: &DiscordFooter{
					Text: fmt.Sprintf("Project: %s | Driftwatch", project.Name),
				},
				Timestamp: time.Now().Format(time.RFC3339),
			},
		},
	}

	return postWebhook(webhookURL, payload, "Discord")
}

func sendSlack(webhookURL string, project models.Project, group models.InvariantGroup, status string, failed int, results []invariants.CheckResult) error {
	text := ":white_check_mark: *INVARIANTS RESTORED*"
	color := "good"
	title := fmt.Sprintf("Group '%s' is back to a passing state", group.Name)

	if status == types.StatusFail {
		text = ":rotating_light: *INVARIANT VIOLATION*"
		color = "danger"
		title = fmt.Sprintf("Group '%s' has %d failing check(s)", group.Name, failed)
	}

	fields := []SlackField{
		{Title: "Group", Value: group.Name, Short: true},
		{Title: "Status", Value: status, Short: true},
		{Title: "Interval", Value: fmt.Sprintf("%d minutes", group.IntervalMinutes), Short: true},
	}

	for _, result := range orderedFields(results) {
		fields = append(fields, SlackField{
			Title: fmt.Sprintf("Check #%d [%s]", result.CheckID, result.Status),
			Value: checkSummary(result),
			Short: false,
		})
	}

	payload := SlackWebhookRequest{
		Username:  Username,
		IconEmoji: ":eye:",
		Text:      text,
		Attachments: []SlackAttachment{
			{
				Color:     color,
				Title:     title,
				Fields:    fields,
				Footer:    fmt.Sprintf("Project: %s", project.Name),
				Timestamp: time.Now().Unix(),
			},
		},
	}

	return postWebhook(webhookURL, payload, "Slack")
}

func postWebhook(webhookURL string, payload any, channel string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", channel, err)
	}

	resp, err := http.Post(webhookURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send %s webhook: %w", channel, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s webhook returned status %d", channel, resp.StatusCode)
	}

	return nil
}

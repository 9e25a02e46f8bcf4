package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coffee-focus/coffeefocus/internal/models"
)

const (
	WebhookUsername = "Coffee Focus"
	WebhookTimeout  = 10 * time.Second

	roastColor    = 0x6B3A1E
	roastColorHex = "#6B3A1E"
)

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordMessage struct {
	Username string         `json:"username"`
	Embeds   []discordEmbed `json:"embeds"`
}

type slackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type slackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []slackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type slackMessage struct {
	Username    string            `json:"username"`
	IconEmoji   string            `json:"icon_emoji,omitempty"`
	Text        string            `json:"text"`
	Attachments []slackAttachment `json:"attachments"`
}

// noteRecap is what both channels render for a new project note.
type noteRecap struct {
	team    string
	project string
	author  string
	body    string
	at      time.Time
}

func (r noteRecap) discord() discordMessage {
	return discordMessage{
		Username: WebhookUsername,
		Embeds: []discordEmbed{{
			Title:       fmt.Sprintf("☕ New note on %s", r.project),
			Description: r.body,
			Color:       roastColor,
			Fields: []discordField{
				{Name: "Project", Value: r.project, Inline: true},
				{Name: "Author", Value: r.author, Inline: true},
			},
			Footer:    &discordFooter{Text: fmt.Sprintf("Team: %s | %s", r.team, WebhookUsername)},
			Timestamp: r.at.UTC().Format(time.RFC3339),
		}},
	}
}

func (r noteRecap) slack() slackMessage {
	return slackMessage{
		Username:  WebhookUsername,
		IconEmoji: ":coffee:",
		Text:      fmt.Sprintf(":coffee: *New note on %s*", r.project),
		Attachments: []slackAttachment{{
			Color: roastColorHex,
			Title: r.project,
			Text:  r.body,
			Fields: []slackField{
				{Title: "Author", Value: r.author, Short: true},
				{Title: "Team", Value: r.team, Short: true},
			},
			Footer:    WebhookUsername,
			Timestamp: r.at.Unix(),
		}},
	}
}

var webhookClient = &http.Client{Timeout: WebhookTimeout}

func HasWebhooks(team models.Team) bool {
	return team.DiscordWebhook != "" || team.SlackWebhook != ""
}

// SendProjectNoteNotification posts a recap of note to every channel the team configured.
// Each channel is attempted even when another fails; the failures are joined.
func SendProjectNoteNotification(ctx context.Context, team models.Team, project models.Project, note models.ProjectNote) error {
	recap := noteRecap{
		team:    team.Name,
		project: project.Name,
		author:  note.Author,
		body:    note.Body,
		at:      note.CreatedAt,
	}

	var errs []error
	if team.DiscordWebhook != "" {
		if err := postJSON(ctx, team.DiscordWebhook, recap.discord()); err != nil {
			errs = append(errs, fmt.Errorf("discord: %w", err))
		}
	}

	if team.SlackWebhook != "" {
		if err := postJSON(ctx, team.SlackWebhook, recap.slack()); err != nil {
			errs = append(errs, fmt.Errorf("slack: %w", err))
		}
	}

	return errors.Join(errs...)
}

func postJSON(ctx context.Context, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := webhookClient.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

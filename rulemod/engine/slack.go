package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/remora-mod/remora/rulemod/catalog"
)

// Optional ops-channel notification for each completed removal.
type Notifier interface {
	SendRemoval(ctx context.Context, c *EventContext, reason *catalog.RemovalReason) error
}

type SlackNotifier struct {
	SlackWebhookURL string
}

var _ Notifier = (*SlackNotifier)(nil)

func (n *SlackNotifier) SendRemoval(ctx context.Context, c *EventContext, reason *catalog.RemovalReason) error {
	msg := "🗑️ Rule-triggered post removal 🗑️\n"
	msg += fmt.Sprintf("r/%s: <https://reddit.com%s|post> `%s` removed by `%s`\n", c.Subreddit, c.Post.Permalink, c.Post.ID, c.Username)
	msg += fmt.Sprintf("Rule: `%s`\n", reason.Title)
	c.Logger.Debug("sending slack notification")
	return n.sendSlackMsg(ctx, msg)
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := http.DefaultClient
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}

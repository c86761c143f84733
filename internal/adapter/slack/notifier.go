package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Notifier posts best-effort alerts to a Slack webhook. A missing webhook URL
// disables it; callers treat every failure as non-fatal.
type Notifier struct {
	webhookURL  string
	serviceName string
	httpClient  *http.Client
}

func NewNotifier(webhookURL, serviceName string) *Notifier {
	return &Notifier{
		webhookURL:  webhookURL,
		serviceName: serviceName,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) Notify(ctx context.Context, priority, title, message string) error {
	return n.NotifyTimed(ctx, priority, title, message, 0)
}

// NotifyTimed carries the processing time as its own payload field alongside
// the message text. A zero elapsed omits the field.
func (n *Notifier) NotifyTimed(ctx context.Context, priority, title, message string, elapsed time.Duration) error {
	if n.webhookURL == "" {
		slog.WarnContext(ctx, "slack webhook not configured, notification skipped", "title", title)
		return nil
	}

	emoji, color := ":information_source:", "#439FE0"
	switch priority {
	case PriorityHigh, PriorityMedium:
		emoji, color = ":alert:", "#FF0000"
	case PriorityLow:
		emoji, color = ":white_check_mark:", "#36A64F"
	}

	payload := map[string]interface{}{
		"blocks": []map[string]interface{}{
			{
				"type": "section",
				"text": map[string]string{
					"type": "mrkdwn",
					"text": fmt.Sprintf("%s *%s*\n*%s*\n%s\n*Priority:* %s",
						emoji, n.serviceName, title, message, priority),
				},
			},
		},
		"attachments": []map[string]string{
			{"color": color},
		},
	}
	if elapsed > 0 {
		payload["time_taken"] = elapsed.Seconds()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("slack notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack notification: unexpected status %d", resp.StatusCode)
	}
	return nil
}

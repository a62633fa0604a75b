package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"smart-support-router/internal/config"
	"smart-support-router/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Notifier = (*SlackNotifier)(nil)

// SlackNotifier posts high-urgency alerts to an incoming-webhook URL.
// Failures are returned to the caller for logging only; nothing in the
// pipeline retries or depends on the outcome.
type SlackNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewSlackNotifier(cfg *config.NotifyConfig) (*SlackNotifier, error) {
	if cfg.SlackWebhookURL == "" {
		return nil, errors.New("slack webhook url empty")
	}
	return &SlackNotifier{
		webhookURL: cfg.SlackWebhookURL,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (n *SlackNotifier) Notify(ctx context.Context, alert adapter.Alert) error {
	payload := struct {
		Text string `json:"text"`
	}{Text: buildMessage(alert)}

	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("slack webhook http %d", resp.StatusCode)
	}
	return nil
}

func buildMessage(alert adapter.Alert) string {
	snippet := "(no content)"
	if alert.Text != "" {
		snippet = strings.ReplaceAll(alert.Text, "\n", " ")
		if r := []rune(snippet); len(r) > 200 {
			snippet = string(r[:200])
		}
	}
	return fmt.Sprintf(
		":rotating_light: *High-urgency ticket* (S=%.2f)\n*ID:* `%s` | *Category:* %s\n*Preview:* %s",
		alert.UrgencyScore, alert.TicketID, alert.Category, snippet,
	)
}

var _ adapter.Notifier = (*NoopNotifier)(nil)

// NoopNotifier stands in when no webhook is configured: it only logs what
// would have fired.
type NoopNotifier struct {
	log *zerolog.Logger
}

func NewNoopNotifier(logger *zerolog.Logger) *NoopNotifier {
	l := logger.With().Str("component", "NoopNotifier").Logger()
	return &NoopNotifier{log: &l}
}

func (n *NoopNotifier) Notify(_ context.Context, alert adapter.Alert) error {
	n.log.Info().
		Str("ticket_id", alert.TicketID).
		Float64("urgency_score", alert.UrgencyScore).
		Msg("webhook not configured, high-urgency notification logged only")
	return nil
}

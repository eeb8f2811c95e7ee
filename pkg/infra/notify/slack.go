package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/tmr232/cfgbot/pkg/domain/model"
)

// SlackNotifier reports failed post runs to a Slack incoming webhook.
// Serve mode uses it so unattended failures reach a human; one-shot CI
// runs rely on the workflow status instead.
type SlackNotifier struct {
	webhookURL string
}

// NewSlack creates a notifier for the given incoming webhook URL.
func NewSlack(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// NotifyFailure posts a short failure summary.
func (n *SlackNotifier) NotifyFailure(ctx context.Context, run *model.PostRun) error {
	msg := &slack.WebhookMessage{
		Text: fmt.Sprintf("cfgbot run %s failed after %s: %v",
			run.ID, run.Duration().Round(time.Second), run.Err),
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification")
	}
	return nil
}

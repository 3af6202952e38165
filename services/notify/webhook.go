package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// WebhookNotifier posts graded scores to an external gradebook.
type WebhookNotifier struct {
	url    string
	client *resty.Client
}

func NewWebhookNotifier(url string) *WebhookNotifier {
	client := resty.New().
		SetTimeout(4 * time.Second).
		SetRetryCount(1).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json")
	return &WebhookNotifier{url: url, client: client}
}

func (n *WebhookNotifier) SubmissionGraded(ctx context.Context, ev SubmissionGraded) error {
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(ev).
		Post(n.url)
	if err != nil {
		return fmt.Errorf("score webhook: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("score webhook: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func (n *WebhookNotifier) CertificateIssued(context.Context, CertificateIssued) error {
	return nil
}

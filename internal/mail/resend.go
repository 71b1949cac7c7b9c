package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
)

const (
	defaultTimeout       = 15 * time.Second
	defaultResendBaseURL = "https://api.resend.com/"
)

// ResendClient sends login codes and contact notifications through the Resend API.
type ResendClient struct {
	client *resend.Client
	from   string
}

// NewResendClient returns a client for apiKey sending as from. baseURL overrides the API host (tests, proxies).
func NewResendClient(apiKey, baseURL, from string) (*ResendClient, error) {
	if apiKey == "" {
		return nil, errors.New("mail: resend API key not configured")
	}
	client := resend.NewCustomClient(&http.Client{Timeout: defaultTimeout}, apiKey)
	if baseURL == "" {
		baseURL = defaultResendBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("mail: invalid RESEND_BASE_URL: %w", err)
	}
	client.BaseURL = u
	return &ResendClient{client: client, from: from}, nil
}

// Send delivers msg as one email. API errors carry Resend's message.
func (c *ResendClient) Send(ctx context.Context, msg Message) error {
	_, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("mail: resend send to %s: %w", msg.To, err)
	}
	return nil
}

package sesmail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// sesAPI is the minimal SES interface required by Client.
type sesAPI interface {
	SendEmail(ctx context.Context, in *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Client sends plain-text mail from a verified source address.
type Client struct {
	api    sesAPI
	source string
}

func New(api sesAPI, source string) (*Client, error) {
	if api == nil {
		return nil, errors.New("sesmail: api must not be nil")
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("sesmail: source address must not be empty")
	}
	return &Client{api: api, source: source}, nil
}

// Send delivers one message to a single recipient and returns the SES message id.
func (c *Client) Send(ctx context.Context, to, subject, body string) (string, error) {
	to = strings.TrimSpace(to)
	if to == "" {
		return "", errors.New("sesmail: recipient is required")
	}
	out, err := c.api.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(c.source),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sesmail: send email to %s: %w", to, err)
	}
	if out == nil || out.MessageId == nil {
		return "", errors.New("sesmail: send email returned no message id")
	}
	return *out.MessageId, nil
}

package sqsqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"dining-concierge/internal/domain"
)

const (
	// SQS limits for a single ReceiveMessage call.
	maxBatchSize  = 10
	maxWaitTime   = 20 * time.Second
	maxVisibility = 12 * time.Hour

	reasonAttribute = "reason"
)

// sqsAPI is the minimal SQS interface required by Client.
// *sqs.Client from aws-sdk-go-v2 satisfies this interface.
type sqsAPI interface {
	SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Client is one queue. The orchestrator enqueues on it, the worker receives
// and deletes, and a second Client on the dead-letter URL forwards.
type Client struct {
	api      sqsAPI
	queueURL string
}

func New(api sqsAPI, queueURL string) (*Client, error) {
	if api == nil {
		return nil, errors.New("sqsqueue: api must not be nil")
	}
	queueURL = strings.TrimSpace(queueURL)
	if queueURL == "" {
		return nil, errors.New("sqsqueue: queue url must not be empty")
	}
	return &Client{api: api, queueURL: queueURL}, nil
}

// Enqueue publishes req as a JSON body and returns the SQS message id.
func (c *Client) Enqueue(ctx context.Context, req domain.DiningRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("sqsqueue: marshal request: %w", err)
	}
	return c.send(ctx, string(body), nil)
}

// Forward republishes a raw body, tagged with why it could not be handled.
func (c *Client) Forward(ctx context.Context, body, reason string) error {
	attrs := map[string]types.MessageAttributeValue{
		reasonAttribute: {
			DataType:    aws.String("String"),
			StringValue: aws.String(reason),
		},
	}
	if _, err := c.send(ctx, body, attrs); err != nil {
		return err
	}
	return nil
}

func (c *Client) send(ctx context.Context, body string, attrs map[string]types.MessageAttributeValue) (string, error) {
	out, err := c.api.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(c.queueURL),
		MessageBody:       aws.String(body),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", fmt.Errorf("sqsqueue: send message: %w", err)
	}
	if out == nil || out.MessageId == nil {
		return "", errors.New("sqsqueue: send message returned no id")
	}
	return *out.MessageId, nil
}

// Receive fetches up to opts.MaxMessages messages, clamped to the SQS limits.
func (c *Client) Receive(ctx context.Context, opts domain.ReceiveOptions) ([]domain.QueueMessage, error) {
	out, err := c.api.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: int32(clamp(opts.MaxMessages, 1, maxBatchSize)),
		WaitTimeSeconds:     seconds(opts.WaitTime, maxWaitTime),
		VisibilityTimeout:   seconds(opts.VisibilityTimeout, maxVisibility),
	})
	if err != nil {
		return nil, fmt.Errorf("sqsqueue: receive messages: %w", err)
	}
	if out == nil {
		return nil, nil
	}

	msgs := make([]domain.QueueMessage, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, domain.QueueMessage{
			ID:            aws.ToString(m.MessageId),
			Body:          aws.ToString(m.Body),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

func (c *Client) Delete(ctx context.Context, receiptHandle string) error {
	if receiptHandle == "" {
		return errors.New("sqsqueue: receipt handle is required")
	}
	_, err := c.api.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("sqsqueue: delete message: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

func seconds(d, limit time.Duration) int32 {
	if d <= 0 {
		return 0
	}
	return int32(min(d, limit) / time.Second)
}

package domain

import "time"

// QueueMessage is a received, not yet acknowledged, queue message.
type QueueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// ReceiveOptions bounds a single poll of the request queue.
type ReceiveOptions struct {
	MaxMessages       int
	WaitTime          time.Duration
	VisibilityTimeout time.Duration
}

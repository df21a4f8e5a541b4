package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	ledgerKeyPrefix  = "DISPATCH#"
	defaultLedgerTTL = 7 * 24 * time.Hour
)

// DispatchLedger remembers request ids that already produced an e-mail so a
// redelivered message does not notify twice.
type DispatchLedger struct {
	table
	ttl time.Duration
	now func() time.Time
}

func NewDispatchLedger(api dynamodbAPI, tableName string, ttl time.Duration) (*DispatchLedger, error) {
	t, err := newTable(api, tableName)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultLedgerTTL
	}
	return &DispatchLedger{table: t, ttl: ttl, now: time.Now}, nil
}

func ledgerPK(key string) string {
	return ledgerKeyPrefix + key
}

// Claim records key and reports whether this call was the first to do so.
func (l *DispatchLedger) Claim(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, errors.New("repository: Claim: key is required")
	}
	now := l.now().UTC()
	_, err := l.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.name),
		Item: map[string]types.AttributeValue{
			"PK":        sAttr(ledgerPK(key)),
			"claimedAt": sAttr(now.Format(time.RFC3339)),
			"ttl":       nAttr(now.Add(l.ttl).Unix()),
		},
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return false, nil
		}
		return false, fmt.Errorf("repository: Claim: %w", err)
	}
	return true, nil
}

// Release forgets key so a later delivery may retry.
func (l *DispatchLedger) Release(ctx context.Context, key string) error {
	_, err := l.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.name),
		Key: map[string]types.AttributeValue{
			"PK": sAttr(ledgerPK(key)),
		},
	})
	if err != nil {
		return fmt.Errorf("repository: Release: %w", err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dining-concierge/internal/domain"
)

const sessionKey = "UserID"

// legacyTimestamp is the naive ISO layout written by older deployments.
const legacyTimestamp = "2006-01-02T15:04:05.999999"

// SessionStore keeps one record per user holding their last validated request.
type SessionStore struct {
	table
}

func NewSessionStore(api dynamodbAPI, tableName string) (*SessionStore, error) {
	t, err := newTable(api, tableName)
	if err != nil {
		return nil, err
	}
	return &SessionStore{table: t}, nil
}

// GetSession returns found=false when the user has no record.
func (s *SessionStore) GetSession(ctx context.Context, userID string) (domain.SessionRecord, bool, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.name),
		Key: map[string]types.AttributeValue{
			sessionKey: sAttr(userID),
		},
	})
	if err != nil {
		return domain.SessionRecord{}, false, fmt.Errorf("repository: GetSession get item: %w", err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.SessionRecord{}, false, nil
	}

	rec, err := itemToSession(out.Item)
	if err != nil {
		return domain.SessionRecord{}, false, fmt.Errorf("repository: GetSession decode: %w", err)
	}
	return rec, true, nil
}

// PutSession replaces the user's record.
func (s *SessionStore) PutSession(ctx context.Context, rec domain.SessionRecord) error {
	if rec.UserID == "" {
		return errors.New("repository: PutSession: user id is required")
	}
	_, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.name),
		Item:      sessionItem(rec),
	})
	if err != nil {
		return fmt.Errorf("repository: PutSession: %w", err)
	}
	return nil
}

func sessionItem(rec domain.SessionRecord) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		sessionKey:           sAttr(rec.UserID),
		"lastLocation":       sAttr(rec.LastLocation),
		"lastCuisine":        sAttr(rec.LastCuisine),
		"lastDiningDate":     sAttr(rec.LastDiningDate),
		"lastDiningTime":     sAttr(rec.LastDiningTime),
		"lastNumberOfPeople": sAttr(rec.LastNumberOfPeople),
		"lastEmail":          sAttr(rec.LastEmail),
		"timestamp":          sAttr(rec.LastUpdated.UTC().Format(time.RFC3339)),
	}
}

func itemToSession(item map[string]types.AttributeValue) (domain.SessionRecord, error) {
	userID, err := strAttr(item, sessionKey)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	rec := domain.SessionRecord{
		UserID:             userID,
		LastLocation:       optStrAttr(item, "lastLocation"),
		LastCuisine:        optStrAttr(item, "lastCuisine"),
		LastDiningDate:     optStrAttr(item, "lastDiningDate"),
		LastDiningTime:     optStrAttr(item, "lastDiningTime"),
		LastNumberOfPeople: optStrAttr(item, "lastNumberOfPeople"),
		LastEmail:          optStrAttr(item, "lastEmail"),
	}
	rec.LastUpdated = parseTimestamp(optStrAttr(item, "timestamp"))
	return rec, nil
}

// parseTimestamp yields the zero time for values it cannot read.
func parseTimestamp(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return ts.UTC()
	}
	if ts, err := time.Parse(legacyTimestamp, v); err == nil {
		return ts
	}
	return time.Time{}
}

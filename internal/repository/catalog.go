package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"dining-concierge/internal/domain"
)

const catalogKey = "business_id"

// CatalogStore reads restaurant records by id. The table is populated by a
// separate ingestion job.
type CatalogStore struct {
	table
}

func NewCatalogStore(api dynamodbAPI, tableName string) (*CatalogStore, error) {
	t, err := newTable(api, tableName)
	if err != nil {
		return nil, err
	}
	return &CatalogStore{table: t}, nil
}

func (c *CatalogStore) GetRestaurant(ctx context.Context, id string) (domain.Restaurant, bool, error) {
	out, err := c.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(c.name),
		Key: map[string]types.AttributeValue{
			catalogKey: sAttr(id),
		},
	})
	if err != nil {
		return domain.Restaurant{}, false, fmt.Errorf("repository: GetRestaurant %q: %w", id, err)
	}
	if out == nil || len(out.Item) == 0 {
		return domain.Restaurant{}, false, nil
	}
	return itemToRestaurant(id, out.Item), true, nil
}

// itemToRestaurant tolerates partial records; rendering falls back for
// missing name and address.
func itemToRestaurant(id string, item map[string]types.AttributeValue) domain.Restaurant {
	r := domain.Restaurant{
		ID:      id,
		Name:    optStrAttr(item, "name"),
		Address: optStrAttr(item, "address"),
		ZipCode: optStrAttr(item, "zip_code"),
	}
	if rating, err := floatAttr(item, "rating"); err == nil {
		r.Rating = rating
	}
	if reviews, err := intAttr(item, "num_reviews"); err == nil {
		r.ReviewCount = reviews
	}
	return r
}

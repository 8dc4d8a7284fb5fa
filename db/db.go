package db

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/pkg/errors"
)

// BatchGetItem accepts at most this many keys
const maxBatchKeys = 100

// RenderRecord describes one finished render.
type RenderRecord struct {
	ID         string    `dynamodbav:"PK" json:"id"`
	Genre      string    `dynamodbav:"Genre" json:"genre"`
	Style      string    `dynamodbav:"Style" json:"style"`
	PatternID  string    `dynamodbav:"PatternID" json:"pattern_id"`
	InspiredBy string    `dynamodbav:"InspiredBy" json:"inspired_by"`
	BPM        float64   `dynamodbav:"BPM" json:"bpm"`
	Seed       int64     `dynamodbav:"Seed" json:"seed"`
	Roles      []string  `dynamodbav:"Roles" json:"roles"`
	Loop       string    `dynamodbav:"Loop" json:"loop"`
	Archive    string    `dynamodbav:"Archive,omitempty" json:"archive,omitempty"`
	CreatedAt  time.Time `dynamodbav:"CreatedAt" json:"created_at"`
}

// Catalog stores render records in a DynamoDB table keyed by PK.
type Catalog struct {
	client dynamodbiface.DynamoDBAPI
	table  string
}

func NewCatalog(endpoint, region, table string) (*Catalog, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "create DynamoDB session")
	}
	return NewCatalogWithClient(dynamodb.New(sess), table), nil
}

func NewCatalogWithClient(client dynamodbiface.DynamoDBAPI, table string) *Catalog {
	return &Catalog{client: client, table: table}
}

func (c *Catalog) PutRender(ctx context.Context, rec RenderRecord) error {
	item, err := dynamodbattribute.MarshalMap(rec)
	if err != nil {
		return errors.Wrap(err, "marshal render record")
	}
	_, err = c.client.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(c.table),
		Item:      item,
	})
	return errors.Wrapf(err, "put render %s", rec.ID)
}

// GetRenders looks up records by id. Unknown ids are absent from the result.
func (c *Catalog) GetRenders(ctx context.Context, ids []string) (map[string]RenderRecord, error) {
	if len(ids) > maxBatchKeys {
		return nil, errors.Errorf("at most %d ids per lookup, got %d", maxBatchKeys, len(ids))
	}

	res := make(map[string]RenderRecord)
	if len(ids) == 0 {
		return res, nil
	}

	var keys []map[string]*dynamodb.AttributeValue
	for _, id := range ids {
		key := make(map[string]*dynamodb.AttributeValue)
		key["PK"] = &dynamodb.AttributeValue{
			S: aws.String(id),
		}
		keys = append(keys, key)
	}

	out, err := c.client.BatchGetItemWithContext(ctx, &dynamodb.BatchGetItemInput{
		RequestItems: map[string]*dynamodb.KeysAndAttributes{
			c.table: {Keys: keys},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "batch get renders")
	}

	for _, item := range out.Responses[c.table] {
		var rec RenderRecord
		if err := dynamodbattribute.UnmarshalMap(item, &rec); err != nil {
			return nil, errors.Wrap(err, "unmarshal render record")
		}
		res[rec.ID] = rec
	}
	return res, nil
}

func (c *Catalog) GetRender(ctx context.Context, id string) (RenderRecord, bool, error) {
	recs, err := c.GetRenders(ctx, []string{id})
	if err != nil {
		return RenderRecord{}, false, err
	}
	rec, ok := recs[id]
	return rec, ok, nil
}

package db

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryDynamo keeps items in memory, keyed by table and PK.
type memoryDynamo struct {
	dynamodbiface.DynamoDBAPI
	items map[string]map[string]map[string]*dynamodb.AttributeValue
}

func newMemoryDynamo() *memoryDynamo {
	return &memoryDynamo{items: make(map[string]map[string]map[string]*dynamodb.AttributeValue)}
}

func (m *memoryDynamo) PutItemWithContext(ctx aws.Context, in *dynamodb.PutItemInput, opts ...request.Option) (*dynamodb.PutItemOutput, error) {
	table := aws.StringValue(in.TableName)
	if m.items[table] == nil {
		m.items[table] = make(map[string]map[string]*dynamodb.AttributeValue)
	}
	m.items[table][aws.StringValue(in.Item["PK"].S)] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (m *memoryDynamo) BatchGetItemWithContext(ctx aws.Context, in *dynamodb.BatchGetItemInput, opts ...request.Option) (*dynamodb.BatchGetItemOutput, error) {
	out := &dynamodb.BatchGetItemOutput{Responses: make(map[string][]map[string]*dynamodb.AttributeValue)}
	for table, ka := range in.RequestItems {
		for _, key := range ka.Keys {
			if item, ok := m.items[table][aws.StringValue(key["PK"].S)]; ok {
				out.Responses[table] = append(out.Responses[table], item)
			}
		}
	}
	return out, nil
}

func TestPutThenGetRender(t *testing.T) {
	catalog := NewCatalogWithClient(newMemoryDynamo(), "loopgen-renders")
	rec := RenderRecord{
		ID:         "abc",
		Genre:      "house",
		Style:      "makompo",
		PatternID:  "house_makompo_1",
		InspiredBy: "Kabza De Small",
		BPM:        120,
		Seed:       42,
		Roles:      []string{"Kick", "Snare"},
		Loop:       "out/loop.wav",
		Archive:    "out/loop.zip",
		CreatedAt:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	ctx := context.Background()
	require.NoError(t, catalog.PutRender(ctx, rec))

	got, ok, err := catalog.GetRender(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)

	_, ok, err = catalog.GetRender(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetRendersLimits(t *testing.T) {
	catalog := NewCatalogWithClient(newMemoryDynamo(), "t")

	res, err := catalog.GetRenders(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res)

	_, err = catalog.GetRenders(context.Background(), make([]string, maxBatchKeys+1))
	assert.Error(t, err)
}

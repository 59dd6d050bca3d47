package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/aws"
)

const (
	attrKey   = "key"
	attrValue = "value"

	// batchWriteLimit is the DynamoDB maximum number of requests per BatchWriteItem.
	batchWriteLimit = 25
)

// entry is the item shape.
type entry struct {
	Key   string `dynamodbav:"key"`
	Value string `dynamodbav:"value"`
}

// DynamoStore keeps every entry as one item with a string partition key and a
// JSON text value.
type DynamoStore struct {
	client    aws.DynamoDBAPI
	tableName string
}

// NewDynamoStore creates a DynamoStore over tableName.
func NewDynamoStore(client aws.DynamoDBAPI, tableName string) *DynamoStore {
	return &DynamoStore{client: client, tableName: tableName}
}

func keyAttr(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrKey: &types.AttributeValueMemberS{Value: key},
	}
}

func (s *DynamoStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            keyAttr(key),
		ConsistentRead: boolPtr(true),
	})
	if err != nil {
		return nil, apperr.Storage("get "+key, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	return valueOf(out.Item)
}

func (s *DynamoStore) Set(ctx context.Context, key string, value json.RawMessage) error {
	item, err := attributevalue.MarshalMap(entry{Key: key, Value: string(value)})
	if err != nil {
		return apperr.Storage("marshal "+key, err)
	}
	_, err = s.client.PutItem(ctx, &dyn.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	return apperr.Storage("set "+key, err)
}

func (s *DynamoStore) GetByPrefix(ctx context.Context, prefix string) ([]json.RawMessage, error) {
	var values []json.RawMessage
	err := s.scan(ctx, prefix, func(item map[string]types.AttributeValue) error {
		v, err := valueOf(item)
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, err
}

func (s *DynamoStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.scan(ctx, prefix, func(item map[string]types.AttributeValue) error {
		k, ok := item[attrKey].(*types.AttributeValueMemberS)
		if !ok {
			return apperr.Storage("scan "+prefix, fmt.Errorf("item without string %q attribute", attrKey))
		}
		keys = append(keys, k.Value)
		return nil
	})
	return keys, err
}

// scan walks every page of a begins_with scan.
func (s *DynamoStore) scan(ctx context.Context, prefix string, fn func(map[string]types.AttributeValue) error) error {
	input := &dyn.ScanInput{
		TableName:                &s.tableName,
		FilterExpression:         aws.String("begins_with(#k, :prefix)"),
		ExpressionAttributeNames: map[string]string{"#k": attrKey},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: prefix},
		},
		ConsistentRead: boolPtr(true),
	}
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return apperr.Storage("scan "+prefix, err)
		}
		for _, item := range out.Items {
			if err := fn(item); err != nil {
				return err
			}
		}
		if len(out.LastEvaluatedKey) == 0 {
			return nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

// DeleteMany removes keys in BatchWriteItem chunks. DynamoDB does not report
// whether a deleted key existed, so the count is the number of processed
// delete requests. Unprocessed requests are reported, not retried.
func (s *DynamoStore) DeleteMany(ctx context.Context, keys []string) (int, error) {
	deleted := 0
	for start := 0; start < len(keys); start += batchWriteLimit {
		end := min(start+batchWriteLimit, len(keys))
		reqs := make([]types.WriteRequest, 0, end-start)
		for _, k := range keys[start:end] {
			reqs = append(reqs, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: keyAttr(k)},
			})
		}
		out, err := s.client.BatchWriteItem(ctx, &dyn.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.tableName: reqs},
		})
		if err != nil {
			return deleted, apperr.Storage("delete batch", err)
		}
		unprocessed := len(out.UnprocessedItems[s.tableName])
		deleted += len(reqs) - unprocessed
		if unprocessed > 0 {
			return deleted, apperr.Storage("delete batch", fmt.Errorf("%d deletes left unprocessed", unprocessed))
		}
	}
	return deleted, nil
}

func valueOf(item map[string]types.AttributeValue) (json.RawMessage, error) {
	var e entry
	if err := attributevalue.UnmarshalMap(item, &e); err != nil {
		return nil, apperr.Storage("decode item", err)
	}
	if e.Value == "" {
		return nil, apperr.Storage("decode item "+e.Key, fmt.Errorf("item without %q attribute", attrValue))
	}
	return json.RawMessage(e.Value), nil
}

func boolPtr(b bool) *bool { return &b }

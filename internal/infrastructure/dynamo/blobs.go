package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/thlight-panel/internal/domain"
)

// itemAPI is the subset of *dynamodb.Client used by BlobRepo.
type itemAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// blobItem is one row of the panel state table. PK: key
type blobItem struct {
	Key       string `dynamodbav:"key"`
	Value     string `dynamodbav:"value"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

// BlobRepo stores panel state blobs, one item per key.
type BlobRepo struct {
	client    itemAPI
	tableName string
	now       func() time.Time
}

func NewBlobRepo(client *dynamodb.Client, tableName string) *BlobRepo {
	return &BlobRepo{client: client, tableName: tableName, now: time.Now}
}

func (r *BlobRepo) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("key", key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("blob %s: %w", key, domain.ErrNotFound)
	}
	var item blobItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal blob %s: %w", key, err)
	}
	return []byte(item.Value), nil
}

func (r *BlobRepo) Set(ctx context.Context, key string, value []byte) error {
	item, err := attributevalue.MarshalMap(blobItem{
		Key:       key,
		Value:     string(value),
		UpdatedAt: r.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal blob %s: %w", key, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *BlobRepo) Remove(ctx context.Context, key string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("key", key),
	})
	return err
}

package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoMaxItemBytes is DynamoDB's item size limit. It counts attribute
// names as well as values.
const DynamoMaxItemBytes = 400 << 10

// dynamoItem is the table layout: partition key "key", string attribute "value".
type dynamoItem struct {
	Key   string `dynamodbav:"key"`
	Value string `dynamodbav:"value"`
}

// DynamoRepo stores values in a DynamoDB table keyed by "key".
type DynamoRepo struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoRepo builds a client from the default AWS credential chain.
func NewDynamoRepo(ctx context.Context, region, table string) (*DynamoRepo, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &DynamoRepo{client: dynamodb.NewFromConfig(cfg), table: table}, nil
}

func (r *DynamoRepo) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            dynamoKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, err
	}
	if out.Item == nil {
		return "", false, nil
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", false, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return item.Value, true, nil
}

func (r *DynamoRepo) Set(ctx context.Context, key, value string) error {
	if size := len("key") + len(key) + len("value") + len(value); size > DynamoMaxItemBytes {
		return fmt.Errorf("%w: %s is %d bytes", ErrValueTooLarge, key, size)
	}
	av, err := attributevalue.MarshalMap(dynamoItem{Key: key, Value: value})
	if err != nil {
		return err
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	return err
}

func (r *DynamoRepo) Remove(ctx context.Context, key string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       dynamoKey(key),
	})
	return err
}

func (r *DynamoRepo) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.table),
	})
	return err
}

func dynamoKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"key": &types.AttributeValueMemberS{Value: key},
	}
}

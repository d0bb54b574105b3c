package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/flor3z/mlb-stats-bot/internal/activity"
)

// DefaultLogTable is the DynamoDB table holding command logs
const DefaultLogTable = "mlb_bot_logs"

// dynamoTimeLayout is fixed width so string comparison orders by time
const dynamoTimeLayout = "2006-01-02 15:04:05.000000"

// DynamoAPI is the subset of the DynamoDB client used by DynamoSink
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoConfig selects the region, table and optional static credentials.
// Empty keys fall back to the default AWS credential chain.
type DynamoConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Table           string
}

// DynamoSink appends command logs to a DynamoDB table
type DynamoSink struct {
	client DynamoAPI
	table  string
}

var (
	_ activity.Sink   = (*DynamoSink)(nil)
	_ activity.Reader = (*DynamoSink)(nil)
)

type dynamoItem struct {
	CommandID string `dynamodbav:"command_id"`
	Command   string `dynamodbav:"command"`
	User      string `dynamodbav:"user"`
	Guild     string `dynamodbav:"guild"`
	Channel   string `dynamodbav:"channel,omitempty"`
	Content   string `dynamodbav:"content,omitempty"`
	Timestamp string `dynamodbav:"timestamp"`
}

// NewDynamoSink loads the AWS configuration and creates a sink
func NewDynamoSink(ctx context.Context, cfg DynamoConfig) (*DynamoSink, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewDynamoSinkWithClient(dynamodb.NewFromConfig(awsCfg), cfg.Table), nil
}

// NewDynamoSinkWithClient wraps an existing client
func NewDynamoSinkWithClient(client DynamoAPI, table string) *DynamoSink {
	if table == "" {
		table = DefaultLogTable
	}
	return &DynamoSink{client: client, table: table}
}

// Append puts one item keyed by command_id
func (s *DynamoSink) Append(ctx context.Context, e activity.Entry) error {
	row := fromEntry(e)
	item, err := attributevalue.MarshalMap(dynamoItem{
		CommandID: row.CommandID,
		Command:   row.Command,
		User:      row.User,
		Guild:     row.Guild,
		Channel:   row.Channel,
		Content:   row.Content,
		Timestamp: row.Timestamp.Format(dynamoTimeLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal command log: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put command log: %w", err)
	}
	return nil
}

// ListSince scans the table for items written at or after since
func (s *DynamoSink) ListSince(ctx context.Context, since time.Time) ([]activity.Entry, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(s.table),
		FilterExpression:         aws.String("#ts >= :start"),
		ExpressionAttributeNames: map[string]string{"#ts": "timestamp"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":start": &types.AttributeValueMemberS{Value: since.UTC().Format(dynamoTimeLayout)},
		},
	}

	var entries []activity.Entry
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan command logs: %w", err)
		}

		var items []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal command logs: %w", err)
		}
		for _, item := range items {
			ts, err := time.ParseInLocation(dynamoTimeLayout, item.Timestamp, time.UTC)
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp %q on %s: %w", item.Timestamp, item.CommandID, err)
			}
			entries = append(entries, CommandLog{
				CommandID: item.CommandID,
				Command:   item.Command,
				User:      item.User,
				Guild:     item.Guild,
				Channel:   item.Channel,
				Content:   item.Content,
				Timestamp: ts,
			}.Entry())
		}

		if len(out.LastEvaluatedKey) == 0 {
			return entries, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"portfolio-feed/internal/domain"
)

const (
	skPrefixRun = "RUN#"
	ttlDuration = 30 * 24 * time.Hour // 30-day TTL
	maxBatch    = 25                  // BatchWriteItem limit
)

// dynamodbAPI is the minimal DynamoDB interface required by Client.
type dynamodbAPI interface {
	BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client stores refresh run results in a DynamoDB table keyed by handle.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func accountPK(handle string) string {
	return "ACCOUNT#" + handle
}

// runSK sorts chronologically; kind keeps posts and profile results of the
// same instant distinct.
func runSK(ts time.Time, kind domain.ArtifactKind) string {
	return skPrefixRun + ts.UTC().Format(time.RFC3339Nano) + "#" + string(kind)
}

func (c *Client) ttlValue() int64 {
	return c.now().Add(ttlDuration).Unix()
}

// SaveRun writes one item per account result of the report.
func (c *Client) SaveRun(ctx context.Context, report domain.RunReport) error {
	if len(report.Results) == 0 {
		return nil
	}
	ttl := c.ttlValue()
	requests := make([]types.WriteRequest, 0, len(report.Results))
	for _, res := range report.Results {
		if res.RunID == "" {
			res.RunID = report.RunID
		}
		if res.RecordedAt.IsZero() {
			res.RecordedAt = report.FinishedAt
		}
		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: resultItem(res, ttl)}})
	}

	for start := 0; start < len(requests); start += maxBatch {
		end := min(start+maxBatch, len(requests))
		out, err := c.api.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{c.tableName: requests[start:end]},
		})
		if err != nil {
			return fmt.Errorf("repository: SaveRun: %w", err)
		}
		if out != nil && len(out.UnprocessedItems[c.tableName]) > 0 {
			return fmt.Errorf("repository: SaveRun: %d items unprocessed", len(out.UnprocessedItems[c.tableName]))
		}
	}
	return nil
}

// RecentResults returns up to limit results for handle, newest first.
func (c *Client) RecentResults(ctx context.Context, handle string, limit int) ([]domain.AccountResult, error) {
	if limit <= 0 {
		limit = 10
	}
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: accountPK(handle)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixRun},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: RecentResults query: %w", err)
	}

	results := make([]domain.AccountResult, 0, len(out.Items))
	for _, item := range out.Items {
		res, err := itemToResult(item)
		if err != nil {
			return nil, fmt.Errorf("repository: RecentResults unmarshal: %w", err)
		}
		results = append(results, res)
	}
	return results, nil
}

func resultItem(res domain.AccountResult, ttl int64) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK":          &types.AttributeValueMemberS{Value: accountPK(res.Handle)},
		"SK":          &types.AttributeValueMemberS{Value: runSK(res.RecordedAt, res.Kind)},
		"handle":      &types.AttributeValueMemberS{Value: res.Handle},
		"runId":       &types.AttributeValueMemberS{Value: res.RunID},
		"kind":        &types.AttributeValueMemberS{Value: string(res.Kind)},
		"outcome":     &types.AttributeValueMemberS{Value: string(res.Outcome)},
		"count":       &types.AttributeValueMemberN{Value: strconv.Itoa(res.Count)},
		"error":       &types.AttributeValueMemberS{Value: res.Error},
		"rateLimited": &types.AttributeValueMemberBOOL{Value: res.RateLimited},
		"recordedAt":  &types.AttributeValueMemberS{Value: res.RecordedAt.UTC().Format(time.RFC3339Nano)},
		"ttl":         &types.AttributeValueMemberN{Value: strconv.FormatInt(ttl, 10)},
	}
}

func itemToResult(item map[string]types.AttributeValue) (domain.AccountResult, error) {
	handle, err := strAttr(item, "handle")
	if err != nil {
		return domain.AccountResult{}, err
	}
	kind, err := strAttr(item, "kind")
	if err != nil {
		return domain.AccountResult{}, err
	}
	outcome, err := strAttr(item, "outcome")
	if err != nil {
		return domain.AccountResult{}, err
	}
	count, err := intAttr(item, "count")
	if err != nil {
		return domain.AccountResult{}, err
	}
	runID, _ := strAttr(item, "runId")  // allow empty
	errMsg, _ := strAttr(item, "error") // allow empty
	recorded, _ := strAttr(item, "recordedAt")
	recordedAt, _ := time.Parse(time.RFC3339Nano, recorded)

	var rateLimited bool
	if b, ok := item["rateLimited"].(*types.AttributeValueMemberBOOL); ok {
		rateLimited = b.Value
	}

	return domain.AccountResult{
		Handle:      handle,
		Kind:        domain.ArtifactKind(kind),
		Outcome:     domain.Outcome(outcome),
		Count:       count,
		Error:       errMsg,
		RateLimited: rateLimited,
		RecordedAt:  recordedAt,
		RunID:       runID,
	}, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}

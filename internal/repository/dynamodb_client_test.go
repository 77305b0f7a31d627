package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"portfolio-feed/internal/domain"
)

type fakeDynamo struct {
	batchOut    *dynamodb.BatchWriteItemOutput
	batchErr    error
	queryOut    *dynamodb.QueryOutput
	queryErr    error
	batchInputs []*dynamodb.BatchWriteItemInput
	lastQueryIn *dynamodb.QueryInput
}

func (f *fakeDynamo) BatchWriteItem(_ context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batchInputs = append(f.batchInputs, in)
	if f.batchOut == nil {
		return &dynamodb.BatchWriteItemOutput{}, f.batchErr
	}
	return f.batchOut, f.batchErr
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.lastQueryIn = in
	return f.queryOut, f.queryErr
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "runs")
	require.NoError(t, err)
	c.now = func() time.Time { return testNow }
	return c
}

func sampleReport(n int) domain.RunReport {
	r := domain.RunReport{RunID: "run-1", StartedAt: testNow, FinishedAt: testNow.Add(time.Second)}
	for i := 0; i < n; i++ {
		r.Results = append(r.Results, domain.AccountResult{
			Handle:     fmt.Sprintf("user%d", i),
			Kind:       domain.KindPosts,
			Outcome:    domain.OutcomeFetched,
			Count:      3,
			RecordedAt: testNow.Add(time.Duration(i) * time.Millisecond),
		})
	}
	return r
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "runs")
	require.Error(t, err)
	_, err = New(&fakeDynamo{}, " ")
	require.Error(t, err)
}

func TestSaveRun_WritesOneItemPerResult(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)

	report := domain.RunReport{RunID: "run-1", FinishedAt: testNow, Results: []domain.AccountResult{
		{Handle: "alice", Kind: domain.KindPosts, Outcome: domain.OutcomePlaceholder, Count: 1, Error: "429", RateLimited: true, RecordedAt: testNow},
		{Handle: "alice", Kind: domain.KindProfile, Outcome: domain.OutcomeSkipped, RecordedAt: testNow},
	}}
	require.NoError(t, c.SaveRun(context.Background(), report))

	require.Len(t, db.batchInputs, 1)
	reqs := db.batchInputs[0].RequestItems["runs"]
	require.Len(t, reqs, 2)

	item := reqs[0].PutRequest.Item
	require.Equal(t, "ACCOUNT#alice", item["PK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "RUN#2025-06-01T12:00:00Z#posts", item["SK"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "run-1", item["runId"].(*types.AttributeValueMemberS).Value)
	require.Equal(t, "placeholder", item["outcome"].(*types.AttributeValueMemberS).Value)
	require.True(t, item["rateLimited"].(*types.AttributeValueMemberBOOL).Value)
	require.Equal(t, fmt.Sprintf("%d", testNow.Add(ttlDuration).Unix()), item["ttl"].(*types.AttributeValueMemberN).Value)

	require.Equal(t, "RUN#2025-06-01T12:00:00Z#profile", reqs[1].PutRequest.Item["SK"].(*types.AttributeValueMemberS).Value)
}

func TestSaveRun_Batches(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	require.NoError(t, c.SaveRun(context.Background(), sampleReport(30)))
	require.Len(t, db.batchInputs, 2)
	require.Len(t, db.batchInputs[0].RequestItems["runs"], 25)
	require.Len(t, db.batchInputs[1].RequestItems["runs"], 5)
}

func TestSaveRun_EmptyReport(t *testing.T) {
	db := &fakeDynamo{}
	require.NoError(t, mustNewClient(t, db).SaveRun(context.Background(), domain.RunReport{}))
	require.Empty(t, db.batchInputs)
}

func TestSaveRun_Errors(t *testing.T) {
	db := &fakeDynamo{batchErr: errors.New("throttled")}
	err := mustNewClient(t, db).SaveRun(context.Background(), sampleReport(1))
	require.ErrorContains(t, err, "throttled")

	db = &fakeDynamo{batchOut: &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{"runs": {{}}}}}
	err = mustNewClient(t, db).SaveRun(context.Background(), sampleReport(1))
	require.ErrorContains(t, err, "unprocessed")
}

func TestRecentResults_HappyPath(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		resultItem(domain.AccountResult{Handle: "alice", Kind: domain.KindProfile, Outcome: domain.OutcomeFailed, Error: "boom", RunID: "r2", RecordedAt: testNow}, 1),
		resultItem(domain.AccountResult{Handle: "alice", Kind: domain.KindPosts, Outcome: domain.OutcomeFetched, Count: 5, RunID: "r1", RecordedAt: testNow.Add(-time.Hour)}, 1),
	}}}
	c := mustNewClient(t, db)

	got, err := c.RecentResults(context.Background(), "alice", 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, domain.OutcomeFailed, got[0].Outcome)
	require.Equal(t, "boom", got[0].Error)
	require.Equal(t, 5, got[1].Count)
	require.True(t, testNow.Equal(got[0].RecordedAt))

	require.Equal(t, int32(10), *db.lastQueryIn.Limit)
	require.False(t, *db.lastQueryIn.ScanIndexForward)
	require.Equal(t, "ACCOUNT#alice", db.lastQueryIn.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value)
}

func TestRecentResults_QueryError(t *testing.T) {
	_, err := mustNewClient(t, &fakeDynamo{queryErr: errors.New("boom")}).RecentResults(context.Background(), "alice", 5)
	require.ErrorContains(t, err, "boom")
}

func TestRecentResults_BadItem(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
		{"handle": &types.AttributeValueMemberN{Value: "1"}},
	}}}
	_, err := mustNewClient(t, db).RecentResults(context.Background(), "alice", 5)
	require.ErrorContains(t, err, "not a string")
}

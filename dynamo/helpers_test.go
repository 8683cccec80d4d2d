package dynamo

import (
	"context"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeAPI is an in-memory DynamoDB table keyed by "unid".
type fakeAPI struct {
	items map[string]map[string]types.AttributeValue

	puts    []*dynamodb.PutItemInput
	gets    []*dynamodb.GetItemInput
	scans   []*dynamodb.ScanInput
	batches []*dynamodb.BatchWriteItemInput

	// unprocessed lists UNIDs whose deletes are handed back unprocessed.
	unprocessed map[string]bool

	// pageSize splits scans into pages when set.
	pageSize int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		items:       make(map[string]map[string]types.AttributeValue),
		unprocessed: make(map[string]bool),
	}
}

func unidOf(item map[string]types.AttributeValue) string {
	if v, ok := item[AttrUNID].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeAPI) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	id := unidOf(in.Item)
	if in.ConditionExpression != nil {
		if _, exists := f.items[id]; exists {
			return nil, &types.ConditionalCheckFailedException{Message: aws.String("exists")}
		}
	}
	f.items[id] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.gets = append(f.gets, in)
	return &dynamodb.GetItemOutput{Item: f.items[unidOf(in.Key)]}, nil
}

func (f *fakeAPI) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scans = append(f.scans, in)
	ids := make([]string, 0, len(f.items))
	for id := range f.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	start := 0
	if in.ExclusiveStartKey != nil {
		last := unidOf(in.ExclusiveStartKey)
		start = sort.SearchStrings(ids, last) + 1
	}
	end := len(ids)
	if f.pageSize > 0 && start+f.pageSize < end {
		end = start + f.pageSize
	}

	out := &dynamodb.ScanOutput{}
	for _, id := range ids[start:end] {
		out.Items = append(out.Items, f.items[id])
	}
	if end < len(ids) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			AttrUNID: &types.AttributeValueMemberS{Value: ids[end-1]},
		}
	}
	return out, nil
}

func (f *fakeAPI) BatchWriteItem(ctx context.Context, in *dynamodb.BatchWriteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error) {
	f.batches = append(f.batches, in)
	out := &dynamodb.BatchWriteItemOutput{UnprocessedItems: map[string][]types.WriteRequest{}}
	for table, reqs := range in.RequestItems {
		for _, req := range reqs {
			id := unidOf(req.DeleteRequest.Key)
			if f.unprocessed[id] {
				out.UnprocessedItems[table] = append(out.UnprocessedItems[table], req)
				continue
			}
			delete(f.items, id)
		}
	}
	return out, nil
}

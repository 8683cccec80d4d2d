// Package dynamo implements native.Database on a DynamoDB table.
//
// Each document is one item keyed by its UNID. DynamoDB has no DQL engine,
// so predicate reads, deletes and upserts scan the table and evaluate the
// statement with dql.Match.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/protondoc/dql"
	"github.com/jacentio/protondoc/internal/unid"
	"github.com/jacentio/protondoc/native"
)

// batchLimit is the most write requests one BatchWriteItem call accepts.
const batchLimit = 25

var (
	// ErrInvalidUNID is reported for a UNID that is not 32 hex digits.
	ErrInvalidUNID = errors.New("dynamo: invalid UNID")

	// ErrUnprocessed is reported for a delete DynamoDB left unprocessed.
	ErrUnprocessed = errors.New("dynamo: request left unprocessed")

	// ErrDocumentExists is returned when creating a document whose UNID is taken.
	ErrDocumentExists = errors.New("dynamo: document already exists")
)

// API is the subset of the DynamoDB client the Database uses.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Database stores native documents in one DynamoDB table.
type Database struct {
	client API
	config Config
}

var _ native.Database = (*Database)(nil)

// New creates a new Database instance.
func New(client API, config Config) *Database {
	config.validate()
	return &Database{
		client: client,
		config: config,
	}
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		AttrUNID: &types.AttributeValueMemberS{Value: unid.Normalize(id)},
	}
}

// CreateDocument stores doc under a new UNID. Compute options and access
// tokens have no meaning for DynamoDB and are ignored.
func (d *Database) CreateDocument(ctx context.Context, doc native.Document, opts ...native.Option) (native.Document, error) {
	doc.UNID = unid.New()
	if err := d.put(ctx, doc, true); err != nil {
		return native.Document{}, err
	}
	return doc, nil
}

func (d *Database) put(ctx context.Context, doc native.Document, create bool) error {
	item, err := EncodeDocument(doc)
	if err != nil {
		return err
	}
	input := &dynamodb.PutItemInput{
		TableName: aws.String(d.config.Table),
		Item:      item,
	}
	if create {
		input.ConditionExpression = aws.String("attribute_not_exists(#unid)")
		input.ExpressionAttributeNames = map[string]string{"#unid": AttrUNID}
	}
	d.config.Logger.DebugContext(ctx, "putting document", "table", d.config.Table, "unid", doc.UNID, "create", create)
	if _, err := d.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("%w: %s", ErrDocumentExists, doc.UNID)
		}
		return fmt.Errorf("dynamo: put document %s: %w", doc.UNID, err)
	}
	return nil
}

// UpsertDocument merges doc's items into every document matching query and
// creates a new document when none matches. It returns the last document
// written.
func (d *Database) UpsertDocument(ctx context.Context, query string, doc native.Document, opts ...native.Option) (native.Document, error) {
	matches, err := d.matching(ctx, query)
	if err != nil {
		return native.Document{}, err
	}
	if len(matches) == 0 {
		return d.CreateDocument(ctx, doc, opts...)
	}
	var written native.Document
	for _, existing := range matches {
		written = existing.Merge(doc)
		if err := d.put(ctx, written, false); err != nil {
			return native.Document{}, err
		}
	}
	return written, nil
}

// ReadDocumentByUNID returns the document stored under id. A malformed id
// fails as a bulk read naming that id.
func (d *Database) ReadDocumentByUNID(ctx context.Context, id string, opts ...native.Option) (native.Document, error) {
	if !unid.Valid(id) {
		return native.Document{}, &native.BulkOperationError{
			Op:       "read",
			Failures: map[string]error{id: ErrInvalidUNID},
		}
	}
	o := native.Apply(opts...)
	input := &dynamodb.GetItemInput{
		TableName: aws.String(d.config.Table),
		Key:       key(id),
	}
	if o.ItemNames != nil {
		expr, names := projection(o.ItemNames)
		input.ProjectionExpression = aws.String(expr)
		input.ExpressionAttributeNames = names
	}
	result, err := d.client.GetItem(ctx, input)
	if err != nil {
		return native.Document{}, fmt.Errorf("dynamo: get document %s: %w", id, err)
	}
	if result.Item == nil {
		return native.Document{}, native.ErrDocumentNotFound
	}
	doc, err := DecodeDocument(result.Item)
	if err != nil {
		return native.Document{}, err
	}
	return doc.Project(o.ItemNames), nil
}

// projection builds a ProjectionExpression reading the UNID and the named
// items. Item names go through placeholders since they may hold any
// character.
func projection(items []string) (string, map[string]string) {
	names := map[string]string{"#unid": AttrUNID}
	parts := []string{"#unid"}
	if len(items) > 0 {
		names["#items"] = AttrItems
	}
	for i, item := range items {
		ph := "#i" + strconv.Itoa(i)
		names[ph] = item
		parts = append(parts, "#items."+ph)
	}
	return strings.Join(parts, ", "), names
}

// ReadDocuments returns the documents matching query in scan order, after
// skipping Start matches and keeping at most Count.
func (d *Database) ReadDocuments(ctx context.Context, query string, opts ...native.Option) ([]native.Document, error) {
	o := native.Apply(opts...)
	if o.Start < 0 {
		return nil, fmt.Errorf("dynamo: negative start %d", o.Start)
	}
	matches, err := d.matching(ctx, query)
	if err != nil {
		return nil, err
	}
	if o.Start >= len(matches) {
		return []native.Document{}, nil
	}
	matches = matches[o.Start:]
	if o.Count > 0 && o.Count < len(matches) {
		matches = matches[:o.Count]
	}
	out := make([]native.Document, len(matches))
	for i, doc := range matches {
		out[i] = doc.Project(o.ItemNames)
	}
	return out, nil
}

// DeleteDocumentsByUNID deletes the listed documents in batches. Requests
// DynamoDB leaves unprocessed are reported in a *native.BulkOperationError.
func (d *Database) DeleteDocumentsByUNID(ctx context.Context, ids []string, opts ...native.Option) error {
	ids = distinct(ids)
	failures := make(map[string]error)
	for start := 0; start < len(ids); start += batchLimit {
		end := min(start+batchLimit, len(ids))
		requests := make([]types.WriteRequest, 0, end-start)
		for _, id := range ids[start:end] {
			if !unid.Valid(id) {
				failures[id] = ErrInvalidUNID
				continue
			}
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: key(id)},
			})
		}
		if len(requests) == 0 {
			continue
		}
		d.config.Logger.DebugContext(ctx, "deleting documents", "table", d.config.Table, "count", len(requests))
		result, err := d.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{d.config.Table: requests},
		})
		if err != nil {
			return fmt.Errorf("dynamo: delete documents: %w", err)
		}
		for _, req := range result.UnprocessedItems[d.config.Table] {
			if req.DeleteRequest == nil {
				continue
			}
			if v, ok := req.DeleteRequest.Key[AttrUNID].(*types.AttributeValueMemberS); ok {
				failures[v.Value] = ErrUnprocessed
			}
		}
	}
	if len(failures) > 0 {
		return &native.BulkOperationError{Op: "delete", Failures: failures}
	}
	return nil
}

// distinct drops UNIDs equal to an earlier one, ignoring case. A batch
// write may not name the same key twice.
func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		k := unid.Normalize(id)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, id)
	}
	return out
}

// DeleteDocuments deletes every document matching query.
func (d *Database) DeleteDocuments(ctx context.Context, query string, opts ...native.Option) error {
	matches, err := d.matching(ctx, query)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return nil
	}
	ids := make([]string, len(matches))
	for i, doc := range matches {
		ids[i] = doc.UNID
	}
	return d.DeleteDocumentsByUNID(ctx, ids, opts...)
}

// matching scans the table and returns the documents query selects.
func (d *Database) matching(ctx context.Context, query string) ([]native.Document, error) {
	term, err := dql.Parse(query)
	if err != nil {
		return nil, err
	}
	input := &dynamodb.ScanInput{TableName: aws.String(d.config.Table)}
	if d.config.ScanPageSize > 0 {
		input.Limit = aws.Int32(d.config.ScanPageSize)
	}
	d.config.Logger.DebugContext(ctx, "scanning documents", "table", d.config.Table, "query", query)

	var matches []native.Document
	paginator := dynamodb.NewScanPaginator(d.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("dynamo: scan: %w", err)
		}
		for _, raw := range page.Items {
			doc, err := DecodeDocument(raw)
			if err != nil {
				return nil, err
			}
			ok, err := dql.Match(term, doc)
			if err != nil {
				return nil, err
			}
			if ok {
				matches = append(matches, doc)
			}
		}
	}
	return matches, nil
}

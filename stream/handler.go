// Package stream turns DynamoDB Streams records of the document table into
// entity changes.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/protondoc/dynamo"
	"github.com/jacentio/protondoc/store"
)

// ChangeKind is the kind of write a change record reports.
type ChangeKind int

const (
	ChangeInsert ChangeKind = iota
	ChangeModify
	ChangeRemove
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeInsert:
		return "insert"
	case ChangeModify:
		return "modify"
	case ChangeRemove:
		return "remove"
	}
	return fmt.Sprintf("ChangeKind(%d)", int(k))
}

// Change is one entity write seen on the stream.
type Change struct {
	Kind ChangeKind

	// ID is the UNID of the changed document.
	ID string

	// Entity is the entity after the write, or before it for removals. It is
	// nil when the stream carries keys only.
	Entity *store.Entity

	// Old is the entity before a modification, when the stream carries it.
	Old *store.Entity
}

// Sink receives changes in stream order.
type Sink interface {
	Apply(ctx context.Context, c Change) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, c Change) error

func (f SinkFunc) Apply(ctx context.Context, c Change) error {
	return f(ctx, c)
}

// Handler processes DynamoDB stream events of the document table.
type Handler struct {
	converter *store.Converter
	mappings  store.MappingProvider
	sink      Sink
	logger    *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(converter *store.Converter, mappings store.MappingProvider, sink Sink, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		converter: converter,
		mappings:  mappings,
		sink:      sink,
		logger:    logger,
	}
}

// HandleChanges passes every record of event to the sink as a Change.
// This function is designed to be used as an AWS Lambda handler.
func (h *Handler) HandleChanges(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	var change Change
	image := record.Change.NewImage
	switch events.DynamoDBOperationType(record.EventName) {
	case events.DynamoDBOperationTypeInsert:
		change.Kind = ChangeInsert
	case events.DynamoDBOperationTypeModify:
		change.Kind = ChangeModify
	case events.DynamoDBOperationTypeRemove:
		change.Kind = ChangeRemove
		image = record.Change.OldImage
	default:
		h.logger.Warn("skipping unknown stream event", "eventID", record.EventID, "eventName", record.EventName)
		return nil
	}
	change.ID = getStringAttr(record.Change.Keys, dynamo.AttrUNID)

	if len(image) > 0 {
		e, err := h.entity(ctx, image)
		if err != nil {
			return fmt.Errorf("decode %s image: %w", change.Kind, err)
		}
		change.Entity = e
	}
	if change.Kind == ChangeModify && len(record.Change.OldImage) > 0 {
		old, err := h.entity(ctx, record.Change.OldImage)
		if err != nil {
			return fmt.Errorf("decode old image: %w", err)
		}
		change.Old = old
	}

	h.logger.Info("applying change",
		"kind", change.Kind.String(),
		"id", change.ID,
	)
	return h.sink.Apply(ctx, change)
}

// entity flattens a stream image into an entity of the collection its
// collection item names.
func (h *Handler) entity(ctx context.Context, image map[string]events.DynamoDBAttributeValue) (*store.Entity, error) {
	doc, err := dynamo.DecodeDocument(ConvertImage(image))
	if err != nil {
		return nil, err
	}
	var collection string
	if it, ok := doc.Item(h.converter.CollectionField()); ok && !it.IsNull() {
		collection, _ = it.Value.Any().(string)
	}
	m, err := h.mappings.Mapping(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("mapping for %q: %w", collection, err)
	}
	return h.converter.FromNative(m, doc), nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok && v.DataType() == events.DataTypeString {
		return v.String()
	}
	return ""
}

// ConvertImage converts a DynamoDB stream image to SDK attribute values.
func ConvertImage(image map[string]events.DynamoDBAttributeValue) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue, len(image))
	for k, v := range image {
		if av := convertAttribute(v); av != nil {
			result[k] = av
		}
	}
	return result
}

func convertAttribute(v events.DynamoDBAttributeValue) types.AttributeValue {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}
	case events.DataTypeList:
		list := v.List()
		out := make([]types.AttributeValue, 0, len(list))
		for _, e := range list {
			if av := convertAttribute(e); av != nil {
				out = append(out, av)
			}
		}
		return &types.AttributeValueMemberL{Value: out}
	case events.DataTypeMap:
		return &types.AttributeValueMemberM{Value: ConvertImage(v.Map())}
	}
	return nil
}

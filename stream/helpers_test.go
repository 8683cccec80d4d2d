package stream

import (
	"bytes"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// --- getStringAttr Tests ---

func TestGetStringAttr_ExistingString(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"unid": events.NewStringAttribute("ABC"),
	}

	result := getStringAttr(image, "unid")
	if result != "ABC" {
		t.Errorf("expected 'ABC', got %q", result)
	}
}

func TestGetStringAttr_MissingKey(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"other": events.NewStringAttribute("value"),
	}

	result := getStringAttr(image, "unid")
	if result != "" {
		t.Errorf("expected empty string for missing key, got %q", result)
	}
}

func TestGetStringAttr_NilImage(t *testing.T) {
	var image map[string]events.DynamoDBAttributeValue

	result := getStringAttr(image, "unid")
	if result != "" {
		t.Errorf("expected empty string for nil image, got %q", result)
	}
}

func TestGetStringAttr_NumberAttribute(t *testing.T) {
	image := map[string]events.DynamoDBAttributeValue{
		"unid": events.NewNumberAttribute("12"),
	}

	result := getStringAttr(image, "unid")
	if result != "" {
		t.Errorf("expected empty string for number attribute, got %q", result)
	}
}

// --- convertAttribute Tests ---

func TestConvertAttribute_Scalars(t *testing.T) {
	if v, ok := convertAttribute(events.NewStringAttribute("s")).(*types.AttributeValueMemberS); !ok || v.Value != "s" {
		t.Error("expected string attribute")
	}
	if v, ok := convertAttribute(events.NewNumberAttribute("1.5")).(*types.AttributeValueMemberN); !ok || v.Value != "1.5" {
		t.Error("expected number attribute")
	}
	if v, ok := convertAttribute(events.NewBooleanAttribute(true)).(*types.AttributeValueMemberBOOL); !ok || !v.Value {
		t.Error("expected boolean attribute")
	}
	if _, ok := convertAttribute(events.NewNullAttribute()).(*types.AttributeValueMemberNULL); !ok {
		t.Error("expected null attribute")
	}
	if v, ok := convertAttribute(events.NewBinaryAttribute([]byte{1, 2})).(*types.AttributeValueMemberB); !ok || !bytes.Equal(v.Value, []byte{1, 2}) {
		t.Error("expected binary attribute")
	}
}

func TestConvertAttribute_Sets(t *testing.T) {
	if v, ok := convertAttribute(events.NewStringSetAttribute([]string{"a", "b"})).(*types.AttributeValueMemberSS); !ok || len(v.Value) != 2 {
		t.Error("expected string set attribute")
	}
	if v, ok := convertAttribute(events.NewNumberSetAttribute([]string{"1"})).(*types.AttributeValueMemberNS); !ok || v.Value[0] != "1" {
		t.Error("expected number set attribute")
	}
	if v, ok := convertAttribute(events.NewBinarySetAttribute([][]byte{{9}})).(*types.AttributeValueMemberBS); !ok || len(v.Value) != 1 {
		t.Error("expected binary set attribute")
	}
}

func TestConvertAttribute_Nested(t *testing.T) {
	av := events.NewMapAttribute(map[string]events.DynamoDBAttributeValue{
		"list": events.NewListAttribute([]events.DynamoDBAttributeValue{
			events.NewStringAttribute("x"),
			events.NewNumberAttribute("2"),
		}),
	})

	m, ok := convertAttribute(av).(*types.AttributeValueMemberM)
	if !ok {
		t.Fatal("expected map attribute")
	}
	l, ok := m.Value["list"].(*types.AttributeValueMemberL)
	if !ok || len(l.Value) != 2 {
		t.Fatalf("expected list of 2, got %#v", m.Value["list"])
	}
	if v, ok := l.Value[1].(*types.AttributeValueMemberN); !ok || v.Value != "2" {
		t.Error("expected second element to be number 2")
	}
}

func TestConvertImage_Empty(t *testing.T) {
	result := ConvertImage(nil)
	if result == nil || len(result) != 0 {
		t.Errorf("expected empty non-nil map, got %v", result)
	}
}

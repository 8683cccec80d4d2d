package dynamo

import (
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/protondoc/native"
)

// Attribute names of a stored document.
const (
	AttrUNID  = "unid"
	AttrItems = "items"
)

// record is the stored form of a native document. Items are keyed by name;
// Order restores their sequence.
type record struct {
	UNID  string                `dynamodbav:"unid"`
	Items map[string]storedItem `dynamodbav:"items"`
}

// storedItem is the stored form of one item. Dates, times and date-times
// are kept as text in their canonical string forms.
type storedItem struct {
	Order  int       `dynamodbav:"o"`
	Kind   string    `dynamodbav:"k"`
	List   bool      `dynamodbav:"l,omitempty"`
	Flags  []string  `dynamodbav:"f,stringset,omitempty"`
	Text   []string  `dynamodbav:"s,omitempty"`
	Number []float64 `dynamodbav:"n,omitempty"`
}

// EncodeDocument returns the DynamoDB item storing doc.
func EncodeDocument(doc native.Document) (map[string]types.AttributeValue, error) {
	rec := record{UNID: doc.UNID, Items: make(map[string]storedItem, len(doc.Items))}
	for i, it := range doc.Items {
		rec.Items[it.Name] = encodeItem(i, it)
	}
	av, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return nil, fmt.Errorf("dynamo: encode document %s: %w", doc.UNID, err)
	}
	return av, nil
}

func encodeItem(order int, it native.Item) storedItem {
	s := storedItem{Order: order, Kind: it.Kind().String()}
	if it.Flags != 0 {
		s.Flags = it.Flags.Names()
	}
	if it.Value == nil {
		return s
	}
	s.List = it.Value.List()
	switch v := it.Value.(type) {
	case native.Text:
		s.Text = []string{string(v)}
	case native.TextList:
		s.Text = append([]string{}, v...)
	case native.Number:
		s.Number = []float64{float64(v)}
	case native.NumberList:
		s.Number = append([]float64{}, v...)
	case native.Date:
		s.Text = []string{civil.Date(v).String()}
	case native.DateList:
		s.Text = mapStrings(v, civil.Date.String)
	case native.Time:
		s.Text = []string{civil.Time(v).String()}
	case native.TimeList:
		s.Text = mapStrings(v, civil.Time.String)
	case native.DateTime:
		s.Text = []string{formatTime(time.Time(v))}
	case native.DateTimeList:
		s.Text = mapStrings(v, formatTime)
	}
	return s
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func mapStrings[T any](in []T, f func(T) string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}

// DecodeDocument converts a stored DynamoDB item back into a native
// document. Items come back in the order they were written.
func DecodeDocument(raw map[string]types.AttributeValue) (native.Document, error) {
	var rec record
	if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
		return native.Document{}, fmt.Errorf("dynamo: decode document: %w", err)
	}
	names := make([]string, 0, len(rec.Items))
	for name := range rec.Items {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := rec.Items[names[i]], rec.Items[names[j]]
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return names[i] < names[j]
	})

	doc := native.Document{UNID: rec.UNID, Items: make([]native.Item, 0, len(names))}
	for _, name := range names {
		it, err := decodeItem(name, rec.Items[name])
		if err != nil {
			return native.Document{}, fmt.Errorf("dynamo: decode document %s: %w", rec.UNID, err)
		}
		doc.Items = append(doc.Items, it)
	}
	return doc, nil
}

func decodeItem(name string, s storedItem) (native.Item, error) {
	kind, err := native.ParseKind(s.Kind)
	if err != nil {
		return native.Item{}, fmt.Errorf("item %q: %w", name, err)
	}
	flags, err := native.ParseFlags(s.Flags)
	if err != nil {
		return native.Item{}, fmt.Errorf("item %q: %w", name, err)
	}
	it := native.Item{Name: name, Flags: flags}
	if len(s.Text) == 0 && len(s.Number) == 0 {
		return it, nil
	}

	switch kind {
	case native.KindText:
		if s.List {
			it.Value = native.TextList(s.Text)
		} else {
			it.Value = native.Text(s.Text[0])
		}
	case native.KindNumber:
		if s.List {
			it.Value = native.NumberList(s.Number)
		} else {
			it.Value = native.Number(s.Number[0])
		}
	case native.KindDate:
		dates, err := parseAll(s.Text, civil.ParseDate)
		if err != nil {
			return native.Item{}, fmt.Errorf("item %q: %w", name, err)
		}
		it.Value = pick(s.List, dates, func(d civil.Date) native.Value { return native.Date(d) }, func(l []civil.Date) native.Value { return native.DateList(l) })
	case native.KindTime:
		times, err := parseAll(s.Text, civil.ParseTime)
		if err != nil {
			return native.Item{}, fmt.Errorf("item %q: %w", name, err)
		}
		it.Value = pick(s.List, times, func(t civil.Time) native.Value { return native.Time(t) }, func(l []civil.Time) native.Value { return native.TimeList(l) })
	case native.KindDateTime:
		stamps, err := parseAll(s.Text, func(v string) (time.Time, error) { return time.Parse(time.RFC3339Nano, v) })
		if err != nil {
			return native.Item{}, fmt.Errorf("item %q: %w", name, err)
		}
		it.Value = pick(s.List, stamps, func(t time.Time) native.Value { return native.DateTime(t) }, func(l []time.Time) native.Value { return native.DateTimeList(l) })
	}
	return it, nil
}

func parseAll[T any](in []string, parse func(string) (T, error)) ([]T, error) {
	out := make([]T, len(in))
	for i, s := range in {
		v, err := parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func pick[T any](list bool, values []T, single func(T) native.Value, multi func([]T) native.Value) native.Value {
	if list {
		return multi(values)
	}
	return single(values[0])
}

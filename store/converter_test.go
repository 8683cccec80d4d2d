package store_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/jacentio/protondoc/native"
	"github.com/jacentio/protondoc/store"
)

func newConverter() *store.Converter {
	return store.NewConverter(store.NewCoercions(store.DefaultRules()...), store.FieldName)
}

func TestConverter_ToNative(t *testing.T) {
	e := store.NewEntity("Person", store.Field{Name: "name", Value: "Ann"})

	doc, err := newConverter().ToNative(e, store.Mapping{Collection: "Person"}, store.OpInsert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []native.Item{
		native.TextItem("name", "Ann"),
		native.TextItem("EntityName", "Person"),
	}
	if !reflect.DeepEqual(doc.Items, want) {
		t.Errorf("expected %#v, got %#v", want, doc.Items)
	}
	if doc.UNID != "" {
		t.Errorf("expected no UNID, got %q", doc.UNID)
	}
}

func TestConverter_ToNative_SkipsReserved(t *testing.T) {
	e := store.NewEntity("Person",
		store.Field{Name: "id", Value: "ABC"},
		store.Field{Name: "EntityName", Value: "Spoofed"},
		store.Field{Name: "@cdate", Value: time.Now()},
		store.Field{Name: "@mdate", Value: time.Now()},
		store.Field{Name: "@noteid", Value: 12},
		store.Field{Name: "@etag", Value: "W/1"},
		store.Field{Name: "name", Value: "Ann"},
	)

	doc, err := newConverter().ToNative(e, store.Mapping{}, store.OpUpdate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := doc.ItemNames(); !reflect.DeepEqual(got, []string{"name", "EntityName"}) {
		t.Errorf("unexpected items %v", got)
	}
	if it, _ := doc.Item("EntityName"); it.Value != native.Text("Person") {
		t.Errorf("expected collection item Person, got %#v", it.Value)
	}
}

func TestConverter_ToNative_Policy(t *testing.T) {
	m := store.Mapping{
		Collection: "Order",
		Fields: []store.FieldMapping{
			{Name: "created", Item: "Created", Policy: store.Policy{SkipUpdate: true}},
			{Name: "status", Item: "Status", Policy: store.Policy{SkipInsert: true}},
			{Name: "total", Item: "Total", Policy: store.Policy{Precision: 2}},
		},
	}
	e := store.NewEntity("Order",
		store.Field{Name: "created", Value: "today"},
		store.Field{Name: "status", Value: "open"},
		store.Field{Name: "total", Value: 9.999},
	)
	c := newConverter()

	ins, err := c.ToNative(e, m, store.OpInsert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := ins.ItemNames(); !reflect.DeepEqual(got, []string{"Created", "Total", "EntityName"}) {
		t.Errorf("insert: unexpected items %v", got)
	}
	if it, _ := ins.Item("Total"); it.Value != native.Number(10) {
		t.Errorf("expected Total rounded to 10, got %#v", it.Value)
	}

	upd, err := c.ToNative(e, m, store.OpUpdate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := upd.ItemNames(); !reflect.DeepEqual(got, []string{"Status", "Total", "EntityName"}) {
		t.Errorf("update: unexpected items %v", got)
	}
}

func TestConverter_ToNative_Error(t *testing.T) {
	e := store.NewEntity("Person", store.Field{Name: "ch", Value: make(chan int)})

	_, err := newConverter().ToNative(e, store.Mapping{}, store.OpInsert)
	if !errors.Is(err, store.ErrUnsupportedValueKind) {
		t.Fatalf("expected ErrUnsupportedValueKind, got %v", err)
	}
}

func TestConverter_FromNative(t *testing.T) {
	day := civil.Date{Year: 2023, Month: time.December, Day: 24}
	doc := native.Document{
		UNID: "0123456789ABCDEF0123456789ABCDEF",
		Items: []native.Item{
			native.TextItem("FullName", "Ann Lee"),
			{Name: "scores", Value: native.NumberList{1, 2}},
			{Name: "born", Value: native.Date(day)},
			native.NullItem("nickname"),
		},
	}
	m := store.Mapping{
		Collection: "Person",
		Fields:     []store.FieldMapping{{Name: "fullName", Item: "FullName"}},
	}

	e := newConverter().FromNative(m, doc)

	if e.Name != "Person" {
		t.Errorf("expected name Person, got %q", e.Name)
	}
	if e.Fields[0].Name != "id" || e.Fields[0].Value != doc.UNID {
		t.Errorf("expected id first, got %+v", e.Fields[0])
	}
	if got := e.Get("fullName"); got != "Ann Lee" {
		t.Errorf("expected fullName Ann Lee, got %#v", got)
	}
	if got := e.Get("scores"); !reflect.DeepEqual(got, []float64{1, 2}) {
		t.Errorf("expected scores [1 2], got %#v", got)
	}
	if got := e.Get("born"); got != day {
		t.Errorf("expected born %v, got %#v", day, got)
	}
	f, ok := e.Find("nickname")
	if !ok || f.Value != nil {
		t.Errorf("expected nil nickname, got %+v (found %v)", f, ok)
	}
}

func TestConverter_RoundTrip(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := store.Mapping{
		Collection: "Person",
		Fields: []store.FieldMapping{
			{Name: "fullName", Item: "FullName"},
			{Name: "secret", Policy: store.Policy{SkipInsert: true}},
		},
	}
	e := store.NewEntity("Person",
		store.Field{Name: "fullName", Value: "Ann"},
		store.Field{Name: "age", Value: 41.0},
		store.Field{Name: "tags", Value: []string{"a", "b"}},
		store.Field{Name: "seen", Value: ts},
		store.Field{Name: "secret", Value: "x"},
	)
	c := newConverter()

	doc, err := c.ToNative(e, m, store.OpInsert)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := doc.Item("secret"); ok {
		t.Error("expected secret to be left out on insert")
	}
	doc.UNID = "NEWUNID"
	back := c.FromNative(m, doc)

	for _, f := range e.Fields {
		if f.Name == "secret" {
			if _, ok := back.Find("secret"); ok {
				t.Error("expected secret to be absent after round trip")
			}
			continue
		}
		if got := back.Get(f.Name); !reflect.DeepEqual(got, f.Value) {
			t.Errorf("%s: expected %#v, got %#v", f.Name, f.Value, got)
		}
	}
	if id, _ := back.ID(); id != "NEWUNID" {
		t.Errorf("expected id NEWUNID, got %q", id)
	}
}

func TestConverter_Entities(t *testing.T) {
	docs := []native.Document{{UNID: "A"}, {UNID: "B"}, {UNID: "C"}}

	var ids []string
	for e := range newConverter().Entities(store.Mapping{Collection: "X"}, docs) {
		id, _ := e.ID()
		ids = append(ids, id)
		if id == "B" {
			break
		}
	}
	if !reflect.DeepEqual(ids, []string{"A", "B"}) {
		t.Errorf("expected [A B], got %v", ids)
	}
}

func TestEntity_Add(t *testing.T) {
	e := store.NewEntity("Person", store.Field{Name: "a", Value: 1}, store.Field{Name: "b", Value: 2})
	e.Add("a", 3)

	if len(e.Fields) != 2 || e.Fields[0].Value != 3 {
		t.Errorf("expected a replaced in place, got %+v", e.Fields)
	}
	if _, ok := e.ID(); ok {
		t.Error("expected no id")
	}
	e.Add("id", "")
	if _, ok := e.ID(); ok {
		t.Error("expected empty id to count as absent")
	}
}

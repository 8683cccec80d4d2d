package store_test

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"github.com/jacentio/protondoc/dql"
	"github.com/jacentio/protondoc/store"
)

func where(c store.Condition) *store.Condition { return &c }

func TestTranslateQuery_Scenario(t *testing.T) {
	q := store.Query{Collection: "Person", Where: where(store.Eq("name", "Ann"))}

	tr, err := store.TranslateQuery(q, store.Mapping{}, store.Unbounded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tr.Limit != store.Unbounded {
		t.Errorf("expected unbounded limit, got %d", tr.Limit)
	}
	if tr.Skip != 0 {
		t.Errorf("expected skip 0, got %d", tr.Skip)
	}
	if got := tr.Statement.String(); got != `name = "Ann"` {
		t.Errorf("expected %q, got %q", `name = "Ann"`, got)
	}
}

func TestTranslateQuery_Paging(t *testing.T) {
	tests := []struct {
		skip, limit         int
		wantSkip, wantLimit int
	}{
		{0, 0, 0, store.Unbounded},
		{5, -1, 5, store.Unbounded},
		{10, 1, 10, 1},
		{-3, 20, -3, 20},
	}
	for _, tt := range tests {
		tr, err := store.TranslateQuery(store.Query{Skip: tt.skip, Limit: tt.limit}, store.Mapping{}, store.Unbounded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if tr.Skip != tt.wantSkip || tr.Limit != tt.wantLimit {
			t.Errorf("skip %d limit %d: expected %d/%d, got %d/%d",
				tt.skip, tt.limit, tt.wantSkip, tt.wantLimit, tr.Skip, tr.Limit)
		}
		if tr.Statement != nil {
			t.Errorf("expected no statement, got %v", tr.Statement)
		}
	}
}

func TestTranslateQuery_SortsIgnored(t *testing.T) {
	q := store.Query{
		Where: where(store.Gt("age", 30)),
		Sorts: []store.Sort{{Field: "age", Descending: true}},
	}
	tr, err := store.TranslateQuery(q, store.Mapping{}, store.Unbounded)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := tr.Statement.String(); got != "age > 30" {
		t.Errorf("expected %q, got %q", "age > 30", got)
	}
}

func TestTranslateCondition(t *testing.T) {
	day := civil.Date{Year: 2024, Month: time.June, Day: 1}

	tests := []struct {
		name string
		cond store.Condition
		want string
	}{
		{"eq", store.Eq("name", "Ann"), `name = "Ann"`},
		{"id", store.Eq("id", "ABC"), `@Text(@DocumentUniqueID) = "ABC"`},
		{"id not eq", store.Gt("id", "ABC"), `id > "ABC"`},
		{"gte", store.Gte("age", 18), "age >= 18"},
		{"lt", store.Lt("age", 65.5), "age < 65.5"},
		{"lte", store.Lte("born", day), `born <= @dt("2024-06-01")`},
		{"like", store.Like("name", "A%"), `name like "A%"`},
		{"in", store.In("status", "open", "held"), `status in ("open", "held")`},
		{"between", store.Between("age", 18, 65), "(age >= 18 and age <= 65)"},
		{"and", store.And(store.Eq("a", 1), store.Eq("b", 2)), "(a = 1 and b = 2)"},
		{"or of and", store.Or(store.And(store.Eq("a", 1), store.Eq("b", 2)), store.Eq("c", 3)),
			"((a = 1 and b = 2) or c = 3)"},
		{"single and", store.And(store.Eq("a", 1)), "a = 1"},
		{"not", store.Not(store.Eq("a", 1)), "not (a = 1)"},
		{"quotes", store.Eq("name", `say "hi"`), `name = "say \"hi\""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			term, err := store.TranslateCondition(tt.cond, store.Mapping{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := term.String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestTranslateCondition_ItemNames(t *testing.T) {
	m := store.Mapping{Fields: []store.FieldMapping{{Name: "fullName", Item: "FullName"}}}

	term, err := store.TranslateCondition(store.Eq("fullName", "Ann"), m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := term.String(); got != `FullName = "Ann"` {
		t.Errorf("expected %q, got %q", `FullName = "Ann"`, got)
	}
}

func TestTranslateCondition_RoundTrip(t *testing.T) {
	conds := []store.Condition{
		store.Or(
			store.And(store.Eq("a", 1), store.Not(store.Or(store.Eq("b", "x"), store.Lt("c", 2)))),
			store.In("d", "p", "q"),
		),
		store.And(store.Or(store.Eq("a", 1), store.Eq("b", 2)), store.Or(store.Eq("c", 3), store.Eq("d", 4))),
		store.Not(store.Not(store.Like("name", "A_n%"))),
		store.And(store.Eq("id", "ABC"), store.Between("n", 1, 2)),
	}
	for _, c := range conds {
		term, err := store.TranslateCondition(c, store.Mapping{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		parsed, err := dql.Parse(term.String())
		if err != nil {
			t.Fatalf("%s: parse failed: %v", term, err)
		}
		if !reflect.DeepEqual(parsed, term) {
			t.Errorf("%s: parsed tree differs: %#v", term, parsed)
		}
	}
}

func TestTranslateCondition_Errors(t *testing.T) {
	tests := []struct {
		name string
		cond store.Condition
		kind bool
	}{
		{"empty and", store.And(), false},
		{"empty or", store.Or(), false},
		{"between arity", store.Condition{Op: store.CondBetween, Field: "a", Values: []any{1}}, false},
		{"unknown op", store.Condition{Op: store.CondOp(99), Field: "a", Value: 1}, false},
		{"bad literal", store.Eq("a", []int{1}), true},
		{"bad id", store.Eq("id", 12), true},
		{"bad in", store.In("a", "x", true), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.TranslateCondition(tt.cond, store.Mapping{})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, store.ErrUnsupportedValueKind); got != tt.kind {
				t.Errorf("expected ErrUnsupportedValueKind match %v, got %v (%v)", tt.kind, got, err)
			}
		})
	}
}

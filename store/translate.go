package store

import (
	"fmt"

	"github.com/jacentio/protondoc/dql"
)

// CondOp is the operator of a Condition node.
type CondOp int

const (
	CondEq CondOp = iota
	CondGt
	CondGte
	CondLt
	CondLte
	CondLike
	CondIn
	CondBetween
	CondAnd
	CondOr
	CondNot
)

// Condition is a node of a query's predicate tree. Leaves name a Field and
// carry a Value (Values for In and Between); And, Or and Not carry
// Conditions.
type Condition struct {
	Op         CondOp
	Field      string
	Value      any
	Values     []any
	Conditions []Condition
}

func Eq(field string, v any) Condition   { return Condition{Op: CondEq, Field: field, Value: v} }
func Gt(field string, v any) Condition   { return Condition{Op: CondGt, Field: field, Value: v} }
func Gte(field string, v any) Condition  { return Condition{Op: CondGte, Field: field, Value: v} }
func Lt(field string, v any) Condition   { return Condition{Op: CondLt, Field: field, Value: v} }
func Lte(field string, v any) Condition  { return Condition{Op: CondLte, Field: field, Value: v} }
func Like(field string, v any) Condition { return Condition{Op: CondLike, Field: field, Value: v} }

func In(field string, values ...any) Condition {
	return Condition{Op: CondIn, Field: field, Values: values}
}

// Between matches lo <= field <= hi.
func Between(field string, lo, hi any) Condition {
	return Condition{Op: CondBetween, Field: field, Values: []any{lo, hi}}
}

func And(c ...Condition) Condition { return Condition{Op: CondAnd, Conditions: c} }
func Or(c ...Condition) Condition  { return Condition{Op: CondOr, Conditions: c} }
func Not(c Condition) Condition    { return Condition{Op: CondNot, Conditions: []Condition{c}} }

// Sort is an ordering hint. Hints are accepted but not translated; results
// come back in store order.
type Sort struct {
	Field      string
	Descending bool
}

// Query selects entities of one collection.
type Query struct {
	Collection string

	// Where is the predicate. Nil scans the whole collection.
	Where *Condition

	Skip int

	// Limit caps the result count. Values below 1 mean no limit.
	Limit int

	Sorts []Sort
}

// DeleteQuery names the entities to delete, either by ID or by predicate.
// IDs take precedence; nil and empty IDs are ignored.
type DeleteQuery struct {
	Collection string
	IDs        []*string
	Where      *Condition
}

// Translation is a query rendered for the native store.
type Translation struct {
	// Statement is nil when the query has no predicate.
	Statement dql.Term
	Skip      int
	Limit     int
}

// TranslateQuery renders q, naming items as m stores them. A limit below 1
// becomes unbounded.
func TranslateQuery(q Query, m Mapping, unbounded int) (Translation, error) {
	t := Translation{Skip: q.Skip, Limit: q.Limit}
	if t.Limit < 1 {
		t.Limit = unbounded
	}
	if q.Where != nil {
		stmt, err := TranslateCondition(*q.Where, m)
		if err != nil {
			return Translation{}, err
		}
		t.Statement = stmt
	}
	return t, nil
}

// TranslateCondition renders a predicate tree as a DQL term. Equality on the
// identity field becomes a document unique ID match.
func TranslateCondition(c Condition, m Mapping) (dql.Term, error) {
	item := dql.Item(m.ItemName(c.Field))
	switch c.Op {
	case CondAnd, CondOr:
		if len(c.Conditions) == 0 {
			return nil, fmt.Errorf("protondoc: empty %s condition", connective(c.Op))
		}
		terms := make([]dql.Term, len(c.Conditions))
		for i, sub := range c.Conditions {
			t, err := TranslateCondition(sub, m)
			if err != nil {
				return nil, err
			}
			terms[i] = t
		}
		if c.Op == CondAnd {
			return dql.And(terms...), nil
		}
		return dql.Or(terms...), nil
	case CondNot:
		if len(c.Conditions) != 1 {
			return nil, fmt.Errorf("protondoc: not condition takes one operand, got %d", len(c.Conditions))
		}
		t, err := TranslateCondition(c.Conditions[0], m)
		if err != nil {
			return nil, err
		}
		return dql.Negate(t), nil
	case CondIn:
		lits, err := literals(c.Field, c.Values)
		if err != nil {
			return nil, err
		}
		return item.In(lits...), nil
	case CondBetween:
		if len(c.Values) != 2 {
			return nil, fmt.Errorf("protondoc: field %q: between takes two bounds, got %d", c.Field, len(c.Values))
		}
		lits, err := literals(c.Field, c.Values)
		if err != nil {
			return nil, err
		}
		return dql.And(item.GreaterOrEqual(lits[0]), item.LessOrEqual(lits[1])), nil
	}

	if c.Op == CondEq && c.Field == FieldID {
		id, ok := c.Value.(string)
		if !ok {
			return nil, &ValueKindError{Field: c.Field, Type: typeName(c.Value)}
		}
		return dql.UNID(id), nil
	}
	lit, err := literal(c.Field, c.Value)
	if err != nil {
		return nil, err
	}
	switch c.Op {
	case CondEq:
		return item.Equal(lit), nil
	case CondGt:
		return item.GreaterThan(lit), nil
	case CondGte:
		return item.GreaterOrEqual(lit), nil
	case CondLt:
		return item.LessThan(lit), nil
	case CondLte:
		return item.LessOrEqual(lit), nil
	case CondLike:
		return item.Like(lit), nil
	}
	return nil, fmt.Errorf("protondoc: unknown condition operator %d", c.Op)
}

func connective(op CondOp) string {
	if op == CondAnd {
		return "and"
	}
	return "or"
}

func literal(field string, v any) (dql.Literal, error) {
	lit, err := dql.NewLiteral(v)
	if err != nil {
		return dql.Literal{}, &ValueKindError{Field: field, Type: typeName(v), Err: err}
	}
	return lit, nil
}

func literals(field string, values []any) ([]dql.Literal, error) {
	out := make([]dql.Literal, len(values))
	for i, v := range values {
		lit, err := literal(field, v)
		if err != nil {
			return nil, err
		}
		out[i] = lit
	}
	return out, nil
}

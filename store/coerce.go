package store

import (
	"encoding/json"
	"reflect"
	"time"

	"cloud.google.com/go/civil"
)

// Rule converts values of the types it matches into values the item mapper
// understands.
type Rule interface {
	Match(t reflect.Type) bool
	Coerce(v any) any
}

type typeRule[T any] struct {
	fn func(T) any
}

// RuleFor returns a rule that applies fn to values of type T.
func RuleFor[T any](fn func(T) any) Rule {
	return typeRule[T]{fn: fn}
}

func (r typeRule[T]) Match(t reflect.Type) bool {
	return t == reflect.TypeFor[T]()
}

func (r typeRule[T]) Coerce(v any) any {
	return r.fn(v.(T))
}

// Coercions is an ordered list of rules. The first rule matching a value's
// type replaces the value; values no rule matches pass through unchanged.
type Coercions struct {
	rules []Rule
}

// NewCoercions returns a list holding rules in order.
func NewCoercions(rules ...Rule) *Coercions {
	return &Coercions{rules: append([]Rule(nil), rules...)}
}

// Register appends a rule. It is consulted after every rule already held.
func (c *Coercions) Register(r Rule) {
	c.rules = append(c.rules, r)
}

// Lookup returns the first rule matching t.
func (c *Coercions) Lookup(t reflect.Type) (Rule, bool) {
	if c == nil || t == nil {
		return nil, false
	}
	for _, r := range c.rules {
		if r.Match(t) {
			return r, true
		}
	}
	return nil, false
}

// Apply coerces v with the first matching rule, if any.
func (c *Coercions) Apply(v any) any {
	if v == nil {
		return nil
	}
	if r, ok := c.Lookup(reflect.TypeOf(v)); ok {
		return r.Coerce(v)
	}
	return v
}

// DefaultRules returns the rules used when Config.Coercions is unset:
// civil.DateTime becomes a UTC time.Time, and named string, numeric and
// slice types are reduced to their underlying built-in types.
func DefaultRules() []Rule {
	return []Rule{
		RuleFor(func(dt civil.DateTime) any { return dt.In(time.UTC) }),
		underlyingRule{},
	}
}

// underlyingRule reduces named types such as `type Status string` or
// `type Tags []Status` to built-in types. json.Number is left alone.
type underlyingRule struct{}

var jsonNumber = reflect.TypeFor[json.Number]()

func (underlyingRule) Match(t reflect.Type) bool {
	switch {
	case t == jsonNumber, t.Kind() == reflect.Slice && t.Elem() == jsonNumber:
		// The mapper reads json.Number as a number.
		return false
	case isBasic(t.Kind()):
		return t.PkgPath() != ""
	case t.Kind() == reflect.Slice:
		e := t.Elem()
		return isBasic(e.Kind()) && (t.PkgPath() != "" || e.PkgPath() != "")
	}
	return false
}

func (underlyingRule) Coerce(v any) any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice {
		return basicValue(rv)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = basicValue(rv.Index(i))
	}
	return out
}

func isBasic(k reflect.Kind) bool {
	switch k {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func basicValue(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	}
	return rv.Interface()
}

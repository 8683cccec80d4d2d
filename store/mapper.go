package store

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"time"

	"cloud.google.com/go/civil"

	"github.com/jacentio/protondoc/native"
)

// MapItem maps one (already coerced) field value to a native item.
//
// Transient fields, nil values and empty slices become a null text item.
// JSON-encoded fields become a non-summary text item whatever the value.
// Everything else is dispatched on its Go type; types with no native kind
// fail with a *ValueKindError.
func MapItem(name string, value any, p Policy) (native.Item, error) {
	flags := p.Flags()
	if p.Transient || isEmpty(value) {
		return native.NullItem(name, flags), nil
	}

	switch p.Encoding {
	case EncodingDefault:
	case EncodingJSON:
		b, err := json.Marshal(value)
		if err != nil {
			return native.Item{}, &ValueKindError{Field: name, Type: typeName(value), Err: err}
		}
		return native.Item{Name: name, Flags: flags | native.FlagNonSummary, Value: native.Text(b)}, nil
	default:
		return native.Item{}, &ValueKindError{Field: name, Type: typeName(value), Encoding: p.Encoding}
	}

	v, err := toValue(value, p.Precision)
	if err != nil {
		return native.Item{}, &ValueKindError{Field: name, Type: typeName(value), Err: err}
	}
	if v.Len() == 0 {
		return native.NullItem(name, flags), nil
	}
	return native.Item{Name: name, Flags: flags, Value: v}, nil
}

// isEmpty reports whether v is nil, a nil pointer, or an empty slice, array
// or map.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	}
	return false
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}

// toValue dispatches v to the native value variant of its kind.
func toValue(v any, precision int) (native.Value, error) {
	switch x := v.(type) {
	case native.Value:
		return x, nil
	case string:
		return native.Text(x), nil
	case []string:
		return native.TextList(append([]string(nil), x...)), nil
	case civil.Date:
		return native.Date(x), nil
	case []civil.Date:
		return native.DateList(append([]civil.Date(nil), x...)), nil
	case civil.Time:
		return native.Time(x), nil
	case []civil.Time:
		return native.TimeList(append([]civil.Time(nil), x...)), nil
	case time.Time:
		return native.DateTime(x), nil
	case []time.Time:
		return native.DateTimeList(append([]time.Time(nil), x...)), nil
	case []byte:
		return nil, fmt.Errorf("binary values have no item kind")
	case []any:
		return listValue(x, precision)
	}

	if f, ok := number(v); ok {
		return native.Number(roundTo(f, precision)), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		nums := make([]float64, rv.Len())
		for i := range nums {
			f, ok := number(rv.Index(i).Interface())
			if !ok {
				return nil, fmt.Errorf("element %d of %s is not a supported kind", i, rv.Type())
			}
			nums[i] = roundTo(f, precision)
		}
		return native.NumberList(nums), nil
	}
	return nil, fmt.Errorf("no native item kind for %T", v)
}

// listValue maps a []any whose elements all map to the same scalar kind.
func listValue(values []any, precision int) (native.Value, error) {
	scalars := make([]native.Value, len(values))
	for i, e := range values {
		if e == nil {
			return nil, fmt.Errorf("element %d is nil", i)
		}
		sv, err := toValue(e, precision)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if sv.List() {
			return nil, fmt.Errorf("element %d is itself a list", i)
		}
		if sv.Kind() != scalars0(scalars, sv).Kind() {
			return nil, fmt.Errorf("element %d is %s, list is %s", i, sv.Kind(), scalars[0].Kind())
		}
		scalars[i] = sv
	}

	switch scalars[0].Kind() {
	case native.KindText:
		return collect[native.Text, string](scalars, native.TextList(nil)), nil
	case native.KindNumber:
		return collect[native.Number, float64](scalars, native.NumberList(nil)), nil
	case native.KindDate:
		return collect[native.Date, civil.Date](scalars, native.DateList(nil)), nil
	case native.KindTime:
		return collect[native.Time, civil.Time](scalars, native.TimeList(nil)), nil
	case native.KindDateTime:
		return collect[native.DateTime, time.Time](scalars, native.DateTimeList(nil)), nil
	}
	return nil, fmt.Errorf("unknown item kind %s", scalars[0].Kind())
}

// scalars0 returns the first mapped element, or sv when none is mapped yet.
func scalars0(scalars []native.Value, sv native.Value) native.Value {
	if scalars[0] == nil {
		return sv
	}
	return scalars[0]
}

func collect[S native.Value, T any, L ~[]T](scalars []native.Value, _ L) L {
	out := make(L, len(scalars))
	for i, s := range scalars {
		out[i] = s.(S).Any().(T)
	}
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// roundTo rounds f half away from zero to precision decimal places.
func roundTo(f float64, precision int) float64 {
	if precision <= 0 {
		return f
	}
	scale := math.Pow10(precision)
	r := math.Round(f*scale) / scale
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return f
	}
	return r
}

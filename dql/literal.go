package dql

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Literal is a DQL constant. It holds a string, a float64, a civil.Date, a
// civil.Time or a time.Time.
type Literal struct {
	v any
}

// String returns a text literal.
func String(s string) Literal { return Literal{v: s} }

// Number returns a numeric literal.
func Number(f float64) Literal { return Literal{v: f} }

// Date returns a date-only literal.
func Date(d civil.Date) Literal { return Literal{v: d} }

// Time returns a time-only literal.
func Time(t civil.Time) Literal { return Literal{v: t} }

// Timestamp returns a date-time literal.
func Timestamp(t time.Time) Literal { return Literal{v: t} }

// NewLiteral converts v to a literal. Go numeric types become numbers.
func NewLiteral(v any) (Literal, error) {
	switch x := v.(type) {
	case string:
		return String(x), nil
	case civil.Date:
		return Date(x), nil
	case civil.Time:
		return Time(x), nil
	case time.Time:
		return Timestamp(x), nil
	case Literal:
		return x, nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Number(float64(rv.Int())), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Literal{}, fmt.Errorf("dql: %v has no literal form", f)
		}
		return Number(f), nil
	case reflect.String:
		return String(rv.String()), nil
	}
	return Literal{}, fmt.Errorf("dql: unsupported literal type %T", v)
}

// Value returns the literal's Go value.
func (l Literal) Value() any { return l.v }

func (l Literal) String() string {
	var b strings.Builder
	l.write(&b)
	return b.String()
}

func (l Literal) write(b *strings.Builder) {
	switch v := l.v.(type) {
	case string:
		writeQuoted(b, v)
	case float64:
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	case civil.Date:
		writeDT(b, v.String())
	case civil.Time:
		writeDT(b, v.String())
	case time.Time:
		writeDT(b, v.Format(time.RFC3339Nano))
	default:
		writeQuoted(b, "")
	}
}

func writeDT(b *strings.Builder, s string) {
	b.WriteString("@dt(")
	writeQuoted(b, s)
	b.WriteByte(')')
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
}

// parseDT interprets the content of an @dt("...") literal.
func parseDT(s string) (Literal, error) {
	if strings.Contains(s, "T") {
		t, err := time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return Literal{}, fmt.Errorf("dql: bad date-time %q: %w", s, err)
		}
		return Timestamp(t), nil
	}
	if strings.Contains(s, "-") {
		d, err := civil.ParseDate(s)
		if err != nil {
			return Literal{}, fmt.Errorf("dql: bad date %q: %w", s, err)
		}
		return Date(d), nil
	}
	t, err := civil.ParseTime(s)
	if err != nil {
		return Literal{}, fmt.Errorf("dql: bad time %q: %w", s, err)
	}
	return Time(t), nil
}

// Package native models the document store's own item format and the client
// contract used to reach it.
package native

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Kind is the storage kind of an item.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindDate
	KindTime
	KindDateTime
)

var kindNames = [...]string{"text", "number", "date", "time", "datetime"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the kind named by s.
func ParseKind(s string) (Kind, error) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("native: unknown item kind %q", s)
}

// Flags annotate an item at write time.
type Flags uint8

const (
	FlagAuthors Flags = 1 << iota
	FlagReaders
	FlagNames
	FlagEncrypted
	FlagNonSummary
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{FlagAuthors, "authors"},
	{FlagReaders, "readers"},
	{FlagNames, "names"},
	{FlagEncrypted, "encrypted"},
	{FlagNonSummary, "nonsummary"},
}

// Has reports whether every flag in f2 is set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Names returns the names of the set flags in a stable order.
func (f Flags) Names() []string {
	var names []string
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Flags) String() string {
	return strings.Join(f.Names(), "|")
}

// ParseFlags is the inverse of Flags.Names. Unknown names are an error.
func ParseFlags(names []string) (Flags, error) {
	var f Flags
next:
	for _, n := range names {
		for _, fn := range flagNames {
			if fn.name == n {
				f |= fn.flag
				continue next
			}
		}
		return 0, fmt.Errorf("native: unknown item flag %q", n)
	}
	return f, nil
}

// Value is the content of an item. The set of implementations is closed:
// one single-valued and one multi-valued variant per Kind.
type Value interface {
	Kind() Kind
	// List reports whether the value is multi-valued.
	List() bool
	// Len is the number of values held.
	Len() int
	// Any returns the value as a plain Go value: a scalar for single-valued
	// variants and a slice for lists.
	Any() any
	isValue()
}

type (
	Text         string
	TextList     []string
	Number       float64
	NumberList   []float64
	Date         civil.Date
	DateList     []civil.Date
	Time         civil.Time
	TimeList     []civil.Time
	DateTime     time.Time
	DateTimeList []time.Time
)

func (Text) Kind() Kind         { return KindText }
func (TextList) Kind() Kind     { return KindText }
func (Number) Kind() Kind       { return KindNumber }
func (NumberList) Kind() Kind   { return KindNumber }
func (Date) Kind() Kind         { return KindDate }
func (DateList) Kind() Kind     { return KindDate }
func (Time) Kind() Kind         { return KindTime }
func (TimeList) Kind() Kind     { return KindTime }
func (DateTime) Kind() Kind     { return KindDateTime }
func (DateTimeList) Kind() Kind { return KindDateTime }

func (Text) List() bool         { return false }
func (TextList) List() bool     { return true }
func (Number) List() bool       { return false }
func (NumberList) List() bool   { return true }
func (Date) List() bool         { return false }
func (DateList) List() bool     { return true }
func (Time) List() bool         { return false }
func (TimeList) List() bool     { return true }
func (DateTime) List() bool     { return false }
func (DateTimeList) List() bool { return true }

func (Text) Len() int           { return 1 }
func (v TextList) Len() int     { return len(v) }
func (Number) Len() int         { return 1 }
func (v NumberList) Len() int   { return len(v) }
func (Date) Len() int           { return 1 }
func (v DateList) Len() int     { return len(v) }
func (Time) Len() int           { return 1 }
func (v TimeList) Len() int     { return len(v) }
func (DateTime) Len() int       { return 1 }
func (v DateTimeList) Len() int { return len(v) }

func (v Text) Any() any         { return string(v) }
func (v TextList) Any() any     { return []string(v) }
func (v Number) Any() any       { return float64(v) }
func (v NumberList) Any() any   { return []float64(v) }
func (v Date) Any() any         { return civil.Date(v) }
func (v DateList) Any() any     { return []civil.Date(v) }
func (v Time) Any() any         { return civil.Time(v) }
func (v TimeList) Any() any     { return []civil.Time(v) }
func (v DateTime) Any() any     { return time.Time(v) }
func (v DateTimeList) Any() any { return []time.Time(v) }

func (Text) isValue()         {}
func (TextList) isValue()     {}
func (Number) isValue()       {}
func (NumberList) isValue()   {}
func (Date) isValue()         {}
func (DateList) isValue()     {}
func (Time) isValue()         {}
func (TimeList) isValue()     {}
func (DateTime) isValue()     {}
func (DateTimeList) isValue() {}

// Item is a named, flag-annotated value. A nil Value is the null text item.
type Item struct {
	Name  string
	Flags Flags
	Value Value
}

// TextItem returns a single-valued text item.
func TextItem(name, value string, flags ...Flags) Item {
	return Item{Name: name, Flags: join(flags), Value: Text(value)}
}

// NullItem returns a text item with no value.
func NullItem(name string, flags ...Flags) Item {
	return Item{Name: name, Flags: join(flags)}
}

func join(flags []Flags) Flags {
	var f Flags
	for _, fl := range flags {
		f |= fl
	}
	return f
}

// Kind returns the item's storage kind. Null items are text.
func (i Item) Kind() Kind {
	if i.Value == nil {
		return KindText
	}
	return i.Value.Kind()
}

// IsNull reports whether the item carries no value.
func (i Item) IsNull() bool {
	return i.Value == nil || i.Value.Len() == 0
}

// Values returns the item's values one by one, as plain Go values.
func (i Item) Values() []any {
	if i.Value == nil {
		return nil
	}
	switch v := i.Value.(type) {
	case Text, Number, Date, Time, DateTime:
		return []any{v.Any()}
	case TextList:
		return anySlice(v)
	case NumberList:
		return anySlice(v)
	case DateList:
		return anySlice(v)
	case TimeList:
		return anySlice(v)
	case DateTimeList:
		return anySlice(v)
	}
	return nil
}

func anySlice[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

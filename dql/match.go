package dql

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/jacentio/protondoc/native"
)

// Match evaluates t against doc. A leaf on a multi-valued item holds when any
// of its values satisfies it; a leaf on a missing item never holds.
func Match(t Term, doc native.Document) (bool, error) {
	switch t := t.(type) {
	case Comparison:
		return matchComparison(t, doc)
	case In:
		for _, v := range t.Values {
			ok, err := matchComparison(Comparison{Item: t.Item, Op: OpEqual, Value: v}, doc)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	case Junction:
		if len(t.Terms) == 0 {
			return true, nil
		}
		for _, sub := range t.Terms {
			ok, err := Match(sub, doc)
			if err != nil {
				return false, err
			}
			if t.Conn == ConnOr && ok {
				return true, nil
			}
			if t.Conn == ConnAnd && !ok {
				return false, nil
			}
		}
		return t.Conn == ConnAnd, nil
	case Not:
		ok, err := Match(t.Term, doc)
		return !ok, err
	}
	return false, fmt.Errorf("dql: cannot evaluate %T", t)
}

func matchComparison(c Comparison, doc native.Document) (bool, error) {
	if strings.EqualFold(c.Item, DocumentUniqueID) {
		return compare(doc.UNID, c.Op, c.Value.v, true)
	}
	it, ok := doc.Item(c.Item)
	if !ok {
		return false, nil
	}
	for _, v := range it.Values() {
		ok, err := compare(v, c.Op, c.Value.v, false)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// compare applies op to a stored value and a literal of the same kind.
// Values of different kinds never match.
func compare(stored any, op Op, lit any, foldCase bool) (bool, error) {
	if op == OpLike {
		s, ok1 := stored.(string)
		pattern, ok2 := lit.(string)
		if !ok1 || !ok2 {
			return false, nil
		}
		re, err := likePattern(pattern)
		if err != nil {
			return false, err
		}
		return re.MatchString(s), nil
	}
	var cmp int
	switch a := stored.(type) {
	case string:
		b, ok := lit.(string)
		if !ok {
			return false, nil
		}
		if foldCase {
			a, b = strings.ToUpper(a), strings.ToUpper(b)
		}
		cmp = strings.Compare(a, b)
	case float64:
		b, ok := lit.(float64)
		if !ok {
			return false, nil
		}
		cmp = compareOrdered(a, b)
	case civil.Date:
		b, ok := lit.(civil.Date)
		if !ok {
			return false, nil
		}
		cmp = compareOrdered(a.DaysSince(b), 0)
	case civil.Time:
		b, ok := lit.(civil.Time)
		if !ok {
			return false, nil
		}
		cmp = compareOrdered(nanosOfDay(a), nanosOfDay(b))
	case time.Time:
		b, ok := lit.(time.Time)
		if !ok {
			return false, nil
		}
		cmp = a.Compare(b)
	default:
		return false, nil
	}
	switch op {
	case OpEqual:
		return cmp == 0, nil
	case OpGreaterThan:
		return cmp > 0, nil
	case OpGreaterOrEqual:
		return cmp >= 0, nil
	case OpLessThan:
		return cmp < 0, nil
	case OpLessOrEqual:
		return cmp <= 0, nil
	}
	return false, fmt.Errorf("dql: unknown operator %q", op)
}

func compareOrdered[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func nanosOfDay(t civil.Time) int64 {
	return ((int64(t.Hour)*60+int64(t.Minute))*60+int64(t.Second))*int64(time.Second) + int64(t.Nanosecond)
}

// likePattern compiles a LIKE pattern: % matches any run, _ one character.
func likePattern(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?s)^")
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	return regexp.Compile(b.String())
}

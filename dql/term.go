// Package dql builds, renders, parses and evaluates predicates of the
// store's textual query language (DQL).
//
// Rendering follows a small set of rules so that any term tree survives a
// trip through its text form:
//
//   - a comparison renders as `item op literal`
//   - a junction of two or more terms is always wrapped in parentheses,
//     e.g. `(a = 1 and b = 2)`
//   - a negation renders as `not (term)`
//   - keywords are lower case
//
// Parse(t.String()) returns a tree equal to t.
package dql

import (
	"strings"
)

// DocumentUniqueID is the item expression that evaluates to a document's UNID.
const DocumentUniqueID = "@Text(@DocumentUniqueID)"

// Op is a comparison operator.
type Op string

const (
	OpEqual          Op = "="
	OpGreaterThan    Op = ">"
	OpGreaterOrEqual Op = ">="
	OpLessThan       Op = "<"
	OpLessOrEqual    Op = "<="
	OpLike           Op = "like"
)

// Connective joins terms of a Junction.
type Connective string

const (
	ConnAnd Connective = "and"
	ConnOr  Connective = "or"
)

// Term is a node of a predicate tree.
type Term interface {
	// String renders the term as DQL.
	String() string
	write(b *strings.Builder)
}

// Comparison is an `item op literal` leaf.
type Comparison struct {
	Item  string
	Op    Op
	Value Literal
}

// In is an `item in (literal, ...)` leaf.
type In struct {
	Item   string
	Values []Literal
}

// Junction joins terms with the same connective.
type Junction struct {
	Conn  Connective
	Terms []Term
}

// Not negates a term.
type Not struct {
	Term Term
}

func (c Comparison) String() string { return render(c) }
func (i In) String() string         { return render(i) }
func (j Junction) String() string   { return render(j) }
func (n Not) String() string        { return render(n) }

func render(t Term) string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (c Comparison) write(b *strings.Builder) {
	writeItem(b, c.Item)
	b.WriteByte(' ')
	b.WriteString(string(c.Op))
	b.WriteByte(' ')
	c.Value.write(b)
}

func (i In) write(b *strings.Builder) {
	writeItem(b, i.Item)
	b.WriteString(" in (")
	for n, v := range i.Values {
		if n > 0 {
			b.WriteString(", ")
		}
		v.write(b)
	}
	b.WriteByte(')')
}

// A junction with fewer than two terms is never built by And/Or; it renders
// its single term (or nothing) so hand-built trees still produce valid text.
func (j Junction) write(b *strings.Builder) {
	switch len(j.Terms) {
	case 0:
		return
	case 1:
		j.Terms[0].write(b)
		return
	}
	b.WriteByte('(')
	for n, t := range j.Terms {
		if n > 0 {
			b.WriteByte(' ')
			b.WriteString(string(j.Conn))
			b.WriteByte(' ')
		}
		t.write(b)
	}
	b.WriteByte(')')
}

func (n Not) write(b *strings.Builder) {
	b.WriteString("not ")
	if j, ok := n.Term.(Junction); ok && len(j.Terms) > 1 {
		j.write(b)
		return
	}
	b.WriteByte('(')
	n.Term.write(b)
	b.WriteByte(')')
}

// writeItem writes an item reference. Plain identifiers and @-formulas are
// written as-is; anything else is single-quoted.
func writeItem(b *strings.Builder, name string) {
	if isIdent(name) || isFormula(name) {
		b.WriteString(name)
		return
	}
	b.WriteByte('\'')
	b.WriteString(strings.ReplaceAll(name, "'", "''"))
	b.WriteByte('\'')
}

func isIdent(s string) bool {
	if s == "" || isKeyword(s) {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || r == '.':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// isFormula reports whether name reads back as a single @-formula token.
func isFormula(name string) bool {
	if !strings.HasPrefix(name, "@") {
		return false
	}
	tok, n, err := readFormula(name, 0)
	return err == nil && n == len(name) && tok.kind == tIdent
}

func isKeyword(s string) bool {
	switch strings.ToLower(s) {
	case "and", "or", "not", "in", "like":
		return true
	}
	return false
}

// ItemRef starts a comparison on an item.
type ItemRef string

// Item returns a reference to the named item.
func Item(name string) ItemRef {
	return ItemRef(name)
}

func (r ItemRef) Equal(v Literal) Term          { return Comparison{string(r), OpEqual, v} }
func (r ItemRef) GreaterThan(v Literal) Term    { return Comparison{string(r), OpGreaterThan, v} }
func (r ItemRef) GreaterOrEqual(v Literal) Term { return Comparison{string(r), OpGreaterOrEqual, v} }
func (r ItemRef) LessThan(v Literal) Term       { return Comparison{string(r), OpLessThan, v} }
func (r ItemRef) LessOrEqual(v Literal) Term    { return Comparison{string(r), OpLessOrEqual, v} }
func (r ItemRef) Like(v Literal) Term           { return Comparison{string(r), OpLike, v} }

// In matches any of values.
func (r ItemRef) In(values ...Literal) Term {
	return In{Item: string(r), Values: values}
}

// UNID matches the document whose unique identifier is unid.
func UNID(unid string) Term {
	return Item(DocumentUniqueID).Equal(String(unid))
}

// And joins terms with `and`. A single term is returned unchanged.
func And(terms ...Term) Term {
	return junction(ConnAnd, terms)
}

// Or joins terms with `or`. A single term is returned unchanged.
func Or(terms ...Term) Term {
	return junction(ConnOr, terms)
}

func junction(conn Connective, terms []Term) Term {
	if len(terms) == 1 {
		return terms[0]
	}
	return Junction{Conn: conn, Terms: terms}
}

// Negate wraps t in a negation.
func Negate(t Term) Term {
	return Not{Term: t}
}

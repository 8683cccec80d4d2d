package dql

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tEOF tokenKind = iota
	tIdent
	tQuotedIdent
	tString
	tNumber
	tDateTime
	tOp
	tLParen
	tRParen
	tComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// tokenize splits s into tokens. Quoted strings, quoted item names and
// @-formulas (with their balanced parentheses) are kept whole.
func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{tLParen, "(", i})
			i++
		case ch == ')':
			tokens = append(tokens, token{tRParen, ")", i})
			i++
		case ch == ',':
			tokens = append(tokens, token{tComma, ",", i})
			i++
		case ch == '=':
			tokens = append(tokens, token{tOp, "=", i})
			i++
		case ch == '<' || ch == '>':
			if i+1 < len(s) && s[i+1] == '=' {
				tokens = append(tokens, token{tOp, s[i : i+2], i})
				i += 2
			} else {
				tokens = append(tokens, token{tOp, s[i : i+1], i})
				i++
			}
		case ch == '"':
			str, n, err := readString(s, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tString, str, i})
			i += n
		case ch == '\'':
			name, n, err := readQuotedName(s, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{tQuotedIdent, name, i})
			i += n
		case ch == '@':
			tok, n, err := readFormula(s, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i += n
		case ch == '-' || ch == '+' || (ch >= '0' && ch <= '9'):
			j := i + 1
			for j < len(s) && strings.IndexByte("0123456789.eE+-", s[j]) >= 0 {
				j++
			}
			tokens = append(tokens, token{tNumber, s[i:j], i})
			i = j
		default:
			j := i
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			if j == i {
				return nil, fmt.Errorf("dql: unexpected character %q at %d", ch, i)
			}
			tokens = append(tokens, token{tIdent, s[i:j], i})
			i = j
		}
	}
	tokens = append(tokens, token{tEOF, "", len(s)})
	return tokens, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '$' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// readString reads a double-quoted string starting at s[start] and returns
// its unescaped content and the number of bytes consumed.
func readString(s string, start int) (string, int, error) {
	var b strings.Builder
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return "", 0, fmt.Errorf("dql: dangling escape at %d", i)
			}
			i++
			b.WriteByte(s[i])
		case '"':
			return b.String(), i - start + 1, nil
		default:
			b.WriteByte(s[i])
		}
	}
	return "", 0, fmt.Errorf("dql: unterminated string at %d", start)
}

// readQuotedName reads a single-quoted item name. A doubled quote escapes one.
func readQuotedName(s string, start int) (string, int, error) {
	var b strings.Builder
	for i := start + 1; i < len(s); i++ {
		if s[i] == '\'' {
			if i+1 < len(s) && s[i+1] == '\'' {
				b.WriteByte('\'')
				i++
				continue
			}
			return b.String(), i - start + 1, nil
		}
		b.WriteByte(s[i])
	}
	return "", 0, fmt.Errorf("dql: unterminated item name at %d", start)
}

// readFormula reads an @-formula such as @Text(@DocumentUniqueID) or a
// @dt("...") literal.
func readFormula(s string, start int) (token, int, error) {
	j := start + 1
	for j < len(s) && isIdentByte(s[j]) {
		j++
	}
	name := s[start:j]
	if j >= len(s) || s[j] != '(' {
		return token{tIdent, name, start}, j - start, nil
	}
	if strings.EqualFold(name, "@dt") {
		k := j + 1
		if k >= len(s) || s[k] != '"' {
			return token{}, 0, fmt.Errorf("dql: @dt expects a quoted argument at %d", k)
		}
		str, n, err := readString(s, k)
		if err != nil {
			return token{}, 0, err
		}
		k += n
		if k >= len(s) || s[k] != ')' {
			return token{}, 0, fmt.Errorf("dql: unterminated @dt at %d", start)
		}
		return token{tDateTime, str, start}, k + 1 - start, nil
	}
	depth := 0
	for k := j; k < len(s); k++ {
		switch s[k] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return token{tIdent, s[start : k+1], start}, k + 1 - start, nil
			}
		}
	}
	return token{}, 0, fmt.Errorf("dql: unbalanced formula at %d", start)
}

type parser struct {
	tokens []token
	pos    int
}

// Parse parses a DQL predicate. `and` binds tighter than `or`.
func Parse(s string) (Term, error) {
	tokens, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	t, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tEOF {
		return nil, fmt.Errorf("dql: unexpected %q at %d", tok.text, tok.pos)
	}
	return t, nil
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tEOF {
		p.pos++
	}
	return tok
}

func (p *parser) keyword(word string) bool {
	tok := p.peek()
	if tok.kind == tIdent && strings.EqualFold(tok.text, word) {
		p.pos++
		return true
	}
	return false
}

func (p *parser) parseOr() (Term, error) {
	return p.parseChain(ConnOr, p.parseAnd)
}

func (p *parser) parseAnd() (Term, error) {
	return p.parseChain(ConnAnd, p.parseUnary)
}

func (p *parser) parseChain(conn Connective, operand func() (Term, error)) (Term, error) {
	first, err := operand()
	if err != nil {
		return nil, err
	}
	terms := []Term{first}
	for p.keyword(string(conn)) {
		t, err := operand()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return junction(conn, terms), nil
}

func (p *parser) parseUnary() (Term, error) {
	if p.keyword("not") {
		t, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Negate(t), nil
	}
	if p.peek().kind == tLParen {
		p.next()
		t, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.kind != tRParen {
			return nil, fmt.Errorf("dql: expected ) at %d, got %q", tok.pos, tok.text)
		}
		return t, nil
	}
	return p.parseLeaf()
}

func (p *parser) parseLeaf() (Term, error) {
	item := p.next()
	if item.kind != tQuotedIdent && (item.kind != tIdent || isKeyword(item.text)) {
		return nil, fmt.Errorf("dql: expected item name at %d, got %q", item.pos, item.text)
	}
	if p.keyword("in") {
		return p.parseIn(item.text)
	}
	var op Op
	switch tok := p.next(); {
	case tok.kind == tOp:
		op = Op(tok.text)
	case tok.kind == tIdent && strings.EqualFold(tok.text, "like"):
		op = OpLike
	default:
		return nil, fmt.Errorf("dql: expected operator at %d, got %q", tok.pos, tok.text)
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return Comparison{Item: item.text, Op: op, Value: lit}, nil
}

func (p *parser) parseIn(item string) (Term, error) {
	if tok := p.next(); tok.kind != tLParen {
		return nil, fmt.Errorf("dql: expected ( after in at %d", tok.pos)
	}
	var values []Literal
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, lit)
		tok := p.next()
		if tok.kind == tRParen {
			break
		}
		if tok.kind != tComma {
			return nil, fmt.Errorf("dql: expected , or ) at %d, got %q", tok.pos, tok.text)
		}
	}
	return In{Item: item, Values: values}, nil
}

func (p *parser) parseLiteral() (Literal, error) {
	tok := p.next()
	switch tok.kind {
	case tString:
		return String(tok.text), nil
	case tNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return Literal{}, fmt.Errorf("dql: bad number %q at %d", tok.text, tok.pos)
		}
		return Number(f), nil
	case tDateTime:
		return parseDT(tok.text)
	}
	return Literal{}, fmt.Errorf("dql: expected literal at %d, got %q", tok.pos, tok.text)
}

package trie

import (
	"strings"
	"unicode"

	"github.com/m-mizutani/goerr/v2"
	"github.com/ppiankov/casedex/internal/model"
)

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind   tokenKind
	text   string
	quoted bool
	pos    int
}

// tokenize splits a query into terms, operators and parentheses. Quoted
// phrases are single terms and never operators.
func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '"':
			end := i + 1
			for end < len(runes) && runes[end] != '"' {
				end++
			}
			if end >= len(runes) {
				return nil, goerr.Wrap(model.ErrInvalidQuery, "unterminated quote", goerr.V("pos", i))
			}
			tokens = append(tokens, token{kind: tokTerm, text: string(runes[i+1 : end]), quoted: true, pos: i})
			i = end + 1
		default:
			start := i
			for i < len(runes) && !unicode.IsSpace(runes[i]) && runes[i] != '(' && runes[i] != ')' && runes[i] != '"' {
				i++
			}
			word := string(runes[start:i])
			tok := token{kind: tokTerm, text: word, pos: start}
			switch strings.ToUpper(word) {
			case "AND":
				tok.kind = tokAnd
			case "OR":
				tok.kind = tokOr
			case "NOT":
				tok.kind = tokNot
			}
			tokens = append(tokens, tok)
		}
	}

	return tokens, nil
}

// queryParser evaluates while it parses. Binary operators have no
// precedence and associate left to right.
type queryParser struct {
	trie    *Trie
	tokens  []token
	pos     int
	negated bool
}

// Query evaluates a boolean expression over indexed keys.
//
//	housing_denial AND section_202
//	(ellingham OR "mental health") AND NOT compensation
//	housing* OR sar
//
// A trailing `*` turns a term into a prefix search. NOT takes the
// difference against every indexed document and may not be nested.
func (t *Trie) Query(expr string) ([]string, error) {
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, goerr.Wrap(model.ErrInvalidQuery, "empty query")
	}

	p := &queryParser{trie: t, tokens: tokens}
	result, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok, ok := p.peek(); ok {
		return nil, p.unexpected(tok)
	}

	return sorted(result), nil
}

func (p *queryParser) parseExpr() (docSet, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.kind == tokRParen {
			return left, nil
		}

		switch tok.kind {
		case tokAnd, tokOr:
			p.pos++
		case tokTerm:
			return nil, goerr.Wrap(model.ErrInvalidQuery, "unknown operator",
				goerr.V("operator", tok.text), goerr.V("pos", tok.pos))
		default:
			return nil, p.unexpected(tok)
		}

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		if tok.kind == tokAnd {
			left = intersect(left, right)
		} else {
			left = union(left, right)
		}
	}
}

func (p *queryParser) parseUnary() (docSet, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, goerr.Wrap(model.ErrInvalidQuery, "unexpected end of query")
	}
	if tok.kind != tokNot {
		return p.parsePrimary()
	}

	if p.negated {
		return nil, goerr.Wrap(model.ErrInvalidQuery, "nested NOT", goerr.V("pos", tok.pos))
	}
	p.pos++

	p.negated = true
	operand, err := p.parsePrimary()
	p.negated = false
	if err != nil {
		return nil, err
	}

	return difference(p.trie.universe, operand), nil
}

func (p *queryParser) parsePrimary() (docSet, error) {
	tok, ok := p.peek()
	if !ok {
		return nil, goerr.Wrap(model.ErrInvalidQuery, "unexpected end of query")
	}

	switch tok.kind {
	case tokTerm:
		p.pos++
		return p.term(tok), nil
	case tokLParen:
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		closing, ok := p.peek()
		if !ok || closing.kind != tokRParen {
			return nil, goerr.Wrap(model.ErrInvalidQuery, "missing closing parenthesis", goerr.V("pos", tok.pos))
		}
		p.pos++
		return inner, nil
	case tokNot:
		return nil, goerr.Wrap(model.ErrInvalidQuery, "nested NOT", goerr.V("pos", tok.pos))
	default:
		return nil, p.unexpected(tok)
	}
}

func (p *queryParser) term(tok token) docSet {
	if !tok.quoted && strings.HasSuffix(tok.text, "*") {
		return p.trie.prefixSet(NormalizeKey(strings.TrimSuffix(tok.text, "*")))
	}
	return p.trie.lookupSet(NormalizeKey(tok.text))
}

func (p *queryParser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *queryParser) unexpected(tok token) error {
	return goerr.Wrap(model.ErrInvalidQuery, "unexpected token",
		goerr.V("token", tok.text), goerr.V("pos", tok.pos))
}

func intersect(a, b docSet) docSet {
	if len(a) > len(b) {
		a, b = b, a
	}
	out := make(docSet)
	for id := range a {
		if _, ok := b[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

func union(a, b docSet) docSet {
	out := make(docSet, len(a)+len(b))
	for id := range a {
		out[id] = struct{}{}
	}
	for id := range b {
		out[id] = struct{}{}
	}
	return out
}

func difference(a, b docSet) docSet {
	out := make(docSet)
	for id := range a {
		if _, ok := b[id]; !ok {
			out[id] = struct{}{}
		}
	}
	return out
}

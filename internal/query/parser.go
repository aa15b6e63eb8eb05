// Package query implements the lake's restricted query language: a
// pipe-chained sequence of table stages such as
//
//	filter(discount_pct_calc > 50 and category == 'Clothing') | sort(selling_price_clean, false) | head(10)
//
// Queries are parsed into an AST and evaluated against one table. Anything
// outside the grammar is rejected at parse time.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"medallion-demo/internal/domain"
	"medallion-demo/internal/frame"
)

// DefaultHeadRows is the row count of head() without an argument.
const DefaultHeadRows = 5

// scalarFuncs are the aggregate functions accepted by aggregate().
var scalarFuncs = []frame.AggFunc{
	frame.AggCount, frame.AggSum, frame.AggMean, frame.AggMedian, frame.AggMin, frame.AggMax,
}

// Parser is a recursive-descent parser with one token of lookahead.
type Parser struct {
	query string
	lex   *Lexer
	tok   Token
}

// Parse parses a query. Errors are *domain.QuerySyntaxError.
func Parse(query string) (*Query, error) {
	p := &Parser{query: query, lex: NewLexer(query)}
	p.next()
	return p.parseQuery()
}

func (p *Parser) next() {
	p.tok = p.lex.NextToken()
}

func (p *Parser) errorf(pos int, format string, args ...any) error {
	return &domain.QuerySyntaxError{Query: p.query, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

func (p *Parser) unexpected(want string) error {
	switch p.tok.Type {
	case EOF:
		return p.errorf(p.tok.Position, "expected %s, got end of query", want)
	case INVALID:
		return p.errorf(p.tok.Position, "forbidden or invalid token %q", p.tok.Value)
	}
	return p.errorf(p.tok.Position, "expected %s, got %q", want, p.tok.Value)
}

func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.tok
	if tok.Type != tt {
		return tok, p.unexpected(tt.String())
	}
	p.next()
	return tok, nil
}

// isKeyword reports whether the current token is the bare keyword kw.
func (p *Parser) isKeyword(kw string) bool {
	return p.tok.Type == IDENT && strings.EqualFold(p.tok.Value, kw)
}

func (p *Parser) parseQuery() (*Query, error) {
	if p.tok.Type == EOF {
		return nil, p.errorf(0, "empty query")
	}
	q := &Query{}
	for {
		st, err := p.parseStage()
		if err != nil {
			return nil, err
		}
		q.Stages = append(q.Stages, st)
		if p.tok.Type != PIPE {
			break
		}
		p.next()
	}
	if p.tok.Type != EOF {
		return nil, p.unexpected("'|' or end of query")
	}
	return q, nil
}

func (p *Parser) parseStage() (Stage, error) {
	if p.tok.Type != IDENT {
		return nil, p.unexpected("stage name")
	}
	name := p.tok
	p.next()
	if _, err := p.expect(LPAREN); err != nil {
		return nil, err
	}

	var (
		st  Stage
		err error
	)
	switch strings.ToLower(name.Value) {
	case "select":
		st, err = p.parseSelect()
	case "filter":
		var cond Expr
		cond, err = p.parseOr()
		st = FilterStage{Cond: cond}
	case "groupby":
		return p.parseGroupBy()
	case "aggregate":
		st, err = p.parseAggregate()
	case "count":
		st = AggregateStage{Func: frame.AggCount}
	case "sort":
		st, err = p.parseSort()
	case "limit":
		var n int
		n, err = p.parseInt()
		st = LimitStage{N: n}
	case "head":
		n := DefaultHeadRows
		if p.tok.Type != RPAREN {
			n, err = p.parseInt()
		}
		st = LimitStage{N: n}
	case "describe":
		st = DescribeStage{}
	case "nullcounts":
		st = NullCountsStage{}
	case "valuecounts":
		var col string
		col, err = p.parseIdent()
		st = ValueCountsStage{Column: col}
	default:
		return nil, p.errorf(name.Position, "unknown stage %q", name.Value)
	}
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	return st, nil
}

func (p *Parser) parseSelect() (Stage, error) {
	var cols []string
	for {
		col, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.tok.Type != COMMA {
			return SelectStage{Columns: cols}, nil
		}
		p.next()
	}
}

// parseGroupBy parses "key) -> aggregate(col, fn)" or "key) -> count()",
// consuming the closing parenthesis of the aggregation itself.
func (p *Parser) parseGroupBy() (Stage, error) {
	key, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(ARROW); err != nil {
		return nil, err
	}
	switch {
	case p.isKeyword("aggregate"):
		p.next()
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		agg, err := p.parseAggregate()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return GroupStage{Key: key, Column: agg.Column, Func: agg.Func}, nil
	case p.isKeyword("count"):
		p.next()
		if _, err := p.expect(LPAREN); err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return GroupStage{Key: key, Func: frame.AggCount}, nil
	}
	return nil, p.unexpected("aggregate(...) or count()")
}

// parseAggregate parses "col, fn" inside aggregate(...).
func (p *Parser) parseAggregate() (AggregateStage, error) {
	col, err := p.parseIdent()
	if err != nil {
		return AggregateStage{}, err
	}
	if _, err := p.expect(COMMA); err != nil {
		return AggregateStage{}, err
	}
	fnTok := p.tok
	if fnTok.Type != IDENT {
		return AggregateStage{}, p.unexpected("aggregate function")
	}
	fn, ok := frame.ParseAggFunc(strings.ToLower(fnTok.Value))
	if !ok {
		return AggregateStage{}, p.errorf(fnTok.Position, "unknown aggregate function %q (want one of %v)", fnTok.Value, scalarFuncs)
	}
	p.next()
	return AggregateStage{Column: col, Func: fn}, nil
}

func (p *Parser) parseSort() (Stage, error) {
	col, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	st := SortStage{Column: col, Ascending: true}
	if p.tok.Type == COMMA {
		p.next()
		switch {
		case p.isKeyword("true"):
			st.Ascending = true
		case p.isKeyword("false"):
			st.Ascending = false
		default:
			return nil, p.unexpected("true or false")
		}
		p.next()
	}
	return st, nil
}

func (p *Parser) parseInt() (int, error) {
	tok := p.tok
	if tok.Type != NUMBER {
		return 0, p.unexpected("row count")
	}
	n, err := strconv.Atoi(tok.Value)
	if err != nil || n < 0 {
		return 0, p.errorf(tok.Position, "row count must be a non-negative integer, got %q", tok.Value)
	}
	p.next()
	return n, nil
}

func (p *Parser) parseIdent() (string, error) {
	tok := p.tok
	if tok.Type != IDENT && tok.Type != QUOTED_IDENT {
		return "", p.unexpected("column name")
	}
	p.next()
	return tok.Value, nil
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = OrExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = AndExpr{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	switch {
	case p.isKeyword("not"):
		p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return NotExpr{X: x}, nil
	case p.tok.Type == LPAREN:
		p.next()
		x, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expr, error) {
	col, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if p.isKeyword("is") {
		p.next()
		negate := false
		if p.isKeyword("not") {
			negate = true
			p.next()
		}
		if !p.isKeyword("null") {
			return nil, p.unexpected("null")
		}
		p.next()
		return IsNullExpr{Column: col, Negate: negate}, nil
	}

	opTok := p.tok
	if opTok.Type != OPERATOR {
		return nil, p.unexpected("comparison operator or 'is'")
	}
	p.next()
	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if lit == nil {
		switch opTok.Value {
		case "==":
			return IsNullExpr{Column: col}, nil
		case "!=":
			return IsNullExpr{Column: col, Negate: true}, nil
		}
		return nil, p.errorf(opTok.Position, "null only compares with == or !=")
	}
	return CompareExpr{Column: col, Op: opTok.Value, Value: lit}, nil
}

func (p *Parser) parseLiteral() (any, error) {
	tok := p.tok
	switch {
	case tok.Type == STRING:
		p.next()
		return tok.Value, nil
	case tok.Type == NUMBER:
		p.next()
		if !strings.Contains(tok.Value, ".") {
			if n, err := strconv.ParseInt(tok.Value, 10, 64); err == nil {
				return n, nil
			}
		}
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, p.errorf(tok.Position, "invalid number %q", tok.Value)
		}
		return f, nil
	case p.isKeyword("true"):
		p.next()
		return true, nil
	case p.isKeyword("false"):
		p.next()
		return false, nil
	case p.isKeyword("null"):
		p.next()
		return nil, nil
	}
	return nil, p.unexpected("literal")
}

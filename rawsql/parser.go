// Copyright 2026 The Glaive Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rawsql

import (
	"fmt"
	"strings"
)

// Parser is a recursive-descent parser over a pre-tokenized stream.
type Parser struct {
	toks []Token
	pos  int
}

// Parse splits src on top-level semicolons and parses each statement,
// matching the engine surface's "one payload per semicolon-separated
// statement" contract.
func Parse(src string) ([]RawStatement, error) {
	toks, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	var stmts []RawStatement
	for {
		p.skipSemicolons()
		if p.cur().Type == EOF {
			return stmts, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
}

func (p *Parser) skipSemicolons() {
	for p.cur().Type == SEMICOLON {
		p.pos++
	}
}

func (p *Parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Type: EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.toks) {
		return Token{Type: EOF}
	}
	return p.toks[p.pos+n]
}

func (p *Parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *Parser) expect(t TokenType, what string) (Token, error) {
	if p.cur().Type != t {
		return Token{}, fmt.Errorf("rawsql: expected %s at position %d, got %q", what, p.cur().Pos, p.cur().Text)
	}
	return p.advance(), nil
}

func (p *Parser) at(t TokenType) bool { return p.cur().Type == t }

func (p *Parser) accept(t TokenType) bool {
	if p.at(t) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) parseStatement() (RawStatement, error) {
	switch p.cur().Type {
	case SELECT:
		return p.parseQuery()
	case INSERT:
		return p.parseInsert()
	case UPDATE:
		return p.parseUpdate()
	case DELETE:
		return p.parseDelete()
	case CREATE:
		return p.parseCreateTable()
	case DROP:
		return p.parseDropTable()
	case ALTER:
		return p.parseAlterTable()
	case BEGIN:
		p.advance()
		return &RawStartTransaction{}, nil
	case COMMIT:
		p.advance()
		return &RawCommit{}, nil
	case ROLLBACK:
		p.advance()
		return &RawRollback{}, nil
	case SHOW:
		return p.parseShowColumns()
	default:
		return nil, fmt.Errorf("rawsql: unexpected token %q at %d", p.cur().Text, p.cur().Pos)
	}
}

// ---- Query ---------------------------------------------------------------

func (p *Parser) parseQuery() (*RawQuery, error) {
	body, err := p.parseSetExpr()
	if err != nil {
		return nil, err
	}
	q := &RawQuery{Body: body}
	if p.accept(ORDER) {
		if _, err := p.expect(BY, "BY"); err != nil {
			return nil, err
		}
		for {
			ob, err := p.parseOrderByExpr()
			if err != nil {
				return nil, err
			}
			q.OrderBy = append(q.OrderBy, ob)
			if !p.accept(COMMA) {
				break
			}
		}
	}
	if p.accept(LIMIT) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Limit = e
	}
	if p.accept(OFFSET) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Offset = e
	}
	return q, nil
}

func (p *Parser) parseOrderByExpr() (RawOrderBy, error) {
	e, err := p.parseExpr()
	if err != nil {
		return RawOrderBy{}, err
	}
	ob := RawOrderBy{Expr: e}
	if p.accept(ASC) {
	} else if p.accept(DESC) {
		ob.Desc = true
	}
	if p.accept(NULLS) {
		ob.NullsSet = true
		if p.accept(FIRST) {
			ob.NullsFirst = true
		} else if _, err := p.expect(LAST, "LAST"); err != nil {
			return RawOrderBy{}, err
		}
	}
	return ob, nil
}

func (p *Parser) parseSetExpr() (RawSetExpr, error) {
	if p.at(VALUES) {
		return p.parseValues()
	}
	return p.parseSelect()
}

func (p *Parser) parseValues() (*RawValues, error) {
	if _, err := p.expect(VALUES, "VALUES"); err != nil {
		return nil, err
	}
	v := &RawValues{}
	for {
		if _, err := p.expect(LPAREN, "("); err != nil {
			return nil, err
		}
		var row []RawExpr
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			if !p.accept(COMMA) {
				break
			}
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
		v.Rows = append(v.Rows, row)
		if !p.accept(COMMA) {
			break
		}
	}
	return v, nil
}

func (p *Parser) parseSelect() (*RawSelect, error) {
	if _, err := p.expect(SELECT, "SELECT"); err != nil {
		return nil, err
	}
	s := &RawSelect{}
	if p.accept(DISTINCT) {
		s.Distinct = true
	} else {
		p.accept(ALL)
	}
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		s.Projection = append(s.Projection, item)
		if !p.accept(COMMA) {
			break
		}
	}
	if p.accept(FROM) {
		from, err := p.parseTableWithJoins()
		if err != nil {
			return nil, err
		}
		s.From = from
	}
	if p.accept(WHERE) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s.Where = e
	}
	if p.accept(GROUP) {
		if _, err := p.expect(BY, "BY"); err != nil {
			return nil, err
		}
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			s.GroupBy = append(s.GroupBy, e)
			if !p.accept(COMMA) {
				break
			}
		}
	}
	if p.accept(HAVING) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s.Having = e
	}
	return s, nil
}

func (p *Parser) parseSelectItem() (RawSelectItem, error) {
	if p.at(STAR) {
		p.advance()
		return RawSelectItem{Wildcard: true}, nil
	}
	if p.at(IDENT) && p.peekN(1).Type == DOT && p.peekN(2).Type == STAR {
		t := p.advance()
		p.advance()
		p.advance()
		return RawSelectItem{Wildcard: true, Qualifier: t.Text}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return RawSelectItem{}, err
	}
	item := RawSelectItem{Expr: e}
	if p.accept(AS) {
		t, err := p.expect(IDENT, "alias")
		if err != nil {
			return RawSelectItem{}, err
		}
		item.Alias = t.Text
	} else if p.at(IDENT) {
		item.Alias = p.advance().Text
	}
	return item, nil
}

func (p *Parser) parseTableWithJoins() (*RawTableWithJoins, error) {
	rel, err := p.parseTableFactor()
	if err != nil {
		return nil, err
	}
	t := &RawTableWithJoins{Relation: rel}
	for {
		join, ok, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		t.Joins = append(t.Joins, join)
	}
	return t, nil
}

func (p *Parser) parseJoin() (RawJoin, bool, error) {
	kind := ""
	switch {
	case p.at(JOIN):
		p.advance()
		kind = "INNER"
	case p.at(INNER):
		p.advance()
		if _, err := p.expect(JOIN, "JOIN"); err != nil {
			return RawJoin{}, false, err
		}
		kind = "INNER"
	case p.at(LEFT):
		p.advance()
		p.accept(OUTER)
		if _, err := p.expect(JOIN, "JOIN"); err != nil {
			return RawJoin{}, false, err
		}
		kind = "LEFT"
	case p.at(CROSS):
		p.advance()
		if _, err := p.expect(JOIN, "JOIN"); err != nil {
			return RawJoin{}, false, err
		}
		kind = "CROSS"
	default:
		return RawJoin{}, false, nil
	}
	rel, err := p.parseTableFactor()
	if err != nil {
		return RawJoin{}, false, err
	}
	j := RawJoin{Kind: kind, Relation: rel}
	if kind != "CROSS" && p.accept(ON) {
		e, err := p.parseExpr()
		if err != nil {
			return RawJoin{}, false, err
		}
		j.Constraint = e
	}
	return j, true, nil
}

func (p *Parser) parseTableFactor() (RawTableFactor, error) {
	if p.accept(LPAREN) {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
		alias := ""
		if p.accept(AS) {
			t, err := p.expect(IDENT, "alias")
			if err != nil {
				return nil, err
			}
			alias = t.Text
		} else if p.at(IDENT) {
			alias = p.advance().Text
		}
		return &RawTableFactorDerived{Subquery: q, Alias: alias}, nil
	}
	name, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	var args []RawExpr
	if p.accept(LPAREN) {
		args = []RawExpr{}
		if !p.at(RPAREN) {
			for {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, e)
				if !p.accept(COMMA) {
					break
				}
			}
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
	}
	alias := ""
	if p.accept(AS) {
		t, err := p.expect(IDENT, "alias")
		if err != nil {
			return nil, err
		}
		alias = t.Text
	} else if p.at(IDENT) {
		alias = p.advance().Text
	}
	return &RawTableFactorTable{Name: name, Alias: alias, Args: args}, nil
}

func (p *Parser) parseIdentText() (string, error) {
	switch p.cur().Type {
	case IDENT, QUOTED_IDENT:
		return p.advance().Text, nil
	default:
		return "", fmt.Errorf("rawsql: expected identifier at %d, got %q", p.cur().Pos, p.cur().Text)
	}
}

// ---- Expressions: precedence climbing ------------------------------------
//
// OR < AND < NOT < comparison/BETWEEN/LIKE/IN/IS < additive < multiplicative
// < unary < postfix < primary.

func (p *Parser) parseExpr() (RawExpr, error) { return p.parseOr() }

func (p *Parser) parseOr() (RawExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.accept(OR) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &RawBinaryOp{Left: left, Op: "OR", Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (RawExpr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.accept(AND) {
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &RawBinaryOp{Left: left, Op: "AND", Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (RawExpr, error) {
	if p.accept(NOT) {
		e, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &RawUnaryOp{Op: "NOT", Expr: e}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (RawExpr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case EQ, NEQ, LT, GT, LTE, GTE:
			op := p.advance().Text
			right, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &RawBinaryOp{Left: left, Op: op, Right: right}
		case BETWEEN:
			p.advance()
			negated := false
			low, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(AND, "AND"); err != nil {
				return nil, err
			}
			high, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &RawBetween{Expr: left, Negated: negated, Low: low, High: high}
		case NOT:
			if p.peekN(1).Type == BETWEEN {
				p.advance()
				p.advance()
				low, err := p.parseAdditive()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(AND, "AND"); err != nil {
					return nil, err
				}
				high, err := p.parseAdditive()
				if err != nil {
					return nil, err
				}
				left = &RawBetween{Expr: left, Negated: true, Low: low, High: high}
				continue
			}
			if p.peekN(1).Type == LIKE || p.peekN(1).Type == ILIKE {
				p.advance()
				ci := p.cur().Type == ILIKE
				p.advance()
				pat, err := p.parseAdditive()
				if err != nil {
					return nil, err
				}
				left = &RawLike{Expr: left, Negated: true, Pattern: pat, CaseInsensitive: ci}
				continue
			}
			if p.peekN(1).Type == IN {
				p.advance()
				p.advance()
				e, err := p.parseInRest(left, true)
				if err != nil {
					return nil, err
				}
				left = e
				continue
			}
			return left, nil
		case LIKE, ILIKE:
			ci := p.cur().Type == ILIKE
			p.advance()
			pat, err := p.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = &RawLike{Expr: left, Pattern: pat, CaseInsensitive: ci}
		case IN:
			p.advance()
			e, err := p.parseInRest(left, false)
			if err != nil {
				return nil, err
			}
			left = e
		case IS:
			p.advance()
			negated := p.accept(NOT)
			if _, err := p.expect(NULL_KW, "NULL"); err != nil {
				return nil, err
			}
			left = &RawBinaryOp{Left: left, Op: isNullOp(negated), Right: &RawLiteral{Kind: "NULL"}}
		default:
			return left, nil
		}
	}
}

func isNullOp(negated bool) string {
	if negated {
		return "IS NOT"
	}
	return "IS"
}

func (p *Parser) parseInRest(left RawExpr, negated bool) (RawExpr, error) {
	if _, err := p.expect(LPAREN, "("); err != nil {
		return nil, err
	}
	if p.at(SELECT) {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
		return &RawInSubquery{Expr: left, Subquery: q, Negated: negated}, nil
	}
	var list []RawExpr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if !p.accept(COMMA) {
			break
		}
	}
	if _, err := p.expect(RPAREN, ")"); err != nil {
		return nil, err
	}
	return &RawInList{Expr: left, List: list, Negated: negated}, nil
}

func (p *Parser) parseAdditive() (RawExpr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.at(PLUS) || p.at(MINUS) {
		op := p.advance().Text
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &RawBinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (RawExpr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.at(STAR) || p.at(SLASH) || p.at(PERCENT) {
		op := p.advance().Text
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &RawBinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (RawExpr, error) {
	if p.at(MINUS) || p.at(PLUS) {
		op := p.advance().Text
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &RawUnaryOp{Op: op, Expr: e}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (RawExpr, error) {
	tok := p.cur()
	switch tok.Type {
	case NUMBER:
		p.advance()
		return &RawLiteral{Kind: "NUMBER", Text: tok.Text}, nil
	case STRING:
		p.advance()
		return &RawLiteral{Kind: "STRING", Text: tok.Text}, nil
	case HEX_STRING:
		p.advance()
		return &RawTypedString{TypeName: "HEX", Text: tok.Text}, nil
	case TRUE_KW:
		p.advance()
		return &RawLiteral{Kind: "BOOL", Text: "TRUE"}, nil
	case FALSE_KW:
		p.advance()
		return &RawLiteral{Kind: "BOOL", Text: "FALSE"}, nil
	case NULL_KW:
		p.advance()
		return &RawLiteral{Kind: "NULL"}, nil
	case QUESTION:
		p.advance()
		return &RawLiteral{Kind: "PARAM", Text: "?"}, nil
	case LPAREN:
		p.advance()
		if p.at(SELECT) {
			q, err := p.parseQuery()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(RPAREN, ")"); err != nil {
				return nil, err
			}
			return &RawSubqueryScalar{Subquery: q}, nil
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
		return &RawNested{Expr: e}, nil
	case CASE:
		return p.parseCase()
	case CAST:
		return p.parseCast()
	case EXTRACT:
		return p.parseExtract()
	case INTERVAL:
		return p.parseIntervalLiteral()
	case DATE, TIME, TIMESTAMP:
		return p.parseTypedString()
	case EXISTS:
		p.advance()
		if _, err := p.expect(LPAREN, "("); err != nil {
			return nil, err
		}
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
		return &RawExists{Subquery: q}, nil
	case NOT:
		p.advance()
		if _, err := p.expect(EXISTS, "EXISTS"); err != nil {
			return nil, err
		}
		if _, err := p.expect(LPAREN, "("); err != nil {
			return nil, err
		}
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
		return &RawExists{Subquery: q, Negated: true}, nil
	case IDENT, QUOTED_IDENT:
		return p.parseIdentOrCallOrCompound()
	default:
		return nil, fmt.Errorf("rawsql: unexpected token %q at %d", tok.Text, tok.Pos)
	}
}

func (p *Parser) parseIdentOrCallOrCompound() (RawExpr, error) {
	name := p.advance().Text
	if p.at(DOT) {
		p.advance()
		if p.at(STAR) {
			return nil, fmt.Errorf("rawsql: unexpected '%s.*' outside select list at %d", name, p.cur().Pos)
		}
		col, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		return &RawCompoundIdent{Table: name, Column: col}, nil
	}
	if p.accept(LPAREN) {
		call := &RawFunctionCall{Name: name}
		if p.at(STAR) {
			p.advance()
			call.Star = true
		} else if !p.at(RPAREN) {
			for {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				call.Args = append(call.Args, e)
				if !p.accept(COMMA) {
					break
				}
			}
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
		return call, nil
	}
	return &RawIdent{Name: name}, nil
}

func (p *Parser) parseCase() (RawExpr, error) {
	p.advance()
	c := &RawCase{}
	if !p.at(WHEN) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Operand = e
	}
	for p.accept(WHEN) {
		when, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(THEN, "THEN"); err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.WhenThen = append(c.WhenThen, RawCaseWhen{When: when, Then: then})
	}
	if p.accept(ELSE) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	if _, err := p.expect(END, "END"); err != nil {
		return nil, err
	}
	return c, nil
}

func (p *Parser) parseCast() (RawExpr, error) {
	p.advance()
	if _, err := p.expect(LPAREN, "("); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(AS, "AS"); err != nil {
		return nil, err
	}
	typeName, prec, scale, hasPrec, err := p.parseTypeName()
	if err != nil {
		return nil, err
	}
	var unit string
	if typeName == "INTERVAL" && !p.at(RPAREN) {
		unit, err = p.parseIntervalUnit()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(RPAREN, ")"); err != nil {
		return nil, err
	}
	return &RawCast{Expr: e, TypeName: typeName, Precision: prec, Scale: scale, HasPrecision: hasPrec, IntervalUnit: unit}, nil
}

func (p *Parser) parseTypeName() (name string, precision, scale int, hasPrecision bool, err error) {
	t, e := p.parseIdentText()
	if e != nil {
		return "", 0, 0, false, e
	}
	name = strings.ToUpper(t)
	if p.accept(LPAREN) {
		ptok, e := p.expect(NUMBER, "precision")
		if e != nil {
			return "", 0, 0, false, e
		}
		fmt.Sscanf(ptok.Text, "%d", &precision)
		hasPrecision = true
		if p.accept(COMMA) {
			stok, e := p.expect(NUMBER, "scale")
			if e != nil {
				return "", 0, 0, false, e
			}
			fmt.Sscanf(stok.Text, "%d", &scale)
		}
		if _, e := p.expect(RPAREN, ")"); e != nil {
			return "", 0, 0, false, e
		}
	}
	return name, precision, scale, hasPrecision, nil
}

func (p *Parser) parseExtract() (RawExpr, error) {
	p.advance()
	if _, err := p.expect(LPAREN, "("); err != nil {
		return nil, err
	}
	field, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(FROM, "FROM"); err != nil {
		return nil, err
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(RPAREN, ")"); err != nil {
		return nil, err
	}
	return &RawExtract{Field: strings.ToUpper(field), Expr: e}, nil
}

// parseIntervalLiteral parses `INTERVAL '<value>' <unit words>`, with the
// unit spelling left as raw text for translate to validate against
// spec.md §6's closed unit set.
func (p *Parser) parseIntervalLiteral() (RawExpr, error) {
	p.advance()
	strTok, err := p.expect(STRING, "interval value")
	if err != nil {
		return nil, err
	}
	unit, err := p.parseIntervalUnit()
	if err != nil {
		return nil, err
	}
	return &RawTypedString{TypeName: "INTERVAL", Text: strTok.Text, Unit: unit}, nil
}

func (p *Parser) parseIntervalUnit() (string, error) {
	first, err := p.parseIdentText()
	if err != nil {
		return "", err
	}
	unit := strings.ToUpper(first)
	if p.at(IDENT) && strings.EqualFold(p.cur().Text, "TO") {
		p.advance()
		second, err := p.parseIdentText()
		if err != nil {
			return "", err
		}
		unit = unit + " TO " + strings.ToUpper(second)
	} else if p.at(TO) {
		p.advance()
		second, err := p.parseIdentText()
		if err != nil {
			return "", err
		}
		unit = unit + " TO " + strings.ToUpper(second)
	}
	return unit, nil
}

func (p *Parser) parseTypedString() (RawExpr, error) {
	typeName := strings.ToUpper(p.advance().Text)
	strTok, err := p.expect(STRING, "literal")
	if err != nil {
		return nil, err
	}
	return &RawTypedString{TypeName: typeName, Text: strTok.Text}, nil
}

// ---- DML / DDL -----------------------------------------------------------

func (p *Parser) parseInsert() (*RawInsert, error) {
	p.advance()
	if _, err := p.expect(INTO, "INTO"); err != nil {
		return nil, err
	}
	table, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	ins := &RawInsert{Table: table}
	if p.accept(LPAREN) {
		for {
			c, err := p.parseIdentText()
			if err != nil {
				return nil, err
			}
			ins.Columns = append(ins.Columns, c)
			if !p.accept(COMMA) {
				break
			}
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
	}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	ins.Source = q
	return ins, nil
}

func (p *Parser) parseUpdate() (*RawUpdate, error) {
	p.advance()
	table, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	u := &RawUpdate{Table: table}
	if p.at(IDENT) {
		u.Alias = p.advance().Text
	}
	if _, err := p.expect(SET, "SET"); err != nil {
		return nil, err
	}
	for {
		col, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(EQ, "="); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		u.Assignments = append(u.Assignments, RawAssignment{Column: col, Value: val})
		if !p.accept(COMMA) {
			break
		}
	}
	if p.accept(WHERE) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		u.Where = e
	}
	return u, nil
}

func (p *Parser) parseDelete() (*RawDelete, error) {
	p.advance()
	if _, err := p.expect(FROM, "FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	d := &RawDelete{Table: table}
	if p.at(IDENT) {
		d.Alias = p.advance().Text
	}
	if p.accept(WHERE) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		d.Where = e
	}
	return d, nil
}

func (p *Parser) parseCreateTable() (*RawCreateTable, error) {
	p.advance()
	if _, err := p.expect(TABLE, "TABLE"); err != nil {
		return nil, err
	}
	ct := &RawCreateTable{}
	if p.accept(IF) {
		if _, err := p.expect(NOT, "NOT"); err != nil {
			return nil, err
		}
		if _, err := p.expect(EXISTS, "EXISTS"); err != nil {
			return nil, err
		}
		ct.IfNotExists = true
	}
	table, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	ct.Table = table
	if p.accept(AS) {
		q, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		ct.AsSelect = q
		return ct, nil
	}
	if p.accept(LPAREN) {
		for {
			col, err := p.parseColumnDef()
			if err != nil {
				return nil, err
			}
			ct.Columns = append(ct.Columns, col)
			if !p.accept(COMMA) {
				break
			}
		}
		if _, err := p.expect(RPAREN, ")"); err != nil {
			return nil, err
		}
	}
	if p.accept(ENGINE) {
		if _, err := p.expect(EQ, "="); err != nil {
			return nil, err
		}
		e, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		ct.Engine = e
	}
	return ct, nil
}

func (p *Parser) parseColumnDef() (RawColumnDef, error) {
	name, err := p.parseIdentText()
	if err != nil {
		return RawColumnDef{}, err
	}
	typeName, prec, scale, hasPrec, err := p.parseTypeName()
	if err != nil {
		return RawColumnDef{}, err
	}
	col := RawColumnDef{Name: name, TypeName: typeName, Precision: prec, Scale: scale, HasPrecision: hasPrec}
	if typeName == "INTERVAL" && p.at(IDENT) {
		unit, err := p.parseIntervalUnit()
		if err != nil {
			return RawColumnDef{}, err
		}
		col.IntervalUnit = unit
	}
	for {
		switch {
		case p.accept(PRIMARY):
			if _, err := p.expect(KEY, "KEY"); err != nil {
				return RawColumnDef{}, err
			}
			col.PrimaryKey = true
			col.NotNull = true
		case p.accept(UNIQUE):
			col.Unique = true
		case p.at(NOT) && p.peekN(1).Type == NULL_KW:
			p.advance()
			p.advance()
			col.NotNull = true
		case p.accept(DEFAULT):
			e, err := p.parseExpr()
			if err != nil {
				return RawColumnDef{}, err
			}
			col.Default = e
		case p.accept(FOREIGN):
			if err := p.skipOptionalKeyword(KEY); err != nil {
				return RawColumnDef{}, err
			}
			fallthrough
		case p.accept(REFERENCES):
			refTable, err := p.parseIdentText()
			if err != nil {
				return RawColumnDef{}, err
			}
			if _, err := p.expect(LPAREN, "("); err != nil {
				return RawColumnDef{}, err
			}
			refCol, err := p.parseIdentText()
			if err != nil {
				return RawColumnDef{}, err
			}
			if _, err := p.expect(RPAREN, ")"); err != nil {
				return RawColumnDef{}, err
			}
			col.RefTable = refTable
			col.RefColumn = refCol
			if p.accept(ON) {
				if _, err := p.expect(DELETE, "DELETE"); err != nil {
					return RawColumnDef{}, err
				}
				action, err := p.parseOnDeleteAction()
				if err != nil {
					return RawColumnDef{}, err
				}
				col.OnDeleteAction = action
			}
		default:
			return col, nil
		}
	}
}

func (p *Parser) skipOptionalKeyword(t TokenType) error {
	if p.at(t) {
		p.advance()
	}
	return nil
}

func (p *Parser) parseOnDeleteAction() (string, error) {
	switch {
	case p.accept(CASCADE):
		return "CASCADE", nil
	case p.at(SET):
		p.advance()
		if p.accept(NULL_KW) {
			return "SET NULL", nil
		}
		if _, err := p.expect(DEFAULT, "DEFAULT"); err != nil {
			return "", err
		}
		return "SET DEFAULT", nil
	default:
		kw, err := p.parseIdentText()
		if err != nil {
			return "", err
		}
		return strings.ToUpper(kw), nil
	}
}

func (p *Parser) parseDropTable() (*RawDropTable, error) {
	p.advance()
	if _, err := p.expect(TABLE, "TABLE"); err != nil {
		return nil, err
	}
	d := &RawDropTable{}
	if p.accept(IF) {
		if _, err := p.expect(EXISTS, "EXISTS"); err != nil {
			return nil, err
		}
		d.IfExists = true
	}
	table, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	d.Table = table
	return d, nil
}

func (p *Parser) parseAlterTable() (*RawAlterTable, error) {
	p.advance()
	if _, err := p.expect(TABLE, "TABLE"); err != nil {
		return nil, err
	}
	table, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	a := &RawAlterTable{Table: table}
	switch {
	case p.accept(RENAME):
		if p.accept(COLUMN) {
			oldName, err := p.parseIdentText()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TO, "TO"); err != nil {
				return nil, err
			}
			newName, err := p.parseIdentText()
			if err != nil {
				return nil, err
			}
			a.Action = &RawRenameColumn{OldName: oldName, NewName: newName}
			return a, nil
		}
		if _, err := p.expect(TO, "TO"); err != nil {
			return nil, err
		}
		newName, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		a.Action = &RawRenameTable{NewName: newName}
	case p.accept(ADD):
		p.accept(COLUMN)
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		a.Action = &RawAddColumn{Column: col}
	case p.accept(DROP):
		p.accept(COLUMN)
		name, err := p.parseIdentText()
		if err != nil {
			return nil, err
		}
		a.Action = &RawDropColumn{Name: name}
	default:
		return nil, fmt.Errorf("rawsql: unsupported ALTER TABLE action at %d", p.cur().Pos)
	}
	return a, nil
}

func (p *Parser) parseShowColumns() (*RawShowColumns, error) {
	p.advance()
	if _, err := p.expect(COLUMNS, "COLUMNS"); err != nil {
		return nil, err
	}
	if _, err := p.expect(FROM, "FROM"); err != nil {
		return nil, err
	}
	table, err := p.parseIdentText()
	if err != nil {
		return nil, err
	}
	return &RawShowColumns{Table: table}, nil
}

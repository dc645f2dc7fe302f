package parser

import (
	"strconv"

	"minidb/internal/dberrors"
	"minidb/internal/lexer"
	"minidb/internal/value"
)

// Parser walks a token stream with a single token of lookahead: a cursor
// plus cur/at/advance/expect helper methods over a token slice.
type Parser struct {
	toks []lexer.Token
	pos  int
}

// Parse lexes and parses src, returning every statement in the script. The
// result for a multi-statement script is the full ordered list; callers
// that want "last statement wins" semantics select the last element
// themselves.
func Parse(src string) ([]Stmt, error) {
	toks, err := lexer.New(src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	return p.parseScript()
}

func (p *Parser) cur() lexer.Token  { return p.toks[p.pos] }
func (p *Parser) advance() lexer.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(tt lexer.TokenType) bool { return p.cur().Type == tt }

func (p *Parser) expect(tt lexer.TokenType) (lexer.Token, error) {
	if !p.at(tt) {
		return lexer.Token{}, p.unexpected(tt.String())
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(expected string) error {
	tok := p.cur()
	found := tok.Literal
	if tok.Type == lexer.EOF {
		found = "EOF"
	}
	return &dberrors.ParseError{Line: tok.Line, Col: tok.Col, Found: found, Expected: expected}
}

func (p *Parser) parseScript() ([]Stmt, error) {
	var stmts []Stmt
	for !p.at(lexer.EOF) {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		if p.at(lexer.SEMICOLON) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.EOF); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	switch p.cur().Type {
	case lexer.CREATE:
		return p.parseCreate()
	case lexer.INSERT:
		return p.parseInsert()
	case lexer.SELECT:
		return p.parseSelect()
	case lexer.UPDATE:
		return p.parseUpdate()
	case lexer.DELETE:
		return p.parseDelete()
	default:
		return nil, p.unexpected("CREATE, INSERT, SELECT, UPDATE, or DELETE")
	}
}

func (p *Parser) parseIdent() (string, error) {
	tok, err := p.expect(lexer.IDENT)
	if err != nil {
		return "", err
	}
	return tok.Literal, nil
}

func (p *Parser) parseCreate() (Stmt, error) {
	p.advance() // CREATE
	switch p.cur().Type {
	case lexer.TABLE:
		return p.parseCreateTable()
	case lexer.INDEX:
		return p.parseCreateIndex()
	default:
		return nil, p.unexpected("TABLE or INDEX")
	}
}

func (p *Parser) parseCreateTable() (Stmt, error) {
	p.advance() // TABLE
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	var cols []ColDef
	for {
		col, err := p.parseColDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &CreateTable{Table: name, Columns: cols}, nil
}

func (p *Parser) parseColDef() (ColDef, error) {
	name, err := p.parseIdent()
	if err != nil {
		return ColDef{}, err
	}
	typ, err := p.parseColType()
	if err != nil {
		return ColDef{}, err
	}
	col := ColDef{Name: name, Type: typ}
	for {
		switch p.cur().Type {
		case lexer.NOT:
			p.advance()
			if _, err := p.expect(lexer.NULL_KW); err != nil {
				return ColDef{}, err
			}
			col.NotNull = true
		case lexer.UNIQUE:
			p.advance()
			col.Unique = true
		case lexer.PRIMARY:
			p.advance()
			if _, err := p.expect(lexer.KEY); err != nil {
				return ColDef{}, err
			}
			col.PrimaryKey = true
		default:
			return col, nil
		}
	}
}

func (p *Parser) parseColType() (ColType, error) {
	switch p.cur().Type {
	case lexer.INTEGER_TYPE:
		p.advance()
		return ColType{Name: "INTEGER"}, nil
	case lexer.TEXT_TYPE:
		p.advance()
		return ColType{Name: "TEXT"}, nil
	case lexer.DATE_TYPE:
		p.advance()
		return ColType{Name: "DATE"}, nil
	case lexer.BOOLEAN_TYPE:
		p.advance()
		return ColType{Name: "BOOLEAN"}, nil
	case lexer.VARCHAR_TYPE:
		p.advance()
		if _, err := p.expect(lexer.LPAREN); err != nil {
			return ColType{}, err
		}
		n, err := p.parseIntLiteral()
		if err != nil {
			return ColType{}, err
		}
		if _, err := p.expect(lexer.RPAREN); err != nil {
			return ColType{}, err
		}
		return ColType{Name: "VARCHAR", Length: int(n)}, nil
	default:
		return ColType{}, p.unexpected("a column type")
	}
}

func (p *Parser) parseIntLiteral() (int64, error) {
	tok, err := p.expect(lexer.INT)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.ParseInt(tok.Literal, 10, 64)
	if convErr != nil {
		return 0, &dberrors.ParseError{Line: tok.Line, Col: tok.Col, Found: tok.Literal, Expected: "integer literal"}
	}
	return n, nil
}

func (p *Parser) parseCreateIndex() (Stmt, error) {
	p.advance() // INDEX
	name, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.ON); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	col, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	return &CreateIndex{IndexName: name, Table: table, Column: col}, nil
}

func (p *Parser) parseInsert() (Stmt, error) {
	p.advance() // INSERT
	if _, err := p.expect(lexer.INTO); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	cols, err := p.parseIdentList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.VALUES); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LPAREN); err != nil {
		return nil, err
	}
	vals, err := p.parseLiteralList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RPAREN); err != nil {
		return nil, err
	}
	if len(cols) != len(vals) {
		tok := p.cur()
		return nil, &dberrors.ParseError{Line: tok.Line, Col: tok.Col, Found: "value list", Expected: "same arity as column list"}
	}
	return &Insert{Table: table, Columns: cols, Values: vals}, nil
}

func (p *Parser) parseIdentList() ([]string, error) {
	var idents []string
	for {
		id, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		idents = append(idents, id)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		return idents, nil
	}
}

func (p *Parser) parseLiteralList() ([]value.Value, error) {
	var vals []value.Value
	for {
		v, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		return vals, nil
	}
}

func (p *Parser) parseLiteral() (value.Value, error) {
	tok := p.cur()
	switch tok.Type {
	case lexer.INT:
		p.advance()
		n, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return value.Value{}, &dberrors.ParseError{Line: tok.Line, Col: tok.Col, Found: tok.Literal, Expected: "integer literal"}
		}
		return value.Int(n), nil
	case lexer.STRING:
		p.advance()
		return value.Str(tok.Literal), nil
	case lexer.BOOLEAN:
		p.advance()
		return value.Bool(tok.Literal == "TRUE"), nil
	case lexer.NULL_KW:
		p.advance()
		return value.Null, nil
	default:
		return value.Value{}, p.unexpected("a literal (integer, string, TRUE, FALSE, or NULL)")
	}
}

func (p *Parser) parseColRef() (ColRef, error) {
	first, err := p.parseIdent()
	if err != nil {
		return ColRef{}, err
	}
	if p.at(lexer.DOT) {
		p.advance()
		second, err := p.parseIdent()
		if err != nil {
			return ColRef{}, err
		}
		return ColRef{Table: first, Col: second}, nil
	}
	return ColRef{Col: first}, nil
}

func (p *Parser) parseSelect() (Stmt, error) {
	p.advance() // SELECT
	sel := &Select{}
	if p.at(lexer.STAR) {
		p.advance()
		sel.Star = true
	} else {
		cols, err := p.parseColRefList()
		if err != nil {
			return nil, err
		}
		sel.Columns = cols
	}
	if _, err := p.expect(lexer.FROM); err != nil {
		return nil, err
	}
	from, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	sel.From = from

	for p.at(lexer.JOIN) {
		p.advance()
		table, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.ON); err != nil {
			return nil, err
		}
		left, err := p.parseColRef()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.EQ); err != nil {
			return nil, err
		}
		right, err := p.parseColRef()
		if err != nil {
			return nil, err
		}
		sel.Joins = append(sel.Joins, JoinClause{Table: table, Left: left, Right: right})
	}

	if p.at(lexer.WHERE) {
		where, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		sel.Where = where
	}
	return sel, nil
}

func (p *Parser) parseColRefList() ([]ColRef, error) {
	var refs []ColRef
	for {
		ref, err := p.parseColRef()
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		return refs, nil
	}
}

func (p *Parser) parseWhere() ([]Eq, error) {
	p.advance() // WHERE
	var eqs []Eq
	for {
		eq, err := p.parseEq()
		if err != nil {
			return nil, err
		}
		eqs = append(eqs, eq)
		if p.at(lexer.AND) {
			p.advance()
			continue
		}
		return eqs, nil
	}
}

func (p *Parser) parseEq() (Eq, error) {
	col, err := p.parseColRef()
	if err != nil {
		return Eq{}, err
	}
	if _, err := p.expect(lexer.EQ); err != nil {
		return Eq{}, err
	}
	lit, err := p.parseLiteral()
	if err != nil {
		return Eq{}, err
	}
	return Eq{Col: col, Value: lit}, nil
}

func (p *Parser) parseUpdate() (Stmt, error) {
	p.advance() // UPDATE
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.SET); err != nil {
		return nil, err
	}
	var assigns []Assign
	for {
		col, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.EQ); err != nil {
			return nil, err
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, Assign{Column: col, Value: lit})
		if p.at(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	upd := &Update{Table: table, Assigns: assigns}
	if p.at(lexer.WHERE) {
		where, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		upd.Where = where
	}
	return upd, nil
}

func (p *Parser) parseDelete() (Stmt, error) {
	p.advance() // DELETE
	if _, err := p.expect(lexer.FROM); err != nil {
		return nil, err
	}
	table, err := p.parseIdent()
	if err != nil {
		return nil, err
	}
	del := &Delete{Table: table}
	if p.at(lexer.WHERE) {
		where, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		del.Where = where
	}
	return del, nil
}

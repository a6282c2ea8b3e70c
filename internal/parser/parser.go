// Package parser implements weak's LL(1) recursive-descent,
// precedence-climbing parser (spec §4.2). Grammar and disambiguation rules
// are grounded on original_source/lib/src/FrontEnd/Parse/Parser.cpp;
// panic/recover error propagation and table-driven test style follow the
// teacher's internal/parser/parser.go + parser_test.go.
package parser

import (
	"strconv"

	"weakc/internal/ast"
	"weakc/internal/diag"
	"weakc/internal/token"
)

// Parser consumes a token slice and produces an *ast.Compound root.
type Parser struct {
	toks      []token.Token
	pos       int
	loopDepth int
}

// New returns a Parser over toks.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse parses a whole translation unit: a sequence of function
// prototypes, function declarations, and struct declarations (spec §4.2
// "Top-level grammar"). Any other token at the top level is an error.
// Errors propagate as a panic recovered here via diag.Recover, so callers
// get a plain error return.
func (p *Parser) Parse() (root *ast.Compound, err error) {
	defer diag.Recover(&err)

	c := &ast.Compound{Pos: ast.NewPos(1, 1)}
	for !p.isAtEnd() {
		c.Stmts = append(c.Stmts, p.topLevelDecl())
	}
	root = c
	return
}

func (p *Parser) pos_() token.Position { return p.peek().Pos }

func (p *Parser) peek() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return token.Token{Kind: token.EOF}
	}
	return p.toks[i]
}

func (p *Parser) isAtEnd() bool { return p.pos >= len(p.toks) }

func (p *Parser) advance() token.Token {
	t := p.peek()
	if !p.isAtEnd() {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) require(k token.Kind) token.Token {
	if !p.check(k) {
		diag.Fail(diag.Pos{Line: p.pos_().Line, Column: p.pos_().Column},
			"Expected `%s`, got `%s`", k, p.peek().Kind)
	}
	return p.advance()
}

func isDataTypeToken(k token.Kind) bool {
	switch k {
	case token.Int, token.Char, token.Float, token.Bool, token.String, token.Void, token.Struct:
		return true
	}
	return false
}

func dataTypeOf(k token.Kind) ast.DataType {
	switch k {
	case token.Int:
		return ast.Int
	case token.Char:
		return ast.Char
	case token.Float:
		return ast.Float
	case token.Bool:
		return ast.Bool
	case token.String:
		return ast.StringType
	case token.Void:
		return ast.Void
	case token.Struct:
		return ast.Struct
	}
	return ast.Unknown
}

// topLevelDecl parses a function prototype, function declaration, or
// struct declaration.
func (p *Parser) topLevelDecl() ast.Node {
	if p.check(token.Struct) {
		return p.structDecl()
	}
	if !isDataTypeToken(p.peek().Kind) {
		diag.Fail(diag.Pos{Line: p.pos_().Line, Column: p.pos_().Column},
			"Declaration expected, got `%s`", p.peek().Kind)
	}
	return p.functionDeclOrPrototype()
}

func (p *Parser) structDecl() ast.Node {
	tok := p.advance() // 'struct'
	name := p.require(token.Symbol).Text
	p.require(token.OpenCurlyBracket)

	var fields []*ast.FieldDecl
	for !p.check(token.CloseCurlyBracket) {
		ft := p.requireDataType()
		fname := p.require(token.Symbol).Text
		p.require(token.Semicolon)
		fields = append(fields, &ast.FieldDecl{
			Pos:      ast.At(ft),
			DataType: dataTypeOf(ft.Kind),
			Name:     fname,
		})
	}
	p.require(token.CloseCurlyBracket)
	p.require(token.Semicolon)

	return &ast.StructDecl{Pos: ast.At(tok), Name: name, Fields: fields}
}

func (p *Parser) requireDataType() token.Token {
	if !isDataTypeToken(p.peek().Kind) {
		diag.Fail(diag.Pos{Line: p.pos_().Line, Column: p.pos_().Column},
			"Expected a data type, got `%s`", p.peek().Kind)
	}
	return p.advance()
}

// functionDeclOrPrototype parses `<type> name(<params>) ;` as a prototype
// or `<type> name(<params>) { ... }` as a full declaration.
func (p *Parser) functionDeclOrPrototype() ast.Node {
	rt := p.advance()
	name := p.require(token.Symbol).Text
	p.require(token.OpenParen)

	var params []*ast.Param
	for !p.check(token.CloseParen) {
		if len(params) > 0 {
			p.require(token.Comma)
		}
		pt := p.requireDataType()
		pname := p.require(token.Symbol).Text
		params = append(params, &ast.Param{
			Pos:      ast.At(pt),
			DataType: dataTypeOf(pt.Kind),
			Name:     pname,
		})
	}
	p.require(token.CloseParen)

	if p.match(token.Semicolon) {
		return &ast.FunctionPrototype{
			Pos: ast.At(rt), ReturnType: dataTypeOf(rt.Kind), Name: name, Params: params,
		}
	}

	body := p.block()
	return &ast.FunctionDecl{
		Pos: ast.At(rt), ReturnType: dataTypeOf(rt.Kind), Name: name, Params: params, Body: body,
	}
}

func (p *Parser) block() *ast.Compound {
	tok := p.require(token.OpenCurlyBracket)
	c := &ast.Compound{Pos: ast.At(tok)}
	for !p.check(token.CloseCurlyBracket) {
		c.Stmts = append(c.Stmts, p.statement())
	}
	p.require(token.CloseCurlyBracket)
	return c
}

// statement parses any statement legal inside a function body.
func (p *Parser) statement() ast.Node {
	switch p.peek().Kind {
	case token.If:
		return p.ifStatement()
	case token.For:
		return p.forStatement()
	case token.While:
		return p.whileStatement()
	case token.Do:
		return p.doWhileStatement()
	case token.Return:
		return p.returnStatement()
	case token.Break:
		return p.breakStatement()
	case token.Continue:
		return p.continueStatement()
	case token.OpenCurlyBracket:
		return p.block()
	default:
		if isDataTypeToken(p.peek().Kind) {
			return p.declarationStatement()
		}
		return p.expressionStatement()
	}
}

// loopBody parses a block that forms a loop body, raising loopDepth so that
// break/continue are accepted inside it (spec §4.2's distinct loop-body statement set,
// grounded on Parser.cpp's ParseIterationStmtBlock vs ParseBlock split).
func (p *Parser) loopBody() *ast.Compound {
	p.loopDepth++
	defer func() { p.loopDepth-- }()
	return p.block()
}

func (p *Parser) ifStatement() ast.Node {
	tok := p.advance()
	p.require(token.OpenParen)
	cond := p.expression()
	p.require(token.CloseParen)
	then := p.block()
	var els *ast.Compound
	if p.match(token.Else) {
		if p.check(token.If) {
			els = &ast.Compound{Pos: ast.At(p.peek()), Stmts: []ast.Node{p.ifStatement()}}
		} else {
			els = p.block()
		}
	}
	return &ast.If{Pos: ast.At(tok), Cond: cond, Then: then, Else: els}
}

func (p *Parser) forStatement() ast.Node {
	tok := p.advance()
	p.require(token.OpenParen)

	var init ast.Node
	if !p.check(token.Semicolon) {
		if isDataTypeToken(p.peek().Kind) {
			init = p.varDeclNoSemicolon()
		} else {
			init = p.expression()
		}
	}
	p.require(token.Semicolon)

	var cond ast.Node
	if !p.check(token.Semicolon) {
		cond = p.expression()
	}
	p.require(token.Semicolon)

	var step ast.Node
	if !p.check(token.CloseParen) {
		step = p.expression()
	}
	p.require(token.CloseParen)

	body := p.loopBody()
	return &ast.For{Pos: ast.At(tok), Init: init, Cond: cond, Step: step, Body: body}
}

func (p *Parser) whileStatement() ast.Node {
	tok := p.advance()
	p.require(token.OpenParen)
	cond := p.expression()
	p.require(token.CloseParen)
	body := p.loopBody()
	return &ast.While{Pos: ast.At(tok), Cond: cond, Body: body}
}

func (p *Parser) doWhileStatement() ast.Node {
	tok := p.advance()
	body := p.loopBody()
	p.require(token.While)
	p.require(token.OpenParen)
	cond := p.expression()
	p.require(token.CloseParen)
	p.require(token.Semicolon)
	return &ast.DoWhile{Pos: ast.At(tok), Body: body, Cond: cond}
}

func (p *Parser) breakStatement() ast.Node {
	tok := p.advance()
	if p.loopDepth <= 0 {
		diag.Fail(diag.Pos{Line: ast.At(tok).Line, Column: ast.At(tok).Column},
			"`break` outside of loop")
	}
	p.require(token.Semicolon)
	return &ast.Break{Pos: ast.At(tok)}
}

func (p *Parser) continueStatement() ast.Node {
	tok := p.advance()
	if p.loopDepth <= 0 {
		diag.Fail(diag.Pos{Line: ast.At(tok).Line, Column: ast.At(tok).Column},
			"`continue` outside of loop")
	}
	p.require(token.Semicolon)
	return &ast.Continue{Pos: ast.At(tok)}
}

func (p *Parser) returnStatement() ast.Node {
	tok := p.advance()
	var operand ast.Node
	if !p.check(token.Semicolon) {
		operand = p.expression()
	}
	p.require(token.Semicolon)
	return &ast.Return{Pos: ast.At(tok), Operand: operand}
}

// declarationStatement disambiguates var_decl / array_decl by looking past
// the name for `[` (spec §4.2 "Ambiguity resolution").
func (p *Parser) declarationStatement() ast.Node {
	n := p.varDeclNoSemicolon()
	p.require(token.Semicolon)
	return n
}

func (p *Parser) varDeclNoSemicolon() ast.Node {
	dt := p.requireDataType()
	name := p.require(token.Symbol).Text

	if p.check(token.OpenBoxBracket) {
		var dims []int64
		for p.match(token.OpenBoxBracket) {
			dimTok := p.require(token.IntLiteral)
			n, _ := strconv.ParseInt(dimTok.Text, 10, 64)
			dims = append(dims, n)
			p.require(token.CloseBoxBracket)
		}
		return &ast.ArrayDecl{Pos: ast.At(dt), DataType: dataTypeOf(dt.Kind), Name: name, Dimensions: dims}
	}

	var init ast.Node
	if p.match(token.Assign) {
		init = p.expression()
	}
	return &ast.VarDecl{Pos: ast.At(dt), DataType: dataTypeOf(dt.Kind), Name: name, Init: init}
}

func (p *Parser) expressionStatement() ast.Node {
	e := p.expression()
	p.require(token.Semicolon)
	return e
}

// --- Expressions: precedence climbing, low to high per spec §4.2 ---

func (p *Parser) expression() ast.Node { return p.assignment() }

var assignOps = []token.Kind{
	token.Assign, token.MulAssign, token.DivAssign, token.ModAssign,
	token.PlusAssign, token.MinusAssign, token.ShlAssign, token.ShrAssign,
	token.BitAndAssign, token.BitOrAssign, token.XorAssign,
}

func (p *Parser) assignment() ast.Node {
	left := p.logicalOr()
	for _, k := range assignOps {
		if p.check(k) {
			tok := p.advance()
			right := p.assignment() // right-associative
			return &ast.Binary{Pos: ast.At(tok), Op: tok.Kind, LHS: left, RHS: right}
		}
	}
	return left
}

func (p *Parser) logicalOr() ast.Node {
	left := p.logicalAnd()
	for p.check(token.Or) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: token.Or, LHS: left, RHS: p.logicalAnd()}
	}
	return left
}

func (p *Parser) logicalAnd() ast.Node {
	left := p.bitOr()
	for p.check(token.And) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: token.And, LHS: left, RHS: p.bitOr()}
	}
	return left
}

func (p *Parser) bitOr() ast.Node {
	left := p.bitXor()
	for p.check(token.BitOr) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: token.BitOr, LHS: left, RHS: p.bitXor()}
	}
	return left
}

func (p *Parser) bitXor() ast.Node {
	left := p.bitAnd()
	for p.check(token.Xor) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: token.Xor, LHS: left, RHS: p.bitAnd()}
	}
	return left
}

func (p *Parser) bitAnd() ast.Node {
	left := p.equality()
	for p.check(token.BitAnd) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: token.BitAnd, LHS: left, RHS: p.equality()}
	}
	return left
}

func (p *Parser) equality() ast.Node {
	left := p.relational()
	for p.check(token.Eq) || p.check(token.Neq) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: tok.Kind, LHS: left, RHS: p.relational()}
	}
	return left
}

func (p *Parser) relational() ast.Node {
	left := p.shift()
	for p.check(token.Lt) || p.check(token.Le) || p.check(token.Gt) || p.check(token.Ge) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: tok.Kind, LHS: left, RHS: p.shift()}
	}
	return left
}

func (p *Parser) shift() ast.Node {
	left := p.additive()
	for p.check(token.Shl) || p.check(token.Shr) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: tok.Kind, LHS: left, RHS: p.additive()}
	}
	return left
}

func (p *Parser) additive() ast.Node {
	left := p.multiplicative()
	for p.check(token.Plus) || p.check(token.Minus) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: tok.Kind, LHS: left, RHS: p.multiplicative()}
	}
	return left
}

func (p *Parser) multiplicative() ast.Node {
	left := p.prefixUnary()
	for p.check(token.Star) || p.check(token.Slash) || p.check(token.Mod) {
		tok := p.advance()
		left = &ast.Binary{Pos: ast.At(tok), Op: tok.Kind, LHS: left, RHS: p.prefixUnary()}
	}
	return left
}

func (p *Parser) prefixUnary() ast.Node {
	switch p.peek().Kind {
	case token.Inc, token.Dec, token.Not, token.Minus, token.Plus:
		tok := p.advance()
		operand := p.prefixUnary()
		return &ast.Unary{Pos: ast.At(tok), Fixity: ast.Prefix, Op: tok.Kind, Operand: operand}
	default:
		return p.postfixUnary()
	}
}

func (p *Parser) postfixUnary() ast.Node {
	expr := p.primary()
	for {
		switch p.peek().Kind {
		case token.Inc, token.Dec:
			tok := p.advance()
			expr = &ast.Unary{Pos: ast.At(tok), Fixity: ast.Postfix, Op: tok.Kind, Operand: expr}
		case token.Dot:
			p.advance()
			member := p.require(token.Symbol).Text
			expr = &ast.MemberAccess{Pos: expr.Position(), BaseExpr: expr, Member: member}
		default:
			return expr
		}
	}
}

func (p *Parser) primary() ast.Node {
	tok := p.peek()
	switch tok.Kind {
	case token.IntLiteral:
		p.advance()
		n, _ := strconv.ParseInt(tok.Text, 10, 32)
		return &ast.IntLit{Pos: ast.At(tok), Value: int32(n)}
	case token.FloatLiteral:
		p.advance()
		f, _ := strconv.ParseFloat(tok.Text, 32)
		return &ast.FloatLit{Pos: ast.At(tok), Value: float32(f)}
	case token.CharLiteral:
		p.advance()
		var b byte
		if len(tok.Text) > 0 {
			b = tok.Text[0]
		}
		return &ast.CharLit{Pos: ast.At(tok), Value: b}
	case token.StringLiteral:
		p.advance()
		return &ast.StringLit{Pos: ast.At(tok), Value: tok.Text}
	case token.True:
		p.advance()
		return &ast.BoolLit{Pos: ast.At(tok), Value: true}
	case token.False:
		p.advance()
		return &ast.BoolLit{Pos: ast.At(tok), Value: false}
	case token.OpenParen:
		p.advance()
		e := p.expression()
		p.require(token.CloseParen)
		return e
	case token.Symbol:
		return p.symbolOrCallOrIndex()
	default:
		diag.Fail(diag.Pos{Line: tok.Pos.Line, Column: tok.Pos.Column}, "Unexpected token `%s`", tok.Kind)
		return nil // unreachable; diag.Fail panics
	}
}

func (p *Parser) symbolOrCallOrIndex() ast.Node {
	tok := p.advance()
	name := tok.Text

	if p.check(token.OpenParen) {
		p.advance()
		var args []ast.Node
		for !p.check(token.CloseParen) {
			if len(args) > 0 {
				p.require(token.Comma)
			}
			args = append(args, p.expression())
		}
		p.require(token.CloseParen)
		return &ast.FunctionCall{Pos: ast.At(tok), Name: name, Args: args}
	}

	if p.check(token.OpenBoxBracket) {
		var indices []ast.Node
		for p.match(token.OpenBoxBracket) {
			indices = append(indices, p.expression())
			p.require(token.CloseBoxBracket)
		}
		return &ast.ArrayAccess{Pos: ast.At(tok), Name: name, Indices: indices}
	}

	return &ast.Symbol{Pos: ast.At(tok), Name: name}
}

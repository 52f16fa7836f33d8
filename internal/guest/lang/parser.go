package lang

import "fmt"

// Parse compiles guest source text into a Program.
func Parse(src string) (*Program, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	body, err := p.parseStatements(func() bool { return p.peek().kind == tokEOF })
	if err != nil {
		return nil, err
	}
	return &Program{Body: body}, nil
}

type parser struct {
	toks      []token
	pos       int
	funcDepth int
	loopDepth int
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) errf(line int, format string, args ...interface{}) error {
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expectOp(text string) error {
	t := p.peek()
	if t.kind != tokOp || t.text != text {
		return p.errf(t.line, "expected %q", text)
	}
	p.next()
	return nil
}

func (p *parser) atOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) atKeyword(word string) bool {
	t := p.peek()
	return t.kind == tokKeyword && t.text == word
}

func (p *parser) parseStatements(done func() bool) ([]Stmt, error) {
	var out []Stmt
	for !done() {
		stmts, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

// parseStatement returns one or more statements: a simple-statement line may
// hold several, separated by semicolons.
func (p *parser) parseStatement() ([]Stmt, error) {
	t := p.peek()
	if t.kind == tokKeyword {
		switch t.text {
		case "if":
			s, err := p.parseIf()
			return wrap(s, err)
		case "while":
			s, err := p.parseWhile()
			return wrap(s, err)
		case "for":
			s, err := p.parseFor()
			return wrap(s, err)
		case "def":
			s, err := p.parseDef()
			return wrap(s, err)
		case "try":
			s, err := p.parseTry()
			return wrap(s, err)
		case "class", "with", "import", "from", "lambda", "yield", "del":
			return nil, p.errf(t.line, "%q statements are not supported", t.text)
		}
	}
	return p.parseSimpleLine()
}

func wrap(s Stmt, err error) ([]Stmt, error) {
	if err != nil {
		return nil, err
	}
	return []Stmt{s}, nil
}

// parseSimpleLine parses semicolon-separated simple statements ending in a
// newline.
func (p *parser) parseSimpleLine() ([]Stmt, error) {
	var out []Stmt
	for {
		s, err := p.parseSimpleStmt()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
		if p.atOp(";") {
			p.next()
			if p.peek().kind == tokNewline {
				break
			}
			continue
		}
		break
	}
	t := p.peek()
	if t.kind != tokNewline {
		return nil, p.errf(t.line, "unexpected %s", describe(t))
	}
	p.next()
	return out, nil
}

func (p *parser) parseSimpleStmt() (Stmt, error) {
	t := p.peek()
	if t.kind == tokKeyword {
		switch t.text {
		case "pass":
			p.next()
			return &PassStmt{Line: t.line}, nil
		case "break":
			if p.loopDepth == 0 {
				return nil, p.errf(t.line, "'break' outside loop")
			}
			p.next()
			return &BreakStmt{Line: t.line}, nil
		case "continue":
			if p.loopDepth == 0 {
				return nil, p.errf(t.line, "'continue' not properly in loop")
			}
			p.next()
			return &ContinueStmt{Line: t.line}, nil
		case "return":
			if p.funcDepth == 0 {
				return nil, p.errf(t.line, "'return' outside function")
			}
			p.next()
			if p.peek().kind == tokNewline || p.atOp(";") {
				return &ReturnStmt{Line: t.line}, nil
			}
			v, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			return &ReturnStmt{Line: t.line, Value: v}, nil
		case "raise":
			p.next()
			if p.peek().kind == tokNewline || p.atOp(";") {
				return &RaiseStmt{Line: t.line}, nil
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return &RaiseStmt{Line: t.line, Exc: v}, nil
		case "global":
			p.next()
			var names []string
			for {
				n := p.peek()
				if n.kind != tokName {
					return nil, p.errf(n.line, "expected name after 'global'")
				}
				p.next()
				names = append(names, n.text)
				if !p.atOp(",") {
					break
				}
				p.next()
			}
			return &GlobalStmt{Line: t.line, Names: names}, nil
		}
	}
	return p.parseExprOrAssign()
}

func (p *parser) parseExprOrAssign() (Stmt, error) {
	line := p.peek().line
	lhs, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	t := p.peek()
	if t.kind == tokOp {
		switch t.text {
		case "=":
			p.next()
			if err := checkTarget(lhs); err != nil {
				return nil, err
			}
			rhs, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			return &AssignStmt{Line: line, Target: lhs, Op: "=", Value: rhs}, nil
		case "+=", "-=", "*=", "/=", "%=":
			p.next()
			switch lhs.(type) {
			case *Name, *IndexExpr:
			default:
				return nil, p.errf(line, "invalid target for augmented assignment")
			}
			rhs, err := p.parseExprList()
			if err != nil {
				return nil, err
			}
			return &AssignStmt{Line: line, Target: lhs, Op: t.text, Value: rhs}, nil
		}
	}
	return &ExprStmt{Line: line, X: lhs}, nil
}

func checkTarget(e Expr) error {
	switch t := e.(type) {
	case *Name, *IndexExpr:
		return nil
	case *TupleLit:
		for _, el := range t.Elems {
			if err := checkTarget(el); err != nil {
				return err
			}
		}
		return nil
	}
	return &SyntaxError{Line: e.Pos(), Msg: "cannot assign to expression"}
}

// parseSuite parses the body after a header's colon: either inline simple
// statements on the same line, or an indented block.
func (p *parser) parseSuite() ([]Stmt, error) {
	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	if p.peek().kind != tokNewline {
		return p.parseSimpleLine()
	}
	p.next() // newline
	t := p.peek()
	if t.kind != tokIndent {
		return nil, p.errf(t.line, "expected an indented block")
	}
	p.next()
	body, err := p.parseStatements(func() bool { return p.peek().kind == tokDedent || p.peek().kind == tokEOF })
	if err != nil {
		return nil, err
	}
	if p.peek().kind == tokDedent {
		p.next()
	}
	if len(body) == 0 {
		return nil, p.errf(t.line, "expected an indented block")
	}
	return body, nil
}

func (p *parser) parseIf() (Stmt, error) {
	t := p.next() // if / elif
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	s := &IfStmt{Line: t.line, Cond: cond, Body: body}
	if p.atKeyword("elif") {
		nested, err := p.parseIf()
		if err != nil {
			return nil, err
		}
		s.Else = []Stmt{nested}
	} else if p.atKeyword("else") {
		p.next()
		s.Else, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (p *parser) parseWhile() (Stmt, error) {
	t := p.next()
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseSuite()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &WhileStmt{Line: t.line, Cond: cond, Body: body}, nil
}

func (p *parser) parseFor() (Stmt, error) {
	t := p.next()
	target, err := p.parseTargetList()
	if err != nil {
		return nil, err
	}
	if !p.atKeyword("in") {
		return nil, p.errf(p.peek().line, "expected 'in'")
	}
	p.next()
	iter, err := p.parseExprList()
	if err != nil {
		return nil, err
	}
	p.loopDepth++
	body, err := p.parseSuite()
	p.loopDepth--
	if err != nil {
		return nil, err
	}
	return &ForStmt{Line: t.line, Target: target, Iter: iter, Body: body}, nil
}

// parseTargetList parses a for-loop target: a name or comma list of names.
func (p *parser) parseTargetList() (Expr, error) {
	first := p.peek()
	if first.kind != tokName {
		return nil, p.errf(first.line, "expected loop variable name")
	}
	p.next()
	target := Expr(&Name{Line: first.line, Ident: first.text})
	if !p.atOp(",") {
		return target, nil
	}
	elems := []Expr{target}
	for p.atOp(",") {
		p.next()
		n := p.peek()
		if n.kind != tokName {
			return nil, p.errf(n.line, "expected loop variable name")
		}
		p.next()
		elems = append(elems, &Name{Line: n.line, Ident: n.text})
	}
	return &TupleLit{Line: first.line, Elems: elems}, nil
}

func (p *parser) parseDef() (Stmt, error) {
	t := p.next()
	nameTok := p.peek()
	if nameTok.kind != tokName {
		return nil, p.errf(nameTok.line, "expected function name")
	}
	p.next()
	if err := p.expectOp("("); err != nil {
		return nil, err
	}
	var params []string
	seen := map[string]bool{}
	for !p.atOp(")") {
		pt := p.peek()
		if pt.kind != tokName {
			return nil, p.errf(pt.line, "expected parameter name")
		}
		if seen[pt.text] {
			return nil, p.errf(pt.line, "duplicate argument %q in function definition", pt.text)
		}
		seen[pt.text] = true
		p.next()
		params = append(params, pt.text)
		if p.atOp(",") {
			p.next()
			continue
		}
		break
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	p.funcDepth++
	body, err := p.parseSuite()
	p.funcDepth--
	if err != nil {
		return nil, err
	}
	return &DefStmt{Line: t.line, Name: nameTok.text, Params: params, Body: body}, nil
}

func (p *parser) parseTry() (Stmt, error) {
	t := p.next()
	body, err := p.parseSuite()
	if err != nil {
		return nil, err
	}
	s := &TryStmt{Line: t.line, Body: body}
	for p.atKeyword("except") {
		ct := p.next()
		clause := ExceptClause{Line: ct.line}
		if !p.atOp(":") {
			et := p.peek()
			if et.kind != tokName && et.kind != tokKeyword {
				return nil, p.errf(et.line, "expected exception type")
			}
			p.next()
			clause.Type = et.text
			if p.atKeyword("as") {
				p.next()
				nt := p.peek()
				if nt.kind != tokName {
					return nil, p.errf(nt.line, "expected name after 'as'")
				}
				p.next()
				clause.Name = nt.text
			}
		}
		clause.Body, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
		s.Handlers = append(s.Handlers, clause)
	}
	if p.atKeyword("finally") {
		p.next()
		s.Finally, err = p.parseSuite()
		if err != nil {
			return nil, err
		}
	}
	if len(s.Handlers) == 0 && len(s.Finally) == 0 {
		return nil, p.errf(t.line, "expected 'except' or 'finally' block")
	}
	return s, nil
}

// parseExprList parses expr[, expr]* and folds multiple entries into a tuple.
func (p *parser) parseExprList() (Expr, error) {
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		return first, nil
	}
	elems := []Expr{first}
	for p.atOp(",") {
		p.next()
		if p.exprTerminator() {
			break // trailing comma
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	return &TupleLit{Line: first.Pos(), Elems: elems}, nil
}

func (p *parser) exprTerminator() bool {
	t := p.peek()
	if t.kind == tokNewline || t.kind == tokEOF {
		return true
	}
	if t.kind == tokOp {
		switch t.text {
		case "=", ")", "]", "}", ":", ";", "+=", "-=", "*=", "/=", "%=":
			return true
		}
	}
	return false
}

// Precedence climbing: or < and < not < comparison < addition <
// multiplication < unary < power < postfix < atom.
func (p *parser) parseExpr() (Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("or") {
		t := p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &BoolOpExpr{Line: t.line, Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.atKeyword("and") {
		t := p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &BoolOpExpr{Line: t.line, Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Expr, error) {
	if p.atKeyword("not") {
		t := p.next()
		x, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Line: t.line, Op: "not", X: x}, nil
	}
	return p.parseComparison()
}

func (p *parser) parseComparison() (Expr, error) {
	left, err := p.parseAddition()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		var op string
		switch {
		case t.kind == tokOp && (t.text == "==" || t.text == "!=" || t.text == "<" || t.text == "<=" || t.text == ">" || t.text == ">="):
			op = t.text
			p.next()
		case t.kind == tokKeyword && t.text == "in":
			op = "in"
			p.next()
		case t.kind == tokKeyword && t.text == "not":
			p.next()
			if !p.atKeyword("in") {
				return nil, p.errf(t.line, "expected 'in' after 'not'")
			}
			p.next()
			op = "not in"
		case t.kind == tokKeyword && t.text == "is":
			return nil, p.errf(t.line, "'is' comparisons are not supported")
		default:
			return left, nil
		}
		right, err := p.parseAddition()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Line: t.line, Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseAddition() (Expr, error) {
	left, err := p.parseMultiplication()
	if err != nil {
		return nil, err
	}
	for p.atOp("+") || p.atOp("-") {
		t := p.next()
		right, err := p.parseMultiplication()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Line: t.line, Op: t.text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseMultiplication() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.atOp("*") || p.atOp("/") || p.atOp("//") || p.atOp("%") {
		t := p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Line: t.line, Op: t.text, Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.atOp("-") || p.atOp("+") {
		t := p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Line: t.line, Op: t.text, X: x}, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	if p.atOp("**") {
		t := p.next()
		// right associative; unary binds tighter on the exponent side
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Line: t.line, Op: "**", Left: base, Right: exp}, nil
	}
	return base, nil
}

func (p *parser) parsePostfix() (Expr, error) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t.kind != tokOp {
			return x, nil
		}
		switch t.text {
		case "(":
			p.next()
			var args []Expr
			for !p.atOp(")") {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.atOp(",") {
					p.next()
					continue
				}
				break
			}
			if err := p.expectOp(")"); err != nil {
				return nil, err
			}
			x = &CallExpr{Line: t.line, Fn: x, Args: args}
		case "[":
			p.next()
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp("]"); err != nil {
				return nil, err
			}
			x = &IndexExpr{Line: t.line, X: x, Index: idx}
		case ".":
			p.next()
			nt := p.peek()
			if nt.kind != tokName {
				return nil, p.errf(nt.line, "expected attribute name after '.'")
			}
			p.next()
			x = &AttrExpr{Line: t.line, X: x, Name: nt.text}
		default:
			return x, nil
		}
	}
}

func (p *parser) parseAtom() (Expr, error) {
	t := p.peek()
	switch t.kind {
	case tokNumber:
		p.next()
		return &NumberLit{Line: t.line, IsFloat: t.isFloat, Int: t.intVal, Float: t.fltVal}, nil
	case tokString:
		p.next()
		return &StringLit{Line: t.line, Value: t.strVal}, nil
	case tokName:
		p.next()
		return &Name{Line: t.line, Ident: t.text}, nil
	case tokKeyword:
		switch t.text {
		case "True":
			p.next()
			return &BoolLit{Line: t.line, Value: true}, nil
		case "False":
			p.next()
			return &BoolLit{Line: t.line, Value: false}, nil
		case "None":
			p.next()
			return &NoneLit{Line: t.line}, nil
		}
		return nil, p.errf(t.line, "unexpected keyword %q", t.text)
	case tokOp:
		switch t.text {
		case "(":
			return p.parseParenthesized()
		case "[":
			return p.parseListLit()
		case "{":
			return p.parseDictOrSet()
		}
	}
	return nil, p.errf(t.line, "unexpected %s", describe(t))
}

func (p *parser) parseParenthesized() (Expr, error) {
	t := p.next() // (
	if p.atOp(")") {
		p.next()
		return &TupleLit{Line: t.line}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.atOp(",") {
		if err := p.expectOp(")"); err != nil {
			return nil, err
		}
		return first, nil
	}
	elems := []Expr{first}
	for p.atOp(",") {
		p.next()
		if p.atOp(")") {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return &TupleLit{Line: t.line, Elems: elems}, nil
}

func (p *parser) parseListLit() (Expr, error) {
	t := p.next() // [
	var elems []Expr
	for !p.atOp("]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		if p.atOp(",") {
			p.next()
			continue
		}
		break
	}
	if err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return &ListLit{Line: t.line, Elems: elems}, nil
}

func (p *parser) parseDictOrSet() (Expr, error) {
	t := p.next() // {
	if p.atOp("}") {
		p.next()
		return &DictLit{Line: t.line}, nil // {} is an empty dict
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.atOp(":") {
		d := &DictLit{Line: t.line}
		d.Keys = append(d.Keys, first)
		p.next()
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		d.Values = append(d.Values, v)
		for p.atOp(",") {
			p.next()
			if p.atOp("}") {
				break
			}
			k, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expectOp(":"); err != nil {
				return nil, err
			}
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			d.Keys = append(d.Keys, k)
			d.Values = append(d.Values, v)
		}
		if err := p.expectOp("}"); err != nil {
			return nil, err
		}
		return d, nil
	}
	s := &SetLit{Line: t.line, Elems: []Expr{first}}
	for p.atOp(",") {
		p.next()
		if p.atOp("}") {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		s.Elems = append(s.Elems, e)
	}
	if err := p.expectOp("}"); err != nil {
		return nil, err
	}
	return s, nil
}

func describe(t token) string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokNewline:
		return "end of line"
	case tokIndent:
		return "indent"
	case tokDedent:
		return "dedent"
	case tokString:
		return "string literal"
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

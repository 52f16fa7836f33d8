package lang

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a lexing or parsing failure with its source line.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type tokKind int

const (
	tokEOF tokKind = iota
	tokNewline
	tokIndent
	tokDedent
	tokName
	tokKeyword
	tokNumber
	tokString
	tokOp
)

type token struct {
	kind    tokKind
	text    string
	line    int
	isFloat bool
	intVal  int64
	fltVal  float64
	strVal  string
}

var keywords = map[string]bool{
	"True": true, "False": true, "None": true,
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"if": true, "elif": true, "else": true,
	"while": true, "for": true, "break": true, "continue": true,
	"def": true, "return": true, "pass": true,
	"raise": true, "try": true, "except": true, "finally": true, "as": true,
	"global": true, "lambda": true, "import": true, "from": true,
	"class": true, "with": true, "yield": true, "del": true,
}

// multi-char operators, longest first
var multiOps = []string{
	"**", "//", "<=", ">=", "==", "!=", "+=", "-=", "*=", "/=", "%=",
}

const singleOps = "+-*/%<>=()[]{},.:;"

type lexer struct {
	lines   []string
	lineNo  int // 1-based current line
	indents []int
	toks    []token
	depth   int // bracket nesting; newlines inside brackets are ignored
}

// lex splits guest source into a token stream with INDENT/DEDENT structure.
func lex(src string) ([]token, error) {
	lx := &lexer{
		lines:   strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n"),
		indents: []int{0},
	}
	for i, raw := range lx.lines {
		lx.lineNo = i + 1
		if err := lx.lexLine(raw); err != nil {
			return nil, err
		}
	}
	if lx.depth > 0 {
		return nil, &SyntaxError{Line: lx.lineNo, Msg: "unexpected EOF inside brackets"}
	}
	// close any open blocks
	for len(lx.indents) > 1 {
		lx.indents = lx.indents[:len(lx.indents)-1]
		lx.emit(token{kind: tokDedent, line: lx.lineNo})
	}
	lx.emit(token{kind: tokEOF, line: lx.lineNo})
	return lx.toks, nil
}

func (lx *lexer) emit(t token) { lx.toks = append(lx.toks, t) }

func (lx *lexer) lexLine(raw string) error {
	pos := 0
	indent := 0
	if lx.depth == 0 {
		for pos < len(raw) {
			switch raw[pos] {
			case ' ':
				indent++
			case '\t':
				indent += 4
			default:
				goto measured
			}
			pos++
		}
	measured:
		rest := strings.TrimSpace(raw[pos:])
		if rest == "" || strings.HasPrefix(rest, "#") {
			return nil // blank or comment-only lines produce no tokens
		}
		if err := lx.handleIndent(indent); err != nil {
			return err
		}
	}

	hadTokens := false
	for pos < len(raw) {
		c := raw[pos]
		switch {
		case c == ' ' || c == '\t':
			pos++
		case c == '#':
			pos = len(raw)
		case c >= '0' && c <= '9':
			n, err := lx.lexNumber(raw, &pos)
			if err != nil {
				return err
			}
			lx.emit(n)
			hadTokens = true
		case c == '_' || isLetter(c):
			start := pos
			for pos < len(raw) && (raw[pos] == '_' || isLetter(raw[pos]) || isDigit(raw[pos])) {
				pos++
			}
			word := raw[start:pos]
			kind := tokName
			if keywords[word] {
				kind = tokKeyword
			}
			lx.emit(token{kind: kind, text: word, line: lx.lineNo})
			hadTokens = true
		case c == '\'' || c == '"':
			s, err := lx.lexString(raw, &pos)
			if err != nil {
				return err
			}
			lx.emit(s)
			hadTokens = true
		default:
			matched := false
			for _, op := range multiOps {
				if strings.HasPrefix(raw[pos:], op) {
					lx.emit(token{kind: tokOp, text: op, line: lx.lineNo})
					pos += len(op)
					matched = true
					break
				}
			}
			if matched {
				hadTokens = true
				break
			}
			if strings.IndexByte(singleOps, c) < 0 {
				return &SyntaxError{Line: lx.lineNo, Msg: fmt.Sprintf("invalid character %q", string(c))}
			}
			switch c {
			case '(', '[', '{':
				lx.depth++
			case ')', ']', '}':
				if lx.depth == 0 {
					return &SyntaxError{Line: lx.lineNo, Msg: fmt.Sprintf("unmatched %q", string(c))}
				}
				lx.depth--
			}
			lx.emit(token{kind: tokOp, text: string(c), line: lx.lineNo})
			pos++
			hadTokens = true
		}
	}
	if hadTokens && lx.depth == 0 {
		lx.emit(token{kind: tokNewline, line: lx.lineNo})
	}
	return nil
}

func (lx *lexer) handleIndent(indent int) error {
	top := lx.indents[len(lx.indents)-1]
	switch {
	case indent > top:
		lx.indents = append(lx.indents, indent)
		lx.emit(token{kind: tokIndent, line: lx.lineNo})
	case indent < top:
		for len(lx.indents) > 1 && lx.indents[len(lx.indents)-1] > indent {
			lx.indents = lx.indents[:len(lx.indents)-1]
			lx.emit(token{kind: tokDedent, line: lx.lineNo})
		}
		if lx.indents[len(lx.indents)-1] != indent {
			return &SyntaxError{Line: lx.lineNo, Msg: "unindent does not match any outer indentation level"}
		}
	}
	return nil
}

func (lx *lexer) lexNumber(raw string, pos *int) (token, error) {
	start := *pos
	isFloat := false
	for *pos < len(raw) && isDigit(raw[*pos]) {
		*pos++
	}
	if *pos < len(raw) && raw[*pos] == '.' && *pos+1 < len(raw) && isDigit(raw[*pos+1]) {
		isFloat = true
		*pos++
		for *pos < len(raw) && isDigit(raw[*pos]) {
			*pos++
		}
	}
	if *pos < len(raw) && (raw[*pos] == 'e' || raw[*pos] == 'E') {
		mark := *pos
		*pos++
		if *pos < len(raw) && (raw[*pos] == '+' || raw[*pos] == '-') {
			*pos++
		}
		if *pos < len(raw) && isDigit(raw[*pos]) {
			isFloat = true
			for *pos < len(raw) && isDigit(raw[*pos]) {
				*pos++
			}
		} else {
			*pos = mark // the e belongs to a following identifier
		}
	}
	text := raw[start:*pos]
	t := token{kind: tokNumber, text: text, line: lx.lineNo, isFloat: isFloat}
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return t, &SyntaxError{Line: lx.lineNo, Msg: "invalid number literal " + text}
		}
		t.fltVal = f
	} else {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			// too large for int64: fall back to float
			f, ferr := strconv.ParseFloat(text, 64)
			if ferr != nil {
				return t, &SyntaxError{Line: lx.lineNo, Msg: "invalid number literal " + text}
			}
			t.isFloat = true
			t.fltVal = f
		} else {
			t.intVal = n
		}
	}
	return t, nil
}

func (lx *lexer) lexString(raw string, pos *int) (token, error) {
	quote := raw[*pos]
	*pos++
	var b strings.Builder
	for *pos < len(raw) {
		c := raw[*pos]
		if c == quote {
			*pos++
			return token{kind: tokString, line: lx.lineNo, strVal: b.String()}, nil
		}
		if c == '\\' {
			*pos++
			if *pos >= len(raw) {
				break
			}
			switch raw[*pos] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '\\':
				b.WriteByte('\\')
			case '\'':
				b.WriteByte('\'')
			case '"':
				b.WriteByte('"')
			case '0':
				b.WriteByte(0)
			default:
				b.WriteByte('\\')
				b.WriteByte(raw[*pos])
			}
			*pos++
			continue
		}
		b.WriteByte(c)
		*pos++
	}
	return token{}, &SyntaxError{Line: lx.lineNo, Msg: "unterminated string literal"}
}

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isDigit(c byte) bool  { return c >= '0' && c <= '9' }

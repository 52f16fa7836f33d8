package lang

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return prog
}

func TestParseAssignment(t *testing.T) {
	prog := mustParse(t, "x = 1\ny = x + 1\n")
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(prog.Body))
	}
	a, ok := prog.Body[0].(*AssignStmt)
	if !ok {
		t.Fatalf("expected AssignStmt, got %T", prog.Body[0])
	}
	if a.Line != 1 || a.Op != "=" {
		t.Errorf("unexpected assign: line=%d op=%q", a.Line, a.Op)
	}
	if n, ok := a.Target.(*Name); !ok || n.Ident != "x" {
		t.Errorf("expected target x, got %#v", a.Target)
	}
}

func TestParseMissingTrailingNewline(t *testing.T) {
	prog := mustParse(t, "x = 1")
	if len(prog.Body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(prog.Body))
	}
}

func TestParseInlineSuite(t *testing.T) {
	prog := mustParse(t, "while True: pass\n")
	w, ok := prog.Body[0].(*WhileStmt)
	if !ok {
		t.Fatalf("expected WhileStmt, got %T", prog.Body[0])
	}
	if len(w.Body) != 1 {
		t.Fatalf("expected 1 body statement, got %d", len(w.Body))
	}
	if _, ok := w.Body[0].(*PassStmt); !ok {
		t.Errorf("expected PassStmt, got %T", w.Body[0])
	}
}

func TestParseIndentedBlocks(t *testing.T) {
	src := strings.Join([]string{
		"def fib(n):",
		"    if n < 2:",
		"        return n",
		"    return fib(n - 1) + fib(n - 2)",
		"",
		"print(fib(6))",
		"",
	}, "\n")
	prog := mustParse(t, src)
	if len(prog.Body) != 2 {
		t.Fatalf("expected 2 top-level statements, got %d", len(prog.Body))
	}
	def, ok := prog.Body[0].(*DefStmt)
	if !ok {
		t.Fatalf("expected DefStmt, got %T", prog.Body[0])
	}
	if def.Name != "fib" || len(def.Params) != 1 || def.Params[0] != "n" {
		t.Errorf("unexpected def: %q %v", def.Name, def.Params)
	}
	if len(def.Body) != 2 {
		t.Errorf("expected 2 body statements, got %d", len(def.Body))
	}
}

func TestParseElifChain(t *testing.T) {
	src := "if x == 1:\n    pass\nelif x == 2:\n    pass\nelse:\n    pass\n"
	prog := mustParse(t, src)
	top, ok := prog.Body[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected IfStmt, got %T", prog.Body[0])
	}
	if len(top.Else) != 1 {
		t.Fatalf("expected nested elif, got %d else statements", len(top.Else))
	}
	nested, ok := top.Else[0].(*IfStmt)
	if !ok {
		t.Fatalf("expected nested IfStmt, got %T", top.Else[0])
	}
	if len(nested.Else) != 1 {
		t.Errorf("expected final else branch, got %d statements", len(nested.Else))
	}
}

func TestParseTryExcept(t *testing.T) {
	src := "try:\n    x = 1 / 0\nexcept ZeroDivisionError as e:\n    pass\nfinally:\n    pass\n"
	prog := mustParse(t, src)
	ts, ok := prog.Body[0].(*TryStmt)
	if !ok {
		t.Fatalf("expected TryStmt, got %T", prog.Body[0])
	}
	if len(ts.Handlers) != 1 || ts.Handlers[0].Type != "ZeroDivisionError" || ts.Handlers[0].Name != "e" {
		t.Errorf("unexpected handler: %+v", ts.Handlers)
	}
	if len(ts.Finally) != 1 {
		t.Errorf("expected finally block")
	}
}

func TestParseTupleUnpack(t *testing.T) {
	prog := mustParse(t, "a, b = 1, 2\n")
	a := prog.Body[0].(*AssignStmt)
	if _, ok := a.Target.(*TupleLit); !ok {
		t.Errorf("expected tuple target, got %T", a.Target)
	}
	if _, ok := a.Value.(*TupleLit); !ok {
		t.Errorf("expected tuple value, got %T", a.Value)
	}
}

func TestParseEmptyBracesIsDict(t *testing.T) {
	prog := mustParse(t, "d = {}\ns = {1, 2}\nm = {'a': 1}\n")
	if _, ok := prog.Body[0].(*AssignStmt).Value.(*DictLit); !ok {
		t.Errorf("{} should parse as dict")
	}
	if _, ok := prog.Body[1].(*AssignStmt).Value.(*SetLit); !ok {
		t.Errorf("{1, 2} should parse as set")
	}
	if _, ok := prog.Body[2].(*AssignStmt).Value.(*DictLit); !ok {
		t.Errorf("{'a': 1} should parse as dict")
	}
}

func TestParsePrecedence(t *testing.T) {
	prog := mustParse(t, "x = 1 + 2 * 3\n")
	add := prog.Body[0].(*AssignStmt).Value.(*BinaryExpr)
	if add.Op != "+" {
		t.Fatalf("expected + at the root, got %q", add.Op)
	}
	mul, ok := add.Right.(*BinaryExpr)
	if !ok || mul.Op != "*" {
		t.Errorf("expected * on the right, got %#v", add.Right)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
		line int
	}{
		{"return outside function", "return 1\n", "'return' outside function", 1},
		{"break outside loop", "break\n", "'break' outside loop", 1},
		{"import unsupported", "import os\n", "not supported", 1},
		{"class unsupported", "class Foo:\n    pass\n", "not supported", 1},
		{"is unsupported", "x = 1 is None\n", "'is' comparisons are not supported", 1},
		{"missing block", "if True:\n", "expected an indented block", 1},
		{"bad dedent", "x = 1\n  y = 2\n", "", 2},
		{"unclosed paren", "x = (1 + 2\n", "", 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.src)
			if err == nil {
				t.Fatalf("expected error for %q", tc.src)
			}
			se, ok := err.(*SyntaxError)
			if !ok {
				t.Fatalf("expected *SyntaxError, got %T: %v", err, err)
			}
			if tc.want != "" && !strings.Contains(se.Msg, tc.want) {
				t.Errorf("error %q does not contain %q", se.Msg, tc.want)
			}
		})
	}
}

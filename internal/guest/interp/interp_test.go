package interp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stepscope/backend/internal/guest/lang"
)

// run executes src with no hook and returns stdout plus the terminal error.
func run(t *testing.T, src string) (string, map[string]Value, error) {
	t.Helper()
	prog, err := lang.Parse(src)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	var out bytes.Buffer
	it := New(&out, nil)
	runErr := it.Run(prog)
	return out.String(), it.Globals(), runErr
}

func mustRun(t *testing.T, src string) (string, map[string]Value) {
	t.Helper()
	out, globals, err := run(t, src)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out, globals
}

func TestArithmeticAndPrint(t *testing.T) {
	out, globals := mustRun(t, "x = 1\ny = x + 1\nprint(y)\n")
	if out != "2\n" {
		t.Errorf("stdout = %q, want %q", out, "2\n")
	}
	if v := globals["y"]; v != Int(2) {
		t.Errorf("y = %#v, want Int(2)", v)
	}
}

func TestPrintRendering(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{"print('hello', 42)\n", "hello 42\n"},
		{"print(3.0)\n", "3.0\n"},
		{"print(7 / 2)\n", "3.5\n"},
		{"print(7 // 2, 7 % 3, -7 // 2)\n", "3 1 -4\n"},
		{"print(2 ** 10)\n", "1024\n"},
		{"print([1, 'a', True, None])\n", "[1, 'a', True, None]\n"},
		{"print((1,))\n", "(1,)\n"},
		{"print({'a': 1, 'b': 2})\n", "{'a': 1, 'b': 2}\n"},
		{"print(not 0, 1 < 2 < 3)\n", "True True\n"},
		{"print('ab' * 3)\n", "ababab\n"},
		{"print(True + 1)\n", "2\n"},
	}
	for _, tc := range cases {
		out, _ := mustRun(t, tc.src)
		if out != tc.want {
			t.Errorf("%q -> %q, want %q", tc.src, out, tc.want)
		}
	}
}

func TestChainedComparisonIsNotSupported(t *testing.T) {
	// 1 < 2 < 3 parses as (1 < 2) < 3 which compares bool to int
	out, _ := mustRun(t, "print((1 < 2) < 3)\n")
	if out != "True\n" {
		t.Errorf("got %q", out)
	}
}

func TestFunctionsAndRecursion(t *testing.T) {
	src := strings.Join([]string{
		"def fib(n):",
		"    if n < 2:",
		"        return n",
		"    return fib(n - 1) + fib(n - 2)",
		"print(fib(10))",
		"",
	}, "\n")
	out, _ := mustRun(t, src)
	if out != "55\n" {
		t.Errorf("fib(10) printed %q, want 55", out)
	}
}

func TestClosureFreeFunctionsSeeGlobals(t *testing.T) {
	src := "base = 10\ndef add(n):\n    return base + n\nprint(add(5))\n"
	out, _ := mustRun(t, src)
	if out != "15\n" {
		t.Errorf("got %q", out)
	}
}

func TestGlobalStatement(t *testing.T) {
	src := strings.Join([]string{
		"count = 0",
		"def bump():",
		"    global count",
		"    count = count + 1",
		"bump()",
		"bump()",
		"print(count)",
		"",
	}, "\n")
	out, globals := mustRun(t, src)
	if out != "2\n" {
		t.Errorf("got %q", out)
	}
	if globals["count"] != Int(2) {
		t.Errorf("count = %#v", globals["count"])
	}
}

func TestLoopsAndMutation(t *testing.T) {
	src := strings.Join([]string{
		"total = 0",
		"for i in range(5):",
		"    if i == 3:",
		"        continue",
		"    total += i",
		"out = []",
		"n = 0",
		"while n < 3:",
		"    out.append(n * n)",
		"    n += 1",
		"print(total, out)",
		"",
	}, "\n")
	out, _ := mustRun(t, src)
	if out != "7 [0, 1, 4]\n" {
		t.Errorf("got %q", out)
	}
}

func TestBreakLeavesLoop(t *testing.T) {
	out, _ := mustRun(t, "for i in range(10):\n    if i == 2:\n        break\nprint(i)\n")
	if out != "2\n" {
		t.Errorf("got %q", out)
	}
}

func TestTupleUnpackAndSwap(t *testing.T) {
	out, _ := mustRun(t, "a, b = 1, 2\na, b = b, a\nprint(a, b)\n")
	if out != "2 1\n" {
		t.Errorf("got %q", out)
	}
}

func TestContainers(t *testing.T) {
	src := strings.Join([]string{
		"d = {'a': 1}",
		"d['b'] = 2",
		"s = {3, 1, 2}",
		"s.add(1)",
		"xs = [4, 2, 9]",
		"xs.sort()",
		"print(len(d), d.get('c', 0), len(s), xs, sorted('cba'))",
		"",
	}, "\n")
	out, _ := mustRun(t, src)
	want := "2 0 3 [2, 4, 9] ['a', 'b', 'c']\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestStringMethods(t *testing.T) {
	out, _ := mustRun(t, "print('a,b,c'.split(','), ' hi '.strip().upper(), '-'.join(['x', 'y']))\n")
	if out != "['a', 'b', 'c'] HI x-y\n" {
		t.Errorf("got %q", out)
	}
}

func TestGuestErrors(t *testing.T) {
	cases := []struct {
		src      string
		typeName string
		contains string
	}{
		{"x = 1 / 0\n", "ZeroDivisionError", "division by zero"},
		{"print(missing)\n", "NameError", "'missing' is not defined"},
		{"x = [1][5]\n", "IndexError", "out of range"},
		{"x = {'a': 1}['b']\n", "KeyError", "'b'"},
		{"x = 1 + 'a'\n", "TypeError", "unsupported operand"},
		{"x = 'a' + 1\n", "TypeError", "can only concatenate str"},
		{"raise ValueError('boom')\n", "ValueError", "boom"},
	}
	for _, tc := range cases {
		_, _, err := run(t, tc.src)
		ge, ok := err.(*GuestError)
		if !ok {
			t.Errorf("%q: expected *GuestError, got %v", tc.src, err)
			continue
		}
		if ge.TypeName != tc.typeName {
			t.Errorf("%q: type %q, want %q", tc.src, ge.TypeName, tc.typeName)
		}
		if !strings.Contains(ge.Message, tc.contains) {
			t.Errorf("%q: message %q does not contain %q", tc.src, ge.Message, tc.contains)
		}
	}
}

func TestErrorCarriesLine(t *testing.T) {
	_, _, err := run(t, "x = 1\ny = 2\nz = x / 0\n")
	ge, ok := err.(*GuestError)
	if !ok {
		t.Fatalf("expected *GuestError, got %v", err)
	}
	if ge.Line != 3 {
		t.Errorf("error line = %d, want 3", ge.Line)
	}
	if ge.FuncName != "<module>" {
		t.Errorf("error func = %q", ge.FuncName)
	}
}

func TestTryExceptCatches(t *testing.T) {
	src := strings.Join([]string{
		"try:",
		"    x = 1 / 0",
		"except ZeroDivisionError as e:",
		"    msg = str(e)",
		"finally:",
		"    done = True",
		"print(msg, done)",
		"",
	}, "\n")
	out, _ := mustRun(t, src)
	if out != "division by zero True\n" {
		t.Errorf("got %q", out)
	}
}

func TestTryExceptTypeMismatchPropagates(t *testing.T) {
	src := "try:\n    x = 1 / 0\nexcept ValueError:\n    pass\n"
	_, _, err := run(t, src)
	ge, ok := err.(*GuestError)
	if !ok || ge.TypeName != "ZeroDivisionError" {
		t.Errorf("expected ZeroDivisionError to escape, got %v", err)
	}
}

func TestBareExceptAndReraise(t *testing.T) {
	src := "try:\n    raise KeyError('k')\nexcept:\n    caught = True\nprint(caught)\n"
	out, _ := mustRun(t, src)
	if out != "True\n" {
		t.Errorf("got %q", out)
	}

	src = "try:\n    raise KeyError('k')\nexcept KeyError:\n    raise\n"
	_, _, err := run(t, src)
	ge, ok := err.(*GuestError)
	if !ok || ge.TypeName != "KeyError" {
		t.Errorf("re-raise lost the error: %v", err)
	}
}

func TestRecursionLimit(t *testing.T) {
	_, _, err := run(t, "def f():\n    return f()\nf()\n")
	ge, ok := err.(*GuestError)
	if !ok || ge.TypeName != "RecursionError" {
		t.Errorf("expected RecursionError, got %v", err)
	}
}

func TestArityError(t *testing.T) {
	_, _, err := run(t, "def f(a, b):\n    return a\nf(1)\n")
	ge, ok := err.(*GuestError)
	if !ok || ge.TypeName != "TypeError" {
		t.Fatalf("expected TypeError, got %v", err)
	}
	if !strings.Contains(ge.Message, "takes 2 positional arguments but 1 were given") {
		t.Errorf("message %q", ge.Message)
	}
}

func TestHookEventSequence(t *testing.T) {
	var events []string
	var lines []int
	hook := func(ev Event, fr *Frame, arg Value) error {
		events = append(events, string(ev))
		lines = append(lines, fr.Line())
		return nil
	}
	prog, err := lang.Parse("x = 1\ny = x + 1\nprint(y)\n")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := New(&out, hook).Run(prog); err != nil {
		t.Fatal(err)
	}
	want := []string{"call", "line", "line", "line", "return"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
	wantLines := []int{1, 1, 2, 3, 3}
	for i := range wantLines {
		if lines[i] != wantLines[i] {
			t.Errorf("lines = %v, want %v", lines, wantLines)
			break
		}
	}
}

func TestHookCallReturnAroundFunction(t *testing.T) {
	var events []string
	hook := func(ev Event, fr *Frame, arg Value) error {
		events = append(events, string(ev)+":"+fr.Name())
		return nil
	}
	prog, _ := lang.Parse("def f():\n    return 1\nx = f()\n")
	var out bytes.Buffer
	if err := New(&out, hook).Run(prog); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(events, ",")
	if !strings.Contains(joined, "call:f") || !strings.Contains(joined, "return:f") {
		t.Errorf("missing function frame events: %v", events)
	}
}

func TestSingleLineLoopEmitsOneLineEvent(t *testing.T) {
	count := 0
	hook := func(ev Event, fr *Frame, arg Value) error {
		if ev == EventLine {
			count++
		}
		if count > 10 {
			t.Fatal("line events kept firing for a one-line loop")
		}
		return nil
	}
	prog, _ := lang.Parse("n = 0\nwhile n < 100000: n += 1\n")
	var out bytes.Buffer
	if err := New(&out, hook).Run(prog); err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("line events = %d, want 2 (assignment + loop header once)", count)
	}
}

func TestHookAbortIsUncatchable(t *testing.T) {
	limit := errorFor("limit")
	n := 0
	hook := func(ev Event, fr *Frame, arg Value) error {
		n++
		if n > 5 {
			return limit
		}
		return nil
	}
	src := "while True:\n    try:\n        x = 1\n    except:\n        pass\n"
	prog, err := lang.Parse(src)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	runErr := New(&out, hook).Run(prog)
	if AbortCause(runErr) != limit {
		t.Errorf("expected abort with the hook error, got %v", runErr)
	}
}

func errorFor(msg string) error { return &hookErr{msg} }

type hookErr struct{ msg string }

func (e *hookErr) Error() string { return e.msg }

func TestExceptionEventPerFrame(t *testing.T) {
	var excFrames []string
	hook := func(ev Event, fr *Frame, arg Value) error {
		if ev == EventException {
			excFrames = append(excFrames, fr.Name())
		}
		return nil
	}
	src := "def inner():\n    raise ValueError('x')\ndef outer():\n    inner()\nouter()\n"
	prog, _ := lang.Parse(src)
	var out bytes.Buffer
	runErr := New(&out, hook).Run(prog)
	if _, ok := runErr.(*GuestError); !ok {
		t.Fatalf("expected guest error, got %v", runErr)
	}
	want := []string{"inner", "outer", "<module>"}
	if len(excFrames) != len(want) {
		t.Fatalf("exception frames = %v, want %v", excFrames, want)
	}
	for i := range want {
		if excFrames[i] != want[i] {
			t.Errorf("exception frames = %v, want %v", excFrames, want)
			break
		}
	}
}

func TestReprCycles(t *testing.T) {
	l := &List{}
	l.Items = append(l.Items, l)
	if got := Repr(l); got != "[[...]]" {
		t.Errorf("Repr(self-list) = %q", got)
	}
}

func TestBoolIsDictKeyOne(t *testing.T) {
	out, _ := mustRun(t, "d = {1: 'one'}\nd[True] = 'yes'\nprint(d[1])\n")
	if out != "yes\n" {
		t.Errorf("got %q", out)
	}
}

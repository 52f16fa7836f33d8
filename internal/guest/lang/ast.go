package lang

// Program is the parsed top-level statement sequence of one guest source.
type Program struct {
	Body []Stmt
}

// Node is anything that carries a source line.
type Node interface {
	Pos() int
}

// Stmt is a guest statement.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is a guest expression.
type Expr interface {
	Node
	exprNode()
}

// AssignStmt covers plain and augmented assignment. For plain assignment
// Target may be a Name, IndexExpr, or TupleLit of those (unpacking).
// Augmented ops ("+=" etc.) allow only a single Name or IndexExpr target.
type AssignStmt struct {
	Line   int
	Target Expr
	Op     string // "=", "+=", "-=", "*=", "/=", "%="
	Value  Expr
}

type ExprStmt struct {
	Line int
	X    Expr
}

// IfStmt represents if/elif/else; elif chains parse as a nested IfStmt
// inside Else so each header keeps its own line.
type IfStmt struct {
	Line int
	Cond Expr
	Body []Stmt
	Else []Stmt
}

type WhileStmt struct {
	Line int
	Cond Expr
	Body []Stmt
}

type ForStmt struct {
	Line   int
	Target Expr
	Iter   Expr
	Body   []Stmt
}

type DefStmt struct {
	Line   int
	Name   string
	Params []string
	Body   []Stmt
}

type ReturnStmt struct {
	Line  int
	Value Expr // nil means None
}

type PassStmt struct{ Line int }

type BreakStmt struct{ Line int }

type ContinueStmt struct{ Line int }

// RaiseStmt with nil Exc is a bare re-raise.
type RaiseStmt struct {
	Line int
	Exc  Expr
}

type GlobalStmt struct {
	Line  int
	Names []string
}

type TryStmt struct {
	Line     int
	Body     []Stmt
	Handlers []ExceptClause
	Finally  []Stmt
}

// ExceptClause with empty Type catches everything.
type ExceptClause struct {
	Line int
	Type string
	Name string // "as" binding, may be empty
	Body []Stmt
}

type Name struct {
	Line  int
	Ident string
}

type NumberLit struct {
	Line    int
	IsFloat bool
	Int     int64
	Float   float64
}

type StringLit struct {
	Line  int
	Value string
}

type BoolLit struct {
	Line  int
	Value bool
}

type NoneLit struct{ Line int }

type ListLit struct {
	Line  int
	Elems []Expr
}

type TupleLit struct {
	Line  int
	Elems []Expr
}

type DictLit struct {
	Line   int
	Keys   []Expr
	Values []Expr
}

type SetLit struct {
	Line  int
	Elems []Expr
}

type UnaryExpr struct {
	Line int
	Op   string // "-", "+", "not"
	X    Expr
}

// BinaryExpr covers arithmetic and comparison operators. Short-circuit
// boolean operators use BoolOpExpr instead.
type BinaryExpr struct {
	Line  int
	Op    string
	Left  Expr
	Right Expr
}

type BoolOpExpr struct {
	Line  int
	Op    string // "and", "or"
	Left  Expr
	Right Expr
}

type CallExpr struct {
	Line int
	Fn   Expr
	Args []Expr
}

type IndexExpr struct {
	Line  int
	X     Expr
	Index Expr
}

type AttrExpr struct {
	Line int
	X    Expr
	Name string
}

func (s *AssignStmt) Pos() int   { return s.Line }
func (s *ExprStmt) Pos() int     { return s.Line }
func (s *IfStmt) Pos() int       { return s.Line }
func (s *WhileStmt) Pos() int    { return s.Line }
func (s *ForStmt) Pos() int      { return s.Line }
func (s *DefStmt) Pos() int      { return s.Line }
func (s *ReturnStmt) Pos() int   { return s.Line }
func (s *PassStmt) Pos() int     { return s.Line }
func (s *BreakStmt) Pos() int    { return s.Line }
func (s *ContinueStmt) Pos() int { return s.Line }
func (s *RaiseStmt) Pos() int    { return s.Line }
func (s *GlobalStmt) Pos() int   { return s.Line }
func (s *TryStmt) Pos() int      { return s.Line }

func (*AssignStmt) stmtNode()   {}
func (*ExprStmt) stmtNode()     {}
func (*IfStmt) stmtNode()       {}
func (*WhileStmt) stmtNode()    {}
func (*ForStmt) stmtNode()      {}
func (*DefStmt) stmtNode()      {}
func (*ReturnStmt) stmtNode()   {}
func (*PassStmt) stmtNode()     {}
func (*BreakStmt) stmtNode()    {}
func (*ContinueStmt) stmtNode() {}
func (*RaiseStmt) stmtNode()    {}
func (*GlobalStmt) stmtNode()   {}
func (*TryStmt) stmtNode()      {}

func (e *Name) Pos() int       { return e.Line }
func (e *NumberLit) Pos() int  { return e.Line }
func (e *StringLit) Pos() int  { return e.Line }
func (e *BoolLit) Pos() int    { return e.Line }
func (e *NoneLit) Pos() int    { return e.Line }
func (e *ListLit) Pos() int    { return e.Line }
func (e *TupleLit) Pos() int   { return e.Line }
func (e *DictLit) Pos() int    { return e.Line }
func (e *SetLit) Pos() int     { return e.Line }
func (e *UnaryExpr) Pos() int  { return e.Line }
func (e *BinaryExpr) Pos() int { return e.Line }
func (e *BoolOpExpr) Pos() int { return e.Line }
func (e *CallExpr) Pos() int   { return e.Line }
func (e *IndexExpr) Pos() int  { return e.Line }
func (e *AttrExpr) Pos() int   { return e.Line }

func (*Name) exprNode()       {}
func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*NoneLit) exprNode()    {}
func (*ListLit) exprNode()    {}
func (*TupleLit) exprNode()   {}
func (*DictLit) exprNode()    {}
func (*SetLit) exprNode()     {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*BoolOpExpr) exprNode() {}
func (*CallExpr) exprNode()   {}
func (*IndexExpr) exprNode()  {}
func (*AttrExpr) exprNode()   {}

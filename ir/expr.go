package ir

// Expr is an IR expression node. The set of implementations below is
// exhaustive; code that switches on Expr should handle all of them.
type Expr interface {
	isExpr()
	ResultType() Type
}

// Get reads a register from the guest register file.
type Get struct {
	Offset int
	Ty     Type
}

func (Get) isExpr()             {}
func (e Get) ResultType() Type  { return e.Ty }

// GetI reads a register-file element addressed indirectly (e.g. a
// circular buffer register array). Rarely produced by real lifters for
// the architectures this analysis targets, but part of the closed IR
// surface for completeness.
type GetI struct {
	Descr string
	Ix    Expr
	Bias  int
	Ty    Type
}

func (GetI) isExpr()            {}
func (e GetI) ResultType() Type { return e.Ty }

// RdTmp reads the value of an IR temporary. The engine eliminates these
// before any variable-liveness reasoning runs (spec.md §4.4 step 1).
type RdTmp struct {
	Tmp int
	Ty  Type
}

func (RdTmp) isExpr()            {}
func (e RdTmp) ResultType() Type { return e.Ty }

// Const is a literal constant.
type Const struct {
	Value uint64
	Ty    Type
}

func (Const) isExpr()            {}
func (e Const) ResultType() Type { return e.Ty }

// Load reads a value from memory.
type Load struct {
	End  Endian
	Ty   Type
	Addr Expr
}

func (Load) isExpr()            {}
func (e Load) ResultType() Type { return e.Ty }

// Unop, Binop, Triop and Qop are n-ary operator applications. They are
// kept as distinct types (mirroring the external IR's own vocabulary)
// even though every transfer-function rule that inspects them treats
// them identically: the union of the recursive results over Args.
type Unop struct {
	Op   string
	Args [1]Expr
	Ty   Type
}

func (Unop) isExpr()            {}
func (e Unop) ResultType() Type { return e.Ty }

type Binop struct {
	Op   string
	Args [2]Expr
	Ty   Type
}

func (Binop) isExpr()            {}
func (e Binop) ResultType() Type { return e.Ty }

type Triop struct {
	Op   string
	Args [3]Expr
	Ty   Type
}

func (Triop) isExpr()            {}
func (e Triop) ResultType() Type { return e.Ty }

type Qop struct {
	Op   string
	Args [4]Expr
	Ty   Type
}

func (Qop) isExpr()            {}
func (e Qop) ResultType() Type { return e.Ty }

// ITE is an if-then-else expression.
type ITE struct {
	Cond, IfTrue, IfFalse Expr
	Ty                    Type
}

func (ITE) isExpr()            {}
func (e ITE) ResultType() Type { return e.Ty }

// CCall is a call out to a helper function (e.g. for flag computation).
type CCall struct {
	RetTy  Type
	Callee string
	Args   []Expr
}

func (CCall) isExpr()            {}
func (e CCall) ResultType() Type { return e.RetTy }

// NaryArgs returns the operand list of a Unop/Binop/Triop/Qop, or nil for
// any other expression kind. Centralizes the "any n-ary op" grouping used
// throughout vars_used_expr and replace_tmps.
func NaryArgs(e Expr) ([]Expr, bool) {
	switch v := e.(type) {
	case Unop:
		return v.Args[:], true
	case Binop:
		return v.Args[:], true
	case Triop:
		return v.Args[:], true
	case Qop:
		return v.Args[:], true
	}
	return nil, false
}

// WithNaryArgs rebuilds a Unop/Binop/Triop/Qop with new operands,
// preserving the operator and result type. Panics if e is not one of
// those four kinds or args is shorter than e's arity; arguments beyond
// the arity are ignored. Callers only ever invoke it on an e for which
// NaryArgs just succeeded.
func WithNaryArgs(e Expr, args []Expr) Expr {
	switch v := e.(type) {
	case Unop:
		return Unop{Op: v.Op, Args: [1]Expr{args[0]}, Ty: v.Ty}
	case Binop:
		return Binop{Op: v.Op, Args: [2]Expr{args[0], args[1]}, Ty: v.Ty}
	case Triop:
		return Triop{Op: v.Op, Args: [3]Expr{args[0], args[1], args[2]}, Ty: v.Ty}
	case Qop:
		return Qop{Op: v.Op, Args: [4]Expr{args[0], args[1], args[2], args[3]}, Ty: v.Ty}
	}
	panic("ir: WithNaryArgs called on a non-nary expression")
}

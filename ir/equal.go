package ir

import (
	"hash/fnv"
)

// ExprEqual is a structural equality test over expressions. Var uses it
// to compare MemoryLocation addresses, which are address expressions
// rather than concrete values (spec.md §3).
func ExprEqual(a, b Expr) bool {
	switch x := a.(type) {
	case RdTmp:
		y, ok := b.(RdTmp)
		return ok && x.Tmp == y.Tmp

	case Get:
		y, ok := b.(Get)
		return ok && x.Offset == y.Offset && x.Ty == y.Ty

	case GetI:
		y, ok := b.(GetI)
		return ok && x.Descr == y.Descr && x.Bias == y.Bias && x.Ty == y.Ty && ExprEqual(x.Ix, y.Ix)

	case Unop, Binop, Triop, Qop:
		xArgs, _ := NaryArgs(x)
		yArgs, ok := NaryArgs(b)
		if !ok || len(xArgs) != len(yArgs) || naryOp(a) != naryOp(b) {
			return false
		}
		for i := range xArgs {
			if !ExprEqual(xArgs[i], yArgs[i]) {
				return false
			}
		}
		return true

	case Load:
		y, ok := b.(Load)
		return ok && x.End == y.End && x.Ty == y.Ty && ExprEqual(x.Addr, y.Addr)

	case Const:
		y, ok := b.(Const)
		return ok && x.Value == y.Value && x.Ty == y.Ty

	case ITE:
		y, ok := b.(ITE)
		return ok && ExprEqual(x.Cond, y.Cond) && ExprEqual(x.IfFalse, y.IfFalse) && ExprEqual(x.IfTrue, y.IfTrue)

	case CCall:
		y, ok := b.(CCall)
		if !ok || x.Callee != y.Callee || x.RetTy != y.RetTy || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !ExprEqual(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true

	default:
		return false
	}
}

func naryOp(e Expr) string {
	switch v := e.(type) {
	case Unop:
		return v.Op
	case Binop:
		return v.Op
	case Triop:
		return v.Op
	case Qop:
		return v.Op
	}
	return ""
}

// HashExpr computes a structural hash over an expression, consistent
// with ExprEqual: equal expressions hash equal. Used to bucket
// MemoryLocation variables in hashed sets (spec.md §9).
func HashExpr(e Expr) uint64 {
	h := fnv.New64a()
	writeExprHash(h, e)
	return h.Sum64()
}

func writeU64(h interface{ Write([]byte) (int, error) }, v uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	h.Write(buf[:])
}

func writeExprHash(h interface{ Write([]byte) (int, error) }, e Expr) {
	switch x := e.(type) {
	case RdTmp:
		h.Write([]byte("RdTmp"))
		writeU64(h, uint64(x.Tmp))

	case Get:
		h.Write([]byte("Get"))
		writeU64(h, uint64(x.Offset))
		writeU64(h, uint64(x.Ty))

	case GetI:
		h.Write([]byte("GetI"))
		h.Write([]byte(x.Descr))
		writeU64(h, uint64(x.Bias))
		writeExprHash(h, x.Ix)

	case Unop, Binop, Triop, Qop:
		h.Write([]byte("Nary"))
		h.Write([]byte(naryOp(e)))
		args, _ := NaryArgs(e)
		for _, a := range args {
			writeExprHash(h, a)
		}

	case Load:
		h.Write([]byte("Load"))
		writeU64(h, uint64(x.End))
		writeU64(h, uint64(x.Ty))
		writeExprHash(h, x.Addr)

	case Const:
		h.Write([]byte("Const"))
		writeU64(h, x.Value)
		writeU64(h, uint64(x.Ty))

	case ITE:
		h.Write([]byte("ITE"))
		writeExprHash(h, x.Cond)
		writeExprHash(h, x.IfFalse)
		writeExprHash(h, x.IfTrue)

	case CCall:
		h.Write([]byte("CCall"))
		h.Write([]byte(x.Callee))
		for _, a := range x.Args {
			writeExprHash(h, a)
		}

	default:
		h.Write([]byte("unknown"))
	}
}

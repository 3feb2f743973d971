package main

import (
	"fmt"

	"github.com/wuggen/static-jump-resolution/ir"
)

func decodeExpr(w *wireExpr) (ir.Expr, error) {
	if w == nil {
		return nil, fmt.Errorf("sjr: nil expression")
	}
	ty, ok := wireTypes[w.Ty]
	if w.Ty != "" && !ok {
		return nil, fmt.Errorf("sjr: unknown type %q", w.Ty)
	}

	switch w.Kind {
	case "Get":
		return ir.Get{Offset: w.Offset, Ty: ty}, nil

	case "RdTmp":
		return ir.RdTmp{Tmp: w.Tmp, Ty: ty}, nil

	case "Const":
		return ir.Const{Value: w.Value, Ty: ty}, nil

	case "Load":
		addr, err := decodeExpr(w.Addr)
		if err != nil {
			return nil, err
		}
		end, ok := wireEndians[w.End]
		if w.End != "" && !ok {
			return nil, fmt.Errorf("sjr: unknown endian %q", w.End)
		}
		return ir.Load{End: end, Ty: ty, Addr: addr}, nil

	case "Unop", "Binop", "Triop", "Qop":
		args := make([]ir.Expr, len(w.Args))
		for i := range w.Args {
			a, err := decodeExpr(&w.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		switch w.Kind {
		case "Unop":
			if len(args) != 1 {
				return nil, fmt.Errorf("sjr: Unop needs 1 arg, got %d", len(args))
			}
			return ir.Unop{Op: w.Op, Args: [1]ir.Expr{args[0]}, Ty: ty}, nil
		case "Binop":
			if len(args) != 2 {
				return nil, fmt.Errorf("sjr: Binop needs 2 args, got %d", len(args))
			}
			return ir.Binop{Op: w.Op, Args: [2]ir.Expr{args[0], args[1]}, Ty: ty}, nil
		case "Triop":
			if len(args) != 3 {
				return nil, fmt.Errorf("sjr: Triop needs 3 args, got %d", len(args))
			}
			return ir.Triop{Op: w.Op, Args: [3]ir.Expr{args[0], args[1], args[2]}, Ty: ty}, nil
		default:
			if len(args) != 4 {
				return nil, fmt.Errorf("sjr: Qop needs 4 args, got %d", len(args))
			}
			return ir.Qop{Op: w.Op, Args: [4]ir.Expr{args[0], args[1], args[2], args[3]}, Ty: ty}, nil
		}

	case "ITE":
		cond, err := decodeExpr(w.Cond)
		if err != nil {
			return nil, err
		}
		ifTrue, err := decodeExpr(w.IfTrue)
		if err != nil {
			return nil, err
		}
		ifFalse, err := decodeExpr(w.IfFalse)
		if err != nil {
			return nil, err
		}
		return ir.ITE{Cond: cond, IfTrue: ifTrue, IfFalse: ifFalse, Ty: ty}, nil

	case "CCall":
		args := make([]ir.Expr, len(w.Args))
		for i := range w.Args {
			a, err := decodeExpr(&w.Args[i])
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return ir.CCall{RetTy: ty, Callee: w.Callee, Args: args}, nil

	default:
		return nil, fmt.Errorf("sjr: unknown expression kind %q", w.Kind)
	}
}

func decodeStmt(w wireStmt) (ir.Stmt, error) {
	switch w.Kind {
	case "IMark":
		return ir.IMark{Addr: w.InsnAddr, Len: w.Len, Delta: w.Delta}, nil

	case "AbiHint":
		return ir.AbiHint{}, nil

	case "NoOp":
		return ir.NoOp{}, nil

	case "Put":
		data, err := decodeExpr(w.Data)
		if err != nil {
			return nil, err
		}
		return ir.Put{Offset: w.Offset, Data: data}, nil

	case "WrTmp":
		data, err := decodeExpr(w.Data)
		if err != nil {
			return nil, err
		}
		return ir.WrTmp{Tmp: w.Tmp, Data: data}, nil

	case "Store":
		addr, err := decodeExpr(w.Addr)
		if err != nil {
			return nil, err
		}
		data, err := decodeExpr(w.Data)
		if err != nil {
			return nil, err
		}
		end, ok := wireEndians[w.End]
		if w.End != "" && !ok {
			return nil, fmt.Errorf("sjr: unknown endian %q", w.End)
		}
		return ir.Store{Addr: addr, Data: data, End: end}, nil

	case "Exit":
		guard, err := decodeExpr(w.Guard)
		if err != nil {
			return nil, err
		}
		dst, err := decodeExpr(w.Dst)
		if err != nil {
			return nil, err
		}
		jk, ok := wireJumpkinds[w.Jumpkind]
		if w.Jumpkind != "" && !ok {
			return nil, fmt.Errorf("sjr: unknown jumpkind %q", w.Jumpkind)
		}
		return ir.Exit{Guard: guard, Dst: dst, Jumpkind: jk, OffsIP: w.OffsIP}, nil

	default:
		return nil, fmt.Errorf("sjr: unknown statement kind %q", w.Kind)
	}
}

func decodeBlock(w wireBlock) (*ir.Block, error) {
	stmts := make([]ir.Stmt, len(w.Statements))
	for i, ws := range w.Statements {
		s, err := decodeStmt(ws)
		if err != nil {
			return nil, fmt.Errorf("sjr: block 0x%x, statement %d: %w", w.Addr, i, err)
		}
		stmts[i] = s
	}

	var next ir.Expr
	if w.Next.Kind != "" {
		var err error
		next, err = decodeExpr(&w.Next)
		if err != nil {
			return nil, fmt.Errorf("sjr: block 0x%x: next: %w", w.Addr, err)
		}
	} else {
		next = ir.Const{Value: 0, Ty: ir.I64}
	}

	jk, ok := wireJumpkinds[w.Jumpkind]
	if w.Jumpkind != "" && !ok {
		return nil, fmt.Errorf("sjr: block 0x%x: unknown jumpkind %q", w.Addr, w.Jumpkind)
	}

	return &ir.Block{Addr: w.Addr, Statements: stmts, Next: next, Jumpkind: jk}, nil
}

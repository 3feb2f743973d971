// Package vars implements the abstract variable domain the analysis
// tracks liveness over: registers, stack-frame-local variables, and
// arbitrary memory regions (spec.md §3, §4.1).
package vars

import (
	"fmt"
	"hash/fnv"

	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/ir"
)

// Var is an abstract variable: a Register, a StackVar, or a
// MemoryLocation. Equal and Hash give Go types that embed an ir.Expr
// (and so are not comparable with ==) value-equality and hashing
// consistent with the original's Python __eq__/__hash__.
type Var interface {
	isVar()
	Equal(Var) bool
	Hash() uint64
	String() string
}

// Register is an architecture register, identified by its offset in the
// register file and its size in bytes.
type Register struct {
	Offset int
	Size   int
}

func (Register) isVar() {}

func (r Register) Equal(other Var) bool {
	o, ok := other.(Register)
	return ok && r.Offset == o.Offset && r.Size == o.Size
}

func (r Register) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "Register:%d:%d", r.Offset, r.Size)
	return h.Sum64()
}

func (r Register) String() string {
	return fmt.Sprintf("<Register %d(%d)>", r.Offset, r.Size)
}

// StringWithArch renders a Register using an architecture's register
// naming, mirroring Register.__repr__(arch) in the original.
func (r Register) StringWithArch(a arch.Arch) string {
	return fmt.Sprintf("<Register %s>", a.TranslateRegisterName(r.Offset, r.Size))
}

// Overlaps reports whether two Registers address overlapping bytes of the
// guest register file: both Registers share the same register file (there
// is only one per architecture, so this always holds) and their
// [offset, offset+size) byte intervals intersect.
func (r Register) Overlaps(other Register) bool {
	return r.Offset < other.Offset+other.Size && other.Offset < r.Offset+r.Size
}

// StackVar is a function-local variable, characterized by an offset
// within its function's stack frame and a byte size. The stack pointer
// is defined to be 0 in frame-space at function entry: negative offsets
// are locals, non-negative offsets are parameters passed on the stack.
type StackVar struct {
	FnAddr uint64
	Offset int64
	Size   int
}

func (StackVar) isVar() {}

func (s StackVar) Equal(other Var) bool {
	o, ok := other.(StackVar)
	return ok && s.FnAddr == o.FnAddr && s.Offset == o.Offset && s.Size == o.Size
}

func (s StackVar) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "StackVar:%d:%d:%d", s.FnAddr, s.Offset, s.Size)
	return h.Sum64()
}

func (s StackVar) String() string {
	return fmt.Sprintf("<StackVar [0x%x] %d (%d bytes)>", s.FnAddr, s.Offset, s.Size)
}

// Overlaps reports whether two StackVar regions, local to the same
// function, overlap in frame-space.
func (s StackVar) Overlaps(other StackVar) bool {
	return s.FnAddr == other.FnAddr &&
		s.Offset < other.Offset+int64(other.Size) &&
		other.Offset < s.Offset+int64(s.Size)
}

// MemoryLocation is an arbitrary, non-local memory region characterized
// by an address expression and a byte size. Addr is usually a symbolic
// IR expression rather than a concrete address, so equality is
// structural (ir.ExprEqual), not value identity.
type MemoryLocation struct {
	Addr ir.Expr
	Size int
}

func (MemoryLocation) isVar() {}

func (m MemoryLocation) Equal(other Var) bool {
	o, ok := other.(MemoryLocation)
	return ok && m.Size == o.Size && ir.ExprEqual(m.Addr, o.Addr)
}

func (m MemoryLocation) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "MemoryLocation:%d:%d", m.Size, ir.HashExpr(m.Addr))
	return h.Sum64()
}

func (m MemoryLocation) String() string {
	return fmt.Sprintf("<MemoryLocation %v(%d)>", m.Addr, m.Size)
}

// GetTypeSizeBytes translates an IR type to its size in bytes via the
// architecture descriptor (spec.md §4.1).
func GetTypeSizeBytes(ty ir.Type, a arch.Arch) int {
	return a.TypeSizeBytes(ty)
}

package arch

import (
	"strconv"

	"github.com/wuggen/static-jump-resolution/ir"
)

// Register-file byte offsets for the AMD64 guest state, in the style of
// a VEX-like lifter's register file: each integer register occupies an
// 8-byte slot, with rsp/rbp/rip and the general-purpose registers laid
// out consecutively. The exact numbering is this analysis's own
// convention, not a real lifter's layout, since decoding and lifting are
// out of scope here; what matters to the core is only that sp/bp/ip have
// stable, distinguishable offsets (isgasho-wag/internal/x86/isa.go lays
// out its own register table the same table-driven way).
const (
	offRIP = 8 * iota
	offRSP
	offRBP
	offRAX
	offRBX
	offRCX
	offRDX
	offRSI
	offRDI
	offR8
	offR9
	offR10
	offR11
	offR12
	offR13
	offR14
	offR15
)

var amd64RegNames = map[int]string{
	offRIP: "rip",
	offRSP: "rsp",
	offRBP: "rbp",
	offRAX: "rax",
	offRBX: "rbx",
	offRCX: "rcx",
	offRDX: "rdx",
	offRSI: "rsi",
	offRDI: "rdi",
	offR8:  "r8",
	offR9:  "r9",
	offR10: "r10",
	offR11: "r11",
	offR12: "r12",
	offR13: "r13",
	offR14: "r14",
	offR15: "r15",
}

// amd64SubregNames narrows a full-width register name down for a
// sub-register access (e.g. eax out of rax), mirroring what
// translate_register_name does for a real archinfo-backed Arch.
var amd64SubregNames = map[string]map[int]string{
	"rax": {8: "rax", 4: "eax", 2: "ax", 1: "al"},
	"rbx": {8: "rbx", 4: "ebx", 2: "bx", 1: "bl"},
	"rcx": {8: "rcx", 4: "ecx", 2: "cx", 1: "cl"},
	"rdx": {8: "rdx", 4: "edx", 2: "dx", 1: "dl"},
	"rsi": {8: "rsi", 4: "esi", 2: "si", 1: "sil"},
	"rdi": {8: "rdi", 4: "edi", 2: "di", 1: "dil"},
}

// AMD64 is a minimal x86-64 architecture descriptor.
type AMD64 struct{}

func (AMD64) Name() string { return "amd64" }
func (AMD64) SPOffset() int { return offRSP }
func (AMD64) BPOffset() int { return offRBP }
func (AMD64) IPOffset() int { return offRIP }

func (AMD64) TranslateRegisterName(offset, size int) string {
	full, ok := amd64RegNames[offset]
	if !ok {
		return "<unknown>"
	}
	if sub, ok := amd64SubregNames[full]; ok {
		if name, ok := sub[size]; ok {
			return name
		}
	}
	return full
}

func (AMD64) TypeSizeBytes(ty ir.Type) int { return typeSizeBytes(ty) }

// Test is a small, fixed architecture used by the test suite, with
// register offsets chosen to match the scenarios in spec.md §8 and the
// original analysis's own test fixtures (arbitrary but stable small
// integers, not tied to any real calling convention).
type Test struct{}

const (
	TestSPOffset = 0
	TestBPOffset = 8
	TestIPOffset = 16
)

func (Test) Name() string   { return "test" }
func (Test) SPOffset() int  { return TestSPOffset }
func (Test) BPOffset() int  { return TestBPOffset }
func (Test) IPOffset() int  { return TestIPOffset }

func (Test) TranslateRegisterName(offset, size int) string {
	switch offset {
	case TestSPOffset:
		return "sp"
	case TestBPOffset:
		return "bp"
	case TestIPOffset:
		return "ip"
	default:
		return "r" + strconv.Itoa(offset)
	}
}

func (Test) TypeSizeBytes(ty ir.Type) int { return typeSizeBytes(ty) }

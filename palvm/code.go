package palvm

import (
	"fmt"

	"github.com/reusee/palforth/borrows"
)

type Op uint8

const (
	OpCompound Op = iota
	OpNop
	OpPushLiteral
	OpPushVar
	OpPushLocal
	OpPick
	OpFrameAlloc
	OpFrameFree
	OpParamDrop
	OpInject
	OpInjectMove
	OpBranch
	OpJump
	OpCallDyn
	OpRet
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpShl
	OpShr
	OpAnd
	OpOr
	OpXor
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLe
	OpGe
	OpBoolAnd
	OpBoolOr
	OpBoolXor
	OpBoolNot
	OpConstPrint
	OpAcquire
	OpRelease

	numOps
)

var opNames = [numOps]string{
	OpCompound:    "compound",
	OpNop:         "nop",
	OpPushLiteral: "push_literal",
	OpPushVar:     "push_var",
	OpPushLocal:   "push_local",
	OpPick:        "pick",
	OpFrameAlloc:  "frame_alloc",
	OpFrameFree:   "frame_free",
	OpParamDrop:   "param_drop",
	OpInject:      "inject",
	OpInjectMove:  "inject_move",
	OpBranch:      "branch",
	OpJump:        "jump",
	OpCallDyn:     "call_dyn",
	OpRet:         "ret",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpDiv:         "div",
	OpMod:         "mod",
	OpShl:         "shl",
	OpShr:         "shr",
	OpAnd:         "and",
	OpOr:          "or",
	OpXor:         "xor",
	OpEq:          "eq",
	OpNeq:         "neq",
	OpLt:          "lt",
	OpGt:          "gt",
	OpLe:          "le",
	OpGe:          "ge",
	OpBoolAnd:     "bool_and",
	OpBoolOr:      "bool_or",
	OpBoolXor:     "bool_xor",
	OpBoolNot:     "not",
	OpConstPrint:  "const_print",
	OpAcquire:     "acquire",
	OpRelease:     "release",
}

var opsByName = func() map[string]Op {
	ret := make(map[string]Op, numOps)
	for op, name := range opNames {
		ret[name] = Op(op)
	}
	return ret
}()

func (o Op) String() string {
	if o < numOps {
		return opNames[o]
	}
	return fmt.Sprintf("op(%d)", uint8(o))
}

func ParseOp(name string) (Op, bool) {
	op, ok := opsByName[name]
	return op, ok
}

// Code is one instruction node. Nodes are not modified after construction
// and may be shared between sequences and VMs.
type Code struct {
	Op   Op
	Arg  int64
	Text string
	Seq  []Code
	Box  *borrows.Box
}

func (o Op) With(arg int64) Code {
	return Code{
		Op:  o,
		Arg: arg,
	}
}

func Compound(seq ...Code) Code {
	return Code{
		Op:  OpCompound,
		Seq: seq,
	}
}

func Print(text string) Code {
	return Code{
		Op:   OpConstPrint,
		Text: text,
	}
}

func Acquire(box *borrows.Box, perm borrows.Perm) Code {
	return Code{
		Op:  OpAcquire,
		Arg: int64(perm),
		Box: box,
	}
}

func Release(box *borrows.Box, perm borrows.Perm) Code {
	return Code{
		Op:  OpRelease,
		Arg: int64(perm),
		Box: box,
	}
}

var Ret = Code{Op: OpRet}

func (c Code) String() string {
	switch c.Op {
	case OpCompound:
		return fmt.Sprintf("compound[%d]", len(c.Seq))
	case OpConstPrint:
		return fmt.Sprintf("const_print(%q)", c.Text)
	case OpAcquire, OpRelease:
		return fmt.Sprintf("%s(%s)", c.Op, borrows.Perm(c.Arg))
	case OpNop, OpRet, OpCallDyn, OpBoolNot,
		OpAdd, OpSub, OpMul, OpDiv, OpMod, OpShl, OpShr, OpAnd, OpOr, OpXor,
		OpEq, OpNeq, OpLt, OpGt, OpLe, OpGe,
		OpBoolAnd, OpBoolOr, OpBoolXor:
		return c.Op.String()
	}
	return fmt.Sprintf("%s(%d)", c.Op, c.Arg)
}

package palvm

import (
	"errors"
	"fmt"

	"github.com/reusee/palforth/borrows"
)

// Stack effects below are on the parameter stack. Slots hold addresses;
// n-addr names the address of an integer, f-addr of a flag, x-addr of a code
// handle. ( D: ) is the data stack.

func errJumpOut(target, length int) error {
	return fmt.Errorf("jump to %d outside sequence of %d", target, length)
}

func (vm *VM) step(c *Code) Next {
	vm.current = c
	if vm.config.Trace {
		vm.logger.Debug("step",
			"code", c.String(),
			"params", vm.params.Len(),
			"data", vm.data.Len(),
		)
	}

	switch c.Op {
	case OpNop:
		return Fallthrough
	case OpPushLiteral, OpPushVar:
		return vm.pushLiteral(c)
	case OpPushLocal:
		return vm.pushLocal(c)
	case OpPick:
		return vm.pick(c)
	case OpFrameAlloc:
		return vm.frameAlloc(c)
	case OpFrameFree:
		return vm.frameFree(c)
	case OpParamDrop:
		return vm.paramDrop(c)
	case OpInject:
		return vm.inject(c, false)
	case OpInjectMove:
		return vm.inject(c, true)
	case OpBranch:
		return vm.branch(c)
	case OpJump:
		return vm.jump(c)
	case OpCallDyn:
		return vm.callDyn(c)
	case OpRet:
		return Return
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpShl, OpShr, OpAnd, OpOr, OpXor:
		return vm.arith(c)
	case OpEq, OpNeq, OpLt, OpGt, OpLe, OpGe:
		return vm.compare(c)
	case OpBoolAnd, OpBoolOr, OpBoolXor:
		return vm.logic(c)
	case OpBoolNot:
		return vm.not(c)
	case OpConstPrint:
		return vm.constPrint(c)
	case OpAcquire:
		return vm.acquire(c)
	case OpRelease:
		return vm.release(c)
	}

	vm.Panic(IllegalInstruction)
	return Return
}

// push_literal ( -- x )
func (vm *VM) pushLiteral(c *Code) Next {
	vm.Push(Word(c.Arg))
	return Fallthrough
}

// push_local ( -- a-addr )
// The address of data stack slot Arg below the top.
func (vm *VM) pushLocal(c *Code) Next {
	vm.Push(vm.LocalAddr(int(c.Arg)))
	return Fallthrough
}

// pick ( xu ... x0 -- xu ... x0 xu )
// u is Arg, 0 duplicates the top.
func (vm *VM) pick(c *Code) Next {
	i := vm.spot(int(c.Arg))
	vm.Push(vm.params.Get(i))
	return Fallthrough
}

// frame_alloc ( D: -- x1 ... xn )
func (vm *VM) frameAlloc(c *Code) Next {
	if _, err := vm.data.Alloc(int(c.Arg)); err != nil {
		vm.stackFault(err)
	}
	return Fallthrough
}

// frame_free ( D: x1 ... xn -- )
func (vm *VM) frameFree(c *Code) Next {
	if _, err := vm.data.Free(int(c.Arg)); err != nil {
		vm.stackFault(err)
	}
	return Fallthrough
}

// param_drop ( x1 ... xn -- )
func (vm *VM) paramDrop(c *Code) Next {
	if _, err := vm.params.Free(int(c.Arg)); err != nil {
		vm.stackFault(err)
	}
	return Fallthrough
}

// inject ( dst-addr src-addr -- dst-addr )
// Copies Arg bytes from src to dst. inject faults on overlapping regions,
// inject_move tolerates them.
func (vm *VM) inject(c *Code, move bool) Next {
	src := vm.Pop()
	dst := vm.params.Get(vm.spot(0))
	n := int(c.Arg)
	if n < 0 {
		vm.Panic(IllegalInstruction)
	}
	if !move && overlaps(src, dst, n) {
		vm.PanicErr(IllegalAddress, fmt.Errorf("overlapping inject of %d bytes", n))
	}
	from := vm.memory(src, n, false)
	to := vm.memory(dst, n, true)
	copy(to, from)
	return Fallthrough
}

func overlaps(a, b Word, n int) bool {
	segA, offA := SplitAddr(a)
	segB, offB := SplitAddr(b)
	if segA != segB || n == 0 {
		return false
	}
	lo, hi := min(offA, offB), max(offA, offB)
	return uint64(hi-lo) < uint64(n)
}

// branch ( f-addr -- )
// Taken on true: continues Arg nodes past the following node.
func (vm *VM) branch(c *Code) Next {
	if vm.ReadBool(vm.Pop()) {
		return Next(1 + c.Arg)
	}
	return Fallthrough
}

// jump ( -- )
func (vm *VM) jump(c *Code) Next {
	return Next(1 + c.Arg)
}

// call_dyn ( x-addr -- )
func (vm *VM) callDyn(c *Code) Next {
	vm.callee = vm.linked(vm.ReadWord(vm.Pop()))
	return Call
}

// add sub mul div mod shl shr and or xor ( n1-addr n2-addr -- n1-addr )
// n1 is replaced by n1 op n2.
func (vm *VM) arith(c *Code) Next {
	rhs := vm.ReadInt(vm.Pop())
	dst := vm.params.Get(vm.spot(0))
	lhs := vm.ReadInt(dst)
	var v int64
	switch c.Op {
	case OpAdd:
		v = lhs + rhs
	case OpSub:
		v = lhs - rhs
	case OpMul:
		v = lhs * rhs
	case OpDiv:
		if rhs == 0 {
			vm.Panic(ZeroDivision)
		}
		v = lhs / rhs
	case OpMod:
		if rhs == 0 {
			vm.Panic(ZeroDivision)
		}
		v = lhs % rhs
	case OpShl:
		v = lhs << (uint64(rhs) % 64)
	case OpShr:
		v = lhs >> (uint64(rhs) % 64)
	case OpAnd:
		v = lhs & rhs
	case OpOr:
		v = lhs | rhs
	case OpXor:
		v = lhs ^ rhs
	}
	vm.WriteInt(dst, v)
	return Fallthrough
}

// eq neq lt gt le ge ( f-addr n1-addr n2-addr -- f-addr )
// f is set to n1 op n2.
func (vm *VM) compare(c *Code) Next {
	rhs := vm.ReadInt(vm.Pop())
	lhs := vm.ReadInt(vm.Pop())
	var v bool
	switch c.Op {
	case OpEq:
		v = lhs == rhs
	case OpNeq:
		v = lhs != rhs
	case OpLt:
		v = lhs < rhs
	case OpGt:
		v = lhs > rhs
	case OpLe:
		v = lhs <= rhs
	case OpGe:
		v = lhs >= rhs
	}
	vm.WriteBool(vm.params.Get(vm.spot(0)), v)
	return Fallthrough
}

// bool_and bool_or bool_xor ( f1-addr f2-addr -- f1-addr )
func (vm *VM) logic(c *Code) Next {
	src := vm.ReadBool(vm.Pop())
	dst := vm.params.Get(vm.spot(0))
	v := vm.ReadBool(dst)
	switch c.Op {
	case OpBoolAnd:
		v = src && v
	case OpBoolOr:
		v = src || v
	case OpBoolXor:
		v = src != v
	}
	vm.WriteBool(dst, v)
	return Fallthrough
}

// not ( f-addr -- f-addr )
func (vm *VM) not(c *Code) Next {
	dst := vm.params.Get(vm.spot(0))
	vm.WriteBool(dst, !vm.ReadBool(dst))
	return Fallthrough
}

// const_print ( -- )
func (vm *VM) constPrint(c *Code) Next {
	if _, err := vm.stdout.Write([]byte(c.Text)); err != nil {
		vm.logger.Warn("print failed", "error", err)
	}
	return Fallthrough
}

// acquire ( -- a-addr )
// Borrows Box with the permissions in Arg and pushes the address of its
// frame slot.
func (vm *VM) acquire(c *Code) Next {
	if c.Box == nil {
		vm.Panic(IllegalInstruction)
	}
	addr := vm.LocalAddr(int(c.Box.Offset))
	if err := c.Box.Acquire(borrows.Perm(c.Arg)); err != nil {
		if errors.Is(err, borrows.ErrAlreadyBorrowed) {
			vm.PanicErr(AlreadyBorrowed, err)
		}
		vm.PanicErr(BadSignature, err)
	}
	vm.Push(addr)
	return Fallthrough
}

// release ( -- )
func (vm *VM) release(c *Code) Next {
	if c.Box == nil {
		vm.Panic(IllegalInstruction)
	}
	c.Box.Release(borrows.Perm(c.Arg))
	return Fallthrough
}

package palvm

import "math"

// Next tells the engine where to continue, relative to the current node.
type Next int

const (
	Fallthrough Next = 1
	Return      Next = math.MinInt32     // no next node
	Call        Next = math.MinInt32 + 1 // run vm.callee, then fall through
)

// Execute runs code on the threaded engine. A compound node runs its
// sequence; ret inside it ends the enclosing sequences up to the nearest
// call_dyn, and Execute then returns Return.
func (vm *VM) Execute(code *Code) Next {
	defer vm.guard()
	return vm.execute(code)
}

func (vm *VM) execute(code *Code) Next {
	if code.Op != OpCompound {
		next := vm.step(code)
		if next == Call {
			vm.execute(vm.callee)
			return Fallthrough
		}
		return next
	}
	seq := code.Seq
	for i := 0; i < len(seq); {
		next := vm.execute(&seq[i])
		if next == Return {
			return Return
		}
		i += int(next)
		if i < 0 || i > len(seq) {
			vm.PanicErr(IllegalAddress, errJumpOut(i, len(seq)))
		}
	}
	return Fallthrough
}

type retFrame struct {
	seq []Code
	pc  int
}

// Run executes code on the work-list engine. Compound nodes are calls:
// ret or the end of a sequence resumes the caller after the call site.
// Nesting is bounded by Config.ReturnDepth instead of the host stack.
func (vm *VM) Run(code *Code) {
	defer vm.guard()

	frames := make([]retFrame, 0, min(vm.config.ReturnDepth, 64))
	enter := func(code *Code) {
		if len(frames) >= vm.config.ReturnDepth {
			vm.Panic(StackOverflow)
		}
		seq := code.Seq
		if code.Op != OpCompound {
			seq = []Code{*code}
		}
		frames = append(frames, retFrame{
			seq: seq,
		})
	}

	enter(code)
	for len(frames) > 0 {
		f := &frames[len(frames)-1]
		if f.pc == len(f.seq) {
			frames = frames[:len(frames)-1]
			continue
		}
		c := &f.seq[f.pc]
		if c.Op == OpCompound {
			f.pc++
			enter(c)
			continue
		}
		switch next := vm.step(c); next {
		case Return:
			frames = frames[:len(frames)-1]
		case Call:
			f.pc++
			enter(vm.callee)
		default:
			f.pc += int(next)
			if f.pc < 0 || f.pc > len(f.seq) {
				vm.PanicErr(IllegalAddress, errJumpOut(f.pc, len(f.seq)))
			}
		}
	}
}

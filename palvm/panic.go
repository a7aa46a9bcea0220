package palvm

import (
	"fmt"
	"runtime"

	"github.com/reusee/palforth/stacks"
)

// Errno is the failure payload of a fault and the exit status of an uncaught one.
type Errno int

const (
	StackUnderflow Errno = iota + 2
	StackOverflow
	AlreadyBorrowed
	BadSignature
	IllegalAddress
	IllegalInstruction
	ZeroDivision
	OutOfMemory
)

var errnoNames = map[Errno]string{
	StackUnderflow:     "stack underflow",
	StackOverflow:      "stack overflow",
	AlreadyBorrowed:    "already borrowed",
	BadSignature:       "bad signature",
	IllegalAddress:     "illegal address",
	IllegalInstruction: "illegal instruction",
	ZeroDivision:       "zero division",
	OutOfMemory:        "out of memory",
}

func (e Errno) Error() string {
	if name, ok := errnoNames[e]; ok {
		return name
	}
	return fmt.Sprintf("errno %d", int(e))
}

type Fault struct {
	Errno  Errno
	Op     Op
	Params []stacks.Word // live parameter stack words, top first
	Data   []stacks.Word // live data stack words, top first
	Err    error
}

func (f *Fault) Error() string {
	msg := fmt.Sprintf("%s at %s", f.Errno.Error(), f.Op)
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *Fault) Unwrap() []error {
	if f.Err == nil {
		return []error{f.Errno}
	}
	return []error{f.Errno, f.Err}
}

func liveWords(s *stacks.Stack) []stacks.Word {
	low, high := s.Bounds()
	if cur := s.Cursor(); cur < low || cur > high {
		return nil
	}
	return s.Words()
}

func (vm *VM) newFault(errno Errno, err error) *Fault {
	f := &Fault{
		Errno:  errno,
		Params: liveWords(&vm.params),
		Data:   liveWords(&vm.data),
		Err:    err,
	}
	if vm.current != nil {
		f.Op = vm.current.Op
	}
	return f
}

// Panic raises a fault. It does not return.
//
// With a recovery point installed the fault unwinds to the innermost Try.
// Otherwise the fault is logged, the exit hook runs with the errno as status,
// and if the hook returns, the fault unwinds to the caller of the engine.
func (vm *VM) Panic(errno Errno) {
	vm.raise(vm.newFault(errno, nil))
}

// PanicErr is Panic with the underlying cause attached to the fault.
func (vm *VM) PanicErr(errno Errno, err error) {
	vm.raise(vm.newFault(errno, err))
}

func (vm *VM) raise(f *Fault) {
	if vm.recovers == 0 {
		vm.logger.Error("uncaught fault",
			"errno", int(f.Errno),
			"fault", f.Error(),
			"params", f.Params,
			"data", f.Data,
		)
		vm.exit(int(f.Errno))
	}
	panic(f)
}

// Try runs fn with a recovery point installed and returns the fault that
// unwound to it, if any. Calls nest: a fault is handled by the innermost Try.
func (vm *VM) Try(fn func()) (err error) {
	vm.recovers++
	defer func() {
		vm.recovers--
		p := recover()
		if p == nil {
			return
		}
		switch p := p.(type) {
		case *Fault:
			err = p
		case runtime.Error:
			err = vm.newFault(IllegalAddress, p)
		default:
			panic(p)
		}
	}()
	fn()
	return nil
}

// guard turns runtime errors escaping unchecked configurations into faults.
func (vm *VM) guard() {
	p := recover()
	if p == nil {
		return
	}
	if err, ok := p.(runtime.Error); ok {
		vm.PanicErr(IllegalAddress, err)
	}
	panic(p)
}

// Reset empties both stacks.
func (vm *VM) Reset() {
	vm.params.Reset()
	vm.data.Reset()
	vm.current = nil
}

package debugs

import (
	"errors"
	"fmt"

	"github.com/reusee/palforth/palvm"
	"github.com/reusee/starlarkutil"
	"go.starlark.net/starlark"
)

func words(ws []palvm.Word) *starlark.List {
	elems := make([]starlark.Value, len(ws))
	for i, w := range ws {
		elems[i] = starlark.MakeUint64(uint64(w))
	}
	return starlark.NewList(elems)
}

func addrArg(args starlark.Tuple, i int) (palvm.Word, error) {
	if i >= len(args) {
		return 0, fmt.Errorf("missing argument %d", i)
	}
	n, ok := args[i].(starlark.Int)
	if !ok {
		return 0, fmt.Errorf("argument %d: want int, got %s", i, args[i].Type())
	}
	w, ok := n.Uint64()
	if !ok {
		return 0, fmt.Errorf("argument %d: %s is not an address", i, n)
	}
	return palvm.Word(w), nil
}

// memoryReader wraps a read of VM memory so that faults become starlark errors.
func memoryReader(vm *palvm.VM, name string, read func(args starlark.Tuple) (starlark.Value, error)) *starlark.Builtin {
	return starlark.NewBuiltin(name, func(_ *starlark.Thread, _ *starlark.Builtin, args starlark.Tuple, _ []starlark.Tuple) (ret starlark.Value, err error) {
		if faultErr := vm.Try(func() {
			ret, err = read(args)
		}); faultErr != nil {
			return nil, faultErr
		}
		return
	})
}

// Globals exposes a VM and the fault that stopped it to starlark.
//
//	params, locals      live stack words, top first
//	errno, fault        the fault, or 0 and None
//	read_int(addr)      integer at addr
//	read_word(addr)     word at addr
//	read(addr, n)       n bytes at addr
//	split(addr)         (segment, offset)
//	errno_name(code)    description of an errno
//	op_name(op)         name of an op code
func Globals(vm *palvm.VM, fault error) starlark.StringDict {
	state := vm.State()
	globals := starlark.StringDict{
		"params": words(state.Params),
		"locals": words(state.Data),
		"errno":  starlark.MakeInt(0),
		"fault":  starlark.None,

		"read_int": memoryReader(vm, "read_int", func(args starlark.Tuple) (starlark.Value, error) {
			addr, err := addrArg(args, 0)
			if err != nil {
				return nil, err
			}
			return starlark.MakeInt64(vm.ReadInt(addr)), nil
		}),
		"read_word": memoryReader(vm, "read_word", func(args starlark.Tuple) (starlark.Value, error) {
			addr, err := addrArg(args, 0)
			if err != nil {
				return nil, err
			}
			return starlark.MakeUint64(uint64(vm.ReadWord(addr))), nil
		}),
		"read": memoryReader(vm, "read", func(args starlark.Tuple) (starlark.Value, error) {
			addr, err := addrArg(args, 0)
			if err != nil {
				return nil, err
			}
			n, err := addrArg(args, 1)
			if err != nil {
				return nil, err
			}
			return starlark.Bytes(vm.Read(addr, int(n))), nil
		}),
		"split": memoryReader(vm, "split", func(args starlark.Tuple) (starlark.Value, error) {
			addr, err := addrArg(args, 0)
			if err != nil {
				return nil, err
			}
			seg, offset := palvm.SplitAddr(addr)
			return starlark.Tuple{
				starlark.MakeUint(uint(seg)),
				starlark.MakeUint(uint(offset)),
			}, nil
		}),

		"errno_name": starlarkutil.MakeFunc("errno_name", func(code int) string {
			return palvm.Errno(code).Error()
		}),
		"op_name": starlarkutil.MakeFunc("op_name", func(op int) string {
			return palvm.Op(op).String()
		}),
	}

	var f *palvm.Fault
	if errors.As(fault, &f) {
		globals["errno"] = starlark.MakeInt(int(f.Errno))
		globals["fault"] = starlark.String(f.Error())
	} else if fault != nil {
		globals["fault"] = starlark.String(fault.Error())
	}

	return globals
}

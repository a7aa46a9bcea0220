package debugs

import (
	"context"
	"slices"

	"github.com/reusee/palforth/logs"
	"github.com/reusee/palforth/palvm"
	"go.starlark.net/repl"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Tap opens a starlark REPL on stdin over the state of vm.
type Tap func(ctx context.Context, what string, vm *palvm.VM, fault error)

func (Module) Tap(
	logger logs.Logger,
) Tap {
	return func(ctx context.Context, what string, vm *palvm.VM, fault error) {
		globals := Globals(vm, fault)
		names := make([]string, 0, len(globals))
		for name := range globals {
			names = append(names, name)
		}
		slices.Sort(names)
		logger.InfoContext(ctx, "tap: "+what,
			"globals", names,
		)
		defer func() {
			logger.InfoContext(ctx, "tap end: "+what)
		}()

		thread := &starlark.Thread{
			Name: "repl",
		}
		repl.REPLOptions(&syntax.FileOptions{
			Set:             true,
			While:           true,
			TopLevelControl: true,
		}, thread, globals)
	}
}

package palvm

import (
	"io"
	"log/slog"
	"os"

	"github.com/reusee/palforth/arenas"
	"github.com/reusee/palforth/stacks"
)

// VM is one execution context. It must not be used from more than one
// goroutine at a time; distinct VMs may share a frozen Dictionary.
type VM struct {
	config   Config
	params   stacks.Stack
	data     stacks.Stack
	scratch  *arenas.Arena
	dict     *Dictionary
	links    []*Code
	logger   *slog.Logger
	stdout   io.Writer
	exit     func(int)
	recovers int
	current  *Code
	callee   *Code
}

type Options struct {
	Logger     *slog.Logger
	Stdout     io.Writer
	Exit       func(code int)
	Dictionary *Dictionary
	Allocator  arenas.Allocator // scratch arena allocator
}

func NewVM(config Config, options *Options) (*VM, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if options == nil {
		options = new(Options)
	}

	vm := &VM{
		config: config,
		params: stacks.Make(config.ParamSlots),
		data:   stacks.Make(config.DataSlots),
		scratch: arenas.New(&arenas.Options{
			Allocator: options.Allocator,
			Limit:     config.ScratchLimit,
		}),
		dict:   options.Dictionary,
		logger: options.Logger,
		stdout: options.Stdout,
		exit:   options.Exit,
	}
	for _, s := range []*stacks.Stack{&vm.params, &vm.data} {
		s.UncheckedOverflow = config.UncheckedOverflow
		s.UncheckedUnderflow = config.UncheckedUnderflow
	}
	if vm.logger == nil {
		vm.logger = slog.Default()
	}
	if vm.stdout == nil {
		vm.stdout = os.Stdout
	}
	if vm.exit == nil {
		vm.exit = os.Exit
	}

	return vm, nil
}

func (vm *VM) Config() Config {
	return vm.config
}

func (vm *VM) Dictionary() *Dictionary {
	return vm.dict
}

// Push pushes w onto the parameter stack.
func (vm *VM) Push(w stacks.Word) {
	if err := vm.params.Push(w); err != nil {
		vm.stackFault(err)
	}
}

// Pop pops the parameter stack top.
func (vm *VM) Pop() stacks.Word {
	w, err := vm.params.Pop()
	if err != nil {
		vm.stackFault(err)
	}
	return w
}

// Params returns the live parameter stack words, top first.
func (vm *VM) Params() []stacks.Word {
	return vm.params.Words()
}

// Locals returns the live data stack words, top first.
func (vm *VM) Locals() []stacks.Word {
	return vm.data.Words()
}

func (vm *VM) stackFault(err error) {
	switch err {
	case stacks.ErrOverflow:
		vm.PanicErr(StackOverflow, err)
	case stacks.ErrUnderflow:
		vm.PanicErr(StackUnderflow, err)
	}
	vm.PanicErr(IllegalInstruction, err)
}

// spot returns the parameter stack slot n below the top.
func (vm *VM) spot(n int) int {
	i, err := vm.params.Spot(n)
	if err != nil {
		vm.stackFault(err)
	}
	return i
}

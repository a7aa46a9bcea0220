package debugs

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/palforth/logs"
	"github.com/reusee/palforth/palvm"
	"go.starlark.net/starlark"
)

func faultedVM(t *testing.T) (*palvm.VM, palvm.Word, error) {
	vm, err := palvm.NewVM(palvm.DefaultConfig(), &palvm.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout: io.Discard,
	})
	if err != nil {
		t.Fatal(err)
	}
	addr, err := vm.AllocInt(-5)
	if err != nil {
		t.Fatal(err)
	}
	code := palvm.Compound(
		palvm.OpPushLiteral.With(int64(addr)),
		palvm.OpParamDrop.With(2),
	)
	fault := vm.Try(func() {
		vm.Execute(&code)
	})
	if !errors.Is(fault, palvm.StackUnderflow) {
		t.Fatalf("got %v", fault)
	}
	return vm, addr, fault
}

func eval(t *testing.T, globals starlark.StringDict, src string) starlark.Value {
	thread := &starlark.Thread{
		Name: "test",
	}
	value, err := starlark.Eval(thread, "test", src, globals)
	if err != nil {
		t.Fatalf("%s: %v", src, err)
	}
	return value
}

func TestGlobals(t *testing.T) {
	vm, addr, fault := faultedVM(t)
	globals := Globals(vm, fault)

	for src, want := range map[string]string{
		"len(params)":                  "1",
		"len(locals)":                  "0",
		"errno":                        "2",
		"errno_name(errno)":            `"stack underflow"`,
		"op_name(7)":                   `"frame_free"`,
		"read_int(params[0])":          "-5",
		"split(params[0])":             "(16, 0)",
		"len(read(params[0], 8))":      "8",
		"read_word(params[0]) > 1000":  "True",
		"fault.startswith('stack un')": "True",
	} {
		if got := eval(t, globals, src).String(); got != want {
			t.Fatalf("%s: got %s, want %s", src, got, want)
		}
	}

	if params := vm.Params(); len(params) != 1 || params[0] != addr {
		t.Fatalf("got %v", params)
	}
}

func TestReadFaultIsStarlarkError(t *testing.T) {
	vm, _, fault := faultedVM(t)
	thread := &starlark.Thread{
		Name: "test",
	}
	_, err := starlark.Eval(thread, "test", "read_int(0)", Globals(vm, fault))
	if err == nil {
		t.Fatal("should fail")
	}
}

func TestTap(t *testing.T) {
	vm, _, fault := faultedVM(t)
	dscope.New(
		new(Module),
		new(logs.Module),
	).Call(func(
		tap Tap,
	) {
		tap(t.Context(), "test", vm, fault)
	})
}

package images

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/reusee/palforth/palvm"
)

func newVM(t *testing.T, dict *palvm.Dictionary) (*palvm.VM, *bytes.Buffer) {
	out := new(bytes.Buffer)
	vm, err := palvm.NewVM(palvm.DefaultConfig(), &palvm.Options{
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout:     out,
		Dictionary: dict,
		Exit: func(code int) {
			t.Fatalf("exit %d", code)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return vm, out
}

func loadAndLink(t *testing.T, path string) (*Program, *palvm.Dictionary) {
	img, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	dict := palvm.NewDictionary(nil)
	prog, err := Link(img, dict)
	if err != nil {
		t.Fatal(err)
	}
	dict.Freeze()
	return prog, dict
}

func TestAdd(t *testing.T) {
	prog, dict := loadAndLink(t, filepath.Join("testdata", "add.cue"))
	vm, _ := newVM(t, dict)
	if err := vm.Try(func() {
		vm.Execute(prog.Entry)
	}); err != nil {
		t.Fatal(err)
	}
	params := vm.Params()
	if len(params) != 1 {
		t.Fatalf("got %v", params)
	}
	if got := vm.ReadInt(params[0]); got != 7 {
		t.Fatalf("got %d", got)
	}
}

func TestCountdown(t *testing.T) {
	prog, dict := loadAndLink(t, filepath.Join("testdata", "countdown.cue"))
	for _, run := range []func(*palvm.VM, *palvm.Code){
		func(vm *palvm.VM, code *palvm.Code) {
			vm.Execute(code)
		},
		(*palvm.VM).Run,
	} {
		vm, out := newVM(t, dict)
		if err := vm.Try(func() {
			run(vm, prog.Entry)
		}); err != nil {
			t.Fatal(err)
		}
		if got := out.String(); got != "tick\ntick\ntick\ndone ✓\n" {
			t.Fatalf("got %q", got)
		}
		if len(vm.Params()) != 0 || len(vm.Locals()) != 0 {
			t.Fatalf("got %v %v", vm.Params(), vm.Locals())
		}
		if !prog.Boxes["counter"].Idle() {
			t.Fatal("box still borrowed")
		}
	}
}

func TestGobRoundTrip(t *testing.T) {
	img, err := Load(filepath.Join("testdata", "countdown.cue"))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "countdown.gob")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := Encode(f, img); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	prog, dict := loadAndLink(t, path)
	vm, out := newVM(t, dict)
	vm.Run(prog.Entry)
	if got := out.String(); got != "tick\ntick\ntick\ndone ✓\n" {
		t.Fatalf("got %q", got)
	}
}

func TestParseDefaults(t *testing.T) {
	img, err := Parse("inline", []byte(`
words: main: [{op: "nop"}]
boxes: x: perm: "read"
`))
	if err != nil {
		t.Fatal(err)
	}
	if img.Entry != "main" {
		t.Fatalf("got %q", img.Entry)
	}
	if img.Boxes["x"].Offset != 0 {
		t.Fatalf("got %+v", img.Boxes)
	}
}

func TestParseErrors(t *testing.T) {
	for src, want := range map[string]error{
		`words: main: [{op: "frobnicate"}]`:                      ErrUnknownOp,
		`words: main: [{op: "call", word: "nope"}]`:              ErrUnknownWord,
		`entry: "start", words: main: []`:                        ErrUnknownWord,
		`words: main: [{op: "acquire", box: "x", perm: "read"}]`: ErrUnknownBox,
		`boxes: x: perm: "sideways", words: main: []`:            ErrBadPerm,
	} {
		_, err := Parse("inline", []byte(src))
		if !errors.Is(err, want) {
			t.Fatalf("%s: got %v", src, err)
		}
	}
}

func TestBadText(t *testing.T) {
	img := &Image{
		Entry: "main",
		Words: map[string][]Node{
			"main": {{Op: "const_print", Text: "ok\xed\xa0\x80"}},
		},
	}
	if err := img.Check(); !errors.Is(err, ErrBadText) {
		t.Fatalf("got %v", err)
	}
}

func TestParseSchemaViolation(t *testing.T) {
	_, err := Parse("inline", []byte(`words: main: [{op: "nop", bogus: 1}]`))
	if err == nil {
		t.Fatal("should fail")
	}
}

func TestRecursiveCall(t *testing.T) {
	img := &Image{
		Entry: "a",
		Words: map[string][]Node{
			"a": {{Op: "call", Word: "b"}},
			"b": {{Op: "call", Word: "a"}},
		},
	}
	_, err := Link(img, palvm.NewDictionary(nil))
	if !errors.Is(err, ErrRecursiveCall) {
		t.Fatalf("got %v", err)
	}
}

func TestRecursionThroughHandle(t *testing.T) {
	// a word may reach itself through call_dyn
	img := &Image{
		Entry: "main",
		Words: map[string][]Node{
			"main": {
				{Op: "code", Word: "main"},
				{Op: "param_drop", Arg: 1},
				{Op: "const_print", Text: "ok"},
			},
		},
	}
	dict := palvm.NewDictionary(nil)
	prog, err := Link(img, dict)
	if err != nil {
		t.Fatal(err)
	}
	vm, out := newVM(t, dict)
	vm.Execute(prog.Entry)
	if out.String() != "ok" {
		t.Fatalf("got %q", out.String())
	}
}

func TestLinkFrozen(t *testing.T) {
	img, err := Parse("inline", []byte(`words: main: [{op: "const", arg: 1}]`))
	if err != nil {
		t.Fatal(err)
	}
	dict := palvm.NewDictionary(nil)
	dict.Freeze()
	if _, err := Link(img, dict); !errors.Is(err, palvm.ErrFrozen) {
		t.Fatalf("got %v", err)
	}
}

func TestLoadUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("got %v", err)
	}
}

package cmds

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestExecutor(t *testing.T) {
	e := NewExecutor()
	var a int
	var s string
	e.Define("+a", Func(func() {
		a = 42
	}))
	e.Define("a", Func(func(i int) {
		a = i
	}))
	e.Define("s", Func(func(v string) {
		s = v
	}).Alias("str"))

	if err := e.Execute([]string{"+a"}); err != nil {
		t.Fatal(err)
	}
	if a != 42 {
		t.Fatalf("got %d", a)
	}
	if err := e.Execute([]string{"a", "0x10", "str", "foo"}); err != nil {
		t.Fatal(err)
	}
	if a != 16 || s != "foo" {
		t.Fatalf("got %d %q", a, s)
	}

	err := e.Execute([]string{"foo"})
	if err == nil || !strings.Contains(err.Error(), "unknown command: foo") {
		t.Fatalf("got %v", err)
	}
	err = e.Execute([]string{"a", "x"})
	if err == nil || !strings.Contains(err.Error(), "convert x") {
		t.Fatalf("got %v", err)
	}
	err = e.Execute([]string{"a"})
	if err == nil || !strings.Contains(err.Error(), "got nothing") {
		t.Fatalf("got %v", err)
	}
}

func TestOptionalArg(t *testing.T) {
	e := NewExecutor()
	var got *int
	e.Define("opt", Func(func(i *int) {
		got = i
	}))
	if err := e.Execute([]string{"opt"}); err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("got %v", *got)
	}
	if err := e.Execute([]string{"opt", "3"}); err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != 3 {
		t.Fatal("expected 3")
	}
}

func TestCommandError(t *testing.T) {
	e := NewExecutor()
	boom := errors.New("boom")
	e.Define("fail", Func(func() error {
		return boom
	}))
	if err := e.Execute([]string{"fail"}); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}

func TestUsage(t *testing.T) {
	e := NewExecutor()
	e.Define("-depth", Func(func(int) {}).Desc("stack depth"))
	buf := new(bytes.Buffer)
	e.PrintUsage(buf)
	if !strings.Contains(buf.String(), "-depth <int>") ||
		!strings.Contains(buf.String(), "stack depth") {
		t.Fatalf("got %s", buf.String())
	}
}

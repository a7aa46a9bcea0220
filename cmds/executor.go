package cmds

import (
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/reusee/palforth/vars"
)

type Executor struct {
	commands map[string]*Command
	names    []string
}

func NewExecutor() *Executor {
	e := &Executor{
		commands: make(map[string]*Command),
	}
	e.Define("-h", Func(func() {
		e.PrintUsage(os.Stdout)
		os.Exit(0)
	}).Desc("print this usage").Alias("-help", "--help"))
	return e
}

func (e *Executor) Define(name string, command *Command) {
	for _, n := range append([]string{name}, command.Aliases...) {
		if _, ok := e.commands[n]; ok {
			panic(fmt.Errorf("duplicated command %s", n))
		}
		e.commands[n] = command
	}
	e.names = append(e.names, name)
}

func (e *Executor) Execute(args []string) error {
	for len(args) > 0 {
		name := strings.TrimSpace(args[0])
		args = args[1:]
		command, ok := e.commands[name]
		if !ok {
			return fmt.Errorf("unknown command: %s", name)
		}
		n := min(command.numArgs(), len(args))
		if err := command.call(args[:n]); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		args = args[n:]
	}
	return nil
}

func (e *Executor) PrintUsage(w io.Writer) {
	names := slices.Clone(e.names)
	slices.Sort(names)
	for _, name := range names {
		command := e.commands[name]
		line := name
		for i := range command.numArgs() {
			line += " <" + command.fn.Type().In(i).String() + ">"
		}
		if len(command.Aliases) > 0 {
			line += " (" + strings.Join(command.Aliases, ", ") + ")"
		}
		fmt.Fprintf(w, "%-32s %s\n", line, command.Description)
	}
}

func parseArg(t reflect.Type, arg *string) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer {
		if arg == nil {
			return reflect.Zero(t), nil
		}
		elem, err := parseArg(t.Elem(), arg)
		if err != nil {
			return reflect.Value{}, err
		}
		ptr := reflect.New(t.Elem())
		ptr.Elem().Set(elem)
		return ptr, nil
	}
	if arg == nil {
		return reflect.Value{}, fmt.Errorf("expecting %v argument, got nothing", t)
	}
	str := *arg

	v := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		v.SetBool(vars.StrToBool(str))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(str, 0, t.Bits())
		if err != nil {
			return v, fmt.Errorf("convert %s to %v: %w", str, t, err)
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(str, 0, t.Bits())
		if err != nil {
			return v, fmt.Errorf("convert %s to %v: %w", str, t, err)
		}
		v.SetUint(u)
	case reflect.String:
		v.SetString(str)
	default:
		return v, fmt.Errorf("unsupported type: %v", t)
	}
	return v, nil
}

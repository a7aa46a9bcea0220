package cmds

import (
	"fmt"
	"reflect"
)

// Command is a function taking its parameters from the words following its name.
type Command struct {
	fn          reflect.Value
	Description string
	Aliases     []string
}

var errorType = reflect.TypeFor[error]()

func Func(fn any) *Command {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		panic(fmt.Errorf("must be function, got %T", fn))
	}
	switch t := v.Type(); t.NumOut() {
	case 0:
	case 1:
		if t.Out(0) != errorType {
			panic(fmt.Errorf("must return error, got %v", t.Out(0)))
		}
	default:
		panic(fmt.Errorf("must return at most one value"))
	}
	return &Command{
		fn: v,
	}
}

func (c *Command) Desc(desc string) *Command {
	c.Description = desc
	return c
}

func (c *Command) Alias(names ...string) *Command {
	c.Aliases = append(c.Aliases, names...)
	return c
}

func (c *Command) numArgs() int {
	return c.fn.Type().NumIn()
}

func (c *Command) call(args []string) error {
	t := c.fn.Type()
	in := make([]reflect.Value, t.NumIn())
	for i := range in {
		var arg *string
		if i < len(args) {
			arg = &args[i]
		}
		v, err := parseArg(t.In(i), arg)
		if err != nil {
			return err
		}
		in[i] = v
	}
	out := c.fn.Call(in)
	if len(out) == 1 && !out[0].IsNil() {
		return out[0].Interface().(error)
	}
	return nil
}

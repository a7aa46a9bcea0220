package palvm

import (
	"io"
	"os"
	"testing"

	"github.com/reusee/dscope"
	"github.com/reusee/palforth/logs"
)

type Module struct {
	dscope.Module
}

type Stdout io.Writer

func (Module) Stdout() Stdout {
	return os.Stdout
}

type Exit func(code int)

func (Module) Exit(
	t *testing.T,
) Exit {
	if t != nil {
		return func(code int) {
			t.Logf("exit %d", code)
		}
	}
	return os.Exit
}

func (Module) Dictionary() *Dictionary {
	return NewDictionary(nil)
}

type New func() (*VM, error)

func (Module) New(
	config Config,
	logger logs.Logger,
	stdout Stdout,
	exit Exit,
	dict *Dictionary,
) New {
	return func() (*VM, error) {
		return NewVM(config, &Options{
			Logger:     logger,
			Stdout:     stdout,
			Exit:       exit,
			Dictionary: dict,
		})
	}
}

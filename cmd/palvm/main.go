package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/reusee/dscope"
	"github.com/reusee/e5"
	"github.com/reusee/palforth/cmds"
	"github.com/reusee/palforth/debugs"
	"github.com/reusee/palforth/images"
	"github.com/reusee/palforth/logs"
	"github.com/reusee/palforth/modes"
	"github.com/reusee/palforth/palconfigs"
	"github.com/reusee/palforth/palvm"
	"golang.org/x/term"
)

var (
	fileFlag     = cmds.Var[string]("-file")
	entryFlag    = cmds.Var[string]("-entry")
	pushFlag     = cmds.Collect[int64]("-push")
	tapFlag      = cmds.Switch("-tap")
	workersFlag  = cmds.Var[int]("-workers")
	parallelFlag = cmds.Var[int]("-parallel")
	gobFlag      = cmds.Var[string]("-gob")
	executeFlag  = cmds.Switch("-execute")
)

var wrap = e5.Wrap.With(e5.WrapStacktrace)

func main() {
	cmds.Execute(os.Args[1:])
	ctx := context.Background()

	scope, err := palconfigs.Fork(dscope.New(
		new(Module),
		modes.ForProduction(),
	))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scope.Call(func(
		logger logs.Logger,
		runJob RunJob,
		tap debugs.Tap,
		stdout palvm.Stdout,
	) {

		img, err := loadImage()
		if err != nil {
			logger.ErrorContext(ctx, "load image", "error", err)
			os.Exit(1)
		}

		if *gobFlag != "" {
			if err := writeGob(*gobFlag, img); err != nil {
				logger.ErrorContext(ctx, "write gob", "error", err)
				os.Exit(1)
			}
		}

		results, err := runJob(ctx, Job{
			Image:    img,
			Push:     *pushFlag,
			Workers:  *workersFlag,
			Parallel: *parallelFlag,
			Execute:  *executeFlag,
		})
		if err != nil {
			logger.ErrorContext(ctx, "run", "error", err)
			os.Exit(1)
		}

		status := 0
		for i, result := range results {
			if len(results) > 1 {
				fmt.Fprintf(stdout, "worker %d\n", i)
			}
			if result.Fault == nil {
				PrintParams(stdout, result.VM)
				continue
			}
			var fault *palvm.Fault
			if errors.As(result.Fault, &fault) && status == 0 {
				status = int(fault.Errno)
			}
			if *tapFlag {
				tap(ctx, "fault", result.VM, result.Fault)
			}
		}
		os.Exit(status)

	})
}

func loadImage() (*images.Image, error) {
	var img *images.Image
	var err error
	switch {
	case *fileFlag != "":
		img, err = images.Load(*fileFlag)
	case !term.IsTerminal(int(os.Stdin.Fd())):
		img, err = images.Decode(os.Stdin)
	default:
		return nil, errors.New("no program: use -file or pipe a gob image")
	}
	if err != nil {
		return nil, err
	}
	if *entryFlag != "" {
		img.Entry = *entryFlag
		if err := img.Check(); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func writeGob(path string, img *images.Image) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return wrap(err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = wrap(e)
		}
	}()
	return images.Encode(f, img)
}

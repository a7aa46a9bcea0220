package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/reusee/palforth/images"
	"github.com/reusee/palforth/logs"
	"github.com/reusee/palforth/palvm"
	"github.com/reusee/palforth/syncs"
)

type Job struct {
	Image    *images.Image
	Push     []int64
	Workers  int
	Parallel int  // workers running at once, GOMAXPROCS if zero
	Execute  bool // threaded engine instead of Run
}

type Result struct {
	VM    *palvm.VM
	Fault error
}

type RunJob func(ctx context.Context, job Job) ([]Result, error)

func (Module) RunJob(
	newVM palvm.New,
	dict *palvm.Dictionary,
	logger logs.Logger,
	newRun logs.NewRun,
) RunJob {
	return func(ctx context.Context, job Job) ([]Result, error) {
		workers := max(job.Workers, 1)
		parallel := job.Parallel
		if parallel <= 0 {
			parallel = runtime.GOMAXPROCS(0)
		}

		// each worker owns its boxes, so every worker links its own program
		progs := make([]*images.Program, workers)
		for i := range progs {
			prog, err := images.Link(job.Image, dict)
			if err != nil {
				return nil, err
			}
			progs[i] = prog
		}
		dict.Freeze()
		logger.InfoContext(ctx, "linked",
			"workers", workers,
			"parallel", parallel,
			"dictionary bytes", dict.Size(),
		)

		results := make([]Result, workers)
		for i := range results {
			vm, err := newVM()
			if err != nil {
				return nil, err
			}
			results[i].VM = vm
		}

		sem := syncs.NewSemaphore(parallel)
		var wg sync.WaitGroup
		defer wg.Wait()
		for i, prog := range progs {
			vm := results[i].VM
			wg.Add(1)
			if err := sem.Go(ctx, func() {
				defer wg.Done()
				ctx, _ := newRun(ctx, fmt.Sprintf("worker %d", i))
				fault := vm.Try(func() {
					for _, v := range job.Push {
						addr, err := vm.AllocInt(v)
						if err != nil {
							vm.PanicErr(palvm.OutOfMemory, err)
						}
						vm.Push(addr)
					}
					if job.Execute {
						vm.Execute(prog.Entry)
					} else {
						vm.Run(prog.Entry)
					}
				})
				if fault != nil {
					results[i].Fault = logs.WrapRun(ctx, fault)
					logger.ErrorContext(ctx, "fault",
						"error", fault,
					)
				}
			}); err != nil {
				wg.Done()
				return nil, err
			}
		}

		return results, nil
	}
}

// PrintParams writes the live parameter stack, top first, with the integer
// each address holds.
func PrintParams(w io.Writer, vm *palvm.VM) {
	for i, addr := range vm.Params() {
		var value any = "-"
		if err := vm.Try(func() {
			value = vm.ReadInt(addr)
		}); err != nil {
			value = "?"
		}
		fmt.Fprintf(w, "%d\t%#016x\t%v\n", i, uint64(addr), value)
	}
}

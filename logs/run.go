package logs

import (
	"context"
	"crypto/rand"
)

// Run identifies one execution of a program, possibly nested in another.
type Run string

type runKey struct{}

func RunOf(ctx context.Context) (Run, bool) {
	run, ok := ctx.Value(runKey{}).(Run)
	return run, ok
}

type NewRun func(ctx context.Context, what string) (context.Context, Run)

func (Module) NewRun(
	logger Logger,
) NewRun {
	return func(ctx context.Context, what string) (context.Context, Run) {
		parent, hasParent := RunOf(ctx)
		run := Run(rand.Text()[:12])
		ctx = context.WithValue(ctx, runKey{}, run)
		args := []any{"what", what}
		if hasParent {
			args = append(args, "parent", parent)
		}
		logger.DebugContext(ctx, "new run", args...)
		return ctx, run
	}
}

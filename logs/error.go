package logs

import (
	"context"
	"errors"
	"fmt"
)

// WrapRun annotates err with the run carried by ctx.
func WrapRun(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	run, ok := RunOf(ctx)
	if !ok {
		return err
	}
	return errors.Join(err, fmt.Errorf("run: %s", run))
}

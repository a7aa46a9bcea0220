package syncs

import "context"

// Semaphore bounds the number of concurrently held slots.
type Semaphore chan struct{}

func NewSemaphore(n int) Semaphore {
	return make(Semaphore, max(n, 1))
}

// Acquire blocks until a slot is free or ctx is done.
func (s Semaphore) Acquire(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

func (s Semaphore) Release() {
	<-s
}

// Go runs fn in a new goroutine once a slot is acquired, and releases the
// slot when fn returns. It returns without running fn if ctx is done first.
func (s Semaphore) Go(ctx context.Context, fn func()) error {
	if err := s.Acquire(ctx); err != nil {
		return err
	}
	go func() {
		defer s.Release()
		fn()
	}()
	return nil
}

package arenas

import (
	"errors"
	"fmt"
	"iter"
)

var ErrOutOfMemory = errors.New("out of memory")

// Allocator obtains a zeroed block from the host.
type Allocator func(size int) ([]byte, error)

func HostAllocator(size int) ([]byte, error) {
	return make([]byte, size), nil
}

type Options struct {
	Allocator Allocator // if nil, HostAllocator
	Limit     int       // total bytes the arena may hold, 0 for no limit
}

// Arena owns a set of independently allocated blocks that are released together.
type Arena struct {
	alloc  Allocator
	limit  int
	size   int
	blocks [][]byte
}

func New(options *Options) *Arena {
	a := &Arena{
		alloc: HostAllocator,
	}
	if options != nil {
		if options.Allocator != nil {
			a.alloc = options.Allocator
		}
		a.limit = options.Limit
	}
	return a
}

// Alloc returns a new block of size bytes and its index in the arena.
// On failure nothing is recorded.
func (a *Arena) Alloc(size int) (int, []byte, error) {
	if size < 0 {
		return 0, nil, fmt.Errorf("%w: negative size %d", ErrOutOfMemory, size)
	}
	if a.limit > 0 && a.size+size > a.limit {
		return 0, nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrOutOfMemory, size, a.size, a.limit)
	}
	block, err := a.alloc(size)
	if err != nil {
		return 0, nil, errors.Join(ErrOutOfMemory, err)
	}
	if len(block) < size {
		return 0, nil, fmt.Errorf("%w: allocator returned %d bytes, want %d", ErrOutOfMemory, len(block), size)
	}
	block = block[:size:size]
	a.blocks = append(a.blocks, block)
	a.size += size
	return len(a.blocks) - 1, block, nil
}

// Block returns the i-th live block, or nil.
func (a *Arena) Block(i int) []byte {
	if i < 0 || i >= len(a.blocks) {
		return nil
	}
	return a.blocks[i]
}

func (a *Arena) Len() int {
	return len(a.blocks)
}

// Size is the total number of bytes held.
func (a *Arena) Size() int {
	return a.size
}

func (a *Arena) Blocks() iter.Seq2[int, []byte] {
	return func(yield func(int, []byte) bool) {
		for i, block := range a.blocks {
			if !yield(i, block) {
				return
			}
		}
	}
}

// Release drops every block. Blocks returned before are no longer owned by the arena.
func (a *Arena) Release() {
	clear(a.blocks)
	a.blocks = a.blocks[:0]
	a.size = 0
}

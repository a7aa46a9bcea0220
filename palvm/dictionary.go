package palvm

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/reusee/palforth/arenas"
	"github.com/reusee/palforth/stacks"
)

var ErrFrozen = errors.New("dictionary frozen")

var dictionarySegments = uint64(^uint32(0)-SegDictionary) + 1

// Dictionary is long-lived memory shared by VMs. It is populated by one
// goroutine, then frozen; frozen memory is read-only and needs no locking.
type Dictionary struct {
	mu     sync.Mutex
	arena  *arenas.Arena
	links  []*Code
	frozen atomic.Bool
}

func NewDictionary(options *arenas.Options) *Dictionary {
	return &Dictionary{
		arena: arenas.New(options),
	}
}

func (d *Dictionary) Alloc(size int) (Word, []byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frozen.Load() {
		return 0, nil, ErrFrozen
	}
	if uint64(d.arena.Len()) >= dictionarySegments {
		return 0, nil, fmt.Errorf("%w: dictionary segments exhausted", arenas.ErrOutOfMemory)
	}
	i, block, err := d.arena.Alloc(size)
	if err != nil {
		return 0, nil, err
	}
	return MakeAddr(SegDictionary+uint32(i), 0), block, nil
}

// Cell allocates one word holding w.
func (d *Dictionary) Cell(w Word) (Word, error) {
	addr, block, err := d.Alloc(stacks.WordSize)
	if err != nil {
		return 0, err
	}
	for i := range stacks.WordSize {
		block[i] = byte(w >> (8 * i))
	}
	return addr, nil
}

// Link registers code and returns its handle for call_dyn.
func (d *Dictionary) Link(code *Code) (Word, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.frozen.Load() {
		return 0, ErrFrozen
	}
	d.links = append(d.links, code)
	return MakeAddr(SegWords, uint32(len(d.links)-1)), nil
}

func (d *Dictionary) Freeze() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frozen.Store(true)
}

func (d *Dictionary) Frozen() bool {
	return d.frozen.Load()
}

func (d *Dictionary) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.arena.Size()
}

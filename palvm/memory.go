package palvm

import (
	"encoding/binary"
	"fmt"

	"github.com/reusee/palforth/stacks"
)

type Word = stacks.Word

// Address segments. An address is seg<<32 | byte offset.
const (
	SegNull       uint32 = 0
	SegParams     uint32 = 1
	SegData       uint32 = 2
	SegScratch    uint32 = 16
	SegLinked     uint32 = 1<<31 - 2 // code handles linked into a VM
	SegWords      uint32 = 1<<31 - 1 // code handles linked into a Dictionary
	SegDictionary uint32 = 1 << 31
)

func MakeAddr(seg, offset uint32) Word {
	return Word(seg)<<32 | Word(offset)
}

func SplitAddr(addr Word) (seg, offset uint32) {
	return uint32(addr >> 32), uint32(addr)
}

// memory returns the n bytes at addr.
func (vm *VM) memory(addr Word, n int, write bool) []byte {
	seg, offset := SplitAddr(addr)
	var block []byte
	switch {
	case seg == SegParams:
		block = vm.params.Bytes()
	case seg == SegData:
		block = vm.data.Bytes()
	case seg >= SegScratch && seg < SegLinked:
		block = vm.scratch.Block(int(seg - SegScratch))
	case seg >= SegDictionary:
		if vm.dict == nil {
			break
		}
		if write && vm.dict.Frozen() {
			vm.PanicErr(IllegalAddress, fmt.Errorf("write to frozen dictionary at %#x", uint64(addr)))
		}
		block = vm.dict.arena.Block(int(seg - SegDictionary))
	}
	end := uint64(offset) + uint64(n)
	if block == nil || end > uint64(len(block)) {
		vm.PanicErr(IllegalAddress, fmt.Errorf("%d bytes at %#x", n, uint64(addr)))
	}
	return block[offset:end]
}

func (vm *VM) ReadWord(addr Word) Word {
	return Word(binary.LittleEndian.Uint64(vm.memory(addr, stacks.WordSize, false)))
}

func (vm *VM) WriteWord(addr Word, w Word) {
	binary.LittleEndian.PutUint64(vm.memory(addr, stacks.WordSize, true), uint64(w))
}

// ReadInt reads an IntBytes wide integer, sign-extended.
func (vm *VM) ReadInt(addr Word) int64 {
	n := vm.config.IntBytes
	b := vm.memory(addr, n, false)
	if n == stacks.WordSize && addr%stacks.WordSize == 0 {
		return int64(binary.LittleEndian.Uint64(b))
	}
	var v uint64
	for i := n - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	shift := 64 - 8*n
	return int64(v<<shift) >> shift
}

// WriteInt stores the low IntBytes bytes of v.
func (vm *VM) WriteInt(addr Word, v int64) {
	n := vm.config.IntBytes
	b := vm.memory(addr, n, true)
	if n == stacks.WordSize && addr%stacks.WordSize == 0 {
		binary.LittleEndian.PutUint64(b, uint64(v))
		return
	}
	for i := range n {
		b[i] = byte(v >> (8 * i))
	}
}

func (vm *VM) ReadBool(addr Word) bool {
	return vm.ReadWord(addr) != 0
}

func (vm *VM) WriteBool(addr Word, v bool) {
	var w Word
	if v {
		w = 1
	}
	vm.WriteWord(addr, w)
}

// Read returns a copy of the n bytes at addr.
func (vm *VM) Read(addr Word, n int) []byte {
	return append([]byte(nil), vm.memory(addr, n, false)...)
}

// Alloc obtains a scratch block and returns its address.
func (vm *VM) Alloc(size int) (Word, []byte, error) {
	if vm.scratch.Len() >= int(SegLinked-SegScratch) {
		return 0, nil, fmt.Errorf("%w: scratch segments exhausted", OutOfMemory)
	}
	i, block, err := vm.scratch.Alloc(size)
	if err != nil {
		return 0, nil, err
	}
	return MakeAddr(SegScratch+uint32(i), 0), block, nil
}

// AllocInt allocates a scratch cell holding v.
func (vm *VM) AllocInt(v int64) (Word, error) {
	addr, _, err := vm.Alloc(stacks.WordSize)
	if err != nil {
		return 0, err
	}
	vm.WriteInt(addr, v)
	return addr, nil
}

// ReleaseScratch frees every scratch block. Scratch addresses are invalid afterwards.
func (vm *VM) ReleaseScratch() {
	vm.scratch.Release()
}

// LocalAddr is the address of data stack slot i below the top.
func (vm *VM) LocalAddr(i int) Word {
	idx, err := vm.data.Spot(i)
	if err != nil {
		vm.stackFault(err)
	}
	return MakeAddr(SegData, uint32(idx*stacks.WordSize))
}

// Link registers code in the VM and returns its handle for call_dyn.
func (vm *VM) Link(code *Code) Word {
	vm.links = append(vm.links, code)
	return MakeAddr(SegLinked, uint32(len(vm.links)-1))
}

func (vm *VM) linked(handle Word) *Code {
	seg, i := SplitAddr(handle)
	var links []*Code
	switch seg {
	case SegLinked:
		links = vm.links
	case SegWords:
		if vm.dict != nil {
			links = vm.dict.links
		}
	}
	if int(i) >= len(links) {
		vm.PanicErr(IllegalAddress, fmt.Errorf("bad code handle %#x", uint64(handle)))
	}
	return links[i]
}

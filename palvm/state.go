package palvm

import (
	"encoding/gob"
	"fmt"
	"io"
)

// State is a copy of the memory owned by a VM.
type State struct {
	Params  []Word // top first
	Data    []Word // top first
	Scratch [][]byte
}

func (vm *VM) State() State {
	state := State{
		Params: liveWords(&vm.params),
		Data:   liveWords(&vm.data),
	}
	for _, block := range vm.scratch.Blocks() {
		state.Scratch = append(state.Scratch, append([]byte(nil), block...))
	}
	return state
}

func (vm *VM) Snapshot(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(vm.State()); err != nil {
		return err
	}
	return nil
}

// Restore replaces stacks and scratch memory with a snapshot.
func (vm *VM) Restore(r io.Reader) error {
	var state State
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return err
	}
	if len(state.Params) > vm.params.Cap() || len(state.Data) > vm.data.Cap() {
		return fmt.Errorf("%w: snapshot does not fit stacks", ErrBadConfig)
	}

	vm.ReleaseScratch()
	for _, block := range state.Scratch {
		_, b, err := vm.scratch.Alloc(len(block))
		if err != nil {
			return err
		}
		copy(b, block)
	}

	vm.Reset()
	for i := len(state.Params) - 1; i >= 0; i-- {
		if err := vm.params.Push(state.Params[i]); err != nil {
			return err
		}
	}
	for i := len(state.Data) - 1; i >= 0; i-- {
		if err := vm.data.Push(state.Data[i]); err != nil {
			return err
		}
	}
	return nil
}

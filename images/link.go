package images

import (
	"fmt"

	"github.com/reusee/palforth/borrows"
	"github.com/reusee/palforth/palvm"
	"github.com/reusee/palforth/stacks"
)

// Program is an image linked against a dictionary.
type Program struct {
	Entry *palvm.Code
	Words map[string]*palvm.Code
	Boxes map[string]*borrows.Box
}

type linker struct {
	img     *Image
	dict    *palvm.Dictionary
	prog    *Program
	state   map[string]int // 1 linking, 2 linked
	handles map[string]stacks.Word
}

// Link builds the code of every word. Constants and code handles are
// allocated in dict, which must not be frozen yet. Boxes belong to the
// program; VMs running concurrently need programs linked separately.
func Link(img *Image, dict *palvm.Dictionary) (*Program, error) {
	if err := img.Check(); err != nil {
		return nil, err
	}
	l := &linker{
		img:  img,
		dict: dict,
		prog: &Program{
			Words: make(map[string]*palvm.Code, len(img.Words)),
			Boxes: make(map[string]*borrows.Box, len(img.Boxes)),
		},
		state:   make(map[string]int),
		handles: make(map[string]stacks.Word),
	}

	for name, box := range img.Boxes {
		perm, _ := borrows.ParsePerm(box.Perm)
		l.prog.Boxes[name] = borrows.NewBox(perm, box.Offset)
	}
	for name := range img.Words {
		l.prog.Words[name] = &palvm.Code{
			Op: palvm.OpCompound,
		}
	}
	for name := range img.Words {
		if err := l.linkWord(name); err != nil {
			return nil, err
		}
	}
	l.prog.Entry = l.prog.Words[img.Entry]

	return l.prog, nil
}

func (l *linker) linkWord(name string) error {
	switch l.state[name] {
	case 1:
		return fmt.Errorf("%w: %s", ErrRecursiveCall, name)
	case 2:
		return nil
	}
	l.state[name] = 1
	seq, err := l.linkSeq(l.img.Words[name])
	if err != nil {
		return fmt.Errorf("word %s: %w", name, err)
	}
	l.prog.Words[name].Seq = seq
	l.state[name] = 2
	return nil
}

func (l *linker) linkSeq(nodes []Node) ([]palvm.Code, error) {
	seq := make([]palvm.Code, 0, len(nodes))
	for _, node := range nodes {
		code, err := l.linkNode(node)
		if err != nil {
			return nil, err
		}
		seq = append(seq, code)
	}
	return seq, nil
}

func (l *linker) linkNode(node Node) (palvm.Code, error) {
	switch node.Op {

	case "call":
		if err := l.linkWord(node.Word); err != nil {
			return palvm.Code{}, err
		}
		return *l.prog.Words[node.Word], nil

	case "const":
		cell, err := l.dict.Cell(stacks.Word(node.Arg))
		if err != nil {
			return palvm.Code{}, err
		}
		return palvm.OpPushVar.With(int64(cell)), nil

	case "code":
		handle, ok := l.handles[node.Word]
		if !ok {
			var err error
			handle, err = l.dict.Link(l.prog.Words[node.Word])
			if err != nil {
				return palvm.Code{}, err
			}
			l.handles[node.Word] = handle
		}
		cell, err := l.dict.Cell(handle)
		if err != nil {
			return palvm.Code{}, err
		}
		return palvm.OpPushVar.With(int64(cell)), nil

	case "compound":
		seq, err := l.linkSeq(node.Seq)
		if err != nil {
			return palvm.Code{}, err
		}
		return palvm.Compound(seq...), nil

	case "const_print":
		return palvm.Print(node.Text), nil

	case "acquire", "release":
		perm, _ := borrows.ParsePerm(node.Perm)
		box := l.prog.Boxes[node.Box]
		if node.Op == "acquire" {
			return palvm.Acquire(box, perm), nil
		}
		return palvm.Release(box, perm), nil

	}

	op, ok := palvm.ParseOp(node.Op)
	if !ok {
		return palvm.Code{}, fmt.Errorf("%w: %q", ErrUnknownOp, node.Op)
	}
	return op.With(node.Arg), nil
}

package images

import (
	"errors"
	"fmt"

	"github.com/reusee/palforth/borrows"
	"github.com/reusee/palforth/palvm"
	"github.com/reusee/palforth/utf8s"
)

var (
	ErrUnknownFormat = errors.New("unknown image format")
	ErrUnknownOp     = errors.New("unknown op")
	ErrUnknownWord   = errors.New("unknown word")
	ErrUnknownBox    = errors.New("unknown box")
	ErrBadPerm       = errors.New("bad permission")
	ErrBadText       = errors.New("print text is not valid utf-8")
	ErrRecursiveCall = errors.New("recursive call")
)

// Check reports references that cannot be linked.
func (img *Image) Check() error {
	if _, ok := img.Words[img.Entry]; !ok {
		return fmt.Errorf("%w: entry %q", ErrUnknownWord, img.Entry)
	}
	for name, box := range img.Boxes {
		if _, ok := borrows.ParsePerm(box.Perm); !ok {
			return fmt.Errorf("%w: box %s: %q", ErrBadPerm, name, box.Perm)
		}
	}
	for name, seq := range img.Words {
		if err := img.checkSeq(seq); err != nil {
			return fmt.Errorf("word %s: %w", name, err)
		}
	}
	return nil
}

func (img *Image) checkSeq(seq []Node) error {
	for i, node := range seq {
		if err := img.checkNode(node); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
	}
	return nil
}

func (img *Image) checkNode(node Node) error {
	switch node.Op {
	case "call", "code":
		if _, ok := img.Words[node.Word]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownWord, node.Word)
		}
		return nil
	case "const":
		return nil
	case "compound":
		return img.checkSeq(node.Seq)
	case "const_print":
		if offset, err := utf8s.Check([]byte(node.Text)); err != nil {
			return fmt.Errorf("%w: at byte %d", ErrBadText, offset)
		}
		return nil
	case "acquire", "release":
		if _, ok := img.Boxes[node.Box]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownBox, node.Box)
		}
		if _, ok := borrows.ParsePerm(node.Perm); !ok {
			return fmt.Errorf("%w: %q", ErrBadPerm, node.Perm)
		}
		return nil
	}
	if _, ok := palvm.ParseOp(node.Op); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownOp, node.Op)
	}
	return nil
}

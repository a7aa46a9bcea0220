package borrows

import (
	"errors"
	"strings"
)

var (
	ErrBadSignature    = errors.New("bad signature")
	ErrAlreadyBorrowed = errors.New("already borrowed")
)

// SignatureError describes a requested signature the box does not grant.
type SignatureError struct {
	Have Perm
	Want Perm
}

func (e *SignatureError) Error() string {
	var b strings.Builder
	b.WriteString("signature mismatch:")
	for _, p := range []Perm{Read, Write, Unique} {
		if e.Want&p != 0 && e.Have&p == 0 {
			b.WriteString(" expected " + p.String() + " access, but it's missing;")
		}
	}
	if e.Want&Output != e.Have&Output {
		expected, actual := "input", "input"
		if e.Want&Output != 0 {
			expected = "output"
		}
		if e.Have&Output != 0 {
			actual = "output"
		}
		b.WriteString(" expected " + expected + ", but got " + actual + ";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (e *SignatureError) Is(target error) bool {
	return target == ErrBadSignature
}

// BorrowError reports an aliasing conflict.
type BorrowError struct {
	Box        *Box
	Want       Perm
	NeedUnique bool
}

func (e *BorrowError) Error() string {
	if e.NeedUnique {
		return "cannot borrow uniquely: value has outstanding shared borrows"
	}
	return "cannot borrow: value is uniquely borrowed"
}

func (e *BorrowError) Is(target error) bool {
	return target == ErrAlreadyBorrowed
}

package stacks

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

type Word uint64

const WordSize = 8

var (
	ErrOverflow  = errors.New("stack overflow")
	ErrUnderflow = errors.New("stack underflow")
)

// Stack is a down-growing region of words laid over a byte buffer.
//
//	low              cur             high
//	 |  ...free...    | x x x x x x x  |
//
// Slots [cur, high) are live, the top is at cur. Allocating moves cur
// toward low, freeing moves it back toward high.
type Stack struct {
	buf  []byte
	low  int
	high int
	cur  int

	UncheckedOverflow  bool
	UncheckedUnderflow bool
}

// New returns an empty stack covering exactly n words of buf.
func New(buf []byte, n int) Stack {
	if n < 0 || n*WordSize > len(buf) {
		panic(fmt.Errorf("buffer of %d bytes cannot hold %d words", len(buf), n))
	}
	return Stack{
		buf:  buf[:n*WordSize],
		low:  0,
		high: n,
		cur:  n,
	}
}

func Make(n int) Stack {
	return New(make([]byte, n*WordSize), n)
}

// Alloc reserves n slots and returns the new cursor.
// The cursor is left untouched on failure.
func (s *Stack) Alloc(n int) (int, error) {
	if n < 0 {
		if n == math.MinInt {
			return s.cur, ErrUnderflow
		}
		return s.Free(-n)
	}
	if !s.UncheckedOverflow && n > s.cur-s.low {
		return s.cur, ErrOverflow
	}
	s.cur -= n
	return s.cur, nil
}

// Free releases n slots and returns the cursor before the release,
// which addresses the first released slot.
func (s *Stack) Free(n int) (int, error) {
	if n < 0 {
		if n == math.MinInt {
			return s.cur, ErrOverflow
		}
		return s.Alloc(-n)
	}
	if !s.UncheckedUnderflow && n > s.high-s.cur {
		return s.cur, ErrUnderflow
	}
	old := s.cur
	s.cur += n
	return old, nil
}

func (s *Stack) Push(w Word) error {
	i, err := s.Alloc(1)
	if err != nil {
		return err
	}
	s.Set(i, w)
	return nil
}

func (s *Stack) Pop() (Word, error) {
	i, err := s.Free(1)
	if err != nil {
		return 0, err
	}
	return s.Get(i), nil
}

// Spot returns the slot index n positions below the top; 0 is the top.
func (s *Stack) Spot(n int) (int, error) {
	if !s.UncheckedUnderflow && (n < 0 || n >= s.high-s.cur) {
		return 0, ErrUnderflow
	}
	return s.cur + n, nil
}

func (s *Stack) Peek(n int) (Word, error) {
	i, err := s.Spot(n)
	if err != nil {
		return 0, err
	}
	return s.Get(i), nil
}

func (s *Stack) Get(i int) Word {
	return Word(binary.LittleEndian.Uint64(s.buf[i*WordSize:]))
}

func (s *Stack) Set(i int, w Word) {
	binary.LittleEndian.PutUint64(s.buf[i*WordSize:], uint64(w))
}

// Len is the number of live slots.
func (s *Stack) Len() int {
	return s.high - s.cur
}

// Room is the number of slots that can still be allocated.
func (s *Stack) Room() int {
	return s.cur - s.low
}

func (s *Stack) Cap() int {
	return s.high - s.low
}

func (s *Stack) Cursor() int {
	return s.cur
}

func (s *Stack) Bounds() (low, high int) {
	return s.low, s.high
}

// Bytes exposes the backing buffer, for addressing slots by byte offset.
func (s *Stack) Bytes() []byte {
	return s.buf
}

func (s *Stack) Reset() {
	s.cur = s.high
}

// Words returns the live words, top first.
func (s *Stack) Words() []Word {
	ret := make([]Word, 0, s.Len())
	for i := s.cur; i < s.high; i++ {
		ret = append(ret, s.Get(i))
	}
	return ret
}

type CheckPoint int

func (s *Stack) CheckPoint() CheckPoint {
	return CheckPoint(s.cur)
}

func (s *Stack) Restore(c CheckPoint) {
	s.cur = int(c)
}

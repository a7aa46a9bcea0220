package utf8s

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"testing"
	"unicode/utf8"
)

func TestLeadLen(t *testing.T) {
	for _, c := range []struct {
		b    byte
		want int
	}{
		{'a', 1},
		{0x7f, 1},
		{0x80, 0},
		{0xbf, 0},
		{0xc3, 2},
		{0xe4, 3},
		{0xf0, 4},
		{0xf8, 0},
		{0xff, 0},
	} {
		if got := LeadLen(c.b); got != c.want {
			t.Fatalf("%#x: got %d", c.b, got)
		}
	}
}

func TestDecode(t *testing.T) {
	for _, c := range []struct {
		in   []byte
		want rune
		ok   bool
	}{
		{[]byte("a"), 'a', true},
		{[]byte("é"), 'é', true},
		{[]byte("世"), '世', true},
		{[]byte("😀"), '😀', true},
		{[]byte{0xc0, 0xaf}, 0, false},             // overlong '/'
		{[]byte{0xe0, 0x80, 0xaf}, 0, false},       // overlong
		{[]byte{0xf0, 0x80, 0x80, 0xaf}, 0, false}, // overlong
		{[]byte{0xed, 0xa0, 0x80}, 0, false},       // surrogate
		{[]byte{0xf4, 0x90, 0x80, 0x80}, 0, false}, // above U+10FFFF
		{[]byte{0xc3, 0x28}, 0, false},
		{[]byte{0xc3}, 0, false},
		{nil, 0, false},
	} {
		r, ok := Decode(c.in)
		if ok != c.ok || (ok && r != c.want) {
			t.Fatalf("%x: got %q %v", c.in, r, ok)
		}
	}
}

func TestCheck(t *testing.T) {
	if n, err := Check([]byte("hello, 世界")); err != nil || n != len("hello, 世界") {
		t.Fatalf("got %d %v", n, err)
	}
	n, err := Check([]byte("ab\xed\xa0\x80cd"))
	if !errors.Is(err, ErrInvalid) || n != 2 {
		t.Fatalf("got %d %v", n, err)
	}
	if Valid([]byte("ab\xe4\xb8")) {
		t.Fatal("truncated input is valid")
	}
}

func TestValidAgreesWithStdlib(t *testing.T) {
	buf := make([]byte, 8)
	for range 100000 {
		for i := range buf {
			buf[i] = byte(rand.IntN(256))
		}
		if got, want := Valid(buf), utf8.Valid(buf); got != want {
			t.Fatalf("%x: got %v, want %v", buf, got, want)
		}
	}
}

func TestGetPut(t *testing.T) {
	r := bytes.NewReader([]byte("a世😀"))
	var buf []byte
	var err error
	for {
		buf, err = Get(r, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
	}
	if string(buf) != "a世😀" {
		t.Fatalf("got %q", buf)
	}

	if _, err := Get(bytes.NewReader([]byte{0xe4, 0xb8}), nil); !errors.Is(err, ErrInvalid) {
		t.Fatalf("got %v", err)
	}

	out := new(bytes.Buffer)
	n, err := Put(out, []byte("世界"))
	if err != nil || n != 3 || out.String() != "世" {
		t.Fatalf("got %d %v %q", n, err, out.String())
	}
	if _, err := Put(out, []byte{0xff}); !errors.Is(err, ErrInvalid) {
		t.Fatalf("got %v", err)
	}
}

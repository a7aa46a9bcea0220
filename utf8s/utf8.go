// Package utf8s reads and checks UTF-8 one encoded character at a time.
package utf8s

import (
	"errors"
	"io"
	"unicode/utf8"
)

const MaxBytes = utf8.UTFMax

var ErrInvalid = errors.New("invalid utf-8")

// LeadLen returns the encoded length announced by lead byte b, or 0.
func LeadLen(b byte) int {
	switch {
	case b&0x80 == 0x00:
		return 1
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	}
	return 0
}

// Decode decodes exactly one character occupying all of p.
// Overlong forms, surrogates and code points above U+10FFFF are rejected.
func Decode(p []byte) (rune, bool) {
	n := len(p)
	if n < 1 || n > MaxBytes || LeadLen(p[0]) != n {
		return utf8.RuneError, false
	}
	for _, b := range p[1:] {
		if b&0xc0 != 0x80 {
			return utf8.RuneError, false
		}
	}
	var r rune
	switch n {
	case 1:
		return rune(p[0]), true
	case 2:
		r = rune(p[0]&0x1f)<<6 | rune(p[1]&0x3f)
		if r < 0x80 {
			return utf8.RuneError, false
		}
	case 3:
		r = rune(p[0]&0x0f)<<12 | rune(p[1]&0x3f)<<6 | rune(p[2]&0x3f)
		if r < 0x800 {
			return utf8.RuneError, false
		}
	case 4:
		r = rune(p[0]&0x07)<<18 | rune(p[1]&0x3f)<<12 | rune(p[2]&0x3f)<<6 | rune(p[3]&0x3f)
		if r < 0x10000 {
			return utf8.RuneError, false
		}
	}
	if !utf8.ValidRune(r) {
		return utf8.RuneError, false
	}
	return r, true
}

func ValidChar(p []byte) bool {
	_, ok := Decode(p)
	return ok
}

// Check validates buf and returns the offset of the first invalid character.
func Check(buf []byte) (int, error) {
	for i := 0; i < len(buf); {
		n := LeadLen(buf[i])
		if n == 0 || i+n > len(buf) || !ValidChar(buf[i:i+n]) {
			return i, ErrInvalid
		}
		i += n
	}
	return len(buf), nil
}

func Valid(buf []byte) bool {
	_, err := Check(buf)
	return err == nil
}

// Get reads one character from r and appends its bytes to buf.
// It returns io.EOF only when r is exhausted before the lead byte.
func Get(r io.ByteReader, buf []byte) ([]byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return buf, err
	}
	n := LeadLen(b)
	if n == 0 {
		return buf, ErrInvalid
	}
	start := len(buf)
	buf = append(buf, b)
	for range n - 1 {
		b, err := r.ReadByte()
		if err == io.EOF {
			return buf[:start], ErrInvalid
		} else if err != nil {
			return buf[:start], err
		}
		buf = append(buf, b)
	}
	if !ValidChar(buf[start:]) {
		return buf[:start], ErrInvalid
	}
	return buf, nil
}

// Put writes the first character of p to w and returns its length.
func Put(w io.Writer, p []byte) (int, error) {
	n, err := Next(p)
	if err != nil {
		return 0, err
	}
	return w.Write(p[:n])
}

// Next returns the length of the first character of p.
func Next(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, io.EOF
	}
	n := LeadLen(p[0])
	if n == 0 || n > len(p) || !ValidChar(p[:n]) {
		return 0, ErrInvalid
	}
	return n, nil
}

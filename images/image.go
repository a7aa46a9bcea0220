// Package images holds the serialized form of programs and links them into
// palvm code.
package images

// Image is a program: named words, each an instruction sequence, and the
// boxes tracked by acquire and release.
type Image struct {
	Entry string            `json:"entry"`
	Words map[string][]Node `json:"words"`
	Boxes map[string]Box    `json:"boxes,omitempty"`
}

// Node is one instruction. Op is a palvm op name or one of
//
//	call   inline the sequence of Word
//	const  push the address of a dictionary cell holding Arg
//	code   push the address of a dictionary cell holding the handle of Word
type Node struct {
	Op   string `json:"op"`
	Arg  int64  `json:"arg,omitempty"`
	Text string `json:"text,omitempty"`
	Seq  []Node `json:"seq,omitempty"`
	Word string `json:"word,omitempty"`
	Box  string `json:"box,omitempty"`
	Perm string `json:"perm,omitempty"`
}

type Box struct {
	Perm   string `json:"perm"`
	Offset int32  `json:"offset"`
}

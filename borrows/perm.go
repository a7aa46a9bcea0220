package borrows

import "strings"

type Perm uint8

const (
	Read Perm = 1 << iota
	Write
	Unique
	Output
)

var permNames = []struct {
	perm Perm
	name string
}{
	{Read, "read"},
	{Write, "write"},
	{Unique, "unique"},
	{Output, "output"},
}

func (p Perm) String() string {
	var names []string
	for _, n := range permNames {
		if p&n.perm != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParsePerm parses names joined by "|", as produced by String.
func ParsePerm(s string) (Perm, bool) {
	var p Perm
	if s == "" || s == "none" {
		return 0, true
	}
loop:
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		for _, n := range permNames {
			if n.name == part {
				p |= n.perm
				continue loop
			}
		}
		return 0, false
	}
	return p, true
}

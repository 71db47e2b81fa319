package document

import (
	"strconv"
	"strings"
)

// Path locates a node inside a document, e.g. Process[2].Arguments.
type Path struct {
	parts []string
}

// Root returns the empty path naming the document itself.
func Root() Path { return Path{} }

// Key returns the path of a mapping entry below p.
func (p Path) Key(k string) Path {
	parts := append(append([]string{}, p.parts...), "."+k)
	return Path{parts: parts}
}

// Index returns the path of a sequence element below p.
func (p Path) Index(i int) Path {
	parts := append(append([]string{}, p.parts...), "["+strconv.Itoa(i)+"]")
	return Path{parts: parts}
}

func (p Path) String() string {
	if len(p.parts) == 0 {
		return "$"
	}
	s := strings.Join(p.parts, "")
	return strings.TrimPrefix(s, ".")
}

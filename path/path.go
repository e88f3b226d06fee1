// Package path provides an immutable, iterable path value for the naming
// tree: an ordered, finite sequence of non-empty components, rooted at "/".
package path

import (
	"encoding/json"
	"strings"

	"dfs.io/errors"
)

// Path is a parsed, immutable path name. The zero value is the root.
type Path struct {
	// components holds the path elements in order; the root has none.
	components []string
}

// Root is the empty path, denoting the root of the tree.
var Root = Path{}

// Parse parses a path string. A legal string is empty (meaning root),
// "/", or starts with "/" and contains any number of "/"-separated,
// non-empty components, none of which contain ":". Consecutive
// separators collapse and a trailing separator is ignored.
func Parse(s string) (Path, error) {
	const op = "path.Parse"
	if s == "" || s == "/" {
		return Root, nil
	}
	if s[0] != '/' {
		return Path{}, errors.E(op, s, errors.Invalid, errors.Str("path must start with '/'"))
	}
	if strings.ContainsRune(s, ':') {
		return Path{}, errors.E(op, s, errors.Invalid, errors.Str("path must not contain ':'"))
	}
	var components []string
	for _, c := range strings.Split(s, "/") {
		if c == "" {
			continue // collapse consecutive/trailing separators
		}
		components = append(components, c)
	}
	return Path{components: components}, nil
}

// MustParse parses s and panics on error. Intended for tests and
// compile-time-known literal paths.
func MustParse(s string) Path {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Append returns a new path with component appended. It fails if component
// is empty or contains "/" or ":".
func (p Path) Append(component string) (Path, error) {
	const op = "path.Append"
	if component == "" {
		return Path{}, errors.E(op, errors.Invalid, errors.Str("empty component"))
	}
	if strings.ContainsAny(component, "/:") {
		return Path{}, errors.E(op, component, errors.Invalid, errors.Str("component contains '/' or ':'"))
	}
	out := make([]string, len(p.components), len(p.components)+1)
	copy(out, p.components)
	out = append(out, component)
	return Path{components: out}, nil
}

// Components returns the path's components in order. The root returns nil.
// The returned slice must not be modified.
func (p Path) Components() []string {
	return p.components
}

// NElem returns the number of components.
func (p Path) NElem() int {
	return len(p.components)
}

// Elem returns the nth component (0-indexed). It panics if n is out of range.
func (p Path) Elem(n int) string {
	return p.components[n]
}

// IsRoot reports whether p is the root.
func (p Path) IsRoot() bool {
	return len(p.components) == 0
}

// Parent returns p's parent. It panics if p is the root.
func (p Path) Parent() Path {
	if p.IsRoot() {
		panic("path: Parent of root")
	}
	return Path{components: p.components[:len(p.components)-1]}
}

// Last returns p's final component. It panics if p is the root.
func (p Path) Last() string {
	if p.IsRoot() {
		panic("path: Last of root")
	}
	return p.components[len(p.components)-1]
}

// String returns the canonical string form: "/" for root, otherwise
// "/c1/c2/...". It round-trips through Parse.
func (p Path) String() string {
	if p.IsRoot() {
		return "/"
	}
	return "/" + strings.Join(p.components, "/")
}

// IsSubpath reports whether other's components are a prefix of p's
// (including equality): that is, whether p lies within the subtree rooted
// at other.
func (p Path) IsSubpath(other Path) bool {
	if len(other.components) > len(p.components) {
		return false
	}
	for i, c := range other.components {
		if p.components[i] != c {
			return false
		}
	}
	return true
}

// Equal reports whether p and q name the same path.
func (p Path) Equal(q Path) bool {
	if len(p.components) != len(q.components) {
		return false
	}
	for i, c := range p.components {
		if q.components[i] != c {
			return false
		}
	}
	return true
}

// Compare returns -1, 0, or 1 according to whether p is less than, equal
// to, or greater than q. An ancestor always precedes its descendant, so
// p.IsSubpath(q) (p lies within the subtree rooted at q) implies
// p.Compare(q) >= 0; otherwise the comparison falls back to lexicographic
// order on the string form. This makes any root-to-leaf locking walk
// consistent with the order.
func (p Path) Compare(q Path) int {
	if p.Equal(q) {
		return 0
	}
	if p.IsSubpath(q) {
		// q is an ancestor of (strict prefix of) p.
		return 1
	}
	if q.IsSubpath(p) {
		return -1
	}
	ps, qs := p.String(), q.String()
	switch {
	case ps < qs:
		return -1
	case ps > qs:
		return 1
	default:
		return 0
	}
}

// GobEncode implements gob.GobEncoder, so a Path crosses an RPC
// connection as its canonical string form rather than its unexported
// field.
func (p Path) GobEncode() ([]byte, error) {
	return []byte(p.String()), nil
}

// GobDecode implements gob.GobDecoder.
func (p *Path) GobDecode(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Path) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Path) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

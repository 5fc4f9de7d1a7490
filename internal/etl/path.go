package etl

import "strings"

// Segment is one dot-separated step of a bracket path. Repeat marks a
// trailing "[]": the value at Name is an array to iterate.
type Segment struct {
	Name   string
	Repeat bool
}

// Path is a parsed bracket path such as "periods[].tour_period[].price".
type Path struct {
	Segments []Segment
}

// ParsePath never fails; an empty string gives an empty Path.
func ParsePath(s string) Path {
	if s == "" {
		return Path{}
	}
	parts := strings.Split(s, ".")
	segs := make([]Segment, 0, len(parts))
	for _, part := range parts {
		name, repeat := strings.CutSuffix(part, "[]")
		segs = append(segs, Segment{Name: name, Repeat: repeat})
	}
	return Path{Segments: segs}
}

func (p Path) String() string {
	var b strings.Builder
	for i, s := range p.Segments {
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s.Name)
		if s.Repeat {
			b.WriteString("[]")
		}
	}
	return b.String()
}

func (p Path) IsEmpty() bool { return len(p.Segments) == 0 }

func (p Path) HasRepeat() bool { return p.lastRepeat() >= 0 }

func (p Path) lastRepeat() int {
	for i := len(p.Segments) - 1; i >= 0; i-- {
		if p.Segments[i].Repeat {
			return i
		}
	}
	return -1
}

// DeepestArray truncates the path after its last repeat segment.
// It is empty when the path has no repeat segment.
func (p Path) DeepestArray() Path {
	i := p.lastRepeat()
	if i < 0 {
		return Path{}
	}
	return Path{Segments: p.Segments[:i+1]}
}

// HasPrefix compares whole segments, including their repeat markers.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.Segments) > len(p.Segments) {
		return false
	}
	for i, s := range prefix.Segments {
		if p.Segments[i] != s {
			return false
		}
	}
	return true
}

// RelativeTo returns the part of p that addresses a field of one item
// produced by flattening anchor. Paths outside the anchor fall back to
// everything after their own last repeat segment. A path equal to the anchor
// yields the empty path, meaning the item itself.
func (p Path) RelativeTo(anchor Path) Path {
	if !anchor.IsEmpty() && p.HasPrefix(anchor) {
		return Path{Segments: p.Segments[len(anchor.Segments):]}
	}
	i := p.lastRepeat()
	if i < 0 {
		return p
	}
	return Path{Segments: p.Segments[i+1:]}
}

// group is a run of object keys ending at an array (repeat) or at the end of the path.
type group struct {
	keys   []string
	repeat bool
}

func (p Path) groups() []group {
	var out []group
	var cur group
	for _, s := range p.Segments {
		cur.keys = append(cur.keys, s.Name)
		if s.Repeat {
			cur.repeat = true
			out = append(out, cur)
			cur = group{}
		}
	}
	if len(cur.keys) > 0 {
		out = append(out, cur)
	}
	return out
}

// DeepestArrayPath returns the mapping path up to and including its last "[]".
func DeepestArrayPath(mapping string) string {
	return ParsePath(mapping).DeepestArray().String()
}

// RelativeField returns path relative to one item of the flattened anchor.
func RelativeField(path, anchor string) string {
	return ParsePath(path).RelativeTo(ParsePath(anchor)).String()
}

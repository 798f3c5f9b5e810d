package analysis

import "sort"

// VarSet is a set of variable names.
type VarSet map[string]struct{}

func (s VarSet) Add(v string)      { s[v] = struct{}{} }
func (s VarSet) Has(v string) bool { _, ok := s[v]; return ok }

func (s VarSet) Clone() VarSet {
	c := make(VarSet, len(s))
	for v := range s {
		c[v] = struct{}{}
	}
	return c
}

// Union adds every member of o to s and returns s.
func (s VarSet) Union(o VarSet) VarSet {
	for v := range o {
		s[v] = struct{}{}
	}
	return s
}

// Equal reports set equality by value.
func (s VarSet) Equal(o VarSet) bool {
	if len(s) != len(o) {
		return false
	}
	for v := range s {
		if _, ok := o[v]; !ok {
			return false
		}
	}
	return true
}

// Sorted returns the members in lexicographic order.
func (s VarSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// NodeSet is a set of CFG node indices.
type NodeSet map[int]struct{}

func (s NodeSet) Add(n int)      { s[n] = struct{}{} }
func (s NodeSet) Has(n int) bool { _, ok := s[n]; return ok }

func (s NodeSet) Clone() NodeSet {
	c := make(NodeSet, len(s))
	for n := range s {
		c[n] = struct{}{}
	}
	return c
}

func (s NodeSet) Equal(o NodeSet) bool {
	if len(s) != len(o) {
		return false
	}
	for n := range s {
		if _, ok := o[n]; !ok {
			return false
		}
	}
	return true
}

// Intersect returns s ∩ o as a new set.
func (s NodeSet) Intersect(o NodeSet) NodeSet {
	small, large := s, o
	if len(o) < len(s) {
		small, large = o, s
	}
	out := make(NodeSet)
	for n := range small {
		if _, ok := large[n]; ok {
			out[n] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in ascending order.
func (s NodeSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

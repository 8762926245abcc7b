package verdict

import "sort"

// IDSet is an ordered set of opaque ids. Membership sets (a principal's
// groups, a song's credited talents) are compared by intersection on the
// evaluation hot path, so lookups stay O(log n) as the sets grow.
type IDSet []string

// NewIDSet builds a set from the given ids, deduplicated and sorted.
func NewIDSet(ids ...string) IDSet {
	if len(ids) == 0 {
		return nil
	}
	out := make(IDSet, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, v := range ids {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether id is a member of the set.
func (s IDSet) Contains(id string) bool {
	i := sort.SearchStrings(s, id)
	return i < len(s) && s[i] == id
}

// Intersects reports whether the two sets share at least one member.
func (s IDSet) Intersects(other IDSet) bool {
	i, j := 0, 0
	for i < len(s) && j < len(other) {
		switch {
		case s[i] == other[j]:
			return true
		case s[i] < other[j]:
			i++
		default:
			j++
		}
	}
	return false
}

// Add returns a set containing the members of s plus id.
// The receiver is not modified.
func (s IDSet) Add(id string) IDSet {
	if id == "" || s.Contains(id) {
		return s
	}
	out := make(IDSet, len(s), len(s)+1)
	copy(out, s)
	out = append(out, id)
	sort.Strings(out)
	return out
}

// Remove returns a set containing the members of s minus id.
// The receiver is not modified.
func (s IDSet) Remove(id string) IDSet {
	if !s.Contains(id) {
		return s
	}
	out := make(IDSet, 0, len(s)-1)
	for _, v := range s {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// Equal reports whether the two sets have identical members.
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether the set has no members.
func (s IDSet) IsEmpty() bool { return len(s) == 0 }

package penalty

import "strings"

// IDSet is an ordered set of record IDs. The zero value is an empty set.
// Membership is always by exact ID, never by substring.
type IDSet struct {
	ids []string
}

// NewIDSet returns a set holding ids in order, dropping empties and duplicates.
func NewIDSet(ids ...string) IDSet {
	var s IDSet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// ParseIDSet decodes the legacy comma-joined encoding. Blank entries
// (",," or a trailing comma) and repeated IDs are dropped.
func ParseIDSet(encoded string) IDSet {
	var s IDSet
	for _, id := range strings.Split(encoded, ",") {
		s.Add(strings.TrimSpace(id))
	}
	return s
}

// Add appends id if it is not empty and not already present.
// Reports whether the set changed.
func (s *IDSet) Add(id string) bool {
	if id == "" || s.Contains(id) {
		return false
	}
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id from the set. Reports whether the set changed.
func (s *IDSet) Remove(id string) bool {
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
			return true
		}
	}
	return false
}

// Rename replaces oldID with newID in place. If newID is already a member
// the old entry is dropped instead. Reports whether the set changed.
func (s *IDSet) Rename(oldID, newID string) bool {
	if oldID == newID || newID == "" {
		return false
	}
	for i, v := range s.ids {
		if v != oldID {
			continue
		}
		if s.Contains(newID) {
			s.ids = append(s.ids[:i:i], s.ids[i+1:]...)
		} else {
			s.ids[i] = newID
		}
		return true
	}
	return false
}

// Contains reports whether id is a member.
func (s IDSet) Contains(id string) bool {
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Len returns the number of members.
func (s IDSet) Len() int {
	return len(s.ids)
}

// Slice returns a copy of the members in insertion order.
func (s IDSet) Slice() []string {
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// String returns the comma-joined encoding.
func (s IDSet) String() string {
	return strings.Join(s.ids, ",")
}

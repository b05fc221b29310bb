package models

import "encoding/json"

// TagGroup is one tag namespace ("artist", "parody", ...) and its tags,
// in source order.
type TagGroup struct {
	Namespace string   `json:"namespace"`
	Tags      []string `json:"tags"`
}

// TagMap maps tag namespaces to tags. Unlike a plain map it preserves
// insertion order, which matters because sources emit namespaces in a
// meaningful order and a stored record must round-trip unchanged.
// Namespaces are unique; Set replaces in place.
//
// The zero value is an empty, ready-to-use map.
type TagMap struct {
	groups []TagGroup
}

func (m *TagMap) Len() int      { return len(m.groups) }
func (m *TagMap) IsEmpty() bool { return len(m.groups) == 0 }

// Set stores tags under namespace, replacing any existing entry and keeping
// its position. A new namespace is appended. The tags slice is copied.
func (m *TagMap) Set(namespace string, tags []string) {
	copied := append([]string(nil), tags...)
	for i := range m.groups {
		if m.groups[i].Namespace == namespace {
			m.groups[i].Tags = copied
			return
		}
	}
	m.groups = append(m.groups, TagGroup{Namespace: namespace, Tags: copied})
}

// Add appends a single tag to namespace, creating the namespace if needed.
// Duplicate tags within a namespace are ignored.
func (m *TagMap) Add(namespace, tag string) {
	for i := range m.groups {
		if m.groups[i].Namespace != namespace {
			continue
		}
		for _, t := range m.groups[i].Tags {
			if t == tag {
				return
			}
		}
		m.groups[i].Tags = append(m.groups[i].Tags, tag)
		return
	}
	m.groups = append(m.groups, TagGroup{Namespace: namespace, Tags: []string{tag}})
}

// Get returns the tags stored under namespace, or nil.
func (m *TagMap) Get(namespace string) []string {
	for i := range m.groups {
		if m.groups[i].Namespace == namespace {
			return m.groups[i].Tags
		}
	}
	return nil
}

// Namespaces returns the namespaces in insertion order.
func (m *TagMap) Namespaces() []string {
	out := make([]string, 0, len(m.groups))
	for i := range m.groups {
		out = append(out, m.groups[i].Namespace)
	}
	return out
}

// Groups returns the groups in insertion order. The returned slice aliases
// the map's storage; callers must not modify it.
func (m *TagMap) Groups() []TagGroup {
	return m.groups
}

// Clone returns a deep copy sharing no storage with m.
func (m TagMap) Clone() TagMap {
	if len(m.groups) == 0 {
		return TagMap{}
	}
	groups := make([]TagGroup, len(m.groups))
	for i, g := range m.groups {
		groups[i] = TagGroup{
			Namespace: g.Namespace,
			Tags:      append([]string(nil), g.Tags...),
		}
	}
	return TagMap{groups: groups}
}

// Equal reports whether both maps hold the same namespaces in the same order
// with the same tags in the same order.
func (m TagMap) Equal(other TagMap) bool {
	if len(m.groups) != len(other.groups) {
		return false
	}
	for i, g := range m.groups {
		o := other.groups[i]
		if g.Namespace != o.Namespace || len(g.Tags) != len(o.Tags) {
			return false
		}
		for j, t := range g.Tags {
			if t != o.Tags[j] {
				return false
			}
		}
	}
	return true
}

// MarshalJSON encodes the map as an ordered array of groups.
func (m TagMap) MarshalJSON() ([]byte, error) {
	if len(m.groups) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(m.groups)
}

func (m *TagMap) UnmarshalJSON(data []byte) error {
	var groups []TagGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return err
	}
	m.groups = groups
	return nil
}

// This file is part of slt - https://github.com/sourcetrail/slt
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracked

import (
	"sort"

	"github.com/sourcetrail/slt/location"
	"github.com/sourcetrail/slt/locmgr"
	"github.com/sourcetrail/slt/slog"
)

// Map proxies a mapping-of-Scalar container: each entry gets a child
// Location named by its key, minted lazily on first access, the same
// proxying pattern Seq applies to index-named elements.
type Map[T Scalar] struct {
	Loc   *location.Location
	Mgr   *locmgr.Manager
	items map[string]T
	cache map[string]*Tracked[T]
}

// NewMap wraps items at loc (a fresh, node-less Location if loc is nil).
// A nil items map starts the container empty.
func NewMap[T Scalar](items map[string]T, loc *location.Location, mgr *locmgr.Manager) *Map[T] {
	if loc == nil {
		loc = location.New("")
	}
	if items == nil {
		items = make(map[string]T)
	}
	m := &Map[T]{Loc: loc, Mgr: mgr, items: items, cache: make(map[string]*Tracked[T])}
	loc.Ref = m
	return m
}

// Len reports the current entry count.
func (m *Map[T]) Len() int { return len(m.items) }

// Has reports whether key is present.
func (m *Map[T]) Has(key string) bool {
	_, ok := m.items[key]
	return ok
}

// At returns the memoized Tracked[T] bound to key, or false when the key
// is absent. Each access consults the entry's pending force override, so
// a peer's SetValue is substituted on the next read; a malformed
// override is logged, left pending, and the current entry returned
// instead.
func (m *Map[T]) At(key string) (*Tracked[T], bool) {
	if _, ok := m.items[key]; !ok {
		return nil, false
	}
	if t, ok := m.cache[key]; ok {
		if t.Loc.Force != nil {
			if err := t.ReadForce(); err != nil {
				slog.Logf("tracked", "dropping malformed force for entry %q: %v", key, err)
			} else {
				m.items[key] = t.Raw
			}
		}
		return t, true
	}
	child := m.Loc.Child(key)
	if m.Mgr != nil {
		m.Mgr.AddLocation(child)
	}
	v := toValue(m.items[key])
	read, err := child.Read(v, v.Kind)
	if err != nil {
		slog.Logf("tracked", "dropping malformed force for entry %q: %v", key, err)
		read = v
	}
	t := New(fromValue[T](read), child, m.Mgr)
	m.items[key] = t.Raw
	m.cache[key] = t
	return t, true
}

// Set stores v under key, minting (or rebinding) the entry's child
// Location and consulting any force override already pending there, and
// returns the entry's wrapper.
func (m *Map[T]) Set(key string, v T) *Tracked[T] {
	child := m.Loc.Child(key)
	if m.Mgr != nil {
		m.Mgr.AddLocation(child)
	}
	val := toValue(v)
	read, err := child.Read(val, val.Kind)
	if err != nil {
		slog.Logf("tracked", "dropping malformed force for entry %q: %v", key, err)
		read = val
	}
	t := New(fromValue[T](read), child, m.Mgr)
	m.items[key] = t.Raw
	m.cache[key] = t
	return t
}

// SetTracked stores an already-tracked value under key, overlaying its
// provenance onto the entry's child Location.
func (m *Map[T]) SetTracked(key string, v *Tracked[T]) {
	m.Loc.Apply(&location.Location{Content: map[string]*location.Location{key: v.Loc}})
	m.items[key] = v.Raw
	m.cache[key] = v
}

// Delete removes key and its child Location, returning the removed
// entry's wrapper.
func (m *Map[T]) Delete(key string) (*Tracked[T], bool) {
	t, ok := m.At(key)
	if !ok {
		return nil, false
	}
	delete(m.items, key)
	delete(m.cache, key)
	delete(m.Loc.Content, key)
	return t, true
}

// Clear empties the map and drops every child Location.
func (m *Map[T]) Clear() {
	m.items = make(map[string]T)
	m.cache = make(map[string]*Tracked[T])
	m.Loc.Content = nil
}

// Keys returns the present keys in sorted order, for deterministic
// iteration.
func (m *Map[T]) Keys() []string {
	keys := make([]string, 0, len(m.items))
	for k := range m.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Iterate returns a copy of the raw entries, not Tracked wrappers; a
// caller that needs provenance during iteration should index with At
// instead.
func (m *Map[T]) Iterate() map[string]T {
	out := make(map[string]T, len(m.items))
	for k, v := range m.items {
		out[k] = v
	}
	return out
}

// ReadForce pushes pending force overrides into every entry wrapper
// minted so far, implementing location.Reader for map-valued children of
// a larger tree.
func (m *Map[T]) ReadForce() error {
	return m.Loc.ReadContent()
}

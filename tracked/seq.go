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
	"strconv"

	"github.com/sourcetrail/slt/location"
	"github.com/sourcetrail/slt/locmgr"
	"github.com/sourcetrail/slt/slog"
)

// Seq proxies a sequence-of-Scalar container: each element gets a child
// Location named by its stringified index, minted lazily on first
// access.
type Seq[T Scalar] struct {
	Loc   *location.Location
	Mgr   *locmgr.Manager
	items []T
	cache map[string]*Tracked[T]
}

// NewSeq wraps items at loc (a fresh, node-less Location if loc is nil).
func NewSeq[T Scalar](items []T, loc *location.Location, mgr *locmgr.Manager) *Seq[T] {
	if loc == nil {
		loc = location.New("")
	}
	s := &Seq[T]{Loc: loc, Mgr: mgr, items: items, cache: make(map[string]*Tracked[T])}
	loc.Ref = s
	return s
}

// Len reports the current element count.
func (s *Seq[T]) Len() int { return len(s.items) }

// At returns the memoized Tracked[T] bound to index i. Each access
// consults the element's pending force override, so a peer's SetValue is
// substituted on the next read; a malformed override is logged, left
// pending, and the current element returned instead.
func (s *Seq[T]) At(i int) *Tracked[T] {
	key := strconv.Itoa(i)
	if t, ok := s.cache[key]; ok {
		if t.Loc.Force != nil {
			if err := t.ReadForce(); err != nil {
				slog.Logf("tracked", "dropping malformed force for element %s: %v", key, err)
			} else {
				s.items[i] = t.Raw
			}
		}
		return t
	}
	child := s.Loc.Child(key)
	if s.Mgr != nil {
		s.Mgr.AddLocation(child)
	}
	v := toValue(s.items[i])
	read, err := child.Read(v, v.Kind)
	if err != nil {
		slog.Logf("tracked", "dropping malformed force for element %s: %v", key, err)
		read = v
	}
	t := New(fromValue[T](read), child, s.Mgr)
	s.items[i] = t.Raw
	s.cache[key] = t
	return t
}

// Append adds v as a new trailing element and returns its Tracked[T].
func (s *Seq[T]) Append(v T) *Tracked[T] {
	i := len(s.items)
	s.items = append(s.items, v)
	return s.At(i)
}

// Pop removes and returns the last element's Tracked[T], dropping its
// child Location with it.
func (s *Seq[T]) Pop() (*Tracked[T], bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	i := len(s.items) - 1
	t := s.At(i)
	key := strconv.Itoa(i)
	s.items = s.items[:i]
	delete(s.cache, key)
	delete(s.Loc.Content, key)
	return t, true
}

// Clear empties the sequence and drops every child Location.
func (s *Seq[T]) Clear() {
	s.items = nil
	s.cache = make(map[string]*Tracked[T])
	s.Loc.Content = nil
}

// ReadForce pushes pending force overrides into every element wrapper
// minted so far, implementing location.Reader for sequence-valued
// children of a larger tree.
func (s *Seq[T]) ReadForce() error {
	return s.Loc.ReadContent()
}

// Iterate returns the sequence's raw elements, not Tracked wrappers; a
// caller that needs provenance during iteration should index with At
// instead.
func (s *Seq[T]) Iterate() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

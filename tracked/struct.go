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
	"github.com/sourcetrail/slt/config"
	"github.com/sourcetrail/slt/expr"
	"github.com/sourcetrail/slt/location"
	"github.com/sourcetrail/slt/locmgr"
	"github.com/sourcetrail/slt/slog"
	"github.com/sourcetrail/slt/wire"
)

// FieldAdapter is a hand-written reflection adapter: one small
// implementation per payload struct type, exposing field enumeration and
// a typed get/set pair. Get always succeeds (a struct field always has
// some representable value); Set can fail when the underlying field
// rejects the assignment.
type FieldAdapter interface {
	FieldNames() []string
	Get(name string) expr.Value
	Set(name string, v expr.Value) error
}

// Struct is the structured-payload counterpart of Tracked[T]: it proxies
// attribute access to FieldAdapter, minting a child Location (and a
// memoized Tracked[T] wrapper) the first time each field is touched.
type Struct struct {
	Fields FieldAdapter
	Loc    *location.Location
	Mgr    *locmgr.Manager

	cache map[string]interface{}
}

// NewStruct wraps fields at loc (a fresh, node-less Location if loc is
// nil).
func NewStruct(fields FieldAdapter, loc *location.Location, mgr *locmgr.Manager) *Struct {
	if loc == nil {
		loc = location.New("")
	}
	s := &Struct{Fields: fields, Loc: loc, Mgr: mgr, cache: make(map[string]interface{})}
	loc.Ref = s
	return s
}

// Field returns the memoized Tracked[T] bound to name, minting one from
// the adapter's current value on first access. Each access consults the
// child Location's pending force override, so a peer's SetValue is
// substituted on the next read; a malformed override is logged, left
// pending, and the current value returned instead.
func Field[T Scalar](s *Struct, name string) *Tracked[T] {
	if cached, ok := s.cache[name]; ok {
		if t, ok := cached.(*Tracked[T]); ok {
			if t.Loc.Force != nil {
				if err := t.ReadForce(); err != nil {
					slog.Logf("tracked", "dropping malformed force for field %q: %v", name, err)
				} else {
					_ = s.Fields.Set(name, toValue(t.Raw))
				}
			}
			return t
		}
	}
	child := s.Loc.Child(name)
	if s.Mgr != nil {
		s.Mgr.AddLocation(child)
	}
	v := s.Fields.Get(name)
	read, err := child.Read(v, v.Kind)
	if err != nil {
		slog.Logf("tracked", "dropping malformed force for field %q: %v", name, err)
		read = v
	} else if !read.Equal(v) {
		_ = s.Fields.Set(name, read)
	}
	t := New(fromValue[T](read), child, s.Mgr)
	s.cache[name] = t
	return t
}

// SetField writes a new Tracked[T] value back onto field name: the
// target child Location is overlaid with v's provenance, and the adapter
// is asked to store the raw value. If the adapter rejects the
// assignment, the raw scalar and its Location are still kept
// independently rather than surfaced as a fatal error.
func SetField[T Scalar](s *Struct, name string, v *Tracked[T]) error {
	s.Loc.Apply(&location.Location{Content: map[string]*location.Location{name: v.Loc}})
	_ = s.Fields.Set(name, toValue(v.Raw))
	s.cache[name] = v
	return nil
}

// ReadForce pushes pending force overrides into every field wrapper
// minted so far, implementing location.Reader for struct-valued children
// of a larger tree.
func (s *Struct) ReadForce() error {
	return s.Loc.ReadContent()
}

// OriginalField recovers the source value of field name, the way
// Tracked[T].Original does for a bare scalar.
func OriginalField[T Scalar](s *Struct, name string) (T, error) {
	return Field[T](s, name).Original()
}

// ToMsg linearizes the Struct's Location tree. The struct's own field
// values travel through whatever message type the caller already uses
// for the payload; this header is the auxiliary provenance that rides
// alongside it.
func (s *Struct) ToMsg(cfg config.Config) (wire.LocationHeaderMessage, error) {
	return s.Loc.HeaderCreate(cfg.MsgStr, cfg.Compression())
}

// FromMsgStruct reconstructs a Struct's provenance tree from a header
// produced by ToMsg, binding it to an already-populated FieldAdapter (the
// payload itself arrived through the caller's own message transport).
func FromMsgStruct(fields FieldAdapter, header wire.LocationHeaderMessage, mgr *locmgr.Manager) (*Struct, error) {
	root, err := location.FromHeader(header)
	if err != nil {
		return nil, err
	}
	return NewStruct(fields, root, mgr), nil
}

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

// Package location implements the provenance tree: a node per
// tracked leaf or structured field, each owning an Expression from the
// original source input to its current value, an optional registered id,
// and an optional force override supplied by a peer.
package location

import (
	"math"
	"strconv"

	"github.com/sourcetrail/slt/expr"
)

// Unregistered is the id a Location carries before Register assigns it a
// slot in a LocationManager's dense vector.
const Unregistered = -1

// Registrar is the minimal capability a LocationManager offers Register:
// "hand me a freshly-built node so I can assign it a slot in my dense
// vector". Defined here rather than imported from locmgr so this package
// never depends on its own downstream consumer.
type Registrar interface {
	Register(loc *Location) int
}

// Location is one node of the provenance tree. NodeName identifies the
// owning process, ID is the registered slot (Unregistered until Register
// runs), Expr carries the reversible
// history from source to current value, Content holds named children
// mirroring the tracked data's shape, Ref is a non-owning back-pointer to
// whichever wrapper currently owns this node (routing attribute reads;
// opaque to this package, see the tracked package), and Force is a
// peer-supplied override awaiting the next Read.
type Location struct {
	NodeName string
	ID       int
	Expr     expr.Expression
	Content  map[string]*Location
	Ref      interface{}
	Force    *string
}

// New builds an unregistered, childless Location for node.
func New(node string) *Location {
	return &Location{NodeName: node, ID: Unregistered}
}

// HasState reports whether this node carries any provenance at all:
// either it has been registered, or its expression is non-empty.
func (l *Location) HasState() bool {
	return l.ID >= 0 || !l.Expr.IsEmpty()
}

// Child returns the named child, minting an unregistered one on first
// access: a child exists iff some arithmetic or explicit access reached
// it.
func (l *Location) Child(name string) *Location {
	if l.Content == nil {
		l.Content = make(map[string]*Location)
	}
	c, ok := l.Content[name]
	if !ok {
		c = New(l.NodeName)
		l.Content[name] = c
	}
	return c
}

// Clear wipes this node's expression and back-reference recursively,
// preserving tree shape, registered ids, and any pending force override
// (a peer's override must survive until the next Read substitutes it).
func (l *Location) Clear() {
	l.Expr = expr.Expression{}
	l.Ref = nil
	for _, c := range l.Content {
		c.Clear()
	}
}

// Copy makes a shallow copy of this node. When keepID/keepExpr/keepContent
// are all false the result is a fresh, contentless, unregistered node;
// exprAppend, if non-nil, is appended (with simplification left to the
// caller) to the copy's expression after the keep/drop decision.
func (l *Location) Copy(exprAppend []expr.Element, keepID, keepExpr, keepContent bool) *Location {
	out := &Location{NodeName: l.NodeName, ID: Unregistered}
	if keepID {
		out.ID = l.ID
	}
	if keepExpr {
		out.Expr = l.Expr
	}
	if keepContent && l.Content != nil {
		out.Content = make(map[string]*Location, len(l.Content))
		for name, c := range l.Content {
			out.Content[name] = c
		}
	}
	if len(exprAppend) > 0 {
		hist := append(append([]expr.Element(nil), out.Expr.Elements()...), exprAppend...)
		out.Expr = expr.New(hist...)
	}
	return out
}

// DeepCopy recursively clones the tree, dropping every id, expression,
// ref, and force override - a fully independent, unregistered copy of the
// tree's shape alone.
func (l *Location) DeepCopy() *Location {
	out := New(l.NodeName)
	if len(l.Content) > 0 {
		out.Content = make(map[string]*Location, len(l.Content))
		for name, c := range l.Content {
			out.Content[name] = c.DeepCopy()
		}
	}
	return out
}

// Apply overlays other onto l: for each child name in other.Content, if l
// already has that child its expression/id/force are overwritten from
// other's (recursively, so a whole overlaid subtree merges level by
// level); otherwise a fresh unregistered clone of other's child subtree
// is adopted.
func (l *Location) Apply(other *Location) {
	if other == nil {
		return
	}
	if l.Content == nil && len(other.Content) > 0 {
		l.Content = make(map[string]*Location, len(other.Content))
	}
	for name, oc := range other.Content {
		if lc, ok := l.Content[name]; ok {
			lc.Expr = oc.Expr
			lc.ID = oc.ID
			lc.Force = oc.Force
			lc.Apply(oc)
			continue
		}
		l.Content[name] = oc.cloneUnregistered()
	}
}

// cloneUnregistered deep-copies a subtree's expression/content shape but
// resets every id to Unregistered, for adoption into a foreign tree.
func (l *Location) cloneUnregistered() *Location {
	out := &Location{NodeName: l.NodeName, ID: Unregistered, Expr: l.Expr, Force: l.Force}
	if len(l.Content) > 0 {
		out.Content = make(map[string]*Location, len(l.Content))
		for name, c := range l.Content {
			out.Content[name] = c.cloneUnregistered()
		}
	}
	return out
}

// Register assigns ids to this node and every descendant whose id is
// still Unregistered, depth-first, via r.
func (l *Location) Register(r Registrar) {
	if l.ID < 0 {
		l.ID = r.Register(l)
	}
	for _, c := range l.Content {
		c.Register(r)
	}
}

// Reader is implemented by whichever wrapper currently owns a Location
// (stored in its Ref) so a tree read can substitute a child's pending
// override into the value that wrapper holds.
type Reader interface {
	ReadForce() error
}

// Read applies this node's force override (if any) to v, coercing the
// override's string form to hint's numeric family, and memoizes the
// coerced value back into Force so a repeated Read is idempotent. It then
// walks Content so per-field overrides on a composite payload reach the
// wrappers owning them. With no force set anywhere, v is returned
// unchanged.
func (l *Location) Read(v expr.Value, hint expr.Kind) (expr.Value, error) {
	if l.Force != nil {
		coerced, err := coerce(*l.Force, hint)
		if err != nil {
			return expr.Value{}, err
		}
		memo := coerced.Raw()
		l.Force = &memo
		v = coerced
	}
	if err := l.ReadContent(); err != nil {
		return expr.Value{}, err
	}
	return v, nil
}

// ReadContent recursively pushes pending force overrides into the
// wrappers owning this node's children, routed through Ref. A child no
// wrapper has reached yet keeps its override pending until first access
// mints one.
func (l *Location) ReadContent() error {
	for _, c := range l.Content {
		if r, ok := c.Ref.(Reader); ok {
			if err := r.ReadForce(); err != nil {
				return err
			}
			continue
		}
		if err := c.ReadContent(); err != nil {
			return err
		}
	}
	return nil
}

// coerce converts a force override's string form to the requested kind.
// Integer families round-to-nearest via float; float families
// parse directly; strings pass through verbatim.
func coerce(raw string, hint expr.Kind) (expr.Value, error) {
	switch hint {
	case expr.KindString:
		return expr.String(raw), nil
	case expr.KindInt32, expr.KindInt64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return expr.Value{}, err
		}
		n := int64(math.Round(f))
		if hint == expr.KindInt32 {
			return expr.Int32(int32(n)), nil
		}
		return expr.Int64(n), nil
	case expr.KindFloat64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return expr.Value{}, err
		}
		return expr.Float64(f), nil
	case expr.KindComplex128:
		c, err := strconv.ParseComplex(raw, 128)
		if err != nil {
			return expr.Value{}, err
		}
		return expr.Complex128(c), nil
	default:
		return expr.Value{}, strconv.ErrSyntax
	}
}

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

// Package expr implements the reversible postfix expression engine: an
// ordered stack-machine history of literal Values and catalog Operators
// that can be applied, reversed, algebraically simplified, and
// (de)serialized to a string or binary wire form.
package expr

import (
	"strings"

	"github.com/sourcetrail/slt/operator"
)

// Element is one entry of an Expression's history: either a catalog
// Operator or a literal Value. Exactly one of the two is meaningful,
// selected by IsOp.
type Element struct {
	IsOp bool
	Op   operator.Operator
	Val  Value
}

// Op wraps an Operator as a history Element.
func Op(o operator.Operator) Element { return Element{IsOp: true, Op: o} }

// Lit wraps a Value as a history Element.
func Lit(v Value) Element { return Element{Val: v} }

// Expression is an ordered postfix history, possibly still in a packed
// (string or wire) form that has not yet been parsed into Elements.
type Expression struct {
	history []Element

	// packed holds an un-parsed form. Exactly one of packedString /
	// packedWire is non-nil while packed, and both are nil once Unpack
	// has run (or the Expression was built directly from Elements).
	packedString *string
	packedWire   *packedWireForm

	// err records a schema/parse error encountered the one time
	// Unpack ran. It is a malformed-input error, never a "missing
	// argument" condition (those are tolerated silently by Apply).
	err error
}

// Err returns the schema/parse error, if any, encountered while
// unpacking a packed string or wire form. A nil Expression or one built
// directly from Elements never has an error.
func (e *Expression) Err() error {
	e.Unpack()
	return e.err
}

// packedWireForm is the still-compressed/typed-stream form captured by
// FromMessage, kept verbatim until first touched.
type packedWireForm struct {
	elements     []byte
	data         []byte
	compression  uint8
	elementsSize uint32
	dataSize     uint32
}

// New builds an already-unpacked Expression from a sequence of Elements.
func New(elements ...Element) Expression {
	return Expression{history: append([]Element(nil), elements...)}
}

// FromString builds a packed Expression from its string form. Parsing
// is deferred to the first Unpack-triggering call (Len, Elements, Apply,
// Reverse, ...); a malformed token surfaces there via Err.
func FromString(s string) Expression {
	return Expression{packedString: &s}
}

// String renders the Expression's string form: semicolon-separated
// operator glyphs and literal tokens, in history order. If still packed
// as a string, the stored text is returned verbatim without unpacking.
func (e *Expression) String() string {
	if e.packedString != nil {
		return *e.packedString
	}
	e.Unpack()
	parts := make([]string, len(e.history))
	for i, el := range e.history {
		if el.IsOp {
			parts[i] = el.Op.Glyph
		} else {
			parts[i] = el.Val.String()
		}
	}
	return strings.Join(parts, ";")
}

// Packed reports whether the Expression is still holding an un-parsed
// string or wire form.
func (e *Expression) Packed() bool {
	return e.packedString != nil || e.packedWire != nil
}

// Len returns the number of elements, unpacking first if necessary.
func (e *Expression) Len() int {
	e.Unpack()
	return len(e.history)
}

// IsEmpty judges a still-packed form by its raw byte/character count
// rather than fully unpacking.
func (e *Expression) IsEmpty() bool {
	if e.packedString != nil {
		return len(*e.packedString) == 0
	}
	if e.packedWire != nil {
		return e.packedWire.elementsSize == 0 && e.packedWire.dataSize == 0
	}
	return len(e.history) == 0
}

// Elements returns the unpacked history. The returned slice aliases the
// Expression's internal storage and must not be mutated by the caller.
func (e *Expression) Elements() []Element {
	e.Unpack()
	return e.history
}

// Unpack materializes the element sequence from whatever packed form the
// Expression is holding. It is idempotent: once unpacked, subsequent calls
// are no-ops.
func (e *Expression) Unpack() {
	switch {
	case e.packedString != nil:
		e.unpackString(*e.packedString)
		e.packedString = nil
	case e.packedWire != nil:
		e.unpackWire(e.packedWire)
		e.packedWire = nil
	}
}

func (e *Expression) unpackString(s string) {
	for _, part := range strings.Split(s, ";") {
		if part == "" {
			continue
		}
		if op, ok := operator.ByGlyph(part); ok {
			e.history = append(e.history, Op(op))
			continue
		}
		v, err := parseLiteral(part)
		if err != nil {
			e.err = err
			return
		}
		e.history = append(e.history, Lit(v))
	}
}

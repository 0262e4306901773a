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

// Package operator is the static catalog of reversible operators that the
// expr package builds postfix histories out of.
package operator

// Code is the stable wire identifier of an Operator. Values stay below 64
// so that expr's binary form can add 64 (wire.OperatorTagBase) to them and
// never collide with the INT32/INT64/DOUBLE/COMPLEX/STRING literal tags.
type Code uint8

// Operator codes, stable across the wire. Do not renumber: encoded
// Expressions on disk or on the network depend on these values.
const (
	Swap Code = iota
	Add
	Sub
	MulInt
	Mul
	Div
	DivFloor
	Sin
	Cos
	Asin
	Acos
	Pow
	IPow
)

// Group tags operators whose adjacent application may be fused into a
// single operator with a combined constant. Zero means "never fuses",
// not even with itself: integer multiplication and floor division stay
// ungrouped so an integer chain is never algebraically rewritten.
type Group uint8

const (
	groupNone Group = 0
	GroupAdd  Group = 1 // addition / subtraction
	GroupMul  Group = 2 // multiplication / true division
)

// Operator is an immutable record describing one reversible postfix
// operation. The zero Group means the operator never fuses with a
// neighbour.
type Operator struct {
	Code        Code
	Glyph       string
	ArgCount    int
	ResCount    int
	Commutative bool
	Group       Group
	HasNeutral  bool
	Neutral     float64
	Negate      bool
	inverse     Code
}

// Inverse returns the Operator such that Inverse(op)(op(x, k), k) == x.
func (o Operator) Inverse() Operator {
	return byCode[o.inverse]
}

var byCode = map[Code]Operator{}
var byGlyph = map[string]Operator{}

func define(o Operator) Operator {
	byCode[o.Code] = o
	// MulInt and Mul share the glyph "*"; MulInt is registered first so
	// that string-form parsing resolves "*" to the integer-preserving
	// variant.
	if _, exists := byGlyph[o.Glyph]; !exists {
		byGlyph[o.Glyph] = o
	}
	return o
}

var (
	SwapOp = define(Operator{Code: Swap, Glyph: "swap", ArgCount: 2, ResCount: 2, inverse: Swap})

	AddOp = define(Operator{Code: Add, Glyph: "+", ArgCount: 2, ResCount: 1,
		Commutative: true, Group: GroupAdd, HasNeutral: true, Neutral: 0, inverse: Sub})

	SubOp = define(Operator{Code: Sub, Glyph: "-", ArgCount: 2, ResCount: 1,
		Commutative: false, Group: GroupAdd, HasNeutral: true, Neutral: 0, Negate: true, inverse: Add})

	MulIntOp = define(Operator{Code: MulInt, Glyph: "*", ArgCount: 2, ResCount: 1,
		Commutative: true, HasNeutral: true, Neutral: 1, inverse: DivFloor})

	MulOp = define(Operator{Code: Mul, Glyph: "*", ArgCount: 2, ResCount: 1,
		Commutative: true, Group: GroupMul, HasNeutral: true, Neutral: 1, inverse: Div})

	DivOp = define(Operator{Code: Div, Glyph: "/", ArgCount: 2, ResCount: 1,
		Commutative: false, Group: GroupMul, HasNeutral: true, Neutral: 1, inverse: Mul})

	DivFloorOp = define(Operator{Code: DivFloor, Glyph: "//", ArgCount: 2, ResCount: 1,
		Commutative: false, HasNeutral: true, Neutral: 1, inverse: MulInt})

	SinOp  = define(Operator{Code: Sin, Glyph: "sin", ArgCount: 1, ResCount: 1, Commutative: true, inverse: Asin})
	CosOp  = define(Operator{Code: Cos, Glyph: "cos", ArgCount: 1, ResCount: 1, Commutative: true, inverse: Acos})
	AsinOp = define(Operator{Code: Asin, Glyph: "asin", ArgCount: 1, ResCount: 1, Commutative: true, inverse: Sin})
	AcosOp = define(Operator{Code: Acos, Glyph: "acos", ArgCount: 1, ResCount: 1, Commutative: true, inverse: Cos})

	PowOp  = define(Operator{Code: Pow, Glyph: "pow", ArgCount: 2, ResCount: 1, Commutative: false, inverse: IPow})
	IPowOp = define(Operator{Code: IPow, Glyph: "ipow", ArgCount: 2, ResCount: 1, Commutative: false, inverse: Pow})
)

// List is the full catalog, in wire-code order. Index i holds the
// Operator whose Code == i.
var List = [...]Operator{
	SwapOp, AddOp, SubOp, MulIntOp, MulOp, DivOp, DivFloorOp,
	SinOp, CosOp, AsinOp, AcosOp, PowOp, IPowOp,
}

// ByCode looks up an Operator by its stable wire Code.
func ByCode(c Code) (Operator, bool) {
	o, ok := byCode[c]
	return o, ok
}

// ByGlyph looks up an Operator by its textual glyph, as used by the
// string form of an Expression. "*" resolves to MulIntOp; callers that
// need float multiplication get it via group-fusion / Operator.Group,
// never via glyph lookup alone.
func ByGlyph(glyph string) (Operator, bool) {
	o, ok := byGlyph[glyph]
	return o, ok
}

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

// Package tracked implements the user-facing wrapper: a payload value
// plus the Location that accumulates its provenance. Every arithmetic
// operation either returns a new Tracked carrying an extended Expression
// or extends the receiver's Expression in place.
package tracked

import (
	"math"

	"github.com/sourcetrail/slt/config"
	"github.com/sourcetrail/slt/expr"
	"github.com/sourcetrail/slt/location"
	"github.com/sourcetrail/slt/locmgr"
	"github.com/sourcetrail/slt/operator"
)

// Scalar enumerates the payload types a Tracked can wrap: the five
// variants expr.Value tags, realized as concrete Go types at the API
// surface instead of a runtime tag.
type Scalar interface {
	int32 | int64 | float64 | complex128 | string
}

// Tracked wraps a payload value together with the Location that records
// how it was derived from some original source input.
type Tracked[T Scalar] struct {
	Raw T
	Loc *location.Location
	Mgr *locmgr.Manager
}

// New wraps raw at loc (a fresh, node-less Location if loc is nil),
// binding loc's back-reference to this wrapper so LocationManager.HandleGet
// can route a GetValue to it.
func New[T Scalar](raw T, loc *location.Location, mgr *locmgr.Manager) *Tracked[T] {
	if loc == nil {
		loc = location.New("")
	}
	t := &Tracked[T]{Raw: raw, Loc: loc, Mgr: mgr}
	loc.Ref = t
	return t
}

// CurrentValue implements locmgr.ValueSource. The value travels in the
// bare SetValue/GetValue string form, not the quoted expression-token
// form, so the peer can feed it straight back through read-time coercion.
func (t *Tracked[T]) CurrentValue() (string, bool) {
	return toValue(t.Raw).Raw(), true
}

// toValue widens a Scalar payload to the expr package's tagged Value.
func toValue[T Scalar](v T) expr.Value {
	switch x := any(v).(type) {
	case int32:
		return expr.Int32(x)
	case int64:
		return expr.Int64(x)
	case float64:
		return expr.Float64(x)
	case complex128:
		return expr.Complex128(x)
	case string:
		return expr.String(x)
	default:
		panic("tracked: unreachable Scalar variant")
	}
}

// fromValue narrows an expr.Value back to T, the way force-override
// coercion narrows a solved float back to the field's declared kind: an
// int-typed T rounds a non-integer result, everything else casts
// directly.
func fromValue[T Scalar](v expr.Value) T {
	var zero T
	switch any(zero).(type) {
	case int32:
		n := int32(v.Int)
		if !v.IsInt() {
			n = int32(math.Round(v.AsFloat()))
		}
		return any(n).(T)
	case int64:
		n := v.Int
		if !v.IsInt() {
			n = int64(math.Round(v.AsFloat()))
		}
		return any(n).(T)
	case float64:
		return any(v.AsFloat()).(T)
	case complex128:
		return any(v.AsComplex()).(T)
	case string:
		return any(v.Str).(T)
	default:
		panic("tracked: unreachable Scalar variant")
	}
}

// buffer assembles one "(operand [, SWAP], operator)" run:
// swap is emitted exactly when the wrapped value is the right-hand
// operand of a non-commutative application (the reflected form).
func buffer(operand expr.Value, op operator.Operator, swap bool) []expr.Element {
	elems := make([]expr.Element, 0, 3)
	elems = append(elems, expr.Lit(operand))
	if swap {
		elems = append(elems, expr.Op(operator.SwapOp))
	}
	elems = append(elems, expr.Op(op))
	return elems
}

// build evaluates buf against the receiver's current value and returns a
// new Tracked holding the result, with a Location that is the receiver's
// Location copied forward with buf appended to its Expression. The copy
// keeps the registered id and children, so a force applied to the
// derived value lands on the same registered slot as its source.
func (t *Tracked[T]) build(operand expr.Value, op operator.Operator, swap bool) (*Tracked[T], error) {
	buf := buffer(operand, op, swap)
	prog := expr.New(buf...)
	res, err := prog.Apply(toValue(t.Raw))
	if err != nil {
		return nil, err
	}
	newLoc := t.Loc.Copy(buf, true, true, true)
	return New(fromValue[T](res), newLoc, t.Mgr), nil
}

// update mutates in place, extending the receiver's own history.
func (t *Tracked[T]) update(operand expr.Value, op operator.Operator, swap bool) error {
	buf := buffer(operand, op, swap)
	prog := expr.New(buf...)
	res, err := prog.Apply(toValue(t.Raw))
	if err != nil {
		return err
	}
	if err := t.Loc.Expr.Append(buf, config.Current().ExprChain); err != nil {
		return err
	}
	t.Raw = fromValue[T](res)
	return nil
}

// Add returns a new Tracked for t + other.
func (t *Tracked[T]) Add(other T) (*Tracked[T], error) {
	return t.build(toValue(other), operator.AddOp, false)
}

// AddInPlace extends t's own history with + other.
func (t *Tracked[T]) AddInPlace(other T) error {
	return t.update(toValue(other), operator.AddOp, false)
}

// Sub returns a new Tracked for t - other.
func (t *Tracked[T]) Sub(other T) (*Tracked[T], error) {
	return t.build(toValue(other), operator.SubOp, false)
}

// RSub returns a new Tracked for other - t (the reflected form).
func (t *Tracked[T]) RSub(other T) (*Tracked[T], error) {
	return t.build(toValue(other), operator.SubOp, true)
}

// SubInPlace extends t's own history with - other.
func (t *Tracked[T]) SubInPlace(other T) error {
	return t.update(toValue(other), operator.SubOp, false)
}

// mulOp picks the integer-preserving multiplication variant whenever T
// is an integer Scalar (both operands always share T here, so the check
// is really "is T integral").
func (t *Tracked[T]) mulOp() operator.Operator {
	if toValue(t.Raw).IsInt() {
		return operator.MulIntOp
	}
	return operator.MulOp
}

// Mul returns a new Tracked for t * other.
func (t *Tracked[T]) Mul(other T) (*Tracked[T], error) {
	return t.build(toValue(other), t.mulOp(), false)
}

// MulInPlace extends t's own history with * other.
func (t *Tracked[T]) MulInPlace(other T) error {
	return t.update(toValue(other), t.mulOp(), false)
}

// Div returns a new Tracked for t / other (true division).
func (t *Tracked[T]) Div(other T) (*Tracked[T], error) {
	return t.build(toValue(other), operator.DivOp, false)
}

// RDiv returns a new Tracked for other / t.
func (t *Tracked[T]) RDiv(other T) (*Tracked[T], error) {
	return t.build(toValue(other), operator.DivOp, true)
}

// DivInPlace extends t's own history with / other.
func (t *Tracked[T]) DivInPlace(other T) error {
	return t.update(toValue(other), operator.DivOp, false)
}

// FloorDiv returns a new Tracked for t // other.
func (t *Tracked[T]) FloorDiv(other T) (*Tracked[T], error) {
	return t.build(toValue(other), operator.DivFloorOp, false)
}

// FloorDivInPlace extends t's own history with // other.
func (t *Tracked[T]) FloorDivInPlace(other T) error {
	return t.update(toValue(other), operator.DivFloorOp, false)
}

// Pow returns a new Tracked for t ** exponent.
func (t *Tracked[T]) Pow(exponent T) (*Tracked[T], error) {
	return t.build(toValue(exponent), operator.PowOp, false)
}

// IPow returns a new Tracked for the exponent-th root of t.
func (t *Tracked[T]) IPow(exponent T) (*Tracked[T], error) {
	return t.build(toValue(exponent), operator.IPowOp, false)
}

func (t *Tracked[T]) unary(op operator.Operator) (*Tracked[T], error) {
	prog := expr.New(expr.Op(op))
	res, err := prog.Apply(toValue(t.Raw))
	if err != nil {
		return nil, err
	}
	newLoc := t.Loc.Copy([]expr.Element{expr.Op(op)}, true, true, true)
	return New(fromValue[T](res), newLoc, t.Mgr), nil
}

// Sin, Cos, Asin, Acos return a new Tracked for the corresponding trig
// function of t. They are only meaningful when T is float64 (the trig
// operators' inverse only round-trips within |x|<1); callers
// tracking an integer or string payload through these get whatever
// expr.Apply's AsFloat widening produces, nothing more.
func (t *Tracked[T]) Sin() (*Tracked[T], error)  { return t.unary(operator.SinOp) }
func (t *Tracked[T]) Cos() (*Tracked[T], error)  { return t.unary(operator.CosOp) }
func (t *Tracked[T]) Asin() (*Tracked[T], error) { return t.unary(operator.AsinOp) }
func (t *Tracked[T]) Acos() (*Tracked[T], error) { return t.unary(operator.AcosOp) }

// Original recovers the source value this Tracked was ultimately derived
// from, by applying the reverse of its Location's Expression to its
// current raw value.
func (t *Tracked[T]) Original() (T, error) {
	rev := t.Loc.Expr.Reverse()
	v, err := rev.Apply(toValue(t.Raw))
	if err != nil {
		var zero T
		return zero, err
	}
	return fromValue[T](v), nil
}

// ReadForce substitutes a pending force override into the receiver's raw
// value, coercing it to T's kind and leaving the memoized override in
// place for the next read. It implements location.Reader, so tree reads
// routed through a parent Location's Ref reach this wrapper.
func (t *Tracked[T]) ReadForce() error {
	cur := toValue(t.Raw)
	v, err := t.Loc.Read(cur, cur.Kind)
	if err != nil {
		return err
	}
	t.Raw = fromValue[T](v)
	return nil
}

// ForceValue solves the receiver's Expression backwards for newValue
// and emits the result as a SetValue through the LocationManager,
// applied locally or published depending on which node owns the
// Location.
func (t *Tracked[T]) ForceValue(newValue T) error {
	if t.Mgr == nil {
		return ErrNoManager
	}
	if t.Loc.ID < 0 {
		return ErrUnregistered
	}
	rev := t.Loc.Expr.Reverse()
	solved, err := rev.Apply(toValue(newValue))
	if err != nil {
		return err
	}
	return t.Mgr.ChangeLocation(t.Loc.NodeName, t.Loc.ID, solved.Raw())
}

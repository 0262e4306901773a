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

package expr

import (
	"fmt"
	"math"
	"strings"

	"github.com/sourcetrail/slt/operator"
)

// Apply evaluates the postfix program with x pushed on an otherwise empty
// stack and returns the value left on top. Operators with insufficient
// arguments are skipped: a partial Expression never panics.
func (e *Expression) Apply(x Value) (Value, error) {
	if err := e.Err(); err != nil {
		return Value{}, err
	}
	stack := []Value{x}
	for _, el := range e.history {
		if !el.IsOp {
			stack = append(stack, el.Val)
			continue
		}
		var err error
		stack, err = step(stack, el.Op)
		if err != nil {
			return Value{}, err
		}
	}
	if len(stack) == 0 {
		return Value{}, fmt.Errorf("expr: empty stack after apply")
	}
	return stack[len(stack)-1], nil
}

// step applies a single Operator to the top of stack, in place, one
// case per operator.Code.
func step(stack []Value, op operator.Operator) ([]Value, error) {
	n := len(stack)
	if n < op.ArgCount {
		// tolerate a truncated/misapplied history: skip silently.
		return stack, nil
	}
	switch op.Code {
	case operator.Swap:
		stack[n-1], stack[n-2] = stack[n-2], stack[n-1]
		return stack, nil
	case operator.Add:
		v, err := evalAdd(stack[n-2], stack[n-1])
		if err != nil {
			return stack, err
		}
		stack[n-2] = v
		return stack[:n-1], nil
	case operator.Sub:
		v, err := evalSub(stack[n-2], stack[n-1])
		if err != nil {
			return stack, err
		}
		stack[n-2] = v
		return stack[:n-1], nil
	case operator.MulInt, operator.Mul:
		v, err := evalMul(stack[n-2], stack[n-1])
		if err != nil {
			return stack, err
		}
		stack[n-2] = v
		return stack[:n-1], nil
	case operator.Div:
		v, err := evalDiv(stack[n-2], stack[n-1], false)
		if err != nil {
			return stack, err
		}
		stack[n-2] = v
		return stack[:n-1], nil
	case operator.DivFloor:
		v, err := evalDiv(stack[n-2], stack[n-1], true)
		if err != nil {
			return stack, err
		}
		stack[n-2] = v
		return stack[:n-1], nil
	case operator.Sin:
		stack[n-1] = Float64(math.Sin(stack[n-1].AsFloat()))
		return stack, nil
	case operator.Cos:
		stack[n-1] = Float64(math.Cos(stack[n-1].AsFloat()))
		return stack, nil
	case operator.Asin:
		stack[n-1] = Float64(math.Asin(stack[n-1].AsFloat()))
		return stack, nil
	case operator.Acos:
		stack[n-1] = Float64(math.Acos(stack[n-1].AsFloat()))
		return stack, nil
	case operator.Pow:
		v, err := evalPow(stack[n-2], stack[n-1], false)
		if err != nil {
			return stack, err
		}
		stack[n-2] = v
		return stack[:n-1], nil
	case operator.IPow:
		v, err := evalPow(stack[n-2], stack[n-1], true)
		if err != nil {
			return stack, err
		}
		stack[n-2] = v
		return stack[:n-1], nil
	default:
		return stack, fmt.Errorf("expr: unknown operator code %d", op.Code)
	}
}

func evalAdd(a, b Value) (Value, error) {
	if a.IsString() || b.IsString() {
		if !(a.IsString() && b.IsString()) {
			return Value{}, fmt.Errorf("expr: %q + %q: string concatenation requires both operands to be strings", a.Kind, b.Kind)
		}
		return String(a.Str + b.Str), nil
	}
	return numericBinOp(a, b, func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y },
		func(x, y complex128) complex128 { return x + y }), nil
}

func evalSub(a, b Value) (Value, error) {
	if a.IsString() {
		if !b.IsString() {
			return Value{}, fmt.Errorf("expr: string subtraction requires a string right-hand side, got %v", b.Kind)
		}
		n := len(a.Str) - len(b.Str)
		if n < 0 {
			n = 0
		}
		return String(a.Str[:n]), nil
	}
	if b.IsString() {
		return Value{}, fmt.Errorf("expr: %v - string: unsupported", a.Kind)
	}
	return numericBinOp(a, b, func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y },
		func(x, y complex128) complex128 { return x - y }), nil
}

func evalMul(a, b Value) (Value, error) {
	// string * int / int * string: replicate the string.
	switch {
	case a.IsString() && b.IsInt():
		return String(strings.Repeat(a.Str, int(b.Int))), nil
	case b.IsString() && a.IsInt():
		return String(strings.Repeat(b.Str, int(a.Int))), nil
	case a.IsString() || b.IsString():
		return Value{}, fmt.Errorf("expr: string multiplication requires an integer operand")
	}
	return numericBinOp(a, b, func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y },
		func(x, y complex128) complex128 { return x * y }), nil
}

func evalDiv(a, b Value, floor bool) (Value, error) {
	if a.IsString() {
		if b.IsString() {
			return Value{}, fmt.Errorf("expr: string division requires a numeric right-hand side")
		}
		n := int(b.Int)
		if b.Kind == KindFloat64 {
			n = int(b.Float)
		}
		if n == 0 {
			return Value{}, fmt.Errorf("expr: string division by zero truncates to nothing: %w", ErrDestroyed)
		}
		cut := len(a.Str) / n
		if cut < 0 {
			cut = 0
		}
		if cut > len(a.Str) {
			cut = len(a.Str)
		}
		return String(a.Str[:cut]), nil
	}
	if b.IsString() {
		return Value{}, fmt.Errorf("expr: numeric / string: unsupported")
	}
	if a.IsInt() && b.IsInt() {
		if b.Int == 0 {
			return Value{}, fmt.Errorf("expr: integer division by zero: %w", ErrDestroyed)
		}
		if floor {
			q := a.Int / b.Int
			if (a.Int%b.Int != 0) && ((a.Int < 0) != (b.Int < 0)) {
				q--
			}
			return Int64(q), nil
		}
		if a.Int%b.Int == 0 {
			return Int64(a.Int / b.Int), nil
		}
		return Float64(float64(a.Int) / float64(b.Int)), nil
	}
	if a.Kind == KindComplex128 || b.Kind == KindComplex128 {
		if b.AsComplex() == 0 {
			return Value{}, fmt.Errorf("expr: complex division by zero: %w", ErrDestroyed)
		}
		return Complex128(a.AsComplex() / b.AsComplex()), nil
	}
	if b.AsFloat() == 0 {
		return Value{}, fmt.Errorf("expr: float division by zero: %w", ErrDestroyed)
	}
	r := a.AsFloat() / b.AsFloat()
	if floor {
		r = math.Floor(r)
	}
	return Float64(r), nil
}

func evalPow(a, b Value, inverse bool) (Value, error) {
	if a.IsString() || b.IsString() {
		return Value{}, fmt.Errorf("expr: pow does not support strings")
	}
	exp := b.AsFloat()
	if inverse {
		if exp == 0 {
			return Value{}, fmt.Errorf("expr: zeroth root is undefined: %w", ErrDestroyed)
		}
		exp = 1 / exp
	}
	if a.Kind == KindComplex128 {
		return Complex128(complexPow(a.AsComplex(), complex(exp, 0))), nil
	}
	return Float64(math.Pow(a.AsFloat(), exp)), nil
}

// applyBinary evaluates a single binary operator against two already-known
// values, the same dispatch simplify.go needs when it fuses two adjacent
// constants through an operator rather than walking a stack.
func applyBinary(op operator.Operator, a, b Value) (Value, error) {
	switch op.Code {
	case operator.Add:
		return evalAdd(a, b)
	case operator.Sub:
		return evalSub(a, b)
	case operator.MulInt, operator.Mul:
		return evalMul(a, b)
	case operator.Div:
		return evalDiv(a, b, false)
	case operator.DivFloor:
		return evalDiv(a, b, true)
	case operator.Pow:
		return evalPow(a, b, false)
	case operator.IPow:
		return evalPow(a, b, true)
	default:
		return Value{}, fmt.Errorf("expr: operator %q is not a fusible binary op", op.Glyph)
	}
}

func numericBinOp(a, b Value, intFn func(x, y int64) int64, floatFn func(x, y float64) float64, complexFn func(x, y complex128) complex128) Value {
	if a.Kind == KindComplex128 || b.Kind == KindComplex128 {
		return Complex128(complexFn(a.AsComplex(), b.AsComplex()))
	}
	if a.IsInt() && b.IsInt() {
		r := intFn(a.Int, b.Int)
		if r >= -2147483648 && r <= 2147483647 && a.Kind == KindInt32 && b.Kind == KindInt32 {
			return Int32(int32(r))
		}
		return Int64(r)
	}
	return Float64(floatFn(a.AsFloat(), b.AsFloat()))
}

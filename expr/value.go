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
	"strconv"
	"strings"
)

// Kind tags the scalar variant held by a Value. Dispatch on arithmetic is a
// single switch over the (Kind, Kind) pair of the two operands; there is no
// runtime reflection.
type Kind uint8

const (
	KindInt32 Kind = iota + 1
	KindInt64
	KindFloat64
	KindComplex128
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat64:
		return "float64"
	case KindComplex128:
		return "complex128"
	case KindString:
		return "string"
	default:
		return "invalid"
	}
}

// Value is the tagged variant carried by literal Elements and by the
// arguments/results of Operator application. Integers are kept as an exact
// int64 whatever their Kind, so that integer chains never lose precision
// to floating point. The Kind (int32 vs int64) picks the wire width (see
// message.go) and takes part in Equal; an integer arithmetic result stays
// int32 only when both operands are int32 and the result fits.
type Value struct {
	Kind    Kind
	Int     int64
	Float   float64
	Complex complex128
	Str     string
}

// Int32 builds an int32-tagged Value.
func Int32(v int32) Value { return Value{Kind: KindInt32, Int: int64(v)} }

// Int64 builds an int64-tagged Value.
func Int64(v int64) Value { return Value{Kind: KindInt64, Int: v} }

// Float64 builds a double-tagged Value.
func Float64(v float64) Value { return Value{Kind: KindFloat64, Float: v} }

// Complex128 builds a complex-tagged Value.
func Complex128(v complex128) Value { return Value{Kind: KindComplex128, Complex: v} }

// String builds a string-tagged Value.
func String(v string) Value { return Value{Kind: KindString, Str: v} }

// IsInt reports whether v holds an exact integer (either wire width).
func (v Value) IsInt() bool { return v.Kind == KindInt32 || v.Kind == KindInt64 }

// IsString reports whether v holds a string.
func (v Value) IsString() bool { return v.Kind == KindString }

// AsFloat returns v's numeric value widened to float64. It panics if v is a
// string; callers must check IsString first.
func (v Value) AsFloat() float64 {
	switch v.Kind {
	case KindInt32, KindInt64:
		return float64(v.Int)
	case KindFloat64:
		return v.Float
	case KindComplex128:
		return real(v.Complex)
	default:
		panic("expr: AsFloat of string value")
	}
}

// AsComplex returns v's numeric value widened to complex128.
func (v Value) AsComplex() complex128 {
	switch v.Kind {
	case KindComplex128:
		return v.Complex
	default:
		return complex(v.AsFloat(), 0)
	}
}

// Equal reports whether two Values carry the same kind and payload. Floats
// and complexes are compared exactly; callers needing tolerance
// compare the underlying numbers with their own epsilon.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindInt32, KindInt64:
		return v.Int == o.Int
	case KindFloat64:
		return v.Float == o.Float
	case KindComplex128:
		return v.Complex == o.Complex
	case KindString:
		return v.Str == o.Str
	}
	return false
}

// String renders the literal the way the Expression string form
// expects: integers and floats in decimal (floats always keep a '.' or an
// exponent, so they never read back as integers),
// complex numbers with a trailing 'j', and strings single-quoted.
func (v Value) String() string {
	switch v.Kind {
	case KindInt32, KindInt64:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat64:
		s := strconv.FormatFloat(v.Float, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case KindComplex128:
		re, im := real(v.Complex), imag(v.Complex)
		sign := "+"
		if im < 0 {
			sign = "-"
			im = -im
		}
		return fmt.Sprintf("%s%s%sj", formatFloatCompact(re), sign, formatFloatCompact(im))
	case KindString:
		return "'" + v.Str + "'"
	default:
		return ""
	}
}

func formatFloatCompact(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Raw renders the bare payload the way a SetValue/GetValue record carries
// it: no string-form token quoting, and complex numbers in the form
// strconv.ParseComplex reads back. Read-time coercion (location.Read) and
// ForceValue both speak this form; String is the expression-token form.
func (v Value) Raw() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindComplex128:
		return strconv.FormatComplex(v.Complex, 'g', -1, 128)
	default:
		return v.String()
	}
}

func jToI(r rune) rune {
	if r == 'j' || r == 'J' {
		return 'i'
	}
	return r
}

// parseLiteral turns a single string-form token (already known not to be an
// operator glyph) into a Value: quoted strings,
// complex literals containing 'j', float literals containing '.', and
// decimal integers as the fallback.
func parseLiteral(tok string) (Value, error) {
	if len(tok) >= 2 && (tok[0] == '\'' || tok[0] == '"') && tok[len(tok)-1] == tok[0] {
		return String(tok[1 : len(tok)-1]), nil
	}
	if strings.ContainsAny(tok, "jJ") {
		// strconv.ParseComplex only reads the 'i' suffix; the string form
		// carries the 'j' spelling.
		c, err := strconv.ParseComplex(strings.Map(jToI, tok), 128)
		if err != nil {
			return Value{}, fmt.Errorf("expr: invalid complex literal %q: %w", tok, err)
		}
		return Complex128(c), nil
	}
	if strings.ContainsAny(tok, ".eE") {
		f, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Value{}, fmt.Errorf("expr: invalid float literal %q: %w", tok, err)
		}
		return Float64(f), nil
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("expr: invalid integer literal %q: %w", tok, err)
	}
	if n >= -2147483648 && n <= 2147483647 {
		return Int32(int32(n)), nil
	}
	return Int64(n), nil
}

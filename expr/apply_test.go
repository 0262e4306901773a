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

package expr_test

import (
	"math"
	"testing"

	"github.com/sourcetrail/slt/expr"
	"github.com/sourcetrail/slt/operator"
)

func TestApplySimpleArithmetic(t *testing.T) {
	cases := []struct {
		name string
		prog expr.Expression
		x    expr.Value
		want expr.Value
	}{
		{"add", expr.New(expr.Lit(expr.Int32(3)), expr.Op(operator.AddOp)), expr.Int32(4), expr.Int32(7)},
		{"sub", expr.New(expr.Lit(expr.Int32(3)), expr.Op(operator.SubOp)), expr.Int32(10), expr.Int32(7)},
		{"mul", expr.New(expr.Lit(expr.Int32(3)), expr.Op(operator.MulIntOp)), expr.Int32(4), expr.Int32(12)},
		{"div-exact", expr.New(expr.Lit(expr.Int32(2)), expr.Op(operator.DivOp)), expr.Int32(10), expr.Int64(5)},
		{"div-float", expr.New(expr.Lit(expr.Int32(4)), expr.Op(operator.DivOp)), expr.Int32(10), expr.Float64(2.5)},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.prog.Apply(c.x)
			if err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if !got.Equal(c.want) {
				t.Errorf("Apply(%v) = %v, want %v", c.x, got, c.want)
			}
		})
	}
}

func TestApplyTruncatedHistoryTolerated(t *testing.T) {
	// A binary operator with only one value on the stack is skipped rather
	// than erroring.
	e := expr.New(expr.Op(operator.AddOp))
	got, err := e.Apply(expr.Int32(5))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !got.Equal(expr.Int32(5)) {
		t.Errorf("Apply = %v, want unchanged 5", got)
	}
}

func TestApplyDivisionByZeroErrors(t *testing.T) {
	e := expr.New(expr.Lit(expr.Int32(0)), expr.Op(operator.DivOp))
	if _, err := e.Apply(expr.Int32(10)); err == nil {
		t.Error("Apply should fail on division by zero")
	}
}

func TestApplyStringConcat(t *testing.T) {
	e := expr.New(expr.Lit(expr.String("world")), expr.Op(operator.AddOp))
	got, err := e.Apply(expr.String("hello "))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Str != "hello world" {
		t.Errorf("Apply = %q, want %q", got.Str, "hello world")
	}
}

func TestApplyTrig(t *testing.T) {
	e := expr.New(expr.Op(operator.SinOp))
	got, err := e.Apply(expr.Float64(0))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if math.Abs(got.AsFloat()) > 1e-12 {
		t.Errorf("sin(0) = %v, want ~0", got.AsFloat())
	}
}

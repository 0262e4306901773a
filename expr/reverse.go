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

import "github.com/sourcetrail/slt/operator"

// Reverse returns an Expression that computes the inverse function,
// segment by segment: it walks the history, cutting it at each operator
// boundary into runs of "(operand?, maybe-swap, operator)", inverts each
// run (emitting a SWAP ahead of a commutative operator's inverse when the
// run itself was swap-flagged, or leaving a non-commutative operator
// as-is when a preceding swap already flipped its operand order), and
// concatenates the runs back together in reverse order.
func (e *Expression) Reverse() Expression {
	e.Unpack()

	var part []Element
	var parts [][]Element
	swapMode := false

	for _, cur := range e.history {
		if cur.IsOp {
			var emitted operator.Operator
			if cur.Op.Commutative {
				if swapMode {
					part = append(part, Op(operator.SwapOp))
				}
				part = append(part, Op(cur.Op.Inverse()))
				emitted = cur.Op // the loop variable itself is not reassigned
			} else {
				op := cur.Op
				if !swapMode {
					op = op.Inverse()
				}
				part = append(part, Op(op))
				emitted = op
			}
			swapMode = emitted.Code == operator.Swap
			if !swapMode {
				parts = append(parts, part)
				part = nil
			}
		} else {
			part = append(part, cur)
			swapMode = false
		}
	}

	var out []Element
	for i := len(parts) - 1; i >= 0; i-- {
		out = append(out, parts[i]...)
	}
	return Expression{history: out}
}

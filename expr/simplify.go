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

// Append grows the Expression's history with a new "(operand [, SWAP],
// operator)" run, the same trailing shape a Tracked arithmetic overload
// hands to its owning Expression. When chain is true it algebraically
// simplifies the join against whatever the history already ends with:
// absorbing a new operand that is the incoming operator's neutral element,
// or fusing two adjacent same-group operators (e.g. "+3;+5" -> "+8") into
// one, possibly collapsing the whole tail away when the fused constant is
// itself neutral. When chain is false the run is appended verbatim.
func (e *Expression) Append(buffer []Element, chain bool) error {
	e.Unpack()
	if err := e.err; err != nil {
		return err
	}
	history, err := appendBuffer(e.history, buffer, chain)
	if err != nil {
		return err
	}
	e.history = history
	return nil
}

// isSwap reports whether el is the SWAP operator element.
func isSwap(el Element) bool {
	return el.IsOp && el.Op.Code == operator.Swap
}

// valueEqualsNeutral compares v against an operator's neutral constant.
// Neutral elements are only ever defined for arithmetic operators, so a
// string operand simply never matches.
func valueEqualsNeutral(v Value, op operator.Operator) bool {
	if !op.HasNeutral || v.IsString() {
		return false
	}
	return v.AsFloat() == op.Neutral
}

// appendBuffer peels one "(operand [, SWAP], operator)" run off buffer,
// simplifies it against the tail of history when chain is enabled, and
// recurses on whatever of
// buffer remains (normally nothing - Tracked only ever hands over a
// single run, but the algorithm is general).
func appendBuffer(history, buffer []Element, chain bool) ([]Element, error) {
	if len(buffer) == 0 {
		return history, nil
	}

	if chain && len(buffer) > 1 {
		newSwap := isSwap(buffer[1])
		opNewIdx := 1
		if newSwap {
			opNewIdx = 2
		}
		if opNewIdx < len(buffer) && buffer[opNewIdx].IsOp {
			opNew := buffer[opNewIdx].Op
			operand := buffer[0].Val

			// Neutral absorption: appending "+0", "*1", etc. is a no-op.
			if (!newSwap || opNew.Commutative) && valueEqualsNeutral(operand, opNew) {
				return appendBuffer(history, buffer[opNewIdx+1:], chain)
			}

			if fused, ok, err := fuseWithTail(history, operand, opNew, newSwap); err != nil {
				return nil, err
			} else if ok {
				return appendBuffer(fused, buffer[opNewIdx+1:], chain)
			}
		}
	}

	// No fusion applied: append one run - operand through its first
	// operator (a bare trailing operand with no operator at all counts as
	// the whole remainder) - verbatim, and recurse on whatever follows.
	cut := len(buffer)
	for i, el := range buffer {
		if el.IsOp {
			cut = i + 1
			break
		}
	}
	history = append(history, buffer[:cut]...)
	return appendBuffer(history, buffer[cut:], chain)
}

// fuseWithTail attempts to fuse (operand, opNew[, preceded by SWAP]) into
// history's trailing operator run, when that run's operator shares opNew's
// fusion Group. Returns ok=false when history doesn't end in a fusible
// operator run, leaving the caller to append the run unsimplified.
func fuseWithTail(history []Element, operand Value, opNew operator.Operator, newSwap bool) ([]Element, bool, error) {
	n := len(history)
	if n < 2 {
		return nil, false, nil
	}
	last := history[n-1]
	if !last.IsOp || last.Op.Group == 0 || last.Op.Group != opNew.Group {
		return nil, false, nil
	}
	opChain := last.Op
	chainSwap := isSwap(history[n-2])
	if !chainSwap && history[n-2].IsOp {
		// history[-2] is neither the operand slot nor a SWAP marker: not
		// the shape this fusion recognizes.
		return nil, false, nil
	}

	out := append([]Element(nil), history...)

	if chainSwap {
		// out = [..., chainOperand, SWAP, opChain] -> drop opChain, fold
		// operand into the SWAP slot, combine the trailing pair with
		// opNew, then re-emit a SWAP ahead of whichever operator
		// continues the chain.
		out = out[:n-1] // drop opChain
		out[len(out)-1] = Lit(operand)
		if newSwap {
			last := len(out) - 1
			out[last], out[last-1] = out[last-1], out[last]
		}
		a, b := out[len(out)-2].Val, out[len(out)-1].Val
		res, err := applyBinary(opNew, a, b)
		if err != nil {
			return nil, false, err
		}
		out = out[:len(out)-1]
		out[len(out)-1] = Lit(res)
		out = append(out, Op(operator.SwapOp))
	} else {
		// out = [..., chainOperand, opChain] -> drop opChain's slot,
		// replacing it with the new operand, combine via opNew (or its
		// inverse when opChain is non-commutative, since the two
		// operands are arriving in reverse application order).
		out[len(out)-1] = Lit(operand)
		if newSwap {
			last := len(out) - 1
			out[last], out[last-1] = out[last-1], out[last]
		}
		a, b := out[len(out)-2].Val, out[len(out)-1].Val
		fn := opNew
		if !opChain.Commutative {
			fn = opNew.Inverse()
		}
		res, err := applyBinary(fn, a, b)
		if err != nil {
			return nil, false, err
		}
		out = out[:len(out)-1]
		out[len(out)-1] = Lit(res)
		if newSwap {
			out = append(out, Op(operator.SwapOp))
		}
	}

	// Continue the chain with whichever operator now governs the fused
	// constant: when the new run was swapped, op_new (or its inverse, when
	// the chain run was swapped too and its operator is a negate-style op);
	// otherwise the original chain operator.
	if newSwap {
		if chainSwap && opChain.Negate {
			out = append(out, Op(opNew.Inverse()))
		} else {
			out = append(out, Op(opNew))
		}
	} else {
		out = append(out, Op(opChain))
	}

	// Re-check neutrality: the fusion may have produced a constant that
	// makes the whole trailing run a no-op (e.g. "+3;-3" -> "+0" -> drop).
	tailOp := out[len(out)-1].Op
	if chainSwap || newSwap {
		if len(out) >= 3 && tailOp.Commutative && valueEqualsNeutral(out[len(out)-3].Val, tailOp) {
			out = out[:len(out)-3]
		}
	} else if len(out) >= 2 && valueEqualsNeutral(out[len(out)-2].Val, tailOp) {
		out = out[:len(out)-2]
	}

	return out, true, nil
}

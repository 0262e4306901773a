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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/sourcetrail/slt/operator"
	"github.com/sourcetrail/slt/wire"
)

// ToMessage serializes the Expression to its binary wire form.
// asString forces the STRING/STRING_ZLIB framing (the "msg_str" config
// knob); cfg gates generic compression.
func (e *Expression) ToMessage(asString bool, cfg wire.CompressionConfig) (wire.ExpressionMessage, error) {
	if asString {
		return wire.PackExpression(nil, []byte(e.String()), true, cfg)
	}
	e.Unpack()
	if err := e.err; err != nil {
		return wire.ExpressionMessage{}, err
	}

	elements := make([]byte, 0, len(e.history))
	var data bytes.Buffer
	for _, el := range e.history {
		if el.IsOp {
			elements = append(elements, wire.OperatorTagBase+byte(el.Op.Code))
			continue
		}
		tag, err := encodeLiteral(&data, el.Val)
		if err != nil {
			return wire.ExpressionMessage{}, err
		}
		elements = append(elements, tag)
	}
	return wire.PackExpression(elements, data.Bytes(), false, cfg)
}

// FromMessage builds a packed Expression from its wire form. The
// history is not parsed until the Expression is first touched (Unpack,
// Len, Apply, Reverse, ...).
func FromMessage(msg wire.ExpressionMessage) Expression {
	return Expression{packedWire: &packedWireForm{
		elements:     msg.Elements,
		data:         msg.Data,
		compression:  uint8(msg.Compression),
		elementsSize: msg.ElementsSize,
		dataSize:     msg.DataSize,
	}}
}

// unpackWire materializes the history from a still-compressed/typed-stream
// wire form, inverting ToMessage.
func (e *Expression) unpackWire(p *packedWireForm) {
	elements, data, stringForm, err := wire.UnpackExpression(wire.ExpressionMessage{
		Elements:     p.elements,
		Data:         p.data,
		Compression:  wire.Compression(p.compression),
		ElementsSize: p.elementsSize,
		DataSize:     p.dataSize,
	})
	if err != nil {
		e.err = err
		return
	}
	if stringForm {
		e.unpackString(string(data))
		return
	}

	r := bytes.NewReader(data)
	for _, tag := range elements {
		if tag >= wire.OperatorTagBase {
			code := operator.Code(tag - wire.OperatorTagBase)
			op, ok := operator.ByCode(code)
			if !ok {
				e.err = fmt.Errorf("expr: unknown wire operator code %d", code)
				return
			}
			e.history = append(e.history, Op(op))
			continue
		}
		v, err := decodeLiteral(r, tag)
		if err != nil {
			e.err = err
			return
		}
		e.history = append(e.history, Lit(v))
	}
}

// encodeLiteral appends v's payload to data (little-endian) and
// returns its elements-array tag. The integer width follows the Value's
// own Kind: an Int64 is written as a full 8-byte payload even when its
// value would fit in 32 bits; no range check narrows or widens it.
func encodeLiteral(data *bytes.Buffer, v Value) (byte, error) {
	switch v.Kind {
	case KindInt32:
		if err := binary.Write(data, binary.LittleEndian, int32(v.Int)); err != nil {
			return 0, err
		}
		return wire.TagInt32, nil
	case KindInt64:
		if err := binary.Write(data, binary.LittleEndian, v.Int); err != nil {
			return 0, err
		}
		return wire.TagInt64, nil
	case KindFloat64:
		if err := binary.Write(data, binary.LittleEndian, v.Float); err != nil {
			return 0, err
		}
		return wire.TagDouble, nil
	case KindComplex128:
		if err := binary.Write(data, binary.LittleEndian, real(v.Complex)); err != nil {
			return 0, err
		}
		if err := binary.Write(data, binary.LittleEndian, imag(v.Complex)); err != nil {
			return 0, err
		}
		return wire.TagComplex, nil
	case KindString:
		b := []byte(v.Str)
		if err := binary.Write(data, binary.LittleEndian, uint32(len(b))); err != nil {
			return 0, err
		}
		data.Write(b)
		return wire.TagString, nil
	default:
		return 0, fmt.Errorf("expr: cannot encode value of kind %v", v.Kind)
	}
}

// decodeLiteral reads one literal payload from r according to tag.
func decodeLiteral(r *bytes.Reader, tag byte) (Value, error) {
	switch tag {
	case wire.TagInt32:
		var n int32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Value{}, fmt.Errorf("expr: decode int32 literal: %w", err)
		}
		return Int32(n), nil
	case wire.TagInt64:
		var n int64
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Value{}, fmt.Errorf("expr: decode int64 literal: %w", err)
		}
		return Int64(n), nil
	case wire.TagDouble:
		var f float64
		if err := binary.Read(r, binary.LittleEndian, &f); err != nil {
			return Value{}, fmt.Errorf("expr: decode float64 literal: %w", err)
		}
		return Float64(f), nil
	case wire.TagComplex:
		var re, im float64
		if err := binary.Read(r, binary.LittleEndian, &re); err != nil {
			return Value{}, fmt.Errorf("expr: decode complex literal: %w", err)
		}
		if err := binary.Read(r, binary.LittleEndian, &im); err != nil {
			return Value{}, fmt.Errorf("expr: decode complex literal: %w", err)
		}
		return Complex128(complex(re, im)), nil
	case wire.TagString:
		var n uint32
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return Value{}, fmt.Errorf("expr: decode string literal length: %w", err)
		}
		b := make([]byte, n)
		if _, err := r.Read(b); err != nil {
			return Value{}, fmt.Errorf("expr: decode string literal body: %w", err)
		}
		return String(string(b)), nil
	default:
		return Value{}, fmt.Errorf("expr: unknown literal tag %d", tag)
	}
}

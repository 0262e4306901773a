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

// Command sltdump loads an Expression from its string form or a binary
// wire file, prints a disassembly-style listing of its elements, and
// optionally applies or reverse-applies it against a supplied scalar.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/sourcetrail/slt/expr"
	"github.com/sourcetrail/slt/wire"
)

func main() {
	str := flag.String("str", "", "load an Expression from its string form")
	binFile := flag.String("bin", "", "load an Expression from a binary wire `file`")
	outFile := flag.String("o", "", "write the loaded Expression back out as a binary wire `file`")
	applyTo := flag.String("x", "", "apply (and, if -reverse is set, reverse-apply) the Expression to this scalar")
	reverse := flag.Bool("reverse", false, "also print and exercise the reversed Expression")
	flag.Parse()

	var e expr.Expression
	switch {
	case *str != "":
		e = expr.FromString(*str)
	case *binFile != "":
		msg, err := loadMessage(*binFile)
		if err != nil {
			fatal(err)
		}
		e = expr.FromMessage(msg)
	default:
		fatal(errors.New("one of -str or -bin is required"))
	}

	if err := e.Err(); err != nil {
		fatal(errors.Wrap(err, "parsing expression"))
	}

	disassemble(&e)

	if *outFile != "" {
		msg, err := e.ToMessage(false, wire.CompressionConfig{})
		if err != nil {
			fatal(errors.Wrap(err, "serializing expression"))
		}
		if err := saveMessage(*outFile, msg); err != nil {
			fatal(err)
		}
	}

	if *applyTo == "" {
		return
	}
	x, err := parseScalar(*applyTo)
	if err != nil {
		fatal(errors.Wrap(err, "parsing -x"))
	}
	result, err := e.Apply(x)
	if err != nil {
		fatal(errors.Wrap(err, "apply"))
	}
	fmt.Printf("apply(%s) = %s\n", x.String(), result.String())

	if *reverse {
		rev := e.Reverse()
		fmt.Printf("reversed: %s\n", rev.String())
		back, err := rev.Apply(result)
		if err != nil {
			fatal(errors.Wrap(err, "reverse apply"))
		}
		fmt.Printf("reverse.apply(%s) = %s\n", result.String(), back.String())
	}
}

func disassemble(e *expr.Expression) {
	for i, el := range e.Elements() {
		if el.IsOp {
			fmt.Printf("%4d  %s\n", i, el.Op.Glyph)
			continue
		}
		fmt.Printf("%4d  lit %s\n", i, el.Val.String())
	}
}

func parseScalar(s string) (expr.Value, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return expr.Int64(n), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return expr.Float64(f), nil
	}
	return expr.String(s), nil
}

// loadMessage/saveMessage frame an ExpressionMessage on disk: a fixed
// header of little-endian fields followed by the two payload byte arrays.
func loadMessage(name string) (wire.ExpressionMessage, error) {
	f, err := os.Open(name)
	if err != nil {
		return wire.ExpressionMessage{}, err
	}
	defer f.Close()

	var header struct {
		Compression  uint8
		ElementsSize uint32
		DataSize     uint32
		ElementsLen  uint32
		DataLen      uint32
	}
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return wire.ExpressionMessage{}, errors.Wrap(err, "reading header")
	}
	elements := make([]byte, header.ElementsLen)
	if err := binary.Read(f, binary.LittleEndian, elements); err != nil {
		return wire.ExpressionMessage{}, errors.Wrap(err, "reading elements")
	}
	data := make([]byte, header.DataLen)
	if err := binary.Read(f, binary.LittleEndian, data); err != nil {
		return wire.ExpressionMessage{}, errors.Wrap(err, "reading data")
	}
	return wire.ExpressionMessage{
		Elements:     elements,
		Data:         data,
		Compression:  wire.Compression(header.Compression),
		ElementsSize: header.ElementsSize,
		DataSize:     header.DataSize,
	}, nil
}

func saveMessage(name string, msg wire.ExpressionMessage) error {
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return err
	}
	defer f.Close()

	header := struct {
		Compression  uint8
		ElementsSize uint32
		DataSize     uint32
		ElementsLen  uint32
		DataLen      uint32
	}{
		Compression:  uint8(msg.Compression),
		ElementsSize: msg.ElementsSize,
		DataSize:     msg.DataSize,
		ElementsLen:  uint32(len(msg.Elements)),
		DataLen:      uint32(len(msg.Data)),
	}
	if err := binary.Write(f, binary.LittleEndian, header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := binary.Write(f, binary.LittleEndian, msg.Elements); err != nil {
		return errors.Wrap(err, "writing elements")
	}
	return errors.Wrap(binary.Write(f, binary.LittleEndian, msg.Data), "writing data")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "sltdump: %+v\n", err)
	os.Exit(1)
}

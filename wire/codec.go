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

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// CompressionConfig gates the generic compression step. It is the
// wire-facing projection of the process-wide config package's
// zlib_enable/zlib_level/zlib_threshold settings.
type CompressionConfig struct {
	Enable    bool
	Level     int
	Threshold int
}

// PackExpression frames already-serialized elements/data arrays into an
// ExpressionMessage, applying generic deflate when cfg allows it and the
// larger of the two arrays exceeds cfg.Threshold. stringForm selects the
// STRING/STRING_ZLIB tags over the typed-element ones.
func PackExpression(elements, data []byte, stringForm bool, cfg CompressionConfig) (ExpressionMessage, error) {
	msg := ExpressionMessage{
		ElementsSize: uint32(len(elements)),
		DataSize:     uint32(len(data)),
	}

	tag := CompressionNone
	if stringForm {
		tag = CompressionString
	}

	biggest := len(elements)
	if len(data) > biggest {
		biggest = len(data)
	}
	if cfg.Enable && biggest > cfg.Threshold {
		ce, err := deflate(elements, cfg.Level)
		if err != nil {
			return ExpressionMessage{}, fmt.Errorf("wire: compress elements: %w", err)
		}
		cd, err := deflate(data, cfg.Level)
		if err != nil {
			return ExpressionMessage{}, fmt.Errorf("wire: compress data: %w", err)
		}
		elements, data = ce, cd
		tag |= CompressionZlib
	}

	msg.Elements = elements
	msg.Data = data
	msg.Compression = tag
	return msg, nil
}

// UnpackExpression inverts PackExpression: it decompresses when the ZLIB
// bit is set (recovering the original sizes from ElementsSize/DataSize)
// and reports whether the payload is the STRING form.
func UnpackExpression(msg ExpressionMessage) (elements, data []byte, stringForm bool, err error) {
	elements, data = msg.Elements, msg.Data
	if msg.Compression&CompressionZlib != 0 {
		elements, err = inflate(elements, int(msg.ElementsSize))
		if err != nil {
			return nil, nil, false, fmt.Errorf("wire: decompress elements: %w", err)
		}
		data, err = inflate(data, int(msg.DataSize))
		if err != nil {
			return nil, nil, false, fmt.Errorf("wire: decompress data: %w", err)
		}
	}
	stringForm = msg.Compression&CompressionString != 0
	return elements, data, stringForm, nil
}

// deflate zlib-compresses src at level.
func deflate(src []byte, level int) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// inflate zlib-decompresses src, preallocating to the known pre-compression
// size recorded alongside it.
func inflate(src []byte, size int) ([]byte, error) {
	if len(src) == 0 {
		return nil, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out := make([]byte, 0, size)
	buf := bytes.NewBuffer(out)
	if _, err := io.Copy(buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

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

// Package wire defines the on-the-wire message schemas and the binary
// framing around them: the typed element stream an Expression serializes
// to, the flattened LocationHeader tree, and the small request/response
// records a transport ferries between processes.
package wire

// Compression tags an ExpressionMessage's elements/data payload. The low
// bit marks deflate framing; the next bit marks "string form rather than
// typed elements".
type Compression uint8

const (
	CompressionNone       Compression = 0
	CompressionZlib       Compression = 1
	CompressionString     Compression = 2
	CompressionStringZlib Compression = 3
)

func (c Compression) String() string {
	as := c & CompressionString
	zl := c & CompressionZlib
	switch {
	case as != 0 && zl != 0:
		return "string+zlib"
	case as != 0:
		return "string"
	case zl != 0:
		return "zlib"
	default:
		return "none"
	}
}

// Typed literal tags for the elements byte array. Operator codes never
// exceed 63 (operator.Code is declared u8<64 for exactly this reason), so
// adding 64 disambiguates a literal tag from an operator code sharing the
// same byte stream.
const (
	TagInt32   byte = 1
	TagInt64   byte = 2
	TagDouble  byte = 3
	TagComplex byte = 4
	TagString  byte = 5

	OperatorTagBase byte = 64
)

// ExpressionMessage is the wire schema for a serialized Expression.
type ExpressionMessage struct {
	Elements     []byte
	Data         []byte
	Compression  Compression
	ElementsSize uint32
	DataSize     uint32
}

// LocationMessage is one flattened tree node, where Node indexes into
// the owning LocationHeaderMessage.Nodes list.
type LocationMessage struct {
	ID   int32
	Node uint32
	Name string
	Expr ExpressionMessage
}

// LocationHeaderMessage is the flattened Location tree: a
// deduplicated node-name table, the per-location records, and an edge
// list of interleaved (parent_index, child_index) pairs. Locations[0] is
// always the root.
type LocationHeaderMessage struct {
	Nodes     []string
	Locations []LocationMessage
	Graph     []uint32
}

// SetValueMessage is published to force a new value onto a registered
// Location, on the `/slt_set` topic.
type SetValueMessage struct {
	Node     string
	Location int32
	Value    string
}

// GetValueRequest/GetValueResponse are the `<node_name>/slt_get` service
// pair.
type GetValueRequest struct {
	Location int32
}

type GetValueResponse struct {
	Value string
	Valid bool
}

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

package location_test

import (
	"testing"

	"github.com/sourcetrail/slt/expr"
	"github.com/sourcetrail/slt/location"
	"github.com/sourcetrail/slt/operator"
	"github.com/sourcetrail/slt/wire"
)

func buildTree() *location.Location {
	root := location.New("node-a")
	root.Expr = expr.New(expr.Lit(expr.Int32(1)))
	root.ID = 0
	x := root.Child("x")
	x.Expr = expr.New(expr.Lit(expr.Int32(2)), expr.Op(operator.AddOp))
	x.ID = 1
	y := root.Child("y")
	y.Expr = expr.New(expr.Lit(expr.Int32(3)))
	y.ID = 2
	return root
}

func TestHeaderRoundTrip(t *testing.T) {
	root := buildTree()
	msg, err := root.HeaderCreate(false, wire.CompressionConfig{})
	if err != nil {
		t.Fatalf("HeaderCreate: %v", err)
	}
	if len(msg.Locations) != 3 {
		t.Fatalf("len(Locations) = %d, want 3", len(msg.Locations))
	}

	back, err := location.FromHeader(msg)
	if err != nil {
		t.Fatalf("FromHeader: %v", err)
	}
	if back.NodeName != "node-a" || back.ID != 0 {
		t.Errorf("root mismatch: %+v", back)
	}
	x, ok := back.Content["x"]
	if !ok {
		t.Fatal("reconstructed tree missing child x")
	}
	if got, want := x.Expr.String(), "2;+"; got != want {
		t.Errorf("child x expr = %q, want %q", got, want)
	}
	if x.ID != 1 {
		t.Errorf("child x ID = %d, want 1", x.ID)
	}
}

func TestHeaderRoundTripDeterministic(t *testing.T) {
	root := buildTree()
	m1, err := root.HeaderCreate(false, wire.CompressionConfig{})
	if err != nil {
		t.Fatalf("HeaderCreate: %v", err)
	}
	m2, err := root.HeaderCreate(false, wire.CompressionConfig{})
	if err != nil {
		t.Fatalf("HeaderCreate: %v", err)
	}
	if len(m1.Graph) != len(m2.Graph) {
		t.Fatal("two serializations of the same tree should agree on edge count")
	}
	for i := range m1.Graph {
		if m1.Graph[i] != m2.Graph[i] {
			t.Errorf("edge %d differs between two serializations: %d != %d", i, m1.Graph[i], m2.Graph[i])
		}
	}
}

func TestFromHeaderRejectsEmptyLocations(t *testing.T) {
	_, err := location.FromHeader(wire.LocationHeaderMessage{})
	if err == nil {
		t.Fatal("FromHeader should reject an empty Locations list")
	}
}

func TestFromHeaderRejectsOddGraph(t *testing.T) {
	msg := wire.LocationHeaderMessage{
		Nodes:     []string{"n"},
		Locations: []wire.LocationMessage{{Node: 0}},
		Graph:     []uint32{0},
	}
	if _, err := location.FromHeader(msg); err == nil {
		t.Fatal("FromHeader should reject an odd-length graph edge list")
	}
}

func TestFromHeaderRejectsMultipleParents(t *testing.T) {
	msg := wire.LocationHeaderMessage{
		Nodes: []string{"n"},
		Locations: []wire.LocationMessage{
			{Node: 0, Name: ""},
			{Node: 0, Name: "a"},
			{Node: 0, Name: "b"},
		},
		Graph: []uint32{0, 2, 1, 2},
	}
	if _, err := location.FromHeader(msg); err == nil {
		t.Fatal("FromHeader should reject a node with more than one parent")
	}
}

func TestFromHeaderRejectsUnreachableNode(t *testing.T) {
	msg := wire.LocationHeaderMessage{
		Nodes: []string{"n"},
		Locations: []wire.LocationMessage{
			{Node: 0, Name: ""},
			{Node: 0, Name: "orphan"},
		},
		// no edges at all: node 1 is never reached from the root.
	}
	if _, err := location.FromHeader(msg); err == nil {
		t.Fatal("FromHeader should reject a node unreachable from the root")
	}
}

func TestFromHeaderRejectsOutOfRangeNodeIndex(t *testing.T) {
	msg := wire.LocationHeaderMessage{
		Nodes:     []string{"n"},
		Locations: []wire.LocationMessage{{Node: 5}},
	}
	if _, err := location.FromHeader(msg); err == nil {
		t.Fatal("FromHeader should reject an out-of-range node index")
	}
}

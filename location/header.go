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

package location

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sourcetrail/slt/expr"
	"github.com/sourcetrail/slt/wire"
)

// ErrMalformedHeader is raised by FromHeader
// when a wire.LocationHeaderMessage does not describe a valid forest
// rooted at index 0.
var ErrMalformedHeader = errors.New("location: malformed header")

// HeaderCreate linearizes the tree rooted at l into its wire form: a
// deduplicated node-name table, one record per node, and an edge list of
// interleaved (parent_index, child_index) pairs with l at index 0.
func (l *Location) HeaderCreate(asString bool, comp wire.CompressionConfig) (wire.LocationHeaderMessage, error) {
	msg := wire.LocationHeaderMessage{}
	nodeIdx := make(map[string]uint32)
	if err := l.HeaderWrite(&msg, nodeIdx, -1, "", asString, comp); err != nil {
		return wire.LocationHeaderMessage{}, err
	}
	return msg, nil
}

// HeaderWrite appends this node (and, recursively, its children) onto an
// in-progress message. parentIdx is -1 for the root; name is this node's
// key in its parent's Content map (ignored for the root).
func (l *Location) HeaderWrite(msg *wire.LocationHeaderMessage, nodeIdx map[string]uint32, parentIdx int, name string, asString bool, comp wire.CompressionConfig) error {
	ni, ok := nodeIdx[l.NodeName]
	if !ok {
		ni = uint32(len(msg.Nodes))
		msg.Nodes = append(msg.Nodes, l.NodeName)
		nodeIdx[l.NodeName] = ni
	}

	em, err := l.Expr.ToMessage(asString, comp)
	if err != nil {
		return fmt.Errorf("location: serializing node %q: %w", name, err)
	}

	selfIdx := len(msg.Locations)
	msg.Locations = append(msg.Locations, wire.LocationMessage{
		ID:   int32(l.ID),
		Node: ni,
		Name: name,
		Expr: em,
	})
	if parentIdx >= 0 {
		msg.Graph = append(msg.Graph, uint32(parentIdx), uint32(selfIdx))
	}

	// Children are written in name order so two processes serializing the
	// same tree produce byte-identical headers (Go map iteration order is
	// randomized; nothing in the schema depends on insertion order).
	names := make([]string, 0, len(l.Content))
	for n := range l.Content {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := l.Content[n].HeaderWrite(msg, nodeIdx, selfIdx, n, asString, comp); err != nil {
			return err
		}
	}
	return nil
}

// FromHeader reconstructs the tree a HeaderCreate call produced. Each
// node's Expression is left in its packed wire form; it is not
// unpacked until first touched. An empty Locations list, an out-of-range
// Node/parent/child index, a child with more than one parent, or a graph
// that doesn't reach every node from index 0 is a malformed header and
// returns ErrMalformedHeader.
func FromHeader(msg wire.LocationHeaderMessage) (*Location, error) {
	if len(msg.Locations) == 0 {
		return nil, fmt.Errorf("%w: empty locations list", ErrMalformedHeader)
	}
	if len(msg.Graph)%2 != 0 {
		return nil, fmt.Errorf("%w: odd-length graph edge list", ErrMalformedHeader)
	}

	nodes := make([]*Location, len(msg.Locations))
	for i, lm := range msg.Locations {
		if int(lm.Node) >= len(msg.Nodes) {
			return nil, fmt.Errorf("%w: location %d references out-of-range node %d", ErrMalformedHeader, i, lm.Node)
		}
		nodes[i] = &Location{
			NodeName: msg.Nodes[lm.Node],
			ID:       int(lm.ID),
			Expr:     expr.FromMessage(lm.Expr),
		}
	}

	parentOf := make([]int, len(nodes))
	for i := range parentOf {
		parentOf[i] = -1
	}
	for i := 0; i < len(msg.Graph); i += 2 {
		p, c := int(msg.Graph[i]), int(msg.Graph[i+1])
		if p < 0 || p >= len(nodes) || c < 0 || c >= len(nodes) {
			return nil, fmt.Errorf("%w: edge (%d,%d) out of range", ErrMalformedHeader, p, c)
		}
		if parentOf[c] != -1 {
			return nil, fmt.Errorf("%w: node %d has more than one parent", ErrMalformedHeader, c)
		}
		parentOf[c] = p
		parent := nodes[p]
		if parent.Content == nil {
			parent.Content = make(map[string]*Location)
		}
		parent.Content[msg.Locations[c].Name] = nodes[c]
	}

	if parentOf[0] != -1 {
		return nil, fmt.Errorf("%w: index 0 is not the root", ErrMalformedHeader)
	}
	reached := make([]bool, len(nodes))
	var walk func(i int) error
	walk = func(i int) error {
		if reached[i] {
			return fmt.Errorf("%w: cycle through node %d", ErrMalformedHeader, i)
		}
		reached[i] = true
		for _, c := range nodes[i].Content {
			idx := indexOf(nodes, c)
			if err := walk(idx); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(0); err != nil {
		return nil, err
	}
	for i, ok := range reached {
		if !ok {
			return nil, fmt.Errorf("%w: node %d is not reachable from the root", ErrMalformedHeader, i)
		}
	}

	return nodes[0], nil
}

func indexOf(nodes []*Location, target *Location) int {
	for i, n := range nodes {
		if n == target {
			return i
		}
	}
	return -1
}

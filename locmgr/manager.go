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

// Package locmgr implements the LocationManager: a dense,
// id-indexed vector of Locations, a memoized source-coordinate to
// Location map, and the handlers that route SetValue/GetValue traffic
// either straight into the local tree or out through a transport.
package locmgr

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/sourcetrail/slt/location"
	"github.com/sourcetrail/slt/slog"
	"github.com/sourcetrail/slt/wire"
)

// ErrTransportClosed is returned when a Manager built with no Publisher
// or Requester is asked to reach a node other than its own.
var ErrTransportClosed = errors.New("locmgr: no transport attached")

// SourceCoord is the opaque call-site coordinate a caller uses to ask
// for "the Location at this source point", memoized so repeated calls at
// the same coordinate return the same node.
type SourceCoord struct {
	File string
	Line int
}

// ValueSource is implemented by whatever owns a Location's Ref (a Tracked
// wrapper, in practice) so HandleGet can answer with the node's current
// value without this package depending on the tracked package.
type ValueSource interface {
	CurrentValue() (string, bool)
}

// Publisher is the minimal transport capability this package needs to
// forward a SetValue to a remote node.
type Publisher interface {
	Publish(wire.SetValueMessage) error
}

// Requester is the minimal transport capability needed to ask a remote
// node for a GetValue; ctx carries the caller's deadline.
type Requester interface {
	Request(ctx context.Context, node string, req wire.GetValueRequest) (wire.GetValueResponse, error)
}

// Manager allocates stable Location ids and routes set/get requests.
type Manager struct {
	NodeName  string
	locations []*location.Location
	bySource  map[SourceCoord]*location.Location
	publisher Publisher
	requester Requester
}

// New builds a Manager for nodeName, publishing/requesting through pub/req
// for any node other than its own. An empty nodeName is assigned a
// generated identifier rather than left blank, since SetValue routing
// keys off exact node-name equality.
func New(nodeName string, pub Publisher, req Requester) *Manager {
	if nodeName == "" {
		nodeName = uuid.New().String()
	}
	return &Manager{
		NodeName:  nodeName,
		bySource:  make(map[SourceCoord]*location.Location),
		publisher: pub,
		requester: req,
	}
}

// Register implements location.Registrar: it appends loc to the dense
// vector and returns its new id. Callers should go through AddLocation or
// Location.Register rather than call this directly.
func (m *Manager) Register(loc *location.Location) int {
	id := len(m.locations)
	m.locations = append(m.locations, loc)
	return id
}

// AddLocation assigns loc an id if it doesn't already have one;
// already-registered Locations are returned unchanged.
func (m *Manager) AddLocation(loc *location.Location) int {
	if loc.ID >= 0 {
		return loc.ID
	}
	id := m.Register(loc)
	loc.ID = id
	return id
}

// ForSource returns the Location associated with source, minting and
// registering a fresh one under node on first use and memoizing it for
// subsequent calls at the same coordinate.
func (m *Manager) ForSource(source SourceCoord, node string) *location.Location {
	if loc, ok := m.bySource[source]; ok {
		return loc
	}
	loc := location.New(node)
	m.AddLocation(loc)
	m.bySource[source] = loc
	return loc
}

// Location returns the Location registered at id, or nil if id is out of
// range.
func (m *Manager) Location(id int) *location.Location {
	if id < 0 || id >= len(m.locations) {
		return nil
	}
	return m.locations[id]
}

// HandleSet applies an incoming SetValue. An out-of-range id, or one
// addressed to a different node, is logged and dropped rather than
// returned as an error: a misrouted or stale SetValue should never take
// down the handler loop.
func (m *Manager) HandleSet(msg wire.SetValueMessage) {
	if msg.Node != m.NodeName {
		slog.Logf("locmgr", "dropping set for node %q, this node is %q", msg.Node, m.NodeName)
		return
	}
	loc := m.Location(int(msg.Location))
	if loc == nil {
		slog.Logf("locmgr", "dropping set for out-of-range location %d", msg.Location)
		return
	}
	value := msg.Value
	loc.Force = &value
}

// HandleGet answers an incoming GetValue. An out-of-range id, or one
// whose Location has no live owner to ask, answers Valid=false rather
// than erroring.
func (m *Manager) HandleGet(req wire.GetValueRequest) wire.GetValueResponse {
	loc := m.Location(int(req.Location))
	if loc == nil || loc.Ref == nil {
		return wire.GetValueResponse{Valid: false}
	}
	vs, ok := loc.Ref.(ValueSource)
	if !ok {
		return wire.GetValueResponse{Valid: false}
	}
	value, valid := vs.CurrentValue()
	return wire.GetValueResponse{Value: value, Valid: valid}
}

// ChangeLocation applies a new value at (node, id): locally, if node is
// this Manager's own node name, or via the Publisher otherwise. Transport
// errors propagate verbatim.
func (m *Manager) ChangeLocation(node string, id int, newValue string) error {
	if node == m.NodeName {
		m.HandleSet(wire.SetValueMessage{Node: node, Location: int32(id), Value: newValue})
		return nil
	}
	if m.publisher == nil {
		return ErrTransportClosed
	}
	return m.publisher.Publish(wire.SetValueMessage{Node: node, Location: int32(id), Value: newValue})
}

// RequestValue asks node for its current value at id, through the
// configured Requester. Used by a peer wanting to read a remote Tracked
// without already holding its raw payload.
func (m *Manager) RequestValue(ctx context.Context, node string, id int) (wire.GetValueResponse, error) {
	if node == m.NodeName {
		return m.HandleGet(wire.GetValueRequest{Location: int32(id)}), nil
	}
	if m.requester == nil {
		return wire.GetValueResponse{}, ErrTransportClosed
	}
	return m.requester.Request(ctx, node, wire.GetValueRequest{Location: int32(id)})
}

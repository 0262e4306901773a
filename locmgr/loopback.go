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

package locmgr

import (
	"context"

	"github.com/pkg/errors"

	"github.com/sourcetrail/slt/wire"
)

// ErrUnreachable is returned by a Loopback for a node it has no Manager
// registered for.
var ErrUnreachable = errors.New("locmgr: node unreachable")

// Loopback is an in-process stand-in for a real publish/subscribe and
// request/response transport: it routes a SetValue/GetValue straight to
// the addressed Manager's handler. Production deployments wire
// Publisher/Requester to an actual transport instead.
type Loopback struct {
	managers map[string]*Manager
}

// NewLoopback builds an empty Loopback; call Register for every Manager
// that should be reachable through it.
func NewLoopback() *Loopback {
	return &Loopback{managers: make(map[string]*Manager)}
}

// Register makes m reachable under its own NodeName.
func (l *Loopback) Register(m *Manager) {
	l.managers[m.NodeName] = m
	m.publisher = l
	m.requester = l
}

// Publish implements Publisher by delivering msg to the addressed
// Manager's HandleSet.
func (l *Loopback) Publish(msg wire.SetValueMessage) error {
	m, ok := l.managers[msg.Node]
	if !ok {
		return errors.Wrapf(ErrUnreachable, "publish to node %q", msg.Node)
	}
	m.HandleSet(msg)
	return nil
}

// Request implements Requester by delivering req to the addressed
// Manager's HandleGet. ctx is accepted for interface symmetry with a real
// transport; a Loopback call never blocks so ctx is never consulted.
func (l *Loopback) Request(ctx context.Context, node string, req wire.GetValueRequest) (wire.GetValueResponse, error) {
	m, ok := l.managers[node]
	if !ok {
		return wire.GetValueResponse{}, errors.Wrapf(ErrUnreachable, "request to node %q", node)
	}
	return m.HandleGet(req), nil
}

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

package tracked

import (
	"github.com/sourcetrail/slt/config"
	"github.com/sourcetrail/slt/location"
	"github.com/sourcetrail/slt/locmgr"
	"github.com/sourcetrail/slt/wire"
)

// Message is the wire counterpart of a scalar Tracked: the raw payload
// plus its Location tree flattened into a LocationHeaderMessage.
type Message[T Scalar] struct {
	Data T
	Loc  wire.LocationHeaderMessage
}

// ToMsg fills a Message with the receiver's current raw value and a
// freshly linearized header, under cfg's msg_str/zlib settings.
func (t *Tracked[T]) ToMsg(cfg config.Config) (Message[T], error) {
	header, err := t.Loc.HeaderCreate(cfg.MsgStr, cfg.Compression())
	if err != nil {
		return Message[T]{}, err
	}
	return Message[T]{Data: t.Raw, Loc: header}, nil
}

// FromMsg rebuilds a Tracked from a Message. Every leaf Expression in
// the reconstructed tree stays in its packed wire form until first
// touched.
func FromMsg[T Scalar](msg Message[T], mgr *locmgr.Manager) (*Tracked[T], error) {
	root, err := location.FromHeader(msg.Loc)
	if err != nil {
		return nil, err
	}
	return New(msg.Data, root, mgr), nil
}

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
	"github.com/sourcetrail/slt/locmgr"
)

// AtSource returns the Tracked for the scalar instrumented at source: the
// Location is memoized per call-site coordinate (repeated stamps at the
// same coordinate share it, which is what lets an inverted SetValue reach
// the right field), cleared of stale history and ownership, and any
// pending force override is substituted into raw before wrapping.
func AtSource[T Scalar](mgr *locmgr.Manager, source locmgr.SourceCoord, raw T) (*Tracked[T], error) {
	loc := mgr.ForSource(source, mgr.NodeName)
	loc.Clear()
	cur := toValue(raw)
	v, err := loc.Read(cur, cur.Kind)
	if err != nil {
		return nil, err
	}
	return New(fromValue[T](v), loc, mgr), nil
}

// AtSourceTracked re-stamps an already-tracked value at source, adopting
// its nested provenance onto the memoized Location and registering the
// adopted children, so a value that arrived from another process keeps
// its per-field history alive at the new call site.
func AtSourceTracked[T Scalar](mgr *locmgr.Manager, source locmgr.SourceCoord, t *Tracked[T]) (*Tracked[T], error) {
	loc := mgr.ForSource(source, mgr.NodeName)
	loc.Clear()
	if len(t.Loc.Content) > 0 {
		loc.Apply(t.Loc)
		loc.Register(mgr)
	}
	cur := toValue(t.Raw)
	v, err := loc.Read(cur, cur.Kind)
	if err != nil {
		return nil, err
	}
	return New(fromValue[T](v), loc, mgr), nil
}

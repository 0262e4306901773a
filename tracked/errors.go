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

import "errors"

// ErrUnregistered is returned by ForceValue when the target Location has
// never been registered with a LocationManager (id < 0): there is no id
// to address a SetValue to.
var ErrUnregistered = errors.New("tracked: location is not registered with a manager")

// ErrNoManager is returned by ForceValue when the Tracked has no
// LocationManager at all to route the resulting SetValue through.
var ErrNoManager = errors.New("tracked: no location manager attached")

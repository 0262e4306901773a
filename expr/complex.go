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

package expr

import "math/cmplx"

// complexPow wraps math/cmplx.Pow so apply.go reads as one dispatch table
// regardless of which numeric tower backs a given operator.
func complexPow(base, exp complex128) complex128 {
	return cmplx.Pow(base, exp)
}

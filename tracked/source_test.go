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

package tracked_test

import (
	"testing"

	"github.com/sourcetrail/slt/expr"
	"github.com/sourcetrail/slt/location"
	"github.com/sourcetrail/slt/locmgr"
	"github.com/sourcetrail/slt/operator"
	"github.com/sourcetrail/slt/tracked"
)

func TestAtSourceMemoizesPerCoordinate(t *testing.T) {
	mgr := locmgr.New("a", nil, nil)
	at := locmgr.SourceCoord{File: "f.go", Line: 1}

	x1, err := tracked.AtSource(mgr, at, int64(1))
	if err != nil {
		t.Fatalf("AtSource: %v", err)
	}
	x2, err := tracked.AtSource(mgr, at, int64(2))
	if err != nil {
		t.Fatalf("AtSource: %v", err)
	}
	if x1.Loc != x2.Loc {
		t.Error("repeated stamps at the same coordinate should share the Location")
	}
	if x1.Loc.ID < 0 {
		t.Error("a stamped Location should be registered")
	}
	if other, _ := tracked.AtSource(mgr, locmgr.SourceCoord{File: "f.go", Line: 2}, int64(1)); other.Loc == x1.Loc {
		t.Error("a different coordinate should mint a different Location")
	}
}

func TestAtSourceClearsStaleHistory(t *testing.T) {
	mgr := locmgr.New("a", nil, nil)
	at := locmgr.SourceCoord{File: "f.go", Line: 3}

	x, err := tracked.AtSource(mgr, at, int64(4))
	if err != nil {
		t.Fatalf("AtSource: %v", err)
	}
	if err := x.AddInPlace(1); err != nil {
		t.Fatalf("AddInPlace: %v", err)
	}

	again, err := tracked.AtSource(mgr, at, int64(4))
	if err != nil {
		t.Fatalf("AtSource: %v", err)
	}
	if !again.Loc.Expr.IsEmpty() {
		t.Error("a fresh stamp should start with an empty history")
	}
}

func TestAtSourceTrackedAdoptsNestedProvenance(t *testing.T) {
	mgr := locmgr.New("a", nil, nil)
	src := tracked.New(int64(5), location.New("a"), nil)
	src.Loc.Child("f").Expr = expr.New(expr.Lit(expr.Int32(1)), expr.Op(operator.AddOp))

	at := locmgr.SourceCoord{File: "g.go", Line: 2}
	stamped, err := tracked.AtSourceTracked(mgr, at, src)
	if err != nil {
		t.Fatalf("AtSourceTracked: %v", err)
	}
	adopted, ok := stamped.Loc.Content["f"]
	if !ok {
		t.Fatal("nested provenance should be adopted onto the stamped Location")
	}
	if adopted.ID < 0 {
		t.Error("adopted children should be registered")
	}
	if adopted.Expr.IsEmpty() {
		t.Error("adopted children should keep their expressions")
	}
}

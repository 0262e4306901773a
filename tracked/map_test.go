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

	"github.com/sourcetrail/slt/tracked"
)

func TestMapSetThenAtMemoizes(t *testing.T) {
	m := tracked.NewMap[int64](nil, nil, nil)
	m.Set("a", 7)
	e1, ok := m.At("a")
	if !ok {
		t.Fatal("At(a) should find the stored entry")
	}
	e2, _ := m.At("a")
	if e1 != e2 {
		t.Error("At should memoize the wrapper per key")
	}
	if e1.Raw != 7 {
		t.Errorf("At(a).Raw = %d, want 7", e1.Raw)
	}
}

func TestMapEntryArithmeticPersists(t *testing.T) {
	m := tracked.NewMap[int64](nil, nil, nil)
	m.Set("count", 41)
	e, _ := m.At("count")
	if err := e.AddInPlace(1); err != nil {
		t.Fatalf("AddInPlace: %v", err)
	}
	again, _ := m.At("count")
	if again.Raw != 42 {
		t.Errorf("At(count).Raw = %d, want 42", again.Raw)
	}
	orig, err := again.Original()
	if err != nil {
		t.Fatalf("Original: %v", err)
	}
	if orig != 41 {
		t.Errorf("Original = %d, want 41", orig)
	}
}

func TestMapAtMissingKey(t *testing.T) {
	m := tracked.NewMap[int64](nil, nil, nil)
	if _, ok := m.At("missing"); ok {
		t.Error("At on an absent key should report false")
	}
}

func TestMapDeleteRemovesEntryAndChild(t *testing.T) {
	m := tracked.NewMap[int64](nil, nil, nil)
	m.Set("a", 1)
	m.Set("b", 2)
	removed, ok := m.Delete("a")
	if !ok || removed.Raw != 1 {
		t.Fatalf("Delete(a) = %v, %v; want the entry holding 1", removed, ok)
	}
	if m.Len() != 1 || m.Has("a") {
		t.Error("Delete should drop the entry")
	}
	if _, ok := m.Loc.Content["a"]; ok {
		t.Error("Delete should drop the child Location")
	}
}

func TestMapClearEmptiesEntries(t *testing.T) {
	m := tracked.NewMap[int64](nil, nil, nil)
	m.Set("a", 1)
	m.Set("b", 2)
	m.Clear()
	if m.Len() != 0 || len(m.Loc.Content) != 0 {
		t.Error("Clear should drop every entry and child Location")
	}
}

func TestMapKeysSortedAndIterateReturnsRawEntries(t *testing.T) {
	m := tracked.NewMap[int64](map[string]int64{"b": 2, "a": 1}, nil, nil)
	keys := m.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("Keys = %v, want [a b]", keys)
	}
	raw := m.Iterate()
	if len(raw) != 2 || raw["a"] != 1 || raw["b"] != 2 {
		t.Errorf("Iterate = %v, want the raw entries", raw)
	}
	raw["a"] = 99
	if e, _ := m.At("a"); e.Raw != 1 {
		t.Error("Iterate should return a copy, not the backing map")
	}
}

func TestMapAtSubstitutesPendingForce(t *testing.T) {
	m := tracked.NewMap[int64](nil, nil, nil)
	m.Set("a", 7)
	forced := "12"
	m.Loc.Content["a"].Force = &forced
	e, _ := m.At("a")
	if e.Raw != 12 {
		t.Errorf("At(a) after force = %d, want 12", e.Raw)
	}
}

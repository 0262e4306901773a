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

	"github.com/sourcetrail/slt/config"
	"github.com/sourcetrail/slt/tracked"
)

func TestTrackedToMsgFromMsgRoundTrip(t *testing.T) {
	x := tracked.New(int64(10), nil, nil)
	y, err := x.Add(5)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	msg, err := y.ToMsg(config.Defaults())
	if err != nil {
		t.Fatalf("ToMsg: %v", err)
	}
	if msg.Data != 15 {
		t.Errorf("msg.Data = %d, want 15", msg.Data)
	}

	back, err := tracked.FromMsg[int64](msg, nil)
	if err != nil {
		t.Fatalf("FromMsg: %v", err)
	}
	if back.Raw != 15 {
		t.Errorf("back.Raw = %d, want 15", back.Raw)
	}
	orig, err := back.Original()
	if err != nil {
		t.Fatalf("Original: %v", err)
	}
	if orig != 10 {
		t.Errorf("Original = %d, want 10", orig)
	}
}

func TestTrackedToMsgStringForm(t *testing.T) {
	x := tracked.New("hello", nil, nil)
	y, err := x.Add(" world")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if y.Raw != "hello world" {
		t.Fatalf("Raw = %q, want %q", y.Raw, "hello world")
	}

	msg, err := y.ToMsg(config.Config{MsgStr: true})
	if err != nil {
		t.Fatalf("ToMsg: %v", err)
	}
	back, err := tracked.FromMsg[string](msg, nil)
	if err != nil {
		t.Fatalf("FromMsg: %v", err)
	}
	if back.Raw != "hello world" {
		t.Errorf("back.Raw = %q, want %q", back.Raw, "hello world")
	}
}

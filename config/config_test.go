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

package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sourcetrail/slt/config"
)

func TestDefaults(t *testing.T) {
	d := config.Defaults()
	if !d.ExprChain {
		t.Error("expr_chain should default true")
	}
	if d.MsgStr {
		t.Error("msg_str should default false")
	}
	if !d.ZlibEnable || d.ZlibLevel != 1 || d.ZlibThreshold != 1024 {
		t.Errorf("zlib defaults = %+v, want enable=true level=1 threshold=1024", d)
	}
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	defer config.Set(config.Defaults())
	cfg, err := config.Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != config.Defaults() {
		t.Errorf("Load(missing) = %+v, want defaults", cfg)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	defer config.Set(config.Defaults())
	path := filepath.Join(t.TempDir(), "slt.json")
	body, _ := json.Marshal(map[string]interface{}{"msg_str": true, "zlib_threshold": 64})
	if err := os.WriteFile(path, body, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.MsgStr {
		t.Error("msg_str should be overridden to true")
	}
	if cfg.ZlibThreshold != 64 {
		t.Errorf("zlib_threshold = %d, want 64", cfg.ZlibThreshold)
	}
	if !cfg.ZlibEnable {
		t.Error("zlib_enable should keep its default (true) when absent from the document")
	}
	if config.Current() != cfg {
		t.Error("Current should reflect the just-loaded config")
	}
}

func TestCompressionProjection(t *testing.T) {
	cfg := config.Config{ZlibEnable: true, ZlibLevel: 9, ZlibThreshold: 2048}
	cc := cfg.Compression()
	if !cc.Enable || cc.Level != 9 || cc.Threshold != 2048 {
		t.Errorf("Compression() = %+v, want mirror of cfg", cc)
	}
}

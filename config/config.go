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

// Package config holds the process-wide, single-writer configuration:
// whether Expression.Append fuses (expr_chain), whether Expression
// messages carry the textual form instead of typed elements (msg_str),
// and the generic compression knobs consumed by the wire package.
package config

import (
	"encoding/json"
	"os"

	"github.com/sourcetrail/slt/wire"
)

// Config is the process-wide settings record. It is process-wide mutable
// state, consulted only at Expression append/serialize time, and safe
// under the executor's single-writer discipline: nothing here is touched
// concurrently with mutation.
type Config struct {
	ExprChain     bool `json:"expr_chain"`
	MsgStr        bool `json:"msg_str"`
	ZlibEnable    bool `json:"zlib_enable"`
	ZlibLevel     int  `json:"zlib_level"`
	ZlibThreshold int  `json:"zlib_threshold"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		ExprChain:     true,
		MsgStr:        false,
		ZlibEnable:    true,
		ZlibLevel:     1,
		ZlibThreshold: 1024,
	}
}

// current is the process-wide singleton, set by Load/Set and read by
// Current. It starts out at Defaults so a process that never calls Load
// still gets sane settings.
var current = Defaults()

// Load reads a JSON document from path and merges it over the default
// configuration, then installs the result as the process-wide Config.
// A missing file is not an error: Load falls back to Defaults. Unknown
// keys in the document
// are ignored (encoding/json's default field-matching behaviour).
func Load(path string) (Config, error) {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		current = cfg
		return cfg, nil
	}
	if err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	current = cfg
	return cfg, nil
}

// Current returns the process-wide configuration.
func Current() Config {
	return current
}

// Set installs cfg as the process-wide configuration. Tests use this to
// reset global state between cases.
func Set(cfg Config) {
	current = cfg
}

// Compression projects the zlib_* fields into the shape wire.PackExpression
// wants.
func (c Config) Compression() wire.CompressionConfig {
	return wire.CompressionConfig{
		Enable:    c.ZlibEnable,
		Level:     c.ZlibLevel,
		Threshold: c.ZlibThreshold,
	}
}

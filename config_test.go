// Copyright 2025 Agentic World, LLC (Sherin Thomas)
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

package sandboa

import (
	"testing"
	"time"
)

func TestMergeConfigNilUsesDefaults(t *testing.T) {
	cfg := mergeConfig(nil)
	defaults := NewDefaultConfig()
	if cfg.MaxDepth != defaults.MaxDepth {
		t.Errorf("MaxDepth = %d, expected default %d", cfg.MaxDepth, defaults.MaxDepth)
	}
	if cfg.Delay != defaults.Delay {
		t.Errorf("Delay = %s, expected default %s", cfg.Delay, defaults.Delay)
	}
	if cfg.BotName != defaults.BotName {
		t.Errorf("BotName = %q, expected default %q", cfg.BotName, defaults.BotName)
	}
}

func TestMergeConfigUserOverrides(t *testing.T) {
	cfg := mergeConfig(&Config{
		MaxDepth:        5,
		Delay:           2 * time.Second,
		IgnoreRobotsTxt: true,
		UserAgent:       "custom/1.0",
	})
	if cfg.MaxDepth != 5 {
		t.Errorf("MaxDepth = %d, expected 5", cfg.MaxDepth)
	}
	if cfg.Delay != 2*time.Second {
		t.Errorf("Delay = %s, expected 2s", cfg.Delay)
	}
	if !cfg.IgnoreRobotsTxt {
		t.Error("IgnoreRobotsTxt should be true")
	}
	if cfg.UserAgent != "custom/1.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	// Untouched fields keep their defaults.
	if cfg.Timeout != NewDefaultConfig().Timeout {
		t.Errorf("Timeout = %s, expected default", cfg.Timeout)
	}
}

func TestParseSettingsFromEnv(t *testing.T) {
	t.Setenv("SANDBOA_USER_AGENT", "envbot/2.0")
	t.Setenv("SANDBOA_MAX_DEPTH", "7")
	t.Setenv("SANDBOA_IGNORE_ROBOTSTXT", "yes")
	t.Setenv("SANDBOA_DELAY", "250ms")

	cfg := NewDefaultConfig()
	cfg.parseSettingsFromEnv()

	if cfg.UserAgent != "envbot/2.0" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.MaxDepth != 7 {
		t.Errorf("MaxDepth = %d", cfg.MaxDepth)
	}
	if !cfg.IgnoreRobotsTxt {
		t.Error("IgnoreRobotsTxt should be true")
	}
	if cfg.Delay != 250*time.Millisecond {
		t.Errorf("Delay = %s", cfg.Delay)
	}
}

func TestIsYesString(t *testing.T) {
	for _, s := range []string{"1", "yes", "YES", "true", "y"} {
		if !isYesString(s) {
			t.Errorf("isYesString(%q) = false", s)
		}
	}
	for _, s := range []string{"0", "no", "false", ""} {
		if isYesString(s) {
			t.Errorf("isYesString(%q) = true", s)
		}
	}
}

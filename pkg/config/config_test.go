// Copyright 2026 fanjia1024
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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
api:
  port: 9000
  host: "127.0.0.1"
uav:
  base_url: "http://localhost:8000"
  qps: 5
history:
  type: "memory"
  max_size: 50
log:
  level: "debug"
`
	path := filepath.Join(dir, "test.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Port != 9000 {
		t.Errorf("API.Port: got %d", cfg.API.Port)
	}
	if cfg.UAV.BaseURL != "http://localhost:8000" {
		t.Errorf("UAV.BaseURL: got %q", cfg.UAV.BaseURL)
	}
	if cfg.UAV.QPS != 5 {
		t.Errorf("UAV.QPS: got %v", cfg.UAV.QPS)
	}
	if cfg.History.MaxSize != 50 {
		t.Errorf("History.MaxSize: got %d", cfg.History.MaxSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q", cfg.Log.Level)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig("no-such-file.yaml"); err == nil {
		t.Error("LoadConfig on missing file should fail")
	}
}

func TestReplaceEnvVars(t *testing.T) {
	t.Setenv("UAV_TEST_LLM_KEY", "sk-test")
	t.Setenv("UAV_TEST_FLEET_KEY", "fleet-test")
	cfg := &Config{
		UAV: UAVConfig{APIKey: "${UAV_TEST_FLEET_KEY}"},
		Model: ModelConfig{
			LLM: LLMConfig{
				Providers: map[string]ProviderConfig{
					"openai": {APIKey: "${UAV_TEST_LLM_KEY}"},
				},
			},
		},
	}
	replaceEnvVars(cfg)
	if cfg.Model.LLM.Providers["openai"].APIKey != "sk-test" {
		t.Errorf("provider api key not replaced: %q", cfg.Model.LLM.Providers["openai"].APIKey)
	}
	if cfg.UAV.APIKey != "fleet-test" {
		t.Errorf("uav api key not replaced: %q", cfg.UAV.APIKey)
	}
}

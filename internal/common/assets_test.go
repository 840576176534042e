package common

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseAssetConfig(t *testing.T) {
	data := []byte(`
assets:
  - symbol: xlm
  - symbol: USDC
    issuer: GADQOBYHA4DQOBYHA4DQOBYHA4DQOBYHA4DQOBYHA4DQOBYHA4DQOZPI
`)

	assets, err := ParseAssetConfig(data)
	if err != nil {
		t.Fatalf("ParseAssetConfig failed: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("Expected 2 assets, got %d", len(assets))
	}
	if assets[0].Symbol != "XLM" {
		t.Errorf("Expected symbol to be normalized, got %q", assets[0].Symbol)
	}
}

func TestParseAssetConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing symbol", "assets:\n  - issuer: x\n"},
		{"missing issuer", "assets:\n  - symbol: USDC\n"},
		{"bad issuer", "assets:\n  - symbol: USDC\n    issuer: GNOTVALID\n"},
		{"duplicate", "assets:\n  - symbol: XLM\n  - symbol: xlm\n"},
		{"not yaml", "assets: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAssetConfig([]byte(tt.data)); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestLoadAssetConfig_MissingFileDefaultsToNative(t *testing.T) {
	assets, err := LoadAssetConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadAssetConfig failed: %v", err)
	}
	if len(assets) != 1 || assets[0].Symbol != "XLM" {
		t.Errorf("Expected native asset only, got %+v", assets)
	}
}

func TestLoadAssetConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.yaml")
	if err := os.WriteFile(path, []byte("assets:\n  - symbol: XLM\n"), 0o600); err != nil {
		t.Fatalf("Failed to write assets file: %v", err)
	}

	assets, err := LoadAssetConfig(path)
	if err != nil {
		t.Fatalf("LoadAssetConfig failed: %v", err)
	}
	if got := AssetSymbols(assets); len(got) != 1 || got[0] != "XLM" {
		t.Errorf("Unexpected symbols %v", got)
	}
}

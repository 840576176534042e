package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"stellarcade-backend-go/internal/stellar"

	"gopkg.in/yaml.v2"
)

type AssetConfig struct {
	Symbol string `yaml:"symbol"`
	Issuer string `yaml:"issuer"`
}

type AssetsFile struct {
	Assets []AssetConfig `yaml:"assets"`
}

// LoadAssetConfig reads the supported asset list. A missing file means native XLM only.
func LoadAssetConfig(path string) ([]AssetConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []AssetConfig{{Symbol: stellar.NativeAsset}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", path, err)
	}

	return ParseAssetConfig(data)
}

func ParseAssetConfig(data []byte) ([]AssetConfig, error) {
	var file AssetsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unable to parse asset config: %w", err)
	}

	seen := make(map[string]bool, len(file.Assets))
	for i, asset := range file.Assets {
		symbol := strings.ToUpper(strings.TrimSpace(asset.Symbol))
		if symbol == "" {
			return nil, fmt.Errorf("asset at index %d missing symbol", i)
		}
		if seen[symbol] {
			return nil, fmt.Errorf("asset %s listed more than once", symbol)
		}
		seen[symbol] = true

		if symbol != stellar.NativeAsset {
			if asset.Issuer == "" {
				return nil, fmt.Errorf("asset %s missing issuer", symbol)
			}
			if err := stellar.ValidateAccountAddress(asset.Issuer); err != nil {
				return nil, fmt.Errorf("asset %s: %w", symbol, err)
			}
		}
		file.Assets[i].Symbol = symbol
	}

	return file.Assets, nil
}

func AssetSymbols(assets []AssetConfig) []string {
	symbols := make([]string, len(assets))
	for i, a := range assets {
		symbols[i] = a.Symbol
	}
	return symbols
}

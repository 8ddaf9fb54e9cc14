package monitor

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// thresholdsFile is the on-disk shape of an optional termination-threshold
// override file. Every field is optional; zero values fall back to
// DefaultThresholds.
type thresholdsFile struct {
	MinHolders       int     `yaml:"min_holders"`
	HolderCheckSec   float64 `yaml:"holder_check_sec"`
	PriceMinIncrease float64 `yaml:"price_min_increase"`
	PriceCheckSec    float64 `yaml:"price_check_sec"`
}

// LoadThresholds reads termination thresholds from a YAML file at path,
// starting from DefaultThresholds and overriding only the fields present in
// the file. A missing file is not an error - it mirrors the fixed defaults.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return Thresholds{}, fmt.Errorf("monitor: reading thresholds file: %w", err)
	}

	var f thresholdsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return Thresholds{}, fmt.Errorf("monitor: parsing thresholds file: %w", err)
	}

	if f.MinHolders > 0 {
		t.MinHolders = f.MinHolders
	}
	if f.HolderCheckSec > 0 {
		t.HolderCheckSec = time.Duration(f.HolderCheckSec * float64(time.Second))
	}
	if f.PriceMinIncrease > 0 {
		t.PriceMinIncrease = decimal.NewFromFloat(f.PriceMinIncrease)
	}
	if f.PriceCheckSec > 0 {
		t.PriceCheckSec = time.Duration(f.PriceCheckSec * float64(time.Second))
	}
	return t, nil
}

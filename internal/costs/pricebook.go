package costs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// priceBookYAML is the on-disk shape of a component price book.
type priceBookYAML struct {
	Components []struct {
		LicenseType  string  `yaml:"license_type"`
		MonthlyPrice float64 `yaml:"monthly_price"`
	} `yaml:"components"`
}

// LoadPriceBook reads a YAML price book and returns a configured
// Normalizer. Prices are monthly per component.
func LoadPriceBook(path string) (*Normalizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read price book: %w", err)
	}
	return ParsePriceBook(data)
}

// ParsePriceBook parses YAML price book data.
func ParsePriceBook(data []byte) (*Normalizer, error) {
	var book priceBookYAML
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parse price book: %w", err)
	}

	n := NewNormalizer()
	for _, c := range book.Components {
		if c.LicenseType == "" {
			continue
		}
		n.SetComponentPrice(c.LicenseType, c.MonthlyPrice)
	}
	return n, nil
}

package pricing

import (
	_ "embed"
	"fmt"
	"strings"

	"jamb/utils"

	"gopkg.in/yaml.v3"
)

//go:embed taxrates.yaml
var taxRatesYAML []byte

// TaxTable maps a two-letter US state code to its sales-tax rate as a fraction.
type TaxTable map[string]float64

// LoadTaxTable parses the embedded state rate table.
func LoadTaxTable() (TaxTable, error) {
	return ParseTaxTable(taxRatesYAML)
}

// ParseTaxTable parses a YAML document of state: percent pairs.
func ParseTaxTable(data []byte) (TaxTable, error) {
	var percents map[string]float64
	if err := yaml.Unmarshal(data, &percents); err != nil {
		return nil, fmt.Errorf("failed to parse tax rate table: %w", err)
	}
	table := make(TaxTable, len(percents))
	for state, pct := range percents {
		if pct < 0 || pct >= 100 {
			return nil, fmt.Errorf("tax rate for %s out of range: %v", state, pct)
		}
		table[strings.ToUpper(state)] = pct / 100
	}
	return table, nil
}

// Rate returns the rate of state, accepting any letter case and surrounding spaces.
func (t TaxTable) Rate(state string) (float64, error) {
	code := strings.ToUpper(strings.TrimSpace(state))
	rate, ok := t[code]
	if !ok {
		return 0, utils.NewValidationError("unsupported state %q", state)
	}
	return rate, nil
}

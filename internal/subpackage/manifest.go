package subpackage

import (
	"encoding/json"
	"fmt"
)

// Manifest is the generated part of app.json.
type Manifest struct {
	SubPackages []NormalizedSubpackage `json:"subPackages"`
	PreloadRule PreloadRuleTable       `json:"preloadRule,omitempty"`
}

// Manifest returns the manifest fields of the result.
func (r *Result) Manifest() Manifest {
	if r == nil {
		return Manifest{}
	}
	return Manifest{SubPackages: r.SubPackages, PreloadRule: r.PreloadRule}
}

// MergeAppJSON writes the manifest into an app.json document, keeping every
// other field. An existing preloadRule is only replaced when the manifest
// has rules of its own.
func MergeAppJSON(data []byte, m Manifest) ([]byte, error) {
	fields := map[string]json.RawMessage{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("failed to parse app.json: %w", err)
		}
	}

	subPackages := m.SubPackages
	if subPackages == nil {
		subPackages = []NormalizedSubpackage{}
	}
	raw, err := json.Marshal(subPackages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode subPackages: %w", err)
	}
	fields["subPackages"] = raw
	delete(fields, "subpackages")

	if len(m.PreloadRule) > 0 {
		raw, err := json.Marshal(m.PreloadRule)
		if err != nil {
			return nil, fmt.Errorf("failed to encode preloadRule: %w", err)
		}
		fields["preloadRule"] = raw
	}

	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode app.json: %w", err)
	}
	return append(out, '\n'), nil
}

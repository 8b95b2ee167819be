package project

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RootMain is the RootID of the main package.
const RootMain = "main"

// AppConfig is the subset of the application config the planner reads.
type AppConfig struct {
	Pages       []string             `json:"pages"`
	SubPackages []DeclaredSubpackage `json:"subPackages"`
}

// DeclaredSubpackage is one user-declared subPackages entry.
type DeclaredSubpackage struct {
	// Root is the source directory of the subpackage.
	Root string

	// Pages are page paths relative to Root.
	Pages []string

	// OutputRoot is the requested output directory; "" and "auto" both
	// derive one from Root and the entry index.
	OutputRoot string

	// PreloadRule lists the page paths that trigger a preload of this package.
	PreloadRule StringList

	// Network is the preload network condition ("all" or "wifi").
	Network string

	// Name is the package alias (kept on weapp only).
	Name string

	// Extra holds unknown fields, carried through to the manifest.
	Extra map[string]json.RawMessage
}

var declaredKnownFields = []string{"root", "pages", "outputRoot", "preloadRule", "network", "name"}

// UnmarshalJSON decodes a declared entry, keeping unknown fields in Extra.
func (d *DeclaredSubpackage) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("failed to parse subpackage: %w", err)
	}

	*d = DeclaredSubpackage{}
	decode := func(key string, dst any) error {
		raw, ok := fields[key]
		if !ok {
			return nil
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("invalid subpackage field %s: %w", key, err)
		}
		return nil
	}
	if err := decode("root", &d.Root); err != nil {
		return err
	}
	if err := decode("pages", &d.Pages); err != nil {
		return err
	}
	if err := decode("outputRoot", &d.OutputRoot); err != nil {
		return err
	}
	if err := decode("preloadRule", &d.PreloadRule); err != nil {
		return err
	}
	if err := decode("network", &d.Network); err != nil {
		return err
	}
	if err := decode("name", &d.Name); err != nil {
		return err
	}

	for _, k := range declaredKnownFields {
		delete(fields, k)
	}
	if len(fields) > 0 {
		d.Extra = fields
	}
	return nil
}

// MarshalJSON encodes the declared entry including Extra.
func (d DeclaredSubpackage) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any, len(d.Extra)+6)
	for k, v := range d.Extra {
		fields[k] = v
	}
	fields["root"] = d.Root
	fields["pages"] = d.Pages
	if d.OutputRoot != "" {
		fields["outputRoot"] = d.OutputRoot
	}
	if len(d.PreloadRule) > 0 {
		fields["preloadRule"] = d.PreloadRule
	}
	if d.Network != "" {
		fields["network"] = d.Network
	}
	if d.Name != "" {
		fields["name"] = d.Name
	}
	return json.Marshal(fields)
}

// StringList decodes from either a single string or a list of strings.
type StringList []string

// UnmarshalJSON accepts "a" or ["a", "b"].
func (s *StringList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}
	if trimmed[0] == '"' {
		var one string
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*s = StringList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

// AppConfig decodes the application config carried by an entry node.
// Missing fields decode to their zero values.
func (n *Node) AppConfig() (*AppConfig, error) {
	app := &AppConfig{}
	if n == nil || n.Config == nil {
		return app, nil
	}
	if raw, ok := n.Config.Extra["pages"]; ok {
		if err := json.Unmarshal(raw, &app.Pages); err != nil {
			return nil, fmt.Errorf("invalid pages: %w", err)
		}
	}
	if raw, ok := n.Config.Extra["subPackages"]; ok {
		if err := json.Unmarshal(raw, &app.SubPackages); err != nil {
			return nil, fmt.Errorf("invalid subPackages: %w", err)
		}
	}
	return app, nil
}

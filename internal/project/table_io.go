package project

import (
	"encoding/json"
	"fmt"

	"github.com/danieljhkim/subpkg/internal/fsops"
)

// LoadTable reads a JSON table dump.
func LoadTable(fsys fsops.FS, file string) (Table, error) {
	data, err := fsys.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	var table Table
	if err := json.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse table %s: %w", file, err)
	}
	if table == nil {
		table = Table{}
	}
	return table, nil
}

// SaveTable writes table as indented JSON, atomically.
func SaveTable(fsys fsops.FS, file string, table Table) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal table: %w", err)
	}
	data = append(data, '\n')
	if err := fsys.AtomicWrite(file, data, 0644); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

package project

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/danieljhkim/subpkg/internal/fsops"
	"github.com/danieljhkim/subpkg/internal/platform"
)

// EntryKey is the logical path of the application entry.
const EntryKey = "app"

// ScanOutput builds a Table from an emitted mini-program under root.
//
// The app config becomes the Entry. Every other config file with a sibling
// template becomes a Page when the app config lists it (directly or under a
// subpackage) and a Component when it declares "component": true. Anything
// else is skipped. A missing app config yields a table without an entry.
func ScanOutput(fsys fsops.FS, root string, ft platform.FileTypes) (Table, error) {
	files, err := fsys.ListFiles(root)
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(files))
	for _, f := range files {
		present[f] = true
	}

	configSuffix := ft.Suffix(platform.KindConfig)
	templSuffix := ft.Suffix(platform.KindTempl)
	styleSuffix := ft.Suffix(platform.KindStyle)

	table := Table{}
	pages := map[string]bool{}

	if present[EntryKey+configSuffix] {
		entry, err := scanNode(fsys, root, EntryKey, configSuffix, styleSuffix, present)
		if err != nil {
			return nil, err
		}
		entry.Kind = KindEntry
		table[EntryKey] = entry

		app, err := entry.AppConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s%s: %w", EntryKey, configSuffix, err)
		}
		for _, p := range app.Pages {
			pages[strings.Trim(p, "/")] = true
		}
		for _, sp := range app.SubPackages {
			for _, p := range sp.Pages {
				pages[path.Join(strings.Trim(sp.Root, "/"), strings.Trim(p, "/"))] = true
			}
		}
	}

	for _, f := range files {
		stem, ok := strings.CutSuffix(f, configSuffix)
		if !ok || stem == EntryKey || !present[stem+templSuffix] {
			continue
		}
		n, err := scanNode(fsys, root, stem, configSuffix, styleSuffix, present)
		if err != nil {
			return nil, err
		}
		switch {
		case pages[stem] || pages[strings.TrimSuffix(stem, "/index")]:
			n.Kind = KindPage
		case n.Config.Component:
			n.Kind = KindComponent
		default:
			continue
		}
		table[stem] = n
	}
	return table, nil
}

func scanNode(fsys fsops.FS, root, stem, configSuffix, styleSuffix string, present map[string]bool) (*Node, error) {
	name := stem + configSuffix
	data, err := fsys.ReadFile(path.Join(root, name))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	cfg := &NodeConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	n := &Node{Config: cfg}

	if styleSuffix != "" && present[stem+styleSuffix] {
		style, err := fsys.ReadFile(path.Join(root, stem+styleSuffix))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s%s: %w", stem, styleSuffix, err)
		}
		n.StyleImports = ParseStyleImports(style)
	}
	return n, nil
}

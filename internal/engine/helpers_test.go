package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/danieljhkim/subpkg/internal/clock"
	"github.com/danieljhkim/subpkg/internal/config"
	"github.com/danieljhkim/subpkg/internal/fsops"
	"github.com/danieljhkim/subpkg/internal/hash"
)

var testStart = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// scenarioFiles is an emitted weapp project with subpackages a:[x] and
// b:[y]. Component C is only used by a/x; component D by both pages.
func scenarioFiles() map[string]string {
	return map[string]string{
		"dist/app.json":                `{"pages":["pages/index/index"],"subPackages":[{"root":"a","pages":["x"],"preloadRule":"pages/index/index"},{"root":"b","pages":["y"]}],"window":{"navigationBarTitleText":"demo"}}`,
		"dist/app.wxss":                `@import "./styles/base.wxss";`,
		"dist/app.js":                  `App({})`,
		"dist/styles/base.wxss":        `.base{}`,
		"dist/pages/index/index.json":  `{}`,
		"dist/pages/index/index.wxml":  `<view/>`,
		"dist/pages/index/index.js":    `Page({})`,
		"dist/a/x.json":                `{"usingComponents":{"c":"../components/C/index","d":"../components/D/index"}}`,
		"dist/a/x.wxml":                `<c/><d/>`,
		"dist/a/x.wxss":                `@import "../components/C/index.wxss";`,
		"dist/a/x.js":                  `Page({})`,
		"dist/b/y.json":                `{"usingComponents":{"d":"../components/D/index"}}`,
		"dist/b/y.wxml":                `<d/>`,
		"dist/b/y.js":                  `Page({})`,
		"dist/components/C/index.json": `{"component":true}`,
		"dist/components/C/index.wxml": `<view>C</view>`,
		"dist/components/C/index.wxss": `.c{}`,
		"dist/components/C/index.js":   `Component({})`,
		"dist/components/D/index.json": `{"component":true}`,
		"dist/components/D/index.wxml": `<view>D</view>`,
		"dist/components/D/index.js":   `Component({})`,
	}
}

func testSettings() config.Settings {
	s := config.Default()
	s.Concurrency = 4
	return s
}

func newTestEngine(fs fsops.FS) (*Engine, *clock.FakeClock) {
	clk := clock.NewFakeClock(testStart)
	return New(fs, hash.NewSHA256Hasher(), clk), clk
}

// readJSON decodes a file of fs into a generic value.
func readJSON(t *testing.T, fs *fsops.MemFS, path string) map[string]any {
	t.Helper()
	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to parse %s: %v", path, err)
	}
	return out
}

func usingOf(t *testing.T, fs *fsops.MemFS, path string) map[string]any {
	t.Helper()
	using, _ := readJSON(t, fs, path)["usingComponents"].(map[string]any)
	return using
}

package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/subpkg/internal/engine"
	"github.com/danieljhkim/subpkg/internal/planner"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/subpackage"
)

var outputFiles = map[string]string{
	"app.json":                   `{"pages":["pages/index/index"],"subPackages":[{"root":"pkg","pages":["detail"]}]}`,
	"pages/index/index.json":     `{"usingComponents":{"nav":"../../components/nav/index"}}`,
	"pages/index/index.wxml":     `<nav/>`,
	"pkg/detail.json":            `{"usingComponents":{"card":"../components/card/index","nav":"../components/nav/index"}}`,
	"pkg/detail.wxml":            `<card/><nav/>`,
	"pkg/detail.js":              `Page({})`,
	"components/card/index.json": `{"component":true}`,
	"components/card/index.wxml": `<view>card</view>`,
	"components/nav/index.json":  `{"component":true}`,
	"components/nav/index.wxml":  `<view>nav</view>`,
}

// setupOutput writes an emitted project into a temp dir and returns the
// flags pointing every settings source into it.
func setupOutput(t *testing.T) (string, []string) {
	t.Helper()
	for _, key := range []string{"SUBPKG_PLATFORM", "PLATFORM_ENV", "TARO_ENV", "SUBPKG_OUTPUT", "SUBPKG_STATE_FILE"} {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	out := filepath.Join(dir, "dist")
	for name, content := range outputFiles {
		p := filepath.Join(out, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	flags := []string{
		"--config", filepath.Join(dir, "subpkg.yaml"),
		"--env-file", filepath.Join(dir, ".env"),
		"--output", out,
		"--state-file", filepath.Join(dir, "state.json"),
		"--log-level", "error",
	}
	return dir, flags
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "dist", filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}

func TestPlanCommand_LeavesOutputUntouched(t *testing.T) {
	dir, flags := setupOutput(t)

	_, err := execute(t, append([]string{"plan"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, outputFiles["pkg/detail.json"], readOutput(t, dir, "pkg/detail.json"))
	assert.Equal(t, outputFiles["app.json"], readOutput(t, dir, "app.json"))
}

func TestApplyAndRestoreCommands(t *testing.T) {
	dir, flags := setupOutput(t)
	tableOut := filepath.Join(dir, "table.json")
	planOut := filepath.Join(dir, "plan.json")

	args := append([]string{"apply", "--table-out", tableOut, "--plan-out", planOut}, flags...)
	_, err := execute(t, args...)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "dist", "components", "card", "index.wxml"))
	assert.True(t, os.IsNotExist(err), "card should have left the main package")
	assert.Equal(t, "<view>card</view>", readOutput(t, dir, "pkg-0/components/card/index.wxml"))
	assert.Equal(t, "<view>nav</view>", readOutput(t, dir, "components/nav/index.wxml"))

	var cfg map[string]map[string]string
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, dir, "pkg-0/detail.json")), &cfg))
	assert.Equal(t, "./components/card/index", cfg["usingComponents"]["card"])
	assert.Equal(t, "../components/nav/index", cfg["usingComponents"]["nav"])

	var app map[string]any
	require.NoError(t, json.Unmarshal([]byte(readOutput(t, dir, "app.json")), &app))
	subPackages := app["subPackages"].([]any)
	require.Len(t, subPackages, 1)
	assert.Equal(t, "pkg-0", subPackages[0].(map[string]any)["root"])

	restored := filepath.Join(dir, "restored.json")
	args = append([]string{"restore", "--table", tableOut, "--previous", planOut, "--out", restored}, flags...)
	_, err = execute(t, args...)
	require.NoError(t, err)

	data, err := os.ReadFile(restored)
	require.NoError(t, err)
	var table project.Table
	require.NoError(t, json.Unmarshal(data, &table))
	assert.Contains(t, table, "pkg/detail")
	assert.Contains(t, table, "components/card/index")
	ref, _ := table["pkg/detail"].Components().Get("card")
	assert.Equal(t, "../components/card/index", ref)
}

func TestApplyCommand_DryRun(t *testing.T) {
	dir, flags := setupOutput(t)

	_, err := execute(t, append([]string{"apply", "--dry-run"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "<view>card</view>", readOutput(t, dir, "components/card/index.wxml"))
	assert.Equal(t, outputFiles["app.json"], readOutput(t, dir, "app.json"))
}

func TestPlanCommand_Conflict(t *testing.T) {
	dir, flags := setupOutput(t)
	stale := filepath.Join(dir, "dist", "pkg-0", "components", "card")
	require.NoError(t, os.MkdirAll(stale, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "index.json"), []byte(`{"component":true}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "index.wxml"), []byte(`<view>old</view>`), 0644))

	_, err := execute(t, append([]string{"plan"}, flags...)...)
	assert.True(t, errors.Is(err, engine.ErrConflict), "got %v", err)

	_, err = execute(t, append([]string{"plan", "--force"}, flags...)...)
	assert.NoError(t, err)
}

func TestRestoreCommand_RequiresTable(t *testing.T) {
	_, flags := setupOutput(t)
	_, err := execute(t, append([]string{"restore"}, flags...)...)
	assert.Error(t, err)
}

func TestApplyCommand_SecondRunAndRecordedRestore(t *testing.T) {
	dir, flags := setupOutput(t)
	tableOut := filepath.Join(dir, "table.json")

	_, err := execute(t, append([]string{"apply", "--table-out", tableOut}, flags...)...)
	require.NoError(t, err)
	placedApp := readOutput(t, dir, "app.json")

	_, err = execute(t, append([]string{"apply"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, placedApp, readOutput(t, dir, "app.json"))
	assert.Equal(t, "<view>card</view>", readOutput(t, dir, "pkg-0/components/card/index.wxml"))

	_, err = execute(t, append([]string{"restore", "--table", tableOut}, flags...)...)
	require.NoError(t, err)
	data, err := os.ReadFile(tableOut)
	require.NoError(t, err)
	var table project.Table
	require.NoError(t, json.Unmarshal(data, &table))
	assert.Contains(t, table, "pkg/detail")
}

func TestLoadSettings_FlagOverrides(t *testing.T) {
	_, flags := setupOutput(t)
	t.Setenv("SUBPKG_SHARED_DIR", "shared")

	cmd := &cobra.Command{}
	registerSettingsFlags(cmd.Flags())
	t.Cleanup(func() { resetFlags(rootCmd) })
	require.NoError(t, cmd.Flags().Parse(append(flags, "--platform", "alipay", "--concurrency", "2")))

	settings, err := loadSettings(cmd)
	require.NoError(t, err)
	assert.Equal(t, "alipay", settings.Platform)
	assert.Equal(t, 2, settings.Concurrency)
	assert.Equal(t, "shared", settings.SharedDir)
	assert.Equal(t, "npm", settings.NpmRoot)

	require.NoError(t, cmd.Flags().Parse([]string{"--concurrency", "0"}))
	_, err = loadSettings(cmd)
	assert.Error(t, err)
}

func TestFormatJSON(t *testing.T) {
	got, err := formatJSON(map[string]string{"key": "value"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"value"}`, got)
	assert.Contains(t, formatError(os.ErrNotExist), "Error:")
	assert.Equal(t, "1 operation", PrintCount(1, "operation", "operations"))
	assert.Equal(t, "3 operations", PrintCount(3, "operation", "operations"))
}

func TestPrintPlan_PreloadRules(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevNoColor := color.Output, color.NoColor
	color.Output, color.NoColor = &buf, true
	defer func() { color.Output, color.NoColor = prevOut, prevNoColor }()

	printPlan(&engine.PlanResult{
		Subpackages: &subpackage.Result{
			SubPackages: []subpackage.NormalizedSubpackage{{Root: "pkg-0", SourceRoot: "pkg", Pages: []string{"detail"}}},
			PreloadRule: subpackage.PreloadRuleTable{
				"pages/index/index": {Packages: []string{"pkg-0"}, Network: "all"},
			},
		},
		Plan: planner.NewMovePlan(),
	})

	out := buf.String()
	assert.Contains(t, out, "Preload rules")
	assert.Contains(t, out, "• pages/index/index → pkg-0 (all)")
}

func TestApplyCommand_PrunesEmptiedDirectories(t *testing.T) {
	dir, flags := setupOutput(t)

	_, err := execute(t, append([]string{"apply"}, flags...)...)
	require.NoError(t, err)

	for _, gone := range []string{"pkg", "components/card"} {
		_, err := os.Stat(filepath.Join(dir, "dist", filepath.FromSlash(gone)))
		assert.True(t, os.IsNotExist(err), "%s should have been pruned", gone)
	}
	_, err = os.Stat(filepath.Join(dir, "dist", "components", "nav"))
	assert.NoError(t, err)
}

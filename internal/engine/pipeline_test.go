package engine

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/subpkg/internal/fsops"
	"github.com/danieljhkim/subpkg/internal/planner"
	"github.com/danieljhkim/subpkg/internal/project"
	"github.com/danieljhkim/subpkg/internal/rewrite"
)

func TestPipeline_FormatSpecWritesNormalizedConfig(t *testing.T) {
	eng, _ := newTestEngine(fsops.NewMemFS(scenarioFiles()))
	bc, err := eng.NewBuild(testSettings())
	require.NoError(t, err)
	table, err := eng.LoadTable(bc, "")
	require.NoError(t, err)

	p := NewPipeline(bc, false)
	require.NoError(t, p.FormatSpec(context.Background(), table))
	assert.Equal(t, []string{"a-0", "b-1"}, bc.Subpackages.Roots())
	require.NotNil(t, bc.App)
	assert.Len(t, bc.App.SubPackages, 2)

	var written []map[string]any
	require.NoError(t, json.Unmarshal(table["app"].Config.Extra["subPackages"], &written))
	assert.Equal(t, "a-0", written[0]["root"])

	var rules map[string]map[string]any
	require.NoError(t, json.Unmarshal(table["app"].Config.Extra["preloadRule"], &rules))
	assert.Equal(t, "all", rules["pages/index/index"]["network"])

	// The declared config is only read once per build context.
	table["app"].Config.Extra["subPackages"] = json.RawMessage(`[]`)
	require.NoError(t, p.FormatSpec(context.Background(), table))
	assert.Equal(t, []string{"a-0", "b-1"}, bc.Subpackages.Roots())
}

func TestPipeline_StagesFillTheContext(t *testing.T) {
	eng, _ := newTestEngine(fsops.NewMemFS(scenarioFiles()))
	bc, err := eng.NewBuild(testSettings())
	require.NoError(t, err)
	table, err := eng.LoadTable(bc, "")
	require.NoError(t, err)

	require.NoError(t, NewPipeline(bc, false).Run(context.Background(), table))

	assert.NotEmpty(t, bc.ID)
	assert.Equal(t, testStart, bc.StartedAt)
	assert.Contains(t, bc.Preset, "components/C/index")
	assert.Equal(t, []string{"a-0"}, bc.Ownership["components/C/index"].SubRoots)
	assert.Equal(t, 3, bc.Plan.Count(planner.OpMove))
	assert.Equal(t, []string{"a-0/components/C/index"}, bc.Relocation["components/C/index"])
}

func TestPipeline_ForcedBuildRecordsOccupiedDestinations(t *testing.T) {
	files := scenarioFiles()
	files["dist/a-0/components/C/index.json"] = `{"component":true}`
	files["dist/a-0/components/C/index.wxml"] = `<view>old</view>`
	eng, _ := newTestEngine(fsops.NewMemFS(files))
	bc, err := eng.NewBuild(testSettings())
	require.NoError(t, err)
	table, err := eng.LoadTable(bc, "")
	require.NoError(t, err)

	require.NoError(t, NewPipeline(bc, true).Run(context.Background(), table))

	assert.Equal(t, []rewrite.Skip{{From: "components/C/index", To: "a-0/components/C/index"}}, bc.SkippedMoves)
	assert.Contains(t, table, "a-0/components/C/index")
	assert.NotContains(t, table, "components/C/index")
}

func TestPipeline_NoEntry(t *testing.T) {
	bc, err := NewBuildContext(testSettings(), testStart)
	require.NoError(t, err)
	err = NewPipeline(bc, false).Run(context.Background(), project.Table{})
	assert.True(t, errors.Is(err, ErrNoEntry))
}

func TestNewBuildContext(t *testing.T) {
	bc, err := NewBuildContext(testSettings(), testStart)
	require.NoError(t, err)
	assert.Equal(t, []string{".wxml", ".wxss", ".json", ".js"}, bc.Suffixes())
	assert.Equal(t, ".json", bc.ConfigSuffix())
	assert.Equal(t, ".wxss", bc.StyleSuffix())

	other, err := NewBuildContext(testSettings(), testStart)
	require.NoError(t, err)
	assert.NotEqual(t, bc.ID, other.ID)
}

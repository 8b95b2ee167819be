package ownership

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljhkim/subpkg/internal/graph"
	"github.com/danieljhkim/subpkg/internal/project"
)

const rootMain = project.RootMain

func entry(subRoots []string, parents ...string) *graph.Entry {
	return &graph.Entry{SubRoots: subRoots, Parents: parents}
}

func TestMergeSets(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, MergeSets([]string{"a", "b"}, []string{"b", "c", "a"}))
	assert.Empty(t, MergeSets(nil, nil))
}

func TestHasMainRoot(t *testing.T) {
	assert.True(t, HasMainRoot([]string{rootMain}, false))
	assert.True(t, HasMainRoot([]string{"a", "b"}, false))
	assert.False(t, HasMainRoot([]string{"a", "b"}, true))
	assert.False(t, HasMainRoot([]string{"a"}, false))
	assert.False(t, HasMainRoot(nil, false))
}

func TestResolve_Direct(t *testing.T) {
	got := Resolve(graph.Preset{
		"c/only-a": entry([]string{"pkgA"}),
		"c/shared": entry([]string{"pkgB", "pkgA"}),
		"c/main":   entry([]string{rootMain, "pkgA"}),
		"c/orphan": entry(nil),
	}, Options{})

	want := Map{
		"c/only-a": {SubRoots: []string{"pkgA"}, Move: true},
		"c/shared": {SubRoots: []string{rootMain}, Move: false},
		"c/main":   {SubRoots: []string{rootMain}, Move: false},
		"c/orphan": {SubRoots: []string{rootMain}, Move: false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_AllowMultiOwner(t *testing.T) {
	got := Resolve(graph.Preset{
		"c/shared": entry([]string{"pkgB", "pkgA"}),
		"c/main":   entry([]string{"pkgA", rootMain}),
	}, Options{AllowMultiOwner: true})

	assert.Equal(t, Record{SubRoots: []string{"pkgA", "pkgB"}, Move: true}, got["c/shared"])
	assert.Equal(t, []string{"pkgA", "pkgB"}, got["c/shared"].Owners())
	assert.Equal(t, Record{SubRoots: []string{rootMain}, Move: false}, got["c/main"])
}

func TestResolve_MergesEveryParent(t *testing.T) {
	// leaf is used by two components owned by different subpackages.
	got := Resolve(graph.Preset{
		"c/x":    entry([]string{"pkgA"}),
		"c/y":    entry([]string{"pkgB"}),
		"c/leaf": entry(nil, "c/x", "c/y"),
	}, Options{})

	assert.Equal(t, Record{SubRoots: []string{rootMain}}, got["c/leaf"])
	assert.True(t, got["c/x"].Move)
	assert.True(t, got["c/y"].Move)
}

func TestResolve_Chain(t *testing.T) {
	got := Resolve(graph.Preset{
		"c/a": entry([]string{"pkgA"}),
		"c/b": entry(nil, "c/a"),
		"c/c": entry(nil, "c/b"),
	}, Options{})

	for _, k := range []string{"c/a", "c/b", "c/c"} {
		assert.Equal(t, Record{SubRoots: []string{"pkgA"}, Move: true}, got[k], k)
	}
}

func TestResolve_Diamond(t *testing.T) {
	got := Resolve(graph.Preset{
		"c/top":   entry([]string{"pkgA"}),
		"c/left":  entry(nil, "c/top"),
		"c/right": entry(nil, "c/top"),
		"c/leaf":  entry(nil, "c/left", "c/right"),
	}, Options{})

	assert.Equal(t, Record{SubRoots: []string{"pkgA"}, Move: true}, got["c/leaf"])
}

func TestResolve_Cycles(t *testing.T) {
	t.Run("cycle fed by one package", func(t *testing.T) {
		got := Resolve(graph.Preset{
			"c/a": entry([]string{"pkgA"}, "c/b"),
			"c/b": entry(nil, "c/a"),
		}, Options{})
		assert.Equal(t, Record{SubRoots: []string{"pkgA"}, Move: true}, got["c/a"])
		assert.Equal(t, Record{SubRoots: []string{"pkgA"}, Move: true}, got["c/b"])
	})

	t.Run("cycle fed by two packages", func(t *testing.T) {
		got := Resolve(graph.Preset{
			"c/a":    entry([]string{"pkgA"}, "c/b"),
			"c/b":    entry([]string{"pkgB"}, "c/a"),
			"c/leaf": entry(nil, "c/b"),
		}, Options{})
		for _, k := range []string{"c/a", "c/b", "c/leaf"} {
			assert.Equal(t, Record{SubRoots: []string{rootMain}}, got[k], k)
		}
	})

	t.Run("unowned cycle", func(t *testing.T) {
		got := Resolve(graph.Preset{
			"c/a": entry(nil, "c/b"),
			"c/b": entry(nil, "c/a"),
		}, Options{})
		assert.Equal(t, Record{SubRoots: []string{rootMain}}, got["c/a"])
	})

	t.Run("self loop", func(t *testing.T) {
		got := Resolve(graph.Preset{
			"c/a": entry([]string{"pkgA"}, "c/a"),
		}, Options{})
		assert.Equal(t, Record{SubRoots: []string{"pkgA"}, Move: true}, got["c/a"])
	})
}

func TestResolve_LongChainDoesNotRecurse(t *testing.T) {
	preset := graph.Preset{"c/0": entry([]string{"pkgA"})}
	prev := "c/0"
	for i := 1; i < 50000; i++ {
		k := "c/" + strconv.Itoa(i)
		preset[k] = entry(nil, prev)
		prev = k
	}
	got := Resolve(preset, Options{})
	assert.Equal(t, Record{SubRoots: []string{"pkgA"}, Move: true}, got[prev])
}

func TestResolve_OrderIndependent(t *testing.T) {
	base := graph.Preset{
		"c/a": entry([]string{"pkgA"}),
		"c/b": entry([]string{"pkgB"}, "c/d"),
		"c/c": entry(nil, "c/a", "c/b", "c/e"),
		"c/d": entry(nil, "c/c"),
		"c/e": entry([]string{"pkgA"}),
		"c/f": entry(nil, "c/e", "c/a"),
	}
	want := Resolve(base, Options{})

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := graph.Preset{}
		for k, e := range base {
			parents := append([]string(nil), e.Parents...)
			rng.Shuffle(len(parents), func(a, b int) { parents[a], parents[b] = parents[b], parents[a] })
			roots := append([]string(nil), e.SubRoots...)
			rng.Shuffle(len(roots), func(a, b int) { roots[a], roots[b] = roots[b], roots[a] })
			shuffled[k] = entry(roots, parents...)
		}
		got := Resolve(shuffled, Options{})
		require.Empty(t, cmp.Diff(want, got))
	}
	assert.Equal(t, Record{SubRoots: []string{"pkgA"}, Move: true}, want["c/f"])
	assert.Equal(t, Record{SubRoots: []string{rootMain}}, want["c/c"])
}

package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/raphi011/cleanart/internal/clean"
	"github.com/raphi011/cleanart/internal/trace"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatText, "text": FormatText, "JSON": FormatJSON, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.ErrorContains(t, err, `invalid format "xml"`)
}

func TestTopInUse(t *testing.T) {
	t.Parallel()

	target := t.TempDir()
	big := filepath.Join(target, "release", "deps", "libbig-1.rlib")
	mid := filepath.Join(target, "wasm32-unknown-unknown", "debug", "deps", "libmid-2.rlib")
	tieA := filepath.Join(target, "debug", "deps", "liba-3.rmeta")
	tieB := filepath.Join(target, "debug", "deps", "libb-4.rmeta")
	root := filepath.Join(target, "debug", "app")
	writeFile(t, big, 300)
	writeFile(t, mid, 200)
	writeFile(t, tieA, 10)
	writeFile(t, tieB, 10)
	writeFile(t, root, 5)

	res := trace.NewResult()
	res.Add(big, "app")
	res.Add(mid, "")
	res.Add(tieB, "")
	res.Add(tieA, "")
	res.Add(root, "")
	res.Add(filepath.Join(target, "debug", "deps", "libgone-5.rlib"), "")

	got := TopInUse(target, res, 4)
	require.Len(t, got, 4)
	assert.Equal(t, InUse{Path: big, Size: 300, Profile: "release", UsedBy: []string{"app"}}, got[0])
	assert.Equal(t, "wasm32-unknown-unknown/debug", got[1].Profile)
	assert.Equal(t, tieA, got[2].Path)
	assert.Equal(t, tieB, got[3].Path)

	all := TopInUse(target, res, 100)
	assert.Len(t, all, 5, "missing artifacts are skipped")
	assert.Equal(t, "debug", all[4].Profile)

	assert.Nil(t, TopInUse(target, res, 0))
	assert.Nil(t, TopInUse(target, nil, 5))
}

func TestErrors_Sorted(t *testing.T) {
	t.Parallel()

	got := Errors(map[clean.ErrorKey]error{
		{Crate: "b", Profile: "debug", Path: "/t/z"}: errors.New("denied"),
		{Crate: "a", Profile: "debug", Path: "/t/a"}: errors.New("busy"),
	})
	assert.Equal(t, []ErrorEntry{
		{Crate: "a", Profile: "debug", Path: "/t/a", Error: "busy"},
		{Crate: "b", Profile: "debug", Path: "/t/z", Error: "denied"},
	}, got)
	assert.Nil(t, Errors(nil))
}

func sampleReport() *Report {
	plan := clean.Stats{
		Files:     2,
		Bytes:     30,
		UsedBytes: 100,
		PerCrate:  map[string]clean.CrateStat{"serde": {Files: 1, Bytes: 20}},
		PerProfile: map[string]clean.ProfileStat{
			"debug": {Files: 2, Bytes: 30, UsedBytes: 100, TotalDirBytes: 130},
		},
		FilesToRemove: []clean.Candidate{{Path: "/t/debug/deps/libserde-old.rlib", Size: 20, Profile: "debug"}},
		DirsToRemove:  []clean.Candidate{{Path: "/t/debug/incremental/app-1", Size: 10, Profile: "debug"}},
	}
	res := trace.NewResult()
	res.ExitCode = 0
	r := New("/t", "cargo build", res, []string{"debug"}, plan, 0)
	r.SetRemoved(clean.Stats{
		Files: 1,
		Bytes: 20,
		Errors: map[clean.ErrorKey]error{
			{Crate: clean.IncrementalCrate, Profile: "debug", Path: "/t/debug/incremental/app-1"}: errors.New("busy"),
		},
	})
	return r
}

func TestEncode_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, sampleReport()))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "/t", got["target_dir"])
	assert.Equal(t, "cargo build", got["command"])

	plan := got["plan"].(map[string]any)
	assert.EqualValues(t, 30, plan["bytes"])
	profiles := plan["profiles"].(map[string]any)
	assert.EqualValues(t, 130, profiles["debug"].(map[string]any)["total_dir_bytes"])

	removed := got["removed"].(map[string]any)
	assert.EqualValues(t, 1, removed["files"])
	errs := removed["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "incremental", errs[0].(map[string]any)["crate"])
	assert.Equal(t, "busy", errs[0].(map[string]any)["error"])
}

func TestEncode_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatYAML, sampleReport()))

	var got Report
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "/t", got.TargetDir)
	assert.Equal(t, []string{"debug"}, got.Profiles)
	assert.Equal(t, clean.CrateStat{Files: 1, Bytes: 20}, got.Plan.Crates["serde"])
	require.Len(t, got.Plan.StaleDirs, 1)
	assert.Equal(t, "/t/debug/incremental/app-1", got.Plan.StaleDirs[0].Path)
	require.NotNil(t, got.Removed)
	assert.Equal(t, int64(20), got.Removed.Bytes)
}

func TestEncode_Text(t *testing.T) {
	t.Parallel()

	err := Encode(&bytes.Buffer{}, FormatText, sampleReport())
	assert.Error(t, err)
}

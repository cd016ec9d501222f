package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dot5enko/metatable/io"
	"github.com/dot5enko/metatable/metadata"
	"github.com/dot5enko/metatable/packer"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
enums:
  quality:
    valueType: UINT8
    values:
      - {name: Low, value: 0}
      - {name: High, value: 1}
classes:
  building:
    properties:
      height: {type: FLOAT32, semantic: HEIGHT}
      names: {type: ARRAY, componentType: STRING}
      quality: {type: ENUM, enumType: quality, default: Low}
      alpha: {type: UINT8, normalized: true}
      id: {type: UINT64}
`

const testRows = `
- {height: 1.5, names: [a, b], quality: High, alpha: 1.0, id: 18446744073709551615}
- {height: 2, names: []}
`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

type fixture struct {
	dir    string
	schema string
	rows   string
	bundle string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		dir:    dir,
		schema: filepath.Join(dir, "city.yaml"),
		rows:   filepath.Join(dir, "rows.yaml"),
		bundle: filepath.Join(dir, "buildings.mtb"),
	}

	require.NoError(t, os.WriteFile(f.schema, []byte(testSchema), 0o644))
	require.NoError(t, os.WriteFile(f.rows, []byte(testRows), 0o644))

	return f
}

func run(args ...string) (string, error) {
	cmd := NewRootCmd()

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))

	err := cmd.Execute()
	return out.String(), err
}

func (f *fixture) run(args ...string) (string, error) {
	return run(append(args, "--schema", f.schema, "--class", "building")...)
}

func (f *fixture) get(t *testing.T, index, id string) string {
	t.Helper()

	out, err := f.run("get", f.bundle, index, id)
	require.NoError(t, err, out)
	return strings.TrimSpace(out)
}

func TestPackAndGet(t *testing.T) {
	f := newFixture(t)

	out, err := f.run("pack", "--rows", f.rows, "-o", f.bundle)
	require.NoError(t, err, out)
	assert.Contains(t, out, "packed 2 rows of 'building'")

	assert.Equal(t, "1.5", f.get(t, "0", "height"))
	assert.Equal(t, "[a b]", f.get(t, "0", "names"))
	assert.Equal(t, `"High"`, f.get(t, "0", "quality"))
	assert.Equal(t, "1", f.get(t, "0", "alpha"))
	assert.Equal(t, "18446744073709551615", f.get(t, "0", "id"))

	assert.Equal(t, "2", f.get(t, "1", "height"))
	assert.Equal(t, "[]", f.get(t, "1", "names"))
	assert.Equal(t, `"Low"`, f.get(t, "1", "quality"))
	assert.Equal(t, "0", f.get(t, "1", "alpha"))

	_, err = f.run("get", f.bundle, "2", "height")
	assert.ErrorIs(t, err, metadata.ErrIndexOutOfRange)

	_, err = f.run("get", f.bundle, "x", "height")
	assert.Error(t, err)
}

func TestPackErrors(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, os.WriteFile(f.rows, []byte("- {height: 1, roof: flat}\n"), 0o644))
	_, err := f.run("pack", "--rows", f.rows, "-o", f.bundle)
	assert.ErrorIs(t, err, packer.ErrUnknownProperty)

	require.NoError(t, os.WriteFile(f.rows, []byte("- {alpha: 2}\n"), 0o644))
	_, err = f.run("pack", "--rows", f.rows, "-o", f.bundle)
	assert.ErrorIs(t, err, metadata.ErrOutOfRange)

	require.NoError(t, os.WriteFile(f.rows, []byte("[]\n"), 0o644))
	_, err = f.run("pack", "--rows", f.rows, "-o", f.bundle)
	assert.Error(t, err)

	_, err = run("pack", "--rows", f.rows, "-o", f.bundle)
	assert.Error(t, err)

	_, err = f.run("pack", "--rows", f.rows, "-o", f.bundle, "--compression", "zip")
	assert.Error(t, err)
}

func TestSet(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("pack", "--rows", f.rows, "-o", f.bundle, "--compression", "lz4")
	require.NoError(t, err)

	before, _, err := readBundle(f.bundle)
	require.NoError(t, err)

	copyPath := filepath.Join(f.dir, "copy.mtb")
	out, err := f.run("set", f.bundle, "1", "names", "[x, yz]", "-o", copyPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "set 'names' of row 1")

	assert.Equal(t, "[]", f.get(t, "1", "names"))

	copied := &fixture{schema: f.schema, bundle: copyPath}
	assert.Equal(t, "[x yz]", copied.get(t, "1", "names"))
	assert.Equal(t, "[a b]", copied.get(t, "0", "names"))

	after, _, err := readBundle(copyPath)
	require.NoError(t, err)
	assert.Equal(t, before.Uid, after.Uid)
	assert.Equal(t, io.Lz4Compression, after.Compression)

	_, err = f.run("set", f.bundle, "0", "alpha", "0.2")
	require.NoError(t, err)
	assert.Equal(t, "0.2", f.get(t, "0", "alpha"))

	_, err = f.run("set", f.bundle, "0", "quality", "Medium")
	assert.ErrorIs(t, err, metadata.ErrTypeMismatch)

	_, err = f.run("set", f.bundle, "0", "roof", "1")
	assert.ErrorIs(t, err, packer.ErrUnknownProperty)

	_, err = f.run("set", f.bundle, "5", "height", "1")
	assert.ErrorIs(t, err, metadata.ErrIndexOutOfRange)
}

func readBundle(path string) (*io.Bundle, int, error) {
	bundle, closeBundle, err := io.ReadBundleFile(path)
	if err != nil {
		return nil, 0, err
	}
	defer closeBundle()

	result := &io.Bundle{Uid: bundle.Uid, Count: bundle.Count, Compression: bundle.Compression}
	return result, len(bundle.BufferViews), nil
}

func TestInspect(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("pack", "--rows", f.rows, "-o", f.bundle)
	require.NoError(t, err)

	dump := filepath.Join(f.dir, "views")
	out, err := f.run("inspect", f.bundle, "--raw", "--dump", dump)
	require.NoError(t, err, out)

	assert.Contains(t, out, "class 'building', 2 rows, none")
	assert.Contains(t, out, `0: height=1.5 names=[a b] quality="High" alpha=1 id=18446744073709551615`)
	assert.Contains(t, out, `1: height=2 names=[] quality="Low" alpha=0 id=0`)
	assert.Contains(t, out, "BufferViews")

	_, views, err := readBundle(f.bundle)
	require.NoError(t, err)

	entries, err := os.ReadDir(dump)
	require.NoError(t, err)
	assert.Len(t, entries, views)
}

func TestConfigFile(t *testing.T) {
	f := newFixture(t)

	config := filepath.Join(f.dir, "metatable.yaml")
	require.NoError(t, os.WriteFile(config, []byte(
		"schema: "+f.schema+"\nclass: building\noffset_type: UINT16\nnative_int64: false\n",
	), 0o644))

	_, err := run("--config", config, "pack", "--rows", f.rows, "-o", f.bundle)
	require.NoError(t, err)

	out, err := run("--config", config, "get", f.bundle, "0", "names")
	require.NoError(t, err)
	assert.Equal(t, "[a b]", strings.TrimSpace(out))

	// degraded hosts read 64-bit integers as float64
	out, err = run("--config", config, "get", f.bundle, "0", "id")
	require.NoError(t, err)
	assert.Equal(t, "1.8446744073709552e+19", strings.TrimSpace(out))

	t.Setenv("METATABLE_NATIVE_INT64", "true")
	out, err = run("--config", config, "get", f.bundle, "0", "id")
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", strings.TrimSpace(out))

	_, err = run("--config", filepath.Join(f.dir, "missing.yaml"), "get", f.bundle, "0", "id")
	assert.Error(t, err)
}

func TestFindAndStats(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("pack", "--rows", f.rows, "-o", f.bundle)
	require.NoError(t, err)

	out, err := f.run("find", f.bundle, "--where", "height=1..2")
	require.NoError(t, err, out)
	assert.Equal(t, "0\n1\n", out)

	out, err = f.run("find", f.bundle, "--where", "height=1..2", "--where", "alpha=1")
	require.NoError(t, err, out)
	assert.Equal(t, "0\n", out)

	out, err = f.run("find", f.bundle, "--where", "id=0")
	require.NoError(t, err, out)
	assert.Equal(t, "1\n", out)

	_, err = f.run("find", f.bundle, "--where", "names=a")
	assert.Error(t, err)

	_, err = f.run("find", f.bundle, "--where", "height")
	assert.Error(t, err)

	out, err = f.run("inspect", f.bundle, "--stats")
	require.NoError(t, err, out)
	assert.Contains(t, out, "height: min=1.5 max=2\n")
	assert.Contains(t, out, "alpha: min=0 max=1\n")
	assert.NotContains(t, out, "names: min")
}

func TestSetRefusesDegradedRepack(t *testing.T) {
	f := newFixture(t)

	_, err := f.run("pack", "--rows", f.rows, "-o", f.bundle)
	require.NoError(t, err)

	t.Setenv("METATABLE_NATIVE_INT64", "false")

	_, err = f.run("set", f.bundle, "0", "height", "3")
	assert.ErrorContains(t, err, "'id' is read as float64")

	t.Setenv("METATABLE_NATIVE_INT64", "true")
	assert.Equal(t, "1.5", f.get(t, "0", "height"))
}

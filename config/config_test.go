package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/kpartite/config"
)

const yamlJob = `
input:
  path: entities.csv
  null_values: [NA]
id_column: id
group_column: group
edges:
  weight: math.abs(value_A - value_B)
  threshold: 30
  aggregator: max
match:
  max_time: 2s
  multiplier: 100
greedy:
  attempts: 50
  workers: 4
  preference: _distance
`

const tomlJob = `
id_column = "id"
group_column = "group"

[input]
path = "entities.csv"
null_values = ["NA"]

[edges]
weight = "math.abs(value_A - value_B)"
threshold = 30.0
aggregator = "max"

[match]
max_time = "2s"
multiplier = 100.0

[greedy]
attempts = 50
workers = 4
preference = "_distance"
`

func TestDecode_YAMLAndTOMLAgree(t *testing.T) {
	y, err := config.Decode(strings.NewReader(yamlJob), ".yaml")
	require.NoError(t, err)
	tm, err := config.Decode(strings.NewReader(tomlJob), ".toml")
	require.NoError(t, err)

	assert.Equal(t, y, tm)
	assert.Equal(t, "id", y.IDColumn)
	assert.Equal(t, []string{"NA"}, y.Input.NullValues)
	require.NotNil(t, y.Edges.Threshold)
	assert.Equal(t, 30.0, *y.Edges.Threshold)
	assert.Equal(t, 2*time.Second, y.Match.MaxTimeDuration())
	assert.Equal(t, 4, y.Greedy.Workers)
}

func TestDecode_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{"missing id", "input: {path: a.csv}\ngroup_column: g\n", "IDColumn: field is required"},
		{"same columns", "input: {path: a.csv}\nid_column: g\ngroup_column: g\n", "must differ from IDColumn"},
		{"missing path", "id_column: id\ngroup_column: g\n", "Input.Path: field is required"},
		{"sql without query", "input: {format: sql, dsn: x}\nid_column: id\ngroup_column: g\n", "Input.Query: field is required"},
		{"bad format", "input: {path: a, format: xml}\nid_column: id\ngroup_column: g\n", "must be one of"},
		{"filter and threshold", "input: {path: a}\nid_column: id\ngroup_column: g\nedges: {filter: 'true', threshold: 3}\n", "cannot be combined"},
		{"bad aggregator", "input: {path: a}\nid_column: id\ngroup_column: g\nedges: {aggregator: median}\n", "Edges.Aggregator"},
		{"bad duration", "input: {path: a}\nid_column: id\ngroup_column: g\nmatch: {max_time: soon}\n", "is not a duration"},
		{"negative attempts", "input: {path: a}\nid_column: id\ngroup_column: g\ngreedy: {attempts: -1}\n", "must be at least 0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Decode(strings.NewReader(tc.doc), ".yml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecode_UnknownKeys(t *testing.T) {
	_, err := config.Decode(strings.NewReader("id_column: id\ngroup_column: g\ncolour: red\n"), ".yaml")
	require.Error(t, err)

	_, err = config.Decode(strings.NewReader("id_column = \"id\"\ngroup_column = \"g\"\ncolour = \"red\"\n"), ".toml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "colour")

	_, err = config.Decode(strings.NewReader("{}"), ".json")
	require.ErrorIs(t, err, config.ErrUnknownExtension)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.toml")
	require.NoError(t, os.WriteFile(path, []byte(tomlJob), 0o600))

	job, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "group", job.GroupColumn)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/flatlayout/plan"
	"github.com/wippyai/flatlayout/schemafile"
)

const testSchema = "../../schemafile/testdata/monster.yaml"

func TestSummarize(t *testing.T) {
	model, err := schemafile.Load(testSchema)
	require.NoError(t, err)
	set, err := plan.Build(model, plan.Options{})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, summarize(&out, set))
	text := out.String()

	assert.Contains(t, text, `Root: Monster  identifier "MONS"`)
	assert.Contains(t, text, "struct Vec3  size 12 align 4")
	assert.Contains(t, text, "table Monster  9 slots")
	assert.Contains(t, text, "union_field")
	assert.Contains(t, text, "lookup weapons by Weapon.name (bytes)")
	assert.Contains(t, text, "union tag Equipment")
}

func TestEmitToFile(t *testing.T) {
	model, err := schemafile.Load(testSchema)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "plan.yaml")
	cfg := config{schemaFile: testSchema, output: out}
	require.NoError(t, emit(context.Background(), cfg, model))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc plan.Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "Monster", doc.Root)
	assert.Equal(t, "MONS", doc.FileIdentifier)
	require.NotEmpty(t, doc.Types)

	cfg.format = "xml"
	assert.Error(t, emit(context.Background(), cfg, model))

	cfg.format = "json"
	cfg.density = plan.MaxEnumDensity + 1
	assert.Error(t, emit(context.Background(), cfg, model))
}

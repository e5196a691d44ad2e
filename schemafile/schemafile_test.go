package schemafile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/flatlayout/errors"
	"github.com/wippyai/flatlayout/schema"
)

func TestLoadFormatsAgree(t *testing.T) {
	fromYAML, err := Load(filepath.Join("testdata", "monster.yaml"))
	require.NoError(t, err)
	fromTOML, err := Load(filepath.Join("testdata", "monster.toml"))
	require.NoError(t, err)
	fromJSON, err := Load(filepath.Join("testdata", "monster.json"))
	require.NoError(t, err)

	assert.Equal(t, fromYAML, fromTOML)
	assert.Equal(t, fromYAML, fromJSON)
}

func TestLoadModel(t *testing.T) {
	m, err := Load(filepath.Join("testdata", "monster.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "Monster", m.Root())
	assert.Equal(t, "MONS", m.FileIdentifier())
	assert.Equal(t, "mon", m.FileExtension())
	assert.True(t, m.Options().MutableBuffer)

	vec, ok := m.Struct("Vec3")
	require.True(t, ok)
	assert.True(t, vec.Fixed)

	mon, ok := m.Struct("Monster")
	require.True(t, ok)
	assert.False(t, mon.Fixed)
	assert.True(t, mon.SortBySize)

	want := map[string]schema.Type{
		"pos":           schema.StructRef{Name: "Vec3"},
		"hp":            schema.Scalar{Base: schema.Int16},
		"name":          schema.String{},
		"color":         schema.EnumRef{Name: "Color", Base: schema.Uint8},
		"inventory":     schema.Vector{Elem: schema.Scalar{Base: schema.Uint8}},
		"weapons":       schema.Vector{Elem: schema.TableRef{Name: "Weapon"}},
		"equipped_type": schema.EnumRef{Name: "Equipment", Base: schema.Uint8},
		"equipped":      schema.UnionRef{Name: "Equipment"},
	}
	for name, typ := range want {
		f, ok := mon.Field(name)
		require.True(t, ok, name)
		assert.Equal(t, typ, f.Type, name)
	}

	hp, _ := mon.Field("hp")
	assert.Equal(t, "100", hp.Default)
	friendly, _ := mon.Field("friendly")
	assert.True(t, friendly.Deprecated)

	u, ok := m.Union("Equipment")
	require.True(t, ok)
	member, ok := u.Member(1)
	require.True(t, ok)
	assert.Equal(t, "Weapon", member.Name)
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.yaml", YAML},
		{"a.YML", YAML},
		{"dir/a.toml", TOML},
		{"a.json", JSON},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
	_, err := FormatOf("a.fbs")
	assert.Error(t, err)
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"short identifier", "file_identifier: AB\n"},
		{"unknown nullable", "options: {nullable: maybe}\n"},
		{"table without name", "tables: [{fields: []}]\n"},
		{"field without type", "tables: [{name: T, fields: [{name: a}]}]\n"},
		{"enum without values", "enums: [{name: E, type: int}]\n"},
		{"union without members", "unions: [{name: U}]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc), YAML)
			var fe *errors.Error
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, errors.PhaseLoad, fe.Phase)
		})
	}
}

func TestParseErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		_, err := Parse([]byte("tables: [{name: T, fields: [{name: a, type: Missing}]}]\n"), YAML)
		var fe *errors.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, errors.KindUnknownType, fe.Kind)
		assert.Equal(t, errors.PhaseLoad, fe.Phase)
	})

	t.Run("bad enum type", func(t *testing.T) {
		_, err := Parse([]byte("enums: [{name: E, type: string, values: [{name: A}]}]\n"), YAML)
		var fe *errors.Error
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, errors.KindTypeMismatch, fe.Kind)
	})

	t.Run("schema error passes through", func(t *testing.T) {
		doc := "tables: [{name: T, fields: [{name: a, type: int, key: true}, {name: b, type: int, key: true}]}]\n"
		_, err := Parse([]byte(doc), YAML)
		require.Error(t, err)
		assert.True(t, errors.IsSchemaError(err))
	})

	t.Run("unknown json field", func(t *testing.T) {
		_, err := Parse([]byte(`{"root": "T", "bogus": 1}`), JSON)
		assert.Error(t, err)
	})

	t.Run("malformed toml", func(t *testing.T) {
		_, err := Parse([]byte("root = "), TOML)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
		assert.Error(t, err)
	})
}

func TestWatch(t *testing.T) {
	src, err := os.ReadFile(filepath.Join("testdata", "monster.yaml"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, src, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	models := make(chan *schema.Model, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(m *schema.Model, err error) {
			if err == nil {
				models <- m
			}
		})
	}()

	// Keep rewriting until the watcher is registered and reports a reload.
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case m := <-models:
			assert.Equal(t, "Monster", m.Root())
			cancel()
			require.NoError(t, <-done)
			return
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, src, 0o644))
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
}

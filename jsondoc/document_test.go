package jsondoc_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plus3/linker/jsondoc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScene(t *testing.T) {
	for _, path := range []string{"testdata/scene.json", "testdata/scene.yaml"} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			doc, err := jsondoc.Parse(path)
			require.NoError(t, err)
			assert.Equal(t, path, doc.Path())

			name, err := jsondoc.GetString(doc, "name")
			require.NoError(t, err)
			assert.Equal(t, "arena", name)

			entities, err := jsondoc.GetNumber(doc, "entities")
			require.NoError(t, err)
			assert.Equal(t, 250.0, entities)

			gravity, err := jsondoc.GetNumber(doc, "gravity")
			require.NoError(t, err)
			assert.InDelta(t, 9.81, gravity, 1e-12)

			bounds, err := jsondoc.GetObject(doc, "bounds")
			require.NoError(t, err)
			width, err := bounds.Number("width")
			require.NoError(t, err)
			assert.Equal(t, 640.0, width)
			assert.Equal(t, []string{"width", "height"}, bounds.Keys())

			root, err := doc.Root().AsObject()
			require.NoError(t, err)
			paused, err := root.Bool("paused")
			require.NoError(t, err)
			assert.False(t, paused)

			owner, err := root.Get("owner")
			require.NoError(t, err)
			assert.True(t, owner.IsNull())

			waves, err := jsondoc.GetArray(doc, "waves")
			require.NoError(t, err)
			require.Equal(t, 2, waves.Len())

			objects, err := waves.Objects()
			require.NoError(t, err)
			after, err := objects[0].Number("after")
			require.NoError(t, err)
			assert.Equal(t, 1.5, after)
			count, err := objects[0].Number("count")
			require.NoError(t, err)
			assert.Equal(t, 100.0, count)

			tags, err := jsondoc.GetArray(doc, "tags")
			require.NoError(t, err)
			_, err = tags.Objects()
			assert.True(t, errors.Is(err, jsondoc.ErrTypeMismatch))

			first, err := tags.At(0)
			require.NoError(t, err)
			tag, err := first.AsString()
			require.NoError(t, err)
			assert.Equal(t, "pvp", tag)
		})
	}
}

func TestYAMLMergeAndHexNumbers(t *testing.T) {
	doc, err := jsondoc.Parse("testdata/scene.yaml")
	require.NoError(t, err)

	waves, err := jsondoc.GetArray(doc, "waves")
	require.NoError(t, err)
	objects, err := waves.Objects()
	require.NoError(t, err)

	// Explicit keys override merged defaults.
	after, err := objects[0].Number("after")
	require.NoError(t, err)
	assert.Equal(t, 1.5, after)

	// The second wave only has the merged defaults.
	after, err = objects[1].Number("after")
	require.NoError(t, err)
	assert.Equal(t, 1.0, after)
	count, err := objects[1].Number("count")
	require.NoError(t, err)
	assert.Equal(t, 10.0, count)

	mask, err := jsondoc.GetNumber(doc, "mask")
	require.NoError(t, err)
	assert.Equal(t, 31.0, mask)
}

func TestGetDecimalIsExact(t *testing.T) {
	doc, err := jsondoc.ParseBytes([]byte(`{"budget": 0.1, "big": 123456789012345678901234567890}`))
	require.NoError(t, err)

	budget, err := jsondoc.GetDecimal(doc, "budget")
	require.NoError(t, err)
	assert.True(t, budget.Equal(decimal.RequireFromString("0.1")))

	big, err := jsondoc.GetDecimal(doc, "big")
	require.NoError(t, err)
	assert.Equal(t, "123456789012345678901234567890", big.String())
}

func TestLookupErrors(t *testing.T) {
	doc, err := jsondoc.ParseBytes([]byte(`{"name": "arena", "count": 3, "list": [], "obj": {}}`))
	require.NoError(t, err)

	tests := []struct {
		name   string
		lookup func() error
		want   error
	}{
		{"missing object", func() error { _, err := jsondoc.GetObject(doc, "nope"); return err }, jsondoc.ErrKeyNotFound},
		{"missing array", func() error { _, err := jsondoc.GetArray(doc, "nope"); return err }, jsondoc.ErrKeyNotFound},
		{"missing string", func() error { _, err := jsondoc.GetString(doc, "nope"); return err }, jsondoc.ErrKeyNotFound},
		{"missing number", func() error { _, err := jsondoc.GetNumber(doc, "nope"); return err }, jsondoc.ErrKeyNotFound},
		{"string as number", func() error { _, err := jsondoc.GetNumber(doc, "name"); return err }, jsondoc.ErrTypeMismatch},
		{"number as string", func() error { _, err := jsondoc.GetString(doc, "count"); return err }, jsondoc.ErrTypeMismatch},
		{"array as object", func() error { _, err := jsondoc.GetObject(doc, "list"); return err }, jsondoc.ErrTypeMismatch},
		{"object as array", func() error { _, err := jsondoc.GetArray(doc, "obj"); return err }, jsondoc.ErrTypeMismatch},
		{"number as decimal ok", func() error { _, err := jsondoc.GetDecimal(doc, "count"); return err }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.lookup()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var lookupErr *jsondoc.LookupError
			require.True(t, errors.As(err, &lookupErr))
			assert.NotEmpty(t, lookupErr.Key)
		})
	}
}

func TestTypeMismatchCarriesKinds(t *testing.T) {
	doc, err := jsondoc.ParseBytes([]byte(`{"name": "arena"}`))
	require.NoError(t, err)

	_, err = jsondoc.GetNumber(doc, "name")

	var lookupErr *jsondoc.LookupError
	require.True(t, errors.As(err, &lookupErr))
	assert.Equal(t, "name", lookupErr.Key)
	assert.Equal(t, jsondoc.KindNumber, lookupErr.Want)
	assert.Equal(t, jsondoc.KindString, lookupErr.Got)
	assert.Equal(t, `jsondoc: field "name" is string, not number`, err.Error())
}

func TestNonObjectRoot(t *testing.T) {
	doc, err := jsondoc.ParseBytes([]byte(`[1, 2, 3]`))
	require.NoError(t, err)
	assert.Equal(t, jsondoc.KindArray, doc.Root().Kind())

	_, err = jsondoc.GetString(doc, "name")
	assert.True(t, errors.Is(err, jsondoc.ErrTypeMismatch))

	_, err = jsondoc.GetNumber(nil, "name")
	assert.True(t, errors.Is(err, jsondoc.ErrTypeMismatch))
}

func TestParseNotFound(t *testing.T) {
	_, err := jsondoc.Parse(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, errors.Is(err, jsondoc.ErrNotFound))
	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.False(t, errors.Is(err, jsondoc.ErrParse))
}

func TestParseMalformedFile(t *testing.T) {
	_, err := jsondoc.Parse("testdata/malformed.json")
	require.Error(t, err)
	assert.True(t, errors.Is(err, jsondoc.ErrParse))
	assert.False(t, errors.Is(err, jsondoc.ErrNotFound))

	var parseErr *jsondoc.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, "testdata/malformed.json", parseErr.Path)
	assert.Equal(t, 3, parseErr.Line)
	assert.Greater(t, parseErr.Column, 0)
	assert.True(t, strings.HasPrefix(err.Error(), "parse testdata/malformed.json:3:"))
}

func TestParseBytesMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"whitespace only", "   \n"},
		{"truncated object", `{"a": 1`},
		{"truncated array", `[1, 2`},
		{"trailing comma in object", `{"a": 1,}`},
		{"trailing comma in array", `[1,]`},
		{"trailing data", `{"a": 1} {"b": 2}`},
		{"bare word", `hello`},
		{"missing colon", `{"a" 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jsondoc.ParseBytes([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, jsondoc.ErrParse), "got %v", err)
		})
	}
}

func TestParseYAMLMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"bad indentation", "a:\n  b: 1\n c: 2\n"},
		{"non scalar key", "? [a, b]\n: 1\n"},
		{"self referencing sequence", "a: &x [*x]\n"},
		{"self referencing mapping", "a: &x {b: *x}\n"},
		{"self merging mapping", "a: &x {<<: *x, b: 1}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jsondoc.ParseYAMLBytes([]byte(tt.input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, jsondoc.ErrParse), "got %v", err)
		})
	}
}

func TestDuplicateKeysKeepFirstPositionLastValue(t *testing.T) {
	doc, err := jsondoc.ParseBytes([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	root, err := doc.Root().AsObject()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, root.Keys())

	a, err := root.Number("a")
	require.NoError(t, err)
	assert.Equal(t, 3.0, a)
}

func TestParseReader(t *testing.T) {
	doc, err := jsondoc.ParseReader(strings.NewReader(`{"nested": {"deep": {"value": "x"}}}`))
	require.NoError(t, err)
	assert.Equal(t, "", doc.Path())

	nested, err := jsondoc.GetObject(doc, "nested")
	require.NoError(t, err)
	deep, err := nested.Object("deep")
	require.NoError(t, err)
	value, err := deep.String("value")
	require.NoError(t, err)
	assert.Equal(t, "x", value)
}

func TestArrayAt(t *testing.T) {
	doc, err := jsondoc.ParseBytes([]byte(`{"xs": [true, "two", 3]}`))
	require.NoError(t, err)

	xs, err := jsondoc.GetArray(doc, "xs")
	require.NoError(t, err)

	_, err = xs.At(3)
	assert.True(t, errors.Is(err, jsondoc.ErrIndexOutOfRange))
	_, err = xs.At(-1)
	assert.True(t, errors.Is(err, jsondoc.ErrIndexOutOfRange))

	var kinds []jsondoc.Kind
	for _, v := range xs.Values() {
		kinds = append(kinds, v.Kind())
	}
	assert.Equal(t, []jsondoc.Kind{jsondoc.KindBool, jsondoc.KindString, jsondoc.KindNumber}, kinds)
}

func TestValueInterface(t *testing.T) {
	doc, err := jsondoc.ParseBytes([]byte(`{"a": [1, "x", null, false], "b": {"c": 2.5}}`))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"a": []any{1.0, "x", nil, false},
		"b": map[string]any{"c": 2.5},
	}, doc.Root().Interface())
}

func TestNumberOutOfRange(t *testing.T) {
	doc, err := jsondoc.ParseBytes([]byte(`{"huge": 1e400}`))
	require.NoError(t, err)

	_, err = jsondoc.GetNumber(doc, "huge")
	require.Error(t, err)
	assert.False(t, errors.Is(err, jsondoc.ErrTypeMismatch))

	exact, err := jsondoc.GetDecimal(doc, "huge")
	require.NoError(t, err)
	assert.Equal(t, int32(400), exact.Exponent())
}

func TestParseYAMLAliasExpansionIsBounded(t *testing.T) {
	var src strings.Builder
	src.WriteString("l0: &l0 [x, x, x, x, x, x, x, x, x, x]\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&src, "l%d: &l%d [*l%d, *l%d, *l%d, *l%d, *l%d, *l%d, *l%d, *l%d, *l%d, *l%d]\n",
			i, i, i-1, i-1, i-1, i-1, i-1, i-1, i-1, i-1, i-1, i-1)
	}

	_, err := jsondoc.ParseYAMLBytes([]byte(src.String()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, jsondoc.ErrParse), "got %v", err)
	assert.ErrorContains(t, err, "expands to more than")
}

func TestParseYAMLSharedAliasesAreNotRecursive(t *testing.T) {
	doc, err := jsondoc.ParseYAMLBytes([]byte("base: &b {n: 1}\nxs: [*b, *b, {inner: *b}]\n"))
	require.NoError(t, err)

	xs, err := jsondoc.GetArray(doc, "xs")
	require.NoError(t, err)
	objects, err := xs.Objects()
	require.NoError(t, err)
	require.Len(t, objects, 3)

	n, err := objects[1].Number("n")
	require.NoError(t, err)
	assert.Equal(t, 1.0, n)
}

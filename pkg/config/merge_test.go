package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeJSONScalarsAndNesting(t *testing.T) {
	b := NewBuilder()
	err := b.MergeJSON([]byte(`{"width": 1920, "name": "main", "fullscreen": true, "display": {"x": 0, "y": 0}}`))
	require.NoError(t, err)

	width, err := b.Root().Child("width")
	require.NoError(t, err)
	assert.Equal(t, ValueF64, width.Type())

	name, err := b.Root().Child("name")
	require.NoError(t, err)
	assert.Equal(t, ValueString, name.Type())

	x, err := b.Root().Child("display/x")
	require.NoError(t, err)
	assert.Equal(t, ValueF64, x.Type())
}

func TestMergeJSONArrayBecomesTable(t *testing.T) {
	b := NewBuilder()
	err := b.MergeJSON([]byte(`{"layers": ["gameplay", "ui"]}`))
	require.NoError(t, err)

	layers, err := b.Root().Child("layers")
	require.NoError(t, err)
	assert.Equal(t, ValueTable, layers.Type())
	assert.Equal(t, 2, layers.Len())
}

func TestMergeJSONOverwritesExistingKey(t *testing.T) {
	b := NewBuilder()
	root := b.Root()
	width, err := root.Child("width")
	require.NoError(t, err)
	require.NoError(t, width.SetU32(640))

	require.NoError(t, b.MergeJSON([]byte(`{"width": 1280}`)))

	width, err = b.Root().Child("width")
	require.NoError(t, err)
	assert.Equal(t, ValueF64, width.Type())
}

func TestMergeJSONRejectsMalformedDocument(t *testing.T) {
	b := NewBuilder()
	err := b.MergeJSON([]byte(`{not valid json`))
	assert.Error(t, err)
}

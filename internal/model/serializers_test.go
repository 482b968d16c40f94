package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSliceRoundTrip(t *testing.T) {
	v, err := StringSlice{"Editor", "Reviewer"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "Editor,Reviewer", v)

	var got StringSlice
	require.NoError(t, got.Scan(v))
	assert.Equal(t, StringSlice{"Editor", "Reviewer"}, got)
}

func TestStringSliceRejectsCommas(t *testing.T) {
	_, err := StringSlice{"a,b"}.Value()
	assert.Error(t, err)
}

func TestStringSliceScanEmpty(t *testing.T) {
	var got StringSlice
	require.NoError(t, got.Scan(""))
	assert.Empty(t, got)

	require.NoError(t, got.Scan(nil))
	assert.Empty(t, got)
}

func TestStringMapRoundTrip(t *testing.T) {
	v, err := StringMap{"instagram": "https://instagram.com/x"}.Value()
	require.NoError(t, err)

	var got StringMap
	require.NoError(t, got.Scan(v))
	assert.Equal(t, "https://instagram.com/x", got["instagram"])
}

func TestStringMapScanEmpty(t *testing.T) {
	var got StringMap
	require.NoError(t, got.Scan(nil))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

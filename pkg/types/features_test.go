package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFeatureSet(t *testing.T) {
	assert.Equal(t, 0, ParseFeatureSet("").Len())

	fs := ParseFeatureSet("foo")
	assert.Equal(t, 1, fs.Len())
	assert.True(t, fs.Has("foo"))

	fs = ParseFeatureSet("foo,bar")
	assert.Equal(t, 2, fs.Len())

	// 重复项去重
	fs = ParseFeatureSet("foo,bar,foo")
	assert.Equal(t, 2, fs.Len())

	// 空 token 丢弃
	fs = ParseFeatureSet(",foo,,bar,")
	assert.Equal(t, 2, fs.Len())
}

func TestFeatureSetString(t *testing.T) {
	fs := NewFeatureSet("woodly", "doodly")
	assert.Equal(t, "doodly,woodly", fs.String())
	assert.Equal(t, []string{"doodly", "woodly"}, fs.List())

	assert.Equal(t, "", NewFeatureSet().String())
}

func TestFeatureSetStringParseRoundTrip(t *testing.T) {
	fs := NewFeatureSet("a", "b", "c")
	back := ParseFeatureSet(fs.String())
	assert.Equal(t, fs, back)
}

func TestFeatureSetIntersect(t *testing.T) {
	a := NewFeatureSet("x", "y", "z")
	b := NewFeatureSet("y", "z", "w")
	got := a.Intersect(b)
	assert.Equal(t, 2, got.Len())
	assert.True(t, got.Has("y"))
	assert.True(t, got.Has("z"))
}

func TestSupportedFeatures(t *testing.T) {
	fs := SupportedFeatures()
	assert.True(t, fs.Has(FeatureShell2))
	assert.True(t, fs.Has(FeatureCmd))
	assert.NotZero(t, fs.Len())
}

package idconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPatternConfig_IsValid(t *testing.T) {
	cfg := DefaultPatternConfig()

	assert.True(t, cfg.IsValid("REQ-p00001"))
	assert.True(t, cfg.IsValid("REQ-p00001-A"))
	assert.True(t, cfg.IsValid("REQ-o00123-AB"))
	assert.False(t, cfg.IsValid("REQ-z00001"))
	assert.False(t, cfg.IsValid("REQ-p1"))
	assert.False(t, cfg.IsValid("not-an-id"))
}

func TestDefaultPatternConfig_ParseID(t *testing.T) {
	cfg := DefaultPatternConfig()

	p, err := cfg.ParseID("REQ-p00001-A")
	require.NoError(t, err)
	assert.Equal(t, "p", p.TypeCode)
	assert.Equal(t, "00001", p.NumericPart)
	assert.Equal(t, "A", p.AssertionLabel)

	p, err = cfg.ParseID("REQ-d00042")
	require.NoError(t, err)
	assert.Equal(t, "d", p.TypeCode)
	assert.Empty(t, p.AssertionLabel)

	_, err = cfg.ParseID("REQ-q00001")
	assert.Error(t, err)
}

func TestPatternConfig_RequirementIDAndAssertionID(t *testing.T) {
	cfg := DefaultPatternConfig()

	assert.Equal(t, "REQ-p00001", cfg.RequirementID("REQ-p00001-A"))
	assert.Equal(t, "REQ-p00001", cfg.RequirementID("REQ-p00001"))
	assert.Equal(t, "REQ-p00001-A", cfg.AssertionID("REQ-p00001", "A"))
}

func TestNextLabel(t *testing.T) {
	assert.Equal(t, "A", NextLabel(""))
	assert.Equal(t, "B", NextLabel("A"))
	assert.Equal(t, "Z", NextLabel("Y"))
	assert.Equal(t, "AA", NextLabel("Z"))
	assert.Equal(t, "AB", NextLabel("AA"))
}

func TestLabelLess(t *testing.T) {
	assert.True(t, LabelLess("A", "B"))
	assert.True(t, LabelLess("Z", "AA"))
	assert.False(t, LabelLess("B", "A"))
}

func TestIsNoReferenceSentinel(t *testing.T) {
	for _, s := range []string{"-", "none", "null", "N/A", "x", "X", "", "None", "NULL"} {
		assert.True(t, IsNoReferenceSentinel(s), "expected %q to be a sentinel", s)
	}
	assert.False(t, IsNoReferenceSentinel("REQ-p00001"))
}

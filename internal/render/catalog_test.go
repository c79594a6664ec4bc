package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog(t *testing.T) {
	all := Catalog()
	require.Len(t, all, 23)
	assert.Equal(t, "eg0", all[0].ID)
	assert.Equal(t, TierFree, all[0].Tier)

	seen := map[string]bool{}
	for _, tpl := range all {
		assert.False(t, seen[tpl.ID], "duplicate template %s", tpl.ID)
		seen[tpl.ID] = true
		assert.True(t, strings.HasPrefix(tpl.ImageURL, "https://"), tpl.ID)
		assert.Greater(t, tpl.Style.LabelWidth, 0.0, tpl.ID)
	}

	imageOnly := 0
	for _, tpl := range all {
		if tpl.ImageOnly {
			imageOnly++
			assert.Equal(t, Tier3, tpl.Tier)
		}
	}
	assert.Equal(t, 2, imageOnly)
}

func TestCatalog_ReturnsCopy(t *testing.T) {
	all := Catalog()
	all[0].ID = "changed"
	tpl, ok := Lookup("eg0")
	require.True(t, ok)
	assert.Equal(t, "eg0", tpl.ID)
	assert.Equal(t, "eg0", Catalog()[0].ID)
}

func TestLookup(t *testing.T) {
	tpl, ok := Lookup("eg15")
	require.True(t, ok)
	assert.Equal(t, Tier2, tpl.Tier)
	assert.Equal(t, ImageSideRound, tpl.Style.ImageVariant)

	_, ok = Lookup("eg99")
	assert.False(t, ok)
}

func TestPriceTier_ConfigKey(t *testing.T) {
	assert.Equal(t, "", TierFree.ConfigKey("INR"))
	assert.Equal(t, "PRICE_1", Tier1.ConfigKey("INR"))
	assert.Equal(t, "PRICE_3", Tier3.ConfigKey(""))
	assert.Equal(t, "PRICE_2_USD", Tier2.ConfigKey("usd"))
}

func TestHex(t *testing.T) {
	assert.Equal(t, RGB{0xB4, 0xA3, 0x63}, hex("#B4A363"))
	assert.Equal(t, RGB{}, hex("nope"))
}

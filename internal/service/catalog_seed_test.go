package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedProducts(t *testing.T) {
	require.Len(t, seedProducts, 5)

	skus := make(map[string]bool)
	for _, p := range seedProducts {
		assert.False(t, skus[p.SKU], "duplicate SKU %s", p.SKU)
		skus[p.SKU] = true

		assert.True(t, p.IsActive)
		assert.Equal(t, "frame", p.Category)
		require.Len(t, p.Sizes, 6, "product %s", p.SKU)
		assert.Equal(t, p.BasePrice, p.Sizes[0].Price, "product %s: base price is the 8x10 price", p.SKU)
	}

	assert.True(t, skus["FRM-CLS-001"])
	assert.True(t, skus["FRM-MOD-001"])
	assert.True(t, skus["FRM-FLT-001"])
	assert.True(t, skus["FRM-MAT-001"])
	assert.True(t, skus["FRM-SHD-001"])
}

func TestSeedTiers(t *testing.T) {
	require.Len(t, seedTiers, 3)

	prices := map[int]float64{}
	for _, tier := range seedTiers {
		assert.True(t, tier.IsActive)
		assert.NotEmpty(t, tier.Features)
		prices[tier.Tier] = tier.BasePrice
	}

	assert.Equal(t, map[int]float64{1: 79.99, 2: 149.99, 3: 249.99}, prices)
}

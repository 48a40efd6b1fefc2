package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTierPrices = map[int]float64{
	1: 79.99,
	2: 149.99,
	3: 249.99,
}

func TestQuoteTier1Size16x20(t *testing.T) {
	price, err := Quote(QuoteRequest{Tier: 1, Size: "16x20"}, testTierPrices)
	require.NoError(t, err)
	assert.Equal(t, 135.98, price) // 79.99 * 1.7
}

func TestQuoteInvalidTier(t *testing.T) {
	_, err := Quote(QuoteRequest{Tier: 9, Size: "8x10"}, testTierPrices)
	assert.ErrorIs(t, err, ErrInvalidTier)
}

func TestQuoteCustomDimensions(t *testing.T) {
	// 16x20 as custom dimensions: sqrt(320/80) = 2.0
	price, err := Quote(QuoteRequest{Tier: 1, Width: 16, Height: 20}, testTierPrices)
	require.NoError(t, err)
	assert.InDelta(t, 159.98, price, 0.01)
}

func TestQuoteCustomDimensionsMissing(t *testing.T) {
	_, err := Quote(QuoteRequest{Tier: 1, Size: "13x17", Width: 13}, testTierPrices)
	assert.ErrorIs(t, err, ErrInvalidDimensions)

	_, err = Quote(QuoteRequest{Tier: 1}, testTierPrices)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestQuoteFeatureSurcharges(t *testing.T) {
	price, err := Quote(QuoteRequest{
		Tier:     2,
		Size:     "8x10",
		Features: []string{"double_mat", "museum_glass", "spacers", "conservation_mount"},
	}, testTierPrices)
	require.NoError(t, err)
	assert.InDelta(t, 149.99+15+40+20+35, price, 0.001)
}

func TestQuoteIgnoresUnrecognizedFeatures(t *testing.T) {
	with, err := Quote(QuoteRequest{Tier: 1, Size: "8x10", Features: []string{"gold_leaf", "double_mat"}}, testTierPrices)
	require.NoError(t, err)
	without, err := Quote(QuoteRequest{Tier: 1, Size: "8x10", Features: []string{"double_mat"}}, testTierPrices)
	require.NoError(t, err)
	assert.Equal(t, without, with)
}

func TestQuoteComplexityFactorTier3Only(t *testing.T) {
	tier3, err := Quote(QuoteRequest{Tier: 3, Size: "8x10", ComplexityFactor: 0.5}, testTierPrices)
	require.NoError(t, err)
	assert.InDelta(t, 249.99*1.5, tier3, 0.01)

	// Tier 1 ignores the factor.
	tier1, err := Quote(QuoteRequest{Tier: 1, Size: "8x10", ComplexityFactor: 0.5}, testTierPrices)
	require.NoError(t, err)
	assert.Equal(t, 79.99, tier1)
}

func TestQuoteDeterministic(t *testing.T) {
	req := QuoteRequest{Tier: 2, Size: "18x24", Features: []string{"spacers"}}
	first, err := Quote(req, testTierPrices)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := Quote(req, testTierPrices)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestQuoteMonotonicInSize(t *testing.T) {
	prev := 0.0
	for _, size := range SizeKeys() {
		price, err := Quote(QuoteRequest{Tier: 2, Size: size}, testTierPrices)
		require.NoError(t, err)
		assert.Greater(t, price, prev, "price for %s should exceed the previous size", size)
		prev = price
	}
}

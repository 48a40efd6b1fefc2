// Package pricing computes custom framing quotes. Quote is a pure function:
// no I/O, deterministic for identical input.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"frameguru/internal/models"
)

var (
	ErrInvalidTier       = errors.New("invalid framing tier")
	ErrInvalidDimensions = errors.New("custom size requires both width and height")
)

// sizeMultipliers scales the tier base price for the enumerated sizes.
// 8x10 is the base.
var sizeMultipliers = map[string]float64{
	"8x10":  1.0,
	"11x14": 1.3,
	"16x20": 1.7,
	"18x24": 2.0,
	"20x30": 2.5,
	"24x36": 3.0,
}

// featureSurcharges are flat additions per recognized feature flag.
var featureSurcharges = map[string]float64{
	"double_mat":         15,
	"museum_glass":       40,
	"spacers":            20,
	"conservation_mount": 35,
}

const baseArea = 8 * 10 // square inches of the base 8x10 size

// QuoteRequest is a fully-enumerated framing configuration. Feature strings
// outside the recognized set are ignored by Quote so that stored historical
// configs always price; the HTTP boundary rejects them for new quotes.
type QuoteRequest struct {
	Tier             int      `json:"tier"`
	Size             string   `json:"size,omitempty"`
	Width            float64  `json:"width,omitempty"`
	Height           float64  `json:"height,omitempty"`
	Features         []string `json:"features,omitempty"`
	ComplexityFactor float64  `json:"complexity_factor,omitempty"`
}

// RecognizedFeature reports whether the flag carries a surcharge.
func RecognizedFeature(flag string) bool {
	_, ok := featureSurcharges[flag]
	return ok
}

// SizeKeys returns the enumerated size keys in ascending multiplier order.
func SizeKeys() []string {
	return []string{"8x10", "11x14", "16x20", "18x24", "20x30", "24x36"}
}

// ValidSize reports whether the size key is in the multiplier table.
func ValidSize(size string) bool {
	_, ok := sizeMultipliers[size]
	return ok
}

// Quote prices a framing configuration against the given tier base prices
// (tier number -> base price). The result is rounded to the nearest cent.
func Quote(req QuoteRequest, tierPrices map[int]float64) (float64, error) {
	base, ok := tierPrices[req.Tier]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrInvalidTier, req.Tier)
	}

	price := base

	if m, ok := sizeMultipliers[req.Size]; ok {
		price *= m
	} else {
		if req.Width <= 0 || req.Height <= 0 {
			return 0, ErrInvalidDimensions
		}
		price *= math.Sqrt(req.Width * req.Height / baseArea)
	}

	for _, feature := range req.Features {
		price += featureSurcharges[feature]
	}

	// Complexity applies to tier 3 object framing only.
	if req.Tier == 3 && req.ComplexityFactor > 0 {
		price *= 1 + req.ComplexityFactor
	}

	return models.RoundCents(price), nil
}

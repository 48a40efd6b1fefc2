package service

import (
	"context"
	"errors"
	"fmt"

	"frameguru/internal/models"
	"frameguru/internal/pricing"
	"frameguru/internal/store"
	"frameguru/internal/util"

	"go.uber.org/zap"
)

// ErrUnknownFeature is returned when a quote names a feature flag that has
// no price attached. Rejected here rather than silently ignored so typos
// don't produce quotes cheaper than the customer expects.
var ErrUnknownFeature = errors.New("unrecognized feature flag")

// CatalogService handles the product catalog, framing tiers, and price
// quotes.
type CatalogService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewCatalogService creates a catalog service.
func NewCatalogService(st *store.Store) *CatalogService {
	return &CatalogService{
		store:  st,
		logger: util.GetLogger(),
	}
}

// ListProducts returns active products, optionally filtered.
func (s *CatalogService) ListProducts(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	return s.store.GetProducts(ctx, filter)
}

// GetProduct returns one product with its size table.
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	return s.store.GetProductByID(ctx, id)
}

// CreateProduct adds a catalog entry.
func (s *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	return s.store.CreateProduct(ctx, p)
}

// UpdateProduct updates a catalog entry.
func (s *CatalogService) UpdateProduct(ctx context.Context, p *models.Product) error {
	return s.store.UpdateProduct(ctx, p)
}

// DeactivateProduct soft-deletes a product.
func (s *CatalogService) DeactivateProduct(ctx context.Context, id int64) error {
	return s.store.DeactivateProduct(ctx, id)
}

// ListFramingTiers returns the active framing tiers.
func (s *CatalogService) ListFramingTiers(ctx context.Context) ([]models.FramingTier, error) {
	return s.store.GetFramingTiers(ctx)
}

// Quote prices a framing configuration. New quotes reject feature flags
// outside the recognized set so typos surface immediately at the boundary;
// the calculator itself stays permissive for stored historical configs.
func (s *CatalogService) Quote(ctx context.Context, req pricing.QuoteRequest) (float64, error) {
	for _, feature := range req.Features {
		if !pricing.RecognizedFeature(feature) {
			return 0, fmt.Errorf("%w: %q", ErrUnknownFeature, feature)
		}
	}

	tierPrices, err := s.store.TierBasePrices(ctx)
	if err != nil {
		return 0, err
	}

	price, err := pricing.Quote(req, tierPrices)
	if err != nil {
		return 0, err
	}

	util.QuotesCalculatedTotal.Inc()
	return price, nil
}

// SeedCatalog loads the initial product catalog and framing tiers. Intended
// for first-run setup; seeding an already-populated catalog fails on the SKU
// unique constraints.
func (s *CatalogService) SeedCatalog(ctx context.Context) error {
	for i := range seedProducts {
		p := seedProducts[i]
		if err := s.store.CreateProduct(ctx, &p); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", p.SKU, err)
		}
	}
	for i := range seedTiers {
		t := seedTiers[i]
		if err := s.store.CreateFramingTier(ctx, &t); err != nil {
			return fmt.Errorf("failed to seed framing tier %d: %w", t.Tier, err)
		}
	}
	s.logger.Info("Catalog seeded",
		zap.Int("products", len(seedProducts)),
		zap.Int("tiers", len(seedTiers)))
	return nil
}

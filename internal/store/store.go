package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"frameguru/internal/models"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNotFound is returned when a referenced entity is absent.
var ErrNotFound = fmt.Errorf("not found")

type Store struct {
	db *sqlx.DB
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// GetDB returns the underlying database connection
func (s *Store) GetDB() *sqlx.DB {
	return s.db
}

// CreateCustomer inserts a customer. Email uniqueness is enforced by the
// database.
func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (email, first_name, last_name, phone, street, city, state, zip_code, country, email_opt_in, sms_opt_in, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, last_modified`

	return s.db.GetContext(ctx, c, query,
		c.Email, c.FirstName, c.LastName, c.Phone, c.Street, c.City, c.State,
		c.ZipCode, c.Country, c.EmailOptIn, c.SMSOptIn, c.Notes)
}

// GetCustomerByID retrieves a customer by ID
func (s *Store) GetCustomerByID(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	err := s.db.GetContext(ctx, &c, "SELECT * FROM customers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("customer %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomerByEmail retrieves a customer by email, nil when absent.
func (s *Store) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	var c models.Customer
	err := s.db.GetContext(ctx, &c, "SELECT * FROM customers WHERE email = $1", email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCustomer updates profile fields and notification preferences.
func (s *Store) UpdateCustomer(ctx context.Context, c *models.Customer) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE customers
		SET first_name = $1, last_name = $2, phone = $3, street = $4, city = $5,
		    state = $6, zip_code = $7, country = $8, email_opt_in = $9,
		    sms_opt_in = $10, notes = $11, last_modified = NOW()
		WHERE id = $12`,
		c.FirstName, c.LastName, c.Phone, c.Street, c.City, c.State,
		c.ZipCode, c.Country, c.EmailOptIn, c.SMSOptIn, c.Notes, c.ID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("customer %d: %w", c.ID, ErrNotFound)
	}
	return nil
}

// ProductFilter narrows the active-product listing.
type ProductFilter struct {
	Category  string
	FrameType string
}

// GetProducts retrieves active products, optionally filtered, with sizes.
func (s *Store) GetProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := "SELECT * FROM products WHERE is_active = TRUE"
	args := []interface{}{}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.FrameType != "" {
		args = append(args, filter.FrameType)
		query += fmt.Sprintf(" AND frame_type = $%d", len(args))
	}
	query += " ORDER BY name"

	var products []models.Product
	if err := s.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, err
	}
	for i := range products {
		sizes, err := s.getProductSizes(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].Sizes = sizes
	}
	return products, nil
}

// GetProductByID retrieves a product with its size table.
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	var p models.Product
	err := s.db.GetContext(ctx, &p, "SELECT * FROM products WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	sizes, err := s.getProductSizes(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Sizes = sizes
	return &p, nil
}

func (s *Store) getProductSizes(ctx context.Context, productID int64) ([]models.ProductSize, error) {
	var sizes []models.ProductSize
	err := s.db.SelectContext(ctx, &sizes,
		"SELECT * FROM product_sizes WHERE product_id = $1 ORDER BY price", productID)
	return sizes, err
}

// CreateProduct inserts a product and its size rows.
func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO products (sku, name, category, description, base_price, frame_type, model_file, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	if err := tx.GetContext(ctx, p, query,
		p.SKU, p.Name, p.Category, p.Description, p.BasePrice, p.FrameType, p.ModelFile, p.IsActive); err != nil {
		return err
	}

	for i := range p.Sizes {
		p.Sizes[i].ProductID = p.ID
		if err := tx.GetContext(ctx, &p.Sizes[i].ID, `
			INSERT INTO product_sizes (product_id, size, price, inventory_count)
			VALUES ($1, $2, $3, $4) RETURNING id`,
			p.ID, p.Sizes[i].Size, p.Sizes[i].Price, p.Sizes[i].InventoryCount); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// UpdateProduct updates catalog fields on a product.
func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $1, category = $2, description = $3, base_price = $4,
		    frame_type = $5, model_file = $6, is_active = $7
		WHERE id = $8`,
		p.Name, p.Category, p.Description, p.BasePrice, p.FrameType, p.ModelFile, p.IsActive, p.ID)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	}
	return nil
}

// DeactivateProduct soft-deletes a product. Historical orders keep their
// references.
func (s *Store) DeactivateProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE products SET is_active = FALSE WHERE id = $1", id)
	if err != nil {
		return err
	}
	rows, _ := res.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// GetFramingTiers retrieves active framing tiers.
func (s *Store) GetFramingTiers(ctx context.Context) ([]models.FramingTier, error) {
	var tiers []models.FramingTier
	err := s.db.SelectContext(ctx, &tiers,
		"SELECT * FROM framing_tiers WHERE is_active = TRUE ORDER BY tier")
	return tiers, err
}

// GetFramingTierByNumber retrieves a tier by its 1-3 tier number.
func (s *Store) GetFramingTierByNumber(ctx context.Context, tier int) (*models.FramingTier, error) {
	var t models.FramingTier
	err := s.db.GetContext(ctx, &t, "SELECT * FROM framing_tiers WHERE tier = $1 AND is_active = TRUE", tier)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("framing tier %d: %w", tier, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateFramingTier inserts a tier.
func (s *Store) CreateFramingTier(ctx context.Context, t *models.FramingTier) error {
	query := `
		INSERT INTO framing_tiers (tier, name, description, base_price, features, turnaround_days, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	return s.db.GetContext(ctx, &t.ID, query,
		t.Tier, t.Name, t.Description, t.BasePrice, t.Features, t.TurnaroundDays, t.IsActive)
}

// TierBasePrices returns tier number -> base price for active tiers, the
// shape the pricing calculator consumes.
func (s *Store) TierBasePrices(ctx context.Context) (map[int]float64, error) {
	type row struct {
		Tier      int     `db:"tier"`
		BasePrice float64 `db:"base_price"`
	}
	var rows []row
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT tier, base_price FROM framing_tiers WHERE is_active = TRUE"); err != nil {
		return nil, err
	}
	prices := make(map[int]float64, len(rows))
	for _, r := range rows {
		prices[r.Tier] = r.BasePrice
	}
	return prices, nil
}

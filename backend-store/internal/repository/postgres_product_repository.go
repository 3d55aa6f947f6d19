package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/domain"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
)

const productColumns = `id, seller_user_id, seller_username, name, description, price, condition, brand, stock, active, added_at`

// PostgresProductRepository implements ProductRepository using PostgreSQL
type PostgresProductRepository struct {
	db database.DBTX
}

// NewPostgresProductRepository creates a new PostgresProductRepository
func NewPostgresProductRepository(db database.DBTX) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// Create creates a new product
func (r *PostgresProductRepository) Create(ctx context.Context, p *domain.Product) error {
	query := `
		INSERT INTO products (seller_user_id, seller_username, name, description, price, condition, brand, stock, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, added_at
	`
	err := r.db.QueryRow(ctx, query,
		p.SellerUserID,
		p.SellerUsername,
		p.Name,
		p.Description,
		p.Price,
		p.Condition,
		p.Brand,
		p.Stock,
		p.Active,
	).Scan(&p.ID, &p.AddedAt)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by ID
func (r *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// List returns products ordered by id
func (r *PostgresProductRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE ($1::BIGINT IS NULL OR seller_user_id = $1)
		  AND (NOT $4::BOOLEAN OR active OR seller_user_id = COALESCE($5::BIGINT, 0))
		ORDER BY id
		OFFSET $2 LIMIT $3`

	rows, err := r.db.Query(ctx, query, filter.SellerID, filter.Skip, filter.Limit, filter.ActiveOnly, filter.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Update overwrites the mutable fields of a product
func (r *PostgresProductRepository) Update(ctx context.Context, p *domain.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, condition = $5, brand = $6, stock = $7, active = $8
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.Condition,
		p.Brand,
		p.Stock,
		p.Active,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// Delete removes a product. Cart lines referencing it cascade.
func (r *PostgresProductRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	p := &domain.Product{}
	err := row.Scan(
		&p.ID,
		&p.SellerUserID,
		&p.SellerUsername,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.Condition,
		&p.Brand,
		&p.Stock,
		&p.Active,
		&p.AddedAt,
	)
	return p, err
}

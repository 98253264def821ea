package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

const productColumns = `id, name, description, model, item_code, tags,
        category1, category2, category3, price, availability, rating, image_url, created_at`

// ProductRepository persists the last good catalog snapshot so the service
// can start, or keep serving, when the upstream source is down.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Name identifies the repository when it acts as a product source.
func (r *ProductRepository) Name() string {
	return "postgres"
}

// FetchProducts returns every stored product in its original source order.
func (r *ProductRepository) FetchProducts(ctx context.Context) ([]models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM catalog_products ORDER BY position, id`

	products := []models.Product{}
	if err := r.db.SelectContext(ctx, &products, q); err != nil {
		return nil, fmt.Errorf("failed to load catalog products: %w", err)
	}
	return products, nil
}

// productRow carries the source position alongside the product columns.
type productRow struct {
	models.Product
	Position int `db:"position"`
}

// ReplaceAll swaps the stored catalog for products in a single transaction
// and records the load in catalog_snapshots.
func (r *ProductRepository) ReplaceAll(ctx context.Context, source string, products []models.Product) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_products`); err != nil {
		return fmt.Errorf("failed to clear catalog products: %w", err)
	}

	const insertQuery = `
        INSERT INTO catalog_products (
            id, name, description, model, item_code, tags,
            category1, category2, category3, price, availability, rating,
            image_url, created_at, position
        )
        VALUES (
            :id, :name, :description, :model, :item_code, :tags,
            :category1, :category2, :category3, :price, :availability, :rating,
            :image_url, :created_at, :position
        )
        ON CONFLICT (id) DO NOTHING`

	stmt, err := tx.PrepareNamedContext(ctx, insertQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare product insert: %w", err)
	}
	defer stmt.Close()

	for i := range products {
		row := productRow{Product: products[i], Position: i}
		if _, err := stmt.ExecContext(ctx, row); err != nil {
			return fmt.Errorf("failed to insert product %s: %w", products[i].ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_snapshots (source, product_count) VALUES ($1, $2)`,
		source, len(products),
	); err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}

	return tx.Commit()
}

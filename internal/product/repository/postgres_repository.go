package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/ridloal/apparel-store/internal/platform/logger"
	"github.com/ridloal/apparel-store/internal/product/domain"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type postgresProductRepository struct {
	db *sql.DB
}

func NewPostgresProductRepository(db *sql.DB) ProductRepository {
	return &postgresProductRepository{db: db}
}

const productColumns = `id, name, description, price, available_sizes, available_colors, style, image_url, image_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price,
		pq.Array(&p.AvailableSizes), pq.Array(&p.AvailableColors),
		&p.Style, &p.ImageURL, &p.ImageID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postgresProductRepository) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("ListProducts: query failed", err)
		return nil, err
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			logger.Error("ListProducts: scan failed", err)
			return nil, err
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		logger.Error("ListProducts: rows iteration error", err)
		return nil, err
	}
	return products, nil
}

func (r *postgresProductRepository) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		logger.Error("GetProductByID: query failed", err, logger.Fields{"product_id": id})
		return nil, err
	}
	return p, nil
}

func (r *postgresProductRepository) CreateProduct(ctx context.Context, p *domain.Product) error {
	query := `INSERT INTO products (name, description, price, available_sizes, available_colors, style, image_url, image_id, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt

	err := r.db.QueryRowContext(ctx, query, p.Name, p.Description, p.Price,
		pq.Array(p.AvailableSizes), pq.Array(p.AvailableColors), p.Style, p.ImageURL, p.ImageID,
		p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		logger.Error("CreateProduct: insert failed", err)
		return err
	}
	return nil
}

func (r *postgresProductRepository) UpdateProduct(ctx context.Context, p *domain.Product) error {
	query := `UPDATE products SET name = $1, description = $2, price = $3, available_sizes = $4,
                  available_colors = $5, style = $6, image_url = $7, image_id = $8, updated_at = $9
              WHERE id = $10`
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, query, p.Name, p.Description, p.Price,
		pq.Array(p.AvailableSizes), pq.Array(p.AvailableColors), p.Style, p.ImageURL, p.ImageID,
		p.UpdatedAt, p.ID)
	if err != nil {
		logger.Error("UpdateProduct: exec failed", err, logger.Fields{"product_id": p.ID})
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *postgresProductRepository) DeleteProduct(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		logger.Error("DeleteProduct: exec failed", err, logger.Fields{"product_id": id})
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrProductNotFound
	}
	return nil
}

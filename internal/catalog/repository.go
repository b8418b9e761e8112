package catalog

import (
	"context"
	"database/sql"

	"github.com/cozybakes/storefront/internal/domain"
)

// ProductRepository is the read-only view of the catalog. Nothing in the
// storefront mutates products; they are managed out of band.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context, category string) ([]domain.Product, error) {
	query := `
		SELECT id, name, description, price, image, category, available, is_new, rating
		FROM products
		ORDER BY category, name
	`
	args := []any{}
	if category != "" {
		query = `
			SELECT id, name, description, price, image, category, available, is_new, rating
			FROM products
			WHERE category = $1
			ORDER BY name
		`
		args = append(args, category)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var products []domain.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, price, image, category, available, is_new, rating
		FROM products
		WHERE id = $1
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &product, nil
}

// NameByID fetches only the current display name. The confirmation email
// snapshots names at lookup time, not at purchase time.
func (r *ProductRepository) NameByID(ctx context.Context, id string) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `
		SELECT name FROM products WHERE id = $1
	`, id).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return name, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProduct(row scanner) (domain.Product, error) {
	var product domain.Product
	var rating sql.NullFloat64

	err := row.Scan(
		&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Image, &product.Category, &product.Available, &product.IsNew, &rating,
	)
	if err != nil {
		return domain.Product{}, err
	}

	if rating.Valid {
		product.Rating = &rating.Float64
	}

	return product, nil
}

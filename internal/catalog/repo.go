package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrProductNotFound = errors.New("product not found")

type SKU struct {
	ID         int64  `json:"id"`
	ProductID  int64  `json:"productId"`
	Value      string `json:"value"`
	PriceCents int64  `json:"price"`
	Stock      int32  `json:"stock"`
	Image      string `json:"image,omitempty"`
}

type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Translations json.RawMessage `json:"translations,omitempty"`
	PublishedAt  *time.Time      `json:"publishedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	SKUs         []SKU           `json:"skus,omitempty"`
}

// Repo read-mostly; filter "sudah publish & belum soft-delete" dipusatkan
// di sini, bukan disebar per query pemanggil.
type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, name, translations, published_at, created_at, updated_at
		FROM products
		WHERE deleted_at IS NULL AND published_at IS NOT NULL AND published_at <= now()
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Translations, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id int64) (*Product, error) {
	var p Product
	err := r.DB.QueryRow(ctx, `
		SELECT id, name, translations, published_at, created_at, updated_at
		FROM products
		WHERE id = $1 AND deleted_at IS NULL AND published_at IS NOT NULL AND published_at <= now()`,
		id).Scan(&p.ID, &p.Name, &p.Translations, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, product_id, value, price_cents, stock, COALESCE(image, '')
		FROM skus WHERE product_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var s SKU
		if err := rows.Scan(&s.ID, &s.ProductID, &s.Value, &s.PriceCents, &s.Stock, &s.Image); err != nil {
			return nil, err
		}
		p.SKUs = append(p.SKUs, s)
	}
	return &p, rows.Err()
}

// Update nama/terjemahan product. Order lama tidak terpengaruh: mereka pegang
// snapshot sendiri.
func (r *Repo) Update(ctx context.Context, id int64, name string, translations json.RawMessage) (*Product, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET name = $2, translations = COALESCE($3, translations), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL`, id, name, translations)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() != 1 {
		return nil, ErrProductNotFound
	}
	return r.Get(ctx, id)
}

func (r *Repo) SoftDelete(ctx context.Context, id int64) error {
	ct, err := r.DB.Exec(ctx,
		`UPDATE products SET deleted_at = now() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrProductNotFound
	}
	return nil
}

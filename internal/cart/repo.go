package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrItemNotFound = errors.New("cart item not found")
	ErrSKUNotFound  = errors.New("sku not found")
)

type Item struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	SKUID     int64     `json:"skuId"`
	Quantity  int32     `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemDetail: baris cart plus info SKU/product utk ditampilkan.
type ItemDetail struct {
	Item
	SKUValue      string `json:"skuValue"`
	SKUPriceCents int64  `json:"skuPrice"`
	Image         string `json:"image,omitempty"`
	Stock         int32  `json:"stock"`
	ProductID     int64  `json:"productId"`
	ProductName   string `json:"productName"`
}

type Repo struct{ DB *pgxpool.Pool }

// Add: satu baris per (user, sku); nambah SKU yang sama berarti akumulasi qty.
func (r *Repo) Add(ctx context.Context, userID, skuID int64, qty int32) (*Item, error) {
	var it Item
	err := r.DB.QueryRow(ctx, `
		INSERT INTO cart_items(user_id, sku_id, quantity)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, sku_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, user_id, sku_id, quantity, created_at, updated_at`,
		userID, skuID, qty).
		Scan(&it.ID, &it.UserID, &it.SKUID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK ke skus
			return nil, ErrSKUNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *Repo) UpdateQuantity(ctx context.Context, userID, itemID int64, qty int32) (*Item, error) {
	var it Item
	err := r.DB.QueryRow(ctx, `
		UPDATE cart_items SET quantity = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, sku_id, quantity, created_at, updated_at`,
		itemID, userID, qty).
		Scan(&it.ID, &it.UserID, &it.SKUID, &it.Quantity, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *Repo) Remove(ctx context.Context, userID, itemID int64) error {
	ct, err := r.DB.Exec(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrItemNotFound
	}
	return nil
}

func (r *Repo) ListForUser(ctx context.Context, userID int64) ([]ItemDetail, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT ci.id, ci.user_id, ci.sku_id, ci.quantity, ci.created_at, ci.updated_at,
		       s.value, s.price_cents, COALESCE(s.image, ''), s.stock, s.product_id, p.name
		FROM cart_items ci
		JOIN skus s ON s.id = ci.sku_id
		JOIN products p ON p.id = s.product_id
		WHERE ci.user_id = $1 AND p.deleted_at IS NULL
		ORDER BY ci.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemDetail
	for rows.Next() {
		var d ItemDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.SKUID, &d.Quantity, &d.CreatedAt, &d.UpdatedAt,
			&d.SKUValue, &d.SKUPriceCents, &d.Image, &d.Stock, &d.ProductID, &d.ProductName); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

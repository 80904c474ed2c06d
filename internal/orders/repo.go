package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrderTx: inti transaksional checkout. Semua efek samping dalam satu
// transaksi: validasi baris cart milik user -> kunci stok SKU (FOR UPDATE) ->
// insert payment PENDING + order PENDING_PAYMENT + snapshot item ->
// kurangi stok -> hapus baris cart. Gagal di mana pun = rollback total,
// cart tidak tersentuh.
func (r *Repo) CreateOrderTx(ctx context.Context, userID int64, recv Receiver, cartItemIDs []int64) (*Order, error) {
	if len(cartItemIDs) == 0 {
		return nil, ErrCartItemNotFound
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// resolve cart lines + lock baris SKU supaya check-then-decrement aman
	// terhadap order concurrent di SKU yang sama
	rows, err := tx.Query(ctx, `
		SELECT ci.id, ci.quantity,
		       s.id, s.value, s.price_cents, COALESCE(s.image, ''), s.stock, s.product_id,
		       p.name, p.published_at, p.deleted_at, p.translations
		FROM cart_items ci
		JOIN skus s ON s.id = ci.sku_id
		JOIN products p ON p.id = s.product_id
		WHERE ci.id = ANY($1) AND ci.user_id = $2
		ORDER BY ci.id
		FOR UPDATE OF s`, cartItemIDs, userID)
	if err != nil {
		return nil, err
	}
	var lines []CartLine
	for rows.Next() {
		var ln CartLine
		if err := rows.Scan(&ln.CartItemID, &ln.Quantity,
			&ln.SKUID, &ln.SKUValue, &ln.SKUPriceCents, &ln.SKUImage, &ln.Stock, &ln.ProductID,
			&ln.ProductName, &ln.PublishedAt, &ln.DeletedAt, &ln.Translation); err != nil {
			rows.Close()
			return nil, err
		}
		lines = append(lines, ln)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lines) != len(cartItemIDs) {
		return nil, ErrCartItemNotFound
	}

	items, _, err := BuildSnapshots(lines, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	var pay Payment
	pay.Status = PaymentPending
	if err := tx.QueryRow(ctx,
		`INSERT INTO payments(status) VALUES ('PENDING') RETURNING id, created_at, updated_at`,
	).Scan(&pay.ID, &pay.CreatedAt, &pay.UpdatedAt); err != nil {
		return nil, err
	}

	ord := &Order{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    StatusPendingPayment,
		Receiver:  recv,
		PaymentID: pay.ID,
	}
	if err := tx.QueryRow(ctx, `
		INSERT INTO orders(id, user_id, status, receiver_name, receiver_phone, receiver_address, receiver_email, receiver_note, payment_id)
		VALUES ($1,$2,'PENDING_PAYMENT',$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`,
		ord.ID, userID, recv.Name, recv.Phone, recv.Address, recv.Email, recv.Note, pay.ID,
	).Scan(&ord.CreatedAt, &ord.UpdatedAt); err != nil {
		return nil, err
	}

	for i := range items {
		items[i].OrderID = ord.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO order_items(order_id, product_name, sku_id, sku_value, sku_price_cents, quantity, image, product_translation)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			RETURNING id`,
			ord.ID, items[i].ProductName, items[i].SKUID, items[i].SKUValue,
			items[i].SKUPriceCents, items[i].Quantity, items[i].Image, items[i].ProductTranslation,
		).Scan(&items[i].ID); err != nil {
			return nil, err
		}
	}

	for _, ln := range lines {
		ct, err := tx.Exec(ctx,
			`UPDATE skus SET stock = stock - $2 WHERE id = $1 AND stock >= $2`,
			ln.SKUID, ln.Quantity)
		if err != nil {
			return nil, err
		}
		if ct.RowsAffected() != 1 {
			return nil, ErrOutOfStock
		}
	}

	ct, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE id = ANY($1)`, cartItemIDs)
	if err != nil {
		return nil, err
	}
	if int(ct.RowsAffected()) != len(cartItemIDs) {
		return nil, ErrCartItemNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	ord.Items = items
	return ord, nil
}

func (r *Repo) GetByIDForUser(ctx context.Context, id uuid.UUID, userID int64) (*Order, error) {
	ord, err := r.scanOrder(ctx, `
		SELECT id, user_id, status, receiver_name, receiver_phone, receiver_address, receiver_email, receiver_note, payment_id, created_at, updated_at
		FROM orders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return nil, err
	}
	ord.Items, err = r.loadItems(ctx, id)
	return ord, err
}

func (r *Repo) ListForUser(ctx context.Context, userID int64) ([]Order, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, status, receiver_name, receiver_phone, receiver_address, receiver_email, receiver_note, payment_id, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status,
			&o.Receiver.Name, &o.Receiver.Phone, &o.Receiver.Address, &o.Receiver.Email, &o.Receiver.Note,
			&o.PaymentID, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CancelOrderTx: cancel atas inisiatif user. Hanya valid dari
// PENDING_PAYMENT; guard kondisional di UPDATE memastikan tidak pernah
// balapan dengan settlement webhook.
func (r *Repo) CancelOrderTx(ctx context.Context, id uuid.UUID, userID int64) (*Order, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status Status
	var paymentID int64
	err = tx.QueryRow(ctx,
		`SELECT status, payment_id FROM orders WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID).Scan(&status, &paymentID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if status != StatusPendingPayment {
		return nil, ErrCannotCancel
	}

	ct, err := tx.Exec(ctx,
		`UPDATE orders SET status = 'CANCELLED', updated_at = now() WHERE id = $1 AND status = 'PENDING_PAYMENT'`, id)
	if err != nil {
		return nil, err
	}
	if ct.RowsAffected() != 1 {
		return nil, ErrCannotCancel
	}
	if _, err := tx.Exec(ctx,
		`UPDATE payments SET status = 'FAILED', updated_at = now() WHERE id = $1 AND status = 'PENDING'`, paymentID); err != nil {
		return nil, err
	}
	if err := restockOrderItems(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.GetByIDForUser(ctx, id, userID)
}

// restock: kebalikan persis dari decrement saat create, via snapshot qty.
func restockOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) error {
	_, err := tx.Exec(ctx, `
		UPDATE skus s SET stock = s.stock + oi.quantity
		FROM order_items oi
		WHERE oi.order_id = $1 AND oi.sku_id = s.id`, orderID)
	return err
}

func (r *Repo) scanOrder(ctx context.Context, q string, args ...any) (*Order, error) {
	var o Order
	err := r.DB.QueryRow(ctx, q, args...).Scan(&o.ID, &o.UserID, &o.Status,
		&o.Receiver.Name, &o.Receiver.Phone, &o.Receiver.Address, &o.Receiver.Email, &o.Receiver.Note,
		&o.PaymentID, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repo) loadItems(ctx context.Context, orderID uuid.UUID) ([]ItemSnapshot, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, product_name, sku_id, sku_value, sku_price_cents, quantity, COALESCE(image, ''), product_translation
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemSnapshot
	for rows.Next() {
		var it ItemSnapshot
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductName, &it.SKUID, &it.SKUValue,
			&it.SKUPriceCents, &it.Quantity, &it.Image, &it.ProductTranslation); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

func (r *Repo) HasTransaction(ctx context.Context, txID int64) (bool, error) {
	var n int
	err := r.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_transactions WHERE id = $1`, txID).Scan(&n)
	return n > 0, err
}

func (r *Repo) GetPaymentWithOrder(ctx context.Context, paymentID int64) (*Payment, *Order, error) {
	var p Payment
	err := r.DB.QueryRow(ctx,
		`SELECT id, status, created_at, updated_at FROM payments WHERE id = $1`, paymentID).
		Scan(&p.ID, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	ord, err := r.scanOrder(ctx, `
		SELECT id, user_id, status, receiver_name, receiver_phone, receiver_address, receiver_email, receiver_note, payment_id, created_at, updated_at
		FROM orders WHERE payment_id = $1`, paymentID)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	ord.Items, err = r.loadItems(ctx, ord.ID)
	if err != nil {
		return nil, nil, err
	}
	return &p, ord, nil
}

// SettlePaymentTx: jalur sukses reconciliation. Atomik: append ledger row +
// payment PENDING->SUCCESS + order PENDING_PAYMENT->PENDING_PICKUP.
// Stok TIDAK disentuh di sini, sudah di-commit saat create.
// Return false kalau payment sudah final (kalah balapan dengan expiry).
func (r *Repo) SettlePaymentTx(ctx context.Context, ptx PaymentTransaction) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO payment_transactions(id, gateway, transaction_date, account_number, code, content, transfer_type, transfer_amount_cents, accumulated_cents, sub_account, reference_code, description, payment_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`,
		ptx.ID, ptx.Gateway, ptx.TransactionDate, ptx.AccountNumber, ptx.Code, ptx.Content,
		ptx.TransferType, ptx.TransferAmountCents, ptx.AccumulatedCents, ptx.SubAccount,
		ptx.ReferenceCode, ptx.Description, ptx.PaymentID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return false, ErrDuplicateTransaction
		}
		return false, err
	}

	// guard kondisional: transisi hanya dari PENDING. 0 row = sudah final.
	ct, err := tx.Exec(ctx,
		`UPDATE payments SET status = 'SUCCESS', updated_at = now() WHERE id = $1 AND status = 'PENDING'`,
		ptx.PaymentID)
	if err != nil {
		return false, err
	}
	if ct.RowsAffected() != 1 {
		return false, nil // rollback via defer
	}

	if _, err := tx.Exec(ctx,
		`UPDATE orders SET status = 'PENDING_PICKUP', updated_at = now() WHERE payment_id = $1 AND status = 'PENDING_PAYMENT'`,
		ptx.PaymentID); err != nil {
		return false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// ExpirePaymentTx: jalur timeout. No-op kalau payment sudah final (webhook
// menang duluan) -- itulah safety net terhadap cancel job yang gagal/balapan.
// Kalau masih PENDING: payment FAILED, order CANCELLED, stok dikembalikan
// persis sebesar qty snapshot.
func (r *Repo) ExpirePaymentTx(ctx context.Context, paymentID int64) (*Order, bool, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status PaymentStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM payments WHERE id = $1 FOR UPDATE`, paymentID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrPaymentNotFound
	}
	if err != nil {
		return nil, false, err
	}
	if status != PaymentPending {
		return nil, false, nil
	}

	if _, err := tx.Exec(ctx,
		`UPDATE payments SET status = 'FAILED', updated_at = now() WHERE id = $1 AND status = 'PENDING'`,
		paymentID); err != nil {
		return nil, false, err
	}

	var ord Order
	err = tx.QueryRow(ctx, `
		UPDATE orders SET status = 'CANCELLED', updated_at = now()
		WHERE payment_id = $1 AND status = 'PENDING_PAYMENT'
		RETURNING id, user_id`, paymentID).Scan(&ord.ID, &ord.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrOrderNotFound
	}
	if err != nil {
		return nil, false, err
	}
	ord.Status = StatusCancelled
	ord.PaymentID = paymentID

	if err := restockOrderItems(ctx, tx, ord.ID); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return &ord, true, nil
}

// GetStatusForUser dipakai handler utk fallback cache; filter user_id
// supaya status tidak bisa di-poll lintas user bermodal UUID.
func (r *Repo) GetStatusForUser(ctx context.Context, id uuid.UUID, userID int64) (Status, error) {
	var s string
	err := r.DB.QueryRow(ctx,
		`SELECT status FROM orders WHERE id = $1 AND user_id = $2`, id, userID).Scan(&s)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrOrderNotFound
	}
	if err != nil {
		return "", err
	}
	return Status(s), nil
}

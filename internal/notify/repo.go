package notify

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotificationNotFound = errors.New("notification not found")

type Notification struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	Content   string     `json:"content"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, userID int64, content string) (*Notification, error) {
	var n Notification
	err := r.DB.QueryRow(ctx, `
		INSERT INTO notifications(user_id, content) VALUES ($1,$2)
		RETURNING id, user_id, content, read_at, created_at`,
		userID, content).
		Scan(&n.ID, &n.UserID, &n.Content, &n.ReadAt, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *Repo) ListForUser(ctx context.Context, userID int64) ([]Notification, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT id, user_id, content, read_at, created_at
		FROM notifications WHERE user_id = $1
		ORDER BY created_at DESC LIMIT 100`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) MarkRead(ctx context.Context, userID, id int64) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE notifications SET read_at = now()
		WHERE id = $1 AND user_id = $2 AND read_at IS NULL`, id, userID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return ErrNotificationNotFound
	}
	return nil
}

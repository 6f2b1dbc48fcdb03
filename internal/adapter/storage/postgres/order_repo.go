package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kekspay-gateway/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// OrderRepo implements ports.OrderRepository over the shop's orders and
// order_notes tables. Writes are guarded by the version column.
type OrderRepo struct {
	pool Pool
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(pool Pool) *OrderRepo {
	return &OrderRepo{pool: pool}
}

// GetByID fetches an order with its metadata and note log.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT id, order_key, total::text, refunded::text, currency, payment_method, status,
		meta, return_url, cancel_url, version, created_at, updated_at
		FROM orders WHERE id = $1`

	var (
		o               domain.Order
		total, refunded string
		meta            []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderKey, &total, &refunded, &o.Currency, &o.PaymentMethod, &o.Status,
		&meta, &o.ReturnURL, &o.CancelURL, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order by id: %w", err)
	}

	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse order total %q: %w", total, err)
	}
	if o.Refunded, err = decimal.NewFromString(refunded); err != nil {
		return nil, fmt.Errorf("parse order refunded %q: %w", refunded, err)
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &o.Meta); err != nil {
			return nil, fmt.Errorf("decode order meta: %w", err)
		}
	}

	if o.Notes, err = r.notes(ctx, id); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) notes(ctx context.Context, orderID int64) ([]domain.OrderNote, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, content, created_at FROM order_notes WHERE order_id = $1 ORDER BY id`,
		orderID,
	)
	if err != nil {
		return nil, fmt.Errorf("list order notes: %w", err)
	}
	defer rows.Close()

	var notes []domain.OrderNote
	for rows.Next() {
		var n domain.OrderNote
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Content, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// Save writes status, refunded total and metadata and appends queued notes
// in one transaction. It returns domain.ErrOrderConflict when the row's
// version no longer matches the one the order was loaded with.
func (r *OrderRepo) Save(ctx context.Context, o *domain.Order) (err error) {
	meta, err := json.Marshal(o.Meta)
	if err != nil {
		return fmt.Errorf("encode order meta: %w", err)
	}
	now := time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order save: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE orders SET status = $1, refunded = $2, meta = $3, version = version + 1, updated_at = $4
		 WHERE id = $5 AND version = $6`,
		o.Status, o.Refunded, meta, now, o.ID, o.Version,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderConflict
	}

	var added []domain.OrderNote
	for _, content := range o.PendingNotes() {
		n := domain.OrderNote{OrderID: o.ID, Content: content, CreatedAt: now}
		if err = tx.QueryRow(ctx,
			`INSERT INTO order_notes (order_id, content, created_at) VALUES ($1, $2, $3) RETURNING id`,
			o.ID, content, now,
		).Scan(&n.ID); err != nil {
			return fmt.Errorf("insert order note: %w", err)
		}
		added = append(added, n)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order save: %w", err)
	}

	o.Notes = append(o.Notes, added...)
	o.Version++
	o.UpdatedAt = now
	o.ClearPendingNotes()
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eurd-payments/internal/domains/order/model"
	"eurd-payments/pkg/database"
	"eurd-payments/pkg/logger"
)

// =====================================================
// POSTGRES REPOSITORY IMPLEMENTATION
// =====================================================
type postgresOrderRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &postgresOrderRepository{
		pool: pool,
	}
}

const orderColumns = `
	id, order_number, total, currency, payment_method, payment_status, status,
	payment_request_code, payment_reference, paid_at, created_at, updated_at, version
`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var order model.Order
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.Total,
		&order.Currency,
		&order.PaymentMethod,
		&order.PaymentStatus,
		&order.Status,
		&order.PaymentRequestCode,
		&order.PaymentReference,
		&order.PaidAt,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// =====================================================
// GET ORDER
// =====================================================

func (r *postgresOrderRepository) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by id: %w", err)
	}

	return order, nil
}

func (r *postgresOrderRepository) FindOrderIDByPaymentRequestCode(ctx context.Context, code string) (uuid.UUID, error) {
	query := `
		SELECT id
		FROM orders
		WHERE payment_request_code = $1
		ORDER BY updated_at DESC
		LIMIT 1
	`

	var id uuid.UUID
	if err := r.pool.QueryRow(ctx, query, code).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, model.ErrOrderNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to find order by payment request code: %w", err)
	}

	return id, nil
}

func (r *postgresOrderRepository) ListAwaitingPayment(ctx context.Context, since time.Time, limit int) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE payment_status = $1
		  AND payment_request_code IS NOT NULL
		  AND updated_at >= $2
		ORDER BY updated_at ASC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, model.PaymentStatusAwaitingGateway, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list awaiting orders: %w", err)
	}
	defer rows.Close()

	orders := make([]model.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *order)
	}

	return orders, rows.Err()
}

// =====================================================
// UPDATE PAYMENT STATE
// =====================================================

func (r *postgresOrderRepository) MarkAwaitingPayment(ctx context.Context, orderID uuid.UUID) error {
	query := `
		UPDATE orders
		SET payment_method = $2,
		    payment_status = $3,
		    status = $4,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
		  AND payment_status = $5
		  AND status <> $6
	`

	result, err := r.pool.Exec(ctx, query,
		orderID,
		model.PaymentMethodEURD,
		model.PaymentStatusAwaitingGateway,
		model.OrderStatusOnHold,
		model.PaymentStatusUnpaid,
		model.OrderStatusCancelled,
	)
	if err != nil {
		return fmt.Errorf("failed to mark order awaiting payment: %w", err)
	}

	// Already awaiting or paid: nothing to do
	if result.RowsAffected() == 0 {
		logger.Debug("Order not moved to awaiting payment", map[string]interface{}{
			"order_id": orderID.String(),
		})
	}

	return nil
}

func (r *postgresOrderRepository) MarkAsPaid(
	ctx context.Context,
	orderID uuid.UUID,
	requestCode, reference, note string,
) (bool, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (bool, error) {
		// Compare-and-set: the WHERE clause is the idempotence gate
		query := `
			UPDATE orders
			SET payment_status = $4,
			    status = $5,
			    payment_reference = $3,
			    paid_at = NOW(),
			    version = version + 1,
			    updated_at = NOW()
			WHERE id = $1
			  AND payment_request_code = $2
			  AND payment_status <> $4
			  AND status <> $6
		`

		result, err := tx.Exec(ctx, query,
			orderID,
			requestCode,
			reference,
			model.PaymentStatusPaid,
			model.OrderStatusProcessing,
			model.OrderStatusCancelled,
		)
		if err != nil {
			return false, fmt.Errorf("failed to mark order paid: %w", err)
		}
		if result.RowsAffected() == 0 {
			return false, nil
		}

		if note != "" {
			if err := insertNote(ctx, tx, orderID, note); err != nil {
				return false, err
			}
		}

		return true, nil
	})
}

// =====================================================
// ORDER NOTES
// =====================================================

func (r *postgresOrderRepository) AddNote(ctx context.Context, orderID uuid.UUID, note string) error {
	return insertNote(ctx, r.pool, orderID, note)
}

func insertNote(ctx context.Context, q database.Querier, orderID uuid.UUID, note string) error {
	query := `
		INSERT INTO order_notes (id, order_id, note, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	if _, err := q.Exec(ctx, query, uuid.New(), orderID, note); err != nil {
		return fmt.Errorf("failed to add order note: %w", err)
	}
	return nil
}

func (r *postgresOrderRepository) ListNotes(ctx context.Context, orderID uuid.UUID) ([]model.OrderNote, error) {
	query := `
		SELECT id, order_id, note, created_at
		FROM order_notes
		WHERE order_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order notes: %w", err)
	}
	defer rows.Close()

	notes := make([]model.OrderNote, 0)
	for rows.Next() {
		var n model.OrderNote
		if err := rows.Scan(&n.ID, &n.OrderID, &n.Note, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order note: %w", err)
		}
		notes = append(notes, n)
	}

	return notes, rows.Err()
}

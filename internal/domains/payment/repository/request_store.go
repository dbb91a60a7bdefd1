package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	ordermodel "eurd-payments/internal/domains/order/model"
)

type postgresRequestStore struct {
	pool *pgxpool.Pool
}

func NewPostgresRequestStore(pool *pgxpool.Pool) PaymentRequestStore {
	return &postgresRequestStore{pool: pool}
}

func (s *postgresRequestStore) GetCode(ctx context.Context, orderID uuid.UUID) (string, error) {
	var code *string
	err := s.pool.QueryRow(ctx,
		`SELECT payment_request_code FROM orders WHERE id = $1`,
		orderID,
	).Scan(&code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ordermodel.ErrOrderNotFound
		}
		return "", fmt.Errorf("failed to get payment request code: %w", err)
	}

	if code == nil {
		return "", nil
	}
	return *code, nil
}

func (s *postgresRequestStore) SetCode(ctx context.Context, orderID uuid.UUID, code string) error {
	query := `
		UPDATE orders
		SET payment_request_code = $2,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query, orderID, code)
	if err != nil {
		return fmt.Errorf("failed to set payment request code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ordermodel.ErrOrderNotFound
	}

	return nil
}

func (s *postgresRequestStore) ClearCode(ctx context.Context, orderID uuid.UUID, code string) error {
	// Conditional: a concurrent writer may already have stored a newer code
	query := `
		UPDATE orders
		SET payment_request_code = NULL,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $1
		  AND payment_request_code = $2
	`

	if _, err := s.pool.Exec(ctx, query, orderID, code); err != nil {
		return fmt.Errorf("failed to clear payment request code: %w", err)
	}

	return nil
}

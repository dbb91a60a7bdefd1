package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eurd-payments/internal/domains/payment/model"
)

// settingsRowID is the fixed primary key of the single settings row
const settingsRowID = 1

type postgresSettingsRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &postgresSettingsRepository{pool: pool}
}

func (r *postgresSettingsRepository) GetSettings(ctx context.Context) (*model.Settings, bool, error) {
	query := `
		SELECT enabled, title, description, merchant_api_key, merchant_account_code, updated_at
		FROM payment_settings
		WHERE id = $1
	`

	var s model.Settings
	err := r.pool.QueryRow(ctx, query, settingsRowID).Scan(
		&s.Enabled,
		&s.Title,
		&s.Description,
		&s.APIKey,
		&s.AccountCode,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get payment settings: %w", err)
	}

	return &s, true, nil
}

func (r *postgresSettingsRepository) SaveSettings(ctx context.Context, s *model.Settings) error {
	query := `
		INSERT INTO payment_settings (id, enabled, title, description, merchant_api_key, merchant_account_code, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    merchant_api_key = EXCLUDED.merchant_api_key,
		    merchant_account_code = EXCLUDED.merchant_account_code,
		    updated_at = NOW()
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		settingsRowID,
		s.Enabled,
		s.Title,
		s.Description,
		s.APIKey,
		s.AccountCode,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save payment settings: %w", err)
	}

	return nil
}

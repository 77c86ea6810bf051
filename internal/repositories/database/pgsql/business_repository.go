package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tillpoint/pos-backend/internal/apperrors"
	"github.com/tillpoint/pos-backend/internal/core/ports"
	"github.com/tillpoint/pos-backend/internal/models"
)

// PgxBusinessRepository reads tenant rows.
type PgxBusinessRepository struct {
	BaseRepository
}

// NewBusinessRepository creates a new repository for business data.
func NewBusinessRepository(pool *pgxpool.Pool) *PgxBusinessRepository {
	return &PgxBusinessRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ ports.BusinessRepository = (*PgxBusinessRepository)(nil)

// FindBusinessByID returns the business or apperrors.ErrNotFound.
func (r *PgxBusinessRepository) FindBusinessByID(ctx context.Context, businessID string) (*models.Business, error) {
	query := `
		SELECT business_id, name, base_currency_code, created_at
		FROM businesses
		WHERE business_id = $1;
	`
	var business models.Business
	err := r.Pool.QueryRow(ctx, query, businessID).Scan(
		&business.BusinessID,
		&business.Name,
		&business.BaseCurrencyCode,
		&business.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: business %s", apperrors.ErrNotFound, businessID)
		}
		return nil, fmt.Errorf("%w: failed to find business %s: %w", apperrors.ErrStorageUnavailable, businessID, err)
	}
	return &business, nil
}

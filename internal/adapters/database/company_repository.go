package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floroz/ride-auction/internal/domain/lifecycle"
)

// PostgresCompanyRepository resolves users to the company they bid for
type PostgresCompanyRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresCompanyRepository(pool *pgxpool.Pool) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{pool: pool}
}

func (r *PostgresCompanyRepository) GetCompanyIDForUser(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var companyID uuid.UUID
	err := r.pool.QueryRow(ctx, `SELECT company_id FROM company_users WHERE user_id = $1`, userID).Scan(&companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, lifecycle.ErrNoCompany
		}
		return uuid.Nil, fmt.Errorf("failed to resolve company: %w", err)
	}
	return companyID, nil
}

package pgdb

import (
	"context"
	"errors"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/repository/pgdb/converter"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

type AdminRepo struct {
	pool *pgxpool.Pool
	conv converter.AdminConverter
}

func NewAdminRepo(pool *pgxpool.Pool, conv converter.AdminConverter) *AdminRepo {
	return &AdminRepo{pool: pool, conv: conv}
}

func (a *AdminRepo) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	query := `SELECT id, email, password_hash, created_at FROM admins WHERE email = $1`

	var model converter.AdminModel
	err := a.pool.QueryRow(ctx, query, email).
		Scan(&model.ID, &model.Email, &model.PasswordHash, &model.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAdminNotFound)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}

func (a *AdminRepo) Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error) {
	query := `
		INSERT INTO admins (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, created_at
	`

	var model converter.AdminModel
	err := conn(ctx, a.pool).QueryRow(ctx, query, admin.Email, admin.PasswordHash).
		Scan(&model.ID, &model.Email, &model.PasswordHash, &model.CreatedAt)
	if err != nil {
		if postgresDuplicate(err) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrAdminAlreadyExists)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return a.conv.ToEntity(&model), nil
}

package pgdb

import (
	"context"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/repository/pgdb/converter"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/tr"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ContactRepo хранит заявки формы обратной связи.
type ContactRepo struct {
	pool *pgxpool.Pool
	conv converter.ContactRequestConverter
}

func NewContactRepo(pool *pgxpool.Pool, conv converter.ContactRequestConverter) *ContactRepo {
	return &ContactRepo{pool: pool, conv: conv}
}

func (c *ContactRepo) Create(ctx context.Context, contact *domain.ContactRequest) (*domain.ContactRequest, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := c.conv.ToModel(contact)
	query := `
		INSERT INTO contact_requests (name, email, phone, company, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	if err := tx.QueryRow(ctx, query,
		model.Name, model.Email, model.Phone, model.Company, model.Message,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return c.conv.ToEntity(model), nil
}

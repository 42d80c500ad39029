package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
)

// ContactUseCase сохраняет заявки из формы обратной связи.
type ContactUseCase struct {
	contactRepo ContactRepository
	outboxRepo  OutboxRepository
	tx          Transactor
	logger      logger.Logger
}

func NewContactUC(contactRepo ContactRepository, outboxRepo OutboxRepository, tx Transactor, logger logger.Logger) *ContactUseCase {
	return &ContactUseCase{
		contactRepo: contactRepo,
		outboxRepo:  outboxRepo,
		tx:          tx,
		logger:      logger,
	}
}

func (c *ContactUseCase) Submit(ctx context.Context, req *ContactReq) (*domain.ContactRequest, error) {
	const op = "ContactUseCase.Submit"

	contact := &domain.ContactRequest{
		Name:    strings.TrimSpace(req.Name),
		Email:   normalizeEmail(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Company: strings.TrimSpace(req.Company),
		Message: strings.TrimSpace(req.Message),
	}

	if contact.Name == "" || contact.Email == "" || contact.Message == "" {
		return nil, e.Wrap(op, e.ErrMissingFields)
	}
	if !validEmail(contact.Email) {
		return nil, e.Wrap(op, e.ErrInvalidEmail)
	}

	var created *domain.ContactRequest
	err := c.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		created, err = c.contactRepo.Create(ctx, contact)
		if err != nil {
			return err
		}

		return recordEvent(ctx, c.outboxRepo, EventContactReceived, strconv.FormatInt(created.ID, 10), map[string]any{
			"name":    created.Name,
			"email":   created.Email,
			"phone":   created.Phone,
			"company": created.Company,
			"message": created.Message,
		})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Infof("Contact request %d received", created.ID)

	return created, nil
}

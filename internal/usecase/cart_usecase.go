package usecase

import (
	"context"

	"github.com/brasil-hosp/go-backend/internal/cart"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/quote"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
)

// productFinder — поиск товара по id для снимка названия в корзине.
type productFinder interface {
	Product(ctx context.Context, id string) (*domain.Product, error)
}

// CartUseCase управляет корзинами запроса цены, по одной на сессию.
type CartUseCase struct {
	storage    cart.Storage
	products   productFinder
	outboxRepo OutboxRepository
	tx         Transactor
	quotes     *quote.Builder
	namespace  string
	logger     logger.Logger
}

func NewCartUC(
	storage cart.Storage,
	products productFinder,
	outboxRepo OutboxRepository,
	tx Transactor,
	quotes *quote.Builder,
	namespace string,
	logger logger.Logger,
) *CartUseCase {
	return &CartUseCase{
		storage:    storage,
		products:   products,
		outboxRepo: outboxRepo,
		tx:         tx,
		quotes:     quotes,
		namespace:  namespace,
		logger:     logger,
	}
}

func (c *CartUseCase) Cart(ctx context.Context, session string) *CartRes {
	store := c.load(ctx, session)
	return NewCartRes(store.Items(), store.TotalCount())
}

// AddItem добавляет товар каталога; название берётся из каталога в момент добавления.
func (c *CartUseCase) AddItem(ctx context.Context, session, productID string) (*CartRes, error) {
	const op = "CartUseCase.AddItem"

	if productID == "" {
		return nil, e.Wrap(op, e.ErrProductIDRequired)
	}

	product, err := c.products.Product(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.apply(ctx, session, func(store *cart.Store) {
		store.AddItem(ctx, product.ID, product.Name)
	}), nil
}

func (c *CartUseCase) RemoveItem(ctx context.Context, session, productID string) *CartRes {
	return c.apply(ctx, session, func(store *cart.Store) {
		store.RemoveItem(ctx, productID)
	})
}

func (c *CartUseCase) Clear(ctx context.Context, session string) *CartRes {
	return c.apply(ctx, session, func(store *cart.Store) {
		store.Clear(ctx)
	})
}

// apply выполняет изменение и собирает ответ из уведомления наблюдателя,
// то есть из того же состояния, что было сохранено. Без изменений ответ равен текущей корзине.
func (c *CartUseCase) apply(ctx context.Context, session string, mutate func(store *cart.Store)) *CartRes {
	store := c.load(ctx, session)
	res := NewCartRes(store.Items(), store.TotalCount())

	unsubscribe := store.Subscribe(func(items []domain.CartItem) {
		res = NewCartRes(items, cart.TotalCount(items))
	})
	defer unsubscribe()

	mutate(store)

	return res
}

// Checkout формирует сообщение и ссылку WhatsApp и очищает корзину.
// Передача односторонняя: ошибка записи события только логируется.
func (c *CartUseCase) Checkout(ctx context.Context, session string) (*CheckoutRes, error) {
	const op = "CartUseCase.Checkout"

	store := c.load(ctx, session)
	items := store.Items()
	if len(items) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyCart)
	}

	res := &CheckoutRes{
		Items:   items,
		Message: quote.CartMessage(items),
		Link:    c.quotes.CartLink(items),
	}

	err := c.tx.WithinTx(ctx, func(ctx context.Context) error {
		return recordEvent(ctx, c.outboxRepo, EventQuoteRequested, session, cartFields(items))
	})
	if err != nil {
		c.logger.Warnf("Failed to record quote request for session %s: %v", session, e.Wrap(op, err))
	}

	store.Clear(ctx)

	return res, nil
}

func (c *CartUseCase) load(ctx context.Context, session string) *cart.Store {
	return cart.Load(ctx, c.storage, cart.Key(c.namespace, session), c.logger)
}

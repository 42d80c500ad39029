package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/brasil-hosp/go-backend/internal/catalog"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/quote"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const loadCatalogKey = "catalog"

const cacheWriteTimeout = 500 * time.Millisecond

// CatalogUseCase отдаёт витрину каталога.
// Список товаров читается из снимка процесса, затем из Redis и только потом из источника.
//
// generation растёт при каждой инвалидации. Загрузка, начатая до инвалидации,
// не публикует свой результат ни в снимок, ни в Redis.
type CatalogUseCase struct {
	productRepo  ProductRepository
	categoryRepo CategoryRepository
	cacheRepo    CacheRepository
	snapshot     *catalog.Snapshot
	quotes       *quote.Builder
	logger       logger.Logger
	group        singleflight.Group

	mu         sync.Mutex
	generation uint64
}

func NewCatalogUC(
	productRepo ProductRepository,
	categoryRepo CategoryRepository,
	cacheRepo CacheRepository,
	snapshot *catalog.Snapshot,
	quotes *quote.Builder,
	logger logger.Logger,
) *CatalogUseCase {
	return &CatalogUseCase{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheRepo:    cacheRepo,
		snapshot:     snapshot,
		quotes:       quotes,
		logger:       logger,
	}
}

// Search применяет фильтры витрины к текущему списку товаров.
func (c *CatalogUseCase) Search(ctx context.Context, req *SearchReq) (*SearchRes, error) {
	const op = "CatalogUseCase.Search"

	products, err := c.Products(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	state := catalog.NewFilterState()
	state.SetCategory(req.Category)
	state.SetSubcategory(req.Subcategory)
	state.SetSearch(req.Search)

	return NewSearchRes(catalog.Query(products, state.Filter())), nil
}

// Subcategories возвращает фасет подкатегорий для категории.
func (c *CatalogUseCase) Subcategories(ctx context.Context, category string) ([]string, error) {
	const op = "CatalogUseCase.Subcategories"

	products, err := c.Products(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return catalog.Subcategories(products, category), nil
}

// Categories возвращает активные категории из справочника или встроенный набор, если справочник недоступен.
func (c *CatalogUseCase) Categories(ctx context.Context) ([]domain.CategoryName, error) {
	const op = "CatalogUseCase.Categories"

	categories, err := c.categoryRepo.ListActive(ctx)
	if err != nil || len(categories) == 0 {
		if err != nil {
			c.logger.Warnf("Falling back to built-in categories: %v", e.Wrap(op, err))
		}
		return append([]domain.CategoryName(nil), domain.Categories...), nil
	}

	names := make([]domain.CategoryName, 0, len(categories))
	for _, category := range categories {
		names = append(names, category.Name)
	}

	return names, nil
}

func (c *CatalogUseCase) Product(ctx context.Context, id string) (*domain.Product, error) {
	const op = "CatalogUseCase.Product"

	products, err := c.Products(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	for i := range products {
		if products[i].ID == id {
			p := products[i]
			return &p, nil
		}
	}

	return nil, e.Wrap(op, e.ErrProductNotFound)
}

// QuoteLink строит ссылку на запрос цены одного товара.
func (c *CatalogUseCase) QuoteLink(ctx context.Context, id string) (*QuoteLinkRes, error) {
	const op = "CatalogUseCase.QuoteLink"

	product, err := c.Product(ctx, id)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &QuoteLinkRes{
		Message: quote.ProductMessage(product.Name),
		Link:    c.quotes.ProductLink(product.Name),
	}, nil
}

// Products возвращает весь список товаров. Ошибка загрузки всегда оборачивает e.ErrCatalogUnavailable.
func (c *CatalogUseCase) Products(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogUseCase.Products"

	if products, ok := c.snapshot.Products(); ok {
		return products, nil
	}

	v, err, _ := c.group.Do(loadCatalogKey, func() (any, error) {
		return c.load(ctx)
	})
	if err != nil {
		c.logger.Errorf(err, "catalog load failed")
		return nil, e.Wrap(op, errors.Join(e.ErrCatalogUnavailable, err))
	}

	return v.([]domain.Product), nil
}

// Invalidate сбрасывает снимок процесса и кэш после изменений в источнике.
func (c *CatalogUseCase) Invalidate(ctx context.Context) {
	const op = "CatalogUseCase.Invalidate"

	c.mu.Lock()
	c.generation++
	c.snapshot.Invalidate()
	c.mu.Unlock()

	if err := c.cacheRepo.InvalidateCatalog(ctx); err != nil {
		c.logger.Warnf("Failed to invalidate catalog cache: %v", e.Wrap(op, err))
	}
}

// Hide — первая фаза удаления: товар пропадает из выдачи процесса до подтверждения источником.
// Загрузки, начатые раньше, больше не могут вернуть его в снимок.
func (c *CatalogUseCase) Hide(id string) (restore func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	restore, _ = c.snapshot.Remove(id)
	return restore
}

func (c *CatalogUseCase) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// publish подменяет снимок, только если с начала загрузки не было инвалидаций.
func (c *CatalogUseCase) publish(gen uint64, products []domain.Product) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return false
	}
	c.snapshot.Replace(products)
	return true
}

// warmCache пишет снимок в Redis под той же блокировкой, что и смена поколения,
// поэтому устаревший список не попадёт в кэш после InvalidateCatalog.
func (c *CatalogUseCase) warmCache(gen uint64, products []domain.Product) {
	const op = "CatalogUseCase.warmCache"

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		c.logger.Debugf("Catalog changed during load, skipping cache write")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), cacheWriteTimeout)
	defer cancel()

	if err := c.cacheRepo.SetCatalog(ctx, products); err != nil {
		c.logger.Warnf("Failed to cache catalog in background: %v", e.Wrap(op, err))
	}
}

func (c *CatalogUseCase) load(ctx context.Context) ([]domain.Product, error) {
	const op = "CatalogUseCase.load"

	gen := c.currentGeneration()

	cached, found, err := c.cacheRepo.GetCatalog(ctx)
	if err != nil {
		c.logger.Warnf("Catalog cache read failed: %v", e.Wrap(op, err))
	}
	if found {
		c.publish(gen, cached)
		return cached, nil
	}

	products, err := c.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if products == nil {
		products = []domain.Product{}
	}

	if c.publish(gen, products) {
		go c.warmCache(gen, products)
	}

	return products, nil
}

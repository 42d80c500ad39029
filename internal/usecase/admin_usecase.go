package usecase

import (
	"bytes"
	"context"
	"strings"

	"github.com/brasil-hosp/go-backend/internal/catalog"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/importer"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/google/uuid"
)

// AdminUseCase реализует операции панели администратора.
// Вызывающий код отвечает за проверку токена до вызова.
type AdminUseCase struct {
	productRepo   ProductRepository
	outboxRepo    OutboxRepository
	tx            Transactor
	catalog       *CatalogUseCase
	archive       ImportArchiveInfra
	maxImportSize int64
	logger        logger.Logger
}

func NewAdminUC(
	productRepo ProductRepository,
	outboxRepo OutboxRepository,
	tx Transactor,
	catalog *CatalogUseCase,
	archive ImportArchiveInfra,
	maxImportSize int64,
	logger logger.Logger,
) *AdminUseCase {
	return &AdminUseCase{
		productRepo:   productRepo,
		outboxRepo:    outboxRepo,
		tx:            tx,
		catalog:       catalog,
		archive:       archive,
		maxImportSize: maxImportSize,
		logger:        logger,
	}
}

// List читает товары напрямую из источника, минуя кэши витрины.
func (a *AdminUseCase) List(ctx context.Context, req *AdminListReq) ([]domain.Product, error) {
	const op = "AdminUseCase.List"

	products, err := a.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return catalog.AdminList(products, catalog.AdminQuery{
		Search:   req.Search,
		Category: req.Category,
		Sort:     catalog.ParseSortOrder(req.Sort),
	}), nil
}

func (a *AdminUseCase) Create(ctx context.Context, req *ProductReq) (*domain.Product, error) {
	const op = "AdminUseCase.Create"

	product, err := a.productFromReq(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if product.ID == "" {
		product.ID = uuid.NewString()
	}

	var created *domain.Product
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err = a.productRepo.Create(ctx, product)
		if err != nil {
			return err
		}
		return recordEvent(ctx, a.outboxRepo, EventProductCreated, created.ID, productFields(created))
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.catalog.Invalidate(ctx)

	return created, nil
}

// Update перезаписывает все поля товара с идентификатором id.
func (a *AdminUseCase) Update(ctx context.Context, id string, req *ProductReq) (*domain.Product, error) {
	const op = "AdminUseCase.Update"

	if strings.TrimSpace(id) == "" {
		return nil, e.Wrap(op, e.ErrProductIDRequired)
	}

	product, err := a.productFromReq(req)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	product.ID = id

	var updated *domain.Product
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		updated, err = a.productRepo.Update(ctx, product)
		if err != nil {
			return err
		}
		return recordEvent(ctx, a.outboxRepo, EventProductUpdated, updated.ID, productFields(updated))
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.catalog.Invalidate(ctx)

	return updated, nil
}

// Delete удаляет товар в две фазы: сначала скрывает его из выдачи процесса,
// затем удаляет в источнике; при ошибке товар возвращается на прежнее место.
func (a *AdminUseCase) Delete(ctx context.Context, id string) error {
	const op = "AdminUseCase.Delete"

	if strings.TrimSpace(id) == "" {
		return e.Wrap(op, e.ErrProductIDRequired)
	}

	restore := a.catalog.Hide(id)

	err := a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := a.productRepo.Delete(ctx, id); err != nil {
			return err
		}
		return recordEvent(ctx, a.outboxRepo, EventProductDeleted, id, map[string]any{"id": id})
	})
	if err != nil {
		restore()
		a.logger.Warnf("Delete of product %s failed, restored in catalog: %v", id, e.Wrap(op, err))
		return e.Wrap(op, err)
	}

	a.catalog.Invalidate(ctx)

	return nil
}

// Import разбирает файл, архивирует его и записывает все товары одной транзакцией.
// Если транзакция не удалась, архивный объект удаляется в фоне.
func (a *AdminUseCase) Import(ctx context.Context, req *ImportReq) (res *ImportRes, err error) {
	const op = "AdminUseCase.Import"

	if a.maxImportSize > 0 && int64(len(req.Data)) > a.maxImportSize {
		return nil, e.Wrap(op, e.ErrFileTooLarge)
	}

	format, err := importer.DetectFormat(req.Filename, req.ContentType)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	parsed, err := importer.Parse(bytes.NewReader(req.Data), format)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var archiveKey string
	if a.archive != nil {
		archiveKey, err = a.archive.Archive(ctx, NewArchiveImportReq(req.Filename, req.ContentType, req.Data))
		if err != nil {
			return nil, e.Wrap(op, err)
		}
	}
	// Если произошла ошибка, архивный файл больше не нужен
	defer func() {
		if err != nil && archiveKey != "" {
			a.logger.Warnf("Cleaning up import archive after failure. key: %s, error: %v", archiveKey, err)
			a.archive.CleanupArchive(archiveKey)
		}
	}()

	var imported int
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		imported, err = a.productRepo.BulkUpsert(ctx, parsed.Products)
		if err != nil {
			return err
		}
		return recordEvent(ctx, a.outboxRepo, EventCatalogImported, archiveKey, map[string]any{
			"filename":    req.Filename,
			"archive_key": archiveKey,
			"imported":    imported,
			"skipped":     parsed.Skipped,
		})
	})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	a.catalog.Invalidate(ctx)

	return &ImportRes{
		Imported:   imported,
		Skipped:    parsed.Skipped,
		ArchiveKey: archiveKey,
	}, nil
}

// Stats считает сводку дашборда по актуальному списку из источника.
func (a *AdminUseCase) Stats(ctx context.Context) (*StatsRes, error) {
	const op = "AdminUseCase.Stats"

	products, err := a.productRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	stats := catalog.ComputeStats(products)

	return &StatsRes{
		Stats:         stats,
		CategoryCount: len(stats.Categories),
	}, nil
}

// productFromReq проверяет поля формы: название обязательно, категория пустая или из набора.
func (a *AdminUseCase) productFromReq(req *ProductReq) (*domain.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, e.ErrProductNameRequired
	}

	var category domain.CategoryName
	if strings.TrimSpace(req.Category) != "" {
		category = importer.ResolveCategory(req.Category)
		if !category.Known() {
			return nil, e.ErrUnknownCategory
		}
	}

	return domain.NewProduct(
		strings.TrimSpace(req.ID),
		name,
		category,
		strings.TrimSpace(req.Subcategory),
		strings.TrimSpace(req.Description),
	), nil
}

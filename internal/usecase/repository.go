package usecase

import (
	"context"
	"time"

	"github.com/brasil-hosp/go-backend/internal/domain"
)

// ProductRepository — источник истины о товарах (PostgreSQL или SheetDB).
// Get, Update и Delete возвращают e.ErrProductNotFound для неизвестного id.
type ProductRepository interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	BulkUpsert(ctx context.Context, products []domain.Product) (int, error)
}

type CategoryRepository interface {
	ListActive(ctx context.Context) ([]domain.Category, error)
}

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	Create(ctx context.Context, admin *domain.Admin) (*domain.Admin, error)
}

type ContactRepository interface {
	Create(ctx context.Context, contact *domain.ContactRequest) (*domain.ContactRequest, error)
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	ReturnToPending(ctx context.Context, id int64) error
	// ResetStale возвращает в очередь события, застрявшие в processing дольше olderThan.
	ResetStale(ctx context.Context, olderThan time.Duration) (int64, error)
}

// CacheRepository хранит снимок всего каталога.
// GetCatalog возвращает found=false при промахе.
type CacheRepository interface {
	GetCatalog(ctx context.Context) (products []domain.Product, found bool, err error)
	SetCatalog(ctx context.Context, products []domain.Product) error
	InvalidateCatalog(ctx context.Context) error
}

// Transactor выполняет fn в транзакции PostgreSQL; транзакция доступна репозиториям через контекст.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ArchiveRepository — объектное хранилище исходных файлов импорта.
type ArchiveRepository interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/brasil-hosp/go-backend/internal/catalog"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/internal/quote"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
)

type fakeProductRepo struct {
	mu        sync.Mutex
	products  []domain.Product
	listCalls int
	listErr   error
	writeErr  error
}

func (f *fakeProductRepo) List(context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Product(nil), f.products...), nil
}

func (f *fakeProductRepo) Get(_ context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProductRepo) Create(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for _, p := range f.products {
		if p.ID == product.ID {
			return nil, e.ErrProductAlreadyExists
		}
	}
	created := *product
	created.CreatedAt = time.Now()
	f.products = append(f.products, created)
	return &created, nil
}

func (f *fakeProductRepo) Update(_ context.Context, product *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return nil, f.writeErr
	}
	for i, p := range f.products {
		if p.ID == product.ID {
			updated := *product
			updated.CreatedAt = p.CreatedAt
			f.products[i] = updated
			return &updated, nil
		}
	}
	return nil, e.ErrProductNotFound
}

func (f *fakeProductRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return f.writeErr
	}
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return e.ErrProductNotFound
}

func (f *fakeProductRepo) BulkUpsert(_ context.Context, products []domain.Product) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.writeErr != nil {
		return 0, f.writeErr
	}
	for _, product := range products {
		replaced := false
		for i, p := range f.products {
			if p.ID == product.ID {
				f.products[i] = product
				replaced = true
			}
		}
		if !replaced {
			f.products = append(f.products, product)
		}
	}
	return len(products), nil
}

type fakeCategoryRepo struct {
	categories []domain.Category
	err        error
}

func (f *fakeCategoryRepo) ListActive(context.Context) ([]domain.Category, error) {
	return f.categories, f.err
}

type fakeCache struct {
	mu          sync.Mutex
	products    []domain.Product
	cached      bool
	getErr      error
	invalidated int
	sets        int
}

func (f *fakeCache) GetCatalog(context.Context) ([]domain.Product, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return nil, false, f.getErr
	}
	return f.products, f.cached, nil
}

func (f *fakeCache) SetCatalog(_ context.Context, products []domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sets++
	f.products = append([]domain.Product{}, products...)
	f.cached = true
	return nil
}

func (f *fakeCache) InvalidateCatalog(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidated++
	f.products = nil
	f.cached = false
	return nil
}

func (f *fakeCache) snapshot() ([]domain.Product, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Product(nil), f.products...), f.cached
}

// gatedCache задерживает запись в кэш до закрытия release.
type gatedCache struct {
	*fakeCache
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedCache() *gatedCache {
	return &gatedCache{
		fakeCache: &fakeCache{},
		entered:   make(chan struct{}),
		release:   make(chan struct{}),
	}
}

func (g *gatedCache) SetCatalog(ctx context.Context, products []domain.Product) error {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.fakeCache.SetCatalog(ctx, products)
}

// gatedProductRepo отдаёт список, прочитанный до закрытия release.
type gatedProductRepo struct {
	*fakeProductRepo
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedProductRepo(repo *fakeProductRepo) *gatedProductRepo {
	return &gatedProductRepo{
		fakeProductRepo: repo,
		entered:         make(chan struct{}),
		release:         make(chan struct{}),
	}
}

func (g *gatedProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	products, err := g.fakeProductRepo.List(ctx)
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return products, err
}

func (f *fakeCache) invalidations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.invalidated
}

type fakeOutbox struct {
	mu     sync.Mutex
	events []*OutboxEvent
	err    error
}

func (f *fakeOutbox) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	f.events = append(f.events, event)
	return event, nil
}

func (f *fakeOutbox) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) MarkAsProcessed(context.Context, int64) error { return nil }

func (f *fakeOutbox) ReturnToPending(context.Context, int64) error { return nil }

func (f *fakeOutbox) ResetStale(context.Context, time.Duration) (int64, error) { return 0, nil }

func (f *fakeOutbox) types() []OutboxEventType {
	f.mu.Lock()
	defer f.mu.Unlock()

	types := make([]OutboxEventType, len(f.events))
	for i, ev := range f.events {
		types[i] = ev.EventType
	}
	return types
}

// fakeTx выполняет fn без транзакции.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeArchive struct {
	mu       sync.Mutex
	archived []string
	cleaned  []string
	err      error
}

func (f *fakeArchive) Archive(_ context.Context, req *ArchiveImportReq) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return "", f.err
	}
	key := "imports/test/" + req.Filename
	f.archived = append(f.archived, key)
	return key, nil
}

func (f *fakeArchive) CleanupArchive(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned = append(f.cleaned, key)
}

type fakeAdminRepo struct {
	admins map[string]*domain.Admin
	nextID int64
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[string]*domain.Admin)}
}

func (f *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	admin, ok := f.admins[email]
	if !ok {
		return nil, e.ErrAdminNotFound
	}
	return admin, nil
}

func (f *fakeAdminRepo) Create(_ context.Context, admin *domain.Admin) (*domain.Admin, error) {
	if _, ok := f.admins[admin.Email]; ok {
		return nil, e.ErrAdminAlreadyExists
	}
	f.nextID++
	created := *admin
	created.ID = f.nextID
	created.CreatedAt = time.Now()
	f.admins[admin.Email] = &created
	return &created, nil
}

type fakeContactRepo struct {
	contacts []domain.ContactRequest
}

func (f *fakeContactRepo) Create(_ context.Context, contact *domain.ContactRequest) (*domain.ContactRequest, error) {
	created := *contact
	created.ID = int64(len(f.contacts) + 1)
	created.CreatedAt = time.Now()
	f.contacts = append(f.contacts, created)
	return &created, nil
}

type memCartStorage struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCartStorage() *memCartStorage {
	return &memCartStorage{data: make(map[string][]byte)}
}

func (m *memCartStorage) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[key]
	if !ok {
		return nil, e.ErrCartNotFound
	}
	return data, nil
}

func (m *memCartStorage) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = data
	return nil
}

type catalogFixture struct {
	repo  *fakeProductRepo
	cache *fakeCache
	uc    *CatalogUseCase
}

func newCatalogFixture(products ...domain.Product) *catalogFixture {
	repo := &fakeProductRepo{products: products}
	cache := &fakeCache{}
	uc := NewCatalogUC(
		repo,
		&fakeCategoryRepo{},
		cache,
		catalog.NewSnapshot(time.Hour),
		quote.NewBuilder("", ""),
		logger.NewDiscard(),
	)

	return &catalogFixture{repo: repo, cache: cache, uc: uc}
}

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Luva Látex", Category: domain.CategoryDisposables, Subcategory: "Luvas"},
		{ID: "2", Name: "Seringa", Category: domain.CategoryDisposables},
		{ID: "3", Name: "Bota Ortopédica", Category: domain.CategoryOrthopedics, Subcategory: "Botas"},
	}
}

func productIDs(products []domain.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

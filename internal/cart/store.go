package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

// DefaultNamespace — префикс ключа, под которым сайт хранил корзину.
const DefaultNamespace = "brasilHospCart"

// Storage — хранилище сериализованной корзины.
// Get возвращает e.ErrCartNotFound, если по ключу ничего нет.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Observer получает копию позиций после каждого изменения.
// Observer не должен изменять корзину, из которой его вызвали.
type Observer func(items []domain.CartItem)

// Key возвращает ключ корзины сессии.
func Key(namespace, session string) string {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return namespace + ":" + session
}

// Store — корзина запроса цены одной сессии.
// Каждое изменение целиком сохраняется в Storage; ошибки записи только логируются.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	storage Storage
	key     string
	logger  logger.Logger

	items     []domain.CartItem
	observers map[int]Observer
	nextObs   int
}

// Load восстанавливает корзину по ключу. Отсутствующая или повреждённая запись даёт пустую корзину.
func Load(ctx context.Context, storage Storage, key string, logger logger.Logger) *Store {
	s := &Store{
		storage:   storage,
		key:       key,
		logger:    logger,
		observers: make(map[int]Observer),
	}

	data, err := storage.Get(ctx, key)
	switch {
	case errors.Is(err, e.ErrCartNotFound):
		return s
	case err != nil:
		logger.Warnf("Failed to load cart %s, starting empty: %v", key, e.Wrap(whereami.WhereAmI(), err))
		return s
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warnf("Corrupt cart %s, starting empty: %v", key, e.Wrap(whereami.WhereAmI(), err))
		return s
	}
	s.items = normalize(items)

	return s
}

// AddItem увеличивает количество позиции или добавляет её с количеством 1.
// name запоминается только при первом добавлении.
func (s *Store) AddItem(ctx context.Context, id, name string) {
	s.mutate(ctx, func(items []domain.CartItem) ([]domain.CartItem, bool) {
		for i := range items {
			if items[i].ID == id {
				items[i].Quantity++
				return items, true
			}
		}
		return append(items, domain.CartItem{ID: id, Name: name, Quantity: 1}), true
	})
}

// RemoveItem удаляет позицию целиком, независимо от количества.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mutate(ctx, func(items []domain.CartItem) ([]domain.CartItem, bool) {
		for i := range items {
			if items[i].ID == id {
				return append(items[:i], items[i+1:]...), true
			}
		}
		return items, false
	})
}

func (s *Store) Clear(ctx context.Context) {
	s.mutate(ctx, func(items []domain.CartItem) ([]domain.CartItem, bool) {
		return nil, len(items) > 0
	})
}

// Items возвращает копию позиций в порядке добавления.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	return clone(s.items)
}

// TotalCount — сумма количеств всех позиций.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return TotalCount(s.items)
}

// TotalCount считает бейдж по списку позиций, например полученному наблюдателем.
func TotalCount(items []domain.CartItem) int {
	var total int
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// Subscribe регистрирует наблюдателя и возвращает функцию отписки.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// mutate применяет изменение, сохраняет корзину и уведомляет наблюдателей.
// notifyMu удерживается до конца, чтобы запись и уведомления шли в порядке изменений.
func (s *Store) mutate(ctx context.Context, fn func(items []domain.CartItem) ([]domain.CartItem, bool)) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next, changed := fn(clone(s.items))
	if !changed {
		s.mu.Unlock()
		return
	}
	s.items = next
	snapshot := clone(next)
	observers := make([]Observer, 0, len(s.observers))
	for id := 0; id < s.nextObs; id++ {
		if obs, ok := s.observers[id]; ok {
			observers = append(observers, obs)
		}
	}
	s.mu.Unlock()

	s.persist(ctx, snapshot)

	for _, obs := range observers {
		obs(clone(snapshot))
	}
}

func (s *Store) persist(ctx context.Context, items []domain.CartItem) {
	if items == nil {
		items = []domain.CartItem{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warnf("Failed to marshal cart %s: %v", s.key, e.Wrap(whereami.WhereAmI(), err))
		return
	}

	if err := s.storage.Set(ctx, s.key, data); err != nil {
		s.logger.Warnf("Failed to persist cart %s: %v", s.key, e.Wrap(whereami.WhereAmI(), err))
	}
}

// normalize отбрасывает позиции без id или с количеством меньше 1 и склеивает дубликаты.
func normalize(items []domain.CartItem) []domain.CartItem {
	result := make([]domain.CartItem, 0, len(items))
	index := make(map[string]int, len(items))

	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if i, ok := index[item.ID]; ok {
			result[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(result)
		result = append(result, item)
	}

	return result
}

func clone(items []domain.CartItem) []domain.CartItem {
	if len(items) == 0 {
		return nil
	}
	return append(make([]domain.CartItem, 0, len(items)), items...)
}

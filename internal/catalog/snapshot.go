package catalog

import (
	"sync"
	"time"

	"github.com/brasil-hosp/go-backend/internal/domain"
)

// Snapshot — копия списка товаров, которую процесс показывает посетителям.
// Сам список не изменяется на месте: каждое изменение подменяет срез целиком.
type Snapshot struct {
	mu       sync.RWMutex
	products []domain.Product
	loadedAt time.Time
	loaded   bool
	ttl      time.Duration
	now      func() time.Time
}

func NewSnapshot(ttl time.Duration) *Snapshot {
	return &Snapshot{ttl: ttl, now: time.Now}
}

// Products возвращает список и признак того, что он загружен и ещё не устарел.
func (s *Snapshot) Products() ([]domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.loaded || s.now().Sub(s.loadedAt) > s.ttl {
		return nil, false
	}

	return s.products, true
}

// Replace подменяет список целиком.
func (s *Snapshot) Replace(products []domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(make([]domain.Product, 0, len(products)), products...)
	s.loadedAt = s.now()
	s.loaded = true
}

// Invalidate заставляет следующее чтение обратиться к источнику.
func (s *Snapshot) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
}

// Remove — первая фаза удаления: товар сразу исчезает из выдачи.
// restore возвращает его на прежнюю позицию, если удаление в источнике не удалось;
// повторный вызов restore ничего не делает.
func (s *Snapshot) Remove(id string) (restore func(), found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return func() {}, false
	}

	removed := s.products[idx]
	next := make([]domain.Product, 0, len(s.products)-1)
	next = append(next, s.products[:idx]...)
	next = append(next, s.products[idx+1:]...)
	s.products = next

	var once sync.Once
	return func() {
		once.Do(func() { s.reinsert(idx, removed) })
	}, true
}

func (s *Snapshot) reinsert(idx int, p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if existing.ID == p.ID {
			return
		}
	}

	idx = min(idx, len(s.products))
	next := make([]domain.Product, 0, len(s.products)+1)
	next = append(next, s.products[:idx]...)
	next = append(next, p)
	next = append(next, s.products[idx:]...)
	s.products = next
}

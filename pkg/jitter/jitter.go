// Package jitter предоставляет экспоненциальные задержки со случайной добавкой для повторов
// запросов к внешним сервисам (таблица, объектное хранилище).
package jitter

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// DefaultJitter — стандартный коэффициент джиттера (50%)
const DefaultJitter = 0.5

var (
	globalRand = rand.New(rand.NewSource(time.Now().UnixNano()))
	randMutex  sync.Mutex
)

// Backoff описывает политику повторов.
type Backoff struct {
	Base   time.Duration // первая задержка
	Max    time.Duration // потолок задержки
	Factor float64       // коэффициент джиттера, 0.5 = до +50%
}

// NewBackoff создаёт политику с DefaultJitter.
func NewBackoff(base, max time.Duration) Backoff {
	return Backoff{Base: base, Max: max, Factor: DefaultJitter}
}

// Duration возвращает продолжительность с применённым джиттером.
// Результат находится в диапазоне [d, d*(1+jitterFactor)].
func Duration(d time.Duration, jitterFactor float64) time.Duration {
	randMutex.Lock()
	jitter := globalRand.Float64() * jitterFactor * float64(d)
	randMutex.Unlock()
	return d + time.Duration(jitter)
}

// Next вычисляет задержку перед попыткой attempt (нумерация с нуля).
func (b Backoff) Next(attempt int) time.Duration {
	backoff := b.Base
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff > b.Max {
			backoff = b.Max
			break
		}
	}
	return Duration(backoff, b.Factor)
}

// Wait ждёт задержку для попытки attempt либо отмены контекста.
func (b Backoff) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(b.Next(attempt))
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

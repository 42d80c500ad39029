package kafka

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
)

const (
	defaultPollInterval = 30 * time.Second
	staleProcessing     = 5 * time.Minute
)

// OutboxWorker переносит события из outbox в Kafka.
// Просыпается при старте, по уведомлению Listener и по таймеру.
type OutboxWorker struct {
	repo         usecase.OutboxRepository
	producer     usecase.MessageProducer
	listener     Listener
	logger       logger.Logger
	batchSize    int
	pollInterval time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOutboxWorker(
	repo usecase.OutboxRepository,
	producer usecase.MessageProducer,
	listener Listener,
	batchSize int,
	logger logger.Logger,
) *OutboxWorker {
	if batchSize <= 0 {
		batchSize = 10
	}

	return &OutboxWorker{
		repo:         repo,
		producer:     producer,
		listener:     listener,
		logger:       logger,
		batchSize:    batchSize,
		pollInterval: defaultPollInterval,
	}
}

func (w *OutboxWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	wake := make(chan struct{}, 1)

	w.wg.Add(2)
	go func() {
		defer w.wg.Done()
		w.listener.Listen(ctx, wake)
	}()
	go func() {
		defer w.wg.Done()
		w.run(ctx, wake)
	}()
}

// Stop останавливает воркер и ждёт завершения горутин в пределах ctx.
func (w *OutboxWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.cancel()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return e.Wrap("OutboxWorker.Stop", ctx.Err())
	}
}

func (w *OutboxWorker) run(ctx context.Context, wake <-chan struct{}) {
	if n, err := w.repo.ResetStale(ctx, staleProcessing); err != nil {
		w.logger.Warnf("Failed to reset stale outbox events: %v", err)
	} else if n > 0 {
		w.logger.Infof("Returned %d stale outbox events to pending", n)
	}

	w.logger.Infof("Draining pending outbox events on startup...")
	w.drain(ctx)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Infof("Outbox worker stopped")
			return
		case <-wake:
			w.logger.Debugf("Received outbox notification, draining outbox events")
			w.drain(ctx)
		case <-ticker.C:
			w.drain(ctx)
		}
	}
}

func (w *OutboxWorker) drain(ctx context.Context) {
	for ctx.Err() == nil {
		hasMore, err := w.processBatch(ctx)
		if err != nil {
			w.logger.Warnf("Batch processing failed: %v", err)
			return
		}
		if !hasMore {
			return
		}
	}
}

// processBatch возвращает false, когда очередь пуста или брокер недоступен:
// в последнем случае дальнейшие попытки до следующего пробуждения бессмысленны.
func (w *OutboxWorker) processBatch(ctx context.Context) (bool, error) {
	events, err := w.repo.GetAndMarkAsProcessing(ctx, w.batchSize)
	if err != nil {
		return false, err
	}

	if len(events) == 0 {
		return false, nil
	}

	published := 0
	for _, event := range events {
		if err := w.processEvent(ctx, event); err != nil {
			w.logger.Warnf("Publish of outbox event %s failed: %v", event.EventID, err)
			if err := w.repo.ReturnToPending(context.WithoutCancel(ctx), event.ID); err != nil {
				w.logger.Warnf("return to pending failed: %v", err)
			}
			continue
		}

		published++
		if err := w.repo.MarkAsProcessed(context.WithoutCancel(ctx), event.ID); err != nil {
			w.logger.Warnf("mark processed failed: %v", err)
		}
	}

	return published > 0 && len(events) == w.batchSize, nil
}

func (w *OutboxWorker) processEvent(ctx context.Context, event *usecase.OutboxEvent) error {
	err := w.producer.WriteRawMessage(ctx, usecase.NewWriteRawMessageReq(event.AggregateID, event.EventType, event.Payload))
	if err != nil {
		if isRetryableError(err) {
			return e.Wrap("Temporary Kafka failure, will retry", err)
		}
		return e.Wrap("Kafka failure", err)
	}
	return nil
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	retryablePhrases := []string{
		"connection refused",
		"i/o timeout",
		"network is unreachable",
		"broker not available",
		"connection reset",
		"broken pipe",
		"no such host",
	}
	for _, phrase := range retryablePhrases {
		if strings.Contains(errStr, phrase) {
			return true
		}
	}
	return false
}

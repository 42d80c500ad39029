package minio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/brasil-hosp/go-backend/internal/infrastructure"
	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/jitter"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/google/uuid"
)

// ArchivePrefix — общий префикс ключей архива импорта.
const ArchivePrefix = "imports/"

const (
	cleanupAttempts = 3
	cleanupTimeout  = 30 * time.Second
)

// MinioInfrastructure архивирует файлы импорта и удаляет их в фоне,
// если импорт не удался.
type MinioInfrastructure struct {
	archiveRepo usecase.ArchiveRepository
	logger      logger.Logger
	shutdownCtx context.Context
	wg          sync.WaitGroup
	backoff     jitter.Backoff
	now         func() time.Time
}

func NewMinioInfrastructure(archiveRepo usecase.ArchiveRepository, logger logger.Logger, shutdownCtx context.Context) *MinioInfrastructure {
	return &MinioInfrastructure{
		archiveRepo: archiveRepo,
		logger:      logger,
		shutdownCtx: shutdownCtx,
		backoff:     jitter.NewBackoff(time.Second, 8*time.Second),
		now:         time.Now,
	}
}

// Archive сохраняет файл под ключом imports/<дата>/<uuid>-<имя>.
func (m *MinioInfrastructure) Archive(ctx context.Context, req *usecase.ArchiveImportReq) (string, error) {
	const op = "MinioInfrastructure.Archive"

	key := fmt.Sprintf("%s%s/%s-%s",
		ArchivePrefix,
		m.now().UTC().Format(time.DateOnly),
		uuid.NewString(),
		infrastructure.SafeObjectName(req.Filename),
	)

	stored, err := m.archiveRepo.Upload(ctx, key, infrastructure.ContentTypeFor(req.Filename, req.ContentType), req.Data)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return stored, nil
}

// CleanupArchive запускает фоновое удаление объекта.
func (m *MinioInfrastructure) CleanupArchive(key string) {
	if key == "" {
		return
	}
	m.wg.Add(1)
	go m.cleanup(key)
}

// cleanup удаляет объект с экспоненциальной задержкой и jitter.
func (m *MinioInfrastructure) cleanup(key string) {
	defer m.wg.Done()
	const op = "MinioInfrastructure.cleanup"

	ctx, cancel := context.WithTimeout(m.shutdownCtx, cleanupTimeout)
	defer cancel()

	var err error
	for attempt := 0; attempt < cleanupAttempts; attempt++ {
		if err = m.archiveRepo.Delete(ctx, key); err == nil {
			m.logger.Infof("%s: removed %s", op, key)
			return
		}

		if attempt == cleanupAttempts-1 {
			break
		}
		if waitErr := m.backoff.Wait(ctx, attempt); waitErr != nil {
			m.logger.Warnf("%s: interrupted by shutdown, key=%s", op, key)
			return
		}
	}

	m.logger.Warnf("%s: giving up on %s: %v", op, key, err)
}

// WaitForCleanup ожидает завершения фоновых удалений в пределах ctx.
func (m *MinioInfrastructure) WaitForCleanup(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("minio cleanup timeout during shutdown: %w", ctx.Err())
	}
}

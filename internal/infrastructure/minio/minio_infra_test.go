package minio

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/brasil-hosp/go-backend/internal/importer"
	"github.com/brasil-hosp/go-backend/internal/usecase"
	"github.com/brasil-hosp/go-backend/pkg/jitter"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeArchiveRepo struct {
	mu          sync.Mutex
	uploads     map[string]string
	deleted     []string
	deleteFails int
}

func newFakeArchiveRepo() *fakeArchiveRepo {
	return &fakeArchiveRepo{uploads: make(map[string]string)}
}

func (f *fakeArchiveRepo) Upload(_ context.Context, key, contentType string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[key] = contentType
	return key, nil
}

func (f *fakeArchiveRepo) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteFails > 0 {
		f.deleteFails--
		return errors.New("minio: 503")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func newTestInfra(repo usecase.ArchiveRepository) *MinioInfrastructure {
	infra := NewMinioInfrastructure(repo, logger.NewDiscard(), context.Background())
	infra.backoff = jitter.NewBackoff(time.Millisecond, 5*time.Millisecond)
	infra.now = func() time.Time { return time.Date(2025, 6, 2, 23, 0, 0, 0, time.UTC) }
	return infra
}

func TestArchiveKey(t *testing.T) {
	repo := newFakeArchiveRepo()
	infra := newTestInfra(repo)

	key, err := infra.Archive(context.Background(), usecase.NewArchiveImportReq("Lista de preços.csv", "", []byte("nome\nLuva\n")))
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^imports/2025-06-02/[0-9a-f-]{36}-Lista_de_preços\.csv$`), key)
	require.Equal(t, importer.ContentTypeCSV, repo.uploads[key])
}

func TestCleanupRetries(t *testing.T) {
	repo := newFakeArchiveRepo()
	repo.deleteFails = 2
	infra := newTestInfra(repo)

	infra.CleanupArchive("imports/x")
	infra.CleanupArchive("")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
	require.Equal(t, []string{"imports/x"}, repo.deleted)
}

func TestCleanupGivesUp(t *testing.T) {
	repo := newFakeArchiveRepo()
	repo.deleteFails = 10
	infra := newTestInfra(repo)

	infra.CleanupArchive("imports/x")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
	require.Empty(t, repo.deleted)
	require.Equal(t, 7, repo.deleteFails)
}

func TestCleanupStopsOnShutdown(t *testing.T) {
	repo := newFakeArchiveRepo()
	repo.deleteFails = 10

	shutdownCtx, shutdown := context.WithCancel(context.Background())
	infra := NewMinioInfrastructure(repo, logger.NewDiscard(), shutdownCtx)
	infra.backoff = jitter.NewBackoff(time.Hour, time.Hour)

	infra.CleanupArchive("imports/x")
	shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, infra.WaitForCleanup(ctx))
}

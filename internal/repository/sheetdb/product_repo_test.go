package sheetdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brasil-hosp/go-backend/internal/cfg"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/brasil-hosp/go-backend/pkg/telemetry"
	"github.com/stretchr/testify/require"
)

// fakeSheet повторяет поведение REST API SheetDB для одного листа.
type fakeSheet struct {
	mu       sync.Mutex
	rows     []map[string]any
	failGets int32
	gets     atomic.Int32
	sheets   []string
}

func (f *fakeSheet) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sheets = append(f.sheets, r.URL.Query().Get("sheet"))

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/":
		if f.gets.Add(1) <= f.failGets {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, f.rows)

	case r.Method == http.MethodGet && r.URL.Path == "/search":
		id := r.URL.Query().Get("id")
		found := []map[string]any{}
		for _, row := range f.rows {
			if toString(row["id"]) == id {
				found = append(found, row)
			}
		}
		writeJSON(w, found)

	case r.Method == http.MethodPost && r.URL.Path == "/":
		var body struct {
			Data []map[string]any `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.rows = append(f.rows, body.Data...)
		writeJSON(w, map[string]int{"created": len(body.Data)})

	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/id/"):
		var body struct {
			Data map[string]any `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		n := 0
		for i, row := range f.rows {
			if toString(row["id"]) == strings.TrimPrefix(r.URL.Path, "/id/") {
				f.rows[i] = body.Data
				n++
			}
		}
		writeJSON(w, map[string]int{"updated": n})

	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/id/"):
		id := strings.TrimPrefix(r.URL.Path, "/id/")
		kept := f.rows[:0]
		for _, row := range f.rows {
			if toString(row["id"]) != id {
				kept = append(kept, row)
			}
		}
		n := len(f.rows) - len(kept)
		f.rows = kept
		writeJSON(w, map[string]int{"deleted": n})

	default:
		http.NotFound(w, r)
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestRepo(t *testing.T, sheet *fakeSheet) *ProductRepo {
	t.Helper()

	srv := httptest.NewServer(sheet)
	t.Cleanup(srv.Close)

	repo := NewProductRepo(telemetry.NewTracedHTTPClient(nil, time.Second), &cfg.CatalogCfg{
		SheetDBURL: srv.URL + "/",
		SheetName:  "catalogo",
	}, logger.NewDiscard())

	return repo
}

func TestListDecodesRows(t *testing.T) {
	sheet := &fakeSheet{rows: []map[string]any{
		{"id": 1732212345678.0, "name": "Luva Látex", "category": "Descartáveis", "description": ""},
		{"id": "abc", "name": " Maca ", "category": "Mobiliário", "subcategory": "Macas", "created_at": "2025-01-02T03:04:05Z"},
		{"id": "empty", "name": ""},
	}}
	repo := newTestRepo(t, sheet)

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	require.Equal(t, "1732212345678", products[0].ID)
	require.Equal(t, domain.CategoryDisposables, products[0].Category)
	require.Equal(t, time.UnixMilli(1732212345678).UTC(), products[0].CreatedAt)

	require.Equal(t, "Maca", products[1].Name)
	require.Equal(t, "Macas", products[1].Subcategory)
	require.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), products[1].CreatedAt)

	require.Equal(t, "catalogo", sheet.sheets[0])
}

func TestListFailureIsNotRetried(t *testing.T) {
	sheet := &fakeSheet{failGets: 2, rows: []map[string]any{{"id": "1", "name": "Luva"}}}
	repo := newTestRepo(t, sheet)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	require.Equal(t, int32(1), sheet.gets.Load())

	_, err = repo.List(context.Background())
	require.Error(t, err)

	products, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, int32(3), sheet.gets.Load())
}

func TestCreateUpdateDelete(t *testing.T) {
	ctx := context.Background()
	sheet := &fakeSheet{}
	repo := newTestRepo(t, sheet)

	created, err := repo.Create(ctx, domain.NewProduct("p1", "Muleta", domain.CategoryOrthopedics, "", ""))
	require.NoError(t, err)
	require.False(t, created.CreatedAt.IsZero())

	_, err = repo.Create(ctx, domain.NewProduct("p1", "Muleta", domain.CategoryOrthopedics, "", ""))
	require.ErrorIs(t, err, e.ErrProductAlreadyExists)

	updated, err := repo.Update(ctx, domain.NewProduct("p1", "Muleta Axilar", domain.CategoryOrthopedics, "Muletas", ""))
	require.NoError(t, err)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Muleta Axilar", got.Name)
	require.Equal(t, "Muletas", got.Subcategory)

	_, err = repo.Update(ctx, domain.NewProduct("nope", "X", "", "", ""))
	require.ErrorIs(t, err, e.ErrProductNotFound)

	require.NoError(t, repo.Delete(ctx, "p1"))
	require.ErrorIs(t, repo.Delete(ctx, "p1"), e.ErrProductNotFound)

	_, err = repo.Get(ctx, "p1")
	require.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestBulkUpsert(t *testing.T) {
	ctx := context.Background()
	sheet := &fakeSheet{rows: []map[string]any{{"id": "1", "name": "Luva", "created_at": "2024-05-01T00:00:00Z"}}}
	repo := newTestRepo(t, sheet)

	n, err := repo.BulkUpsert(ctx, []domain.Product{
		{ID: "1", Name: "Luva Nitrílica", Category: domain.CategoryDisposables},
		{ID: "2", Name: "Seringa"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, n)

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, "Luva Nitrílica", products[0].Name)
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), products[0].CreatedAt)
	require.Equal(t, "2", products[1].ID)
}

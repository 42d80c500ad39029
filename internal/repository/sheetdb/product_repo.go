// Package sheetdb хранит товары в Google-таблице через REST API SheetDB.
// Таблица не поддерживает транзакции: записи выполняются сразу,
// независимо от транзакции PostgreSQL в контексте.
package sheetdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brasil-hosp/go-backend/internal/cfg"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/brasil-hosp/go-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

// Старые строки таблицы используют Date.now() как id; всё, что больше, считаем миллисекундами.
const msTimestampFloor = 1_000_000_000_000

// ProductRepo не повторяет запросы: ошибка чтения доходит до витрины,
// а повторная загрузка остаётся за вызывающим.
type ProductRepo struct {
	client  *http.Client
	baseURL string
	sheet   string
	logger  logger.Logger
}

func NewProductRepo(client *http.Client, cfg *cfg.CatalogCfg, logger logger.Logger) *ProductRepo {
	return &ProductRepo{
		client:  client,
		baseURL: strings.TrimRight(cfg.SheetDBURL, "/"),
		sheet:   cfg.SheetName,
		logger:  logger,
	}
}

// List возвращает строки листа в порядке таблицы.
func (p *ProductRepo) List(ctx context.Context) ([]domain.Product, error) {
	var rows []row
	if err := p.do(ctx, http.MethodGet, p.endpoint(""), nil, &rows); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	products := make([]domain.Product, 0, len(rows))
	for _, r := range rows {
		if strings.TrimSpace(r.Name.String()) == "" {
			continue
		}
		products = append(products, r.toEntity())
	}

	return products, nil
}

func (p *ProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	var rows []row
	if err := p.do(ctx, http.MethodGet, p.endpoint("/search", "id", id), nil, &rows); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	for _, r := range rows {
		if r.ID.String() == id {
			product := r.toEntity()
			return &product, nil
		}
	}

	return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
}

func (p *ProductRepo) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if _, err := p.Get(ctx, product.ID); err == nil {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductAlreadyExists)
	} else if !errors.Is(err, e.ErrProductNotFound) {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	created := *product
	created.CreatedAt = time.Now().UTC()

	var res writeResult
	body := map[string]any{"data": []row{fromEntity(&created)}}
	if err := p.do(ctx, http.MethodPost, p.endpoint(""), body, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &created, nil
}

func (p *ProductRepo) Update(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	current, err := p.Get(ctx, product.ID)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	updated := *product
	updated.CreatedAt = current.CreatedAt
	now := time.Now().UTC()
	updated.UpdatedAt = &now

	var res writeResult
	body := map[string]any{"data": fromEntity(&updated)}
	if err := p.do(ctx, http.MethodPatch, p.endpoint("/id/"+url.PathEscape(product.ID)), body, &res); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if res.Updated == 0 {
		return nil, e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return &updated, nil
}

func (p *ProductRepo) Delete(ctx context.Context, id string) error {
	var res writeResult
	if err := p.do(ctx, http.MethodDelete, p.endpoint("/id/"+url.PathEscape(id)), nil, &res); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if res.Deleted == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrProductNotFound)
	}

	return nil
}

// BulkUpsert обновляет существующие строки по одной, а новые добавляет одним запросом.
func (p *ProductRepo) BulkUpsert(ctx context.Context, products []domain.Product) (int, error) {
	existing, err := p.List(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	known := make(map[string]domain.Product, len(existing))
	for _, product := range existing {
		known[product.ID] = product
	}

	now := time.Now().UTC()
	fresh := make([]row, 0, len(products))
	for i := range products {
		product := products[i]
		if current, ok := known[product.ID]; ok {
			product.CreatedAt = current.CreatedAt
			product.UpdatedAt = &now

			var res writeResult
			body := map[string]any{"data": fromEntity(&product)}
			if err := p.do(ctx, http.MethodPatch, p.endpoint("/id/"+url.PathEscape(product.ID)), body, &res); err != nil {
				return 0, e.Wrap(whereami.WhereAmI(), err)
			}
			continue
		}

		product.CreatedAt = now
		fresh = append(fresh, fromEntity(&product))
	}

	if len(fresh) > 0 {
		var res writeResult
		if err := p.do(ctx, http.MethodPost, p.endpoint(""), map[string]any{"data": fresh}, &res); err != nil {
			return 0, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return len(products), nil
}

func (p *ProductRepo) endpoint(path string, kv ...string) string {
	q := url.Values{}
	q.Set("sheet", p.sheet)
	for i := 0; i+1 < len(kv); i += 2 {
		q.Set(kv[i], kv[i+1])
	}
	return p.baseURL + path + "?" + q.Encode()
}

func (p *ProductRepo) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.logger.Warnf("sheet %s %s failed: %v", method, endpoint, err)
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return e.ErrProductNotFound
	case resp.StatusCode >= http.StatusBadRequest:
		return fmt.Errorf("%s %s: %s", method, endpoint, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}

	return nil
}

// cell принимает и строку, и число: SheetDB отдаёт значения как есть.
type cell string

func (c *cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = cell(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = cell(n.String())
	return nil
}

func (c cell) String() string {
	return strings.TrimSpace(string(c))
}

type row struct {
	ID          cell `json:"id"`
	Name        cell `json:"name"`
	Category    cell `json:"category"`
	Subcategory cell `json:"subcategory"`
	Description cell `json:"description"`
	CreatedAt   cell `json:"created_at"`
	UpdatedAt   cell `json:"updated_at"`
}

type writeResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`
}

func (r row) toEntity() domain.Product {
	product := domain.Product{
		ID:          r.ID.String(),
		Name:        r.Name.String(),
		Category:    domain.CategoryName(r.Category.String()),
		Subcategory: r.Subcategory.String(),
		Description: r.Description.String(),
		CreatedAt:   rowCreatedAt(r),
	}

	if t, err := time.Parse(time.RFC3339, r.UpdatedAt.String()); err == nil {
		product.UpdatedAt = &t
	}

	return product
}

func rowCreatedAt(r row) time.Time {
	if t, err := time.Parse(time.RFC3339, r.CreatedAt.String()); err == nil {
		return t
	}
	if ms, err := strconv.ParseInt(r.ID.String(), 10, 64); err == nil && ms >= msTimestampFloor {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

func fromEntity(p *domain.Product) row {
	r := row{
		ID:          cell(p.ID),
		Name:        cell(p.Name),
		Category:    cell(p.Category),
		Subcategory: cell(p.Subcategory),
		Description: cell(p.Description),
	}
	if !p.CreatedAt.IsZero() {
		r.CreatedAt = cell(p.CreatedAt.UTC().Format(time.RFC3339))
	}
	if p.UpdatedAt != nil {
		r.UpdatedAt = cell(p.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return r
}

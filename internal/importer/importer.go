package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"strings"

	"github.com/brasil-hosp/go-backend/internal/catalog"
	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/xuri/excelize/v2"
)

// Format — формат файла массового импорта.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type field int

const (
	fieldID field = iota
	fieldName
	fieldCategory
	fieldSubcategory
	fieldDescription
)

// synonyms сопоставляет нормализованные заголовки колонок с полями товара.
var synonyms = map[string]field{
	"id":           fieldID,
	"codigo":       fieldID,
	"cod":          fieldID,
	"sku":          fieldID,
	"nome":         fieldName,
	"name":         fieldName,
	"produto":      fieldName,
	"item":         fieldName,
	"categoria":    fieldCategory,
	"category":     fieldCategory,
	"grupo":        fieldCategory,
	"subcategoria": fieldSubcategory,
	"subcategory":  fieldSubcategory,
	"subgrupo":     fieldSubcategory,
	"descricao":    fieldDescription,
	"description":  fieldDescription,
	"detalhes":     fieldDescription,
}

// Result — разобранные строки файла.
type Result struct {
	Products []domain.Product
	Skipped  int // строки без названия
}

// DetectFormat определяет формат по Content-Type, а если он не помог, по расширению.
func DetectFormat(filename, contentType string) (Format, error) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch ct {
	case ContentTypeCSV, "application/csv":
		return FormatCSV, nil
	case ContentTypeXLSX:
		return FormatXLSX, nil
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}

	return "", e.ErrUnsupportedImportFormat
}

// Parse читает таблицу: первая строка — заголовок, дальше по товару в строке.
// Пустой id заменяется на новый UUID, отсутствующие необязательные поля становятся "".
func Parse(r io.Reader, format Format) (*Result, error) {
	var (
		rows [][]string
		err  error
	)

	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r)
	default:
		return nil, e.ErrUnsupportedImportFormat
	}
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return mapRows(rows)
}

func mapRows(rows [][]string) (*Result, error) {
	if len(rows) < 2 {
		return nil, e.ErrEmptyImport
	}

	columns := make(map[field]int)
	for i, header := range rows[0] {
		f, ok := synonyms[catalog.Fold(header)]
		if !ok {
			continue
		}
		if _, dup := columns[f]; !dup {
			columns[f] = i
		}
	}
	if _, ok := columns[fieldName]; !ok {
		return nil, e.Wrap("name column not found", e.ErrMissingFields)
	}

	res := &Result{Products: make([]domain.Product, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}

		cell := func(f field) string {
			i, ok := columns[f]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		name := cell(fieldName)
		if name == "" {
			res.Skipped++
			continue
		}

		id := cell(fieldID)
		if id == "" {
			id = uuid.NewString()
		}

		res.Products = append(res.Products, *domain.NewProduct(
			id,
			name,
			ResolveCategory(cell(fieldCategory)),
			cell(fieldSubcategory),
			cell(fieldDescription),
		))
	}

	if len(res.Products) == 0 {
		return nil, e.ErrEmptyImport
	}

	return res, nil
}

// ResolveCategory приводит написание категории к каноническому ("descartaveis" -> "Descartáveis").
// Неизвестные значения возвращаются как есть.
func ResolveCategory(s string) domain.CategoryName {
	folded := catalog.Fold(s)
	for _, c := range domain.Categories {
		if catalog.Fold(string(c)) == folded {
			return c
		}
	}
	return domain.CategoryName(strings.TrimSpace(s))
}

func readCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && bytes.Equal(bom, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}

	sample, _ := br.Peek(1024)

	cr := csv.NewReader(br)
	cr.Comma = delimiter(sample)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	return cr.ReadAll()
}

// delimiter выбирает ';' для выгрузок Excel с бразильской локалью.
func delimiter(sample []byte) rune {
	line := sample
	if i := bytes.IndexByte(sample, '\n'); i >= 0 {
		line = sample[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	return ','
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, e.ErrEmptyImport
	}

	return f.GetRows(sheets[0])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

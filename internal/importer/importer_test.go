package importer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/brasil-hosp/go-backend/internal/domain"
	"github.com/brasil-hosp/go-backend/pkg/e"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSVSynonyms(t *testing.T) {
	data := "\xEF\xBB\xBFCódigo;Nome;Categoria;Subgrupo;Descrição\n" +
		"10;Luva Látex;descartaveis;Luvas;Caixa com 100\n" +
		";Seringa 5ml;Descartáveis;;\n" +
		"12;;Ortopedia;;sem nome\n" +
		";;;;\n"

	res, err := Parse(strings.NewReader(data), FormatCSV)
	require.NoError(t, err)
	require.Equal(t, 1, res.Skipped)
	require.Len(t, res.Products, 2)

	require.Equal(t, domain.Product{
		ID:          "10",
		Name:        "Luva Látex",
		Category:    domain.CategoryDisposables,
		Subcategory: "Luvas",
		Description: "Caixa com 100",
	}, res.Products[0])

	generated := res.Products[1]
	require.Equal(t, "Seringa 5ml", generated.Name)
	require.Empty(t, generated.Subcategory)
	require.Empty(t, generated.Description)
	_, err = uuid.Parse(generated.ID)
	require.NoError(t, err)
}

func TestParseCSVCommaAndMissingColumns(t *testing.T) {
	data := "name,category\nBota,Ortopedia\n\"Cadeira, dobrável\",Mobiliário\n"

	res, err := Parse(strings.NewReader(data), FormatCSV)
	require.NoError(t, err)
	require.Len(t, res.Products, 2)
	require.Equal(t, "Cadeira, dobrável", res.Products[1].Name)
	require.Equal(t, domain.CategoryFurniture, res.Products[1].Category)
	require.Empty(t, res.Products[1].Description)
}

func TestParseWithoutNameColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("id,categoria\n1,Ortopedia\n"), FormatCSV)
	require.ErrorIs(t, err, e.ErrMissingFields)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(strings.NewReader("nome\n"), FormatCSV)
	require.ErrorIs(t, err, e.ErrEmptyImport)

	_, err = Parse(strings.NewReader("nome\n  \n"), FormatCSV)
	require.ErrorIs(t, err, e.ErrEmptyImport)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"Produto", "Categoria", "Subcategoria", "Descricao"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"Cadeira de Rodas", "Mobiliário", "Cadeiras", "Aço"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"Escova Dental", "odontologia"}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := Parse(bytes.NewReader(buf.Bytes()), FormatXLSX)
	require.NoError(t, err)
	require.Len(t, res.Products, 2)
	require.Equal(t, "Cadeira de Rodas", res.Products[0].Name)
	require.Equal(t, "Cadeiras", res.Products[0].Subcategory)
	require.Equal(t, domain.CategoryDentistry, res.Products[1].Category)
	require.Empty(t, res.Products[1].Subcategory)
}

func TestParseXLSXInvalid(t *testing.T) {
	_, err := Parse(strings.NewReader("not a zip"), FormatXLSX)
	require.Error(t, err)
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		filename    string
		contentType string
		want        Format
		wantErr     bool
	}{
		{"csv content type", "x.bin", "text/csv; charset=utf-8", FormatCSV, false},
		{"xlsx content type", "x", ContentTypeXLSX, FormatXLSX, false},
		{"csv by extension", "produtos.CSV", "application/octet-stream", FormatCSV, false},
		{"xlsx by extension", "produtos.xlsx", "", FormatXLSX, false},
		{"unsupported", "produtos.pdf", "application/pdf", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename, tt.contentType)
			if tt.wantErr {
				require.ErrorIs(t, err, e.ErrUnsupportedImportFormat)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCategory(t *testing.T) {
	require.Equal(t, domain.CategoryWellness, ResolveCategory(" cuidados e bem-estar "))
	require.Equal(t, domain.CategoryName("Brinquedos"), ResolveCategory("Brinquedos "))
	require.Equal(t, domain.CategoryName(""), ResolveCategory(""))
}

package infrastructure

import (
	"testing"

	"github.com/brasil-hosp/go-backend/internal/importer"
	"github.com/stretchr/testify/require"
)

func TestSafeObjectName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"produtos.csv", "produtos.csv"},
		{"Catálogo 2025.xlsx", "Catálogo_2025.xlsx"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\ana\planilha.xlsx`, "planilha.xlsx"},
		{"a*b?c.csv", "abc.csv"},
		{"", "import"},
		{"..", "import"},
		{"???", "import"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, SafeObjectName(tt.in))
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	require.Equal(t, importer.ContentTypeCSV, ContentTypeFor("a.CSV", "application/octet-stream"))
	require.Equal(t, importer.ContentTypeXLSX, ContentTypeFor("a.xlsx", ""))
	require.Equal(t, "text/plain", ContentTypeFor("a", "text/plain"))
	require.Equal(t, "application/octet-stream", ContentTypeFor("a", ""))
}

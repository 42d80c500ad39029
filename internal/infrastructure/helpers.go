package infrastructure

import (
	"path"
	"strings"
	"unicode"

	"github.com/brasil-hosp/go-backend/internal/importer"
)

// ContentTypeFor возвращает MIME-тип для архива. Присланный клиентом тип
// используется, только если расширение файла ничего не говорит.
func ContentTypeFor(filename, contentType string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".csv":
		return importer.ContentTypeCSV
	case ".xlsx":
		return importer.ContentTypeXLSX
	}

	if contentType != "" {
		return contentType
	}
	return "application/octet-stream"
}

// SafeObjectName превращает имя загруженного файла в безопасную часть ключа объекта:
// без каталогов, пробелов и управляющих символов.
func SafeObjectName(filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "import"
	}

	name = strings.Map(func(r rune) rune {
		switch {
		case r == '.' || r == '-' || r == '_':
			return r
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			return r
		case unicode.IsSpace(r):
			return '_'
		default:
			return -1
		}
	}, name)

	if strings.Trim(name, "._-") == "" {
		return "import"
	}
	return name
}

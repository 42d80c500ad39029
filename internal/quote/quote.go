package quote

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/brasil-hosp/go-backend/internal/domain"
)

const (
	DefaultBaseURL = "https://wa.me"
	DefaultPhone   = "559832271116"

	cartHeader = "*Olá! Gostaria de uma cotação dos seguinte itens:*\n\n"
	cartFooter = "\nAguardo retorno!"
)

// Builder формирует текст запроса цены и ссылку на чат WhatsApp с этим текстом.
type Builder struct {
	baseURL string
	phone   string
}

func NewBuilder(baseURL, phone string) *Builder {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if phone == "" {
		phone = DefaultPhone
	}

	return &Builder{
		baseURL: strings.TrimRight(baseURL, "/"),
		phone:   phone,
	}
}

// CartMessage перечисляет позиции корзины в порядке добавления.
func CartMessage(items []domain.CartItem) string {
	var b strings.Builder
	b.WriteString(cartHeader)
	for _, item := range items {
		fmt.Fprintf(&b, "- %dx %s\n", item.Quantity, item.Name)
	}
	b.WriteString(cartFooter)

	return b.String()
}

// ProductMessage — запрос цены на один товар со страницы каталога.
func ProductMessage(name string) string {
	return fmt.Sprintf("Olá! Gostaria de um orçamento para o item: *%s* que vi no site.", name)
}

// Link возвращает ссылку вида {base}/{phone}?text=...
func (b *Builder) Link(message string) string {
	return b.baseURL + "/" + b.phone + "?text=" + escape(message)
}

func (b *Builder) CartLink(items []domain.CartItem) string {
	return b.Link(CartMessage(items))
}

func (b *Builder) ProductLink(name string) string {
	return b.Link(ProductMessage(name))
}

// escape кодирует пробел как %20: wa.me не понимает '+' в тексте.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

package domain

// CartItem — позиция корзины запроса цены.
// Name фиксируется в момент добавления и не следует за изменениями товара.
type CartItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

package domain

import "time"

// Admin — учётная запись администратора каталога
type Admin struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ContactRequest — заявка из формы обратной связи
type ContactRequest struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Company   string
	Message   string
	CreatedAt time.Time
}

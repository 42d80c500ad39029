package usecase

import (
	"time"

	"github.com/brasil-hosp/go-backend/internal/catalog"
	"github.com/brasil-hosp/go-backend/internal/domain"
)

// CATALOG USECASE

// SearchReq — параметры витрины каталога.
type SearchReq struct {
	Category    string
	Subcategory string
	Search      string
}

// SearchRes — видимое подмножество товаров.
type SearchRes struct {
	Products []domain.Product
	Total    int
}

// QuoteLinkRes — ссылка на чат с готовым текстом запроса цены.
type QuoteLinkRes struct {
	Message string
	Link    string
}

// ADMIN USECASE

// ProductReq — поля формы товара. Update перезаписывает все поля.
type ProductReq struct {
	ID          string // для Create можно не указывать
	Name        string
	Category    string
	Subcategory string
	Description string
}

type AdminListReq struct {
	Search   string
	Category string
	Sort     string
}

// ImportReq — файл массового импорта из multipart/form-data.
type ImportReq struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ImportRes struct {
	Imported   int
	Skipped    int
	ArchiveKey string // пусто, если архив не настроен
}

type StatsRes struct {
	catalog.Stats
	CategoryCount int
}

// CART USECASE

type CartRes struct {
	Items      []domain.CartItem
	TotalCount int
}

// CheckoutRes — передача корзины в WhatsApp.
type CheckoutRes struct {
	Items   []domain.CartItem
	Message string
	Link    string
}

// AUTH USECASE

type LoginReq struct {
	Email    string
	Password string
}

type LoginRes struct {
	Token     string
	ExpiresAt time.Time
}

// Claims — данные администратора из проверенного токена.
type Claims struct {
	AdminID int64
	Email   string
}

// CONTACT USECASE

type ContactReq struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const (
	EventProductCreated  OutboxEventType = "product.created"
	EventProductUpdated  OutboxEventType = "product.updated"
	EventProductDeleted  OutboxEventType = "product.deleted"
	EventCatalogImported OutboxEventType = "catalog.imported"
	EventQuoteRequested  OutboxEventType = "quote.requested"
	EventContactReceived OutboxEventType = "contact.received"
)

// OutboxEvent — событие, записанное в одной транзакции с изменением и ожидающее отправки в Kafka.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	AggregateID string // ключ сообщения Kafka
	Payload     []byte // proto-кодированный google.protobuf.Struct
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

// INFRASTUCTURE

type WriteRawMessageReq struct {
	Key       string
	EventType OutboxEventType
	Payload   []byte
}

// ArchiveImportReq — исходный файл импорта для архива в MinIO.
type ArchiveImportReq struct {
	Filename    string
	ContentType string
	Data        []byte
}

// MAPPERS

func NewWriteRawMessageReq(key string, eventType OutboxEventType, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:       key,
		EventType: eventType,
		Payload:   payload,
	}
}

func NewArchiveImportReq(filename, contentType string, data []byte) *ArchiveImportReq {
	return &ArchiveImportReq{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}
}

func NewCartRes(items []domain.CartItem, totalCount int) *CartRes {
	if items == nil {
		items = []domain.CartItem{}
	}
	return &CartRes{
		Items:      items,
		TotalCount: totalCount,
	}
}

func NewSearchRes(products []domain.Product) *SearchRes {
	return &SearchRes{
		Products: products,
		Total:    len(products),
	}
}

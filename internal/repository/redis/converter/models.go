package converter

import "time"

// ProductRedisModel — элемент снимка каталога в Redis.
type ProductRedisModel struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category,omitempty"`
	Subcategory string     `json:"subcategory,omitempty"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// CatalogRedisModel — весь снимок каталога под одним ключом.
type CatalogRedisModel struct {
	Products []ProductRedisModel `json:"products"`
	CachedAt time.Time           `json:"cached_at"`
}

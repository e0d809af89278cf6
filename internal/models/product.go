// internal/models/product.go
package models

import (
	"github.com/google/uuid"
)

type Product struct {
	BaseModel
	CategoryID    *uuid.UUID `json:"category_id" gorm:"type:uuid;index"`
	Name          string     `json:"name" gorm:"size:255;not null"`
	Description   string     `json:"description" gorm:"type:text"`
	Price         float64    `json:"price" gorm:"type:decimal(10,2);not null"`
	StockQuantity int        `json:"stock_quantity" gorm:"not null;default:0"`
	ImageURL      string     `json:"image_url" gorm:"size:255"`
	SalesCount    int64      `json:"sales_count" gorm:"default:0"`

	// Relationships
	Category   *Category   `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	CartItems  []CartItem  `json:"-" gorm:"foreignKey:ProductID"`
	OrderItems []OrderItem `json:"-" gorm:"foreignKey:ProductID"`
}

func (p *Product) InStock(quantity int) bool {
	return p.StockQuantity >= quantity
}

// internal/models/cart_item.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// One row per (user, product); a repeated add bumps the quantity.
// Cart rows are hard-deleted: a soft-delete marker would collide with the
// unique (user, product) index on the next add.
type CartItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	User    User    `json:"-" gorm:"foreignKey:UserID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *CartItem) Subtotal() float64 {
	return c.Product.Price * float64(c.Quantity)
}

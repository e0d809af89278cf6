// internal/models/order.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Order struct {
	BaseModel
	UserID           uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;index"`
	Reference        string      `json:"reference" gorm:"size:32;uniqueIndex"`
	TotalPrice       float64     `json:"total_price" gorm:"type:decimal(10,2);not null"`
	Status           OrderStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentMethod    string      `json:"payment_method" gorm:"size:50;not null"`
	PaymentReference string      `json:"payment_reference,omitempty" gorm:"size:255"`
	ShippingAddress  JSONB       `json:"shipping_address,omitempty" gorm:"type:jsonb"`

	// Returned once at creation for card checkouts, never stored.
	PaymentClientSecret string `json:"payment_client_secret,omitempty" gorm:"-"`

	// Relationships
	User       User        `json:"-" gorm:"foreignKey:UserID"`
	OrderItems []OrderItem `json:"order_items,omitempty" gorm:"foreignKey:OrderID"`
}

// Items and their snapshot prices never change after the order is created.
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `json:"order_id" gorm:"type:uuid;not null;index"`
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Price     float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Order   Order   `json:"-" gorm:"foreignKey:OrderID"`
	Product Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

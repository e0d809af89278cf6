// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/auctionsys/storefront-backend/internal/models"
	"github.com/auctionsys/storefront-backend/internal/utils"
)

type CartService struct {
	db *gorm.DB
}

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type CartView struct {
	Items []models.CartItem `json:"items"`
	Total float64           `json:"total"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

func (s *CartService) GetCart(userID uuid.UUID) (*CartView, error) {
	var items []models.CartItem
	if err := s.db.Preload("Product").Preload("Product.Category").
		Where("user_id = ?", userID).
		Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch cart: %w", err)
	}

	var total float64
	for i := range items {
		total += items[i].Subtotal()
	}

	return &CartView{Items: items, Total: total}, nil
}

// AddItem follows the increment policy: adding a product already in the
// cart raises its quantity by the requested amount. The stock check uses
// the resulting quantity against current stock.
func (s *CartService) AddItem(userID uuid.UUID, req *AddCartItemRequest) (*models.CartItem, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var product models.Product
	if err := s.db.First(&product, req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Check if item already exists in cart
	var item models.CartItem
	err := s.db.Where("user_id = ? AND product_id = ?", userID, req.ProductID).First(&item).Error

	switch {
	case err == nil:
		resulting := item.Quantity + req.Quantity
		if !product.InStock(resulting) {
			return nil, fmt.Errorf("not enough stock for %s", product.Name)
		}
		if err := s.db.Model(&item).Update("quantity", resulting).Error; err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if !product.InStock(req.Quantity) {
			return nil, fmt.Errorf("not enough stock for %s", product.Name)
		}
		item = models.CartItem{
			UserID:    userID,
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
		}
		if err := s.db.Create(&item).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart item: %w", err)
		}
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	// Load product detail for the response
	s.db.Preload("Product").First(&item, item.ID)

	return &item, nil
}

func (s *CartService) UpdateItem(userID, itemID uuid.UUID, req *UpdateCartItemRequest) (*models.CartItem, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var item models.CartItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("cart item not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if item.UserID != userID {
		return nil, errors.New("unauthorized to modify this cart item")
	}

	var product models.Product
	if err := s.db.First(&product, item.ProductID).Error; err != nil {
		return nil, fmt.Errorf("product not found: %w", err)
	}

	if !product.InStock(req.Quantity) {
		return nil, fmt.Errorf("not enough stock for %s", product.Name)
	}

	if err := s.db.Model(&item).Update("quantity", req.Quantity).Error; err != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	s.db.Preload("Product").First(&item, item.ID)

	return &item, nil
}

func (s *CartService) RemoveItem(userID, itemID uuid.UUID) error {
	var item models.CartItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("cart item not found")
		}
		return fmt.Errorf("database error: %w", err)
	}

	if item.UserID != userID {
		return errors.New("unauthorized to modify this cart item")
	}

	if err := s.db.Delete(&item).Error; err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return nil
}

// ClearCart deletes every cart row belonging to the user and no others.
func (s *CartService) ClearCart(userID uuid.UUID) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
